// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// login.go - Credential management: `ava login` and `ava logout`.
//
// Login always seals the token into the encrypted vault; a token that
// only lived in process memory would be gone before the next command
// ran. When credential saving was off, login turns it on and persists
// the config so subsequent sessions restore the login.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/config"
)

// HandleLogin stores a backend access token.
func HandleLogin(args Args) error {
	cfg := config.Global()

	token := strings.TrimSpace(args.Token)
	if token == "" {
		var err error
		token, err = readTokenInteractive()
		if err != nil {
			return err
		}
	}
	if token == "" {
		return ErrMissingArgument("token", "ava login --token <token>")
	}

	status := auth.InspectToken(token)
	if status.Expired {
		return &ValidationError{
			Field:  "token",
			Reason: fmt.Sprintf("token expired at %s; copy a fresh one", status.ExpiresAt.Local().Format("15:04 Jan 2")),
		}
	}

	vault, err := openVault(cfg)
	if err != nil {
		return WrapError(err, "opening credential vault")
	}
	if !vault.IsInitialized() {
		if err := vault.Initialize(); err != nil {
			return WrapError(err, "initializing credential vault")
		}
	}
	if err := vault.SealToken(token); err != nil {
		return WrapError(err, "storing token")
	}

	// Make sure the next session actually restores what we just stored.
	savedConfig := false
	if cfg != nil && !cfg.Credentials.Save {
		cfg.Credentials.Save = true
		if err := config.Save(cfg); err == nil {
			savedConfig = true
		}
	}

	if args.JSON {
		data := map[string]interface{}{
			"email": status.Email,
			"name":  status.Name,
			"saved": true,
		}
		if !status.ExpiresAt.IsZero() {
			data["expires_at"] = status.ExpiresAt.UTC().Format(time.RFC3339)
		}
		return NewJSONResponse("login", data).Print()
	}

	identity := status.Email
	if identity == "" {
		identity = "(identity unknown — opaque token)"
	}
	fmt.Printf("%s Logged in as %s\n", RenderStatus(true, false), ValueStyle.Render(identity))
	if !status.ExpiresAt.IsZero() {
		remaining := status.TimeRemaining().Round(time.Minute)
		fmt.Printf("     Token expires %s (%s from now)\n",
			status.ExpiresAt.Local().Format("15:04 Jan 2"), remaining)
	}
	if status.ExpiringSoon {
		fmt.Println(WarningStyle.Render("     Token expires soon; consider copying a fresh one."))
	}
	if savedConfig {
		fmt.Println(DimStyle.Render("     Credential saving enabled in config."))
	}
	return nil
}

// readTokenInteractive prompts for a token without echoing it, or reads
// one line from a pipe.
func readTokenInteractive() (string, error) {
	if !IsTTY() {
		// `fetch-token | ava login`
		scanner := bufio.NewScanner(os.Stdin)
		scanner.Buffer(make([]byte, 64*1024), 64*1024)
		if scanner.Scan() {
			return strings.TrimSpace(scanner.Text()), nil
		}
		return "", scanner.Err()
	}

	fmt.Println("Paste your Ava access token (input hidden).")
	fmt.Println(DimStyle.Render("Copy it from the Ava web app: profile menu > Copy access token."))
	fmt.Print("Token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", WrapError(err, "reading token")
	}
	return strings.TrimSpace(string(raw)), nil
}

// HandleLogout clears the stored credential.
func HandleLogout(args Args) error {
	cfg := config.Global()

	vault, err := openVault(cfg)
	if err != nil {
		return WrapError(err, "opening credential vault")
	}

	cleared := false
	if vault.IsInitialized() && vault.HasToken() {
		if err := vault.ClearToken(); err != nil {
			return WrapError(err, "clearing stored credential")
		}
		cleared = true
	}

	if args.JSON {
		return NewJSONResponse("logout", map[string]interface{}{"cleared": cleared}).Print()
	}

	if cleared {
		fmt.Printf("%s Stored credential cleared.\n", RenderStatus(true, false))
	} else {
		fmt.Println("No stored credential.")
	}
	if os.Getenv("AVA_TOKEN") != "" {
		fmt.Println(WarningStyle.Render("AVA_TOKEN is set in this shell and still takes effect; unset it to fully log out."))
	}
	return nil
}
