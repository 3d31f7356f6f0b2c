// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// lock.go - TOTP app lock management: `ava lock <subcommand>`.
//
// The lock adds an authenticator-app code on top of the vault's
// encryption: once enrolled, restoring the saved login prompts for a
// current code. The TOTP secret is sealed inside the vault itself.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/config"
)

// HandleLock dispatches the app lock subcommands.
func HandleLock(args Args) error {
	cfg := config.Global()
	vault, err := openVault(cfg)
	if err != nil {
		return WrapError(err, "opening credential vault")
	}

	switch strings.ToLower(args.Subcommand) {
	case "status", "":
		return lockStatus(vault, args)
	case "enable", "on":
		return lockEnable(vault, cfg, args)
	case "disable", "off":
		return lockDisable(vault, args)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown lock subcommand",
			Example: "ava lock [status|enable|disable]",
		}
	}
}

func lockStatus(vault *auth.Vault, args Args) error {
	enabled := vault.IsInitialized() && vault.AppLockEnabled()
	if args.JSON {
		return NewJSONResponse("lock", map[string]interface{}{"enabled": enabled}).Print()
	}
	if enabled {
		fmt.Printf("%s App lock enabled; restoring the saved login requires a code.\n", RenderStatus(true, false))
	} else {
		fmt.Println("App lock not enabled. Enable it with `ava lock enable`.")
	}
	return nil
}

func lockEnable(vault *auth.Vault, cfg *config.Config, args Args) error {
	if err := RequiresTTY("lock enable"); err != nil {
		return err
	}
	if !vault.IsInitialized() {
		return auth.ErrVaultNotInitialized
	}
	if vault.AppLockEnabled() {
		fmt.Println("App lock is already enabled. Re-running enable replaces the secret.")
		if !confirm("Replace the existing lock secret?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	account := "ava"
	if cfg != nil {
		session := RestoreSession(cfg)
		if email := session.Status().Email; email != "" {
			account = email
		}
	}

	setup, err := vault.EnableAppLock(account)
	if err != nil {
		return WrapError(err, "enabling app lock")
	}

	fmt.Println()
	fmt.Println(TitleStyle.Render("App lock enrolment"))
	fmt.Println("Add this to your authenticator app. It is shown once.")
	fmt.Println()
	fmt.Println("  " + ValueStyle.Render(setup.URL))
	fmt.Println("  " + DimStyle.Render("manual entry secret: ") + setup.Secret)
	fmt.Println()

	// Confirm the clocks line up before the lock starts gating logins.
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Print("Enter a code from your app to confirm: ")
		var code string
		if _, err := fmt.Fscanln(os.Stdin, &code); err != nil {
			break
		}
		ok, err := vault.VerifyAppLock(strings.TrimSpace(code))
		if err != nil {
			return WrapError(err, "verifying enrolment")
		}
		if ok {
			fmt.Printf("%s App lock enabled.\n", RenderStatus(true, false))
			return nil
		}
		fmt.Println(ErrorStyle.Render("Code did not match."))
	}

	fmt.Println(WarningStyle.Render("Enrolment unconfirmed.") +
		" If codes keep failing, re-run `ava lock enable` to generate a fresh secret.")
	return nil
}

func lockDisable(vault *auth.Vault, args Args) error {
	if !vault.IsInitialized() || !vault.AppLockEnabled() {
		fmt.Println("App lock not enabled.")
		return nil
	}

	code := ""
	if len(args.Raw) > 0 {
		code = args.Raw[0]
	}
	if code == "" {
		if err := RequiresTTY("lock disable"); err != nil {
			return err
		}
		fmt.Print("Current app lock code: ")
		if _, err := fmt.Fscanln(os.Stdin, &code); err != nil {
			return WrapError(err, "reading code")
		}
	}

	if err := vault.DisableAppLock(strings.TrimSpace(code)); err != nil {
		return err
	}
	fmt.Printf("%s App lock disabled.\n", RenderStatus(true, false))
	return nil
}

// confirm asks a yes/no question on the terminal, defaulting to no.
func confirm(question string) bool {
	fmt.Printf("%s [y/N] ", question)
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(scanner.Text()), "y")
}
