// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// session.go - Shared session and client construction for CLI commands
// and the TUI. Both entry points restore credentials and build the
// backend client the same way so `ava ask` and the full UI never
// disagree about who is logged in.
package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/config"
)

// RestoreSession builds the in-memory token store for this process.
//
// Precedence: the AVA_TOKEN environment variable wins (CI and scripts
// set it per-invocation), then the encrypted vault when credential
// saving is enabled. Failing both, the store starts empty and the
// backend returns ErrUnauthorized until `ava login` runs.
//
// When an app lock is enrolled, unsealing requires a one-time code;
// the prompt only happens on a terminal, so scripts and pipes leave
// the credential sealed rather than hanging on input.
func RestoreSession(cfg *config.Config) *auth.SessionStore {
	session := auth.NewSessionStore()

	if token := os.Getenv("AVA_TOKEN"); token != "" {
		session.Set(token)
		return session
	}

	if cfg != nil && cfg.Credentials.Save {
		vault, err := auth.NewVault(auth.VaultConfig{Dir: cfg.Credentials.Dir})
		if err == nil && vault.IsInitialized() && vault.HasToken() {
			if token, err := unsealWithLock(vault); err == nil {
				session.Set(token)
			}
		}
	}

	return session
}

// unsealWithLock unseals the stored token, collecting a TOTP code
// first when the app lock is enrolled.
func unsealWithLock(vault *auth.Vault) (string, error) {
	if !vault.AppLockEnabled() {
		return vault.UnsealToken()
	}
	if !IsTTY() {
		return "", auth.ErrAppLockCodeInvalid
	}
	for attempt := 0; attempt < 3; attempt++ {
		fmt.Print("App lock code: ")
		var code string
		if _, err := fmt.Fscanln(os.Stdin, &code); err != nil {
			return "", err
		}
		token, err := vault.UnsealTokenGuarded(strings.TrimSpace(code))
		if err == nil {
			return token, nil
		}
		if !errors.Is(err, auth.ErrAppLockCodeInvalid) {
			return "", err
		}
		fmt.Println(ErrorStyle.Render("Invalid code."))
	}
	return "", auth.ErrAppLockCodeInvalid
}

// NewBackendClient builds the API client from config. Zero-valued
// tuning fields fall back to client defaults.
func NewBackendClient(cfg *config.Config, session *auth.SessionStore) *api.Client {
	clientCfg := api.DefaultClientConfig()
	if cfg != nil {
		clientCfg.BaseURL = cfg.Backend.BaseURL
		if cfg.Backend.TimeoutSecs > 0 {
			clientCfg.Timeout = time.Duration(cfg.Backend.TimeoutSecs) * time.Second
		}
		if cfg.Backend.MaxRetries > 0 {
			clientCfg.MaxRetries = cfg.Backend.MaxRetries
		}
		if cfg.Backend.RequestsPerSecond > 0 {
			clientCfg.RequestsPerSecond = cfg.Backend.RequestsPerSecond
		}
	}
	return api.NewClientWithConfig(clientCfg, session)
}

// openVault opens the credential vault at the configured directory.
// Used by login and logout; callers decide whether to initialize it.
func openVault(cfg *config.Config) (*auth.Vault, error) {
	dir := ""
	if cfg != nil {
		dir = cfg.Credentials.Dir
	}
	return auth.NewVault(auth.VaultConfig{Dir: dir})
}
