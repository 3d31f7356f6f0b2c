// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - Terminal capability detection for CLI output decisions.
//
// Commands use these helpers to decide between rich output (markdown,
// colors, spinners) and plain output suitable for pipes and scripts.
package cli

import (
	"os"
	"sync"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

var (
	colorsOnce    sync.Once
	colorsEnabled bool
)

// IsTTY reports whether stdin is attached to a terminal.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY reports whether stdout is attached to a terminal.
// When false, output is being piped or redirected and commands should
// emit plain text without ANSI escapes.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width in columns,
// falling back to 80 when stdout is not a terminal.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// ColorsEnabled reports whether ANSI colors should be emitted.
// Honors NO_COLOR (https://no-color.org) and FORCE_COLOR conventions.
// The result is computed once and cached for the process lifetime.
func ColorsEnabled() bool {
	colorsOnce.Do(func() {
		if os.Getenv("NO_COLOR") != "" {
			colorsEnabled = false
			return
		}
		if os.Getenv("FORCE_COLOR") != "" {
			colorsEnabled = true
			return
		}
		colorsEnabled = IsStdoutTTY() && termenv.ColorProfile() != termenv.Ascii
	})
	return colorsEnabled
}

// GetColorProfile returns the termenv color profile to render with,
// downgraded to Ascii when colors are disabled.
func GetColorProfile() termenv.Profile {
	if !ColorsEnabled() {
		return termenv.Ascii
	}
	return termenv.ColorProfile()
}

// RequiresTTY returns an error when stdin is not a terminal. Interactive
// commands (chat, login prompts) call this before starting.
func RequiresTTY(command string) error {
	if !IsTTY() {
		return &ValidationError{
			Field:  "terminal",
			Reason: command + " requires an interactive terminal",
		}
	}
	return nil
}
