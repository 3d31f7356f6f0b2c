// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - Lipgloss styles for plain CLI output (status, bots, history).
//
// These are deliberately lighter than the TUI theme: single-line labels
// and status markers, no borders or layout. Colors come from the shared
// palette so `ava status` matches the TUI.
package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

func init() {
	// Pin the color profile before any styles render so NO_COLOR and
	// pipe detection apply to lipgloss output as well.
	lipgloss.SetColorProfile(GetColorProfile())
}

var (
	// TitleStyle renders section headings in command output.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Violet)

	// LabelStyle renders field names in key/value listings.
	LabelStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.TextSecondary)

	// ValueStyle renders field values in key/value listings.
	ValueStyle = lipgloss.NewStyle().
			Foreground(styles.TextPrimary)

	// SuccessStyle renders positive status markers.
	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Emerald)

	// WarningStyle renders cautionary status markers.
	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Amber)

	// ErrorStyle renders failure status markers.
	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(styles.Rose)

	// DimStyle renders secondary detail (paths, timestamps, hints).
	DimStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	// AccentStyle highlights the active item in listings.
	AccentStyle = lipgloss.NewStyle().
			Foreground(styles.Teal)
)

// RenderStatus returns a bracketed status marker: [OK], [WARN] or [FAIL].
func RenderStatus(ok bool, warn bool) string {
	switch {
	case ok:
		return SuccessStyle.Render("[OK]")
	case warn:
		return WarningStyle.Render("[WARN]")
	default:
		return ErrorStyle.Render("[FAIL]")
	}
}

// RenderLabel renders a fixed-width field label for aligned listings.
func RenderLabel(label string) string {
	return LabelStyle.Render(label + ":")
}
