// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"errors"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// ERROR DISPLAY MODEL
// =============================================================================

// ErrorDisplay is a styled error box with actionable suggestions.
type ErrorDisplay struct {
	title       string
	message     string
	suggestions []string

	dismissible bool
	visible     bool

	width  int
	height int

	theme *styles.Theme
}

// NewErrorDisplay creates a hidden error display.
func NewErrorDisplay(theme *styles.Theme) ErrorDisplay {
	return ErrorDisplay{
		dismissible: true,
		theme:       theme,
	}
}

// Show populates and reveals the error box.
func (e *ErrorDisplay) Show(title, message string, suggestions []string) {
	e.title = title
	e.message = message
	e.suggestions = suggestions
	e.visible = true
}

// ShowErr reveals the error box for err, deriving title and suggestions
// from the error's type.
func (e *ErrorDisplay) ShowErr(err error) {
	if err == nil {
		return
	}
	e.Show(titleFor(err), err.Error(), SuggestionsFor(err))
}

// Hide dismisses the error box.
func (e *ErrorDisplay) Hide() {
	e.visible = false
}

// IsVisible reports whether the error box is showing.
func (e *ErrorDisplay) IsVisible() bool {
	return e.visible
}

// SetSize updates the dimensions.
func (e *ErrorDisplay) SetSize(width, height int) {
	e.width = width
	e.height = height
}

// View renders the error box centered in the available space.
func (e ErrorDisplay) View() string {
	if !e.visible {
		return ""
	}

	width := e.width
	if width == 0 {
		width = 80
	}
	height := e.height
	if height == 0 {
		height = 24
	}

	boxWidth := 60
	if boxWidth > width-4 {
		boxWidth = width - 4
	}
	innerWidth := boxWidth - 6

	var sb strings.Builder
	sb.WriteString(e.theme.ErrorTitle.Render(styles.StatusIndicators.Error + " " + e.title))
	sb.WriteString("\n\n")
	sb.WriteString(e.theme.ErrorMessage.Width(innerWidth).Render(e.message))

	if len(e.suggestions) > 0 {
		sb.WriteString("\n\n")
		sb.WriteString(e.theme.ErrorSuggestion.Render("Try:"))
		for _, s := range e.suggestions {
			sb.WriteString("\n")
			sb.WriteString(e.theme.ErrorSuggestion.Width(innerWidth).Render("  - " + s))
		}
	}

	if e.dismissible {
		sb.WriteString("\n\n")
		sb.WriteString(e.theme.MessageMeta.Render("esc to dismiss"))
	}

	box := e.theme.ErrorBox.Width(boxWidth).Render(sb.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// ERROR CLASSIFICATION
// =============================================================================

// titleFor picks a headline for the error box.
func titleFor(err error) string {
	switch {
	case errors.Is(err, api.ErrNotConfigured):
		return "Not Configured"
	case errors.Is(err, api.ErrUnauthorized):
		return "Sign-In Required"
	case errors.Is(err, api.ErrForbidden):
		return "Access Denied"
	case errors.Is(err, api.ErrRateLimited):
		return "Rate Limited"
	case errors.Is(err, api.ErrBackendUnavailable):
		return "Backend Unreachable"
	default:
		return "Error"
	}
}

// SuggestionsFor maps an error to actionable next steps. Sentinel errors
// from the api package get precise advice; everything else falls back to
// substring heuristics.
func SuggestionsFor(err error) []string {
	switch {
	case errors.Is(err, api.ErrNotConfigured):
		return []string{
			"Run: ava login",
			"Or set backend.base_url in ~/.ava/config.toml",
		}
	case errors.Is(err, api.ErrUnauthorized):
		return []string{
			"Run: ava login",
			"Your session token may have expired",
		}
	case errors.Is(err, api.ErrForbidden):
		return []string{
			"This bot may be restricted to another team",
			"Run /bots to see which bots you can use",
		}
	case errors.Is(err, api.ErrRateLimited):
		return []string{
			"Wait a moment and try again",
			"The backend is throttling requests",
		}
	case errors.Is(err, api.ErrBackendUnavailable):
		return []string{
			"Check your network connection",
			"Run: ava status",
			"The VPN may be required for the Ava backend",
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return []string{
			"The backend took too long to respond",
			"Try a shorter question, or raise backend.timeout_secs",
		}
	case strings.Contains(msg, "connection refused") || strings.Contains(msg, "no such host"):
		return []string{
			"Check your network connection",
			"Run: ava status",
		}
	case strings.Contains(msg, "certificate"):
		return []string{
			"TLS verification failed; check your proxy settings",
		}
	default:
		return nil
	}
}
