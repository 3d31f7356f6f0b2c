// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// Status represents the current application status.
type Status int

const (
	StatusReady Status = iota
	StatusStreaming
	StatusThinking
	StatusLoading
	StatusError
)

// String returns the display string for the status.
func (s Status) String() string {
	switch s {
	case StatusReady:
		return "Ready"
	case StatusStreaming:
		return "Streaming..."
	case StatusThinking:
		return "Thinking..."
	case StatusLoading:
		return "Loading..."
	case StatusError:
		return "Error"
	default:
		return "Unknown"
	}
}

// Icon returns an icon for the status.
// ACCESSIBILITY: distinct shapes alongside colors for colorblind users.
func (s Status) Icon() string {
	switch s {
	case StatusReady:
		return styles.StatusIndicators.Success
	case StatusStreaming:
		return "~"
	case StatusThinking:
		return styles.StatusIndicators.Pending
	case StatusLoading:
		return styles.StatusIndicators.Pending
	case StatusError:
		return styles.StatusIndicators.Error
	default:
		return "?"
	}
}

// StatusBar is the bottom status bar.
type StatusBar struct {
	BotLabel      string // Active bot display name
	BackendHost   string // Backend host, e.g. "ava.vocus.com.au"
	TokenCount    int    // Estimated tokens in the conversation window
	MaxTokens     int    // Context window budget
	Backlog       int    // Buffered characters not yet revealed
	Status        Status // Current status
	Width         int    // Available width
	ShowShortcuts bool   // Show keyboard shortcuts in wide layouts
	theme         *styles.Theme
}

// NewStatusBar creates a new StatusBar component.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		BotLabel:      "Ava",
		MaxTokens:     8000,
		Status:        StatusReady,
		Width:         80,
		ShowShortcuts: true,
		theme:         theme,
	}
}

// SetWidth updates the status bar width.
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetBot updates the active bot label.
func (s *StatusBar) SetBot(label string) {
	s.BotLabel = label
}

// SetBackend updates the backend host display.
func (s *StatusBar) SetBackend(host string) {
	s.BackendHost = host
}

// SetTokenUsage updates the context gauge.
func (s *StatusBar) SetTokenUsage(used, max int) {
	s.TokenCount = used
	if max > 0 {
		s.MaxTokens = max
	}
}

// SetBacklog updates the count of buffered-but-unrevealed characters.
func (s *StatusBar) SetBacklog(chars int) {
	s.Backlog = chars
}

// SetStatus updates the current status.
func (s *StatusBar) SetStatus(status Status) {
	s.Status = status
}

// =============================================================================
// RENDERING
// =============================================================================

// View renders the status bar for the current width.
func (s *StatusBar) View() string {
	if s.Width < 60 {
		return s.viewNarrow()
	}
	if s.Width < 100 {
		return s.viewMedium()
	}
	return s.viewWide()
}

// viewNarrow renders a compact bar: [bot] bar status
func (s *StatusBar) viewNarrow() string {
	bot := s.theme.StatusBot.Render("[" + s.BotLabel + "]")
	bar := s.renderContextBar(8)
	status := s.Status.Icon()

	result := bot + " " + bar + " " + status
	return s.theme.StatusBar.Width(s.Width).Render(result)
}

// viewMedium renders: bot | backend | Ctx: bar | status
func (s *StatusBar) viewMedium() string {
	separator := s.theme.StatusDesc.Render(" | ")

	parts := []string{s.theme.StatusBot.Render(s.BotLabel)}

	if s.BackendHost != "" {
		host := s.BackendHost
		if len(host) > 24 {
			host = host[:21] + "..."
		}
		parts = append(parts, s.theme.StatusBackend.Render(host))
	}

	parts = append(parts, s.theme.StatusDesc.Render("Ctx: ")+s.renderContextBar(10))

	if s.Backlog > 0 {
		parts = append(parts, s.renderBacklog())
	}

	parts = append(parts, s.Status.Icon()+" "+s.Status.String())

	return s.theme.StatusBar.Width(s.Width).Render(strings.Join(parts, separator))
}

// viewWide renders the medium layout plus right-aligned shortcuts.
func (s *StatusBar) viewWide() string {
	separator := s.theme.StatusDesc.Render(" | ")

	leftParts := []string{s.theme.StatusBot.Render(s.BotLabel)}
	if s.BackendHost != "" {
		leftParts = append(leftParts, s.theme.StatusBackend.Render(s.BackendHost))
	}
	leftParts = append(leftParts, s.theme.StatusDesc.Render("Ctx: ")+s.renderContextBar(12))
	if s.Backlog > 0 {
		leftParts = append(leftParts, s.renderBacklog())
	}
	leftParts = append(leftParts, s.Status.Icon()+" "+s.Status.String())
	left := strings.Join(leftParts, separator)

	right := ""
	if s.ShowShortcuts {
		right = s.renderShortcuts()
	}

	// Right-align the shortcuts; drop them if the bar would overflow.
	gap := s.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 1 {
		return s.theme.StatusBar.Width(s.Width).Render(left)
	}
	return s.theme.StatusBar.Width(s.Width).Render(left + strings.Repeat(" ", gap) + right)
}

// renderContextBar renders the context usage gauge.
func (s *StatusBar) renderContextBar(width int) string {
	percent := 0.0
	if s.MaxTokens > 0 {
		percent = float64(s.TokenCount) / float64(s.MaxTokens) * 100
	}

	bar := styles.RenderProgressBar(width, percent)

	barStyle := lipgloss.NewStyle().Foreground(styles.Emerald)
	if percent >= 90 {
		barStyle = lipgloss.NewStyle().Foreground(styles.Rose)
	} else if percent >= 70 {
		barStyle = lipgloss.NewStyle().Foreground(styles.Amber)
	}

	return barStyle.Render(bar) + s.theme.StatusDesc.Render(fmt.Sprintf(" %d%%", int(percent)))
}

// renderBacklog renders the reveal backlog indicator.
func (s *StatusBar) renderBacklog() string {
	return s.theme.StatusBacklog.Render(fmt.Sprintf("+%s buf", formatChars(s.Backlog)))
}

// renderShortcuts renders the key hint section.
func (s *StatusBar) renderShortcuts() string {
	hints := []struct{ key, desc string }{
		{"ctrl+s", "sources"},
		{"ctrl+o", "artifact"},
		{"?", "help"},
	}
	parts := make([]string, 0, len(hints))
	for _, h := range hints {
		parts = append(parts, s.theme.StatusKey.Render(h.key)+s.theme.StatusDesc.Render(" "+h.desc))
	}
	return strings.Join(parts, s.theme.StatusDesc.Render("  "))
}

// formatChars compacts a character count for the backlog badge.
func formatChars(n int) string {
	if n >= 10000 {
		return fmt.Sprintf("%dk", n/1000)
	}
	if n >= 1000 {
		return fmt.Sprintf("%.1fk", float64(n)/1000)
	}
	return fmt.Sprintf("%d", n)
}
