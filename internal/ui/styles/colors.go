// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Ava TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// PRIMARY ACCENT COLORS
// =============================================================================

// Violet - Primary accent. Ava's identity color: labels, the header badge,
// selections, and the input prompt.
var Violet = lipgloss.AdaptiveColor{Light: "#6D28D9", Dark: "#A78BFA"}

// Magenta - Secondary brand accent for user message labels and highlights.
var Magenta = lipgloss.AdaptiveColor{Light: "#BE185D", Dark: "#F472B6"}

// Teal - External links: Confluence pages and other URLs surfaced by
// citations.
var Teal = lipgloss.AdaptiveColor{Light: "#0F766E", Dark: "#2DD4BF"}

// Sky - Document references resolved against the retrieval corpus.
var Sky = lipgloss.AdaptiveColor{Light: "#0369A1", Dark: "#7DD3FC"}

// Emerald - Success states and a reachable backend.
var Emerald = lipgloss.AdaptiveColor{Light: "#047857", Dark: "#34D399"}

// Amber - Warnings and the knowledge-gap notice.
var Amber = lipgloss.AdaptiveColor{Light: "#B45309", Dark: "#FBBF24"}

// Rose - Errors and critical states.
var Rose = lipgloss.AdaptiveColor{Light: "#BE123C", Dark: "#FB7185"}

// =============================================================================
// SURFACE COLORS
// =============================================================================

// Layered surface system for depth. Base is the app background; Surface and
// Overlay sit progressively "closer" to the reader.

// Base - Main application background.
var Base = lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#1E1E2E"}

// Surface - Elevated elements: assistant bubbles, panels.
var Surface = lipgloss.AdaptiveColor{Light: "#F4F4F5", Dark: "#27273A"}

// SurfaceDim - Subtle backgrounds: header, status bar.
var SurfaceDim = lipgloss.AdaptiveColor{Light: "#E4E4E7", Dark: "#181825"}

// Overlay - Popups and modal overlays (artifact viewer, error box).
var Overlay = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#313244"}

// BorderColor - Default border for panels and containers.
var BorderColor = lipgloss.AdaptiveColor{Light: "#D4D4D8", Dark: "#45475A"}

// BorderAccent - Border for focused or highlighted panels.
var BorderAccent = lipgloss.AdaptiveColor{Light: "#8B5CF6", Dark: "#8B7EC8"}

// =============================================================================
// TEXT COLORS
// =============================================================================

// Hierarchical text colors. Prefer these over raw accents for running text.

// TextPrimary - Main content text.
var TextPrimary = lipgloss.AdaptiveColor{Light: "#18181B", Dark: "#E4E4E7"}

// TextSecondary - Supporting text: metadata, captions.
var TextSecondary = lipgloss.AdaptiveColor{Light: "#3F3F46", Dark: "#A1A1AA"}

// TextMuted - De-emphasized text: hints, placeholders, timestamps.
var TextMuted = lipgloss.AdaptiveColor{Light: "#71717A", Dark: "#6B7280"}

// TextInverse - Text on accent-colored backgrounds.
var TextInverse = lipgloss.AdaptiveColor{Light: "#FAFAFA", Dark: "#18181B"}

// =============================================================================
// MESSAGE BUBBLE COLORS
// =============================================================================

// UserBubbleBg - Background for user messages (violet-tinted).
var UserBubbleBg = lipgloss.AdaptiveColor{Light: "#EDE9FE", Dark: "#2E2A4A"}

// UserBubbleFg - Text color for user messages.
var UserBubbleFg = lipgloss.AdaptiveColor{Light: "#1E1B4B", Dark: "#E0DEF4"}

// AssistantBubbleBg - Background for Ava's messages (neutral surface).
var AssistantBubbleBg = Surface

// AssistantBubbleFg - Text color for Ava's messages.
var AssistantBubbleFg = TextPrimary

// SystemBubbleFg - Text color for system notices in the transcript.
var SystemBubbleFg = TextMuted

// =============================================================================
// CITATION COLORS
// =============================================================================

// CitationDoc - Ordinal markers and panel entries for document references.
var CitationDoc = Sky

// CitationLink - Ordinal markers and panel entries for external links.
var CitationLink = Teal

// CitationInvalid - Bracket tokens that failed classification and render as
// literal text.
var CitationInvalid = TextMuted

// GapNoticeBg - Background for the knowledge-gap notice.
var GapNoticeBg = lipgloss.AdaptiveColor{Light: "#FEF3C7", Dark: "#3B2F1E"}

// GapNoticeFg - Foreground for the knowledge-gap notice.
var GapNoticeFg = Amber

// =============================================================================
// ACCESSIBILITY
// =============================================================================

// ACCESSIBILITY: status is always communicated with a text indicator alongside
// color, so state remains readable on monochrome terminals and to colorblind
// users. Indicators are ASCII-only for maximum terminal compatibility.

// StatusIndicatorSet groups the textual status indicators.
type StatusIndicatorSet struct {
	Success string
	Error   string
	Warning string
	Info    string
	Pending string
	Active  string
}

// StatusIndicators is the indicator set used across the UI.
var StatusIndicators = StatusIndicatorSet{
	Success: "[OK]",
	Error:   "[X]",
	Warning: "[!]",
	Info:    "[i]",
	Pending: "[ ]",
	Active:  "[*]",
}

// =============================================================================
// RENDER HELPERS
// =============================================================================

// RenderSuccess formats a success message with indicator and color.
func RenderSuccess(text string) string {
	return lipgloss.NewStyle().
		Foreground(Emerald).
		Render(StatusIndicators.Success + " " + text)
}

// RenderError formats an error message with indicator and color.
func RenderError(text string) string {
	return lipgloss.NewStyle().
		Foreground(Rose).
		Render(StatusIndicators.Error + " " + text)
}

// RenderWarning formats a warning message with indicator and color.
func RenderWarning(text string) string {
	return lipgloss.NewStyle().
		Foreground(Amber).
		Render(StatusIndicators.Warning + " " + text)
}

// RenderInfo formats an informational message with indicator and color.
func RenderInfo(text string) string {
	return lipgloss.NewStyle().
		Foreground(Sky).
		Render(StatusIndicators.Info + " " + text)
}

// RenderLink formats a URL for display.
func RenderLink(url string) string {
	return lipgloss.NewStyle().
		Foreground(Teal).
		Underline(true).
		Render(url)
}
