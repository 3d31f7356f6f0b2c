// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Ava TUI.
package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// =============================================================================
// LAYOUT MODES
// =============================================================================

// LayoutMode describes how much horizontal room the UI has to work with.
type LayoutMode int

const (
	// LayoutNarrow - under 60 columns; panels collapse, hints hide.
	LayoutNarrow LayoutMode = iota
	// LayoutMedium - 60-99 columns; standard single-column layout.
	LayoutMedium
	// LayoutWide - 100+ columns; room for the citation side panel.
	LayoutWide
)

// =============================================================================
// THEME
// =============================================================================

// Theme carries every style the UI renders with, plus the detected terminal
// capabilities. A single Theme is created at startup and shared by all
// models; SetSize is called on every terminal resize.
type Theme struct {
	// Terminal capabilities detected at startup.
	IsDark       bool
	HasTrueColor bool
	ColorProfile termenv.Profile

	// Current terminal dimensions.
	Width  int
	Height int

	// -------------------------------------------------------------------------
	// Application chrome
	// -------------------------------------------------------------------------
	App         lipgloss.Style
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderInfo  lipgloss.Style

	// -------------------------------------------------------------------------
	// Message bubbles
	// -------------------------------------------------------------------------
	UserBubble      lipgloss.Style
	UserLabel       lipgloss.Style
	AssistantBubble lipgloss.Style
	AssistantLabel  lipgloss.Style
	SystemBubble    lipgloss.Style
	MessageMeta     lipgloss.Style

	// -------------------------------------------------------------------------
	// Streaming indicators
	// -------------------------------------------------------------------------
	Spinner      lipgloss.Style
	ThinkingText lipgloss.Style
	ThinkingTime lipgloss.Style

	// -------------------------------------------------------------------------
	// Input area
	// -------------------------------------------------------------------------
	InputContainer   lipgloss.Style
	InputPrompt      lipgloss.Style
	InputPlaceholder lipgloss.Style

	// -------------------------------------------------------------------------
	// Status bar
	// -------------------------------------------------------------------------
	StatusBar     lipgloss.Style
	StatusBot     lipgloss.Style
	StatusBackend lipgloss.Style
	StatusBacklog lipgloss.Style
	StatusKey     lipgloss.Style
	StatusDesc    lipgloss.Style
	StatusMessage lipgloss.Style

	// -------------------------------------------------------------------------
	// Citations
	// -------------------------------------------------------------------------
	CitationMarkerDoc  lipgloss.Style
	CitationMarkerLink lipgloss.Style
	FootnoteOrdinal    lipgloss.Style
	FootnoteTitle      lipgloss.Style
	FootnoteTarget     lipgloss.Style
	CitationPanel      lipgloss.Style
	CitationPanelTitle lipgloss.Style
	GapNotice          lipgloss.Style

	// -------------------------------------------------------------------------
	// Artifacts (diagram and story-map overlay)
	// -------------------------------------------------------------------------
	ArtifactOverlay lipgloss.Style
	ArtifactTab     lipgloss.Style
	ArtifactTabOn   lipgloss.Style
	ArtifactTitle   lipgloss.Style
	ArtifactHint    lipgloss.Style

	// -------------------------------------------------------------------------
	// Follow-up suggestions
	// -------------------------------------------------------------------------
	FollowupHeader lipgloss.Style
	FollowupItem   lipgloss.Style

	// -------------------------------------------------------------------------
	// Errors
	// -------------------------------------------------------------------------
	ErrorBox        lipgloss.Style
	ErrorTitle      lipgloss.Style
	ErrorMessage    lipgloss.Style
	ErrorSuggestion lipgloss.Style

	// -------------------------------------------------------------------------
	// Code rendering
	// -------------------------------------------------------------------------
	CodeBlock      lipgloss.Style
	CodeLangBadge  lipgloss.Style
	CodeLineNumber lipgloss.Style
	InlineCode     lipgloss.Style

	// -------------------------------------------------------------------------
	// Welcome screen
	// -------------------------------------------------------------------------
	WelcomeBox      lipgloss.Style
	WelcomeLogo     lipgloss.Style
	WelcomeVersion  lipgloss.Style
	WelcomeGreeting lipgloss.Style
	WelcomeInfo     lipgloss.Style
	WelcomePrompt   lipgloss.Style
	WelcomeKey      lipgloss.Style

	// -------------------------------------------------------------------------
	// Help
	// -------------------------------------------------------------------------
	HelpKey  lipgloss.Style
	HelpDesc lipgloss.Style
}

// NewTheme creates a theme with terminal capabilities detected from the
// environment.
func NewTheme() *Theme {
	return NewThemeWithMode("auto")
}

// NewThemeWithMode creates a theme honoring the ui.theme config key.
// "light" and "dark" force the palette; anything else auto-detects.
func NewThemeWithMode(mode string) *Theme {
	t := &Theme{
		ColorProfile: termenv.ColorProfile(),
	}

	switch mode {
	case "light":
		t.IsDark = false
	case "dark":
		t.IsDark = true
	default:
		t.IsDark = termenv.HasDarkBackground()
	}
	// Keep lipgloss's adaptive color resolution in sync with the decision,
	// otherwise forced modes would only apply to styles built here.
	lipgloss.SetHasDarkBackground(t.IsDark)

	t.HasTrueColor = t.ColorProfile == termenv.TrueColor
	t.initStyles()
	return t
}

// initStyles builds every style from the palette in colors.go.
func (t *Theme) initStyles() {
	// Application chrome
	t.App = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Background(Violet).
		Foreground(TextInverse).
		Bold(true).
		Padding(0, 1)
	t.HeaderInfo = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Message bubbles
	t.UserBubble = lipgloss.NewStyle().
		Background(UserBubbleBg).
		Foreground(UserBubbleFg).
		Padding(0, 1)
	t.UserLabel = lipgloss.NewStyle().
		Foreground(Magenta).
		Bold(true)
	t.AssistantBubble = lipgloss.NewStyle().
		Foreground(AssistantBubbleFg)
	t.AssistantLabel = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.SystemBubble = lipgloss.NewStyle().
		Foreground(SystemBubbleFg).
		Italic(true)
	t.MessageMeta = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Streaming indicators
	t.Spinner = lipgloss.NewStyle().
		Foreground(Violet)
	t.ThinkingText = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Italic(true)
	t.ThinkingTime = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Input area
	t.InputContainer = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)
	t.InputPrompt = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.InputPlaceholder = lipgloss.NewStyle().
		Foreground(TextMuted)

	// Status bar
	t.StatusBar = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(TextSecondary).
		Padding(0, 1)
	t.StatusBot = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.StatusBackend = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.StatusBacklog = lipgloss.NewStyle().
		Foreground(Amber)
	t.StatusKey = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)
	t.StatusDesc = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.StatusMessage = lipgloss.NewStyle().
		Foreground(Emerald)

	// Citations
	t.CitationMarkerDoc = lipgloss.NewStyle().
		Foreground(CitationDoc).
		Bold(true)
	t.CitationMarkerLink = lipgloss.NewStyle().
		Foreground(CitationLink).
		Bold(true)
	t.FootnoteOrdinal = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.FootnoteTitle = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.FootnoteTarget = lipgloss.NewStyle().
		Foreground(Teal).
		Underline(true)
	t.CitationPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 1)
	t.CitationPanelTitle = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.GapNotice = lipgloss.NewStyle().
		Background(GapNoticeBg).
		Foreground(GapNoticeFg).
		Padding(0, 1)

	// Artifacts
	t.ArtifactOverlay = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderAccent).
		Background(Overlay).
		Padding(1, 2)
	t.ArtifactTab = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 2)
	t.ArtifactTabOn = lipgloss.NewStyle().
		Foreground(TextInverse).
		Background(Violet).
		Bold(true).
		Padding(0, 2)
	t.ArtifactTitle = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.ArtifactHint = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)

	// Follow-up suggestions
	t.FollowupHeader = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)
	t.FollowupItem = lipgloss.NewStyle().
		Foreground(Sky)

	// Errors
	t.ErrorBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Rose).
		Padding(1, 2)
	t.ErrorTitle = lipgloss.NewStyle().
		Foreground(Rose).
		Bold(true)
	t.ErrorMessage = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.ErrorSuggestion = lipgloss.NewStyle().
		Foreground(TextSecondary)

	// Code rendering
	t.CodeBlock = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.CodeLangBadge = lipgloss.NewStyle().
		Background(Violet).
		Foreground(TextInverse).
		Padding(0, 1)
	t.CodeLineNumber = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.InlineCode = lipgloss.NewStyle().
		Background(SurfaceDim).
		Foreground(Magenta)

	// Welcome screen
	t.WelcomeBox = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderAccent).
		Padding(1, 3)
	t.WelcomeLogo = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.WelcomeVersion = lipgloss.NewStyle().
		Foreground(TextMuted)
	t.WelcomeGreeting = lipgloss.NewStyle().
		Foreground(TextPrimary)
	t.WelcomeInfo = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.WelcomePrompt = lipgloss.NewStyle().
		Foreground(Sky)
	t.WelcomeKey = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	// Help
	t.HelpKey = lipgloss.NewStyle().
		Foreground(Violet).
		Bold(true)
	t.HelpDesc = lipgloss.NewStyle().
		Foreground(TextSecondary)
}

// SetSize updates the theme with current terminal dimensions.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// GetLayoutMode returns the layout mode for the current width.
func (t *Theme) GetLayoutMode() LayoutMode {
	switch {
	case t.Width < 60:
		return LayoutNarrow
	case t.Width < 100:
		return LayoutMedium
	default:
		return LayoutWide
	}
}
