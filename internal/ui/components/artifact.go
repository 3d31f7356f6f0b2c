// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// ARTIFACT OVERLAY
// =============================================================================

// ArtifactView is the overlay that displays structured payloads lifted out
// of an answer: the process diagram XML and the story-map table. The
// diagram is shown syntax-highlighted; the story map is rendered as
// markdown.
type ArtifactView struct {
	visible   bool
	activeTab int // index into tabs()

	diagram  *answer.Payload
	storyMap *answer.Payload

	width  int
	height int

	theme *styles.Theme
}

// NewArtifactView creates a hidden artifact overlay.
func NewArtifactView(theme *styles.Theme) ArtifactView {
	return ArtifactView{theme: theme}
}

// SetPayloads replaces the payloads shown by the overlay. Passing two nils
// clears and hides it.
func (a *ArtifactView) SetPayloads(diagram, storyMap *answer.Payload) {
	a.diagram = diagram
	a.storyMap = storyMap
	a.activeTab = 0
	if !a.HasContent() {
		a.visible = false
	}
}

// HasContent reports whether there is anything to show.
func (a *ArtifactView) HasContent() bool {
	return a.diagram != nil || a.storyMap != nil
}

// Toggle flips visibility; a contentless overlay stays hidden.
func (a *ArtifactView) Toggle() {
	if !a.HasContent() {
		a.visible = false
		return
	}
	a.visible = !a.visible
}

// Hide closes the overlay.
func (a *ArtifactView) Hide() {
	a.visible = false
}

// IsVisible reports whether the overlay is showing.
func (a *ArtifactView) IsVisible() bool {
	return a.visible
}

// NextTab cycles to the next available tab.
func (a *ArtifactView) NextTab() {
	n := len(a.tabs())
	if n > 0 {
		a.activeTab = (a.activeTab + 1) % n
	}
}

// SetSize updates the overlay dimensions.
func (a *ArtifactView) SetSize(width, height int) {
	a.width = width
	a.height = height
}

// tabs returns the payloads present, in display order.
func (a *ArtifactView) tabs() []*answer.Payload {
	var t []*answer.Payload
	if a.diagram != nil {
		t = append(t, a.diagram)
	}
	if a.storyMap != nil {
		t = append(t, a.storyMap)
	}
	return t
}

// View renders the overlay centered in the available space.
func (a ArtifactView) View() string {
	if !a.visible || !a.HasContent() {
		return ""
	}

	width := a.width
	if width == 0 {
		width = 80
	}
	height := a.height
	if height == 0 {
		height = 24
	}

	boxWidth := width - 8
	if boxWidth > 110 {
		boxWidth = 110
	}
	if boxWidth < 40 {
		boxWidth = 40
	}
	innerWidth := boxWidth - 6

	tabs := a.tabs()
	active := a.activeTab
	if active >= len(tabs) {
		active = 0
	}
	payload := tabs[active]

	var sb strings.Builder
	sb.WriteString(a.renderTabs(tabs, active))
	sb.WriteString("\n\n")

	if payload.Title != "" {
		sb.WriteString(a.theme.ArtifactTitle.Render(payload.Title))
		sb.WriteString("\n\n")
	}

	body := a.renderBody(payload, innerWidth)
	// Clip the body so the overlay never exceeds the terminal.
	maxBodyLines := height - 12
	if maxBodyLines < 5 {
		maxBodyLines = 5
	}
	lines := strings.Split(body, "\n")
	if len(lines) > maxBodyLines {
		hidden := len(lines) - maxBodyLines
		lines = lines[:maxBodyLines]
		lines = append(lines, a.theme.ArtifactHint.Render(fmt.Sprintf("... %d more lines (/export to save)", hidden)))
	}
	sb.WriteString(strings.Join(lines, "\n"))

	sb.WriteString("\n\n")
	hint := "ctrl+o closes"
	if len(tabs) > 1 {
		hint = "tab switches  *  " + hint
	}
	sb.WriteString(a.theme.ArtifactHint.Render(hint))

	box := a.theme.ArtifactOverlay.Width(boxWidth).Render(sb.String())
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
}

// renderTabs renders the tab strip.
func (a ArtifactView) renderTabs(tabs []*answer.Payload, active int) string {
	parts := make([]string, 0, len(tabs))
	for i, p := range tabs {
		label := tabLabel(p.Kind)
		if i == active {
			parts = append(parts, a.theme.ArtifactTabOn.Render(label))
		} else {
			parts = append(parts, a.theme.ArtifactTab.Render(label))
		}
	}
	return strings.Join(parts, " ")
}

// renderBody renders a payload for display: diagrams as highlighted XML,
// story maps through the markdown renderer.
func (a ArtifactView) renderBody(p *answer.Payload, width int) string {
	switch p.Kind {
	case answer.PayloadProcessDiagram:
		return highlightCode(p.Body, "xml")
	case answer.PayloadStoryMap:
		// Markdown tables need the renderer; fall back to the raw body on
		// any failure so the overlay never goes blank.
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return p.Body
		}
		out, err := r.Render(p.Body)
		if err != nil {
			return p.Body
		}
		return strings.TrimRight(out, "\n")
	default:
		return p.Body
	}
}

// tabLabel returns the tab strip label for a payload kind.
func tabLabel(k answer.PayloadKind) string {
	switch k {
	case answer.PayloadProcessDiagram:
		return "Diagram"
	case answer.PayloadStoryMap:
		return "Story Map"
	default:
		return "Artifact"
	}
}

// RenderArtifactHint renders the one-line hint shown under an answer that
// carried side-channel payloads.
func RenderArtifactHint(theme *styles.Theme, diagram, storyMap *answer.Payload) string {
	var kinds []string
	if diagram != nil {
		kinds = append(kinds, "diagram")
	}
	if storyMap != nil {
		kinds = append(kinds, "story map")
	}
	if len(kinds) == 0 {
		return ""
	}
	return theme.ArtifactHint.Render("[" + strings.Join(kinds, " + ") + " attached - ctrl+o to view]")
}
