// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"fmt"
	"strings"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// CITATION RENDERING HELPERS
// =============================================================================

// MarkerFor renders an inline citation marker ("[3]") colored by kind.
func MarkerFor(theme *styles.Theme, c *answer.Citation) string {
	marker := fmt.Sprintf("[%d]", c.Ordinal)
	if c.Kind == answer.KindExternalLink {
		return theme.CitationMarkerLink.Render(marker)
	}
	return theme.CitationMarkerDoc.Render(marker)
}

// RenderFootnotes renders the reference list shown under a finished answer.
// One line per citation in ordinal order; link targets are truncated to the
// available width.
func RenderFootnotes(theme *styles.Theme, citations []*answer.Citation, width int) string {
	if len(citations) == 0 {
		return ""
	}
	if width < 20 {
		width = 20
	}

	lines := make([]string, 0, len(citations))
	for _, c := range citations {
		ordinal := theme.FootnoteOrdinal.Render(fmt.Sprintf("[%d]", c.Ordinal))
		title := theme.FootnoteTitle.Render(c.DisplayTitle)
		line := ordinal + " " + title
		if c.Kind == answer.KindExternalLink && c.TargetURL != "" {
			avail := width - util.StringWidth(fmt.Sprintf("[%d] %s  ", c.Ordinal, c.DisplayTitle))
			if avail > 12 {
				line += "  " + theme.FootnoteTarget.Render(util.TruncateWidth(c.TargetURL, avail))
			}
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// RenderGapNotice renders the "answer may be incomplete" banner shown when
// the backend flagged a knowledge gap.
func RenderGapNotice(theme *styles.Theme, width int) string {
	text := styles.StatusIndicators.Warning + " The knowledge base may not fully cover this question."
	if width > 10 {
		return theme.GapNotice.Width(width).Render(text)
	}
	return theme.GapNotice.Render(text)
}

// =============================================================================
// CITATION SIDE PANEL
// =============================================================================

// CitationPanel is the toggleable side panel listing the current answer's
// references with their full targets.
type CitationPanel struct {
	visible bool
	width   int
	height  int
	theme   *styles.Theme
}

// NewCitationPanel creates a hidden citation panel.
func NewCitationPanel(theme *styles.Theme) CitationPanel {
	return CitationPanel{theme: theme}
}

// Toggle flips panel visibility.
func (p *CitationPanel) Toggle() {
	p.visible = !p.visible
}

// Hide closes the panel.
func (p *CitationPanel) Hide() {
	p.visible = false
}

// IsVisible reports whether the panel is showing.
func (p *CitationPanel) IsVisible() bool {
	return p.visible
}

// SetSize updates the panel dimensions.
func (p *CitationPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// View renders the panel for the given citations.
func (p CitationPanel) View(citations []*answer.Citation) string {
	if !p.visible {
		return ""
	}

	width := p.width
	if width < 30 {
		width = 30
	}
	innerWidth := width - 4

	var sb strings.Builder
	sb.WriteString(p.theme.CitationPanelTitle.Render(fmt.Sprintf("Sources (%d)", len(citations))))
	sb.WriteString("\n")

	if len(citations) == 0 {
		sb.WriteString("\n")
		sb.WriteString(p.theme.MessageMeta.Render("No sources in this answer."))
	}

	for _, c := range citations {
		sb.WriteString("\n")
		sb.WriteString(MarkerFor(p.theme, c))
		sb.WriteString(" ")
		sb.WriteString(p.theme.FootnoteTitle.Render(util.TruncateWidth(c.DisplayTitle, innerWidth-6)))
		if c.Kind == answer.KindExternalLink && c.TargetURL != "" {
			sb.WriteString("\n    ")
			sb.WriteString(p.theme.FootnoteTarget.Render(util.TruncateWidth(c.TargetURL, innerWidth-4)))
		}
	}

	sb.WriteString("\n\n")
	sb.WriteString(p.theme.MessageMeta.Render("/open <n> opens a link  *  ctrl+s closes"))

	return p.theme.CitationPanel.Width(width).Render(sb.String())
}
