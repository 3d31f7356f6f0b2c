// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"strings"
	"testing"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

func testCitations() []*answer.Citation {
	return []*answer.Citation{
		{
			RawToken:     "DLP_Policy.pdf",
			Kind:         answer.KindDocument,
			DisplayTitle: "DLP_Policy.pdf",
			Ordinal:      1,
		},
		{
			RawToken:     "CONFLUENCE_LINK|||https://vocus.atlassian.net/wiki/x|||Change Process",
			Kind:         answer.KindExternalLink,
			DisplayTitle: "Change Process",
			TargetURL:    "https://vocus.atlassian.net/wiki/x",
			Ordinal:      2,
		},
	}
}

// =============================================================================
// MARKER TESTS
// =============================================================================

func TestMarkerFor(t *testing.T) {
	theme := styles.NewTheme()
	cits := testCitations()

	doc := MarkerFor(theme, cits[0])
	if !strings.Contains(doc, "[1]") {
		t.Errorf("document marker = %q, want to contain [1]", doc)
	}

	link := MarkerFor(theme, cits[1])
	if !strings.Contains(link, "[2]") {
		t.Errorf("link marker = %q, want to contain [2]", link)
	}
}

// =============================================================================
// FOOTNOTE TESTS
// =============================================================================

func TestRenderFootnotes(t *testing.T) {
	theme := styles.NewTheme()
	out := RenderFootnotes(theme, testCitations(), 120)

	if !strings.Contains(out, "DLP_Policy.pdf") {
		t.Error("footnotes should include the document title")
	}
	if !strings.Contains(out, "Change Process") {
		t.Error("footnotes should include the link title")
	}
	if !strings.Contains(out, "[1]") || !strings.Contains(out, "[2]") {
		t.Error("footnotes should carry ordinals")
	}

	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Errorf("footnotes = %d lines, want 2", len(lines))
	}
}

func TestRenderFootnotesEmpty(t *testing.T) {
	theme := styles.NewTheme()
	if out := RenderFootnotes(theme, nil, 80); out != "" {
		t.Errorf("footnotes for no citations = %q, want empty", out)
	}
}

func TestRenderFootnotesNarrowOmitsURL(t *testing.T) {
	theme := styles.NewTheme()
	out := RenderFootnotes(theme, testCitations(), 30)

	if strings.Contains(out, "https://") {
		t.Error("narrow footnotes should omit the URL")
	}
	if !strings.Contains(out, "Change Process") {
		t.Error("narrow footnotes should keep the title")
	}
}

// =============================================================================
// GAP NOTICE TESTS
// =============================================================================

func TestRenderGapNotice(t *testing.T) {
	theme := styles.NewTheme()
	out := RenderGapNotice(theme, 80)

	if !strings.Contains(out, styles.StatusIndicators.Warning) {
		t.Error("gap notice should carry the warning indicator")
	}
	if !strings.Contains(out, "knowledge base") {
		t.Error("gap notice should explain the gap")
	}
}

// =============================================================================
// CITATION PANEL TESTS
// =============================================================================

func TestCitationPanelToggle(t *testing.T) {
	panel := NewCitationPanel(styles.NewTheme())

	if panel.IsVisible() {
		t.Error("new panel should be hidden")
	}
	panel.Toggle()
	if !panel.IsVisible() {
		t.Error("Toggle should show the panel")
	}
	panel.Toggle()
	if panel.IsVisible() {
		t.Error("second Toggle should hide the panel")
	}
	panel.Toggle()
	panel.Hide()
	if panel.IsVisible() {
		t.Error("Hide should hide the panel")
	}
}

func TestCitationPanelView(t *testing.T) {
	panel := NewCitationPanel(styles.NewTheme())
	panel.SetSize(50, 30)

	if out := panel.View(testCitations()); out != "" {
		t.Error("hidden panel should render nothing")
	}

	panel.Toggle()
	out := panel.View(testCitations())
	if !strings.Contains(out, "Sources (2)") {
		t.Errorf("panel should show the source count, got %q", out)
	}
	if !strings.Contains(out, "DLP_Policy.pdf") {
		t.Error("panel should list the document")
	}
}

func TestCitationPanelViewEmpty(t *testing.T) {
	panel := NewCitationPanel(styles.NewTheme())
	panel.SetSize(50, 30)
	panel.Toggle()

	out := panel.View(nil)
	if !strings.Contains(out, "Sources (0)") {
		t.Error("empty panel should show a zero count")
	}
	if !strings.Contains(out, "No sources") {
		t.Error("empty panel should say there are no sources")
	}
}
