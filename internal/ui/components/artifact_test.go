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

func testDiagram() *answer.Payload {
	return &answer.Payload{
		Kind:  answer.PayloadProcessDiagram,
		Body:  "<mxGraphModel>\n  <root/>\n</mxGraphModel>",
		Title: "Provisioning Flow",
	}
}

func testStoryMap() *answer.Payload {
	return &answer.Payload{
		Kind: answer.PayloadStoryMap,
		Body: "| Activity | Task |\n|---|---|\n| Order | Validate |",
	}
}

// =============================================================================
// VISIBILITY TESTS
// =============================================================================

func TestArtifactViewToggle(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())

	// Contentless overlay never shows.
	av.Toggle()
	if av.IsVisible() {
		t.Error("overlay without content should stay hidden")
	}

	av.SetPayloads(testDiagram(), nil)
	if !av.HasContent() {
		t.Error("HasContent should be true after SetPayloads")
	}
	av.Toggle()
	if !av.IsVisible() {
		t.Error("Toggle should show the overlay once content exists")
	}
	av.Toggle()
	if av.IsVisible() {
		t.Error("second Toggle should hide the overlay")
	}
}

func TestArtifactViewClearHides(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(testDiagram(), nil)
	av.Toggle()

	av.SetPayloads(nil, nil)
	if av.IsVisible() {
		t.Error("clearing payloads should hide the overlay")
	}
	if av.HasContent() {
		t.Error("cleared overlay should have no content")
	}
}

// =============================================================================
// TAB TESTS
// =============================================================================

func TestArtifactViewNextTab(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(testDiagram(), testStoryMap())

	if av.activeTab != 0 {
		t.Errorf("initial tab = %d, want 0", av.activeTab)
	}
	av.NextTab()
	if av.activeTab != 1 {
		t.Errorf("after NextTab, tab = %d, want 1", av.activeTab)
	}
	av.NextTab()
	if av.activeTab != 0 {
		t.Errorf("NextTab should wrap, got %d", av.activeTab)
	}
}

func TestArtifactViewSingleTabNoWrapPanic(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(nil, testStoryMap())

	av.NextTab()
	av.NextTab()
	if av.activeTab != 0 {
		t.Errorf("single tab should stay at 0, got %d", av.activeTab)
	}
}

// =============================================================================
// RENDER TESTS
// =============================================================================

func TestArtifactViewRendersDiagram(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(testDiagram(), nil)
	av.SetSize(100, 40)
	av.Toggle()

	out := av.View()
	if out == "" {
		t.Fatal("visible overlay should render")
	}
	if !strings.Contains(out, "Provisioning Flow") {
		t.Error("overlay should show the payload title")
	}
	if !strings.Contains(out, "Diagram") {
		t.Error("overlay should show the Diagram tab")
	}
}

func TestArtifactViewRendersStoryMap(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(nil, testStoryMap())
	av.SetSize(100, 40)
	av.Toggle()

	out := av.View()
	if !strings.Contains(out, "Story Map") {
		t.Error("overlay should show the Story Map tab")
	}
	// The markdown table content must survive rendering in some form.
	if !strings.Contains(out, "Validate") {
		t.Error("overlay should render the story map content")
	}
}

func TestArtifactViewHiddenRendersNothing(t *testing.T) {
	av := NewArtifactView(styles.NewTheme())
	av.SetPayloads(testDiagram(), nil)
	av.SetSize(100, 40)

	if out := av.View(); out != "" {
		t.Error("hidden overlay should render nothing")
	}
}

// =============================================================================
// HINT TESTS
// =============================================================================

func TestRenderArtifactHint(t *testing.T) {
	theme := styles.NewTheme()

	if out := RenderArtifactHint(theme, nil, nil); out != "" {
		t.Error("no payloads should produce no hint")
	}

	out := RenderArtifactHint(theme, testDiagram(), nil)
	if !strings.Contains(out, "diagram") {
		t.Errorf("hint = %q, want to mention diagram", out)
	}

	both := RenderArtifactHint(theme, testDiagram(), testStoryMap())
	if !strings.Contains(both, "diagram") || !strings.Contains(both, "story map") {
		t.Errorf("hint = %q, want to mention both payloads", both)
	}
}
