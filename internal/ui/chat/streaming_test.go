// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/stream"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

// newTestModel builds a sized chat model with no backend wiring.
func newTestModel() Model {
	m := New(Options{
		Theme:  styles.NewThemeWithMode("dark"),
		Config: config.Default(),
	})
	m, _ = m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// beginTurn puts the model mid-turn the way sendMessage would, without
// needing a backend.
func beginTurn(m Model, question string) (Model, *model.Message) {
	m.conversation.AddUserMessage(question)
	asst := m.conversation.AddAssistantMessage()
	m.streamingMsgID = asst.ID
	m.state = StateThinking
	m.thinkingStart = time.Now()
	return m, asst
}

func testSources() []string {
	return []string{
		"DLP_Policy.pdf: Data handling requirements for customer information",
		"CONFLUENCE_LINK|||https://wiki.vocus.com/display/SEC/Data+Handling|||Data+Handling+Guide: escalation steps",
	}
}

// =============================================================================
// REVEAL TICKS
// =============================================================================

func TestRevealTickAppendsText(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "What is the DLP policy?")

	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "The po"})
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "The policy requires"})

	if got := asst.GetDisplayContent(); got != "The policy requires" {
		t.Errorf("content = %q, want %q", got, "The policy requires")
	}
	if m.state != StateStreaming {
		t.Errorf("state = %v, want StateStreaming after first text", m.state)
	}
}

func TestRevealTickIgnoresStaleTurn(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")

	m, _ = m.Update(RevealTickMsg{MessageID: "msg_stale", Text: "leftover from last turn"})

	if got := asst.GetDisplayContent(); got != "" {
		t.Errorf("stale tick mutated the live message: %q", got)
	}
	if m.state != StateThinking {
		t.Errorf("state = %v, want StateThinking", m.state)
	}
}

func TestRevealTickParsesCitations(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")

	m, _ = m.Update(StreamMetaMsg{MessageID: asst.ID, Sources: testSources()})
	m, _ = m.Update(RevealTickMsg{
		MessageID: asst.ID,
		Text:      "Customer data is restricted [DLP_Policy.pdf].",
		Done:      true,
	})

	if asst.Parsed == nil {
		t.Fatal("Parsed not set after reveal tick")
	}
	if len(asst.Parsed.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(asst.Parsed.Citations))
	}
	c := asst.Parsed.Citations[0]
	if c.Kind != answer.KindDocument {
		t.Errorf("kind = %v, want KindDocument", c.Kind)
	}
	if c.Ordinal != 1 {
		t.Errorf("ordinal = %d, want 1", c.Ordinal)
	}
}

func TestRevealTickWithheldCitationAppearsWhenComplete(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")
	m, _ = m.Update(StreamMetaMsg{MessageID: asst.ID, Sources: testSources()})

	// Mid-stream the half-open bracket is withheld from segments but the
	// raw text is still appended.
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "See [DLP_Po"})
	if len(asst.Parsed.Citations) != 0 {
		t.Fatalf("mid-stream citations = %d, want 0", len(asst.Parsed.Citations))
	}

	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "See [DLP_Policy.pdf]", Done: true})
	if len(asst.Parsed.Citations) != 1 {
		t.Fatalf("completed citations = %d, want 1", len(asst.Parsed.Citations))
	}
	if got := asst.GetDisplayContent(); got != "See [DLP_Policy.pdf]" {
		t.Errorf("content = %q", got)
	}
}

// =============================================================================
// STREAM METADATA
// =============================================================================

func TestStreamMetaSetsSourcesAndSession(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")

	m, _ = m.Update(StreamMetaMsg{
		MessageID:    asst.ID,
		Sources:      testSources(),
		SessionState: "sess-abc",
	})

	if len(asst.Sources) != 2 {
		t.Errorf("sources = %d, want 2", len(asst.Sources))
	}
	if m.conversation.SessionState != "sess-abc" {
		t.Errorf("session state = %q, want sess-abc", m.conversation.SessionState)
	}
}

// =============================================================================
// COMPLETION
// =============================================================================

func TestStreamCompleteFinalizesMessage(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "Done answer.", Done: true})

	stats := model.NewStatistics()
	stats.RecordFirstToken()
	stats.Finalize(42)

	m, _ = m.Update(StreamCompleteMsg{
		MessageID:    asst.ID,
		Stats:        stats,
		Followups:    []string{"What about laptops?", "Who approves exceptions?"},
		SessionState: "sess-next",
	})

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if asst.IsStreaming {
		t.Error("message still marked streaming after completion")
	}
	if asst.Content != "Done answer." {
		t.Errorf("final content = %q", asst.Content)
	}
	if len(m.followups) != 2 {
		t.Errorf("followups = %d, want 2", len(m.followups))
	}
	if m.conversation.SessionState != "sess-next" {
		t.Errorf("session state = %q", m.conversation.SessionState)
	}
	if m.streamingMsgID != "" {
		t.Errorf("streamingMsgID = %q, want cleared", m.streamingMsgID)
	}
}

func TestStreamCompleteStoresPayloadsForOverlay(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")

	text := "Here is the flow. DIAGRAM_START<mxGraphModel><root><mxCell id=\"0\"/></root></mxGraphModel>DIAGRAM_END"
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: text, Done: true})
	m, _ = m.Update(StreamCompleteMsg{MessageID: asst.ID})

	if !m.artifact.HasContent() {
		t.Error("artifact view has no content after an answer with a diagram")
	}
}

// =============================================================================
// ERRORS AND CANCELLATION
// =============================================================================

func TestStreamErrorKeepsPartialAndShowsOverlay(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "Partial ans"})

	m, _ = m.Update(StreamErrorMsg{MessageID: asst.ID, Err: api.ErrBackendUnavailable})

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if asst.Content != "Partial ans" {
		t.Errorf("partial content lost: %q", asst.Content)
	}
	if !m.errDisplay.IsVisible() {
		t.Error("error overlay not shown")
	}
}

func TestCancelKeepsRevealedPrefix(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "Revealed so far"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady after cancel", m.state)
	}
	if asst.Content != "Revealed so far" {
		t.Errorf("revealed prefix lost on cancel: %q", asst.Content)
	}
	last := m.conversation.GetLastMessage()
	if last == nil || last.Role != model.RoleSystem {
		t.Fatal("expected a system notice after cancel")
	}
	if !strings.Contains(last.Content, "cancelled") {
		t.Errorf("notice = %q", last.Content)
	}
}

func TestEscCancelsStream(t *testing.T) {
	m := newTestModel()
	m, asst := beginTurn(m, "q")
	m, _ = m.Update(RevealTickMsg{MessageID: asst.ID, Text: "Keep this"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})

	if m.state != StateReady {
		t.Errorf("state = %v, want StateReady", m.state)
	}
	if asst.Content != "Keep this" {
		t.Errorf("content = %q", asst.Content)
	}
}

// =============================================================================
// VISIBILITY
// =============================================================================

func TestVisibilityPausesAndResumesReveal(t *testing.T) {
	m := newTestModel()

	var got []stream.Update
	clock := stream.NewManualClock()
	sched := stream.NewSchedulerWithStep(clock, func(u stream.Update) {
		got = append(got, u)
	}, 6)
	m.scheduler = sched

	m, _ = m.Update(VisibilityMsg{Visible: false})
	if m.visible {
		t.Fatal("model still visible")
	}

	sched.OnChunk("hello world")
	clock.Tick()
	if len(got) != 0 {
		t.Fatalf("reveal ran while hidden: %d updates", len(got))
	}

	m, _ = m.Update(VisibilityMsg{Visible: true})
	clock.Tick()
	if len(got) == 0 {
		t.Fatal("no reveal after becoming visible again")
	}
	if got[0].Text != "hello " {
		t.Errorf("first reveal = %q, want %q", got[0].Text, "hello ")
	}
}

func TestVisibilityWhileNoTurnInFlight(t *testing.T) {
	m := newTestModel()
	// No scheduler; must not panic.
	m, _ = m.Update(VisibilityMsg{Visible: false})
	m, _ = m.Update(VisibilityMsg{Visible: true})
	if !m.visible {
		t.Error("visible = false, want true")
	}
}

// =============================================================================
// TOKEN ESTIMATE
// =============================================================================

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		chars int
		want  int
	}{
		{0, 0},
		{1, 1},
		{3, 1},
		{4, 1},
		{400, 100},
	}
	for _, tt := range tests {
		if got := estimateTokens(tt.chars); got != tt.want {
			t.Errorf("estimateTokens(%d) = %d, want %d", tt.chars, got, tt.want)
		}
	}
}
