// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_DeliversChunksInOrder(t *testing.T) {
	stream := strings.Join([]string{
		`{"delta":{"role":"assistant"},"context":{"data_points":{"text":["travel_policy.pdf: Flights need approval"]},"followup_questions":["Who approves?"]},"session_state":"sess-1"}`,
		`{"delta":{"content":"Flights "}}`,
		`{"delta":{"content":"need "}}`,
		`{"delta":{"content":"approval"}}`,
	}, "\n") + "\n"

	reader := NewStreamReader(strings.NewReader(stream))

	var got []string
	err := reader.Process(context.Background(), func(chunk ChatChunk) {
		if c := chunk.Content(); c != "" {
			got = append(got, c)
		}
	})
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}

	// Content arrives in order and the accumulator matches the concatenation
	want := "Flights need approval"
	if strings.Join(got, "") != want {
		t.Errorf("Joined chunks = %q, want %q", strings.Join(got, ""), want)
	}
	if reader.GetAccumulated() != want {
		t.Errorf("GetAccumulated() = %q, want %q", reader.GetAccumulated(), want)
	}
	if reader.GetTokenCount() != 3 {
		t.Errorf("GetTokenCount() = %d, want 3", reader.GetTokenCount())
	}

	// Opening chunk state is captured for the caller
	if len(reader.GetSources()) != 1 || !strings.HasPrefix(reader.GetSources()[0], "travel_policy.pdf") {
		t.Errorf("GetSources() = %v", reader.GetSources())
	}
	if reader.GetSessionState() != "sess-1" {
		t.Errorf("GetSessionState() = %q, want 'sess-1'", reader.GetSessionState())
	}
	if len(reader.GetFollowups()) != 1 || reader.GetFollowups()[0] != "Who approves?" {
		t.Errorf("GetFollowups() = %v", reader.GetFollowups())
	}
}

func TestStreamReader_MalformedLinesSkipped(t *testing.T) {
	stream := strings.Join([]string{
		`{"delta":{"content":"Hello"}}`,
		`this is not json`,
		``,
		`{"delta":{"content":", world"}}`,
		`{broken`,
	}, "\n") + "\n"

	reader := NewStreamReader(strings.NewReader(stream))

	err := reader.Process(context.Background(), func(chunk ChatChunk) {})
	if err != nil {
		t.Fatalf("Malformed lines should not fail the stream: %v", err)
	}

	if reader.GetAccumulated() != "Hello, world" {
		t.Errorf("GetAccumulated() = %q, want 'Hello, world'", reader.GetAccumulated())
	}
	// Two garbage lines skipped; the blank line is not counted
	if reader.GetSkippedLines() != 2 {
		t.Errorf("GetSkippedLines() = %d, want 2", reader.GetSkippedLines())
	}
}

func TestStreamReader_OversizedLineSkipped(t *testing.T) {
	huge := `{"delta":{"content":"` + strings.Repeat("x", MaxLineSize+1024) + `"}}`
	stream := strings.Join([]string{
		`{"delta":{"content":"before "}}`,
		huge,
		`{"delta":{"content":"after"}}`,
	}, "\n") + "\n"

	reader := NewStreamReader(strings.NewReader(stream))

	err := reader.Process(context.Background(), func(chunk ChatChunk) {})
	if err != nil {
		t.Fatalf("Oversized line should not fail the stream: %v", err)
	}

	if reader.GetAccumulated() != "before after" {
		t.Errorf("GetAccumulated() = %q, want 'before after'", reader.GetAccumulated())
	}
	if reader.GetSkippedLines() != 1 {
		t.Errorf("GetSkippedLines() = %d, want 1", reader.GetSkippedLines())
	}
}

func TestStreamReader_ErrorLinePreservesPartial(t *testing.T) {
	stream := strings.Join([]string{
		`{"delta":{"role":"assistant"},"context":{"data_points":{"text":[]}}}`,
		`{"delta":{"content":"Partial answer "}}`,
		`{"error":"content filter triggered"}`,
	}, "\n") + "\n"

	reader := NewStreamReader(strings.NewReader(stream))

	sawError := false
	err := reader.Process(context.Background(), func(chunk ChatChunk) {
		if chunk.HasError() {
			sawError = true
		}
	})

	var streamErr *StreamError
	if !errors.As(err, &streamErr) {
		t.Fatalf("Expected *StreamError, got %v", err)
	}
	if streamErr.Partial != "Partial answer " {
		t.Errorf("Partial = %q, want 'Partial answer '", streamErr.Partial)
	}
	if !strings.Contains(streamErr.Error(), "content filter triggered") {
		t.Errorf("Error message = %q, want backend message included", streamErr.Error())
	}
	// Error chunks surface via the return value, not the callback
	if sawError {
		t.Error("Error chunk should not be delivered to the callback")
	}
}

func TestStreamReader_CancellationStopsProcessing(t *testing.T) {
	stream := strings.Join([]string{
		`{"delta":{"content":"first"}}`,
		`{"delta":{"content":"second"}}`,
		`{"delta":{"content":"third"}}`,
	}, "\n") + "\n"

	reader := NewStreamReader(strings.NewReader(stream))
	ctx, cancel := context.WithCancel(context.Background())

	var delivered int
	err := reader.Process(ctx, func(chunk ChatChunk) {
		delivered++
		cancel()
	})

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	// The cancellation lands before the next chunk is read
	if delivered != 1 {
		t.Errorf("Delivered %d chunks after cancel, want 1", delivered)
	}
}

func TestStreamReader_FinalLineWithoutNewline(t *testing.T) {
	stream := `{"delta":{"content":"abc"}}` + "\n" + `{"delta":{"content":"def"}}`

	reader := NewStreamReader(strings.NewReader(stream))

	err := reader.Process(context.Background(), func(chunk ChatChunk) {})
	if err != nil {
		t.Fatalf("Unterminated final line should still parse: %v", err)
	}
	if reader.GetAccumulated() != "abcdef" {
		t.Errorf("GetAccumulated() = %q, want 'abcdef'", reader.GetAccumulated())
	}
}

func TestStreamReader_EmptyStream(t *testing.T) {
	reader := NewStreamReader(strings.NewReader(""))

	err := reader.Process(context.Background(), func(chunk ChatChunk) {
		t.Error("Callback should not fire on an empty stream")
	})
	if err != nil {
		t.Fatalf("Empty stream should end cleanly: %v", err)
	}
}

// =============================================================================
// CHUNK HELPER TESTS
// =============================================================================

func TestChatChunk_IsOpening(t *testing.T) {
	opening := ChatChunk{
		Delta:   &Delta{Role: "assistant"},
		Context: &ChunkContext{DataPoints: DataPoints{Text: []string{"a.pdf: text"}}},
	}
	if !opening.IsOpening() {
		t.Error("Chunk with role and context should be the opening chunk")
	}

	token := ChatChunk{Delta: &Delta{Content: "hi"}}
	if token.IsOpening() {
		t.Error("Token chunk should not be the opening chunk")
	}
	if token.Content() != "hi" {
		t.Errorf("Content() = %q, want 'hi'", token.Content())
	}

	var empty ChatChunk
	if empty.Content() != "" || empty.IsOpening() || empty.HasError() {
		t.Error("Zero chunk should be inert")
	}
}

// =============================================================================
// ACCUMULATOR TESTS
// =============================================================================

func TestStreamAccumulator_CollectsEverything(t *testing.T) {
	acc := NewStreamAccumulator()
	cb := acc.Callback()

	cb(ChatChunk{
		Delta: &Delta{Role: "assistant"},
		Context: &ChunkContext{
			DataPoints:        DataPoints{Text: []string{"a.pdf: alpha", "b.pdf: beta"}},
			FollowupQuestions: []string{"And then?"},
		},
		SessionState: "sess-9",
	})
	cb(ChatChunk{Delta: &Delta{Content: "Hello "}})
	cb(ChatChunk{Delta: &Delta{Content: "there"}})

	if acc.GetContent() != "Hello there" {
		t.Errorf("GetContent() = %q, want 'Hello there'", acc.GetContent())
	}
	if acc.TokenCount != 2 {
		t.Errorf("TokenCount = %d, want 2", acc.TokenCount)
	}
	if len(acc.Sources) != 2 {
		t.Errorf("Sources = %v, want 2 entries", acc.Sources)
	}
	if acc.SessionState != "sess-9" {
		t.Errorf("SessionState = %q, want 'sess-9'", acc.SessionState)
	}
	if len(acc.Followups) != 1 {
		t.Errorf("Followups = %v, want 1 entry", acc.Followups)
	}
	if acc.FirstTokenAt.IsZero() {
		t.Error("First token time should be recorded once content arrived")
	}
}
