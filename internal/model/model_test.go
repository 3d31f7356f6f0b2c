// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"strings"
	"testing"
)

// =============================================================================
// MESSAGE TESTS
// =============================================================================

func TestNewAssistantMessage_StartsStreaming(t *testing.T) {
	msg := NewAssistantMessage("ava")

	if !msg.IsStreaming {
		t.Error("New assistant message should start in streaming state")
	}
	if msg.BotID != "ava" {
		t.Errorf("BotID = %q, want 'ava'", msg.BotID)
	}
	if msg.Role != RoleAssistant {
		t.Errorf("Role = %q, want assistant", msg.Role)
	}
	if msg.ID == "" {
		t.Error("Message should get a generated ID")
	}
}

func TestMessage_StreamingLifecycle(t *testing.T) {
	msg := NewAssistantMessage("ava")

	// Tokens accumulate in the stream buffer, not Content
	msg.AppendToken("Hello")
	msg.AppendToken(", world")

	if msg.Content != "" {
		t.Errorf("Content should stay empty while streaming, got %q", msg.Content)
	}
	if got := msg.GetDisplayContent(); got != "Hello, world" {
		t.Errorf("GetDisplayContent() = %q, want 'Hello, world'", got)
	}

	stats := &Statistics{CompletionTokens: 3}
	msg.FinalizeStream(stats)

	if msg.IsStreaming {
		t.Error("Message should not be streaming after FinalizeStream")
	}
	if msg.Content != "Hello, world" {
		t.Errorf("Content = %q after finalize, want 'Hello, world'", msg.Content)
	}
	if msg.TokenCount != 3 {
		t.Errorf("TokenCount = %d, want 3", msg.TokenCount)
	}

	// Tokens after finalize are dropped
	msg.AppendToken(" extra")
	if msg.GetDisplayContent() != "Hello, world" {
		t.Error("AppendToken after finalize should be a no-op")
	}
}

func TestMessage_FinalizeStreamIdempotent(t *testing.T) {
	msg := NewAssistantMessage("ava")
	msg.AppendToken("first")
	msg.FinalizeStream(nil)

	// Second finalize must not wipe the content
	msg.FinalizeStream(&Statistics{CompletionTokens: 99})

	if msg.Content != "first" {
		t.Errorf("Content = %q after double finalize, want 'first'", msg.Content)
	}
	if msg.TokenCount == 99 {
		t.Error("Second FinalizeStream should not overwrite statistics")
	}
}

func TestMessage_Reparse(t *testing.T) {
	msg := NewAssistantMessage("ava")
	msg.Sources = []string{"travel_policy.pdf: Section 2 covers flights"}
	msg.AppendToken("See [travel_policy.pdf] for the rules")
	msg.FinalizeStream(nil)

	res := msg.Reparse()

	if res == nil {
		t.Fatal("Reparse should return a result")
	}
	if msg.Parsed != res {
		t.Error("Reparse should cache the result on the message")
	}
	if len(res.Citations) != 1 {
		t.Fatalf("Expected 1 citation, got %d", len(res.Citations))
	}
	if res.Citations[0].Ordinal != 1 {
		t.Errorf("Citation ordinal = %d, want 1", res.Citations[0].Ordinal)
	}
}

func TestMessage_ReparseWithoutSources(t *testing.T) {
	msg := NewAssistantMessage("ava")
	msg.AppendToken("See [unknown.pdf] for details")
	msg.FinalizeStream(nil)

	res := msg.Reparse()

	// No sources means nothing can be confirmed; the token stays literal
	if len(res.Citations) != 0 {
		t.Errorf("Expected 0 citations with empty sources, got %d", len(res.Citations))
	}
	if res.PlainText() != "See [unknown.pdf] for details" {
		t.Errorf("PlainText() = %q, literal bracket should survive", res.PlainText())
	}
}

func TestMessage_Preview(t *testing.T) {
	tests := []struct {
		name    string
		content string
		maxLen  int
		want    string
	}{
		{"short content unchanged", "Hello", 10, "Hello"},
		{"long content truncated", "This is a very long message", 10, "This is..."},
		{"unicode safe", "héllo wörld with más", 10, "héllo w..."},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			msg := NewUserMessage(tc.content)
			if got := msg.Preview(tc.maxLen); got != tc.want {
				t.Errorf("Preview(%d) = %q, want %q", tc.maxLen, got, tc.want)
			}
		})
	}
}

func TestMessage_FormatStats(t *testing.T) {
	msg := NewUserMessage("hi")
	if msg.FormatStats() != "" {
		t.Error("User messages should have no stats line")
	}

	asst := NewAssistantMessage("ava")
	asst.FinalizeStream(nil)
	if asst.FormatStats() != "" {
		t.Error("Assistant message without timing should have no stats line")
	}
}

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "Ava"},
		{RoleSystem, "System"},
		{Role("other"), "other"},
	}

	for _, tc := range tests {
		if got := tc.role.DisplayName(); got != tc.want {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.role, got, tc.want)
		}
	}
}

// =============================================================================
// CONVERSATION TESTS
// =============================================================================

func TestConversation_BotIDFlowsToAssistantMessages(t *testing.T) {
	conv := NewConversationWithBot("tender")
	conv.AddUserMessage("Draft a response")
	msg := conv.AddAssistantMessage()

	if msg.BotID != "tender" {
		t.Errorf("Assistant message BotID = %q, want 'tender'", msg.BotID)
	}
}

func TestConversation_ToAPIMessages(t *testing.T) {
	conv := NewConversationWithBot("ava")
	conv.AddSystemMessage("connected to backend")
	conv.AddUserMessage("What is the travel policy?")

	asst := conv.AddAssistantMessage()
	asst.AppendToken("Flights need approval")
	conv.FinalizeLast(nil)

	conv.AddUserMessage("Who approves?")
	conv.AddAssistantMessage() // still streaming, must be excluded

	messages := conv.ToAPIMessages()

	if len(messages) != 3 {
		t.Fatalf("Expected 3 wire messages, got %d", len(messages))
	}

	// System messages stay local
	for _, m := range messages {
		if m.Role == "system" {
			t.Error("System messages should not be sent to the backend")
		}
	}

	if messages[0].Role != "user" || messages[0].Content != "What is the travel policy?" {
		t.Errorf("First wire message = %+v", messages[0])
	}
	if messages[1].Role != "assistant" || messages[1].Content != "Flights need approval" {
		t.Errorf("Second wire message = %+v", messages[1])
	}
	if messages[2].Content != "Who approves?" {
		t.Errorf("Third wire message = %+v", messages[2])
	}
}

func TestConversation_ClearHistoryResetsSession(t *testing.T) {
	conv := NewConversationWithBot("ava")
	conv.AddUserMessage("hello")
	conv.SessionState = "opaque-token-from-backend"

	conv.ClearHistory()

	if !conv.IsEmpty() {
		t.Error("ClearHistory should remove all messages")
	}
	if conv.SessionState != "" {
		t.Error("ClearHistory should drop the server session token")
	}
	if conv.BotID != "ava" {
		t.Error("ClearHistory should keep the bot binding")
	}
}

func TestConversation_TitleFromFirstUserMessage(t *testing.T) {
	conv := NewConversationWithBot("ava")
	conv.AddSystemMessage("session start")
	conv.AddUserMessage("How do I claim expenses?")

	if conv.GetTitle() != "How do I claim expenses?" {
		t.Errorf("GetTitle() = %q", conv.GetTitle())
	}

	// Explicit title wins
	conv.SetTitle("Expenses")
	if conv.GetTitle() != "Expenses" {
		t.Errorf("GetTitle() after SetTitle = %q", conv.GetTitle())
	}
}

func TestConversation_Clone(t *testing.T) {
	conv := NewConversationWithBot("ba")
	conv.AddUserMessage("original")
	conv.SessionState = "session-1"

	clone := conv.Clone()

	if clone.BotID != "ba" || clone.SessionState != "session-1" {
		t.Error("Clone should copy bot binding and session token")
	}

	// Mutating the clone must not affect the original
	clone.Messages[0].Content = "modified"
	if conv.Messages[0].Content != "original" {
		t.Error("Clone should deep-copy messages")
	}
}

func TestConversation_RemoveMessage(t *testing.T) {
	conv := NewConversationWithBot("ava")
	msg := conv.AddUserMessage("to be removed")
	conv.AddUserMessage("to be kept")

	if !conv.RemoveMessage(msg.ID) {
		t.Error("RemoveMessage should find the message by ID")
	}
	if conv.MessageCount() != 1 {
		t.Errorf("MessageCount = %d after removal, want 1", conv.MessageCount())
	}
	if conv.RemoveMessage("msg_nonexistent") {
		t.Error("RemoveMessage should return false for unknown IDs")
	}
}

func TestConversation_GetMeta(t *testing.T) {
	conv := NewConversationWithBot("ava")
	conv.AddUserMessage("What is the DLP policy?")

	meta := conv.GetMeta()

	if meta.BotID != "ava" {
		t.Errorf("Meta.BotID = %q, want 'ava'", meta.BotID)
	}
	if meta.MessageCount != 1 {
		t.Errorf("Meta.MessageCount = %d, want 1", meta.MessageCount)
	}
	if meta.Title != "What is the DLP policy?" {
		t.Errorf("Meta.Title = %q", meta.Title)
	}
}

func TestConversation_PruneKeepsSystemMessages(t *testing.T) {
	conv := NewConversationWithBot("ava")
	conv.AddSystemMessage("pinned")

	// Exceed the cap so pruning kicks in
	for i := 0; i <= MaxMessages; i++ {
		conv.AddUserMessage("filler")
	}

	if conv.Messages[0].Role != RoleSystem {
		t.Error("Pruning should keep system messages at the front")
	}
	if conv.MessageCount() != MaxMessages+1 {
		t.Errorf("MessageCount = %d, want %d", conv.MessageCount(), MaxMessages+1)
	}
}

// =============================================================================
// ATTACHMENT TESTS
// =============================================================================

func TestNewAttachment(t *testing.T) {
	att := NewAttachment("/tmp/uploads/Q3 Report.pdf", 2048)

	if att.Name != "Q3 Report.pdf" {
		t.Errorf("Name = %q, want base name only", att.Name)
	}
	if att.MIMEType != "application/pdf" {
		t.Errorf("MIMEType = %q, want application/pdf", att.MIMEType)
	}
	if att.SizeBytes != 2048 {
		t.Errorf("SizeBytes = %d, want 2048", att.SizeBytes)
	}
}

func TestAttachment_MIMETypes(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"notes.docx", "application/vnd.openxmlformats-officedocument.wordprocessingml.document"},
		{"data.csv", "text/csv"},
		{"readme.md", "text/markdown"},
		{"archive.bin", "application/octet-stream"},
	}

	for _, tc := range tests {
		att := NewAttachment(tc.path, 1)
		if att.MIMEType != tc.want {
			t.Errorf("MIMEType(%q) = %q, want %q", tc.path, att.MIMEType, tc.want)
		}
	}
}

func TestAttachment_FormatSize(t *testing.T) {
	tests := []struct {
		size int64
		want string
	}{
		{512, "512B"},
		{2048, "2.0KB"},
		{3 * 1024 * 1024, "3.0MB"},
	}

	for _, tc := range tests {
		att := Attachment{SizeBytes: tc.size}
		if got := att.FormatSize(); got != tc.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tc.size, got, tc.want)
		}
	}
}

// =============================================================================
// FORMAT HELPER TESTS
// =============================================================================

func TestFormatInt(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{7, "7"},
		{1234, "1234"},
		{-56, "-56"},
	}

	for _, tc := range tests {
		if got := formatInt(tc.n); got != tc.want {
			t.Errorf("formatInt(%d) = %q, want %q", tc.n, got, tc.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := formatDuration(0.234); got != "234ms" {
		t.Errorf("formatDuration(0.234) = %q, want '234ms'", got)
	}
	if got := formatDuration(2.5); !strings.HasSuffix(got, "s") {
		t.Errorf("formatDuration(2.5) = %q, want seconds suffix", got)
	}
}
