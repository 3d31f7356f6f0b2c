// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/ui/components"
)

// =============================================================================
// STREAMING LIFECYCLE MESSAGES
// =============================================================================

// StreamStartMsg signals that a request left for the backend. Emitted by
// the start command itself, so it is the first message of every turn.
type StreamStartMsg struct {
	MessageID string
	StartTime time.Time
}

// NewStreamStartMsg creates a StreamStartMsg stamped with the current time.
func NewStreamStartMsg(messageID string) StreamStartMsg {
	return StreamStartMsg{
		MessageID: messageID,
		StartTime: time.Now(),
	}
}

// StreamMetaMsg carries the grounding context from the opening chunk:
// the retrieval corpus the answer's citations must be validated against,
// plus the session token when the backend rotates it early.
type StreamMetaMsg struct {
	MessageID    string
	Sources      []string
	SessionState string
}

// RevealTickMsg is one paced step of the answer reveal. Text is the full
// revealed prefix, not a delta; Done marks the final drain after the
// stream ended.
type RevealTickMsg struct {
	MessageID string
	Text      string
	Done      bool
}

// StreamCompleteMsg signals a successfully finished stream.
type StreamCompleteMsg struct {
	MessageID    string
	Stats        *model.Statistics
	Followups    []string
	SessionState string
}

// StreamErrorMsg signals a failed stream. Whatever arrived before the
// failure has already been drained into the transcript.
type StreamErrorMsg struct {
	MessageID string
	Err       error
}

// =============================================================================
// VISIBILITY MESSAGES
// =============================================================================

// VisibilityMsg reports terminal focus and process suspension. Hidden
// pauses the reveal animation; the stream keeps buffering underneath.
type VisibilityMsg struct {
	Visible bool
}

// =============================================================================
// ERROR DISPLAY MESSAGES
// =============================================================================

// ErrorMsg displays an error overlay with optional suggestions.
type ErrorMsg struct {
	Title       string
	Message     string
	Suggestions []string
}

// NewErrorMsg creates a basic error message.
func NewErrorMsg(title, message string) ErrorMsg {
	return ErrorMsg{Title: title, Message: message}
}

// NewErrorMsgFromErr derives the title and suggestions from the error's
// type.
func NewErrorMsgFromErr(err error) ErrorMsg {
	return ErrorMsg{
		Title:       "Error",
		Message:     err.Error(),
		Suggestions: components.SuggestionsFor(err),
	}
}

// ErrorDismissMsg dismisses the error overlay.
type ErrorDismissMsg struct{}

// =============================================================================
// STATUS TOAST MESSAGES
// =============================================================================

// StatusMsg shows a transient status line above the input.
type StatusMsg struct {
	Text string
}

// statusExpireMsg clears the status line after its display window.
type statusExpireMsg struct{}

// expireStatus schedules the status line to clear.
func expireStatus() tea.Cmd {
	return tea.Tick(3*time.Second, func(time.Time) tea.Msg {
		return statusExpireMsg{}
	})
}

// =============================================================================
// CONVERSATION MESSAGES
// =============================================================================

// ConversationSavedMsg reports the outcome of a save.
type ConversationSavedMsg struct {
	Path string
	Err  error
}

// ConversationLoadedMsg delivers a conversation loaded from disk.
type ConversationLoadedMsg struct {
	Conversation *model.Conversation
}

// FeedbackSentMsg reports the outcome of a feedback submission.
type FeedbackSentMsg struct {
	MessageID string
	Feedback  string
	Err       error
}

// CopyDoneMsg reports the outcome of a clipboard copy.
type CopyDoneMsg struct {
	What string
	Err  error
}

// ExportDoneMsg reports the outcome of a transcript export.
type ExportDoneMsg struct {
	Path string
	Err  error
}
