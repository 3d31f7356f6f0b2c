// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/stream"
	"github.com/rorymaher2092/ava-tui/internal/ui/components"
)

// =============================================================================
// SUBMIT
// =============================================================================

// handleSubmit routes the input line: slash commands to the command
// dispatcher, everything else to the backend.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if strings.HasPrefix(text, "/") {
		m.input.Reset()
		return m.handleCommand(text)
	}
	return m.sendMessage(text)
}

// sendMessage starts a new turn: records the question, allocates the
// answer message, and launches the stream with a fresh reveal scheduler.
func (m Model) sendMessage(text string) (Model, tea.Cmd) {
	if m.state != StateReady {
		m.statusMsg = "Still answering; esc cancels"
		return m, expireStatus()
	}
	if m.client == nil {
		m.errDisplay.ShowErr(api.ErrNotConfigured)
		return m, nil
	}

	m.conversation.AddUserMessage(text)
	asst := m.conversation.AddAssistantMessage()

	m.streamingMsgID = asst.ID
	m.state = StateThinking
	m.thinkingStart = time.Now()
	m.statusBar.SetStatus(components.StatusThinking)

	// Per-turn parse state. The corpus is installed once the opening
	// chunk's sources arrive.
	m.extractor.Reset(answer.NewCorpus(nil))
	m.followups = nil
	m.followupIndex = 0
	m.artifact.SetPayloads(nil, nil)

	req := &api.ChatRequest{
		Messages: m.conversation.ToAPIMessages(),
		Context: api.RequestContext{
			Overrides: api.Overrides{
				BotID:                    m.conversation.BotID,
				SuggestFollowupQuestions: m.cfg.Chat.SuggestFollowups,
			},
		},
		SessionState: m.conversation.SessionState,
	}

	// The scheduler outlives this model copy; the sink posts reveal
	// ticks back into the program loop. msgID is captured by value so a
	// stale turn's ticks can be recognized and dropped.
	msgID := asst.ID
	frame := time.Duration(m.cfg.Chat.RevealFrameMs) * time.Millisecond
	sched := stream.NewSchedulerWithStep(
		stream.NewFrameClockWithInterval(frame),
		func(u stream.Update) {
			send(RevealTickMsg{MessageID: msgID, Text: u.Text, Done: u.Done})
		},
		m.cfg.Chat.RevealStepChars,
	)
	if !m.visible {
		sched.SetVisible(false)
	}
	m.scheduler = sched

	m.input.Reset()
	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.spin.Tick,
		startStream(m.client, m.cancelMgr, sched, req, msgID),
	)
}
