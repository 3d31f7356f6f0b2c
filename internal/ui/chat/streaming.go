// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"context"
	"errors"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/stream"
)

// =============================================================================
// PROGRAM REFERENCE
// =============================================================================

// The stream goroutine and the reveal scheduler deliver messages into the
// Bubble Tea loop through this reference. Guarded because it is written
// once at startup and read from several goroutines.
var (
	programRef *tea.Program
	programMu  sync.Mutex
)

// SetProgram registers the running program so background goroutines can
// send messages into it. Call once, right after tea.NewProgram.
func SetProgram(p *tea.Program) {
	programMu.Lock()
	defer programMu.Unlock()
	programRef = p
}

// send delivers a message to the program, dropping it when no program is
// registered (unit tests drive Update directly).
func send(msg tea.Msg) {
	programMu.Lock()
	p := programRef
	programMu.Unlock()
	if p != nil {
		p.Send(msg)
	}
}

// =============================================================================
// STREAM COMMAND
// =============================================================================

// startStream launches the backend request for one turn. The command
// returns StreamStartMsg immediately; everything after that arrives via
// send: StreamMetaMsg with the grounding sources, RevealTickMsg from the
// scheduler as text is paced out, then StreamCompleteMsg or
// StreamErrorMsg.
//
// All turn state lives in the arguments, not the model, so a model copy
// taken after this call cannot race the goroutine.
func startStream(client *api.Client, cancelMgr *cancelManager, sched *stream.Scheduler, req *api.ChatRequest, messageID string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		cancelMgr.set(cancel)

		go func() {
			defer cancel()

			stats := model.NewStatistics()
			firstToken := true
			totalChars := 0
			var followups []string
			sessionState := ""

			err := client.ChatStream(ctx, req, func(chunk api.ChatChunk) {
				if chunk.IsOpening() {
					send(StreamMetaMsg{
						MessageID:    messageID,
						Sources:      chunk.Sources(),
						SessionState: chunk.SessionState,
					})
					if chunk.Context != nil && len(chunk.Context.FollowupQuestions) > 0 {
						followups = chunk.Context.FollowupQuestions
					}
					return
				}
				if content := chunk.Content(); content != "" {
					if firstToken {
						stats.RecordFirstToken()
						firstToken = false
					}
					totalChars += len(content)
					sched.OnChunk(content)
				}
				// Follow-ups and the session token usually ride the last
				// chunk; last one wins either way.
				if chunk.Context != nil && len(chunk.Context.FollowupQuestions) > 0 {
					followups = chunk.Context.FollowupQuestions
				}
				if chunk.SessionState != "" {
					sessionState = chunk.SessionState
				}
			})

			if err != nil {
				if errors.Is(err, context.Canceled) {
					// The user cancelled; the Update loop already froze the
					// turn. Nothing to report.
					return
				}
				// Show whatever arrived before the failure, then surface
				// the error.
				sched.OnStreamEnd()
				send(StreamErrorMsg{MessageID: messageID, Err: err})
				return
			}

			sched.OnStreamEnd()
			stats.Finalize(estimateTokens(totalChars))
			send(StreamCompleteMsg{
				MessageID:    messageID,
				Stats:        stats,
				Followups:    followups,
				SessionState: sessionState,
			})
		}()

		return NewStreamStartMsg(messageID)
	}
}

// estimateTokens approximates a token count from a character count, the
// same 4:1 ratio the conversation window estimate uses.
func estimateTokens(chars int) int {
	n := chars / 4
	if n < 1 && chars > 0 {
		n = 1
	}
	return n
}
