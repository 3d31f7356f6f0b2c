// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"sync"
	"unicode/utf8"
)

// =============================================================================
// TURN STATE
// =============================================================================

// TurnState identifies the lifecycle phase of a streaming turn.
type TurnState int

const (
	// TurnIdle is the initial state, before the first chunk arrives.
	TurnIdle TurnState = iota
	// TurnStreaming means chunks are arriving and reveal is in progress.
	TurnStreaming
	// TurnComplete means the stream ended normally; the text is final.
	TurnComplete
	// TurnCancelled means the user abandoned the turn. The revealed
	// prefix is kept but nothing mutates the turn after this.
	TurnCancelled
)

// String returns a human-readable state name for logs.
func (s TurnState) String() string {
	switch s {
	case TurnIdle:
		return "idle"
	case TurnStreaming:
		return "streaming"
	case TurnComplete:
		return "complete"
	case TurnCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// =============================================================================
// STREAM TURN
// =============================================================================

// StreamTurn accumulates the raw text of one assistant answer and tracks
// how much of it has been revealed. Chunks append to the raw buffer the
// moment they arrive; the revealed prefix advances separately, a few
// characters at a time, which is what keeps rendering smooth under a
// bursty connection.
//
// Invariant: the revealed prefix is always an exact prefix of the raw
// buffer, and the raw buffer is always the byte-exact concatenation of
// the appended chunks. Once drained, revealed text equals received text.
//
// Thread-safety: all methods are safe for concurrent use, since chunks
// arrive on the network reader goroutine while reveal advances on the
// render tick.
type StreamTurn struct {
	mu       sync.Mutex
	raw      strings.Builder
	revealed int // byte offset into raw; always on a rune boundary
	state    TurnState
}

// NewTurn creates an empty turn in the idle state.
func NewTurn() *StreamTurn {
	return &StreamTurn{}
}

// Append adds a chunk to the raw buffer. The first chunk moves the turn
// from idle to streaming. Chunks arriving after completion or
// cancellation are dropped.
func (t *StreamTurn) Append(chunk string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch t.state {
	case TurnIdle:
		t.state = TurnStreaming
	case TurnStreaming:
		// Normal case.
	default:
		return
	}
	t.raw.WriteString(chunk)
}

// Advance reveals up to step more characters and returns the full
// revealed prefix plus the number of unrevealed bytes remaining.
// Characters are runes: a multi-byte sequence is never split across two
// reveals, and a sequence cut short by a chunk boundary is held back
// until its remaining bytes arrive. Cancelled turns do not advance.
func (t *StreamTurn) Advance(step int) (revealed string, pending int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TurnStreaming || t.state == TurnComplete {
		s := t.raw.String()
		for i := 0; i < step && t.revealed < len(s); i++ {
			if !utf8.FullRuneInString(s[t.revealed:]) {
				// Chunk ended mid-rune; wait for the rest.
				break
			}
			_, size := utf8.DecodeRuneInString(s[t.revealed:])
			t.revealed += size
		}
	}
	s := t.raw.String()
	return s[:t.revealed], len(s) - t.revealed
}

// Drain reveals the entire buffer in one step and returns it. Used when
// the stream completes, so the tail never animates in after the answer
// is already final. Cancelled turns stay frozen.
func (t *StreamTurn) Drain() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TurnStreaming || t.state == TurnComplete {
		t.revealed = t.raw.Len()
	}
	return t.raw.String()[:t.revealed]
}

// Complete marks the stream as ended normally. The buffered text is
// final; reveal may still be in progress.
func (t *StreamTurn) Complete() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TurnIdle || t.state == TurnStreaming {
		t.state = TurnComplete
	}
}

// Cancel freezes the turn. Whatever was revealed stays revealed; pending
// text is never shown and later appends are dropped. Completing and
// cancelling are both terminal, first one wins.
func (t *StreamTurn) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == TurnIdle || t.state == TurnStreaming {
		t.state = TurnCancelled
	}
}

// Revealed returns the currently revealed prefix.
func (t *StreamTurn) Revealed() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw.String()[:t.revealed]
}

// Raw returns everything received so far, revealed or not.
func (t *StreamTurn) Raw() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw.String()
}

// Pending returns the number of buffered bytes not yet revealed.
func (t *StreamTurn) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.raw.Len() - t.revealed
}

// State returns the current lifecycle state.
func (t *StreamTurn) State() TurnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// IsComplete reports whether the stream ended normally.
func (t *StreamTurn) IsComplete() bool {
	return t.State() == TurnComplete
}
