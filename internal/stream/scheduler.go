// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import "sync"

// =============================================================================
// SCHEDULER
// =============================================================================

// StepChars is the number of characters revealed per tick. At 30fps this
// paces the reveal at roughly 180 characters per second, fast enough to
// stay ahead of typical generation speed while keeping the tail of the
// answer animating smoothly.
const StepChars = 6

// Update carries the reveal state to the render sink after a tick or a
// completion drain. Text is the full revealed prefix, not a delta, so a
// renderer can always replace its view wholesale.
type Update struct {
	Text string
	Done bool // stream ended and everything is revealed
}

// Scheduler drives the reveal of one streaming turn:
//
//  1. OnChunk appends network data and arranges the next tick.
//  2. Each tick reveals up to StepChars characters and reschedules while
//     text is still pending.
//  3. SetVisible(false) cancels the pending tick but keeps buffering;
//     SetVisible(true) resumes where it left off.
//  4. OnStreamEnd drains everything in one step, visible or not.
//  5. Cancel freezes the turn, keeping only what was already revealed.
//
// At most one tick is in flight at a time. The sink is invoked with the
// scheduler's internal lock held, which guarantees updates arrive in
// order and never after the final one; the sink must return quickly and
// must not call back into the scheduler. Sending a message to the UI
// loop, the intended use, satisfies both.
type Scheduler struct {
	mu         sync.Mutex
	clock      Clock
	sink       func(Update)
	turn       *StreamTurn
	step       int
	visible    bool
	gen        int // bumped to invalidate in-flight ticks
	cancelTick func()
}

// NewScheduler creates a scheduler for one turn, initially visible.
// sink may be nil, in which case reveal state is only observable through
// the accessors.
func NewScheduler(clock Clock, sink func(Update)) *Scheduler {
	return NewSchedulerWithStep(clock, sink, StepChars)
}

// NewSchedulerWithStep creates a scheduler with a custom reveal step.
// Non-positive steps fall back to the default.
func NewSchedulerWithStep(clock Clock, sink func(Update), step int) *Scheduler {
	if step <= 0 {
		step = StepChars
	}
	return &Scheduler{
		clock:   clock,
		sink:    sink,
		turn:    NewTurn(),
		step:    step,
		visible: true,
	}
}

// OnChunk feeds one network chunk into the turn and starts the tick
// chain if it is not already running. Called from the reader goroutine.
func (s *Scheduler) OnChunk(chunk string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.turn.Append(chunk)
	s.scheduleLocked()
}

// OnStreamEnd marks the stream complete and drains the rest of the text
// in one step. The drain happens even while hidden, so returning to the
// terminal shows the finished answer immediately.
func (s *Scheduler) OnStreamEnd() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickLocked()
	s.turn.Complete()
	text := s.turn.Drain()
	s.emitLocked(Update{Text: text, Done: true})
}

// Cancel abandons the turn: the pending tick is cancelled, buffered but
// unrevealed text is never shown, and no further update is emitted. The
// caller is responsible for stopping the network read.
func (s *Scheduler) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickLocked()
	s.turn.Cancel()
}

// SetVisible reports terminal focus and process suspension to the
// scheduler. Going hidden cancels the pending tick; going visible again
// resumes revealing whatever buffered up in between.
func (s *Scheduler) SetVisible(visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if visible == s.visible {
		return
	}
	s.visible = visible
	if !visible {
		s.stopTickLocked()
		return
	}
	s.scheduleLocked()
}

// Revealed returns the currently revealed prefix.
func (s *Scheduler) Revealed() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.Revealed()
}

// Pending returns the number of buffered bytes not yet revealed.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.Pending()
}

// State returns the turn's lifecycle state.
func (s *Scheduler) State() TurnState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.turn.State()
}

// Reset prepares the scheduler for a new turn, discarding the old one.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.stopTickLocked()
	s.turn = NewTurn()
}

// =============================================================================
// INTERNAL
// =============================================================================

// scheduleLocked arranges the next tick if one is due: visible, turn
// still streaming, text pending, and no tick already in flight.
// Caller must hold s.mu.
func (s *Scheduler) scheduleLocked() {
	if !s.visible || s.cancelTick != nil {
		return
	}
	if s.turn.State() != TurnStreaming || s.turn.Pending() == 0 {
		return
	}
	gen := s.gen
	s.cancelTick = s.clock.Schedule(func() { s.tick(gen) })
}

// stopTickLocked cancels the pending tick and invalidates any callback
// already in flight. Caller must hold s.mu.
func (s *Scheduler) stopTickLocked() {
	s.gen++
	if s.cancelTick != nil {
		s.cancelTick()
		s.cancelTick = nil
	}
}

// tick advances the reveal by one step. Runs on the clock goroutine; a
// stale generation means the tick was cancelled after dispatch.
func (s *Scheduler) tick(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.gen {
		return
	}
	s.cancelTick = nil

	text, pending := s.turn.Advance(s.step)
	done := s.turn.IsComplete() && pending == 0
	if pending > 0 {
		s.scheduleLocked()
	}
	s.emitLocked(Update{Text: text, Done: done})
}

// emitLocked delivers an update to the sink. Caller must hold s.mu,
// which is what serializes delivery.
func (s *Scheduler) emitLocked(u Update) {
	if s.sink != nil {
		s.sink(u)
	}
}
