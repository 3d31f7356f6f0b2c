// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SCHEDULER TESTS
// =============================================================================

func TestSchedulerRevealPacing(t *testing.T) {
	clock := NewManualClock()
	var updates []Update
	s := NewScheduler(clock, func(u Update) { updates = append(updates, u) })

	s.OnChunk("Hello, world!")

	// One tick scheduled, none run yet: nothing revealed.
	if clock.Pending() != 1 {
		t.Fatalf("Expected 1 scheduled tick, got %d", clock.Pending())
	}
	if s.Revealed() != "" {
		t.Errorf("Expected nothing revealed before first tick, got %q", s.Revealed())
	}

	clock.Tick()
	if len(updates) != 1 || updates[0].Text != "Hello," {
		t.Fatalf("Expected first update 'Hello,', got %+v", updates)
	}

	clock.Tick()
	if updates[1].Text != "Hello, world" {
		t.Errorf("Expected second update 'Hello, world', got %q", updates[1].Text)
	}

	clock.Tick()
	if updates[2].Text != "Hello, world!" {
		t.Errorf("Expected third update 'Hello, world!', got %q", updates[2].Text)
	}

	// Fully revealed and still streaming: tick chain stops.
	if clock.Pending() != 0 {
		t.Errorf("Expected no tick scheduled after catching up, got %d", clock.Pending())
	}
}

func TestSchedulerSingleTickInFlight(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock, nil)

	s.OnChunk("aaa")
	s.OnChunk("bbb")
	s.OnChunk("ccc")

	if clock.Pending() != 1 {
		t.Errorf("Expected exactly 1 tick in flight, got %d", clock.Pending())
	}
}

func TestSchedulerCompletenessInvariant(t *testing.T) {
	clock := NewManualClock()
	var final Update
	s := NewScheduler(clock, func(u Update) {
		if u.Done {
			final = u
		}
	})

	chunks := []string{"The answer ", "involves ", "世界 ", "and more."}
	for _, c := range chunks {
		s.OnChunk(c)
	}
	clock.Tick()
	clock.Tick()
	s.OnStreamEnd()

	expected := strings.Join(chunks, "")
	if final.Text != expected {
		t.Errorf("Expected final text %q, got %q", expected, final.Text)
	}
	if !final.Done {
		t.Error("Expected final update to be marked done")
	}

	// Completion cancelled the pending tick.
	if ran := clock.Tick(); ran != 0 {
		t.Errorf("Expected no ticks after completion, %d ran", ran)
	}
}

func TestSchedulerVisibilityPause(t *testing.T) {
	clock := NewManualClock()
	var updates []Update
	s := NewScheduler(clock, func(u Update) { updates = append(updates, u) })

	s.OnChunk("The quick brown fox")
	clock.Tick() // reveals "The qu"

	// Going hidden cancels the pending tick but keeps buffering.
	s.SetVisible(false)
	if clock.Pending() != 0 {
		t.Errorf("Expected tick cancelled while hidden, got %d pending", clock.Pending())
	}

	s.OnChunk(" jumps")
	if clock.Pending() != 0 {
		t.Error("Hidden scheduler should not schedule ticks for new chunks")
	}
	if got := s.Revealed(); got != "The qu" {
		t.Errorf("Expected reveal frozen at 'The qu', got %q", got)
	}

	// Back to visible: reveal resumes and catches up.
	s.SetVisible(true)
	if clock.Pending() != 1 {
		t.Fatal("Expected tick rescheduled on return to visible")
	}
	for clock.Tick() > 0 {
	}

	expected := "The quick brown fox jumps"
	if got := s.Revealed(); got != expected {
		t.Errorf("Expected %q after catch-up, got %q", expected, got)
	}
	if last := updates[len(updates)-1]; last.Text != expected {
		t.Errorf("Expected last update %q, got %q", expected, last.Text)
	}
}

func TestSchedulerCompleteWhileHidden(t *testing.T) {
	clock := NewManualClock()
	var final Update
	s := NewScheduler(clock, func(u Update) {
		if u.Done {
			final = u
		}
	})

	s.OnChunk("finished in the background")
	s.SetVisible(false)
	s.OnStreamEnd()

	// Drain is immediate even while hidden.
	if final.Text != "finished in the background" {
		t.Errorf("Expected full drain while hidden, got %q", final.Text)
	}

	// Returning to visible has nothing left to schedule.
	s.SetVisible(true)
	if clock.Pending() != 0 {
		t.Errorf("Expected no tick after drained turn, got %d", clock.Pending())
	}
}

func TestSchedulerCancelKeepsRevealedPrefix(t *testing.T) {
	clock := NewManualClock()
	var updates []Update
	s := NewScheduler(clock, func(u Update) { updates = append(updates, u) })

	s.OnChunk("abcdefgh")
	clock.Tick() // reveals "abcdef"
	s.Cancel()

	if got := s.Revealed(); got != "abcdef" {
		t.Errorf("Expected revealed prefix kept after cancel, got %q", got)
	}
	if s.State() != TurnCancelled {
		t.Errorf("Expected cancelled state, got %v", s.State())
	}
	if clock.Pending() != 0 {
		t.Error("Expected pending tick cancelled")
	}

	// No further updates, no new ticks, chunks dropped.
	n := len(updates)
	s.OnChunk("ijkl")
	clock.Tick()
	if len(updates) != n {
		t.Errorf("Expected no updates after cancel, got %d new", len(updates)-n)
	}
}

func TestSchedulerCancelBeforeFirstTick(t *testing.T) {
	clock := NewManualClock()
	var updates []Update
	s := NewScheduler(clock, func(u Update) { updates = append(updates, u) })

	s.OnChunk("never shown")
	s.Cancel()

	if ran := clock.Tick(); ran != 0 {
		t.Errorf("Expected scheduled tick cancelled, %d ran", ran)
	}
	if len(updates) != 0 {
		t.Errorf("Expected no updates, got %+v", updates)
	}
}

func TestSchedulerDoneOnlyOnFinal(t *testing.T) {
	clock := NewManualClock()
	var updates []Update
	s := NewScheduler(clock, func(u Update) { updates = append(updates, u) })

	s.OnChunk("some streamed text here")
	clock.Tick()
	clock.Tick()
	s.OnStreamEnd()

	for i, u := range updates[:len(updates)-1] {
		if u.Done {
			t.Errorf("Update %d marked done before completion", i)
		}
	}
	if !updates[len(updates)-1].Done {
		t.Error("Final update not marked done")
	}
}

func TestSchedulerCustomStep(t *testing.T) {
	clock := NewManualClock()
	s := NewSchedulerWithStep(clock, nil, 1)

	s.OnChunk("abc")
	clock.Tick()
	if got := s.Revealed(); got != "a" {
		t.Errorf("Expected single character per tick, got %q", got)
	}
}

func TestSchedulerNilSink(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock, nil)

	s.OnChunk("quiet")
	clock.Tick()
	s.OnStreamEnd()

	if got := s.Revealed(); got != "quiet" {
		t.Errorf("Expected 'quiet', got %q", got)
	}
}

func TestSchedulerReset(t *testing.T) {
	clock := NewManualClock()
	s := NewScheduler(clock, nil)

	s.OnChunk("first turn")
	clock.Tick()
	s.Reset()

	if s.Revealed() != "" || s.State() != TurnIdle {
		t.Errorf("Expected fresh turn after reset, got %q / %v", s.Revealed(), s.State())
	}
	if ran := clock.Tick(); ran != 0 {
		t.Errorf("Expected old tick invalidated by reset, %d ran", ran)
	}

	s.OnChunk("second turn")
	for clock.Tick() > 0 {
	}
	if got := s.Revealed(); got != "second turn" {
		t.Errorf("Expected 'second turn', got %q", got)
	}
}

func TestSchedulerWithFrameClock(t *testing.T) {
	// End to end with the real timer at a short interval.
	clock := NewFrameClockWithInterval(2 * time.Millisecond)
	s := NewScheduler(clock, nil)

	s.OnChunk("streamed over a real clock")

	deadline := time.Now().Add(2 * time.Second)
	for s.Pending() > 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}

	if got := s.Revealed(); got != "streamed over a real clock" {
		t.Errorf("Expected full reveal, got %q", got)
	}
}

// =============================================================================
// CLOCK TESTS
// =============================================================================

func TestManualClockCancel(t *testing.T) {
	clock := NewManualClock()

	ranFirst := false
	ranSecond := false
	cancel := clock.Schedule(func() { ranFirst = true })
	clock.Schedule(func() { ranSecond = true })
	cancel()

	if ran := clock.Tick(); ran != 1 {
		t.Errorf("Expected 1 callback to run, got %d", ran)
	}
	if ranFirst {
		t.Error("Cancelled callback ran")
	}
	if !ranSecond {
		t.Error("Remaining callback did not run")
	}
}

func TestManualClockRescheduleLandsInNextBatch(t *testing.T) {
	clock := NewManualClock()

	count := 0
	var fn func()
	fn = func() {
		count++
		if count < 3 {
			clock.Schedule(fn)
		}
	}
	clock.Schedule(fn)

	// Each Tick is one frame: the chain needs three.
	for i := 0; i < 3; i++ {
		if ran := clock.Tick(); ran != 1 {
			t.Fatalf("Frame %d: expected 1 callback, got %d", i, ran)
		}
	}
	if count != 3 {
		t.Errorf("Expected 3 runs, got %d", count)
	}
}

func TestFrameClockFires(t *testing.T) {
	clock := NewFrameClockWithInterval(5 * time.Millisecond)

	fired := make(chan struct{})
	clock.Schedule(func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("Scheduled callback never fired")
	}
}

func TestFrameClockCancel(t *testing.T) {
	clock := NewFrameClockWithInterval(20 * time.Millisecond)

	fired := make(chan struct{}, 1)
	cancel := clock.Schedule(func() { fired <- struct{}{} })
	cancel()

	select {
	case <-fired:
		t.Error("Cancelled callback fired")
	case <-time.After(60 * time.Millisecond):
	}
}

// =============================================================================
// BENCHMARKS
// =============================================================================

func BenchmarkTurnAppend(b *testing.B) {
	turn := NewTurn()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		turn.Append("token ")
	}
}

func BenchmarkTurnAdvance(b *testing.B) {
	turn := NewTurn()
	turn.Append(strings.Repeat("some streamed text ", 1000))
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		turn.Advance(StepChars)
	}
}
