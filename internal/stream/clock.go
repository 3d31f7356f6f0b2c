// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package stream

import (
	"sync"
	"time"
)

// =============================================================================
// CLOCK
// =============================================================================

// FrameInterval is the production tick period: ~33ms for 30fps, the same
// cadence the rest of the UI renders at.
const FrameInterval = 33 * time.Millisecond

// Clock abstracts the tick source so reveal pacing is deterministic
// under test. Schedule arranges for fn to run once, soon, on a clock
// goroutine, and returns a cancel function. Cancellation is best-effort:
// a callback already in flight may still run, so callers must tolerate
// one late fire.
type Clock interface {
	Schedule(fn func()) (cancel func())
}

// =============================================================================
// FRAME CLOCK
// =============================================================================

// FrameClock fires callbacks after a fixed frame interval using the
// runtime timer. This is the production clock.
type FrameClock struct {
	interval time.Duration
}

// NewFrameClock creates a clock at the default 30fps frame interval.
func NewFrameClock() *FrameClock {
	return &FrameClock{interval: FrameInterval}
}

// NewFrameClockWithInterval creates a clock with a custom period.
// Non-positive intervals fall back to the default.
func NewFrameClockWithInterval(d time.Duration) *FrameClock {
	if d <= 0 {
		d = FrameInterval
	}
	return &FrameClock{interval: d}
}

// Schedule runs fn once after the frame interval.
func (c *FrameClock) Schedule(fn func()) func() {
	timer := time.AfterFunc(c.interval, fn)
	return func() { timer.Stop() }
}

// =============================================================================
// MANUAL CLOCK
// =============================================================================

// ManualClock is a deterministic clock: scheduled callbacks run only
// when Tick is called. Tests use it to step the reveal frame by frame
// without real timers.
//
// Thread-safe.
type ManualClock struct {
	mu      sync.Mutex
	nextID  int
	pending []manualEntry
}

type manualEntry struct {
	id int
	fn func()
}

// NewManualClock creates a manual clock with nothing scheduled.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Schedule queues fn for the next Tick and returns a cancel function
// that removes it if it has not fired yet.
func (c *ManualClock) Schedule(fn func()) func() {
	c.mu.Lock()
	c.nextID++
	id := c.nextID
	c.pending = append(c.pending, manualEntry{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, e := range c.pending {
			if e.id == id {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return
			}
		}
	}
}

// Tick runs every callback scheduled before this call and returns how
// many ran. Callbacks that schedule again during the tick land in the
// next batch, so one Tick equals one frame.
func (c *ManualClock) Tick() int {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, e := range batch {
		e.fn()
	}
	return len(batch)
}

// Pending returns the number of callbacks waiting for the next Tick.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}
