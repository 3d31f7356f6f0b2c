// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Ava TUI.
package styles

import (
	"strings"
	"testing"
	"time"
)

// =============================================================================
// SPINNER TESTS
// =============================================================================

func TestSpinnerConfigDuration(t *testing.T) {
	tests := []struct {
		name    string
		spinner SpinnerConfig
		want    time.Duration
	}{
		{"LineSpinner", LineSpinner, time.Second / 10},
		{"DotsSpinner", DotsSpinner, time.Second / 6},
	}

	for _, tt := range tests {
		if got := tt.spinner.Duration(); got != tt.want {
			t.Errorf("%s.Duration() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestSpinnersHaveFrames(t *testing.T) {
	for _, s := range []SpinnerConfig{LineSpinner, DotsSpinner} {
		if len(s.Frames) == 0 {
			t.Error("spinner has no frames")
		}
		if s.FPS <= 0 {
			t.Errorf("spinner FPS = %d, want positive", s.FPS)
		}
	}
}

// =============================================================================
// PROGRESS BAR TESTS
// =============================================================================

func TestRenderProgressBar(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		percent float64
	}{
		{"empty", 10, 0},
		{"half", 10, 50},
		{"full", 10, 100},
		{"over", 10, 150},
		{"negative", 10, -5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bar := RenderProgressBar(tt.width, tt.percent)
			if len(bar) != tt.width {
				t.Errorf("RenderProgressBar(%d, %v) length = %d, want %d",
					tt.width, tt.percent, len(bar), tt.width)
			}
		})
	}
}

func TestRenderProgressBarContent(t *testing.T) {
	full := RenderProgressBar(10, 100)
	if full != strings.Repeat(ProgressFull, 10) {
		t.Errorf("full bar = %q", full)
	}

	empty := RenderProgressBar(10, 0)
	if empty != strings.Repeat(ProgressEmpty, 10) {
		t.Errorf("empty bar = %q", empty)
	}

	half := RenderProgressBar(10, 50)
	if !strings.HasPrefix(half, strings.Repeat(ProgressFull, 5)) {
		t.Errorf("half bar should start with 5 full blocks: %q", half)
	}
}

func TestRenderProgressBarZeroWidth(t *testing.T) {
	if bar := RenderProgressBar(0, 50); bar != "" {
		t.Errorf("zero width bar = %q, want empty", bar)
	}
	if bar := RenderProgressBar(-5, 50); bar != "" {
		t.Errorf("negative width bar = %q, want empty", bar)
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestRenderHelpersIncludeIndicators(t *testing.T) {
	tests := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"success", RenderSuccess("saved"), StatusIndicators.Success},
		{"error", RenderError("failed"), StatusIndicators.Error},
		{"warning", RenderWarning("careful"), StatusIndicators.Warning},
		{"info", RenderInfo("note"), StatusIndicators.Info},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.Contains(tt.rendered, tt.indicator) {
				t.Errorf("rendered output %q missing indicator %q", tt.rendered, tt.indicator)
			}
		})
	}
}
