// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the Ava TUI.
package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme(t *testing.T) {
	theme := NewTheme()

	if theme == nil {
		t.Fatal("NewTheme() returned nil")
	}

	// Verify styles are initialized by rendering a test string
	rendered := theme.App.Render("test")
	if rendered == "" {
		t.Error("NewTheme() should initialize App style")
	}
}

func TestNewThemeWithMode(t *testing.T) {
	dark := NewThemeWithMode("dark")
	if !dark.IsDark {
		t.Error("NewThemeWithMode(dark) should set IsDark")
	}

	light := NewThemeWithMode("light")
	if light.IsDark {
		t.Error("NewThemeWithMode(light) should clear IsDark")
	}

	// Auto mode must not panic regardless of the environment it runs in.
	auto := NewThemeWithMode("auto")
	if auto == nil {
		t.Fatal("NewThemeWithMode(auto) returned nil")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme()

	// An uninitialized style would return the input unchanged; check a
	// representative style from each group renders something.
	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"HeaderTitle", theme.HeaderTitle},
		{"UserBubble", theme.UserBubble},
		{"AssistantLabel", theme.AssistantLabel},
		{"SystemBubble", theme.SystemBubble},
		{"InputContainer", theme.InputContainer},
		{"StatusBar", theme.StatusBar},
		{"CitationMarkerDoc", theme.CitationMarkerDoc},
		{"CitationMarkerLink", theme.CitationMarkerLink},
		{"GapNotice", theme.GapNotice},
		{"ArtifactOverlay", theme.ArtifactOverlay},
		{"ErrorBox", theme.ErrorBox},
		{"CodeBlock", theme.CodeBlock},
		{"WelcomeBox", theme.WelcomeBox},
	}

	for _, s := range styles {
		rendered := s.style.Render("test")
		if rendered == "" {
			t.Errorf("%s style should be initialized", s.name)
		}
	}
}

// =============================================================================
// THEME SIZE TESTS
// =============================================================================

func TestThemeSetSize(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width  int
		height int
	}{
		{80, 24},
		{120, 40},
		{200, 60},
		{40, 10},
	}

	for _, tt := range tests {
		theme.SetSize(tt.width, tt.height)
		if theme.Width != tt.width {
			t.Errorf("SetSize(%d, %d): Width = %d", tt.width, tt.height, theme.Width)
		}
		if theme.Height != tt.height {
			t.Errorf("SetSize(%d, %d): Height = %d", tt.width, tt.height, theme.Height)
		}
	}
}

func TestThemeGetLayoutMode(t *testing.T) {
	theme := NewTheme()

	tests := []struct {
		width int
		want  LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
		{200, LayoutWide},
	}

	for _, tt := range tests {
		theme.SetSize(tt.width, 24)
		if got := theme.GetLayoutMode(); got != tt.want {
			t.Errorf("GetLayoutMode() at width %d = %v, want %v", tt.width, got, tt.want)
		}
	}
}
