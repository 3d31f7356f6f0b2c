// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"strings"
	"testing"

	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK PARSING TESTS
// =============================================================================

func TestParseCodeBlocksPassthrough(t *testing.T) {
	text := "no fences here\njust plain text"
	if out := ParseCodeBlocks(text, 80); out != text {
		t.Errorf("text without fences should pass through unchanged, got %q", out)
	}
}

func TestParseCodeBlocksRendersFence(t *testing.T) {
	text := "before\n```go\nfmt.Println(\"hi\")\n```\nafter"
	out := ParseCodeBlocks(text, 80)

	if !strings.Contains(out, "before") {
		t.Error("text before the fence should survive")
	}
	if !strings.Contains(out, "after") {
		t.Error("text after the fence should survive")
	}
	if !strings.Contains(out, "Println") {
		t.Error("code content should survive rendering")
	}
	if strings.Contains(out, "```") {
		t.Error("fence markers should be consumed")
	}
}

func TestParseCodeBlocksUnclosedFence(t *testing.T) {
	// Mid-stream renders regularly see a fence that has not closed yet;
	// the open block renders as code instead of leaking backticks.
	text := "look:\n```python\nprint(1)"
	out := ParseCodeBlocks(text, 80)

	if !strings.Contains(out, "print(1)") {
		t.Error("unclosed block content should render")
	}
	if strings.Contains(out, "```") {
		t.Error("unclosed fence marker should be consumed")
	}
}

func TestParseCodeBlocksLanguageBadge(t *testing.T) {
	out := ParseCodeBlocks("```sql\nSELECT 1;\n```", 80)
	if !strings.Contains(out, "sql") {
		t.Error("language badge should render")
	}
}

// =============================================================================
// INLINE CODE TESTS
// =============================================================================

func TestRenderInline(t *testing.T) {
	theme := styles.NewTheme()

	out := RenderInline(theme, "run `ava login` first")
	if !strings.Contains(out, "ava login") {
		t.Error("inline code content should survive")
	}
	if strings.Contains(out, "`") {
		t.Error("balanced backticks should be consumed")
	}
}

func TestRenderInlineUnbalanced(t *testing.T) {
	theme := styles.NewTheme()

	text := "a stray ` backtick"
	if out := RenderInline(theme, text); out != text {
		t.Errorf("unbalanced backtick should render literally, got %q", out)
	}
}

func TestRenderInlineNoBackticks(t *testing.T) {
	theme := styles.NewTheme()

	text := "nothing to style"
	if out := RenderInline(theme, text); out != text {
		t.Errorf("text without backticks should pass through, got %q", out)
	}
}

// =============================================================================
// HIGHLIGHTING TESTS
// =============================================================================

func TestHighlightCodeKnownLanguage(t *testing.T) {
	out := highlightCode("package main", "go")
	if out == "" {
		t.Error("highlighting should produce output")
	}
	if !strings.Contains(out, "package") {
		t.Error("source text should survive highlighting")
	}
}

func TestHighlightCodeUnknownLanguage(t *testing.T) {
	code := "some opaque text"
	out := highlightCode(code, "not-a-language")
	if !strings.Contains(out, "some opaque text") {
		t.Errorf("unknown language should still render the source, got %q", out)
	}
}

func TestCodeBlockRender(t *testing.T) {
	cb := CodeBlock{Language: "go", Code: "x := 1", MaxWidth: 40}
	out := cb.Render()

	if !strings.Contains(out, "go") {
		t.Error("render should include the language badge")
	}
	if !strings.Contains(out, "x := 1") {
		t.Error("render should include the code")
	}
}
