// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ava TUI.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK COMPONENT
// =============================================================================

// CodeBlock renders a fenced code block with syntax highlighting and a
// language badge.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// Render produces the styled code block.
func (cb CodeBlock) Render() string {
	width := cb.MaxWidth
	if width <= 0 {
		width = 80
	}

	highlighted := highlightCode(cb.Code, cb.Language)
	highlighted = strings.TrimRight(highlighted, "\n")

	badge := ""
	if cb.Language != "" {
		badge = lipgloss.NewStyle().
			Background(styles.Violet).
			Foreground(styles.TextInverse).
			Padding(0, 1).
			Render(cb.Language) + "\n"
	}

	block := lipgloss.NewStyle().
		Background(styles.SurfaceDim).
		Padding(0, 1).
		Width(width).
		Render(highlighted)

	return badge + block
}

// =============================================================================
// MARKDOWN-ISH PARSING
// =============================================================================

// ParseCodeBlocks renders fenced code blocks inside text, passing everything
// else through unchanged. An unclosed fence is treated as running to the end
// of the text, which keeps mid-stream renders stable while a block is still
// arriving.
func ParseCodeBlocks(text string, maxWidth int) string {
	if !strings.Contains(text, "```") {
		return text
	}

	var out strings.Builder
	lines := strings.Split(text, "\n")

	inBlock := false
	language := ""
	var code []string

	flush := func() {
		cb := CodeBlock{
			Language: language,
			Code:     strings.Join(code, "\n"),
			MaxWidth: maxWidth,
		}
		out.WriteString(cb.Render())
		out.WriteString("\n")
		code = code[:0]
		language = ""
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			if inBlock {
				flush()
				inBlock = false
			} else {
				inBlock = true
				language = strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			}
			continue
		}
		if inBlock {
			code = append(code, line)
			continue
		}
		out.WriteString(line)
		out.WriteString("\n")
	}

	if inBlock {
		flush()
	}

	return strings.TrimSuffix(out.String(), "\n")
}

// RenderInline styles `inline code` spans. Unbalanced backticks render
// literally.
func RenderInline(theme *styles.Theme, text string) string {
	if !strings.Contains(text, "`") {
		return text
	}

	var out strings.Builder
	for {
		start := strings.IndexByte(text, '`')
		if start < 0 {
			out.WriteString(text)
			break
		}
		rest := text[start+1:]
		end := strings.IndexByte(rest, '`')
		if end < 0 {
			out.WriteString(text)
			break
		}
		out.WriteString(text[:start])
		out.WriteString(theme.InlineCode.Render(rest[:end]))
		text = rest[end+1:]
	}
	return out.String()
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// highlightCode applies chroma syntax highlighting, falling back to the
// plain source when the language is unknown or tokenization fails.
func highlightCode(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		return code
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var sb strings.Builder
	if err := formatter.Format(&sb, style, iterator); err != nil {
		return code
	}
	return sb.String()
}
