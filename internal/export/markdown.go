// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports conversations to Markdown format.
type MarkdownExporter struct {
	options *Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts *Options) *MarkdownExporter {
	if opts == nil {
		opts = DefaultOptions()
	}
	return &MarkdownExporter{options: opts}
}

// Export converts a conversation to Markdown format.
func (e *MarkdownExporter) Export(conv *model.Conversation) ([]byte, error) {
	if conv == nil {
		return nil, fmt.Errorf("conversation is nil")
	}
	if len(conv.Messages) == 0 {
		return nil, fmt.Errorf("conversation has no messages")
	}
	if conv.CreatedAt.IsZero() {
		return nil, fmt.Errorf("conversation has invalid creation timestamp")
	}

	var sb strings.Builder

	// YAML frontmatter with metadata
	if e.options.IncludeMetadata {
		sb.WriteString("---\n")
		sb.WriteString(fmt.Sprintf("title: %s\n", escapeYAML(conv.GetTitle())))
		if conv.BotID != "" {
			sb.WriteString(fmt.Sprintf("bot: %s\n", escapeYAML(botLabel(conv.BotID))))
		}
		sb.WriteString(fmt.Sprintf("date: %s\n", conv.CreatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("updated: %s\n", conv.UpdatedAt.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("messages: %d\n", len(conv.Messages)))
		if conv.TokensUsed > 0 {
			sb.WriteString(fmt.Sprintf("tokens: %d\n", conv.TokensUsed))
		}
		sb.WriteString(fmt.Sprintf("exported: %s\n", time.Now().Format(time.RFC3339)))
		sb.WriteString("generator: ava\n")
		sb.WriteString("---\n\n")
	}

	// Title
	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(conv.GetTitle())))

	// Metadata section
	if e.options.IncludeMetadata {
		sb.WriteString("## Session Information\n\n")
		if conv.BotID != "" {
			sb.WriteString(fmt.Sprintf("- **Bot**: %s\n", botLabel(conv.BotID)))
		}
		sb.WriteString(fmt.Sprintf("- **Created**: %s\n", formatTimestamp(conv.CreatedAt)))
		sb.WriteString(fmt.Sprintf("- **Last Updated**: %s\n", formatTimestamp(conv.UpdatedAt)))
		sb.WriteString(fmt.Sprintf("- **Messages**: %d\n", len(conv.Messages)))
		if conv.TokensUsed > 0 {
			sb.WriteString(fmt.Sprintf("- **Tokens Used**: %d\n", conv.TokensUsed))
		}
		sb.WriteString("\n---\n\n")
	}

	// Conversation messages
	sb.WriteString("## Conversation\n\n")

	for i, msg := range conv.Messages {
		if e.options.IncludeTimestamps {
			sb.WriteString(fmt.Sprintf("### %s <sub>%s</sub>\n\n",
				msg.Role.DisplayName(),
				formatShortTimestamp(msg.Timestamp)))
		} else {
			sb.WriteString(fmt.Sprintf("### %s\n\n", msg.Role.DisplayName()))
		}

		if msg.Role == model.RoleAssistant {
			e.renderAssistant(&sb, msg)
		} else {
			sb.WriteString(strings.TrimSpace(msg.Content))
			sb.WriteString("\n")
			for _, att := range msg.Attachments {
				sb.WriteString(fmt.Sprintf("\n*Attached: %s (%s)*\n", att.Name, formatSize(att.SizeBytes)))
			}
		}
		sb.WriteString("\n")

		if i < len(conv.Messages)-1 {
			sb.WriteString("---\n\n")
		}
	}

	// Footer
	sb.WriteString("\n---\n\n")
	sb.WriteString(fmt.Sprintf("*Exported from Ava on %s*\n",
		time.Now().Format("January 2, 2006 at 3:04 PM")))

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// =============================================================================
// ANSWER RENDERING
// =============================================================================

// renderAssistant writes an assistant answer with citations resolved to
// numbered references. The raw content is never written directly: sentinel
// payloads and citation tokens go through extraction first.
func (e *MarkdownExporter) renderAssistant(sb *strings.Builder, msg *model.Message) {
	res := msg.Reparse()

	sb.WriteString(strings.TrimSpace(res.PlainText()))
	sb.WriteString("\n")

	if res.HasKnowledgeGap {
		sb.WriteString("\n> **Note**: The knowledge base may not fully cover this question.\n")
	}

	if len(res.Citations) > 0 {
		sb.WriteString("\n**References**\n\n")
		for _, c := range res.Citations {
			if c.Kind == answer.KindExternalLink {
				sb.WriteString(fmt.Sprintf("- [%d] [%s](%s)\n", c.Ordinal, c.DisplayTitle, c.TargetURL))
			} else {
				sb.WriteString(fmt.Sprintf("- [%d] %s\n", c.Ordinal, c.DisplayTitle))
			}
		}
	}

	e.writeArtifact(sb, "Process diagram", res.Diagram, "xml")
	e.writeArtifact(sb, "Story map", res.StoryMap, "")

	if len(msg.FollowupQuestions) > 0 {
		sb.WriteString("\n**Suggested follow-ups**\n\n")
		for _, q := range msg.FollowupQuestions {
			sb.WriteString("- " + q + "\n")
		}
	}

	if e.options.IncludeMetadata {
		if stats := e.formatMessageStats(msg); stats != "" {
			sb.WriteString("\n" + stats + "\n")
		}
	}
}

// writeArtifact appends a side-channel payload as a labelled block.
// Diagrams go in a fenced code block; story maps are already Markdown
// tables and are written as-is.
func (e *MarkdownExporter) writeArtifact(sb *strings.Builder, label string, p *answer.Payload, lang string) {
	if p == nil {
		return
	}
	title := label
	if p.Title != "" {
		title += ": " + p.Title
	}
	sb.WriteString("\n**" + title + "**\n\n")
	if lang != "" {
		sb.WriteString("```" + lang + "\n")
		sb.WriteString(strings.TrimRight(p.Body, "\n"))
		sb.WriteString("\n```\n")
	} else {
		sb.WriteString(strings.TrimSpace(p.Body))
		sb.WriteString("\n")
	}
}

// formatMessageStats formats statistics for an assistant message.
func (e *MarkdownExporter) formatMessageStats(msg *model.Message) string {
	if msg.TokenCount == 0 && msg.TotalDuration == 0 {
		return ""
	}

	var parts []string

	if msg.TokenCount > 0 {
		parts = append(parts, fmt.Sprintf("Tokens: %d", msg.TokenCount))
	}
	if msg.TotalDuration > 0 {
		parts = append(parts, fmt.Sprintf("Duration: %s", formatDuration(msg.TotalDuration)))
	}
	if msg.TTFT > 0 {
		parts = append(parts, fmt.Sprintf("TTFT: %s", formatDuration(msg.TTFT)))
	}
	if msg.TokensPerSec > 0 {
		parts = append(parts, fmt.Sprintf("Speed: %s", formatTokensPerSec(msg.TokensPerSec)))
	}

	if len(parts) == 0 {
		return ""
	}

	return fmt.Sprintf("<sub>Stats: %s</sub>", strings.Join(parts, " | "))
}

// =============================================================================
// ESCAPING HELPERS
// =============================================================================

// escapeMarkdown escapes special Markdown characters in plain text.
func escapeMarkdown(s string) string {
	// Only escape characters that would break formatting in titles/headings
	s = strings.ReplaceAll(s, "#", "\\#")
	s = strings.ReplaceAll(s, "*", "\\*")
	s = strings.ReplaceAll(s, "_", "\\_")
	s = strings.ReplaceAll(s, "[", "\\[")
	s = strings.ReplaceAll(s, "]", "\\]")
	return s
}

// escapeYAML escapes special YAML characters in values.
func escapeYAML(s string) string {
	if strings.ContainsAny(s, ":#|>@`\"'[]{}!%&*\n\r\\") || strings.HasPrefix(s, " ") || strings.HasSuffix(s, " ") {
		s = strings.ReplaceAll(s, "\\", "\\\\")
		s = strings.ReplaceAll(s, "\"", "\\\"")
		s = strings.ReplaceAll(s, "\n", "\\n")
		s = strings.ReplaceAll(s, "\r", "\\r")
		return fmt.Sprintf("\"%s\"", s)
	}
	return s
}
