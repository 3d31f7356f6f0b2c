// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/ui/components"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// VIEW
// =============================================================================

// View renders the chat screen. Overlays take the whole screen; the
// normal layout is header, transcript, hint line, input, status bar.
func (m Model) View() string {
	if !m.ready {
		return "\n  Starting Ava..."
	}
	if m.errDisplay.IsVisible() {
		return m.errDisplay.View()
	}
	if m.artifact.IsVisible() {
		return m.artifact.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderBody(),
		m.renderHintLine(),
		m.renderInput(),
		m.statusBar.View(),
	)
}

// renderHeader is the one-line title bar.
func (m Model) renderHeader() string {
	badge := m.theme.HeaderTitle.Render(" AVA ")
	info := m.theme.HeaderInfo.Render(m.activeBot.Label)

	title := ""
	if !m.conversation.IsEmpty() {
		avail := m.width - lipgloss.Width(badge) - lipgloss.Width(info) - 6
		if avail > 10 {
			title = m.theme.HeaderInfo.Render(util.TruncateWidth(m.conversation.GetTitle(), avail))
		}
	}

	line := badge + " " + info
	if title != "" {
		line += "  " + title
	}
	return m.theme.Header.Width(m.width).Render(line)
}

// renderBody is the transcript viewport, with the citation panel docked
// on the right when open and the terminal is wide enough.
func (m Model) renderBody() string {
	body := m.viewport.View()
	if m.citationPanel.IsVisible() && m.theme.GetLayoutMode() == styles.LayoutWide {
		return lipgloss.JoinHorizontal(lipgloss.Top, body, m.citationPanel.View(m.lastCitations()))
	}
	return body
}

// lastCitations returns the citations of the newest answer for the panel.
func (m Model) lastCitations() []*answer.Citation {
	last := m.conversation.GetLastAssistantMessage()
	if last == nil || last.Parsed == nil {
		return nil
	}
	return last.Parsed.Citations
}

// renderHintLine is the single line between transcript and input:
// transient status first, then follow-up suggestions, then key hints.
func (m Model) renderHintLine() string {
	width := m.width - 2
	if width < 10 {
		width = 10
	}

	if m.statusMsg != "" {
		return " " + m.theme.StatusMessage.Render(util.TruncateWidth(m.statusMsg, width))
	}

	if len(m.followups) > 0 {
		next := m.followups[m.followupIndex%len(m.followups)]
		hint := "tab: " + next
		if len(m.followups) > 1 {
			hint += fmt.Sprintf(" (+%d more)", len(m.followups)-1)
		}
		return " " + m.theme.FollowupItem.Render(util.TruncateWidth(hint, width))
	}

	return " " + m.theme.MessageMeta.Render(util.TruncateWidth("enter sends  *  /help commands  *  ? keys", width))
}

// renderInput is the bordered input line.
func (m Model) renderInput() string {
	width := m.width - 2
	if width < 10 {
		width = 10
	}
	return m.theme.InputContainer.Width(width).Render(m.input.View())
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

// updateViewport re-renders the transcript into the viewport.
func (m *Model) updateViewport() {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
}

// renderTranscript renders the conversation history top to bottom.
func (m Model) renderTranscript() string {
	wrap := m.viewport.Width - 4
	if wrap < 20 {
		wrap = 20
	}
	if wrap > 110 {
		wrap = 110
	}

	history := m.conversation.GetHistory()
	if len(history) == 0 {
		return "\n " + m.theme.MessageMeta.Render("Ask your first question below.")
	}

	blocks := make([]string, 0, len(history)+1)
	for _, msg := range history {
		switch msg.Role {
		case model.RoleUser:
			blocks = append(blocks, m.renderUserMessage(msg, wrap))
		case model.RoleSystem:
			blocks = append(blocks, m.renderSystemMessage(msg, wrap))
		case model.RoleAssistant:
			blocks = append(blocks, m.renderAssistantMessage(msg, wrap))
		}
	}

	if m.state == StateThinking {
		blocks = append(blocks, m.renderThinking())
	}

	return "\n" + strings.Join(blocks, "\n\n") + "\n"
}

// renderUserMessage renders a question.
func (m Model) renderUserMessage(msg *model.Message, wrap int) string {
	label := m.theme.UserLabel.Render("You") + " " +
		m.theme.MessageMeta.Render(msg.Timestamp.Format("15:04"))
	return label + "\n" + m.theme.UserBubble.Width(wrap).Render(msg.Content)
}

// renderSystemMessage renders an in-transcript notice (help text,
// cancellations, history listings).
func (m Model) renderSystemMessage(msg *model.Message, wrap int) string {
	return m.theme.SystemBubble.Width(wrap).Render(msg.Content)
}

// renderAssistantMessage renders an answer with its citation markers,
// and once complete, its stats line, gap notice, artifact hint and
// footnotes.
func (m Model) renderAssistantMessage(msg *model.Message, wrap int) string {
	label := m.theme.AssistantLabel.Render(m.botLabelFor(msg)) + " " +
		m.theme.MessageMeta.Render(msg.Timestamp.Format("15:04"))

	body := m.composeSegments(msg)
	if strings.Contains(body, "```") {
		body = components.ParseCodeBlocks(body, wrap-2)
	} else {
		body = components.RenderInline(m.theme, body)
	}
	if body == "" {
		body = m.theme.MessageMeta.Render("...")
	}

	parts := []string{label, m.theme.AssistantBubble.Width(wrap).Render(body)}

	if !msg.IsStreaming {
		if m.cfg.UI.ShowStats {
			if stats := msg.FormatStats(); stats != "" {
				parts = append(parts, m.theme.MessageMeta.Render(stats))
			}
		}
		if msg.Feedback != "" {
			parts = append(parts, m.theme.MessageMeta.Render("feedback: "+msg.Feedback))
		}
		if msg.Parsed != nil {
			if msg.Parsed.HasKnowledgeGap {
				parts = append(parts, components.RenderGapNotice(m.theme, wrap))
			}
			if msg.Parsed.Diagram != nil || msg.Parsed.StoryMap != nil {
				parts = append(parts, components.RenderArtifactHint(m.theme, msg.Parsed.Diagram, msg.Parsed.StoryMap))
			}
			if len(msg.Parsed.Citations) > 0 {
				parts = append(parts, components.RenderFootnotes(m.theme, msg.Parsed.Citations, wrap))
			}
		}
	}

	return strings.Join(parts, "\n")
}

// composeSegments flattens the parsed answer, rendering citation markers
// in theme colors. Falls back to the raw text before the first parse.
func (m Model) composeSegments(msg *model.Message) string {
	if msg.Parsed == nil {
		return msg.GetDisplayContent()
	}
	var sb strings.Builder
	for _, seg := range msg.Parsed.Segments {
		if seg.Citation != nil {
			sb.WriteString(components.MarkerFor(m.theme, seg.Citation))
			continue
		}
		sb.WriteString(seg.Text)
	}
	return sb.String()
}

// renderThinking is the spinner line while waiting for the first text.
func (m Model) renderThinking() string {
	elapsed := time.Since(m.thinkingStart).Seconds()
	return m.spin.View() + " " +
		m.theme.ThinkingText.Render("Thinking...") + " " +
		m.theme.ThinkingTime.Render(fmt.Sprintf("(%.1fs)", elapsed))
}

// botLabelFor resolves the display name for the bot that answered.
func (m Model) botLabelFor(msg *model.Message) string {
	id := msg.BotID
	if id == "" {
		id = m.conversation.BotID
	}
	if p, ok := bot.Get(id); ok {
		return p.Label
	}
	return "Ava"
}
