// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/export"
	"github.com/rorymaher2092/ava-tui/internal/storage"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// feedbackTimeout bounds the fire-and-forget POST to /feedback.
const feedbackTimeout = 10 * time.Second

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// handleCommand runs a slash command. Commands never reach the backend
// as chat messages.
func (m Model) handleCommand(text string) (Model, tea.Cmd) {
	fields := strings.Fields(text)
	name := strings.ToLower(fields[0])
	args := fields[1:]

	switch name {
	case "/help":
		m.conversation.AddSystemMessage(HelpText())
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case "/new":
		return m.startNewConversation()

	case "/clear":
		return m.clearTranscript()

	case "/bots":
		return m.listBots()

	case "/bot":
		return m.switchBot(args)

	case "/sources":
		m.citationPanel.Toggle()
		m.resizeTranscript()
		return m, nil

	case "/artifact":
		m.artifact.Toggle()
		if !m.artifact.HasContent() {
			m.statusMsg = "No diagram or story map in the last answer"
			return m, expireStatus()
		}
		return m, nil

	case "/open":
		return m.openCitation(args)

	case "/copy":
		return m.copyLastAnswer()

	case "/save":
		return m.saveConversation()

	case "/export":
		return m.exportConversation(args)

	case "/feedback":
		return m.submitFeedback(args)

	case "/history":
		return m.showHistory()

	case "/load":
		return m.loadConversation(args)

	case "/retry":
		return m.retryLast()

	case "/quit", "/exit":
		m.saveOnExit()
		return m, tea.Quit

	default:
		m.statusMsg = "Unknown command " + name + " (try /help)"
		return m, expireStatus()
	}
}

// =============================================================================
// BOT COMMANDS
// =============================================================================

// listBots prints the bots the signed-in user may talk to.
func (m Model) listBots() (Model, tea.Cmd) {
	var email string
	if m.session != nil {
		email = m.session.Status().Email
	}

	var sb strings.Builder
	sb.WriteString("Available bots:\n\n")
	for _, p := range bot.ListFor(email) {
		marker := "  "
		if p.ID == m.activeBot.ID {
			marker = "* "
		}
		fmt.Fprintf(&sb, "%s%-10s %s\n", marker, p.ID, p.Description)
	}
	sb.WriteString("\n/bot <id> switches bots (starts a new conversation).")

	m.conversation.AddSystemMessage(sb.String())
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// switchBot changes the active bot. A non-empty conversation rolls over
// to a fresh one so history never mixes bots.
func (m Model) switchBot(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusMsg = "Usage: /bot <id> (see /bots)"
		return m, expireStatus()
	}
	p, ok := bot.Get(args[0])
	if !ok {
		m.statusMsg = "Unknown bot: " + args[0]
		return m, expireStatus()
	}
	var email string
	if m.session != nil {
		email = m.session.Status().Email
	}
	if !p.AllowedFor(email) {
		m.statusMsg = p.Label + " is restricted for your account"
		return m, expireStatus()
	}

	m.activeBot = p
	m.statusBar.SetBot(p.Label)
	if m.conversation.IsEmpty() {
		m.conversation.BotID = p.ID
		m.statusMsg = "Bot: " + p.Label
		return m, expireStatus()
	}
	return m.startNewConversation()
}

// =============================================================================
// CITATION COMMANDS
// =============================================================================

// openCitation activates a citation from the last answer by ordinal.
func (m Model) openCitation(args []string) (Model, tea.Cmd) {
	if len(args) == 0 {
		m.statusMsg = "Usage: /open <n> (see the answer's footnotes)"
		return m, expireStatus()
	}
	n, err := strconv.Atoi(strings.Trim(args[0], "[]"))
	if err != nil {
		m.statusMsg = "Not a source number: " + args[0]
		return m, expireStatus()
	}

	last := m.conversation.GetLastAssistantMessage()
	if last == nil || last.Parsed == nil || len(last.Parsed.Citations) == 0 {
		m.statusMsg = "No sources in the last answer"
		return m, expireStatus()
	}
	for _, c := range last.Parsed.Citations {
		if c.Ordinal == n {
			m.extractor.Activate(*c)
			return m, nil
		}
	}
	m.statusMsg = fmt.Sprintf("No source [%d] in the last answer", n)
	return m, expireStatus()
}

// =============================================================================
// PERSISTENCE COMMANDS
// =============================================================================

// saveConversation saves explicitly. Autosave covers the common path;
// this exists for peace of mind before /quit.
func (m Model) saveConversation() (Model, tea.Cmd) {
	if m.store == nil {
		m.statusMsg = "History is disabled in config"
		return m, expireStatus()
	}
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	if m.conversation.IsEmpty() {
		m.statusMsg = "Nothing to save yet"
		return m, expireStatus()
	}
	store, conv := m.store, m.conversation
	return m, func() tea.Msg {
		path, err := store.Save(conv)
		return ConversationSavedMsg{Path: path, Err: err}
	}
}

// exportConversation writes the transcript to a file in the working
// directory.
func (m Model) exportConversation(args []string) (Model, tea.Cmd) {
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	if m.conversation.IsEmpty() {
		m.statusMsg = "Nothing to export yet"
		return m, expireStatus()
	}

	format := "md"
	if len(args) > 0 {
		format = strings.ToLower(args[0])
	}

	exporter, err := export.For(format, nil)
	if err != nil {
		m.statusMsg = "Usage: /export [md|html|json]"
		return m, expireStatus()
	}
	data, err := exporter.Export(m.conversation)
	if err != nil {
		m.statusMsg = "export failed: " + err.Error()
		return m, expireStatus()
	}

	path := export.Filename(m.conversation, exporter)
	return m, func() tea.Msg {
		return ExportDoneMsg{Path: path, Err: util.AtomicWriteFile(path, data, 0644)}
	}
}

// showHistory lists saved conversations as a system message.
func (m Model) showHistory() (Model, tea.Cmd) {
	if m.store == nil {
		m.statusMsg = "History is disabled in config"
		return m, expireStatus()
	}
	metas, err := m.store.List()
	if err != nil {
		m.statusMsg = "history: " + err.Error()
		return m, expireStatus()
	}
	m.conversation.AddSystemMessage(storage.FormatList(metas) + "\n/load <n> resumes a conversation.")
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// loadConversation resumes a saved conversation by its /history number.
func (m Model) loadConversation(args []string) (Model, tea.Cmd) {
	if m.store == nil {
		m.statusMsg = "History is disabled in config"
		return m, expireStatus()
	}
	if len(args) == 0 {
		m.statusMsg = "Usage: /load <n> (see /history)"
		return m, expireStatus()
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		m.statusMsg = "Not a conversation number: " + args[0]
		return m, expireStatus()
	}
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}

	m.autosave()
	store := m.store
	return m, func() tea.Msg {
		conv, err := store.LoadByIndex(n - 1)
		if err != nil {
			return StatusMsg{Text: "load failed: " + err.Error()}
		}
		return ConversationLoadedMsg{Conversation: conv}
	}
}

// =============================================================================
// FEEDBACK
// =============================================================================

// submitFeedback sends a thumbs up/down for the last answer.
func (m Model) submitFeedback(args []string) (Model, tea.Cmd) {
	if m.client == nil {
		m.errDisplay.ShowErr(api.ErrNotConfigured)
		return m, nil
	}
	last := m.conversation.GetLastAssistantMessage()
	if last == nil || last.IsStreaming || last.IsEmpty() {
		m.statusMsg = "No finished answer to rate yet"
		return m, expireStatus()
	}
	if len(args) == 0 {
		m.statusMsg = "Usage: /feedback <+|-> [comment]"
		return m, expireStatus()
	}

	var feedback string
	switch args[0] {
	case "+", "up", "good":
		feedback = "positive"
	case "-", "down", "bad":
		feedback = "negative"
	default:
		m.statusMsg = "Usage: /feedback <+|-> [comment]"
		return m, expireStatus()
	}
	comment := strings.Join(args[1:], " ")

	client, msgID := m.client, last.ID
	return m, func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), feedbackTimeout)
		defer cancel()
		_, err := client.SubmitFeedback(ctx, &api.FeedbackRequest{
			ResponseID: msgID,
			Feedback:   feedback,
			Comments:   comment,
		})
		return FeedbackSentMsg{MessageID: msgID, Feedback: feedback, Err: err}
	}
}

// =============================================================================
// RETRY
// =============================================================================

// retryLast re-asks the most recent question, discarding everything the
// conversation accumulated after it.
func (m Model) retryLast() (Model, tea.Cmd) {
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	lastUser := m.conversation.GetLastUserMessage()
	if lastUser == nil {
		m.statusMsg = "Nothing to retry yet"
		return m, expireStatus()
	}
	question := lastUser.Content

	for {
		lm := m.conversation.GetLastMessage()
		if lm == nil {
			break
		}
		id := lm.ID
		m.conversation.RemoveMessage(id)
		if id == lastUser.ID {
			break
		}
	}
	return m.sendMessage(question)
}
