// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the conversation screen of the Ava TUI.
package chat

import (
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/index"
	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/storage"
	"github.com/rorymaher2092/ava-tui/internal/stream"
	"github.com/rorymaher2092/ava-tui/internal/ui/components"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// STATE
// =============================================================================

// State is the chat screen's lifecycle state.
type State int

const (
	// StateReady accepts input.
	StateReady State = iota
	// StateThinking is waiting for the first text of an answer.
	StateThinking
	// StateStreaming is revealing an answer.
	StateStreaming
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateThinking:
		return "thinking"
	case StateStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat screen.
type Model struct {
	// Lifecycle
	state   State
	visible bool
	ready   bool // viewport sized after the first WindowSizeMsg

	// Dimensions
	width  int
	height int

	// Wiring
	theme   *styles.Theme
	cfg     *config.Config
	client  *api.Client
	store   *storage.Store
	idx     *index.Index
	session *auth.SessionStore

	// Conversation
	conversation *model.Conversation
	activeBot    bot.Profile

	// Streaming pipeline. The scheduler and cancel manager are pointers:
	// they are shared with goroutines and must survive model copies.
	extractor      *answer.Extractor
	scheduler      *stream.Scheduler
	cancelMgr      *cancelManager
	streamingMsgID string
	thinkingStart  time.Time

	// Follow-up suggestions from the last answer; tab cycles them.
	followups     []string
	followupIndex int

	// Components
	viewport      viewport.Model
	input         textinput.Model
	spin          spinner.Model
	keyMap        KeyMap
	citationPanel components.CitationPanel
	artifact      components.ArtifactView
	errDisplay    components.ErrorDisplay
	statusBar     *components.StatusBar

	// Transient status line above the input.
	statusMsg string
}

// Options wires the chat model's dependencies. Zero values get sensible
// fallbacks so tests can construct a model from almost nothing.
type Options struct {
	Theme   *styles.Theme
	Config  *config.Config
	Client  *api.Client
	Store   *storage.Store
	Index   *index.Index
	Session *auth.SessionStore
	Bot     bot.Profile

	// Conversation resumes an existing conversation instead of starting
	// fresh.
	Conversation *model.Conversation
}

// New creates the chat model.
func New(opts Options) Model {
	if opts.Theme == nil {
		opts.Theme = styles.NewTheme()
	}
	if opts.Config == nil {
		opts.Config = config.Global()
	}
	if opts.Bot.ID == "" {
		opts.Bot = bot.Default()
	}

	conv := opts.Conversation
	if conv == nil {
		conv = model.NewConversationWithBot(opts.Bot.ID)
	}

	ti := textinput.New()
	ti.Placeholder = "Ask Ava anything..."
	ti.Prompt = "> "
	ti.PromptStyle = opts.Theme.InputPrompt
	ti.CharLimit = 4000
	ti.Focus()

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: styles.LineSpinner.Frames,
		FPS:    styles.LineSpinner.Duration(),
	}
	sp.Style = opts.Theme.Spinner

	sb := components.NewStatusBar(opts.Theme)
	sb.SetBot(opts.Bot.Label)

	m := Model{
		state:         StateReady,
		visible:       true,
		theme:         opts.Theme,
		cfg:           opts.Config,
		client:        opts.Client,
		store:         opts.Store,
		idx:           opts.Index,
		session:       opts.Session,
		conversation:  conv,
		activeBot:     opts.Bot,
		extractor:     answer.New(answer.NewCorpus(nil)),
		cancelMgr:     newCancelManager(),
		input:         ti,
		spin:          sp,
		keyMap:        DefaultKeyMap(),
		citationPanel: components.NewCitationPanel(opts.Theme),
		artifact:      components.NewArtifactView(opts.Theme),
		errDisplay:    components.NewErrorDisplay(opts.Theme),
		statusBar:     sb,
	}

	// Citation activation copies the target so it can be pasted into a
	// browser; the TUI never opens one itself.
	m.extractor.SetActivationHandler(func(c answer.Citation) {
		if c.TargetURL == "" {
			send(StatusMsg{Text: c.DisplayTitle + " is a document reference, not a link"})
			return
		}
		if err := clipboard.WriteAll(c.TargetURL); err != nil {
			send(StatusMsg{Text: "copy failed: " + err.Error()})
			return
		}
		send(StatusMsg{Text: "Link copied: " + c.DisplayTitle})
	})

	return m
}

// Conversation returns the live conversation, e.g. for a final save on
// quit.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// ActiveBot returns the bot this conversation is with.
func (m *Model) ActiveBot() bot.Profile {
	return m.activeBot
}

// SetBot switches the active bot for the next conversation. The current
// conversation keeps its own bot.
func (m *Model) SetBot(p bot.Profile) {
	m.activeBot = p
	m.statusBar.SetBot(p.Label)
	if m.conversation.IsEmpty() {
		m.conversation.BotID = p.ID
	}
}

// SetBackendHost sets the host shown in the status bar.
func (m *Model) SetBackendHost(host string) {
	m.statusBar.SetBackend(host)
}

// IsStreaming reports whether an answer is in flight.
func (m *Model) IsStreaming() bool {
	return m.state != StateReady
}

// Init starts the input cursor blink.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// =============================================================================
// UPDATE
// =============================================================================

// Update routes messages to the handlers.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case spinner.TickMsg:
		if m.state == StateThinking {
			var cmd tea.Cmd
			m.spin, cmd = m.spin.Update(msg)
			return m, cmd
		}
		return m, nil

	case StreamStartMsg:
		return m.handleStreamStart(msg)

	case StreamMetaMsg:
		return m.handleStreamMeta(msg)

	case RevealTickMsg:
		return m.handleRevealTick(msg)

	case StreamCompleteMsg:
		return m.handleStreamComplete(msg)

	case StreamErrorMsg:
		return m.handleStreamError(msg)

	case VisibilityMsg:
		m.visible = msg.Visible
		if m.scheduler != nil {
			m.scheduler.SetVisible(msg.Visible)
		}
		return m, nil

	case ErrorMsg:
		m.errDisplay.Show(msg.Title, msg.Message, msg.Suggestions)
		return m, nil

	case ErrorDismissMsg:
		m.errDisplay.Hide()
		return m, nil

	case StatusMsg:
		m.statusMsg = msg.Text
		return m, expireStatus()

	case statusExpireMsg:
		m.statusMsg = ""
		return m, nil

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.statusMsg = "save failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Conversation saved"
		}
		return m, expireStatus()

	case ConversationLoadedMsg:
		return m.handleConversationLoaded(msg)

	case FeedbackSentMsg:
		return m.handleFeedbackSent(msg)

	case CopyDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "copy failed: " + msg.Err.Error()
		} else {
			m.statusMsg = msg.What + " copied"
		}
		return m, expireStatus()

	case ExportDoneMsg:
		if msg.Err != nil {
			m.statusMsg = "export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Exported to " + msg.Path
		}
		return m, expireStatus()
	}

	// Everything else goes to the focused components.
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// =============================================================================
// RESIZE
// =============================================================================

// Layout constants. Header, status and hint rows are single lines; the
// bordered input takes three.
const (
	headerHeight    = 1
	inputAreaHeight = 3
	statusBarHeight = 1
	hintLineHeight  = 1
)

// handleResize recomputes the layout for a new terminal size.
func (m Model) handleResize(msg tea.WindowSizeMsg) (Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	vpWidth := m.transcriptWidth()
	vpHeight := msg.Height - headerHeight - inputAreaHeight - statusBarHeight - hintLineHeight
	if vpHeight < 3 {
		vpHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(vpWidth, vpHeight)
		m.ready = true
	} else {
		m.viewport.Width = vpWidth
		m.viewport.Height = vpHeight
	}

	inputWidth := msg.Width - 6 - len(m.input.Prompt)
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	m.statusBar.SetWidth(msg.Width)
	m.citationPanel.SetSize(m.panelWidth(), vpHeight)
	m.artifact.SetSize(msg.Width, msg.Height)
	m.errDisplay.SetSize(msg.Width, msg.Height)

	m.updateViewport()
	return m, nil
}

// panelWidth is the citation panel's width when open.
func (m Model) panelWidth() int {
	w := m.width / 3
	if w < 32 {
		w = 32
	}
	if w > 60 {
		w = 60
	}
	return w
}

// transcriptWidth is the viewport's width, accounting for the open panel.
func (m Model) transcriptWidth() int {
	w := m.width
	if m.citationPanel.IsVisible() && m.theme.GetLayoutMode() == styles.LayoutWide {
		w -= m.panelWidth()
	}
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// KEY HANDLING
// =============================================================================

// handleKey dispatches keyboard input by priority: application keys
// first, then overlay dismissal, then navigation, then the input line.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.saveOnExit()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Cancel):
		if m.state != StateReady {
			return m.cancelStreaming()
		}
		m.saveOnExit()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.Dismiss):
		if m.errDisplay.IsVisible() {
			m.errDisplay.Hide()
			return m, nil
		}
		if m.artifact.IsVisible() {
			m.artifact.Hide()
			return m, nil
		}
		if m.citationPanel.IsVisible() {
			m.citationPanel.Hide()
			m.resizeTranscript()
			return m, nil
		}
		if m.state != StateReady {
			return m.cancelStreaming()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Sources):
		m.citationPanel.Toggle()
		m.resizeTranscript()
		return m, nil

	case key.Matches(msg, m.keyMap.Artifact):
		m.artifact.Toggle()
		if !m.artifact.HasContent() {
			m.statusMsg = "No diagram or story map in the last answer"
			return m, expireStatus()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.NewConv):
		return m.startNewConversation()

	case key.Matches(msg, m.keyMap.Copy):
		return m.copyLastAnswer()

	case key.Matches(msg, m.keyMap.Clear):
		return m.clearTranscript()

	case key.Matches(msg, m.keyMap.Followup):
		if m.artifact.IsVisible() {
			m.artifact.NextTab()
			return m, nil
		}
		return m.cycleFollowup()

	case key.Matches(msg, m.keyMap.Help):
		// "?" is help only on an empty input line; mid-sentence it is
		// just a character.
		if m.input.Value() == "" {
			m.conversation.AddSystemMessage(HelpText())
			m.updateViewport()
			m.viewport.GotoBottom()
			return m, nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case key.Matches(msg, m.keyMap.Submit):
		return m.handleSubmit()

	case key.Matches(msg, m.keyMap.Up):
		m.viewport.LineUp(1)
		return m, nil

	case key.Matches(msg, m.keyMap.Down):
		m.viewport.LineDown(1)
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keyMap.Home):
		m.viewport.GotoTop()
		return m, nil

	case key.Matches(msg, m.keyMap.End):
		m.viewport.GotoBottom()
		return m, nil
	}

	// Typing goes to the input line.
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// resizeTranscript re-applies the viewport width after a panel toggle.
func (m *Model) resizeTranscript() {
	m.viewport.Width = m.transcriptWidth()
	m.updateViewport()
}

// cycleFollowup fills the input with the next follow-up suggestion.
func (m Model) cycleFollowup() (Model, tea.Cmd) {
	if len(m.followups) == 0 {
		return m, nil
	}
	m.input.SetValue(m.followups[m.followupIndex%len(m.followups)])
	m.input.CursorEnd()
	m.followupIndex++
	return m, nil
}

// =============================================================================
// STREAM HANDLERS
// =============================================================================

// handleStreamStart marks the turn as in flight.
func (m Model) handleStreamStart(msg StreamStartMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	m.state = StateThinking
	m.thinkingStart = msg.StartTime
	m.statusBar.SetStatus(components.StatusThinking)
	return m, m.spin.Tick
}

// handleStreamMeta installs the turn's grounding corpus.
func (m Model) handleStreamMeta(msg StreamMetaMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	if asst := m.conversation.GetMessageByID(msg.MessageID); asst != nil {
		asst.Sources = msg.Sources
	}
	m.extractor.Reset(answer.NewCorpus(msg.Sources))
	if msg.SessionState != "" {
		m.conversation.SessionState = msg.SessionState
	}
	return m, nil
}

// handleRevealTick appends newly revealed text and re-parses citations
// over the visible prefix.
func (m Model) handleRevealTick(msg RevealTickMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}
	asst := m.conversation.GetMessageByID(msg.MessageID)
	if asst == nil || !asst.IsStreaming {
		return m, nil
	}

	current := asst.GetDisplayContent()
	if len(msg.Text) > len(current) {
		asst.AppendToken(msg.Text[len(current):])
	}

	if m.state == StateThinking && msg.Text != "" {
		m.state = StateStreaming
		m.statusBar.SetStatus(components.StatusStreaming)
	}

	asst.Parsed = m.extractor.Extract(msg.Text, msg.Done)

	if m.scheduler != nil {
		m.statusBar.SetBacklog(m.scheduler.Pending())
	}
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// handleStreamComplete finalizes the turn: stats onto the message,
// citations into the index, conversation onto disk.
func (m Model) handleStreamComplete(msg StreamCompleteMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	asst := m.conversation.GetMessageByID(msg.MessageID)
	m.conversation.FinalizeLast(msg.Stats)

	if msg.SessionState != "" {
		m.conversation.SessionState = msg.SessionState
	}
	m.followups = nil
	m.followupIndex = 0
	if m.cfg.Chat.SuggestFollowups {
		m.followups = msg.Followups
	}

	if asst != nil {
		asst.FollowupQuestions = msg.Followups
		if asst.Parsed == nil {
			asst.Reparse()
		}
		m.artifact.SetPayloads(asst.Parsed.Diagram, asst.Parsed.StoryMap)
		m.recordCitations(asst)
	}

	m.endTurn()
	m.autosave()

	m.updateViewport()
	m.viewport.GotoBottom()
	return m, textinput.Blink
}

// handleStreamError finalizes what arrived and raises the error overlay.
func (m Model) handleStreamError(msg StreamErrorMsg) (Model, tea.Cmd) {
	if msg.MessageID != m.streamingMsgID {
		return m, nil
	}

	asst := m.conversation.GetMessageByID(msg.MessageID)
	m.conversation.FinalizeLast(nil)
	if asst != nil && asst.Parsed == nil {
		asst.Reparse()
	}

	m.endTurn()
	m.statusBar.SetStatus(components.StatusError)
	m.errDisplay.ShowErr(msg.Err)

	m.updateViewport()
	return m, nil
}

// cancelStreaming aborts the in-flight turn, keeping only the text that
// was already revealed.
func (m Model) cancelStreaming() (Model, tea.Cmd) {
	m.cancelMgr.cancel()
	if m.scheduler != nil {
		m.scheduler.Cancel()
	}

	if asst := m.conversation.GetMessageByID(m.streamingMsgID); asst != nil {
		m.conversation.FinalizeLast(nil)
		if asst.Parsed == nil {
			asst.Reparse()
		}
	}
	m.conversation.AddSystemMessage("Answer cancelled.")

	m.endTurn()
	m.updateViewport()
	m.viewport.GotoBottom()
	return m, nil
}

// endTurn resets the per-turn streaming state.
func (m *Model) endTurn() {
	m.state = StateReady
	m.streamingMsgID = ""
	m.cancelMgr.cancel()
	m.scheduler = nil
	m.statusBar.SetBacklog(0)
	m.statusBar.SetStatus(components.StatusReady)
	m.statusBar.SetTokenUsage(m.conversation.EstimateTokens(), m.conversation.MaxTokens)
	m.input.Focus()
}

// recordCitations writes the answer's citations into the history index.
func (m *Model) recordCitations(asst *model.Message) {
	if m.idx == nil || asst.Parsed == nil || len(asst.Parsed.Citations) == 0 {
		return
	}
	cits := make([]answer.Citation, 0, len(asst.Parsed.Citations))
	for _, c := range asst.Parsed.Citations {
		cits = append(cits, *c)
	}
	if err := m.idx.RecordMessage(m.conversation.ID, asst.ID, m.conversation.BotID, cits); err != nil {
		m.statusMsg = "index: " + err.Error()
	}
}

// autosave persists the conversation if a store is wired.
func (m *Model) autosave() {
	if m.store == nil || m.conversation.IsEmpty() {
		return
	}
	if _, err := m.store.Save(m.conversation); err != nil {
		m.statusMsg = "autosave failed: " + err.Error()
	}
}

// saveOnExit is autosave for the quit paths.
func (m *Model) saveOnExit() {
	m.cancelMgr.cancel()
	if m.scheduler != nil {
		m.scheduler.Cancel()
	}
	m.autosave()
}

// =============================================================================
// CONVERSATION MANAGEMENT
// =============================================================================

// startNewConversation saves the current conversation and begins a new
// one with the active bot.
func (m Model) startNewConversation() (Model, tea.Cmd) {
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	m.autosave()
	m.conversation = model.NewConversationWithBot(m.activeBot.ID)
	m.followups = nil
	m.followupIndex = 0
	m.artifact.SetPayloads(nil, nil)
	m.citationPanel.Hide()
	m.resizeTranscript()
	m.statusBar.SetTokenUsage(0, m.conversation.MaxTokens)
	m.updateViewport()
	m.statusMsg = "New conversation with " + m.activeBot.Label
	return m, expireStatus()
}

// handleConversationLoaded swaps in a conversation from disk.
func (m Model) handleConversationLoaded(msg ConversationLoadedMsg) (Model, tea.Cmd) {
	if msg.Conversation == nil {
		return m, nil
	}
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	m.conversation = msg.Conversation

	// Reparse loaded answers so citations and payloads render again.
	for _, message := range m.conversation.GetHistory() {
		if message.Role == model.RoleAssistant && message.Parsed == nil {
			message.Reparse()
		}
	}
	if p, ok := bot.Get(m.conversation.BotID); ok {
		m.activeBot = p
		m.statusBar.SetBot(p.Label)
	}
	if last := m.conversation.GetLastAssistantMessage(); last != nil && last.Parsed != nil {
		m.artifact.SetPayloads(last.Parsed.Diagram, last.Parsed.StoryMap)
		m.followups = last.FollowupQuestions
	}
	m.statusBar.SetTokenUsage(m.conversation.EstimateTokens(), m.conversation.MaxTokens)
	m.updateViewport()
	m.viewport.GotoBottom()
	m.statusMsg = "Loaded: " + m.conversation.GetTitle()
	return m, expireStatus()
}

// handleFeedbackSent records the submitted reaction on the message.
func (m Model) handleFeedbackSent(msg FeedbackSentMsg) (Model, tea.Cmd) {
	if msg.Err != nil {
		m.statusMsg = "feedback failed: " + msg.Err.Error()
		return m, expireStatus()
	}
	if message := m.conversation.GetMessageByID(msg.MessageID); message != nil {
		message.Feedback = msg.Feedback
	}
	m.statusMsg = "Thanks for the feedback"
	m.updateViewport()
	return m, expireStatus()
}

// clearTranscript wipes the conversation history but keeps the session.
func (m Model) clearTranscript() (Model, tea.Cmd) {
	if m.state != StateReady {
		m.statusMsg = "Finish or cancel the current answer first"
		return m, expireStatus()
	}
	m.conversation.ClearHistory()
	m.followups = nil
	m.artifact.SetPayloads(nil, nil)
	m.updateViewport()
	m.statusMsg = "Transcript cleared"
	return m, expireStatus()
}

// copyLastAnswer puts the last answer's plain text on the clipboard.
func (m Model) copyLastAnswer() (Model, tea.Cmd) {
	last := m.conversation.GetLastAssistantMessage()
	if last == nil || last.IsEmpty() {
		m.statusMsg = "Nothing to copy yet"
		return m, expireStatus()
	}
	text := last.GetDisplayContent()
	if last.Parsed != nil {
		text = last.Parsed.PlainText()
	}
	return m, func() tea.Msg {
		return CopyDoneMsg{What: "Answer", Err: clipboard.WriteAll(text)}
	}
}
