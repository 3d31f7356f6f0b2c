// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Command ava is the Vocus terminal client for the Ava assistant.
// It runs a full-screen chat TUI by default and a small set of
// one-shot subcommands (ask, login, history, ...) for scripting.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/cli"
	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/index"
	"github.com/rorymaher2092/ava-tui/internal/storage"
	"github.com/rorymaher2092/ava-tui/internal/ui/chat"
	"github.com/rorymaher2092/ava-tui/internal/ui/components"
	"github.com/rorymaher2092/ava-tui/internal/ui/styles"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================

// Version information (set via -ldflags at build time)
var (
	Version   = "0.3.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	// Sync version info with cli package
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	// Parse CLI arguments
	cmd, args := cli.Parse()

	// Route the standard logger before anything can log. Stderr is not
	// an option once Bubble Tea owns the terminal.
	closeLog := setupDebugLog(config.Global())
	defer closeLog()

	// Route to appropriate handler. Ask and chat manage their own exit
	// codes (JSON error envelopes); the rest share exitOnError.
	switch cmd {
	case cli.CmdTUI:
		runTUI(args)
	case cli.CmdAsk:
		cli.HandleAsk(args)
	case cli.CmdChat:
		cli.HandleChat(args)
	case cli.CmdLogin:
		exitOnError(cli.HandleLogin(args))
	case cli.CmdLogout:
		exitOnError(cli.HandleLogout(args))
	case cli.CmdLock:
		exitOnError(cli.HandleLock(args))
	case cli.CmdBots:
		exitOnError(cli.HandleBots(args))
	case cli.CmdHistory:
		exitOnError(cli.HandleHistory(args))
	case cli.CmdStatus:
		exitOnError(cli.HandleStatus(args))
	case cli.CmdConfig:
		exitOnError(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.HandleVersion(args)
	case cli.CmdHelp:
		cli.HandleHelp()
	default:
		runTUI(args) // Default to TUI
	}
}

// exitOnError prints a command failure and exits with its mapped code.
func exitOnError(err error) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cli.GetExitCode(err))
	}
}

// setupDebugLog sends the standard logger to the configured debug file,
// or discards it when debugging is off. Returns the file closer.
func setupDebugLog(cfg *config.Config) func() {
	if cfg == nil || !cfg.Debug.Enabled {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(cfg.DebugLogPath(), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: debug log unavailable: %v\n", err)
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Printf("START | ava v%s commit=%s", Version, GitCommit)
	return func() { f.Close() }
}

// runTUI starts the full-screen interface.
func runTUI(args cli.Args) {
	// Load configuration at startup
	cfg := config.Global()

	// Initialize the theme
	theme := styles.NewThemeWithMode(cfg.UI.Theme)

	// Restore any saved login before the first request goes out
	session := cli.RestoreSession(cfg)

	// Create the backend client with config values
	client := cli.NewBackendClient(cfg, session)

	// Create the application model with config
	m := NewModelWithConfig(theme, client, session, cfg)

	// Close the citation index cleanly when the TUI exits
	defer func() {
		if m.idx != nil {
			m.idx.Close()
		}
	}()

	// Apply CLI args to model (CLI args override config)
	if args.Bot != "" {
		if p, ok := bot.Get(args.Bot); ok {
			m.chatModel.SetBot(p)
			m.welcome.SetBot(p.Label)
			m.welcome.SetPrompts(p.SuggestedPrompts)
		} else {
			fmt.Fprintf(os.Stderr, "Warning: unknown bot %q, using %s\n", args.Bot, bot.DefaultBotID)
		}
	}

	// --continue resumes the most recent conversation and skips the
	// welcome screen
	if args.Continue {
		if m.store == nil {
			fmt.Fprintln(os.Stderr, "Warning: history is disabled, starting fresh")
		} else if conv, err := m.store.LoadLatest(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not resume: %v\n", err)
		} else {
			m.state = StateChat
			m.resume = func() tea.Msg { return chat.ConversationLoadedMsg{Conversation: conv} }
		}
	}

	// Create the Bubble Tea program
	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),       // Use alternate screen buffer
		tea.WithMouseCellMotion(), // Enable mouse support
		tea.WithReportFocus(),     // Terminal focus events pause the reveal
	)

	// Store program reference for async streaming
	chat.SetProgram(p)

	// Hot-reload config edits while the TUI runs. Best effort: theme and
	// chat tuning apply immediately, backend changes need a restart.
	if path, err := config.ConfigPathTOML(); err == nil {
		w, err := config.NewWatcher(path, func(next *config.Config) {
			p.Send(configReloadedMsg{cfg: next})
		})
		if err == nil {
			err = w.Watch()
		}
		if err != nil {
			log.Printf("WATCH: config hot-reload unavailable | err=%v", err)
		} else {
			defer w.Close()
		}
	}

	// Run the program
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running ava: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// State represents the current application state.
type State int

const (
	StateWelcome State = iota // Welcome screen
	StateChat                 // Chat view
)

// Model is the main Bubble Tea model for the application.
type Model struct {
	// State
	state State

	// Theme and styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Chat model (embedded for chat functionality)
	chatModel chat.Model

	// Welcome component
	welcome components.Welcome

	// Backend client
	client *api.Client

	// Session credentials (memory only)
	session *auth.SessionStore

	// Conversation persistence
	store *storage.Store

	// Citation index
	idx *index.Index

	// Application configuration
	config *config.Config

	// Deferred command from --continue, fired on Init
	resume tea.Cmd
}

// NewModel creates a new application model (uses default config).
func NewModel(theme *styles.Theme, client *api.Client, session *auth.SessionStore) *Model {
	return NewModelWithConfig(theme, client, session, config.Global())
}

// NewModelWithConfig creates a new application model with explicit configuration.
func NewModelWithConfig(theme *styles.Theme, client *api.Client, session *auth.SessionStore, cfg *config.Config) *Model {
	// Initialize conversation storage (creates ~/.ava/conversations)
	var store *storage.Store
	if cfg.History.Enabled {
		s, err := storage.NewStore(storage.StoreConfig{
			Dir:              cfg.History.Dir,
			MaxConversations: cfg.History.MaxConversations,
		})
		if err != nil {
			// History won't persist but the app still works
			fmt.Fprintf(os.Stderr, "Warning: could not initialize history: %v\n", err)
		} else {
			store = s
		}
	}

	// Initialize the citation index
	var idx *index.Index
	if cfg.History.IndexEnabled {
		i, err := index.New(index.Config{})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not open citation index: %v\n", err)
		} else {
			idx = i
		}
	}

	// The configured default bot wins over the built-in default; an
	// unknown ID falls back silently
	startBot := bot.Default()
	if p, ok := bot.Get(cfg.DefaultBot); ok {
		startBot = p
	}

	chatModel := chat.New(chat.Options{
		Theme:   theme,
		Config:  cfg,
		Client:  client,
		Store:   store,
		Index:   idx,
		Session: session,
		Bot:     startBot,
	})

	host := hostOf(cfg.Backend.BaseURL)
	chatModel.SetBackendHost(host)

	profile := chatModel.ActiveBot()
	welcome := components.NewWelcome(theme)
	welcome.SetVersion(Version)
	welcome.SetBot(profile.Label)
	welcome.SetBackend(host)
	welcome.SetPrompts(profile.SuggestedPrompts)

	return &Model{
		state:     StateWelcome,
		theme:     theme,
		chatModel: chatModel,
		welcome:   welcome,
		client:    client,
		session:   session,
		store:     store,
		idx:       idx,
		config:    cfg,
	}
}

// hostOf extracts the display host from a backend base URL.
func hostOf(base string) string {
	if base == "" {
		return ""
	}
	if u, err := url.Parse(base); err == nil && u.Host != "" {
		return u.Host
	}
	return base
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init initializes the model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.welcome.Init(),
		m.chatModel.Init(),
		m.fetchBackendConfig(),
		m.fetchGreeting(),
	}
	if m.resume != nil {
		cmds = append(cmds, m.resume)
	}
	return tea.Batch(cmds...)
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.welcome.SetSize(msg.Width, msg.Height)
		// The chat model tracks its size even while the welcome
		// screen is showing, so the transition needs no relayout.
		var cmd tea.Cmd
		m.chatModel, cmd = m.chatModel.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	// Terminal focus reporting drives the reveal scheduler: a
	// backgrounded terminal buffers tokens without burning frames.
	case tea.FocusMsg:
		return m.forwardToChat(chat.VisibilityMsg{Visible: true})
	case tea.BlurMsg:
		return m.forwardToChat(chat.VisibilityMsg{Visible: false})
	case tea.ResumeMsg:
		return m.forwardToChat(chat.VisibilityMsg{Visible: true})

	case backendConfigMsg:
		return m.handleBackendConfig(msg)

	case greetingMsg:
		if msg.err == nil && msg.greeting != "" {
			m.welcome.SetGreeting(msg.greeting)
		}
		return m, nil

	case configReloadedMsg:
		return m.applyConfigReload(msg)
	}

	// Forward everything else (stream ticks, spinner frames, command
	// results) to the chat model once it is active
	if m.state == StateChat {
		var cmd tea.Cmd
		m.chatModel, cmd = m.chatModel.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyPress processes keyboard input.
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle welcome state
	if m.state == StateWelcome {
		switch msg.String() {
		case "ctrl+c", "ctrl+q", "q":
			return m, tea.Quit
		default:
			// Any other key transitions to chat
			m.state = StateChat
			return m, nil
		}
	}

	// In chat state
	switch msg.String() {
	case "ctrl+z":
		// Suspend to the shell; the reveal pauses until resume
		var cmd tea.Cmd
		m.chatModel, cmd = m.chatModel.Update(chat.VisibilityMsg{Visible: false})
		return m, tea.Batch(cmd, tea.Suspend)
	}

	// Forward to chat model
	var cmd tea.Cmd
	m.chatModel, cmd = m.chatModel.Update(msg)
	return m, cmd
}

// View renders the current state.
func (m *Model) View() string {
	switch m.state {
	case StateWelcome:
		return m.welcome.View()
	default:
		return m.chatModel.View()
	}
}

// forwardToChat delivers a message to the chat model regardless of the
// visible screen. Visibility changes matter even on the welcome screen
// because a stream resumed via --continue may already be running.
func (m *Model) forwardToChat(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	m.chatModel, cmd = m.chatModel.Update(msg)
	return m, cmd
}

// applyConfigReload folds an edited config file into the running UI.
// The model, the chat screen and every component share one *Config and
// one *Theme, so updating them in place (on the Update goroutine, where
// all reads happen) propagates everywhere. Reveal pacing and follow-up
// settings apply from the next turn; a theme change repaints on the
// next frame. Backend and credential settings are read at startup only.
func (m *Model) applyConfigReload(msg configReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.cfg == nil || m.config == nil {
		return m, nil
	}
	themeChanged := m.config.UI.Theme != msg.cfg.UI.Theme
	*m.config = *msg.cfg
	if themeChanged && m.theme != nil {
		*m.theme = *styles.NewThemeWithMode(m.config.UI.Theme)
	}
	log.Printf("CONFIG: reload applied | theme_changed=%v", themeChanged)
	return m, nil
}

// =============================================================================
// STARTUP COMMANDS
// =============================================================================

// backendConfigMsg carries the backend's advertised bots and flags.
type backendConfigMsg struct {
	cfg *api.BackendConfig
	err error
}

// greetingMsg carries the personalized welcome line.
type greetingMsg struct {
	greeting string
	err      error
}

// configReloadedMsg carries a freshly validated config after the user
// edited ~/.ava/config.toml while the TUI was running.
type configReloadedMsg struct {
	cfg *config.Config
}

const startupFetchTimeout = 10 * time.Second

// fetchBackendConfig asks the backend which bots it advertises. The
// result refreshes the built-in catalog; failure is not fatal because
// the first question surfaces connection problems on its own.
func (m *Model) fetchBackendConfig() tea.Cmd {
	client := m.client
	if client == nil || !client.IsConfigured() {
		return nil
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupFetchTimeout)
		defer cancel()
		cfg, err := client.FetchConfig(ctx)
		return backendConfigMsg{cfg: cfg, err: err}
	}
}

// fetchGreeting retrieves the personalized welcome message.
func (m *Model) fetchGreeting() tea.Cmd {
	client := m.client
	if client == nil || !client.IsConfigured() {
		return nil
	}
	var details map[string]string
	if st := m.session.Status(); st.Email != "" {
		details = map[string]string{"email": st.Email}
	}
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), startupFetchTimeout)
		defer cancel()
		greeting, err := client.FetchWelcome(ctx, details)
		return greetingMsg{greeting: greeting, err: err}
	}
}

// handleBackendConfig merges remote bot profiles into the catalog and
// refreshes the welcome screen with the merged result.
func (m *Model) handleBackendConfig(msg backendConfigMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil || msg.cfg == nil {
		return m, nil
	}

	profiles := make([]bot.Profile, 0, len(msg.cfg.Bots))
	for _, rb := range msg.cfg.Bots {
		profiles = append(profiles, bot.Profile{
			ID:                  rb.ID,
			Label:               rb.Label,
			Description:         rb.Description,
			Model:               rb.Model,
			SuggestedPrompts:    rb.Examples,
			UseConfluenceSearch: rb.UseConfluenceSearch,
			AllowedEmails:       rb.AllowedEmails,
		})
	}
	bot.Merge(profiles)

	// The active bot may have been re-advertised with a new label or
	// fresh example prompts
	if p, ok := bot.Get(m.chatModel.ActiveBot().ID); ok {
		m.chatModel.SetBot(p)
		m.welcome.SetBot(p.Label)
		m.welcome.SetPrompts(p.SuggestedPrompts)
	}
	return m, nil
}
