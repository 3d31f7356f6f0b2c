// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Line-mode interactive chat: `ava chat`.
//
// A readline REPL for terminals where the full TUI is unwanted (ssh
// sessions, screen readers, minimal terminals). Answers stream live
// through the citation extractor, so sentinel payloads and raw link
// tokens never reach the screen; printing the growing plain-text
// prefix is safe because extraction never renumbers or rewrites text
// it has already produced.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/peterh/liner"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/auth"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// chatHistoryFile is the readline history file name under the config dir.
const chatHistoryFile = "chat_history"

// ChatCLI wraps the liner REPL state for one chat session.
type ChatCLI struct {
	line        *liner.State
	historyFile string

	client  *api.Client
	cfg     *config.Config
	session *auth.SessionStore
	profile bot.Profile

	// messages is the conversation so far, raw assistant text included,
	// replayed to the backend each turn.
	messages     []api.Message
	sessionState string

	lastResult  *answer.Result
	lastSources []string
}

// HandleChat handles the chat command (void wrapper for main).
func HandleChat(args Args) {
	err := HandleChatCommand(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(GetExitCode(err))
}

// HandleChatCommand runs the line-mode chat REPL.
func HandleChatCommand(args Args) error {
	if err := RequiresTTY("chat"); err != nil {
		return err
	}

	cfg := config.Global()
	session := RestoreSession(cfg)
	client := NewBackendClient(cfg, session)
	if !client.IsConfigured() {
		return api.ErrNotConfigured
	}

	profile, err := resolveBot(args.Bot, cfg)
	if err != nil {
		return err
	}

	c := NewChatCLI(client, cfg, session, profile)
	defer c.Close()

	fmt.Println(TitleStyle.Render("Ava") + DimStyle.Render(" — "+profile.Label))
	fmt.Println(DimStyle.Render("Type /help for commands, /quit or ctrl-d to exit."))
	fmt.Println()

	return c.repl()
}

// NewChatCLI creates the REPL wrapper and loads readline history.
func NewChatCLI(client *api.Client, cfg *config.Config, session *auth.SessionStore, profile bot.Profile) *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	c := &ChatCLI{
		line:    line,
		client:  client,
		cfg:     cfg,
		session: session,
		profile: profile,
	}

	if dir, err := config.ConfigDir(); err == nil {
		c.historyFile = filepath.Join(dir, chatHistoryFile)
		if f, err := os.Open(c.historyFile); err == nil {
			_, _ = line.ReadHistory(f)
			f.Close()
		}
	}

	return c
}

// Close persists readline history and releases the terminal.
func (c *ChatCLI) Close() {
	if c.historyFile != "" {
		if err := os.MkdirAll(filepath.Dir(c.historyFile), 0o700); err == nil {
			if f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600); err == nil {
				_, _ = c.line.WriteHistory(f)
				f.Close()
			}
		}
	}
	c.line.Close()
}

func (c *ChatCLI) prompt() string {
	return c.profile.ID + "> "
}

// repl runs the read-eval-print loop until the user exits.
func (c *ChatCLI) repl() error {
	for {
		input, err := c.line.Prompt(c.prompt())
		if errors.Is(err, liner.ErrPromptAborted) {
			// Ctrl+C at the prompt clears the line, not the session.
			fmt.Println(DimStyle.Render("(use /quit or ctrl-d to exit)"))
			continue
		}
		if err != nil {
			// Ctrl+D or a closed terminal.
			fmt.Println()
			return nil
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		c.line.AppendHistory(input)

		if strings.HasPrefix(input, "/") {
			quit := c.handleCommand(input)
			if quit {
				return nil
			}
			continue
		}

		if err := c.processTurn(input); err != nil {
			fmt.Println(ErrorStyle.Render("error: ") + err.Error())
		}
	}
}

// handleCommand dispatches a slash command. Returns true to exit.
func (c *ChatCLI) handleCommand(input string) bool {
	fields := strings.Fields(input)
	cmd := strings.ToLower(fields[0])

	switch cmd {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		c.printHelp()

	case "/bots":
		c.printBots()

	case "/bot":
		if len(fields) < 2 {
			fmt.Println(DimStyle.Render("usage: /bot <id>  (see /bots)"))
			break
		}
		c.switchBot(fields[1])

	case "/sources":
		c.printSources()

	case "/new":
		c.messages = nil
		c.sessionState = ""
		c.lastResult = nil
		c.lastSources = nil
		fmt.Println(DimStyle.Render("Started a new conversation."))

	default:
		fmt.Println(DimStyle.Render("Unknown command " + cmd + "; /help lists commands."))
	}
	return false
}

func (c *ChatCLI) printHelp() {
	fmt.Println(TitleStyle.Render("Commands"))
	fmt.Println("  /bots         list available bots")
	fmt.Println("  /bot <id>     switch bot (starts a new conversation)")
	fmt.Println("  /sources      show the documents grounding the last answer")
	fmt.Println("  /new          start a new conversation")
	fmt.Println("  /quit         exit")
}

func (c *ChatCLI) printBots() {
	email := c.session.Status().Email
	for _, p := range bot.List() {
		marker := "  "
		if p.ID == c.profile.ID {
			marker = AccentStyle.Render("* ")
		}
		line := fmt.Sprintf("%s%s — %s", marker, p.ID, p.Description)
		if !p.AllowedFor(email) {
			line += DimStyle.Render("  (restricted)")
		}
		fmt.Println(line)
	}
}

func (c *ChatCLI) switchBot(id string) {
	p, ok := bot.Get(id)
	if !ok {
		fmt.Println(ErrorStyle.Render("error: ") + "unknown bot: " + id)
		return
	}
	if p.ID == c.profile.ID {
		fmt.Println(DimStyle.Render("Already chatting with " + p.Label + "."))
		return
	}
	c.profile = p
	c.messages = nil
	c.sessionState = ""
	c.lastResult = nil
	c.lastSources = nil
	fmt.Println(DimStyle.Render("Switched to " + p.Label + " (new conversation)."))
}

func (c *ChatCLI) printSources() {
	if len(c.lastSources) == 0 {
		fmt.Println(DimStyle.Render("No sources yet; ask something first."))
		return
	}
	width := GetTerminalWidth()
	fmt.Println(TitleStyle.Render("Sources"))
	for i, src := range c.lastSources {
		// Entries are "sourcefile: content"; one truncated line each.
		line := strings.SplitN(src, "\n", 2)[0]
		fmt.Printf("  %d. %s\n", i+1, util.TruncateWidth(line, width-6))
	}
}

// processTurn sends one question and streams the answer to the terminal.
func (c *ChatCLI) processTurn(text string) error {
	c.messages = append(c.messages, api.NewUserMessage(text))

	req := &api.ChatRequest{
		Messages: c.messages,
		Context: api.RequestContext{
			Overrides: api.Overrides{
				BotID:                    c.profile.ID,
				SuggestFollowupQuestions: c.cfg.Chat.SuggestFollowups,
			},
		},
		SessionState: c.sessionState,
	}

	// Ctrl+C mid-answer cancels this turn only.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	acc := api.NewStreamAccumulator()
	ext := answer.New(answer.NewCorpus(nil))
	printed := 0

	flush := func(complete bool) *answer.Result {
		res := ext.Extract(acc.GetContent(), complete)
		plain := res.PlainText()
		if len(plain) > printed {
			fmt.Print(plain[printed:])
			printed = len(plain)
		}
		return res
	}

	callback := func(chunk api.ChatChunk) {
		acc.Add(chunk)
		if chunk.IsOpening() {
			ext.Reset(answer.NewCorpus(chunk.Sources()))
		}
		flush(false)
	}

	streamErr := c.client.ChatStream(ctx, req, callback)
	res := flush(true)
	fmt.Println()

	if streamErr != nil {
		// The failed turn is dropped from history either way.
		c.messages = c.messages[:len(c.messages)-1]
		if errors.Is(streamErr, context.Canceled) {
			fmt.Println(DimStyle.Render("(cancelled)"))
			return nil
		}
		return streamErr
	}

	c.messages = append(c.messages, api.NewAssistantMessage(acc.GetContent()))
	c.sessionState = acc.SessionState
	c.lastResult = res
	c.lastSources = acc.Sources

	printAskFootnotes(res, false)

	if c.cfg.Chat.SuggestFollowups && len(acc.Followups) > 0 {
		fmt.Println()
		for _, f := range acc.Followups {
			fmt.Println(DimStyle.Render("try: " + f))
		}
	}

	if c.cfg.UI.ShowStats {
		fmt.Println(DimStyle.Render(fmt.Sprintf("ttft=%s tokens=%d",
			acc.TTFT().Round(time.Millisecond), acc.TokenCount)))
	}
	fmt.Println()

	return nil
}
