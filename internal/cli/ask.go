// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command: `ava ask "question"`.
//
// Output adapts to where stdout points:
//   - terminal: collect the stream, render markdown via glamour, then
//     print the reference list underneath
//   - pipe/redirect: stream raw answer text as it arrives, byte-exact,
//     so scripts can consume it
//   - --json: single structured envelope with answer, citations,
//     sources and timing
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/rorymaher2092/ava-tui/internal/answer"
	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/config"
)

// MaxFileSize bounds -f/--file context so a stray binary or log dump
// does not blow out the request body.
const MaxFileSize = 50 * 1024

// askTimeout bounds the whole request including streaming. Generous
// because agentic bots can take a while on cold retrieval.
const askTimeout = 5 * time.Minute

var markdownRenderer *glamour.TermRenderer

func init() {
	// Best effort: when the renderer cannot be built the answer falls
	// back to plain text rather than failing the command.
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err == nil {
		markdownRenderer = r
	}
}

// renderMarkdown renders answer text for terminal display, falling back
// to the raw text when glamour is unavailable.
func renderMarkdown(text string) string {
	if markdownRenderer == nil {
		return text
	}
	out, err := markdownRenderer.Render(text)
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n") + "\n"
}

// HandleAsk handles the ask command (void wrapper for main).
func HandleAsk(args Args) {
	err := HandleAskCommand(args)
	if err != nil {
		if args.JSON {
			_ = NewJSONErrorResponse("ask", err).Print()
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}
	os.Exit(GetExitCode(err))
}

// HandleAskCommand sends one question and prints the answer.
func HandleAskCommand(args Args) error {
	question := strings.TrimSpace(args.Question)

	// `echo question | ava ask` reads the question from stdin.
	if question == "" && !IsTTY() {
		data, err := io.ReadAll(io.LimitReader(os.Stdin, MaxFileSize))
		if err != nil {
			return WrapError(err, "reading question from stdin")
		}
		question = strings.TrimSpace(string(data))
	}
	if question == "" {
		return ErrMissingArgument("question", `ava ask "how do I request a laptop?"`)
	}

	if args.File != "" {
		content, err := readFileForContext(args.File)
		if err != nil {
			return err
		}
		question = fmt.Sprintf("Context from %s:\n\n%s\n\n---\n\n%s",
			filepath.Base(args.File), content, question)
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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, askTimeout)
	defer cancel()

	req := &api.ChatRequest{
		Messages: []api.Message{api.NewUserMessage(question)},
		Context: api.RequestContext{
			Overrides: api.Overrides{
				BotID: profile.ID,
			},
		},
	}

	acc := api.NewStreamAccumulator()
	useMarkdown := IsStdoutTTY() && !args.JSON

	var callback api.StreamCallback
	if useMarkdown || args.JSON {
		// Collect everything, render once at the end.
		callback = acc.Callback()
	} else {
		// Piped: stream the raw answer as it arrives.
		callback = func(chunk api.ChatChunk) {
			acc.Add(chunk)
			if content := chunk.Content(); content != "" {
				fmt.Print(content)
			}
		}
	}

	streamErr := client.ChatStream(ctx, req, callback)
	if streamErr != nil {
		// A mid-stream failure still delivered a partial answer; show it
		// in collect modes so the user is not left with nothing.
		if useMarkdown {
			if partial := acc.GetContent(); partial != "" {
				fmt.Print(renderMarkdown(partial))
			}
		} else if !args.JSON {
			fmt.Println()
		}
		return streamErr
	}

	ext := answer.New(answer.NewCorpus(acc.Sources))
	res := ext.Extract(acc.GetContent(), true)

	switch {
	case args.JSON:
		printAskJSON(acc, res)
	case useMarkdown:
		fmt.Print(renderMarkdown(res.PlainText()))
		printAskFootnotes(res, args.Quiet)
	default:
		// Raw text already streamed; just terminate the line.
		fmt.Println()
	}

	if args.Verbose && !args.JSON {
		fmt.Fprintf(os.Stderr, "\n%s ttft=%s tokens=%d\n",
			DimStyle.Render("timing:"), acc.TTFT().Round(time.Millisecond), acc.TokenCount)
	}

	return nil
}

// resolveBot picks the bot profile for this invocation: --bot flag,
// then the configured default, then the catalog default.
func resolveBot(flag string, cfg *config.Config) (bot.Profile, error) {
	if flag != "" {
		p, ok := bot.Get(flag)
		if !ok {
			return bot.Profile{}, ErrNotFound("bot", flag)
		}
		return p, nil
	}
	if cfg != nil && cfg.DefaultBot != "" {
		if p, ok := bot.Get(cfg.DefaultBot); ok {
			return p, nil
		}
	}
	return bot.Default(), nil
}

// printAskFootnotes prints the reference list and gap notice under a
// terminal-rendered answer.
func printAskFootnotes(res *answer.Result, quiet bool) {
	if res.HasKnowledgeGap && !quiet {
		fmt.Println(WarningStyle.Render("! ") + "The knowledge base may not fully cover this question.")
	}
	if len(res.Citations) == 0 || quiet {
		return
	}
	fmt.Println()
	fmt.Println(TitleStyle.Render("References"))
	for _, c := range res.Citations {
		line := fmt.Sprintf("  [%d] %s", c.Ordinal, c.DisplayTitle)
		if c.Kind == answer.KindExternalLink && c.TargetURL != "" {
			line += "  " + DimStyle.Render(c.TargetURL)
		}
		fmt.Println(line)
	}
}

// printAskJSON emits the structured envelope for --json mode.
func printAskJSON(acc *api.StreamAccumulator, res *answer.Result) {
	citations := make([]map[string]interface{}, 0, len(res.Citations))
	for _, c := range res.Citations {
		entry := map[string]interface{}{
			"ordinal": c.Ordinal,
			"kind":    c.Kind.String(),
			"title":   c.DisplayTitle,
		}
		if c.TargetURL != "" {
			entry["url"] = c.TargetURL
		}
		citations = append(citations, entry)
	}

	data := map[string]interface{}{
		"answer":        res.PlainText(),
		"raw":           acc.GetContent(),
		"citations":     citations,
		"sources":       acc.Sources,
		"followups":     acc.Followups,
		"knowledge_gap": res.HasKnowledgeGap,
		"ttft_ms":       acc.TTFT().Milliseconds(),
		"tokens":        acc.TokenCount,
	}
	_ = NewJSONResponse("ask", data).Print()
}

// readFileForContext reads a file to include as question context,
// bounded by MaxFileSize.
func readFileForContext(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", WrapError(err, "reading context file")
	}
	if info.Size() > MaxFileSize {
		return "", &ValidationError{
			Field:  "file",
			Value:  path,
			Reason: fmt.Sprintf("file exceeds %dKB limit", MaxFileSize/1024),
		}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", WrapError(err, "reading context file")
	}
	return string(data), nil
}
