// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// history.go - Saved conversation management: `ava history <subcommand>`.
//
// Numbers shown by `list` are what the other subcommands accept, so
// `ava history show 1` opens the most recent conversation.
package cli

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/export"
	"github.com/rorymaher2092/ava-tui/internal/index"
	"github.com/rorymaher2092/ava-tui/internal/storage"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// HandleHistory dispatches the history subcommands.
func HandleHistory(args Args) error {
	cfg := config.Global()
	store, err := openStore(cfg)
	if err != nil {
		return err
	}

	switch args.Subcommand {
	case "list", "":
		return historyList(store, args)
	case "show":
		return historyShow(store, args)
	case "export":
		return historyExport(store, args)
	case "delete", "rm":
		return historyDelete(store, cfg, args)
	case "search":
		return historySearch(store, cfg, args)
	case "clear":
		return historyClear(store, cfg)
	default:
		return &ValidationError{
			Field:   "subcommand",
			Value:   args.Subcommand,
			Reason:  "unknown history subcommand",
			Example: "ava history [list|show|export|delete|search|clear]",
		}
	}
}

// openStore opens the conversation store, honoring the history toggle.
func openStore(cfg *config.Config) (*storage.Store, error) {
	if cfg != nil && !cfg.History.Enabled {
		return nil, &ValidationError{
			Field:  "history",
			Reason: "history is disabled; enable it with `ava config set history.enabled true`",
		}
	}
	var storeCfg storage.StoreConfig
	if cfg != nil {
		storeCfg.Dir = cfg.History.Dir
		storeCfg.MaxConversations = cfg.History.MaxConversations
	}
	store, err := storage.NewStore(storeCfg)
	if err != nil {
		return nil, WrapError(err, "opening conversation store")
	}
	return store, nil
}

func historyList(store *storage.Store, args Args) error {
	metas, err := store.List()
	if err != nil {
		return WrapError(err, "listing conversations")
	}
	if args.JSON {
		return NewJSONResponse("history", metas).Print()
	}
	fmt.Print(storage.FormatList(metas))
	return nil
}

func historyShow(store *storage.Store, args Args) error {
	n, err := historyNumber(args, "ava history show <number>")
	if err != nil {
		return err
	}
	conv, err := store.LoadByIndex(n - 1)
	if err != nil {
		return err
	}
	if args.JSON {
		return NewJSONResponse("history", conv).Print()
	}
	// Frontmatter and stats are for files; the terminal view stays lean.
	exporter := export.NewMarkdownExporter(&export.Options{IncludeTimestamps: true})
	data, err := exporter.Export(conv)
	if err != nil {
		return WrapError(err, "rendering conversation")
	}
	if IsStdoutTTY() {
		fmt.Print(renderMarkdown(string(data)))
	} else {
		fmt.Print(string(data))
	}
	return nil
}

func historyExport(store *storage.Store, args Args) error {
	n, err := historyNumber(args, "ava history export <number> [--format md|html|json]")
	if err != nil {
		return err
	}
	conv, err := store.LoadByIndex(n - 1)
	if err != nil {
		return err
	}

	exporter, err := export.For(args.Format, nil)
	if err != nil {
		return &ValidationError{
			Field:   "format",
			Value:   args.Format,
			Reason:  "unsupported export format",
			Example: "--format md | --format html | --format json",
		}
	}
	data, err := exporter.Export(conv)
	if err != nil {
		return WrapError(err, "exporting conversation")
	}
	if _, err := os.Stdout.Write(data); err != nil {
		return WrapError(err, "writing export")
	}
	if len(data) > 0 && data[len(data)-1] != '\n' {
		fmt.Println()
	}
	return nil
}

func historyDelete(store *storage.Store, cfg *config.Config, args Args) error {
	n, err := historyNumber(args, "ava history delete <number>")
	if err != nil {
		return err
	}
	metas, err := store.List()
	if err != nil {
		return WrapError(err, "listing conversations")
	}
	if n < 1 || n > len(metas) {
		return ErrNotFound("conversation", strconv.Itoa(n))
	}
	meta := metas[n-1]

	if err := store.Delete(meta.ID); err != nil {
		return WrapError(err, "deleting conversation")
	}
	scrubIndex(cfg, meta.ID)

	if args.JSON {
		return NewJSONResponse("history", map[string]interface{}{"deleted": meta.ID}).Print()
	}
	fmt.Printf("%s Deleted %q\n", RenderStatus(true, false), meta.Title)
	return nil
}

func historySearch(store *storage.Store, cfg *config.Config, args Args) error {
	if len(args.Raw) == 0 {
		return ErrMissingArgument("query", "ava history search <query>")
	}
	query := strings.Join(args.Raw, " ")
	metas, err := store.SearchMessages(query)
	if err != nil {
		return WrapError(err, "searching conversations")
	}
	hits := searchCitations(store, cfg, query)

	if args.JSON {
		payload := map[string]interface{}{"conversations": metas}
		if len(hits) > 0 {
			payload["citations"] = hits
		}
		return NewJSONResponse("history", payload).Print()
	}
	if len(metas) == 0 && len(hits) == 0 {
		fmt.Printf("No conversations match %q.\n", query)
		return nil
	}
	if len(metas) > 0 {
		fmt.Print(storage.FormatList(metas))
		if len(hits) > 0 {
			fmt.Println()
		}
	}
	if len(hits) > 0 {
		fmt.Println("Cited in:")
		fmt.Print(formatCitationHits(hits))
	}
	return nil
}

// citationHit is one matched document, grouped per conversation.
type citationHit struct {
	Number       int    `json:"number,omitempty"`
	Conversation string `json:"conversation"`
	Document     string `json:"document"`
	URL          string `json:"url,omitempty"`
	Count        int    `json:"count"`
}

// searchCitations consults the citation index so a search for a document
// name also surfaces the chats that cited it. Best-effort: index trouble
// degrades to text-only results.
func searchCitations(store *storage.Store, cfg *config.Config, query string) []citationHit {
	if cfg == nil || !cfg.History.IndexEnabled {
		return nil
	}
	idx, err := index.New(index.Config{})
	if err != nil {
		return nil
	}
	defer idx.Close()

	records, err := idx.Search(query, 200)
	if err != nil || len(records) == 0 {
		return nil
	}

	numbers := make(map[string]int)
	titles := make(map[string]string)
	if metas, err := store.List(); err == nil {
		for i, meta := range metas {
			numbers[meta.ID] = i + 1
			titles[meta.ID] = meta.Title
		}
	}
	return groupCitations(records, numbers, titles)
}

// groupCitations collapses raw index records into one row per
// conversation/document pair, in first-seen order.
func groupCitations(records []index.Record, numbers map[string]int, titles map[string]string) []citationHit {
	type pair struct{ conv, token string }
	grouped := make(map[pair]int)
	var hits []citationHit

	for _, rec := range records {
		k := pair{rec.ConversationID, rec.Token}
		if at, ok := grouped[k]; ok {
			hits[at].Count++
			continue
		}
		title := titles[rec.ConversationID]
		if title == "" {
			title = rec.ConversationID
		}
		doc := rec.Title
		if doc == "" {
			doc = rec.Token
		}
		grouped[k] = len(hits)
		hits = append(hits, citationHit{
			Number:       numbers[rec.ConversationID],
			Conversation: title,
			Document:     doc,
			URL:          rec.URL,
			Count:        1,
		})
	}
	return hits
}

// formatCitationHits renders grouped hits in the same table style as
// FormatList, numbered to match `ava history list`.
func formatCitationHits(hits []citationHit) string {
	var sb strings.Builder
	sb.WriteString(util.PadWidth("#", 4))
	sb.WriteString(util.PadWidth("CITED", 7))
	sb.WriteString(util.PadWidth("DOCUMENT", 38))
	sb.WriteString("CONVERSATION\n")

	for _, h := range hits {
		num := "-"
		if h.Number > 0 {
			num = util.IntToString(h.Number)
		}
		sb.WriteString(util.PadWidth(num, 4))
		sb.WriteString(util.PadWidth(util.IntToString(h.Count)+"x", 7))
		sb.WriteString(util.PadWidth(util.TruncateWidth(h.Document, 36), 38))
		sb.WriteString(util.TruncateWidth(h.Conversation, 30))
		sb.WriteString("\n")
	}
	return sb.String()
}

func historyClear(store *storage.Store, cfg *config.Config) error {
	metas, err := store.List()
	if err != nil {
		return WrapError(err, "listing conversations")
	}
	if len(metas) == 0 {
		fmt.Println("No conversations to delete.")
		return nil
	}

	if !IsTTY() {
		return &ValidationError{
			Field:  "clear",
			Reason: "refusing to clear history without an interactive confirmation",
		}
	}
	fmt.Printf("Delete all %d conversations? This cannot be undone. [y/N] ", len(metas))
	scanner := bufio.NewScanner(os.Stdin)
	if !scanner.Scan() || !strings.EqualFold(strings.TrimSpace(scanner.Text()), "y") {
		fmt.Println("Aborted.")
		return nil
	}

	if err := store.Clear(); err != nil {
		return WrapError(err, "clearing conversations")
	}
	if cfg != nil && cfg.History.IndexEnabled {
		if idx, err := index.New(index.Config{}); err == nil {
			_ = idx.Clear()
			idx.Close()
		}
	}
	fmt.Printf("%s Deleted %d conversations.\n", RenderStatus(true, false), len(metas))
	return nil
}

// historyNumber parses the 1-based conversation number argument.
func historyNumber(args Args, usage string) (int, error) {
	if len(args.Raw) == 0 {
		return 0, ErrMissingArgument("number", usage)
	}
	n, err := strconv.Atoi(args.Raw[0])
	if err != nil || n < 1 {
		return 0, &ValidationError{
			Field:   "number",
			Value:   args.Raw[0],
			Reason:  "expected a conversation number from `ava history list`",
			Example: usage,
		}
	}
	return n, nil
}

// scrubIndex removes a deleted conversation's citation records.
func scrubIndex(cfg *config.Config, conversationID string) {
	if cfg == nil || !cfg.History.IndexEnabled {
		return
	}
	if idx, err := index.New(index.Config{}); err == nil {
		_ = idx.DeleteConversation(conversationID)
		idx.Close()
	}
}
