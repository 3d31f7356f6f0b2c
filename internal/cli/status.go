// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// status.go - Health and configuration overview: `ava status`.
//
// One screen answering "why doesn't it work": backend reachability,
// login state, config location and history/index state.
package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/config"
	"github.com/rorymaher2092/ava-tui/internal/index"
)

// statusCheckTimeout bounds the reachability probe.
const statusCheckTimeout = 5 * time.Second

// HandleStatus prints the client health overview.
func HandleStatus(args Args) error {
	cfg := config.Global()
	session := RestoreSession(cfg)
	client := NewBackendClient(cfg, session)

	// Backend reachability
	backendOK := false
	backendDetail := "not configured (set AVA_BACKEND_URL or backend.base_url)"
	if client.IsConfigured() {
		ctx, cancel := context.WithTimeout(context.Background(), statusCheckTimeout)
		err := client.CheckReachable(ctx)
		cancel()
		if err == nil {
			backendOK = true
			backendDetail = client.BaseURL()
		} else if errors.Is(err, context.DeadlineExceeded) {
			backendDetail = fmt.Sprintf("%s (timed out after %s)", client.BaseURL(), statusCheckTimeout)
		} else {
			backendDetail = fmt.Sprintf("%s (%v)", client.BaseURL(), err)
		}
	}

	// Auth
	tokenStatus := session.Status()
	authOK := tokenStatus.Present && !tokenStatus.Expired
	authWarn := tokenStatus.Present && (tokenStatus.Expired || tokenStatus.ExpiringSoon)
	authDetail := "not logged in (run `ava login`)"
	if tokenStatus.Present {
		who := tokenStatus.Email
		if who == "" {
			who = "opaque token"
		}
		switch {
		case tokenStatus.Expired:
			authDetail = fmt.Sprintf("%s — token expired %s", who, tokenStatus.ExpiresAt.Local().Format("15:04 Jan 2"))
		case tokenStatus.ExpiringSoon:
			authDetail = fmt.Sprintf("%s — token expires in %s", who, tokenStatus.TimeRemaining().Round(time.Minute))
		case tokenStatus.ExpiresAt.IsZero():
			authDetail = who
		default:
			authDetail = fmt.Sprintf("%s — token valid for %s", who, tokenStatus.TimeRemaining().Round(time.Minute))
		}
	}

	// Config file
	configPath, _ := config.ConfigPathTOML()

	// History
	historyDetail := "disabled"
	conversationCount := -1
	if cfg != nil && cfg.History.Enabled {
		if store, err := openStore(cfg); err == nil {
			if metas, err := store.List(); err == nil {
				conversationCount = len(metas)
				historyDetail = fmt.Sprintf("%d conversations in %s", conversationCount, store.BaseDir)
			} else {
				historyDetail = "error: " + err.Error()
			}
		} else {
			historyDetail = "error: " + err.Error()
		}
	}

	// Citation index
	indexDetail := "disabled"
	var indexStats *index.Stats
	if cfg != nil && cfg.History.Enabled && cfg.History.IndexEnabled {
		if idx, err := index.New(index.Config{}); err == nil {
			s := idx.Stats()
			indexStats = &s
			indexDetail = fmt.Sprintf("%d citations, %s", s.CitationCount, formatBytes(s.DatabaseSize))
			idx.Close()
		} else {
			indexDetail = "error: " + err.Error()
		}
	}

	if args.JSON {
		data := map[string]interface{}{
			"version":           Version,
			"backend_url":       client.BaseURL(),
			"backend_reachable": backendOK,
			"logged_in":         authOK,
			"email":             tokenStatus.Email,
			"config_path":       configPath,
			"history_enabled":   cfg != nil && cfg.History.Enabled,
		}
		if tokenStatus.Present && !tokenStatus.ExpiresAt.IsZero() {
			data["token_expires_at"] = tokenStatus.ExpiresAt.UTC().Format(time.RFC3339)
		}
		if conversationCount >= 0 {
			data["conversations"] = conversationCount
		}
		if indexStats != nil {
			data["index_citations"] = indexStats.CitationCount
			data["index_bytes"] = indexStats.DatabaseSize
		}
		return NewJSONResponse("status", data).Print()
	}

	fmt.Println(TitleStyle.Render("Ava status") + DimStyle.Render("  v"+Version))
	fmt.Println()
	printStatusLine(backendOK, !client.IsConfigured(), "Backend", backendDetail)
	printStatusLine(authOK, authWarn || !tokenStatus.Present, "Auth", authDetail)
	printStatusLine(true, false, "Config", configPath)
	printStatusLine(cfg != nil && cfg.History.Enabled, false, "History", historyDetail)
	printStatusLine(indexStats != nil, false, "Index", indexDetail)

	if !backendOK && client.IsConfigured() {
		fmt.Println()
		fmt.Println(DimStyle.Render("The backend may be down, or you may need the VPN."))
	}
	return nil
}

// printStatusLine prints one aligned status row.
func printStatusLine(ok, warn bool, label, detail string) {
	fmt.Printf("  %s %s %s\n", RenderStatus(ok, warn), LabelStyle.Render(fmt.Sprintf("%-8s", label)), detail)
}

// formatBytes renders a byte count in human units.
func formatBytes(n int64) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}
