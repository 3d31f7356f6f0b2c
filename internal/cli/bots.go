// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// bots.go - Bot catalog listing: `ava bots`.
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/api"
	"github.com/rorymaher2092/ava-tui/internal/bot"
	"github.com/rorymaher2092/ava-tui/internal/config"
)

// botsFetchTimeout bounds the backend config fetch; listing works
// offline from the built-in catalog when the backend is unreachable.
const botsFetchTimeout = 5 * time.Second

// HandleBots lists the available bot profiles.
func HandleBots(args Args) error {
	cfg := config.Global()
	session := RestoreSession(cfg)
	client := NewBackendClient(cfg, session)

	mergeRemoteBots(client)

	email := session.Status().Email
	defaultID := bot.Default().ID
	if cfg != nil && cfg.DefaultBot != "" {
		if p, ok := bot.Get(cfg.DefaultBot); ok {
			defaultID = p.ID
		}
	}

	if args.JSON {
		profiles := bot.List()
		data := make([]map[string]interface{}, 0, len(profiles))
		for _, p := range profiles {
			data = append(data, map[string]interface{}{
				"id":          p.ID,
				"label":       p.Label,
				"description": p.Description,
				"model":       p.Model,
				"grounded":    p.Grounded(),
				"restricted":  !p.AllowedFor(email),
				"default":     p.ID == defaultID,
				"prompts":     p.SuggestedPrompts,
			})
		}
		return NewJSONResponse("bots", data).Print()
	}

	fmt.Println(TitleStyle.Render("Bots"))
	for _, p := range bot.List() {
		marker := "  "
		if p.ID == defaultID {
			marker = AccentStyle.Render("* ")
		}
		name := ValueStyle.Render(fmt.Sprintf("%-8s", p.ID))
		fmt.Printf("%s%s %s\n", marker, name, p.Label)
		if p.Description != "" {
			fmt.Printf("           %s\n", DimStyle.Render(p.Description))
		}
		var notes []string
		if p.Model != "" {
			notes = append(notes, "model: "+p.Model)
		}
		if p.Grounded() {
			notes = append(notes, "grounded: confluence")
		}
		if !p.AllowedFor(email) {
			notes = append(notes, WarningStyle.Render("restricted"))
		}
		if len(notes) > 0 {
			fmt.Print("           ")
			for i, n := range notes {
				if i > 0 {
					fmt.Print(DimStyle.Render("  |  "))
				}
				fmt.Print(DimStyle.Render(n))
			}
			fmt.Println()
		}
	}
	fmt.Println()
	fmt.Println(DimStyle.Render("* default bot; switch with --bot or config set default_bot <id>"))
	return nil
}

// mergeRemoteBots folds backend-advertised bots into the catalog.
// Best effort: an unreachable backend leaves the built-in catalog as-is.
func mergeRemoteBots(client *api.Client) {
	if client == nil || !client.IsConfigured() {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), botsFetchTimeout)
	defer cancel()

	bcfg, err := client.FetchConfig(ctx)
	if err != nil || len(bcfg.Bots) == 0 {
		return
	}
	remote := make([]bot.Profile, 0, len(bcfg.Bots))
	for _, rb := range bcfg.Bots {
		remote = append(remote, bot.Profile{
			ID:                  rb.ID,
			Label:               rb.Label,
			Description:         rb.Description,
			Model:               rb.Model,
			SuggestedPrompts:    rb.Examples,
			AllowedEmails:       rb.AllowedEmails,
			UseConfluenceSearch: rb.UseConfluenceSearch,
		})
	}
	bot.Merge(remote)
}
