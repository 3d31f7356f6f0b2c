// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package bot

import (
	"sort"
	"strings"
)

// DefaultBotID is used when no bot is selected explicitly.
const DefaultBotID = "ava"

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile describes one assistant the backend can run on our behalf.
type Profile struct {
	// ID is the identifier sent in chat request overrides
	ID string `json:"id"`

	// Label is the human-readable display name
	Label string `json:"label"`

	// Description is a one-line explanation shown in the picker
	Description string `json:"description"`

	// Model is the LLM the backend uses for this bot
	Model string `json:"model"`

	// SuggestedPrompts seed the welcome screen for this bot
	SuggestedPrompts []string `json:"suggested_prompts,omitempty"`

	// UseConfluenceSearch reports whether answers are grounded in the
	// Confluence/document index (and therefore carry citations)
	UseConfluenceSearch bool `json:"use_confluence_search"`

	// AllowedEmails restricts access; empty means everyone
	AllowedEmails []string `json:"allowed_emails,omitempty"`
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the registry of built-in bots, keyed by ID. The backend may
// advertise updated profiles at startup; see Merge.
var Catalog = map[string]Profile{
	"ava": {
		ID:                  "ava",
		Label:               "Ava – Search",
		Description:         "Company knowledge assistant grounded in policy documents",
		Model:               "gpt-4o",
		UseConfluenceSearch: true,
		SuggestedPrompts: []string{
			"Give a detailed overview of the Data Loss Prevention policy",
			"Can you outline the 5 for 5 leave policy?",
			"How do I connect Excel to the BI data cubes?",
		},
	},
	"ba": {
		ID:          "ba",
		Label:       "BA Buddy",
		Description: "Business analysis sidekick (pilot)",
		Model:       "o3",
		AllowedEmails: []string{
			"rory.maher@vocus.com.au",
			"callum.mayhook@vocus.com.au",
		},
		SuggestedPrompts: []string{
			"Help me draft acceptance criteria for this user story",
			"Turn these meeting notes into requirements",
		},
	},
	"tender": {
		ID:          "tender",
		Label:       "Tender Wizard",
		Description: "Tender response drafting assistant (pilot)",
		Model:       "gpt-4o",
		AllowedEmails: []string{
			"rory.maher@vocus.com.au",
		},
		SuggestedPrompts: []string{
			"Summarize the mandatory requirements in this RFT",
		},
	},
}

// =============================================================================
// PROFILE METHODS
// =============================================================================

// AllowedFor reports whether the given email may use this bot.
// An empty allow list means the bot is open to everyone.
func (p Profile) AllowedFor(email string) bool {
	if len(p.AllowedEmails) == 0 {
		return true
	}
	email = strings.ToLower(strings.TrimSpace(email))
	for _, allowed := range p.AllowedEmails {
		if strings.ToLower(allowed) == email {
			return true
		}
	}
	return false
}

// Grounded reports whether answers from this bot cite indexed sources.
func (p Profile) Grounded() bool {
	return p.UseConfluenceSearch
}

// =============================================================================
// LOOKUP FUNCTIONS
// =============================================================================

// Get looks up a bot by ID, falling back to a case-insensitive match on
// the label. Returns the profile and true if found.
func Get(idOrLabel string) (Profile, bool) {
	if p, ok := Catalog[idOrLabel]; ok {
		return p, true
	}

	needle := strings.ToLower(idOrLabel)
	for _, p := range Catalog {
		if strings.ToLower(p.Label) == needle {
			return p, true
		}
	}
	for _, p := range Catalog {
		if strings.Contains(strings.ToLower(p.Label), needle) {
			return p, true
		}
	}

	return Profile{}, false
}

// Default returns the default bot profile.
func Default() Profile {
	return Catalog[DefaultBotID]
}

// List returns all profiles sorted with the default first, then by ID.
func List() []Profile {
	profiles := make([]Profile, 0, len(Catalog))
	for _, p := range Catalog {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool {
		if profiles[i].ID == DefaultBotID {
			return true
		}
		if profiles[j].ID == DefaultBotID {
			return false
		}
		return profiles[i].ID < profiles[j].ID
	})
	return profiles
}

// ListFor returns the profiles the given email is allowed to use.
func ListFor(email string) []Profile {
	var profiles []Profile
	for _, p := range List() {
		if p.AllowedFor(email) {
			profiles = append(profiles, p)
		}
	}
	return profiles
}

// Merge overlays backend-advertised profiles onto the built-in catalog.
// Known IDs are updated in place (the backend wins on label, model, and
// access rules); unknown IDs are added. Empty remote fields keep the
// built-in value so a sparse advertisement does not blank the catalog.
func Merge(remote []Profile) {
	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		local, ok := Catalog[r.ID]
		if !ok {
			Catalog[r.ID] = r
			continue
		}
		if r.Label != "" {
			local.Label = r.Label
		}
		if r.Description != "" {
			local.Description = r.Description
		}
		if r.Model != "" {
			local.Model = r.Model
		}
		if len(r.SuggestedPrompts) > 0 {
			local.SuggestedPrompts = r.SuggestedPrompts
		}
		if r.AllowedEmails != nil {
			local.AllowedEmails = r.AllowedEmails
		}
		local.UseConfluenceSearch = r.UseConfluenceSearch
		Catalog[r.ID] = local
	}
}
