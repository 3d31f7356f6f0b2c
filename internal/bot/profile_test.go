// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package bot

import "testing"

func TestDefaultIsAva(t *testing.T) {
	p := Default()
	if p.ID != "ava" {
		t.Errorf("Expected default bot 'ava', got %q", p.ID)
	}
	if !p.Grounded() {
		t.Error("Expected default bot to be grounded in document search")
	}
}

func TestGetByIDAndLabel(t *testing.T) {
	if _, ok := Get("ba"); !ok {
		t.Error("Expected lookup by ID to succeed")
	}
	if p, ok := Get("tender wizard"); !ok || p.ID != "tender" {
		t.Errorf("Expected label lookup to find tender, got %+v ok=%v", p, ok)
	}
	if _, ok := Get("nonexistent"); ok {
		t.Error("Expected unknown bot lookup to fail")
	}
}

func TestAllowedFor(t *testing.T) {
	ava := Catalog["ava"]
	if !ava.AllowedFor("anyone@vocus.com.au") {
		t.Error("Open bot should allow everyone")
	}

	ba := Catalog["ba"]
	if !ba.AllowedFor("Rory.Maher@vocus.com.au") {
		t.Error("Allow list match should be case-insensitive")
	}
	if ba.AllowedFor("someone.else@vocus.com.au") {
		t.Error("Restricted bot should reject emails not on the list")
	}
}

func TestListDefaultFirst(t *testing.T) {
	profiles := List()
	if len(profiles) < 3 {
		t.Fatalf("Expected at least 3 built-in bots, got %d", len(profiles))
	}
	if profiles[0].ID != DefaultBotID {
		t.Errorf("Expected default bot first, got %q", profiles[0].ID)
	}
}

func TestListForFiltersRestricted(t *testing.T) {
	profiles := ListFor("someone.else@vocus.com.au")
	for _, p := range profiles {
		if p.ID == "ba" || p.ID == "tender" {
			t.Errorf("Restricted bot %q leaked into list", p.ID)
		}
	}
}

func TestMergeUpdatesAndAdds(t *testing.T) {
	// Work on a throwaway entry so other tests see a clean catalog.
	Catalog["scratch"] = Profile{ID: "scratch", Label: "Scratch", Model: "gpt-4o"}
	defer delete(Catalog, "scratch")

	Merge([]Profile{
		{ID: "scratch", Model: "o3"},
		{ID: "fresh", Label: "Fresh Bot", Model: "gpt-4o"},
	})
	defer delete(Catalog, "fresh")

	if got := Catalog["scratch"]; got.Model != "o3" || got.Label != "Scratch" {
		t.Errorf("Merge should update model and keep label, got %+v", got)
	}
	if _, ok := Catalog["fresh"]; !ok {
		t.Error("Merge should add unknown bots")
	}
}
