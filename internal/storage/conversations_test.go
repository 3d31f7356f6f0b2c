// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rorymaher2092/ava-tui/internal/model"
)

// =============================================================================
// CONVERSATION STORE TESTS
// =============================================================================

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(StoreConfig{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return store
}

func TestNewStore_Defaults(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(StoreConfig{Dir: dir})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	if store.BaseDir != dir {
		t.Errorf("BaseDir = %q, want %q", store.BaseDir, dir)
	}
	if store.MaxConversations != DefaultMaxConversations {
		t.Errorf("MaxConversations = %d, want %d", store.MaxConversations, DefaultMaxConversations)
	}
}

func TestStore_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversationWithBot("ava")
	conv.AddUserMessage("What is our NBN wholesale pricing?")
	msg := conv.AddAssistantMessage()
	msg.AppendToken("See [pricing.pdf] for the current schedule.")
	msg.FinalizeStream(nil)
	msg.Sources = []string{"pricing.pdf section 3"}
	conv.SessionState = "opaque-session-blob"

	id, err := store.Save(conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if id == "" {
		t.Error("Expected non-empty ID")
	}
	if !strings.HasPrefix(id, "conv_") {
		t.Errorf("ID should start with 'conv_', got %q", id)
	}

	loaded, err := store.Load(id)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ID != id {
		t.Errorf("Loaded ID = %q, want %q", loaded.ID, id)
	}
	if loaded.BotID != "ava" {
		t.Errorf("Loaded BotID = %q, want %q", loaded.BotID, "ava")
	}
	if loaded.SessionState != "opaque-session-blob" {
		t.Errorf("SessionState lost: %q", loaded.SessionState)
	}
	if len(loaded.Messages) != 2 {
		t.Fatalf("Loaded Messages count = %d, want 2", len(loaded.Messages))
	}

	// Sources must survive so old answers re-validate their citations.
	assistant := loaded.Messages[1]
	if assistant.Content != "See [pricing.pdf] for the current schedule." {
		t.Errorf("Assistant content lost: %q", assistant.Content)
	}
	if len(assistant.Sources) != 1 || assistant.Sources[0] != "pricing.pdf section 3" {
		t.Errorf("Sources lost: %v", assistant.Sources)
	}
}

func TestStore_LoadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Load("nonexistent-id")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("Test")
	id, _ := store.Save(conv)

	if err := store.Delete(id); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := store.Load(id)
	if !errors.Is(err, ErrConversationNotFound) {
		t.Error("Conversation should not exist after delete")
	}
}

func TestStore_DeleteNotFound(t *testing.T) {
	store := newTestStore(t)

	err := store.Delete("nonexistent-id")
	if !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound, got %v", err)
	}
}

func TestStore_ListOrder(t *testing.T) {
	store := newTestStore(t)

	// Empty list
	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("Expected empty list, got %d items", len(metas))
	}

	// Save three conversations; Save stamps UpdatedAt, so insertion
	// order is age order.
	var lastID string
	for _, q := range []string{"first question", "second question", "third question"} {
		conv := model.NewConversationWithBot("ava")
		conv.AddUserMessage(q)
		id, err := store.Save(conv)
		if err != nil {
			t.Fatalf("Save failed: %v", err)
		}
		lastID = id
	}

	metas, err = store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 3 {
		t.Fatalf("Expected 3 conversations, got %d", len(metas))
	}

	// Most recent first
	if metas[0].ID != lastID {
		t.Errorf("Expected most recent conversation first, got %q", metas[0].ID)
	}
	if !strings.Contains(metas[0].Title, "third") {
		t.Errorf("Expected title from first user message, got %q", metas[0].Title)
	}
}

func TestStore_ListSkipsCorruptedFiles(t *testing.T) {
	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("valid conversation")
	if _, err := store.Save(conv); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// A truncated write from an older build must not break listing.
	bad := filepath.Join(store.BaseDir, "conv_corrupt.json")
	if err := os.WriteFile(bad, []byte("{not json"), 0600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 1 {
		t.Errorf("Expected corrupted file skipped, got %d entries", len(metas))
	}
}

func TestStore_LoadByIndexAndLatest(t *testing.T) {
	store := newTestStore(t)

	for _, q := range []string{"oldest", "middle", "newest"} {
		conv := model.NewConversation()
		conv.AddUserMessage(q)
		if _, err := store.Save(conv); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	latest, err := store.LoadLatest()
	if err != nil {
		t.Fatalf("LoadLatest failed: %v", err)
	}
	if latest.Messages[0].Content != "newest" {
		t.Errorf("LoadLatest returned %q", latest.Messages[0].Content)
	}

	oldest, err := store.LoadByIndex(2)
	if err != nil {
		t.Fatalf("LoadByIndex failed: %v", err)
	}
	if oldest.Messages[0].Content != "oldest" {
		t.Errorf("LoadByIndex(2) returned %q", oldest.Messages[0].Content)
	}

	if _, err := store.LoadByIndex(99); !errors.Is(err, ErrConversationNotFound) {
		t.Errorf("Expected ErrConversationNotFound for out-of-range index, got %v", err)
	}
}

func TestStore_EnforceLimit(t *testing.T) {
	store, err := NewStore(StoreConfig{Dir: t.TempDir(), MaxConversations: 2})
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}

	for _, q := range []string{"one", "two", "three"} {
		conv := model.NewConversation()
		conv.AddUserMessage(q)
		if _, err := store.Save(conv); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	metas, err := store.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(metas) != 2 {
		t.Fatalf("Expected pruning to 2 conversations, got %d", len(metas))
	}

	// The oldest conversation is the one that went
	for _, meta := range metas {
		if strings.Contains(meta.Title, "one") {
			t.Error("Oldest conversation should have been pruned")
		}
	}
}

func TestStore_Search(t *testing.T) {
	store := newTestStore(t)

	conv1 := model.NewConversation()
	conv1.AddUserMessage("NBN pricing for wholesale customers")
	store.Save(conv1)

	conv2 := model.NewConversation()
	conv2.AddUserMessage("office locations in Melbourne")
	store.Save(conv2)

	results, err := store.Search("nbn")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}
	if !strings.Contains(strings.ToLower(results[0].Title), "nbn") {
		t.Errorf("Wrong result: %q", results[0].Title)
	}
}

func TestStore_SearchMessages(t *testing.T) {
	store := newTestStore(t)

	conv1 := model.NewConversation()
	conv1.AddUserMessage("first topic")
	msg := conv1.AddAssistantMessage()
	msg.AppendToken("The fibre rollout finishes in QUARTER four.")
	msg.FinalizeStream(nil)
	store.Save(conv1)

	conv2 := model.NewConversation()
	conv2.AddUserMessage("second topic")
	store.Save(conv2)

	// Matches answer content, not just titles; case-insensitive.
	results, err := store.SearchMessages("quarter")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("Expected 1 result, got %d", len(results))
	}

	// Empty query returns everything
	all, err := store.SearchMessages("")
	if err != nil {
		t.Fatalf("SearchMessages failed: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 results for empty query, got %d", len(all))
	}
}

func TestStore_Clear(t *testing.T) {
	store := newTestStore(t)

	for i := 0; i < 3; i++ {
		conv := model.NewConversation()
		conv.AddUserMessage("message")
		store.Save(conv)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	metas, _ := store.List()
	if len(metas) != 0 {
		t.Errorf("Expected empty store after Clear, got %d", len(metas))
	}
}

func TestStore_SavedFilePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("Unix permission semantics")
	}

	store := newTestStore(t)

	conv := model.NewConversation()
	conv.AddUserMessage("confidential question")
	id, err := store.Save(conv)
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	info, err := os.Stat(filepath.Join(store.BaseDir, id+".json"))
	if err != nil {
		t.Fatalf("Stat failed: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("Expected 0600 permissions, got %o", perm)
	}
}

// =============================================================================
// FORMATTING AND EXPORT TESTS
// =============================================================================

func TestFormatList(t *testing.T) {
	if got := FormatList(nil); got != "No conversations found." {
		t.Errorf("Empty list output = %q", got)
	}

	store := newTestStore(t)
	conv := model.NewConversationWithBot("tender")
	conv.AddUserMessage("RFP response deadline for the transit contract")
	store.Save(conv)

	metas, _ := store.List()
	out := FormatList(metas)

	if !strings.Contains(out, "TITLE") {
		t.Errorf("Missing header: %q", out)
	}
	if !strings.Contains(out, "tender") {
		t.Errorf("Missing bot column: %q", out)
	}
	if !strings.Contains(out, "RFP response") {
		t.Errorf("Missing title: %q", out)
	}
}
