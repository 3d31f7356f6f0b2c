// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for ava.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rorymaher2092/ava-tui/internal/model"
	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// CONVERSATION STORE
// =============================================================================

// DefaultMaxConversations bounds on-disk history when the caller does
// not configure a limit.
const DefaultMaxConversations = 200

// Store handles conversation persistence.
type Store struct {
	// BaseDir is the directory for storing conversations
	// Default: ~/.ava/conversations/
	BaseDir string

	// MaxConversations limits stored conversations; the oldest are
	// pruned past this. 0 = unlimited.
	MaxConversations int
}

// StoreConfig holds options for creating a Store.
// Zero values fall back to defaults.
type StoreConfig struct {
	// Dir overrides the storage directory.
	Dir string

	// MaxConversations overrides the on-disk history bound.
	MaxConversations int
}

// NewStore creates a conversation store, creating the directory if
// needed. Conversations hold corporate content, so the directory is
// owner-only like the rest of ~/.ava.
func NewStore(cfg StoreConfig) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		dir = filepath.Join(homeDir, ".ava", "conversations")
	}

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, err
	}

	maxConvs := cfg.MaxConversations
	if maxConvs == 0 {
		maxConvs = DefaultMaxConversations
	}

	return &Store{
		BaseDir:          dir,
		MaxConversations: maxConvs,
	}, nil
}

// =============================================================================
// SAVE OPERATIONS
// =============================================================================

// Save persists a conversation and returns its ID.
func (s *Store) Save(conv *model.Conversation) (string, error) {
	if conv.ID == "" {
		// NewConversation assigns IDs; a blank one means the caller
		// built the struct by hand.
		conv.ID = "conv_" + strings.ReplaceAll(time.Now().Format("20060102_150405.000"), ".", "")
	}

	conv.UpdatedAt = time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = conv.UpdatedAt
	}

	data, err := json.MarshalIndent(conv, "", "  ")
	if err != nil {
		return "", err
	}

	// RELIABILITY: Atomic write with fsync prevents data loss on crash
	filePath := s.filePath(conv.ID)
	if err := util.AtomicWriteFileWithDir(filePath, data, 0600, 0700); err != nil {
		return "", err
	}

	if s.MaxConversations > 0 {
		s.enforceLimit()
	}

	return conv.ID, nil
}

// enforceLimit removes oldest conversations if over limit.
func (s *Store) enforceLimit() {
	metas, err := s.List()
	if err != nil || len(metas) <= s.MaxConversations {
		return
	}

	// Sort by updated time (oldest first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.Before(metas[j].UpdatedAt)
	})

	excess := len(metas) - s.MaxConversations
	for i := 0; i < excess; i++ {
		s.Delete(metas[i].ID)
	}
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// Load retrieves a conversation by ID.
func (s *Store) Load(id string) (*model.Conversation, error) {
	data, err := os.ReadFile(s.filePath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}

	var conv model.Conversation
	if err := json.Unmarshal(data, &conv); err != nil {
		return nil, err
	}

	return &conv, nil
}

// LoadByIndex loads a conversation by its index in the list (0 = most recent).
func (s *Store) LoadByIndex(index int) (*model.Conversation, error) {
	metas, err := s.List()
	if err != nil {
		return nil, err
	}

	if index < 0 || index >= len(metas) {
		return nil, ErrConversationNotFound
	}

	return s.Load(metas[index].ID)
}

// LoadLatest loads the most recently updated conversation.
// Used by `ava chat --continue`.
func (s *Store) LoadLatest() (*model.Conversation, error) {
	return s.LoadByIndex(0)
}

// =============================================================================
// LIST OPERATIONS
// =============================================================================

// List returns metadata for all saved conversations (most recent first).
func (s *Store) List() ([]model.ConversationMeta, error) {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []model.ConversationMeta{}, nil
		}
		return nil, err
	}

	var metas []model.ConversationMeta

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".json")

		conv, err := s.Load(id)
		if err != nil {
			continue // Skip corrupted files
		}

		metas = append(metas, conv.GetMeta())
	}

	// Sort by updated time (most recent first)
	sort.Slice(metas, func(i, j int) bool {
		return metas[i].UpdatedAt.After(metas[j].UpdatedAt)
	})

	return metas, nil
}

// Search finds conversations whose title or preview matches a query
// string (case-insensitive).
func (s *Store) Search(query string) ([]model.ConversationMeta, error) {
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	query = strings.ToLower(query)
	var results []model.ConversationMeta

	for _, meta := range all {
		if strings.Contains(strings.ToLower(meta.Title), query) ||
			strings.Contains(strings.ToLower(meta.Preview), query) {
			results = append(results, meta)
		}
	}

	return results, nil
}

// SearchMessages searches conversations by message content.
// Returns conversations where any message contains the query string
// (case-insensitive).
func (s *Store) SearchMessages(query string) ([]model.ConversationMeta, error) {
	if query == "" {
		return s.List()
	}

	query = strings.ToLower(query)
	all, err := s.List()
	if err != nil {
		return nil, err
	}

	var results []model.ConversationMeta

	for _, meta := range all {
		conv, err := s.Load(meta.ID)
		if err != nil {
			continue
		}

		for _, msg := range conv.Messages {
			if strings.Contains(strings.ToLower(msg.Content), query) {
				results = append(results, meta)
				break // Found a match, move to next conversation
			}
		}
	}

	return results, nil
}

// =============================================================================
// DELETE OPERATIONS
// =============================================================================

// Delete removes a conversation by ID.
func (s *Store) Delete(id string) error {
	if err := os.Remove(s.filePath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrConversationNotFound
		}
		return err
	}
	return nil
}

// Clear removes all saved conversations.
func (s *Store) Clear() error {
	entries, err := os.ReadDir(s.BaseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".json") {
			os.Remove(filepath.Join(s.BaseDir, entry.Name()))
		}
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// filePath returns the file path for a conversation ID.
func (s *Store) filePath(id string) string {
	// IDs are generated, but sanitize anyway so a crafted history
	// file name cannot escape the storage directory.
	id = filepath.Base(id)
	return filepath.Join(s.BaseDir, id+".json")
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation doesn't exist.
// Use errors.Is(err, ErrConversationNotFound) to check for this error.
var ErrConversationNotFound = &ConversationError{Message: "conversation not found"}

// ConversationError represents a conversation-related error.
type ConversationError struct {
	Message string
}

// Error implements the error interface.
func (e *ConversationError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing conversation errors.
func (e *ConversationError) Is(target error) bool {
	t, ok := target.(*ConversationError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// HISTORY LIST FORMATTING
// =============================================================================

// FormatList formats conversation metadata as a table for `ava history`.
func FormatList(metas []model.ConversationMeta) string {
	if len(metas) == 0 {
		return "No conversations found."
	}

	var sb strings.Builder
	sb.WriteString(util.PadWidth("#", 4))
	sb.WriteString(util.PadWidth("UPDATED", 18))
	sb.WriteString(util.PadWidth("BOT", 8))
	sb.WriteString(util.PadWidth("MSGS", 6))
	sb.WriteString("TITLE\n")

	for i, meta := range metas {
		bot := meta.BotID
		if bot == "" {
			bot = "-"
		}
		sb.WriteString(util.PadWidth(util.IntToString(i+1), 4))
		sb.WriteString(util.PadWidth(meta.UpdatedAt.Format("2006-01-02 15:04"), 18))
		sb.WriteString(util.PadWidth(util.TruncateRunes(bot, 7), 8))
		sb.WriteString(util.PadWidth(util.IntToString(meta.MessageCount), 6))
		sb.WriteString(util.TruncateWidth(meta.Title, 60))
		sb.WriteString("\n")
	}
	return sb.String()
}
