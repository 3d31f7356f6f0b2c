// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides a local SQLite index of answer citations.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/rorymaher2092/ava-tui/internal/answer"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	ErrDatabaseError = errors.New("database error")
	ErrClosed        = errors.New("index is closed")
)

// =============================================================================
// CITATION INDEX
// =============================================================================

// Index stores citation occurrences for fast lookup across history.
//
// Thread-safety: safe for concurrent use. SQLite allows one writer, so
// the connection pool is capped at a single connection.
type Index struct {
	db   *sql.DB
	path string
	mu   sync.RWMutex

	citationCount int
}

// Config holds index configuration.
// Zero values fall back to defaults.
type Config struct {
	// DatabasePath is where to store the SQLite database.
	// Default: ~/.ava/index.db
	DatabasePath string
}

// New creates or opens the citation index.
func New(cfg Config) (*Index, error) {
	path := cfg.DatabasePath
	if path == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(homeDir, ".ava", "index.db")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	idx := &Index{
		db:   db,
		path: path,
	}

	if err := idx.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := idx.loadStats(); err != nil {
		// Non-fatal, continue
	}

	return idx, nil
}

// initSchema creates the database schema.
func (idx *Index) initSchema() error {
	if _, err := idx.db.Exec(Schema); err != nil {
		return err
	}
	_, err := idx.db.Exec(InitMetadata)
	return err
}

// loadStats loads statistics from the database.
func (idx *Index) loadStats() error {
	return idx.db.QueryRow("SELECT COUNT(*) FROM citations").Scan(&idx.citationCount)
}

// Close closes the index and releases resources.
func (idx *Index) Close() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db != nil {
		err := idx.db.Close()
		idx.db = nil
		return err
	}
	return nil
}

// =============================================================================
// RECORD TYPE
// =============================================================================

// Record is one stored citation occurrence.
type Record struct {
	ID             int64
	ConversationID string
	MessageID      string
	BotID          string
	Kind           string // "document" or "link"
	Token          string
	Title          string
	URL            string
	Ordinal        int
	CitedAt        time.Time
}

// DocumentCount aggregates how often a document was cited.
type DocumentCount struct {
	Token     string
	Title     string
	Count     int
	LastCited time.Time
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// RecordMessage stores the citations of one answer, replacing any rows
// previously recorded for the same message. Invalid citations never
// reach this point; the extractor only reports confirmed ones.
func (idx *Index) RecordMessage(conversationID, messageID, botID string, citations []answer.Citation) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return ErrClosed
	}

	tx, err := idx.db.Begin()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer tx.Rollback()

	// Re-parses of the same answer replace, never duplicate
	if _, err := tx.Exec("DELETE FROM citations WHERE message_id = ?", messageID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	now := time.Now().Unix()
	for _, c := range citations {
		if c.Kind == answer.KindInvalid {
			continue
		}
		_, err := tx.Exec(`
			INSERT INTO citations (conversation_id, message_id, bot_id, kind, token, title, url, ordinal, cited_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, conversationID, messageID, botID, c.Kind.String(), c.RawToken, c.DisplayTitle, c.TargetURL, c.Ordinal, now)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrDatabaseError, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	idx.loadStats()
	return nil
}

// DeleteConversation removes all citations recorded for a conversation.
// Called when history is deleted so the index never outlives its source.
func (idx *Index) DeleteConversation(conversationID string) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return ErrClosed
	}

	if _, err := idx.db.Exec("DELETE FROM citations WHERE conversation_id = ?", conversationID); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	idx.loadStats()
	return nil
}

// Clear removes every stored citation.
func (idx *Index) Clear() error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.db == nil {
		return ErrClosed
	}

	if _, err := idx.db.Exec("DELETE FROM citations"); err != nil {
		return fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}

	idx.citationCount = 0
	return nil
}

// =============================================================================
// QUERY OPERATIONS
// =============================================================================

// ForConversation returns all citations for a conversation in the
// order they were recorded.
func (idx *Index) ForConversation(conversationID string) ([]Record, error) {
	return idx.queryRecords(`
		SELECT id, conversation_id, message_id, bot_id, kind, token, title, url, ordinal, cited_at
		FROM citations
		WHERE conversation_id = ?
		ORDER BY id
	`, conversationID)
}

// ForMessage returns the citations of a single answer, ordinal order.
func (idx *Index) ForMessage(messageID string) ([]Record, error) {
	return idx.queryRecords(`
		SELECT id, conversation_id, message_id, bot_id, kind, token, title, url, ordinal, cited_at
		FROM citations
		WHERE message_id = ?
		ORDER BY ordinal
	`, messageID)
}

// Search finds citations matching the query using full-text search
// over token, title and URL. Best matches first.
func (idx *Index) Search(query string, limit int) ([]Record, error) {
	ftsQuery := buildFTSQuery(query)
	if ftsQuery == "" {
		return []Record{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	return idx.queryRecords(`
		SELECT c.id, c.conversation_id, c.message_id, c.bot_id, c.kind, c.token, c.title, c.url, c.ordinal, c.cited_at
		FROM citations_fts fts
		JOIN citations c ON c.id = fts.rowid
		WHERE citations_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, ftsQuery, limit)
}

// TopDocuments returns the most-cited documents.
func (idx *Index) TopDocuments(limit int) ([]DocumentCount, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.db == nil {
		return nil, ErrClosed
	}
	if limit <= 0 {
		limit = 10
	}

	rows, err := idx.db.Query(`
		SELECT token, title, COUNT(*) as cnt, MAX(cited_at) as last
		FROM citations
		WHERE kind = 'document'
		GROUP BY token
		ORDER BY cnt DESC, last DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var counts []DocumentCount
	for rows.Next() {
		var dc DocumentCount
		var title sql.NullString
		var last int64
		if err := rows.Scan(&dc.Token, &title, &dc.Count, &last); err != nil {
			continue
		}
		if title.Valid {
			dc.Title = title.String
		}
		dc.LastCited = time.Unix(last, 0)
		counts = append(counts, dc)
	}

	return counts, rows.Err()
}

// queryRecords runs a SELECT returning citation rows.
func (idx *Index) queryRecords(query string, args ...interface{}) ([]Record, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if idx.db == nil {
		return nil, ErrClosed
	}

	rows, err := idx.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabaseError, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var r Record
		var botID, title, url sql.NullString
		var citedAt int64

		err := rows.Scan(
			&r.ID,
			&r.ConversationID,
			&r.MessageID,
			&botID,
			&r.Kind,
			&r.Token,
			&title,
			&url,
			&r.Ordinal,
			&citedAt,
		)
		if err != nil {
			continue
		}

		if botID.Valid {
			r.BotID = botID.String
		}
		if title.Valid {
			r.Title = title.String
		}
		if url.Valid {
			r.URL = url.String
		}
		r.CitedAt = time.Unix(citedAt, 0)

		records = append(records, r)
	}

	return records, rows.Err()
}

// buildFTSQuery turns user input into an FTS5 query. Each whitespace
// term becomes a quoted phrase so filenames with dots match and FTS
// operators in the input cannot change the query shape.
func buildFTSQuery(query string) string {
	terms := strings.Fields(query)
	if len(terms) == 0 {
		return ""
	}

	var quoted []string
	for _, term := range terms {
		term = strings.ReplaceAll(term, "\"", "")
		if term == "" {
			continue
		}
		quoted = append(quoted, "\""+term+"\"")
	}
	return strings.Join(quoted, " ")
}

// =============================================================================
// STATISTICS
// =============================================================================

// Stats holds index statistics.
type Stats struct {
	CitationCount int
	DatabaseSize  int64
	Path          string
}

// Stats returns current index statistics.
func (idx *Index) Stats() Stats {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var dbSize int64
	if info, err := os.Stat(idx.path); err == nil {
		dbSize = info.Size()
	}

	return Stats{
		CitationCount: idx.citationCount,
		DatabaseSize:  dbSize,
		Path:          idx.path,
	}
}
