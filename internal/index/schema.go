// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package index

const (
	// SchemaVersion tracks the database schema version for migrations
	SchemaVersion = 1
)

// SQLite schema for the citation index with FTS (Full Text Search)
const Schema = `
-- Metadata table for schema version and index state
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL
) WITHOUT ROWID;

-- Citations table: one row per citation occurrence in an answer
CREATE TABLE IF NOT EXISTS citations (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    conversation_id TEXT NOT NULL,
    message_id TEXT NOT NULL,
    bot_id TEXT,
    kind TEXT NOT NULL,          -- document, link
    token TEXT NOT NULL,         -- raw bracket-interior token
    title TEXT,                  -- display title (filename or decoded page title)
    url TEXT,                    -- link target; empty for documents
    ordinal INTEGER NOT NULL,    -- 1-based reference number within the answer
    cited_at INTEGER NOT NULL    -- Unix timestamp
);

CREATE INDEX IF NOT EXISTS idx_citations_conversation ON citations(conversation_id);
CREATE INDEX IF NOT EXISTS idx_citations_message ON citations(message_id);
CREATE INDEX IF NOT EXISTS idx_citations_token ON citations(token);
CREATE INDEX IF NOT EXISTS idx_citations_kind ON citations(kind);

-- Full-text search virtual table over citation text
CREATE VIRTUAL TABLE IF NOT EXISTS citations_fts USING fts5(
    token,
    title,
    url,
    content='citations',
    content_rowid='id',
    tokenize='porter unicode61'
);

-- Triggers keep the FTS table in sync. External-content FTS5 tables
-- must be updated through the special 'delete' command, not DELETE.
CREATE TRIGGER IF NOT EXISTS citations_ai AFTER INSERT ON citations BEGIN
    INSERT INTO citations_fts(rowid, token, title, url)
    VALUES (new.id, new.token, new.title, new.url);
END;

CREATE TRIGGER IF NOT EXISTS citations_ad AFTER DELETE ON citations BEGIN
    INSERT INTO citations_fts(citations_fts, rowid, token, title, url)
    VALUES ('delete', old.id, old.token, old.title, old.url);
END;

CREATE TRIGGER IF NOT EXISTS citations_au AFTER UPDATE ON citations BEGIN
    INSERT INTO citations_fts(citations_fts, rowid, token, title, url)
    VALUES ('delete', old.id, old.token, old.title, old.url);
    INSERT INTO citations_fts(rowid, token, title, url)
    VALUES (new.id, new.token, new.title, new.url);
END;
`

// InitMetadata initializes the metadata table with default values
const InitMetadata = `
INSERT OR IGNORE INTO metadata (key, value) VALUES ('schema_version', '1');
INSERT OR IGNORE INTO metadata (key, value) VALUES ('created_at', strftime('%s', 'now'));
`
