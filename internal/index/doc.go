// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package index provides a local SQLite index of answer citations.
//
// Every confirmed citation in an assistant answer is recorded with its
// conversation, kind, title and target, so "which conversation cited
// pricing.pdf?" is a query instead of a grep across history files.
// Writes are best-effort: a failed index write never fails the chat.
//
// # Key Types
//
//   - Index: the citation database
//   - Record: one stored citation occurrence
//   - DocumentCount: aggregate for most-cited documents
//
// # Usage
//
//	idx, err := index.New(index.Config{})
//	defer idx.Close()
//
//	idx.RecordMessage(convID, msgID, botID, result.Citations)
//	records, err := idx.Search("pricing")
//	top, err := idx.TopDocuments(10)
//
// # Storage Location
//
// The database lives at ~/.ava/index.db (pure Go SQLite, WAL mode).
package index
