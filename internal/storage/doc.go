// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides conversation persistence for ava.
//
// Conversations are saved as JSON files, one per conversation, with
// atomic writes so an interrupted save never corrupts history. The
// store bounds how many conversations are kept and prunes the oldest
// past that limit.
//
// # Key Types
//
//   - Store: conversation persistence with list/search/export
//   - model.Conversation: the persisted unit (serialized as-is)
//   - model.ConversationMeta: lightweight metadata for listing
//
// # Usage
//
// Create a store and save a conversation:
//
//	store, err := storage.NewStore(storage.StoreConfig{})
//	id, err := store.Save(conversation)
//
// List and load conversations:
//
//	metas, err := store.List()
//	conv, err := store.Load(metas[0].ID)
//
// Search conversations:
//
//	results, err := store.SearchMessages("fibre outage")
//
// # Storage Location
//
// Conversations are stored in ~/.ava/conversations/ as JSON files,
// owner-readable only.
package storage
