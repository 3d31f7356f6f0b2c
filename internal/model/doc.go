// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
//
// This package defines the core domain types used throughout the application
// for representing chat conversations, messages, and attachments.
//
// # Key Types
//
//   - Conversation: Container for a chat session with messages and metadata
//   - Message: Single message with role, content, sources, and statistics
//   - Attachment: Metadata for a file sent with a user message
//   - Role: Message role enumeration (user, assistant, system)
//
// # Usage
//
// Create a new conversation and record a turn:
//
//	conv := model.NewConversationWithBot("ava")
//	conv.AddUserMessage("What does the travel policy say?")
//	msg := conv.AddAssistantMessage()
//	msg.AppendToken("See [travel.pdf]")
//	conv.FinalizeLast(stats)
//
// Assistant messages keep their grounding sources alongside the content,
// so citation extraction can be re-run when old conversations render.
package model
