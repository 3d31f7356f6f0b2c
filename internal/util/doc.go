// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared across the ava client.
//
// # Key Functions
//
// String display:
//   - TruncateRunes: UTF-8 safe truncation with ellipsis
//   - TruncateWidth: terminal-column aware truncation (CJK, emoji)
//   - StringWidth / PadWidth: display width measurement and padding
//
// Type conversion:
//   - IntToString, Int64ToString, FloatToString
//
// File operations:
//   - AtomicWriteFile: crash-safe file writing with fsync
//
// # Usage
//
//	// Truncate a conversation title for the history list
//	title := util.TruncateRunes(conv.Title, 50)
//
//	// Write the conversation file atomically
//	err := util.AtomicWriteFile(path, data, 0600)
package util
