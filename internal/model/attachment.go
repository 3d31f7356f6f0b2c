// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations and messages.
package model

import (
	"path/filepath"
	"strings"
)

// =============================================================================
// ATTACHMENT TYPE
// =============================================================================

// Attachment is the metadata for a file the user sent with a message.
// Only metadata travels with the conversation; the upload itself goes
// through the backend attachment endpoint before the chat request.
type Attachment struct {
	Name      string `json:"name"`
	MIMEType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`

	// Local path the file was read from (not persisted; the file may be
	// gone by the time the conversation is reloaded)
	Path string `json:"-"`
}

// NewAttachment builds attachment metadata from a local file path.
func NewAttachment(path string, size int64) Attachment {
	name := filepath.Base(path)
	return Attachment{
		Name:      name,
		MIMEType:  mimeTypeForName(name),
		SizeBytes: size,
		Path:      path,
	}
}

// FormatSize returns a human-readable size like "12.3KB" or "4.0MB".
func (a Attachment) FormatSize() string {
	const (
		kb = 1024
		mb = 1024 * kb
	)

	switch {
	case a.SizeBytes >= mb:
		return formatFloat64(float64(a.SizeBytes)/float64(mb)) + "MB"
	case a.SizeBytes >= kb:
		return formatFloat64(float64(a.SizeBytes)/float64(kb)) + "KB"
	default:
		return formatInt(int(a.SizeBytes)) + "B"
	}
}

// mimeTypeForName maps common document extensions to MIME types. The
// backend only accepts document formats, so the table is short; anything
// else is sent as octet-stream and rejected server-side.
func mimeTypeForName(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".doc":
		return "application/msword"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".ppt":
		return "application/vnd.ms-powerpoint"
	case ".pptx":
		return "application/vnd.openxmlformats-officedocument.presentationml.presentation"
	case ".xls":
		return "application/vnd.ms-excel"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	case ".csv":
		return "text/csv"
	case ".txt":
		return "text/plain"
	case ".md":
		return "text/markdown"
	case ".html", ".htm":
		return "text/html"
	default:
		return "application/octet-stream"
	}
}
