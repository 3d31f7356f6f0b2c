// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package bot holds the catalog of assistant profiles the client can talk
// to. A profile is client-side metadata only: the display label, the model
// the backend will use, suggested starter prompts, and access rules. The
// backend owns the actual system prompts and retrieval behavior; the
// client just sends the chosen bot ID with each request.
package bot
