// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export renders conversations into portable documents: Markdown,
// HTML with embedded styling, and JSON.
//
// The Markdown and HTML exporters re-run citation extraction over every
// assistant answer, so sentinel payloads and raw citation tokens never leak
// into an export. Citations become numbered references with a per-answer
// reference list, knowledge-gap notices are called out, and diagram or
// story-map payloads are attached as labelled blocks. The JSON exporter is
// the exception: it writes the conversation verbatim so the file can be
// loaded straight back into the history store.
package export
