// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package answer parses assistant answer text into renderable segments.
//
// Generated answers arrive as free-form prose with three kinds of embedded
// structure:
//
//   - Inline bracket citations ([Policy.pdf], [CONFLUENCE_LINK|||url|||title])
//     that must be validated against the grounding sources returned for the
//     turn before they are shown as references.
//   - Sentinel-delimited side-channel payloads (process-diagram XML between
//     DIAGRAM_START/DIAGRAM_END, story-map tables between
//     STORYMAP_START/STORYMAP_END) that are lifted out of the prose and
//     surfaced as separate artifacts.
//   - A knowledge-gap marker the model emits when the retrieved sources did
//     not cover the question.
//
// The entry point is the Extractor, created once per assistant turn with the
// turn's grounding Corpus. Extract may be called repeatedly while the answer
// is still streaming; it is safe on partial text (a trailing half-typed
// citation is hidden until it closes) and keeps citation ordinals stable
// across calls, so a source cited twice always shows the same reference
// number.
//
// Output is a neutral []Segment (text runs and citation markers) plus the
// citation list and any extracted payloads. Rendering those segments into
// styled terminal output is the presentation layer's concern; this package
// produces no markup.
//
// Parsing is deliberately conservative: a bracket span that does not
// classify cleanly, or that cannot be confirmed against the corpus, is
// passed through as literal text rather than guessed at. No input, however
// malformed, causes Extract to fail.
package answer
