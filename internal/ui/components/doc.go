// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package components provides the visual UI components for the Ava TUI.

Each component owns its rendering and, where it reacts to input, follows the
Bubble Tea value-receiver Update convention. Components receive a shared
*styles.Theme at construction and never create their own color tokens.

# Components

  - Welcome - The startup screen: logo, backend greeting, suggested prompts
  - StatusBar - Bottom bar: state, bot, backend, context usage, reveal backlog
  - ErrorDisplay - Bordered error box with actionable suggestions
  - CitationPanel - Side panel listing the current answer's references
  - ArtifactView - Overlay for diagram XML and story-map tables
  - CodeBlock - Syntax-highlighted fenced code for the transcript

Rendering helpers that do not hold state (footnote lists, the knowledge-gap
notice, the artifact hint line) are plain functions taking the theme.
*/
package components
