// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package styles provides the visual styling system for the Ava TUI.

This package defines the color palette and typography used throughout the
application. All colors use Lip Gloss AdaptiveColor so the same style tokens
read well on both light and dark terminals.

# Color System (colors.go)

## Primary Accent Colors

  - Violet - Primary accent for Ava's messages and selections
  - Magenta - Secondary brand accent for user highlights
  - Teal - External links (Confluence pages and other URLs)
  - Sky - Document references from the retrieval corpus
  - Emerald - Success states and a reachable backend
  - Amber - Warnings and the knowledge-gap notice
  - Rose - Errors

## Semantic Colors

Message bubbles and citation elements use semantic tokens rather than raw
accents:

	UserBubbleBg      - Background for user messages
	AssistantBubbleFg - Text color for Ava's messages
	CitationDoc       - Ordinal markers that resolve to documents
	CitationLink      - Ordinal markers that resolve to external links
	GapNoticeFg       - The "answer may be incomplete" notice

## Surface and Text Colors

Layered surfaces (Base, Surface, SurfaceDim, Overlay) give panels depth;
text colors (TextPrimary, TextSecondary, TextMuted, TextInverse) give
content hierarchy.

# Theme System (theme.go)

The Theme struct carries every lipgloss.Style the UI renders with, plus the
detected terminal capabilities:

	theme := styles.NewTheme()
	if theme.IsDark {
		// Dark terminal detected
	}

NewThemeWithMode honors the ui.theme config key ("light", "dark", "auto").

# Animation System (animations.go)

Spinner frame sets and the progress bar used by the status bar's context
gauge. All frames are ASCII so the UI degrades cleanly over SSH and in
limited terminals.
*/
package styles
