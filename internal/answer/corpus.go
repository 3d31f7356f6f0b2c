// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// GROUNDING CORPUS
// =============================================================================

// Corpus is the read-only set of source identifiers the backend retrieved
// for one turn. It is the validation oracle for citations: a bracket token
// only becomes a citation if the corpus confirms it. The corpus is never
// mutated by this package.
//
// Entries are the raw data-point strings the backend attaches to a turn,
// e.g. "DLP_Policy.pdf: Data handling requirements..." or
// "CONFLUENCE_LINK|||https://wiki.example.com/x|||Page+Title: body text".
type Corpus struct {
	entries []string
	folded  []string // fold-cased NFC forms, built lazily on first folded match
}

// NewCorpus builds a corpus from a flat list of source identifier strings.
// The slice is copied; later mutation of the argument has no effect.
func NewCorpus(entries []string) *Corpus {
	c := &Corpus{entries: make([]string, len(entries))}
	copy(c.entries, entries)
	return c
}

// Len returns the number of source entries.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the source entries.
func (c *Corpus) Entries() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.entries))
	copy(out, c.entries)
	return out
}

// confirms reports whether the candidate token is present in the corpus
// under the matching rule for its kind.
//
// Both kinds accept a case-sensitive match where a corpus entry equals,
// starts with, or contains the token (entries usually carry trailing
// content after the identifier). Document references additionally accept a
// case-insensitive substring match, because document names come back from
// the search index with inconsistent casing. External links get no such
// leniency: URLs are matched exactly as generated.
func (c *Corpus) confirms(token string, kind CitationKind) bool {
	if c == nil || token == "" {
		return false
	}
	for _, e := range c.entries {
		if strings.HasPrefix(e, token) || strings.Contains(e, token) {
			return true
		}
	}
	if kind != KindDocument {
		return false
	}
	c.buildFolded()
	want := foldKey(token)
	for _, f := range c.folded {
		if strings.Contains(f, want) {
			return true
		}
	}
	return false
}

// buildFolded materializes the fold-cased entry forms once.
func (c *Corpus) buildFolded() {
	if c.folded != nil {
		return
	}
	c.folded = make([]string, len(c.entries))
	for i, e := range c.entries {
		c.folded[i] = foldKey(e)
	}
}

// foldKey normalizes a string for case-insensitive comparison:
// NFC normalization first, then Unicode case folding.
func foldKey(s string) string {
	return cases.Fold().String(norm.NFC.String(s))
}
