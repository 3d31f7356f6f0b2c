// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"fmt"
	"sort"
	"strings"
)

// =============================================================================
// SEGMENTS
// =============================================================================

// SegmentKind discriminates the two segment variants.
type SegmentKind int

const (
	// SegmentText is a literal text run, shown verbatim.
	SegmentText SegmentKind = iota
	// SegmentCitation is an inline reference marker; Citation is set.
	SegmentCitation
)

// Segment is one piece of the parsed answer in display order. The
// presentation layer walks the slice and renders text runs as-is and
// citation segments as clickable reference markers.
type Segment struct {
	Kind     SegmentKind
	Text     string
	Citation *Citation
}

// Result is the outcome of one extraction pass.
type Result struct {
	// Segments is the parsed answer in original order.
	Segments []Segment
	// Citations holds the distinct valid citations in first-seen order.
	Citations []*Citation
	// HasKnowledgeGap is set when the knowledge-gap marker was present.
	HasKnowledgeGap bool
	// Diagram and StoryMap are the side-channel payloads, nil if absent.
	Diagram  *Payload
	StoryMap *Payload
}

// PlainText flattens the segments into a plain string, rendering citation
// markers as bracketed ordinals ("[1]"). Used by the line-mode CLI and by
// tests; the TUI renders segments itself.
func (r *Result) PlainText() string {
	var b strings.Builder
	for _, s := range r.Segments {
		switch s.Kind {
		case SegmentCitation:
			fmt.Fprintf(&b, "[%d]", s.Citation.Ordinal)
		default:
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

// =============================================================================
// EXTRACTOR
// =============================================================================

// ActivationHandler receives the raw token of a citation the user
// activated. Navigation is the host's business, not this package's.
type ActivationHandler func(c Citation)

// Extractor runs the parsing pipeline for one assistant turn. It carries
// exactly one piece of state between Extract calls: the ordinal map, so
// that re-running on a longer prefix of the same answer never renumbers a
// reference the user has already seen.
type Extractor struct {
	corpus     *Corpus
	seen       map[string]*Citation // normalized token -> first-assigned citation
	onActivate ActivationHandler
}

// New creates an extractor bound to the grounding corpus for a turn.
// A nil corpus is allowed and confirms nothing.
func New(corpus *Corpus) *Extractor {
	return &Extractor{
		corpus: corpus,
		seen:   make(map[string]*Citation),
	}
}

// SetActivationHandler installs the host callback for citation activation.
func (e *Extractor) SetActivationHandler(h ActivationHandler) {
	e.onActivate = h
}

// Activate invokes the host callback for a citation marker the user
// selected. Safe to call with no handler installed.
func (e *Extractor) Activate(c Citation) {
	if e.onActivate != nil {
		e.onActivate(c)
	}
}

// Reset clears the ordinal state for reuse on a new turn.
func (e *Extractor) Reset(corpus *Corpus) {
	e.corpus = corpus
	e.seen = make(map[string]*Citation)
}

// Extract runs the full pipeline over the answer text received so far.
// complete reports whether the stream has ended; while false, a trailing
// half-typed citation is withheld from output. Extract never fails: every
// malformed construct degrades to literal text or an omitted payload.
//
// Pipeline order: trim -> streaming guard -> side-channel extraction ->
// knowledge-gap flag -> bracket tokenization -> per-candidate validation.
func (e *Extractor) Extract(text string, complete bool) *Result {
	res := &Result{}

	s := strings.TrimRight(text, " \t\r\n")

	if !complete {
		s = truncateUnclosedBracket(s)
	}

	if strings.Contains(s, KnowledgeGapMarker) {
		res.HasKnowledgeGap = true
	}

	s, res.Diagram, res.StoryMap = extractSideChannels(s)

	if res.HasKnowledgeGap {
		s = strings.ReplaceAll(s, KnowledgeGapMarker, "")
	}

	e.tokenize(s, res)
	e.collectCitations(res)
	return res
}

// truncateUnclosedBracket cuts a partial citation off the end of
// still-streaming text. Scanning backward from the end: a '[' found
// before any ']' means a marker is mid-flight, and everything from that
// '[' on is withheld until the close arrives.
func truncateUnclosedBracket(s string) string {
	for i := len(s) - 1; i >= 0; i-- {
		switch s[i] {
		case ']':
			return s
		case '[':
			return s[:i]
		}
	}
	return s
}

// =============================================================================
// TOKENIZATION
// =============================================================================

// tokenize splits the text on bracket spans and appends segments to res.
// Text outside brackets passes through verbatim; each bracket interior is
// a citation candidate.
func (e *Extractor) tokenize(s string, res *Result) {
	rest := s
	for {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			appendText(res, rest)
			return
		}
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			// Unclosed bracket in completed text: literal.
			appendText(res, rest)
			return
		}
		appendText(res, rest[:open])
		inner := rest[open+1 : open+end]
		e.emitCandidate(inner, res)
		rest = rest[open+end+1:]
	}
}

// emitCandidate validates one bracket interior and appends either citation
// segments or the original literal bracket text.
func (e *Extractor) emitCandidate(inner string, res *Result) {
	normalized := normalizeCandidate(inner)
	if normalized == "" {
		appendText(res, "["+inner+"]")
		return
	}

	// Validate every part before assigning any ordinal, so a span that
	// falls back to literal text never consumes a reference number.
	tokens := splitCombined(normalized)
	classes := make([]Classification, len(tokens))
	for i, tok := range tokens {
		cls := Classify(tok)
		if cls.Kind == KindInvalid || !e.corpus.confirms(tok, cls.Kind) {
			appendText(res, "["+inner+"]")
			return
		}
		classes[i] = cls
	}
	for i, tok := range tokens {
		c := e.intern(tok, classes[i])
		res.Segments = append(res.Segments, Segment{Kind: SegmentCitation, Citation: c})
	}
}

// intern returns the citation for a confirmed token, assigning the next
// ordinal on first sight and reusing the original thereafter.
func (e *Extractor) intern(token string, cls Classification) *Citation {
	if c, ok := e.seen[token]; ok {
		return c
	}
	c := &Citation{
		RawToken:     token,
		Kind:         cls.Kind,
		DisplayTitle: cls.Title,
		TargetURL:    cls.URL,
		Ordinal:      len(e.seen) + 1,
	}
	e.seen[token] = c
	return c
}

// appendText adds a text run, merging into a preceding text segment.
func appendText(res *Result, s string) {
	if s == "" {
		return
	}
	n := len(res.Segments)
	if n > 0 && res.Segments[n-1].Kind == SegmentText {
		res.Segments[n-1].Text += s
		return
	}
	res.Segments = append(res.Segments, Segment{Kind: SegmentText, Text: s})
}

// collectCitations fills res.Citations with the distinct citations of this
// pass, ordered by ordinal.
func (e *Extractor) collectCitations(res *Result) {
	distinct := make(map[int]*Citation)
	for _, s := range res.Segments {
		if s.Kind == SegmentCitation {
			distinct[s.Citation.Ordinal] = s.Citation
		}
	}
	if len(distinct) == 0 {
		return
	}
	res.Citations = make([]*Citation, 0, len(distinct))
	for _, c := range distinct {
		res.Citations = append(res.Citations, c)
	}
	sort.Slice(res.Citations, func(i, j int) bool {
		return res.Citations[i].Ordinal < res.Citations[j].Ordinal
	})
}
