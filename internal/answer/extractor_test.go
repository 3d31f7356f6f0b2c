// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"reflect"
	"strings"
	"testing"
)

// TestRepeatedCitationSharesOrdinal covers the reference-number stability
// contract: citing the same source twice yields one citation entry and the
// same marker both times.
func TestRepeatedCitationSharesOrdinal(t *testing.T) {
	corpus := NewCorpus([]string{"report.pdf section 1", "other.pdf"})
	ex := New(corpus)

	res := ex.Extract("See [report.pdf] for details [report.pdf]", true)

	if len(res.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(res.Citations))
	}
	c := res.Citations[0]
	if c.RawToken != "report.pdf" || c.Kind != KindDocument || c.Ordinal != 1 {
		t.Errorf("citation = %+v", c)
	}

	var markers []int
	for _, s := range res.Segments {
		if s.Kind == SegmentCitation {
			markers = append(markers, s.Citation.Ordinal)
		}
	}
	if !reflect.DeepEqual(markers, []int{1, 1}) {
		t.Errorf("marker ordinals = %v, want [1 1]", markers)
	}
	if got := res.PlainText(); got != "See [1] for details [1]" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestExternalLinkCitation(t *testing.T) {
	token := "CONFLUENCE_LINK|||https://wiki.example.com/x|||Page+Title"
	corpus := NewCorpus([]string{token + " - excerpt of the page body"})
	ex := New(corpus)

	res := ex.Extract("["+token+"]", true)

	if len(res.Citations) != 1 {
		t.Fatalf("citations = %d, want 1: %q", len(res.Citations), res.PlainText())
	}
	c := res.Citations[0]
	if c.Kind != KindExternalLink {
		t.Errorf("kind = %v, want KindExternalLink", c.Kind)
	}
	if c.DisplayTitle != "Page Title" {
		t.Errorf("title = %q, want %q", c.DisplayTitle, "Page Title")
	}
	if c.TargetURL != "https://wiki.example.com/x" {
		t.Errorf("url = %q", c.TargetURL)
	}
	if c.Ordinal != 1 {
		t.Errorf("ordinal = %d, want 1", c.Ordinal)
	}
}

// TestConservativeRejection: tokens the corpus does not confirm stay in
// the output as literal bracket text, and produce no citation.
func TestConservativeRejection(t *testing.T) {
	corpus := NewCorpus([]string{"report.pdf overview"})
	ex := New(corpus)

	tests := []struct {
		name string
		in   string
	}{
		{"unknown document", "see [missing.pdf] here"},
		{"prose brackets", "array[index] notation"},
		{"unknown link", "[CONFLUENCE_LINK|||https://other.example.com/y|||Nope]"},
		{"malformed link", "[CONFLUENCE_LINK|||report.pdf]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ex.Extract(tt.in, true)
			if len(res.Citations) != 0 {
				t.Fatalf("citations = %v, want none", res.Citations)
			}
			if got := res.PlainText(); got != tt.in {
				t.Errorf("PlainText() = %q, want input unchanged %q", got, tt.in)
			}
		})
	}
}

func TestCaseInsensitiveMatchForDocumentsOnly(t *testing.T) {
	corpus := NewCorpus([]string{
		"REPORT.PDF overview",
		"confluence_link|||https://w/x|||t body",
	})
	ex := New(corpus)

	res := ex.Extract("[report.pdf]", true)
	if len(res.Citations) != 1 {
		t.Fatalf("document should match case-insensitively, got %q", res.PlainText())
	}

	// The same leniency must not apply to links: the corpus entry is
	// lowercase, the token uppercase, so confirmation fails.
	res = ex.Extract("[CONFLUENCE_LINK|||https://w/x|||t]", true)
	if len(res.Citations) != 0 {
		t.Fatalf("link matched case-insensitively: %+v", res.Citations[0])
	}
}

// TestStreamingTruncation: a trailing unclosed bracket is withheld while
// streaming, then rendered once the stream completes and the bracket
// closes.
func TestStreamingTruncation(t *testing.T) {
	corpus := NewCorpus([]string{"PARTIAL.pdf data"})
	ex := New(corpus)

	partial := ex.Extract("Background reading: [PARTIAL", false)
	if got := partial.PlainText(); got != "Background reading: " {
		t.Errorf("partial PlainText() = %q, want truncated at the bracket", got)
	}
	if len(partial.Citations) != 0 {
		t.Errorf("partial citations = %v, want none", partial.Citations)
	}

	final := ex.Extract("Background reading: [PARTIAL.pdf]", true)
	if len(final.Citations) != 1 {
		t.Fatalf("final citations = %d, want 1", len(final.Citations))
	}
	if got := final.PlainText(); got != "Background reading: [1]" {
		t.Errorf("final PlainText() = %q", got)
	}
}

func TestClosedBracketNeedsNoTruncation(t *testing.T) {
	corpus := NewCorpus([]string{"a.pdf x"})
	ex := New(corpus)

	res := ex.Extract("done [a.pdf] and more text", false)
	if got := res.PlainText(); got != "done [1] and more text" {
		t.Errorf("PlainText() = %q", got)
	}
}

// TestSideChannelRoundTrip: prefix + sentinel region + suffix renders as
// prefix + suffix with the payload extracted.
func TestSideChannelRoundTrip(t *testing.T) {
	body := "<mxGraphModel><root></root></mxGraphModel>"
	ex := New(NewCorpus(nil))

	res := ex.Extract("intro DIAGRAM_START"+body+"DIAGRAM_END outro", true)

	if got := res.PlainText(); got != "intro  outro" {
		t.Errorf("PlainText() = %q, want sentinel region removed", got)
	}
	if res.Diagram == nil || res.Diagram.Body != body {
		t.Fatalf("diagram = %+v, want body %q", res.Diagram, body)
	}
}

func TestKnowledgeGapFlag(t *testing.T) {
	ex := New(NewCorpus(nil))

	res := ex.Extract("I could not find this. [KNOWLEDGE_GAP]", true)

	if !res.HasKnowledgeGap {
		t.Error("HasKnowledgeGap = false, want true")
	}
	if strings.Contains(res.PlainText(), "KNOWLEDGE_GAP") {
		t.Errorf("marker not stripped: %q", res.PlainText())
	}

	res = ex.Extract("All covered.", true)
	if res.HasKnowledgeGap {
		t.Error("HasKnowledgeGap = true for text without the marker")
	}
}

// TestIdempotentOnComplete: extracting the same completed text twice
// yields identical results; the ordinal map is the only carried state.
func TestIdempotentOnComplete(t *testing.T) {
	corpus := NewCorpus([]string{"a.pdf x", "b.pdf y"})
	ex := New(corpus)
	text := "First [a.pdf] then [b.pdf] then [a.pdf] again"

	first := ex.Extract(text, true)
	second := ex.Extract(text, true)

	if !reflect.DeepEqual(first.Segments, second.Segments) {
		t.Errorf("segments differ between passes:\n%+v\n%+v", first.Segments, second.Segments)
	}
	if !reflect.DeepEqual(first.Citations, second.Citations) {
		t.Errorf("citations differ between passes")
	}
	if first.PlainText() != "First [1] then [2] then [1] again" {
		t.Errorf("PlainText() = %q", first.PlainText())
	}
}

// TestOrdinalsStableAcrossGrowingText simulates streaming passes over a
// growing buffer: ordinals assigned early never change.
func TestOrdinalsStableAcrossGrowingText(t *testing.T) {
	corpus := NewCorpus([]string{"a.pdf x", "b.pdf y"})
	ex := New(corpus)

	res := ex.Extract("cite [b.pdf]", false)
	if len(res.Citations) != 1 || res.Citations[0].Ordinal != 1 {
		t.Fatalf("first pass citations = %+v", res.Citations)
	}

	res = ex.Extract("cite [b.pdf] and [a.pdf] and [b.pdf]", true)
	if len(res.Citations) != 2 {
		t.Fatalf("citations = %d, want 2", len(res.Citations))
	}
	if res.Citations[0].RawToken != "b.pdf" || res.Citations[0].Ordinal != 1 {
		t.Errorf("b.pdf ordinal = %d, want 1 (assigned on first pass)", res.Citations[0].Ordinal)
	}
	if res.Citations[1].RawToken != "a.pdf" || res.Citations[1].Ordinal != 2 {
		t.Errorf("a.pdf ordinal = %d, want 2", res.Citations[1].Ordinal)
	}
}

func TestCombinedCitationRepair(t *testing.T) {
	corpus := NewCorpus([]string{"a.pdf x", "b.pdf y"})
	ex := New(corpus)

	res := ex.Extract("Sources: [a.pdf, b.pdf]", true)

	if len(res.Citations) != 2 {
		t.Fatalf("citations = %d, want 2: %q", len(res.Citations), res.PlainText())
	}
	if got := res.PlainText(); got != "Sources: [1][2]" {
		t.Errorf("PlainText() = %q", got)
	}
}

func TestCombinedCitationPartialFailureFallsBack(t *testing.T) {
	// b.pdf is shape-valid but absent from the corpus; the whole span
	// must fall back to literal text rather than half-resolve.
	corpus := NewCorpus([]string{"a.pdf x"})
	ex := New(corpus)

	res := ex.Extract("Sources: [a.pdf, b.pdf]", true)

	if got := res.PlainText(); got != "Sources: [a.pdf, b.pdf]" {
		t.Errorf("PlainText() = %q, want literal fallback", got)
	}
	if len(res.Citations) != 0 {
		t.Errorf("citations = %v, want none", res.Citations)
	}
}

func TestLiteralFallbackConsumesNoOrdinal(t *testing.T) {
	// The valid half of a rejected combined span must not reserve a
	// reference number: the next real citation still starts at [1].
	corpus := NewCorpus([]string{"a.pdf x"})
	ex := New(corpus)

	ex.Extract("Sources: [a.pdf, b.pdf]", true)
	res := ex.Extract("Sources: [a.pdf, b.pdf] plus [a.pdf]", true)

	if len(res.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(res.Citations))
	}
	if res.Citations[0].Ordinal != 1 {
		t.Errorf("ordinal = %d, want 1", res.Citations[0].Ordinal)
	}
}

func TestQuotedCandidateNormalized(t *testing.T) {
	corpus := NewCorpus([]string{"report.pdf body"})
	ex := New(corpus)

	res := ex.Extract(`check ["report.pdf"]`, true)

	if len(res.Citations) != 1 {
		t.Fatalf("citations = %d, want 1", len(res.Citations))
	}
	if res.Citations[0].RawToken != "report.pdf" {
		t.Errorf("raw token = %q, want quotes stripped", res.Citations[0].RawToken)
	}
}

func TestUnclosedBracketInCompleteTextStaysLiteral(t *testing.T) {
	ex := New(NewCorpus([]string{"a.pdf"}))

	res := ex.Extract("dangling [a.pdf", true)

	if got := res.PlainText(); got != "dangling [a.pdf" {
		t.Errorf("PlainText() = %q, want literal", got)
	}
	if len(res.Citations) != 0 {
		t.Errorf("citations = %v, want none", res.Citations)
	}
}

func TestEmptyAndWhitespaceInput(t *testing.T) {
	ex := New(NewCorpus(nil))

	for _, in := range []string{"", "   ", "\n\t \n"} {
		res := ex.Extract(in, true)
		if len(res.Segments) != 0 {
			t.Errorf("Extract(%q) segments = %+v, want none", in, res.Segments)
		}
	}
}

func TestActivationHandler(t *testing.T) {
	ex := New(NewCorpus([]string{"a.pdf x"}))

	var activated []string
	ex.SetActivationHandler(func(c Citation) {
		activated = append(activated, c.RawToken)
	})

	res := ex.Extract("[a.pdf]", true)
	if len(res.Citations) != 1 {
		t.Fatal("setup failed: citation expected")
	}

	ex.Activate(*res.Citations[0])
	if !reflect.DeepEqual(activated, []string{"a.pdf"}) {
		t.Errorf("activated = %v, want [a.pdf]", activated)
	}
}

func TestResetClearsOrdinals(t *testing.T) {
	corpus := NewCorpus([]string{"a.pdf x", "b.pdf y"})
	ex := New(corpus)

	ex.Extract("[a.pdf]", true)
	ex.Reset(corpus)

	res := ex.Extract("[b.pdf]", true)
	if len(res.Citations) != 1 || res.Citations[0].Ordinal != 1 {
		t.Errorf("after Reset, citations = %+v, want fresh ordinal 1", res.Citations)
	}
}
