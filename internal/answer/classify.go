// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"net/url"
	"regexp"
	"strings"
)

// =============================================================================
// CITATION KINDS
// =============================================================================

// CitationKind identifies what a bracket token resolved to.
type CitationKind int

const (
	// KindInvalid marks a token that matched no citation shape.
	KindInvalid CitationKind = iota
	// KindDocument is a retrieved document reference, e.g. "DLP_Policy.pdf".
	KindDocument
	// KindExternalLink is a wiki link token: CONFLUENCE_LINK|||url|||title.
	KindExternalLink
)

// String returns a human-readable kind name.
func (k CitationKind) String() string {
	switch k {
	case KindDocument:
		return "document"
	case KindExternalLink:
		return "link"
	default:
		return "invalid"
	}
}

// Citation is one validated reference extracted from answer text.
type Citation struct {
	// RawToken is the normalized bracket-interior token that matched the
	// corpus. It is the key handed back to activation handlers.
	RawToken string
	// Kind is the structural classification of the token.
	Kind CitationKind
	// DisplayTitle is what the reference list shows: the filename for
	// documents, the decoded page title for links.
	DisplayTitle string
	// TargetURL is the link destination; empty for document references.
	TargetURL string
	// Ordinal is the stable 1-based reference number, assigned on first
	// sight within the turn and reused on every re-citation.
	Ordinal int
}

// =============================================================================
// SHAPE CLASSIFICATION
// =============================================================================

// External-link tokens are generated as PREFIX|||url|||title.
const (
	linkPrefix    = "CONFLUENCE_LINK"
	linkSeparator = "|||"
)

// docRefPattern matches a bare filename with a recognized document
// extension. The interior may not contain brackets or pipes; the extension
// comparison is case-insensitive, the name itself is left untouched.
var docRefPattern = regexp.MustCompile(`(?i)^[^|\[\]]+\.(pdf|docx?|pptx?|xlsx?|csv|txt|md|html?)$`)

// Classification is the outcome of the shape decision table for one
// candidate token. URL and Title are only set for the kinds that carry
// them; an invalid classification leaves every field zero.
type Classification struct {
	Kind  CitationKind
	Title string
	URL   string
}

// Classify applies the citation shape decision table to a normalized
// candidate token. It is a pure function: no corpus access, no state.
//
// Decision table, first match wins:
//
//	1. token begins with "CONFLUENCE_LINK|||"
//	   and splits into exactly prefix + url + title,
//	   url parses as absolute http(s), title non-empty  -> KindExternalLink
//	2. token contains "|||" or the link prefix anywhere
//	   but failed rule 1                                 -> KindInvalid
//	   (a malformed link token must not fall through and
//	   pass as a document name)
//	3. token matches filename-with-document-extension
//	   and contains no "://"                             -> KindDocument
//	4. anything else                                     -> KindInvalid
//
// Link titles are percent-decoded with '+' treated as space; a title that
// fails percent-decoding is used verbatim rather than rejected.
func Classify(token string) Classification {
	if token == "" {
		return Classification{}
	}

	if strings.Contains(token, linkSeparator) || strings.Contains(token, linkPrefix) {
		return classifyLink(token)
	}

	if docRefPattern.MatchString(token) && !strings.Contains(token, "://") {
		return Classification{Kind: KindDocument, Title: token}
	}

	return Classification{}
}

// classifyLink validates the three-field external link shape.
func classifyLink(token string) Classification {
	if !strings.HasPrefix(token, linkPrefix+linkSeparator) {
		return Classification{}
	}
	parts := strings.Split(token, linkSeparator)
	if len(parts) != 3 {
		return Classification{}
	}
	rawURL, rawTitle := parts[1], parts[2]
	if rawURL == "" || rawTitle == "" {
		return Classification{}
	}
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Classification{}
	}
	return Classification{
		Kind:  KindExternalLink,
		Title: decodeLinkTitle(rawTitle),
		URL:   rawURL,
	}
}

// decodeLinkTitle percent-decodes a link title and maps '+' to space.
// Malformed escapes fall back to the raw title.
func decodeLinkTitle(raw string) string {
	if dec, err := url.QueryUnescape(raw); err == nil {
		return dec
	}
	return strings.ReplaceAll(raw, "+", " ")
}

// =============================================================================
// CANDIDATE NORMALIZATION
// =============================================================================

// normalizeCandidate prepares a bracket-interior span for classification:
// surrounding whitespace goes, wrapping quote pairs go, and a doubled link
// prefix (a known generation quirk: CONFLUENCE_LINKCONFLUENCE_LINK|||...)
// collapses to a single one.
func normalizeCandidate(raw string) string {
	tok := strings.TrimSpace(raw)
	tok = trimWrappingQuotes(tok)
	for strings.HasPrefix(tok, linkPrefix+linkPrefix) {
		tok = strings.TrimPrefix(tok, linkPrefix)
	}
	for strings.HasPrefix(tok, linkPrefix+linkSeparator+linkPrefix+linkSeparator) {
		tok = strings.TrimPrefix(tok, linkPrefix+linkSeparator)
	}
	return tok
}

// trimWrappingQuotes strips one matched pair of single or double quotes.
func trimWrappingQuotes(s string) string {
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}

// splitCombined repairs the combined-citation quirk where the model packs
// several citations into one bracket pair: "[a.pdf, b.pdf]". The split is
// only performed when every comma-separated part independently classifies
// as a citation shape; otherwise the candidate is returned whole, since a
// comma may simply be part of a filename.
func splitCombined(token string) []string {
	if !strings.Contains(token, ",") {
		return []string{token}
	}
	parts := strings.Split(token, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = normalizeCandidate(p)
		if p == "" || Classify(p).Kind == KindInvalid {
			return []string{token}
		}
		out = append(out, p)
	}
	return out
}
