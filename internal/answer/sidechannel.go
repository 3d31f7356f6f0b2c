// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package answer

import (
	"html"
	"regexp"
	"strings"
)

// =============================================================================
// SENTINEL MARKERS
// =============================================================================

// Sentinel literals the backend prompt instructs the model to emit around
// structured payloads. They must match the prompt templates exactly.
const (
	DiagramStartMarker  = "DIAGRAM_START"
	DiagramEndMarker    = "DIAGRAM_END"
	StoryMapStartMarker = "STORYMAP_START"
	StoryMapEndMarker   = "STORYMAP_END"

	// KnowledgeGapMarker is the literal the model emits when the retrieved
	// sources did not cover the question. It is stripped from display text
	// and surfaced as a flag instead.
	KnowledgeGapMarker = "[KNOWLEDGE_GAP]"
)

// PayloadKind identifies the type of a side-channel payload.
type PayloadKind int

const (
	// PayloadProcessDiagram is diagram XML (draw.io style export).
	PayloadProcessDiagram PayloadKind = iota + 1
	// PayloadStoryMap is a markdown table describing a story map.
	PayloadStoryMap
)

// String returns a human-readable payload kind name.
func (k PayloadKind) String() string {
	switch k {
	case PayloadProcessDiagram:
		return "diagram"
	case PayloadStoryMap:
		return "storymap"
	default:
		return "unknown"
	}
}

// Payload is one structured block lifted out of the answer text.
type Payload struct {
	Kind PayloadKind
	// Body is the raw content between the sentinels, HTML-entity decoded.
	// A leading title annotation, when present, is kept in the body.
	Body string
	// Title is parsed from a leading comment annotation; empty if none.
	Title string
}

// =============================================================================
// REGION EXTRACTION
// =============================================================================

// fencedBlockPattern matches a markdown fenced code block; group 1 is the
// info string, group 2 the body. Used as the alternate diagram encoding.
var fencedBlockPattern = regexp.MustCompile("(?s)```([^\n`]*)\n(.*?)```")

// extractSideChannels lifts sentinel-delimited regions out of the text.
// Every sentinel region is removed from the returned display text whether
// or not its body validates; an invalid body just means no payload is
// recorded for it. At most one payload per kind survives — the last
// complete region wins. When no diagram sentinels are present, a fenced
// code block whose body validates as diagram XML is accepted instead (an
// older prompt encoding the model still falls back to); a fenced block
// that does not validate is ordinary code and stays in the text.
func extractSideChannels(text string) (string, *Payload, *Payload) {
	var diagram, storyMap *Payload

	text, diagram = extractSentinelRegions(text, DiagramStartMarker, DiagramEndMarker, PayloadProcessDiagram)
	text, storyMap = extractSentinelRegions(text, StoryMapStartMarker, StoryMapEndMarker, PayloadStoryMap)

	if diagram == nil {
		text, diagram = extractFencedDiagram(text)
	}

	return text, diagram, storyMap
}

// extractSentinelRegions removes every start..end region for one sentinel
// pair and returns the payload from the last region whose body validates.
// An unpaired trailing start marker (still streaming in) is left in the
// text; the streaming guard upstream keeps it out of display until the
// closing marker arrives.
func extractSentinelRegions(text, start, end string, kind PayloadKind) (string, *Payload) {
	var payload *Payload
	var out strings.Builder
	rest := text

	for {
		i := strings.Index(rest, start)
		if i < 0 {
			break
		}
		j := strings.Index(rest[i+len(start):], end)
		if j < 0 {
			// Opened but not yet closed: keep everything from the marker on.
			break
		}
		body := rest[i+len(start) : i+len(start)+j]
		out.WriteString(rest[:i])
		rest = rest[i+len(start)+j+len(end):]

		if p := buildPayload(kind, body); p != nil {
			payload = p
		}
	}
	out.WriteString(rest)
	return out.String(), payload
}

// extractFencedDiagram scans fenced code blocks for one that validates as
// diagram XML. Only a validating block is removed from the text.
func extractFencedDiagram(text string) (string, *Payload) {
	var payload *Payload
	matched := ""

	for _, m := range fencedBlockPattern.FindAllStringSubmatch(text, -1) {
		if p := buildPayload(PayloadProcessDiagram, m[2]); p != nil {
			payload = p
			matched = m[0]
		}
	}
	if payload == nil {
		return text, nil
	}
	// Remove the winning block only; other fences are real code blocks.
	idx := strings.LastIndex(text, matched)
	return text[:idx] + text[idx+len(matched):], payload
}

// buildPayload decodes and validates one region body. Returns nil when the
// body fails the structural check for its kind.
func buildPayload(kind PayloadKind, rawBody string) *Payload {
	body := strings.TrimSpace(html.UnescapeString(rawBody))
	if body == "" {
		return nil
	}

	switch kind {
	case PayloadProcessDiagram:
		if !validDiagramBody(body) {
			return nil
		}
	case PayloadStoryMap:
		if !validTableBody(body) {
			return nil
		}
	default:
		return nil
	}

	return &Payload{Kind: kind, Body: body, Title: parsePayloadTitle(body)}
}

// =============================================================================
// STRUCTURAL VALIDITY
// =============================================================================

// xmlRootPattern captures the root element name at the start of a body
// (leading comments and title annotations skipped by the caller).
var xmlRootPattern = regexp.MustCompile(`^<([A-Za-z][A-Za-z0-9:_-]*)[\s>]`)

// xmlCommentPattern matches one leading XML/HTML comment.
var xmlCommentPattern = regexp.MustCompile(`(?s)^\s*<!--.*?-->\s*`)

// validDiagramBody checks that the body is XML-shaped: it opens with a
// root element whose matching close tag is present. Prose with incidental
// inline tags, half-streamed XML, and self-closing fragments all fail.
func validDiagramBody(body string) bool {
	s := strings.TrimSpace(body)
	for {
		trimmed := xmlCommentPattern.ReplaceAllString(s, "")
		if trimmed == s {
			break
		}
		s = trimmed
	}
	m := xmlRootPattern.FindStringSubmatch(s)
	if m == nil {
		return false
	}
	return strings.Contains(s, "</"+m[1]+">")
}

// tableSeparatorPattern matches a markdown table separator row
// (e.g. "| --- | :--- |").
var tableSeparatorPattern = regexp.MustCompile(`^\s*\|?\s*:?-{3,}:?\s*(\|\s*:?-{3,}:?\s*)*\|?\s*$`)

// validTableBody checks for an actual markdown table: a header row with a
// column separator, the dashed separator row, and at least one data row.
func validTableBody(body string) bool {
	lines := strings.Split(body, "\n")
	for i := 0; i < len(lines)-2; i++ {
		if !strings.Contains(lines[i], "|") {
			continue
		}
		if !strings.Contains(lines[i+1], "-") || !tableSeparatorPattern.MatchString(lines[i+1]) {
			continue
		}
		for _, data := range lines[i+2:] {
			if strings.Contains(data, "|") {
				return true
			}
		}
	}
	return false
}

// =============================================================================
// TITLE ANNOTATION
// =============================================================================

// htmlTitlePattern and mermaidTitlePattern match the two leading comment
// forms a payload may carry: <!-- title: X --> or %% title: X.
var (
	htmlTitlePattern    = regexp.MustCompile(`(?i)^\s*<!--\s*title:\s*(.+?)\s*-->`)
	mermaidTitlePattern = regexp.MustCompile(`(?i)^\s*%%\s*title:\s*(.+?)\s*(?:\n|$)`)
)

// parsePayloadTitle reads a leading title annotation from a payload body.
func parsePayloadTitle(body string) string {
	if m := htmlTitlePattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	if m := mermaidTitlePattern.FindStringSubmatch(body); m != nil {
		return m[1]
	}
	return ""
}
