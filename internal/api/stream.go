// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"
)

// =============================================================================
// STREAMING CONSTANTS
// =============================================================================

// MaxLineSize is the maximum allowed size for a single NDJSON line.
// Longer lines are discarded without failing the stream.
const MaxLineSize = 1024 * 1024 // 1MB

// StreamCallback is called for each chunk received during streaming.
// Calls happen synchronously in arrival order.
type StreamCallback func(chunk ChatChunk)

// =============================================================================
// STREAM ERROR
// =============================================================================

// StreamError represents a failure during streaming, preserving any
// partial answer received before the error. The partial text is kept so
// the UI can freeze the turn instead of blanking it.
type StreamError struct {
	Partial string // Content received before the error
	Err     error
}

// Error implements the error interface.
func (e *StreamError) Error() string {
	if e.Partial != "" {
		return fmt.Sprintf("stream error (partial answer: %d chars): %v", len(e.Partial), e.Err)
	}
	return fmt.Sprintf("stream error: %v", e.Err)
}

// Unwrap returns the underlying error.
func (e *StreamError) Unwrap() error {
	return e.Err
}

// =============================================================================
// STREAM READER
// =============================================================================

// StreamReader parses the NDJSON chat stream line by line. The backend
// sends one JSON chunk per line: an opening chunk with the grounding
// context, then token-delta chunks, and in the failure case a final
// line with an error message. The stream has no explicit done marker;
// EOF after at least the opening chunk means the answer is complete.
type StreamReader struct {
	reader *bufio.Reader

	// PERFORMANCE: strings.Builder avoids quadratic allocations
	accumulator strings.Builder
	lineBuf     []byte

	tokenCount   int
	skippedLines int
	startTime    time.Time

	// Captured from the opening chunk
	sources      []string
	followups    []string
	sessionState string
}

// NewStreamReader creates a stream reader from an io.Reader.
func NewStreamReader(r io.Reader) *StreamReader {
	return &StreamReader{
		reader:    bufio.NewReader(r),
		startTime: time.Now(),
	}
}

// Process reads the stream and calls the callback for each chunk.
// Blocks until the stream ends or the context is cancelled. Error
// chunks are not delivered to the callback; they surface as a
// *StreamError return carrying the partial answer. Context errors are
// returned unwrapped so callers can treat cancellation as quiet.
func (s *StreamReader) Process(ctx context.Context, callback StreamCallback) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		chunk, err := s.readChunk()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			// A cancelled context closes the underlying body; report
			// that as plain cancellation, not a stream failure.
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return &StreamError{Partial: s.accumulator.String(), Err: err}
		}
		if chunk == nil {
			// Blank, malformed, or oversized line
			continue
		}

		if chunk.HasError() {
			return &StreamError{
				Partial: s.accumulator.String(),
				Err:     &APIError{Message: chunk.ErrorMessage},
			}
		}

		s.capture(chunk)
		callback(*chunk)
	}
}

// readChunk reads and parses a single NDJSON line. Returns (nil, nil)
// for lines that should be skipped.
func (s *StreamReader) readChunk() (*ChatChunk, error) {
	line, err := s.readLine()
	if err != nil {
		if err == io.EOF && len(line) == 0 {
			return nil, io.EOF
		}
		if len(line) == 0 {
			return nil, err
		}
		// Fall through to parse the final unterminated line
	}

	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	var chunk ChatChunk
	if unmarshalErr := json.Unmarshal(line, &chunk); unmarshalErr != nil {
		// Skip malformed lines
		s.skippedLines++
		log.Printf("STREAM: skipped malformed line | n=%d err=%v", s.skippedLines, unmarshalErr)
		return nil, nil
	}

	return &chunk, nil
}

// readLine returns the next line from the stream. Lines longer than
// MaxLineSize are discarded in fixed-size fragments so a runaway line
// never fails the stream or exhausts memory.
func (s *StreamReader) readLine() ([]byte, error) {
	s.lineBuf = s.lineBuf[:0]
	discarding := false

	for {
		frag, err := s.reader.ReadSlice('\n')
		if !discarding {
			s.lineBuf = append(s.lineBuf, frag...)
			if len(s.lineBuf) > MaxLineSize {
				discarding = true
				s.lineBuf = s.lineBuf[:0]
			}
		}

		if err == bufio.ErrBufferFull {
			continue
		}
		if err != nil {
			if discarding {
				return nil, err
			}
			return s.lineBuf, err
		}

		if discarding {
			// Oversized line fully consumed; move on to the next one
			s.skippedLines++
			discarding = false
			s.lineBuf = s.lineBuf[:0]
			continue
		}
		return s.lineBuf, nil
	}
}

// capture records chunk state the caller may want after the stream ends.
func (s *StreamReader) capture(chunk *ChatChunk) {
	if content := chunk.Content(); content != "" {
		s.accumulator.WriteString(content)
		s.tokenCount++
	}
	if srcs := chunk.Sources(); len(srcs) > 0 {
		s.sources = srcs
	}
	if chunk.Context != nil && len(chunk.Context.FollowupQuestions) > 0 {
		s.followups = chunk.Context.FollowupQuestions
	}
	if chunk.SessionState != "" {
		s.sessionState = chunk.SessionState
	}
}

// GetAccumulated returns all content received so far.
func (s *StreamReader) GetAccumulated() string {
	return s.accumulator.String()
}

// GetTokenCount returns the number of content chunks received.
func (s *StreamReader) GetTokenCount() int {
	return s.tokenCount
}

// GetSkippedLines returns the number of lines dropped as malformed or
// oversized.
func (s *StreamReader) GetSkippedLines() int {
	return s.skippedLines
}

// GetSources returns the grounding corpus from the opening chunk.
func (s *StreamReader) GetSources() []string {
	return s.sources
}

// GetFollowups returns the suggested follow-up questions, if any.
func (s *StreamReader) GetFollowups() []string {
	return s.followups
}

// GetSessionState returns the session token for the next request.
func (s *StreamReader) GetSessionState() string {
	return s.sessionState
}

// =============================================================================
// STREAM ACCUMULATOR
// =============================================================================

// StreamAccumulator collects streaming chunks into a complete answer
// with timing statistics. Used by the line-mode CLI, where nothing is
// revealed incrementally.
type StreamAccumulator struct {
	// PERFORMANCE: strings.Builder avoids quadratic allocations
	content strings.Builder

	Sources      []string
	Followups    []string
	SessionState string

	TokenCount   int
	StartTime    time.Time
	FirstTokenAt time.Time
}

// NewStreamAccumulator creates a new accumulator.
func NewStreamAccumulator() *StreamAccumulator {
	return &StreamAccumulator{
		StartTime: time.Now(),
	}
}

// Add processes a new chunk.
func (a *StreamAccumulator) Add(chunk ChatChunk) {
	if content := chunk.Content(); content != "" {
		if a.FirstTokenAt.IsZero() {
			a.FirstTokenAt = time.Now()
		}
		a.content.WriteString(content)
		a.TokenCount++
	}
	if srcs := chunk.Sources(); len(srcs) > 0 {
		a.Sources = srcs
	}
	if chunk.Context != nil && len(chunk.Context.FollowupQuestions) > 0 {
		a.Followups = chunk.Context.FollowupQuestions
	}
	if chunk.SessionState != "" {
		a.SessionState = chunk.SessionState
	}
}

// Callback returns a StreamCallback that feeds this accumulator.
func (a *StreamAccumulator) Callback() StreamCallback {
	return func(chunk ChatChunk) {
		a.Add(chunk)
	}
}

// GetContent returns the accumulated answer text.
func (a *StreamAccumulator) GetContent() string {
	return a.content.String()
}

// TTFT returns the time from request start to the first token.
func (a *StreamAccumulator) TTFT() time.Duration {
	if a.FirstTokenAt.IsZero() {
		return 0
	}
	return a.FirstTokenAt.Sub(a.StartTime)
}
