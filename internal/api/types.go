// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Ava chat backend.
package api

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message represents a chat message in the conversation history.
type Message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // The message content
}

// Overrides tunes retrieval and bot selection for a single request.
// Everything is optional; the backend applies its own defaults.
type Overrides struct {
	BotID                    string   `json:"bot_id,omitempty"`                     // Which bot profile answers
	RetrievalMode            string   `json:"retrieval_mode,omitempty"`             // "text", "vectors", "hybrid"
	SemanticRanker           bool     `json:"semantic_ranker,omitempty"`            // Use the semantic reranker
	QueryRewriting           bool     `json:"query_rewriting,omitempty"`            // Rewrite the search query
	SuggestFollowupQuestions bool     `json:"suggest_followup_questions,omitempty"` // Ask for follow-up suggestions
	UseAgenticRetrieval      bool     `json:"use_agentic_retrieval,omitempty"`      // Multi-step retrieval
	Top                      int      `json:"top,omitempty"`                        // Search hit count
	Temperature              *float64 `json:"temperature,omitempty"`                // Pointer so 0.0 survives
	ReasoningEffort          string   `json:"reasoning_effort,omitempty"`           // For reasoning models
	PromptTemplate           string   `json:"prompt_template,omitempty"`            // Override system prompt
	ModelOverride            string   `json:"model_override,omitempty"`             // Override bot model
	ConsumeAttachments       bool     `json:"consume_attachments,omitempty"`        // Fold staged uploads into this turn
}

// RequestContext wraps the overrides in the envelope the backend expects.
type RequestContext struct {
	Overrides Overrides `json:"overrides"`
}

// ChatRequest is the request body for /chat and /chat/stream.
type ChatRequest struct {
	Messages []Message      `json:"messages"` // Conversation history, oldest first
	Context  RequestContext `json:"context"`
	// SessionState is the opaque token from the previous answer in this
	// conversation, echoed back so the backend can line up its history.
	SessionState string `json:"session_state,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Delta carries the incremental part of a streamed answer.
type Delta struct {
	Role    string `json:"role,omitempty"`    // Set on the first chunk only
	Content string `json:"content,omitempty"` // Token text, empty on the first chunk
}

// DataPoints holds the retrieval results grounding an answer. Each entry
// is "sourcefile: content" and doubles as the corpus citations are
// validated against.
type DataPoints struct {
	Text []string `json:"text"`
}

// ChunkContext is the retrieval metadata attached to the first chunk of
// a stream (and to non-streaming responses).
type ChunkContext struct {
	DataPoints        DataPoints `json:"data_points"`
	Thoughts          []Thought  `json:"thoughts,omitempty"`
	FollowupQuestions []string   `json:"followup_questions,omitempty"`
}

// Thought is one step of the backend's answer pipeline, for debugging.
type Thought struct {
	Title       string `json:"title"`
	Description any    `json:"description"` // String or structured, backend-dependent
}

// ChatChunk is one NDJSON line of a streaming answer. Exactly one of
// the three shapes appears per line: the opening chunk (Delta.Role +
// Context), a token chunk (Delta.Content), or an error.
type ChatChunk struct {
	Delta        *Delta        `json:"delta,omitempty"`
	Context      *ChunkContext `json:"context,omitempty"`
	SessionState string        `json:"session_state,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
}

// Content returns the token text from this chunk, if any.
func (c *ChatChunk) Content() string {
	if c.Delta != nil {
		return c.Delta.Content
	}
	return ""
}

// IsOpening returns true for the first chunk of a stream, which carries
// the grounding context instead of token text.
func (c *ChatChunk) IsOpening() bool {
	return c.Delta != nil && c.Delta.Role != "" && c.Context != nil
}

// HasError returns true if the backend reported a failure mid-stream.
func (c *ChatChunk) HasError() bool {
	return c.ErrorMessage != ""
}

// Sources returns the grounding corpus entries carried by this chunk.
func (c *ChatChunk) Sources() []string {
	if c.Context == nil {
		return nil
	}
	return c.Context.DataPoints.Text
}

// ChatResponse is the non-streaming response from /chat.
type ChatResponse struct {
	Message      Message       `json:"message"`
	Context      *ChunkContext `json:"context,omitempty"`
	SessionState string        `json:"session_state,omitempty"`
	ErrorMessage string        `json:"error,omitempty"`
}

// Sources returns the grounding corpus for the answer.
func (r *ChatResponse) Sources() []string {
	if r.Context == nil {
		return nil
	}
	return r.Context.DataPoints.Text
}

// =============================================================================
// CONFIG TYPES
// =============================================================================

// BackendConfig is the feature-flag document from GET /config. Field
// names mirror the backend's camelCase JSON exactly.
type BackendConfig struct {
	ShowGPT4VOptions           bool   `json:"showGPT4VOptions"`
	ShowSemanticRankerOption   bool   `json:"showSemanticRankerOption"`
	ShowQueryRewritingOption   bool   `json:"showQueryRewritingOption"`
	ShowReasoningEffortOption  bool   `json:"showReasoningEffortOption"`
	StreamingEnabled           bool   `json:"streamingEnabled"`
	DefaultReasoningEffort     string `json:"defaultReasoningEffort"`
	ShowVectorOption           bool   `json:"showVectorOption"`
	ShowUserUpload             bool   `json:"showUserUpload"`
	ShowLanguagePicker         bool   `json:"showLanguagePicker"`
	ShowSpeechInput            bool   `json:"showSpeechInput"`
	ShowSpeechOutputBrowser    bool   `json:"showSpeechOutputBrowser"`
	ShowSpeechOutputAzure      bool   `json:"showSpeechOutputAzure"`
	ShowChatHistoryBrowser     bool   `json:"showChatHistoryBrowser"`
	ShowChatHistoryCosmos      bool   `json:"showChatHistoryCosmos"`
	ShowAgenticRetrievalOption bool   `json:"showAgenticRetrievalOption"`

	// Bots advertised by the backend, merged into the built-in catalog.
	Bots []RemoteBot `json:"bots,omitempty"`
}

// RemoteBot is a bot profile as advertised by the backend.
type RemoteBot struct {
	ID                  string   `json:"id"`
	Label               string   `json:"label"`
	Description         string   `json:"description,omitempty"`
	Model               string   `json:"model,omitempty"`
	Examples            []string `json:"examples,omitempty"`
	AllowedEmails       []string `json:"allowed_emails,omitempty"`
	UseConfluenceSearch bool     `json:"use_confluence_search"`
}

// AuthSetup is the identity-provider configuration from GET /auth_setup.
// The client treats it as opaque apart from the enable flag.
type AuthSetup struct {
	UseLogin      bool           `json:"useLogin"`
	RequireAccess bool           `json:"requireAccessControl"`
	MSALConfig    map[string]any `json:"msalConfig,omitempty"`
	LoginRequest  map[string]any `json:"loginRequest,omitempty"`
}

// =============================================================================
// FEEDBACK TYPES
// =============================================================================

// FeedbackRequest is the body for POST /feedback.
type FeedbackRequest struct {
	ResponseID string `json:"responseId"`
	Feedback   string `json:"feedback"` // "positive" or "negative"
	Comments   string `json:"comments,omitempty"`
}

// FeedbackResponse is the acknowledgement from POST /feedback.
type FeedbackResponse struct {
	Message string `json:"message"`
	ID      string `json:"id,omitempty"`
}

// =============================================================================
// WELCOME TYPES
// =============================================================================

// WelcomeRequest is the body for POST /welcome.
type WelcomeRequest struct {
	UserDetails map[string]string `json:"userDetails"`
}

// WelcomeResponse carries the personalized greeting.
type WelcomeResponse struct {
	WelcomeMessage string `json:"welcomeMessage"`
}

// =============================================================================
// HELPER METHODS
// =============================================================================

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return Message{Role: "user", Content: content}
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return Message{Role: "assistant", Content: content}
}
