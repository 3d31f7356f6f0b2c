// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api provides the HTTP client for the Ava chat backend.
//
// The backend exposes a chat-completion style API: /chat for one-shot
// answers, /chat/stream for NDJSON token streaming, plus /config,
// /feedback, /welcome, /auth_setup and /content for the surrounding
// product surface. Every request carries a bearer token supplied by a
// TokenSource; the client never stores credentials itself.
//
// # Key Types
//
//   - Client: HTTP client for the backend API
//   - ChatRequest: history plus per-request overrides (bot, retrieval)
//   - ChatChunk: one NDJSON line of a streaming answer
//   - StreamReader: line-oriented chunk reader with malformed-line tolerance
//   - StreamError: stream failure preserving the partial answer
//
// # Usage
//
// Create a client and stream an answer:
//
//	client := api.NewClient(api.StaticToken("eyJ..."))
//	err := client.ChatStream(ctx, &api.ChatRequest{
//	    Messages: []api.Message{{Role: "user", Content: "What is the travel policy?"}},
//	    Context:  api.RequestContext{Overrides: api.Overrides{BotID: "ava"}},
//	}, func(chunk api.ChatChunk) {
//	    fmt.Print(chunk.Content())
//	})
//
// The first chunk of a stream carries the grounding sources for the
// turn (ChatChunk.Context.DataPoints.Text); subsequent chunks carry
// token deltas only.
package api
