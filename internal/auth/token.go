// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the session credential for the ava backend.
//
// This file holds the in-memory session store and the unverified JWT
// inspection used to surface expiry warnings before the backend starts
// rejecting requests.
package auth

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// ExpiryWarningWindow is how close to expiry a token gets before the
// status line starts warning the user to re-login.
const ExpiryWarningWindow = 5 * time.Minute

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrNoCredential indicates no token is held for this session.
	ErrNoCredential = errors.New("no credential: run 'ava login'")
	// ErrTokenExpired indicates the held token is past its expiry.
	ErrTokenExpired = errors.New("credential expired: run 'ava login'")
)

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore holds the bearer token for the current session.
// It satisfies the API client's TokenSource interface, so the client
// picks up a replaced token on the next request without re-wiring.
//
// Thread-safety: all methods are safe for concurrent use.
type SessionStore struct {
	mu    sync.RWMutex
	token string
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Token returns the held bearer token.
// Returns ErrNoCredential when the store is empty and ErrTokenExpired
// when the token carries an exp claim that has passed.
func (s *SessionStore) Token() (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return "", ErrNoCredential
	}
	status := InspectToken(s.token)
	if status.Expired {
		return "", ErrTokenExpired
	}
	return s.token, nil
}

// Set replaces the held token.
func (s *SessionStore) Set(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// Clear removes the held token.
func (s *SessionStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = ""
}

// HasToken returns true if a token is held, expired or not.
func (s *SessionStore) HasToken() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token != ""
}

// Status inspects the held token without returning it.
func (s *SessionStore) Status() TokenStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.token == "" {
		return TokenStatus{}
	}
	return InspectToken(s.token)
}

// =============================================================================
// TOKEN INSPECTION
// =============================================================================

// TokenStatus describes what an unverified decode of the token reveals.
// ExpiresAt is the zero time when the token is opaque (not a JWT) or
// carries no exp claim; such tokens are treated as non-expiring here
// and left for the backend to judge.
type TokenStatus struct {
	Present      bool
	ExpiresAt    time.Time
	Expired      bool
	ExpiringSoon bool
	Email        string
	Name         string
}

// InspectToken decodes a bearer token without verifying its signature
// and reports expiry and identity claims.
//
// SECURITY: The decode is unverified by design. The client never
// grants anything based on these claims; the backend validates the
// signature on every request. This is only used to warn before expiry
// and to show who is logged in.
func InspectToken(token string) TokenStatus {
	status := TokenStatus{Present: token != ""}
	if token == "" {
		return status
	}

	parser := jwt.NewParser()
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		// Opaque token. Nothing to inspect.
		return status
	}

	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		status.ExpiresAt = exp.Time
		now := time.Now()
		status.Expired = now.After(exp.Time)
		status.ExpiringSoon = !status.Expired && now.Add(ExpiryWarningWindow).After(exp.Time)
	}

	// MSAL access tokens carry the login in preferred_username; id
	// tokens and some providers use upn or email.
	for _, claim := range []string{"preferred_username", "upn", "email"} {
		if v, ok := claims[claim].(string); ok && v != "" {
			status.Email = v
			break
		}
	}
	if v, ok := claims["name"].(string); ok {
		status.Name = v
	}

	return status
}

// TimeRemaining returns how long until the token expires.
// Returns zero when expiry is unknown or already past.
func (ts TokenStatus) TimeRemaining() time.Duration {
	if ts.ExpiresAt.IsZero() {
		return 0
	}
	remaining := time.Until(ts.ExpiresAt)
	if remaining < 0 {
		return 0
	}
	return remaining
}
