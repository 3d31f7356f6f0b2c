// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth tests for the session store and token inspection.
package auth

import (
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
)

// makeJWT signs a token with a throwaway key. Inspection never checks
// the signature, so the key does not matter.
func makeJWT(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-signing-key"))
	require.NoError(t, err)
	return signed
}

// =============================================================================
// SESSION STORE TESTS
// =============================================================================

func TestSessionStore_Lifecycle(t *testing.T) {
	store := NewSessionStore()

	_, err := store.Token()
	require.ErrorIs(t, err, ErrNoCredential, "empty store must report no credential")
	require.False(t, store.HasToken())

	store.Set("opaque-bearer-token")
	tok, err := store.Token()
	require.NoError(t, err)
	require.Equal(t, "opaque-bearer-token", tok)
	require.True(t, store.HasToken())

	store.Clear()
	_, err = store.Token()
	require.ErrorIs(t, err, ErrNoCredential)
	require.False(t, store.HasToken())
}

func TestSessionStore_ExpiredTokenRejected(t *testing.T) {
	expired := makeJWT(t, jwt.MapClaims{
		"exp":                time.Now().Add(-time.Hour).Unix(),
		"preferred_username": "rory.maher@vocus.com.au",
	})

	store := NewSessionStore()
	store.Set(expired)

	_, err := store.Token()
	require.ErrorIs(t, err, ErrTokenExpired)
	// The token stays held so status can still show who was logged in.
	require.True(t, store.HasToken())
}

func TestSessionStore_ConcurrentAccess(t *testing.T) {
	store := NewSessionStore()
	store.Set("initial")

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			store.Set("replaced")
			_, _ = store.Token()
			_ = store.Status()
			_ = store.HasToken()
		}()
	}
	wg.Wait()
	// Should not panic or race
}

// =============================================================================
// TOKEN INSPECTION TESTS
// =============================================================================

func TestInspectToken_ValidJWT(t *testing.T) {
	token := makeJWT(t, jwt.MapClaims{
		"exp":                time.Now().Add(time.Hour).Unix(),
		"preferred_username": "rory.maher@vocus.com.au",
		"name":               "Rory Maher",
	})

	status := InspectToken(token)
	require.True(t, status.Present)
	require.False(t, status.Expired)
	require.False(t, status.ExpiringSoon)
	require.Equal(t, "rory.maher@vocus.com.au", status.Email)
	require.Equal(t, "Rory Maher", status.Name)
	require.Greater(t, status.TimeRemaining(), 50*time.Minute)
}

func TestInspectToken_ExpiringSoon(t *testing.T) {
	token := makeJWT(t, jwt.MapClaims{
		"exp": time.Now().Add(2 * time.Minute).Unix(),
	})

	status := InspectToken(token)
	require.False(t, status.Expired)
	require.True(t, status.ExpiringSoon, "2 minutes from expiry must warn")
}

func TestInspectToken_Expired(t *testing.T) {
	token := makeJWT(t, jwt.MapClaims{
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	status := InspectToken(token)
	require.True(t, status.Expired)
	require.False(t, status.ExpiringSoon)
	require.Equal(t, time.Duration(0), status.TimeRemaining())
}

func TestInspectToken_EmailClaimFallback(t *testing.T) {
	// Some providers use upn or email instead of preferred_username.
	token := makeJWT(t, jwt.MapClaims{
		"exp":   time.Now().Add(time.Hour).Unix(),
		"email": "contractor@example.com",
	})

	status := InspectToken(token)
	require.Equal(t, "contractor@example.com", status.Email)
}

func TestInspectToken_OpaqueToken(t *testing.T) {
	status := InspectToken("not-a-jwt-at-all")
	require.True(t, status.Present)
	require.True(t, status.ExpiresAt.IsZero(), "opaque tokens have unknown expiry")
	require.False(t, status.Expired, "unknown expiry must not count as expired")
	require.Empty(t, status.Email)
}

func TestInspectToken_Empty(t *testing.T) {
	status := InspectToken("")
	require.False(t, status.Present)
	require.False(t, status.Expired)
}

func TestInspectToken_NoExpClaim(t *testing.T) {
	token := makeJWT(t, jwt.MapClaims{
		"preferred_username": "rory.maher@vocus.com.au",
	})

	status := InspectToken(token)
	require.True(t, status.Present)
	require.True(t, status.ExpiresAt.IsZero())
	require.False(t, status.Expired)
	require.Equal(t, "rory.maher@vocus.com.au", status.Email)
}
