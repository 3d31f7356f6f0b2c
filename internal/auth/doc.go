// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the session credential for the ava backend.
//
// The credential is a bearer token issued by the organisation's
// identity provider. It lives in a session-scoped in-memory store that
// the API client reads through the TokenSource interface; nothing else
// in the client touches it. Optionally the token is persisted across
// sessions in an encrypted vault: AES-256-GCM with a master key held
// by a platform key store (DPAPI on Windows, a permission-checked file
// elsewhere) or derived from a passphrase via PBKDF2-SHA-256.
//
// # Key Types
//
//   - SessionStore: in-memory token holder, satisfies the API client's
//     TokenSource
//   - Vault: encrypted at-rest persistence for the token
//   - KeyStore: platform-specific master key storage
//   - TokenStatus: unverified JWT inspection (expiry, identity)
//
// # Usage
//
//	store := auth.NewSessionStore()
//	vault, err := auth.NewVault(auth.VaultConfig{})
//	if err == nil && vault.IsInitialized() {
//		if tok, err := vault.UnsealToken(); err == nil {
//			store.Set(tok)
//		}
//	}
//	client := api.NewClient(baseURL, store)
//
// Expiry is read from the token itself (unverified decode); the client
// warns shortly before expiry rather than failing mid-stream.
package auth
