// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth manages the session credential for the ava backend.
//
// This file defines the KeyStore interface for master key storage and
// the portable file-based implementation used in tests and as a
// fallback when no platform facility is available.
package auth

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// KEYSTORE INTERFACE
// =============================================================================

// KeyStore stores the vault's master key.
// Implementations are platform-specific:
//   - Windows: DPAPI, bound to the logged-in user
//   - elsewhere: a 0600 file under a 0700 directory with permission
//     checks on every access
type KeyStore interface {
	// Store securely stores the master key.
	Store(key []byte) error
	// Retrieve retrieves the master key.
	Retrieve() ([]byte, error)
	// Delete removes the master key.
	Delete() error
	// Exists checks if a key is stored.
	Exists() bool
}

// =============================================================================
// FILE-BASED KEYSTORE
// =============================================================================

// FileKeyStore stores the key in a plain file with restricted
// permissions. Used directly in tests and as the building block of the
// Unix store.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a file-based key store at the given path.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// Store saves the key with owner-only permissions.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (f *FileKeyStore) Store(key []byte) error {
	if err := util.AtomicWriteFileWithDir(f.path, key, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Retrieve reads the key from the file.
func (f *FileKeyStore) Retrieve() ([]byte, error) {
	key, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

// Delete removes the key file.
func (f *FileKeyStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks if the key file exists.
func (f *FileKeyStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// defaultKeyStorePath returns the default master key location.
func defaultKeyStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ava", "master.key")
	}
	return filepath.Join(home, ".ava", "master.key")
}
