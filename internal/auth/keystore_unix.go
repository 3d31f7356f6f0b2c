// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows
// +build !windows

// Package auth provides the Unix master key store.
//
// On Unix systems the key lives in a file guarded by permission checks:
// the directory must be 0700 and the file 0600 or stricter, verified on
// every store and retrieve. A key readable by group or world is treated
// as compromised and refused.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
)

// =============================================================================
// UNIX KEY STORE
// =============================================================================

// UnixKeyStore stores the master key in a permission-checked file.
//
// For stronger protection users can point the vault at an external
// secret manager instead; this implementation is the portable default.
type UnixKeyStore struct {
	path string
}

// NewKeyStore returns the platform key store.
func NewKeyStore() KeyStore {
	return &UnixKeyStore{
		path: defaultKeyStorePath(),
	}
}

// NewKeyStoreAt returns a Unix key store rooted at a specific path.
func NewKeyStoreAt(path string) KeyStore {
	return &UnixKeyStore{path: path}
}

// Store saves the key and verifies the resulting permissions.
func (u *UnixKeyStore) Store(key []byte) error {
	dir := filepath.Dir(u.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	// SECURITY: Refuse directories with group/world permissions.
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to stat key directory: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return fmt.Errorf("key directory has insecure permissions (%o), "+
			"must be 0700 or stricter: fix with chmod 700 %s", mode, dir)
	}

	if err := os.WriteFile(u.path, key, 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}

	// SECURITY: Verify the file landed with strict permissions. A
	// hostile umask can loosen WriteFile's mode; delete rather than
	// leave a readable key behind.
	fileInfo, err := os.Stat(u.path)
	if err != nil {
		return fmt.Errorf("failed to stat key file: %w", err)
	}
	if mode := fileInfo.Mode().Perm(); mode&0077 != 0 {
		_ = os.Remove(u.path)
		return fmt.Errorf("key file was created with insecure permissions (%o); "+
			"the file has been deleted, please retry", mode)
	}

	return nil
}

// Retrieve reads the key after verifying permissions.
func (u *UnixKeyStore) Retrieve() ([]byte, error) {
	dir := filepath.Dir(u.path)
	dirInfo, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key directory: %w", err)
	}
	if mode := dirInfo.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("key directory has insecure permissions (%o), "+
			"must be 0700 or stricter: fix with chmod 700 %s", mode, dir)
	}

	info, err := os.Stat(u.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat key file: %w", err)
	}
	if mode := info.Mode().Perm(); mode&0077 != 0 {
		return nil, fmt.Errorf("key file has insecure permissions (%o), "+
			"must be 0600 or stricter: fix with chmod 600 %s", mode, u.path)
	}

	key, err := os.ReadFile(u.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

// Delete overwrites the key file with zeros, then removes it.
func (u *UnixKeyStore) Delete() error {
	info, err := os.Stat(u.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to stat key file for deletion: %w", err)
	}

	// Best-effort overwrite before unlink.
	if size := info.Size(); size > 0 {
		zeros := make([]byte, size)
		if f, err := os.OpenFile(u.path, os.O_WRONLY, 0600); err == nil {
			_, _ = f.Write(zeros)
			_ = f.Sync()
			_ = f.Close()
		}
	}

	if err := os.Remove(u.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks if the key file exists.
func (u *UnixKeyStore) Exists() bool {
	_, err := os.Stat(u.path)
	return err == nil
}
