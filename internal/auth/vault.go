// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides encrypted at-rest persistence for the session
// credential.
//
// The vault encrypts with AES-256-GCM. The master key either comes
// from the platform key store (generated random) or is derived from a
// passphrase with PBKDF2-SHA-256. Files on disk carry an ENC: prefix
// over base64(nonce || ciphertext || tag) and are written atomically
// with 0600 permissions.
package auth

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/crypto/pbkdf2"

	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// CONSTANTS
// =============================================================================

// EncryptedPrefix marks a file as vault-encrypted.
// Format: ENC:base64(nonce || ciphertext || tag)
const EncryptedPrefix = "ENC:"

// NonceSize is the AES-GCM nonce size (96 bits).
const NonceSize = 12

// KeySize is the AES-256 key size.
const KeySize = 32

// SaltSize is the PBKDF2 salt size.
const SaltSize = 32

// PBKDF2Iterations follows the OWASP 2023 recommendation for
// PBKDF2-SHA-256 against modern brute-force hardware.
const PBKDF2Iterations = 600000

const (
	tokenFileName   = "token.enc"
	appLockFileName = "applock.enc"
	saltFileName    = "vault.salt"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrVaultNotInitialized indicates no master key is loaded.
	ErrVaultNotInitialized = errors.New("vault not initialized: run 'ava login --save'")
	// ErrInvalidCiphertext indicates the stored data is malformed.
	ErrInvalidCiphertext = errors.New("invalid ciphertext format")
	// ErrDecryptionFailed indicates a wrong key or tampered data.
	ErrDecryptionFailed = errors.New("decryption failed: authentication tag mismatch")
	// ErrNoStoredToken indicates the vault holds no sealed token.
	ErrNoStoredToken = errors.New("no stored credential")
)

// =============================================================================
// HELPERS
// =============================================================================

// ZeroBytes overwrites sensitive byte slices.
// SECURITY: Zero key material to limit exposure in crash dumps.
func ZeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}

// GenerateMasterKey returns a cryptographically random AES-256 key.
func GenerateMasterKey() ([]byte, error) {
	key := make([]byte, KeySize)
	if _, err := io.ReadFull(rand.Reader, key); err != nil {
		return nil, fmt.Errorf("failed to generate master key: %w", err)
	}
	return key, nil
}

// GenerateSalt returns a cryptographically random PBKDF2 salt.
func GenerateSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	return salt, nil
}

// DeriveKey derives an AES-256 key from a passphrase and salt using
// PBKDF2-SHA-256.
func DeriveKey(passphrase string, salt []byte) []byte {
	return pbkdf2.Key([]byte(passphrase), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// =============================================================================
// VAULT
// =============================================================================

// VaultConfig holds vault construction options.
// Zero values select the defaults.
type VaultConfig struct {
	// Dir is where sealed files live. Default: ~/.ava/credentials
	Dir string
	// KeyStore holds the master key. Default: the platform store.
	KeyStore KeyStore
}

// DefaultVaultDir returns the default directory for sealed files.
func DefaultVaultDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ava", "credentials")
	}
	return filepath.Join(home, ".ava", "credentials")
}

// Vault provides encrypted persistence for the session credential.
//
// Thread-safety: all methods are safe for concurrent use.
type Vault struct {
	mu       sync.RWMutex
	dir      string
	keyStore KeyStore
	aead     cipher.AEAD
}

// NewVault creates a vault, loading the master key if one is already
// stored. A vault whose key exists but cannot be loaded is returned
// uninitialized rather than failing, so the caller can offer recovery.
func NewVault(config VaultConfig) (*Vault, error) {
	if config.Dir == "" {
		config.Dir = DefaultVaultDir()
	}
	if config.KeyStore == nil {
		config.KeyStore = NewKeyStore()
	}

	v := &Vault{
		dir:      config.Dir,
		keyStore: config.KeyStore,
	}

	if v.keyStore.Exists() {
		if err := v.loadKey(); err != nil {
			return v, nil
		}
	}
	return v, nil
}

// Initialize generates a random master key and stores it in the
// platform key store. Called once on first 'ava login --save'.
func (v *Vault) Initialize() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	key, err := GenerateMasterKey()
	if err != nil {
		return err
	}
	defer ZeroBytes(key)

	if err := v.keyStore.Store(key); err != nil {
		return fmt.Errorf("failed to store master key: %w", err)
	}

	if err := v.initCipher(key); err != nil {
		_ = v.keyStore.Delete()
		return err
	}
	return nil
}

// InitializeWithPassphrase derives the master key from a passphrase.
// The salt is written next to the sealed files; the derived key is
// additionally kept in the key store so later sessions can unseal
// without re-prompting.
func (v *Vault) InitializeWithPassphrase(passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, err := GenerateSalt()
	if err != nil {
		return err
	}

	key := DeriveKey(passphrase, salt)
	defer ZeroBytes(key)

	saltPath := filepath.Join(v.dir, saltFileName)
	if err := util.AtomicWriteFileWithDir(saltPath, salt, 0600, 0700); err != nil {
		return fmt.Errorf("failed to save salt: %w", err)
	}

	if err := v.keyStore.Store(key); err != nil {
		_ = os.Remove(saltPath)
		return fmt.Errorf("failed to store derived key: %w", err)
	}

	if err := v.initCipher(key); err != nil {
		_ = v.keyStore.Delete()
		_ = os.Remove(saltPath)
		return err
	}
	return nil
}

// UnlockWithPassphrase re-derives the master key from the stored salt.
// Used when the key store is unavailable (e.g. restored backup on a
// new machine). A wrong passphrase surfaces as ErrDecryptionFailed on
// the next unseal, not here; GCM's tag is the integrity check.
func (v *Vault) UnlockWithPassphrase(passphrase string) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	salt, err := os.ReadFile(filepath.Join(v.dir, saltFileName))
	if err != nil {
		return fmt.Errorf("no passphrase vault here: salt file not found: %w", err)
	}

	key := DeriveKey(passphrase, salt)
	defer ZeroBytes(key)

	return v.initCipher(key)
}

// loadKey pulls the master key from the key store.
func (v *Vault) loadKey() error {
	key, err := v.keyStore.Retrieve()
	if err != nil {
		return fmt.Errorf("failed to retrieve master key: %w", err)
	}
	defer ZeroBytes(key)

	return v.initCipher(key)
}

// initCipher builds the AES-GCM AEAD from a key.
func (v *Vault) initCipher(key []byte) error {
	block, err := aes.NewCipher(key)
	if err != nil {
		return fmt.Errorf("failed to create AES cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM cipher: %w", err)
	}
	v.aead = gcm
	return nil
}

// IsInitialized reports whether a master key is loaded.
func (v *Vault) IsInitialized() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.aead != nil
}

// Dir returns the vault directory.
func (v *Vault) Dir() string {
	return v.dir
}

// =============================================================================
// TOKEN SEAL / UNSEAL
// =============================================================================

// SealToken encrypts and persists the bearer token.
func (v *Vault) SealToken(token string) error {
	return v.sealFile(tokenFileName, []byte(token))
}

// UnsealToken decrypts the persisted bearer token.
// Returns ErrNoStoredToken when none has been sealed.
func (v *Vault) UnsealToken() (string, error) {
	data, err := v.unsealFile(tokenFileName)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// HasToken reports whether a sealed token exists on disk.
func (v *Vault) HasToken() bool {
	_, err := os.Stat(filepath.Join(v.dir, tokenFileName))
	return err == nil
}

// ClearToken removes the sealed token.
func (v *Vault) ClearToken() error {
	if err := os.Remove(filepath.Join(v.dir, tokenFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove sealed token: %w", err)
	}
	return nil
}

// Destroy removes everything: sealed files, salt, and the master key.
func (v *Vault) Destroy() error {
	v.mu.Lock()
	defer v.mu.Unlock()

	var firstErr error
	for _, name := range []string{tokenFileName, appLockFileName, saltFileName} {
		if err := os.Remove(filepath.Join(v.dir, name)); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = err
		}
	}
	if err := v.keyStore.Delete(); err != nil && firstErr == nil {
		firstErr = err
	}
	v.aead = nil
	return firstErr
}

// =============================================================================
// ENCRYPTION PRIMITIVES
// =============================================================================

// encrypt seals plaintext as nonce || ciphertext || tag.
func (v *Vault) encrypt(plaintext []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.aead == nil {
		return nil, ErrVaultNotInitialized
	}

	nonce := make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	return v.aead.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt opens nonce || ciphertext || tag.
func (v *Vault) decrypt(data []byte) ([]byte, error) {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.aead == nil {
		return nil, ErrVaultNotInitialized
	}
	if len(data) < NonceSize {
		return nil, ErrInvalidCiphertext
	}

	nonce, ciphertext := data[:NonceSize], data[NonceSize:]
	plaintext, err := v.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return plaintext, nil
}

// sealFile encrypts plaintext and writes it under the vault dir.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func (v *Vault) sealFile(name string, plaintext []byte) error {
	ciphertext, err := v.encrypt(plaintext)
	if err != nil {
		return err
	}

	output := []byte(EncryptedPrefix + base64.StdEncoding.EncodeToString(ciphertext))
	path := filepath.Join(v.dir, name)
	if err := util.AtomicWriteFileWithDir(path, output, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write sealed file: %w", err)
	}
	return nil
}

// unsealFile reads and decrypts a file written by sealFile.
func (v *Vault) unsealFile(name string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(v.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoStoredToken
		}
		return nil, fmt.Errorf("failed to read sealed file: %w", err)
	}

	content := string(data)
	if !strings.HasPrefix(content, EncryptedPrefix) {
		return nil, ErrInvalidCiphertext
	}

	ciphertext, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(content, EncryptedPrefix))
	if err != nil {
		return nil, ErrInvalidCiphertext
	}

	return v.decrypt(ciphertext)
}

// IsEncrypted checks whether a value carries the vault's ENC: prefix.
func IsEncrypted(value string) bool {
	return strings.HasPrefix(value, EncryptedPrefix)
}
