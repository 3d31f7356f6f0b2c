// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows
// +build windows

// Package auth provides the Windows master key store.
//
// The key is wrapped with DPAPI (CryptProtectData) before hitting disk,
// binding it to the logged-in user's credentials. No separate password
// is needed and the file alone is useless on another account.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"unsafe"

	"golang.org/x/sys/windows"
)

// =============================================================================
// WINDOWS DPAPI KEY STORE
// =============================================================================

// WindowsKeyStore stores the master key DPAPI-encrypted in a file.
type WindowsKeyStore struct {
	path string
}

// NewKeyStore returns the platform key store.
func NewKeyStore() KeyStore {
	return &WindowsKeyStore{
		path: defaultKeyStorePath(),
	}
}

// NewKeyStoreAt returns a Windows key store rooted at a specific path.
func NewKeyStoreAt(path string) KeyStore {
	return &WindowsKeyStore{path: path}
}

// Store encrypts the key with DPAPI and writes it.
func (w *WindowsKeyStore) Store(key []byte) error {
	encrypted, err := dpAPIEncrypt(key)
	if err != nil {
		return fmt.Errorf("DPAPI encryption failed: %w", err)
	}

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}

	if err := os.WriteFile(w.path, encrypted, 0600); err != nil {
		return fmt.Errorf("failed to write encrypted key: %w", err)
	}
	return nil
}

// Retrieve reads the encrypted key and unwraps it with DPAPI.
func (w *WindowsKeyStore) Retrieve() ([]byte, error) {
	encrypted, err := os.ReadFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read encrypted key: %w", err)
	}

	key, err := dpAPIDecrypt(encrypted)
	if err != nil {
		return nil, fmt.Errorf("DPAPI decryption failed: %w", err)
	}
	return key, nil
}

// Delete removes the encrypted key file.
func (w *WindowsKeyStore) Delete() error {
	if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks if the encrypted key file exists.
func (w *WindowsKeyStore) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// =============================================================================
// DPAPI IMPLEMENTATION
// =============================================================================

// dataBLOB mirrors the Windows DATA_BLOB structure.
type dataBLOB struct {
	cbData uint32
	pbData *byte
}

var (
	crypt32                = windows.NewLazySystemDLL("crypt32.dll")
	procCryptProtectData   = crypt32.NewProc("CryptProtectData")
	procCryptUnprotectData = crypt32.NewProc("CryptUnprotectData")
	kernel32               = windows.NewLazySystemDLL("kernel32.dll")
	procLocalFree          = kernel32.NewProc("LocalFree")
)

// dpAPIEncrypt encrypts data with CryptProtectData, bound to the
// current user. Flag 0x01 (CRYPTPROTECT_UI_FORBIDDEN) suppresses UI.
func dpAPIEncrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	dataIn := dataBLOB{
		cbData: uint32(len(data)),
		pbData: &data[0],
	}
	var dataOut dataBLOB

	ret, _, err := procCryptProtectData.Call(
		uintptr(unsafe.Pointer(&dataIn)),  // pDataIn
		0,                                 // szDataDescr
		0,                                 // pOptionalEntropy
		0,                                 // pvReserved
		0,                                 // pPromptStruct
		0x01,                              // dwFlags (CRYPTPROTECT_UI_FORBIDDEN)
		uintptr(unsafe.Pointer(&dataOut)), // pDataOut
	)
	if ret == 0 {
		return nil, fmt.Errorf("CryptProtectData failed: %w", err)
	}

	encrypted := make([]byte, dataOut.cbData)
	copy(encrypted, unsafe.Slice(dataOut.pbData, dataOut.cbData))
	procLocalFree.Call(uintptr(unsafe.Pointer(dataOut.pbData)))

	return encrypted, nil
}

// dpAPIDecrypt decrypts data with CryptUnprotectData.
func dpAPIDecrypt(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty data")
	}

	dataIn := dataBLOB{
		cbData: uint32(len(data)),
		pbData: &data[0],
	}
	var dataOut dataBLOB

	ret, _, err := procCryptUnprotectData.Call(
		uintptr(unsafe.Pointer(&dataIn)),  // pDataIn
		0,                                 // ppszDataDescr
		0,                                 // pOptionalEntropy
		0,                                 // pvReserved
		0,                                 // pPromptStruct
		0x01,                              // dwFlags (CRYPTPROTECT_UI_FORBIDDEN)
		uintptr(unsafe.Pointer(&dataOut)), // pDataOut
	)
	if ret == 0 {
		return nil, fmt.Errorf("CryptUnprotectData failed: %w", err)
	}

	decrypted := make([]byte, dataOut.cbData)
	copy(decrypted, unsafe.Slice(dataOut.pbData, dataOut.cbData))
	procLocalFree.Call(uintptr(unsafe.Pointer(dataOut.pbData)))

	return decrypted, nil
}
