// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package auth provides the optional TOTP app lock.
//
// When enabled, unsealing the persisted credential requires a
// time-based one-time code from an authenticator app on top of the
// vault's encryption. The TOTP secret itself is sealed in the vault,
// so the lock cannot be read off disk.
package auth

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pquerna/otp/totp"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrAppLockCodeInvalid indicates a wrong or expired TOTP code.
	ErrAppLockCodeInvalid = errors.New("invalid app lock code")
	// ErrAppLockNotEnabled indicates no app lock is configured.
	ErrAppLockNotEnabled = errors.New("app lock not enabled")
)

// =============================================================================
// APP LOCK SETUP
// =============================================================================

// AppLockSetup carries the freshly generated TOTP enrolment data.
// URL is the otpauth:// provisioning URI for authenticator apps;
// Secret is the base32 fallback for manual entry.
type AppLockSetup struct {
	Secret string
	URL    string
}

// EnableAppLock generates a TOTP secret for the given account, seals
// it in the vault, and returns the enrolment data. The caller shows
// the URL (QR) or secret exactly once; it is never displayed again.
func (v *Vault) EnableAppLock(account string) (*AppLockSetup, error) {
	if account == "" {
		account = "ava"
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      "ava",
		AccountName: account,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate app lock secret: %w", err)
	}

	if err := v.sealFile(appLockFileName, []byte(key.Secret())); err != nil {
		return nil, err
	}

	return &AppLockSetup{
		Secret: key.Secret(),
		URL:    key.URL(),
	}, nil
}

// DisableAppLock removes the app lock.
// Requires a valid current code so a walk-up attacker with an unlocked
// terminal cannot silently strip the protection.
func (v *Vault) DisableAppLock(code string) error {
	ok, err := v.VerifyAppLock(code)
	if err != nil {
		return err
	}
	if !ok {
		return ErrAppLockCodeInvalid
	}

	if err := os.Remove(filepath.Join(v.dir, appLockFileName)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove app lock: %w", err)
	}
	return nil
}

// AppLockEnabled reports whether an app lock secret is sealed.
func (v *Vault) AppLockEnabled() bool {
	_, err := os.Stat(filepath.Join(v.dir, appLockFileName))
	return err == nil
}

// VerifyAppLock checks a TOTP code against the sealed secret.
func (v *Vault) VerifyAppLock(code string) (bool, error) {
	if !v.AppLockEnabled() {
		return false, ErrAppLockNotEnabled
	}

	secret, err := v.unsealFile(appLockFileName)
	if err != nil {
		return false, err
	}

	return totp.Validate(strings.TrimSpace(code), string(secret)), nil
}

// UnsealTokenGuarded unseals the token, first verifying the app lock
// code when a lock is enabled. Callers with no lock configured pass
// an empty code.
func (v *Vault) UnsealTokenGuarded(code string) (string, error) {
	if v.AppLockEnabled() {
		ok, err := v.VerifyAppLock(code)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", ErrAppLockCodeInvalid
		}
	}
	return v.UnsealToken()
}
