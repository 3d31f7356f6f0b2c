// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// startTestWatcher builds a watcher with a short debounce so tests
// finish quickly.
func startTestWatcher(t *testing.T, path string) (*Watcher, chan *Config) {
	t.Helper()

	ch := make(chan *Config, 8)
	w, err := NewWatcher(path, func(cfg *Config) {
		ch <- cfg
	})
	if err != nil {
		t.Fatalf("NewWatcher() error = %v", err)
	}
	w.debounce = 50 * time.Millisecond

	if err := w.Watch(); err != nil {
		t.Fatalf("Watch() error = %v", err)
	}
	t.Cleanup(func() { w.Close() })

	return w, ch
}

func TestWatcher_ReloadOnChange(t *testing.T) {
	clearAvaEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	_, ch := startTestWatcher(t, path)

	// Edit the config the same way the CLI does: atomic replace.
	updated := Default()
	updated.DefaultBot = "tender"
	if err := SaveTOML(updated, path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	select {
	case cfg := <-ch:
		if cfg.DefaultBot != "tender" {
			t.Errorf("Expected reloaded bot 'tender', got '%s'", cfg.DefaultBot)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for config reload")
	}
}

func TestWatcher_PlainWriteAlsoDetected(t *testing.T) {
	clearAvaEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	_, ch := startTestWatcher(t, path)

	// Hand edits write in place rather than renaming.
	if err := os.WriteFile(path, []byte("default_bot = \"ba\"\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case cfg := <-ch:
		if cfg.DefaultBot != "ba" {
			t.Errorf("Expected reloaded bot 'ba', got '%s'", cfg.DefaultBot)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for config reload")
	}
}

func TestWatcher_InvalidFileDoesNotFire(t *testing.T) {
	clearAvaEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	_, ch := startTestWatcher(t, path)

	// A half-saved file must not replace the working config.
	if err := os.WriteFile(path, []byte("this is = not [ toml"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case cfg := <-ch:
		t.Errorf("Callback fired for invalid file: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
		// Expected: no reload
	}
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	clearAvaEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	_, ch := startTestWatcher(t, path)

	// The watch covers the whole directory; siblings must not trigger.
	other := filepath.Join(dir, "debug.log")
	if err := os.WriteFile(other, []byte("log line\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	select {
	case cfg := <-ch:
		t.Errorf("Callback fired for unrelated file: %+v", cfg)
	case <-time.After(500 * time.Millisecond):
		// Expected: no reload
	}
}

func TestWatcher_CloseStopsDelivery(t *testing.T) {
	clearAvaEnv(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	w, ch := startTestWatcher(t, path)
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	if err := SaveTOML(Default(), path); err != nil {
		t.Fatalf("SaveTOML() error = %v", err)
	}

	select {
	case <-ch:
		t.Error("Callback fired after Close")
	case <-time.After(300 * time.Millisecond):
		// Expected: watcher is stopped
	}
}
