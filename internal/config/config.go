// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ava.
//
// Supports TOML and JSON configuration formats, with sensible defaults,
// environment variable overrides, and validation.
//
// Configuration file locations (in order of precedence):
//   - ~/.ava/config.toml
//   - ~/.ava/config.json
//   - Built-in defaults
package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/rorymaher2092/ava-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ava configuration.
// No secrets live here; the bearer token is kept in the credential
// vault, never in this file.
type Config struct {
	// General settings
	Version    string `toml:"version" json:"version"`
	DefaultBot string `toml:"default_bot" json:"default_bot"`

	// Backend connection configuration
	Backend BackendConfig `toml:"backend" json:"backend"`

	// Chat streaming configuration
	Chat ChatConfig `toml:"chat" json:"chat"`

	// Conversation history configuration
	History HistoryConfig `toml:"history" json:"history"`

	// Credential persistence configuration
	Credentials CredentialConfig `toml:"credentials" json:"credentials"`

	// UI configuration
	UI UIConfig `toml:"ui" json:"ui"`

	// Debug configuration
	Debug DebugConfig `toml:"debug" json:"debug"`
}

// BackendConfig contains the connection settings for the ava backend.
type BackendConfig struct {
	// BaseURL is the root URL of the backend, e.g. https://ava.vocus.com.au
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs is the per-request timeout for non-streaming calls.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MaxRetries is how many times transient failures are retried.
	MaxRetries int `toml:"max_retries" json:"max_retries"`
	// RequestsPerSecond caps the client-side request rate. 0 = default.
	RequestsPerSecond float64 `toml:"requests_per_second" json:"requests_per_second"`
}

// ChatConfig tunes the incremental answer reveal.
type ChatConfig struct {
	// RevealStepChars is how many characters each animation tick
	// moves from the network buffer to the visible answer.
	RevealStepChars int `toml:"reveal_step_chars" json:"reveal_step_chars"`
	// RevealFrameMs is the tick interval in milliseconds (~30fps default).
	RevealFrameMs int `toml:"reveal_frame_ms" json:"reveal_frame_ms"`
	// SuggestFollowups asks the backend for follow-up question chips.
	SuggestFollowups bool `toml:"suggest_followups" json:"suggest_followups"`
}

// HistoryConfig bounds local conversation persistence.
type HistoryConfig struct {
	// Enabled persists conversations to disk. Off disables /save,
	// /history and --continue.
	Enabled bool `toml:"enabled" json:"enabled"`
	// Dir is where conversations are stored. Empty = ~/.ava/conversations
	Dir string `toml:"dir" json:"dir"`
	// MaxConversations is the number of conversations kept on disk;
	// the oldest are pruned past this.
	MaxConversations int `toml:"max_conversations" json:"max_conversations"`
	// MaxMessages caps messages kept per conversation.
	MaxMessages int `toml:"max_messages" json:"max_messages"`
	// IndexEnabled maintains the local citation index database.
	IndexEnabled bool `toml:"index_enabled" json:"index_enabled"`
}

// CredentialConfig controls credential persistence.
type CredentialConfig struct {
	// Save persists the login token in the encrypted vault so new
	// sessions start logged in. Off by default.
	Save bool `toml:"save" json:"save"`
	// Dir overrides the vault directory. Empty = ~/.ava/credentials
	Dir string `toml:"dir" json:"dir"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto"
	Theme string `toml:"theme" json:"theme"`
	// ShowStats displays token/latency stats under answers.
	ShowStats bool `toml:"show_stats" json:"show_stats"`
	// CompactMode uses a more compact layout.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
}

// DebugConfig controls the optional debug log.
type DebugConfig struct {
	// Enabled turns on debug logging.
	Enabled bool `toml:"enabled" json:"enabled"`
	// LogPath is the debug log file. Empty = ~/.ava/debug.log
	LogPath string `toml:"log_path" json:"log_path"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:    "1.0.0",
		DefaultBot: "ava",

		Backend: BackendConfig{
			BaseURL:           "",
			TimeoutSecs:       60,
			MaxRetries:        3,
			RequestsPerSecond: 5,
		},

		Chat: ChatConfig{
			RevealStepChars:  6,
			RevealFrameMs:    33, // ~30fps
			SuggestFollowups: true,
		},

		History: HistoryConfig{
			Enabled:          true,
			Dir:              "",
			MaxConversations: 200,
			MaxMessages:      1000,
			IndexEnabled:     true,
		},

		Credentials: CredentialConfig{
			Save: false,
			Dir:  "",
		},

		UI: UIConfig{
			Theme:       "dark",
			ShowStats:   true,
			CompactMode: false,
		},

		Debug: DebugConfig{
			Enabled: false,
			LogPath: "",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the ava configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ava"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// ensureSecurePermissions checks and fixes permissions on config files.
// The file holds no secrets, but it names credential and history paths;
// keep it owner-only like the rest of ~/.ava.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
func Load() (*Config, error) {
	// Development convenience: pick up AVA_* from a local .env file.
	// Missing file is the normal case and not an error.
	_ = godotenv.Load()

	cfg := Default()
	var loadErr error

	tomlPath, err := ConfigPathTOML()
	if err == nil {
		if _, statErr := os.Stat(tomlPath); statErr == nil {
			if err := LoadTOML(cfg, tomlPath); err != nil {
				loadErr = fmt.Errorf("failed to load TOML config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	jsonPath, err := ConfigPathJSON()
	if err == nil {
		if _, statErr := os.Stat(jsonPath); statErr == nil {
			if err := LoadJSON(cfg, jsonPath); err != nil {
				loadErr = fmt.Errorf("failed to load JSON config: %w", err)
			} else {
				return finishLoad(cfg)
			}
		}
	}

	cfg, err = finishLoad(cfg)
	if err != nil {
		return nil, err
	}
	// Defaults (with any load error for informational purposes)
	return cfg, loadErr
}

// finishLoad applies the post-parse pipeline shared by every entry
// point: env overrides, migration, defaults, validation.
func finishLoad(cfg *Config) (*Config, error) {
	cfg.ApplyEnvOverrides()
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// LoadTOML loads configuration from a TOML file.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		// Permissions might not be fixable everywhere; warn and carry on.
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON loads configuration from a JSON file.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full
// validation. Used by the config watcher and --config flag.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finishLoad(cfg)
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML saves the configuration to a TOML file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveTOML(cfg *Config, path string) error {
	var buf bytes.Buffer
	fmt.Fprintln(&buf, "# ava configuration file")
	fmt.Fprintln(&buf, "# Generated by ava - edit with care")
	fmt.Fprintln(&buf, "#")
	fmt.Fprintln(&buf, "# Documentation: https://github.com/rorymaher2092/ava-tui")
	fmt.Fprintln(&buf, "")

	encoder := toml.NewEncoder(&buf)
	if err := encoder.Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, buf.Bytes(), 0600, 0755); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON saves the configuration to a JSON file.
// RELIABILITY: Atomic write with fsync prevents data loss on crash
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0755); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns all errors at once
// so the user fixes the file in one pass.
func (c *Config) Validate() error {
	var errs ValidateErrors

	// Backend settings
	if c.Backend.BaseURL != "" {
		u, err := url.Parse(c.Backend.BaseURL)
		if err != nil {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("invalid URL: %v", err),
			})
		} else if u.Scheme != "http" && u.Scheme != "https" {
			errs = append(errs, ValidationError{
				Field:   "backend.base_url",
				Message: fmt.Sprintf("scheme must be http or https, got '%s'", u.Scheme),
			})
		}
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 600 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be 1-600, got %d", c.Backend.TimeoutSecs),
		})
	}

	if c.Backend.MaxRetries < 0 || c.Backend.MaxRetries > 10 {
		errs = append(errs, ValidationError{
			Field:   "backend.max_retries",
			Message: fmt.Sprintf("must be 0-10, got %d", c.Backend.MaxRetries),
		})
	}

	if c.Backend.RequestsPerSecond < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.requests_per_second",
			Message: "cannot be negative",
		})
	}

	// Chat settings. The reveal step keeps the animation readable:
	// too large and answers slam in, too small and long answers lag
	// minutes behind the stream.
	if c.Chat.RevealStepChars < 1 || c.Chat.RevealStepChars > 64 {
		errs = append(errs, ValidationError{
			Field:   "chat.reveal_step_chars",
			Message: fmt.Sprintf("must be 1-64, got %d", c.Chat.RevealStepChars),
		})
	}

	if c.Chat.RevealFrameMs < 16 || c.Chat.RevealFrameMs > 1000 {
		errs = append(errs, ValidationError{
			Field:   "chat.reveal_frame_ms",
			Message: fmt.Sprintf("must be 16-1000, got %d", c.Chat.RevealFrameMs),
		})
	}

	// History settings
	if c.History.MaxConversations < 1 || c.History.MaxConversations > 10000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_conversations",
			Message: fmt.Sprintf("must be 0-10000, got %d", c.History.MaxConversations),
		})
	}

	if c.History.MaxMessages < 10 || c.History.MaxMessages > 10000 {
		errs = append(errs, ValidationError{
			Field:   "history.max_messages",
			Message: fmt.Sprintf("must be 10-10000, got %d", c.History.MaxMessages),
		})
	}

	// UI settings
	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults sets default values for any missing or zero-value
// configuration fields.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.DefaultBot == "" {
		c.DefaultBot = defaults.DefaultBot
	}

	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.MaxRetries == 0 {
		c.Backend.MaxRetries = defaults.Backend.MaxRetries
	}
	if c.Backend.RequestsPerSecond == 0 {
		c.Backend.RequestsPerSecond = defaults.Backend.RequestsPerSecond
	}

	if c.Chat.RevealStepChars == 0 {
		c.Chat.RevealStepChars = defaults.Chat.RevealStepChars
	}
	if c.Chat.RevealFrameMs == 0 {
		c.Chat.RevealFrameMs = defaults.Chat.RevealFrameMs
	}

	if c.History.MaxConversations == 0 {
		c.History.MaxConversations = defaults.History.MaxConversations
	}
	if c.History.MaxMessages == 0 {
		c.History.MaxMessages = defaults.History.MaxMessages
	}

	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// Migrate handles migration from old configuration formats.
func (c *Config) Migrate() error {
	// Early builds wrote bot ids with a bot_ prefix.
	c.DefaultBot = strings.TrimPrefix(c.DefaultBot, "bot_")

	// Normalize the backend URL: no trailing slash.
	c.Backend.BaseURL = strings.TrimRight(c.Backend.BaseURL, "/")

	// "default" was renamed to "dark".
	if strings.ToLower(c.UI.Theme) == "default" {
		c.UI.Theme = "dark"
	}

	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - AVA_BACKEND_URL: overrides backend.base_url
//   - AVA_BOT: overrides default_bot
//   - AVA_THEME: overrides ui.theme
//   - AVA_HISTORY_DIR: overrides history.dir
//   - AVA_SAVE_CREDENTIALS: "1"/"true" to persist the login token
//   - AVA_REVEAL_STEP: overrides chat.reveal_step_chars
//   - AVA_DEBUG_LOG: overrides debug.log_path and enables debug logging
func (c *Config) ApplyEnvOverrides() {
	if base := os.Getenv("AVA_BACKEND_URL"); base != "" {
		c.Backend.BaseURL = base
	}

	if bot := os.Getenv("AVA_BOT"); bot != "" {
		c.DefaultBot = bot
	}

	if theme := os.Getenv("AVA_THEME"); theme != "" {
		c.UI.Theme = theme
	}

	if dir := os.Getenv("AVA_HISTORY_DIR"); dir != "" {
		c.History.Dir = dir
	}

	if save := os.Getenv("AVA_SAVE_CREDENTIALS"); save != "" {
		c.Credentials.Save = save == "1" || strings.ToLower(save) == "true"
	}

	if step := os.Getenv("AVA_REVEAL_STEP"); step != "" {
		if n, err := strconv.Atoi(step); err == nil {
			c.Chat.RevealStepChars = n
		}
	}

	if logPath := os.Getenv("AVA_DEBUG_LOG"); logPath != "" {
		c.Debug.LogPath = logPath
		c.Debug.Enabled = true
	}
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation
// (e.g., "backend.base_url").
func (c *Config) Get(key string) (interface{}, error) {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return nil, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return nil, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field.Interface(), nil
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return nil, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return nil, fmt.Errorf("invalid key: %s", key)
}

// Set sets a configuration value using dot notation
// (e.g., "backend.base_url").
func (c *Config) Set(key string, value interface{}) error {
	parts := strings.Split(key, ".")
	if len(parts) == 0 {
		return errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)

		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			if !field.CanSet() {
				return fmt.Errorf("cannot set field: %s", key)
			}
			return setFieldValue(field, value)
		}

		if field.Kind() == reflect.Struct {
			v = field
		} else {
			return fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
	}

	return fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its
// Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		if len(part) > 0 {
			result.WriteString(strings.ToUpper(string(part[0])))
			result.WriteString(strings.ToLower(part[1:]))
		}
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with
// string-to-type conversion for CLI input.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Float64:
			floatVal, err := strconv.ParseFloat(strVal, 64)
			if err != nil {
				return fmt.Errorf("invalid float value: %v", err)
			}
			field.SetFloat(floatVal)
			return nil
		case reflect.Bool:
			lower := strings.ToLower(strVal)
			field.SetBool(strVal == "1" || lower == "true" || lower == "yes")
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) {
		field.Set(val.Convert(field.Type()))
		return nil
	}

	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"default_bot",
		"backend.base_url",
		"backend.timeout_secs",
		"backend.max_retries",
		"backend.requests_per_second",
		"chat.reveal_step_chars",
		"chat.reveal_frame_ms",
		"chat.suggest_followups",
		"history.dir",
		"history.max_conversations",
		"history.max_messages",
		"history.index_enabled",
		"credentials.save",
		"credentials.dir",
		"ui.theme",
		"ui.show_stats",
		"ui.compact_mode",
		"debug.enabled",
		"debug.log_path",
	}
}

// HistoryDir resolves the conversation directory, applying the default.
func (c *Config) HistoryDir() string {
	if c.History.Dir != "" {
		return c.History.Dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ava", "conversations")
	}
	return filepath.Join(home, ".ava", "conversations")
}

// DebugLogPath resolves the debug log file, applying the default.
func (c *Config) DebugLogPath() string {
	if c.Debug.LogPath != "" {
		return c.Debug.LogPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".ava", "debug.log")
	}
	return filepath.Join(home, ".ava", "debug.log")
}

// Merge merges another config into this one. Non-zero values from
// other overwrite values in c; unset fields are left alone.
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// General
	if other.Version != "" {
		c.Version = other.Version
	}
	if other.DefaultBot != "" {
		c.DefaultBot = other.DefaultBot
	}

	// Backend
	if other.Backend.BaseURL != "" {
		c.Backend.BaseURL = other.Backend.BaseURL
	}
	if other.Backend.TimeoutSecs != 0 {
		c.Backend.TimeoutSecs = other.Backend.TimeoutSecs
	}
	if other.Backend.MaxRetries != 0 {
		c.Backend.MaxRetries = other.Backend.MaxRetries
	}
	if other.Backend.RequestsPerSecond != 0 {
		c.Backend.RequestsPerSecond = other.Backend.RequestsPerSecond
	}

	// Chat
	if other.Chat.RevealStepChars != 0 {
		c.Chat.RevealStepChars = other.Chat.RevealStepChars
	}
	if other.Chat.RevealFrameMs != 0 {
		c.Chat.RevealFrameMs = other.Chat.RevealFrameMs
	}
	if other.Chat.SuggestFollowups {
		c.Chat.SuggestFollowups = true
	}

	// History
	if other.History.Enabled {
		c.History.Enabled = true
	}
	if other.History.Dir != "" {
		c.History.Dir = other.History.Dir
	}
	if other.History.MaxConversations != 0 {
		c.History.MaxConversations = other.History.MaxConversations
	}
	if other.History.MaxMessages != 0 {
		c.History.MaxMessages = other.History.MaxMessages
	}
	if other.History.IndexEnabled {
		c.History.IndexEnabled = true
	}

	// Credentials
	if other.Credentials.Save {
		c.Credentials.Save = true
	}
	if other.Credentials.Dir != "" {
		c.Credentials.Dir = other.Credentials.Dir
	}

	// UI
	if other.UI.Theme != "" {
		c.UI.Theme = other.UI.Theme
	}
	if other.UI.ShowStats {
		c.UI.ShowStats = true
	}
	if other.UI.CompactMode {
		c.UI.CompactMode = true
	}

	// Debug
	if other.Debug.Enabled {
		c.Debug.Enabled = true
	}
	if other.Debug.LogPath != "" {
		c.Debug.LogPath = other.Debug.LogPath
	}
}

// Clone creates a deep copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the config as indented JSON for display.
// Nothing here is secret; the bearer token lives in the vault.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
