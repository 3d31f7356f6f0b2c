// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ava.
//
// Supports TOML (primary) and JSON configuration formats, with sensible
// defaults, environment variable overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - BackendConfig: backend URL and request behaviour
//   - ChatConfig: streaming reveal tuning
//   - HistoryConfig: conversation persistence limits
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (AVA_*)
//   - ~/.ava/config.toml
//   - ~/.ava/config.json
//   - Built-in defaults
//
// A .env file in the working directory is loaded first, so AVA_*
// variables can live there during development.
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	base := cfg.Backend.BaseURL
//	bot := cfg.DefaultBot
package config
