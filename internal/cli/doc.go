// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the non-TUI command surface of ava: argument
// parsing plus the ask, chat, login, bots, history, status and config
// commands. The full-screen interface lives in internal/ui; this
// package covers scripted and line-mode use, where output goes to
// stdout and exit codes matter.
package cli
