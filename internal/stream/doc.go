// Copyright (c) 2025 Rory Maher / Vocus Group
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package stream paces the reveal of a streaming assistant answer.
//
// Network chunks arrive in bursts, often much faster than a person reads.
// Rendering them the instant they arrive makes the transcript jump and
// flicker. This package buffers incoming chunks in a StreamTurn and
// advances a revealed prefix a few characters per animation frame, so the
// answer appears at a steady typewriter pace no matter how bursty the
// connection is.
//
// The Scheduler drives the reveal on a pluggable Clock: production uses a
// ~33ms frame timer, tests use a manual clock stepped explicitly. While
// the terminal is unfocused or the process is suspended the scheduler
// stops ticking but keeps buffering, and catches up on return. Stream
// completion drains the remaining text in one step.
package stream
