// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import tea "github.com/charmbracelet/bubbletea"

// =============================================================================
// WORKER EVENTS
// =============================================================================

// Every event carries the ID of the worker that produced it, so a receiver
// can drop events from a worker it has already replaced.

// TokenMsg delivers one generated token.
type TokenMsg struct {
	WorkerID string
	Token    string
}

// TurnCompleteMsg signals that the answer to one prompt is finished.
// Err is set when the generation failed part-way.
type TurnCompleteMsg struct {
	WorkerID string
	Prompt   string
	Tokens   int
	Err      error
}

// WorkerEndedMsg signals that the worker goroutine has exited.
// Err is set when the model could not be loaded.
type WorkerEndedMsg struct {
	WorkerID string
	Err      error
}

// Sink receives worker events. *tea.Program implements it.
type Sink interface {
	Send(msg tea.Msg)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(msg tea.Msg)

// Send calls f(msg).
func (f SinkFunc) Send(msg tea.Msg) { f(msg) }
