// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import "context"

// TokenFunc receives each generated token in emission order.
// Returning a non-nil error stops the generation.
type TokenFunc func(token string) error

// Engine loads models by name.
type Engine interface {
	// Name identifies the backend ("ollama", "llama").
	Name() string

	// Load returns a model bound to name. pathHint is the directory the
	// backend may look in for model files; backends that do not read files
	// ignore it.
	Load(ctx context.Context, name, pathHint string) (Model, error)

	// List returns the model names the backend can currently load.
	List(ctx context.Context) ([]string, error)
}

// Model is a loaded model.
type Model interface {
	Name() string

	// OpenSession starts a fresh chat history on this model.
	OpenSession() Session

	// Close releases the model. Sessions opened on it must not be used after.
	Close() error
}

// Session is one chat history on a model.
//
// Generate blocks until the answer is complete, ctx is cancelled, or onToken
// returns an error. Each call is finite and not restartable; the prompt and
// the produced answer become part of the session history.
type Session interface {
	Generate(ctx context.Context, prompt string, onToken TokenFunc) error
	Close() error
}
