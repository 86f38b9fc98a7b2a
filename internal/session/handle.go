// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"

	"github.com/jeranaias/llmchat/internal/engine"
)

// ModelHandle is a model bound to a name, loaded on first use.
//
// Load is called from worker goroutines. A failed or cancelled load is not
// cached, so a later worker retries it.
type ModelHandle struct {
	eng      engine.Engine
	name     string
	pathHint string

	mu     sync.Mutex
	model  engine.Model
	closed bool
}

// NewModelHandle creates an unloaded handle.
func NewModelHandle(eng engine.Engine, name, pathHint string) *ModelHandle {
	return &ModelHandle{eng: eng, name: name, pathHint: pathHint}
}

// Name returns the model name.
func (h *ModelHandle) Name() string { return h.name }

// Load returns the loaded model, loading it if needed.
func (h *ModelHandle) Load(ctx context.Context) (engine.Model, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, engine.LoadError(h.name, context.Canceled)
	}
	if h.model != nil {
		return h.model, nil
	}
	m, err := h.eng.Load(ctx, h.name, h.pathHint)
	if err != nil {
		return nil, err
	}
	h.model = m
	return m, nil
}

// Loaded reports whether the model is in memory.
func (h *ModelHandle) Loaded() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.model != nil
}

// Close releases the model. Later loads fail.
func (h *ModelHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	if h.model == nil {
		return nil
	}
	err := h.model.Close()
	h.model = nil
	return err
}
