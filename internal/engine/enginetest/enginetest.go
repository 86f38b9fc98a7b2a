// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package enginetest provides a scripted in-memory engine for tests.
package enginetest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/jeranaias/llmchat/internal/engine"
)

// Engine is a scripted engine.Engine. The zero value answers every prompt
// by echoing its words back as tokens.
type Engine struct {
	mu sync.Mutex

	// Replies maps a prompt to the tokens streamed for it.
	Replies map[string][]string
	// Fail maps a prompt to the error Generate returns after its tokens.
	Fail map[string]error
	// LoadErr makes every Load fail.
	LoadErr error
	// Gate, when set, is received from before each token is produced.
	Gate chan struct{}
	// Models is what List returns.
	Models []string

	loads    []string
	prompts  []string
	sessions int
	closed   int
}

var _ engine.Engine = (*Engine)(nil)

// Name returns "fake".
func (e *Engine) Name() string { return "fake" }

// Load records the call and returns a model, or LoadErr.
func (e *Engine) Load(ctx context.Context, name, pathHint string) (engine.Model, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.loads = append(e.loads, name)
	if e.LoadErr != nil {
		return nil, e.LoadErr
	}
	return &model{eng: e, name: name}, nil
}

// List returns Models.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.Models...), nil
}

// Loads returns the model names passed to Load, in order.
func (e *Engine) Loads() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.loads...)
}

// Prompts returns every prompt passed to Generate, in order.
func (e *Engine) Prompts() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]string(nil), e.prompts...)
}

// Sessions returns how many sessions were opened.
func (e *Engine) Sessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sessions
}

// ClosedSessions returns how many sessions were closed.
func (e *Engine) ClosedSessions() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

func (e *Engine) script(prompt string) ([]string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.prompts = append(e.prompts, prompt)
	toks, ok := e.Replies[prompt]
	if !ok {
		for i, w := range strings.Fields(prompt) {
			if i > 0 {
				w = " " + w
			}
			toks = append(toks, w)
		}
	}
	return toks, e.Fail[prompt]
}

type model struct {
	eng  *Engine
	name string
}

func (m *model) Name() string { return m.name }

func (m *model) OpenSession() engine.Session {
	m.eng.mu.Lock()
	m.eng.sessions++
	m.eng.mu.Unlock()
	return &session{eng: m.eng}
}

func (m *model) Close() error { return nil }

type session struct {
	eng *Engine
}

func (s *session) Generate(ctx context.Context, prompt string, onToken engine.TokenFunc) error {
	toks, failErr := s.eng.script(prompt)
	for _, tok := range toks {
		if s.eng.Gate != nil {
			select {
			case <-s.eng.Gate:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		if err := onToken(tok); err != nil {
			return err
		}
	}
	return failErr
}

func (s *session) Close() error {
	s.eng.mu.Lock()
	s.eng.closed++
	s.eng.mu.Unlock()
	return nil
}

// ErrBoom is a convenient scripted failure.
var ErrBoom = errors.New("boom")
