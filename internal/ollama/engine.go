// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jeranaias/llmchat/internal/engine"
)

// BackendName is the engine name used in config and on the command line.
const BackendName = "ollama"

// Engine serves models through a running Ollama server. The server owns the
// weights, so loading only verifies the model is present and closing is a
// no-op. Chat history is kept client-side, per session.
type Engine struct {
	client *Client
	log    zerolog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine wraps client as an engine.Engine.
func NewEngine(client *Client, log zerolog.Logger) *Engine {
	return &Engine{
		client: client,
		log:    log.With().Str("component", "ollama").Logger(),
	}
}

// Name returns BackendName.
func (e *Engine) Name() string { return BackendName }

// Load checks that Ollama is reachable and knows name. pathHint is ignored.
func (e *Engine) Load(ctx context.Context, name, _ string) (engine.Model, error) {
	if strings.TrimSpace(name) == "" {
		return nil, engine.LoadError(name, errors.New("model name is empty"))
	}
	if _, err := e.client.GetModel(ctx, name); err != nil {
		return nil, engine.LoadError(name, e.wrap(err))
	}
	e.log.Info().Str("model", name).Msg("model ready")
	return &model{client: e.client, name: name}, nil
}

// List returns the names of the models Ollama has pulled.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	infos, err := e.client.ListModels(ctx)
	if err != nil {
		return nil, e.wrap(err)
	}
	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	return names, nil
}

// wrap marks transport failures as the engine being unavailable.
func (e *Engine) wrap(err error) error {
	if IsNotRunning(err) || IsTimeout(err) {
		return &engine.Error{
			Kind:    engine.KindUnavailable,
			Message: "ollama not reachable at " + e.client.BaseURL(),
			Cause:   err,
		}
	}
	return err
}

// =============================================================================
// MODEL AND SESSION
// =============================================================================

type model struct {
	client *Client
	name   string
}

func (m *model) Name() string { return m.name }

func (m *model) OpenSession() engine.Session {
	return &chatSession{client: m.client, model: m.name}
}

func (m *model) Close() error { return nil }

// chatSession resends the whole history with every prompt, which is how the
// /api/chat endpoint keeps context.
type chatSession struct {
	client *Client
	model  string

	mu      sync.Mutex
	history []Message
}

func (s *chatSession) Generate(ctx context.Context, prompt string, onToken engine.TokenFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messages := make([]Message, len(s.history), len(s.history)+1)
	copy(messages, s.history)
	messages = append(messages, NewUserMessage(prompt))

	var answer strings.Builder
	err := s.client.ChatStream(ctx, s.model, messages, func(chunk StreamChunk) error {
		if chunk.Content == "" {
			return nil
		}
		answer.WriteString(chunk.Content)
		return onToken(chunk.Content)
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return engine.GenerationError(s.model, err)
	}

	s.history = append(messages, NewAssistantMessage(answer.String()))
	return nil
}

// History returns a copy of the messages exchanged so far.
func (s *chatSession) History() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.history...)
}

func (s *chatSession) Close() error {
	s.mu.Lock()
	s.history = nil
	s.mu.Unlock()
	return nil
}
