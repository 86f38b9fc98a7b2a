// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build llama

package llama

import (
	"context"
	"errors"
	"sync"

	llamacpp "github.com/go-skynet/go-llama.cpp"

	"github.com/jeranaias/llmchat/internal/engine"
)

const built = true

func loadModel(name, path string, opts Options) (engine.Model, error) {
	m, err := llamacpp.New(path, llamacpp.SetContext(opts.ContextSize))
	if err != nil {
		return nil, err
	}
	return &model{name: name, llm: m, opts: opts}, nil
}

// model owns the native weights. The token callback is per model, so
// generations are serialized with mu.
type model struct {
	name string
	opts Options

	mu  sync.Mutex
	llm *llamacpp.LLama
}

func (m *model) Name() string { return m.name }

func (m *model) OpenSession() engine.Session {
	return &session{model: m, history: newTranscript(m.opts.PromptTemplate)}
}

func (m *model) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.llm != nil {
		m.llm.Free()
		m.llm = nil
	}
	return nil
}

type session struct {
	model   *model
	history *transcript
}

func (s *session) Generate(ctx context.Context, prompt string, onToken engine.TokenFunc) error {
	m := s.model
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.llm == nil {
		return engine.GenerationError(m.name, errors.New("model is closed"))
	}

	var cbErr error
	m.llm.SetTokenCallback(func(tok string) bool {
		if ctx.Err() != nil {
			return false
		}
		if err := onToken(tok); err != nil {
			cbErr = err
			return false
		}
		return true
	})

	text, err := m.llm.Predict(s.history.render(prompt), predictOptions(m.opts)...)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if cbErr != nil {
		return engine.GenerationError(m.name, cbErr)
	}
	if err != nil {
		return engine.GenerationError(m.name, err)
	}
	// TODO: drop the oldest exchanges once the rendered transcript outgrows
	// ContextSize; today llama.cpp truncates the prompt itself.
	s.history.record(prompt, text)
	return nil
}

func (s *session) Close() error {
	s.history.reset()
	return nil
}

func predictOptions(opts Options) []llamacpp.PredictOption {
	po := []llamacpp.PredictOption{
		llamacpp.SetTokens(max(1, opts.MaxTokens)),
		llamacpp.SetTopP(opts.TopP),
		llamacpp.SetTopK(opts.TopK),
		llamacpp.SetTemperature(opts.Temperature),
		llamacpp.SetPenalty(opts.RepeatPenalty),
	}
	if opts.Threads > 0 {
		po = append(po, llamacpp.SetThreads(opts.Threads))
	}
	if stop := stopWord(opts.PromptTemplate); stop != "" {
		po = append(po, llamacpp.SetStopWords(stop))
	}
	return po
}
