// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package llama

import (
	"context"
	"errors"
	"os"

	"github.com/rs/zerolog"

	"github.com/jeranaias/llmchat/internal/engine"
)

// BackendName is the engine name used in config and on the command line.
const BackendName = "llama"

// Defaults mirror the sampling settings desktop GGUF chat clients ship with.
const (
	DefaultContextSize    = 2048
	DefaultMaxTokens      = 200
	DefaultTemperature    = 0.7
	DefaultTopK           = 40
	DefaultTopP           = 0.4
	DefaultRepeatPenalty  = 1.18
	DefaultPromptTemplate = "### Human:\n{prompt}\n\n### Assistant:\n"
)

// Options configures model loading and sampling.
type Options struct {
	// ModelsDir is scanned by List and used when Load gets no path hint.
	ModelsDir string

	ContextSize int
	Threads     int
	MaxTokens   int

	Temperature   float32
	TopK          int
	TopP          float32
	RepeatPenalty float32

	// PromptTemplate wraps each user prompt; "{prompt}" marks where it goes.
	PromptTemplate string
}

// withDefaults fills zero values.
func (o Options) withDefaults() Options {
	if o.ContextSize <= 0 {
		o.ContextSize = DefaultContextSize
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = DefaultMaxTokens
	}
	if o.Threads < 0 {
		o.Threads = 0
	}
	if o.Temperature <= 0 {
		o.Temperature = DefaultTemperature
	}
	if o.TopK <= 0 {
		o.TopK = DefaultTopK
	}
	if o.TopP <= 0 {
		o.TopP = DefaultTopP
	}
	if o.RepeatPenalty <= 0 {
		o.RepeatPenalty = DefaultRepeatPenalty
	}
	if o.PromptTemplate == "" {
		o.PromptTemplate = DefaultPromptTemplate
	}
	return o
}

// Engine loads GGUF files from a models directory.
type Engine struct {
	opts Options
	log  zerolog.Logger
}

var _ engine.Engine = (*Engine)(nil)

// NewEngine creates an engine. Zero option fields take the package defaults.
func NewEngine(opts Options, log zerolog.Logger) *Engine {
	return &Engine{
		opts: opts.withDefaults(),
		log:  log.With().Str("component", "llama").Logger(),
	}
}

// Name returns BackendName.
func (e *Engine) Name() string { return BackendName }

// Available reports whether this binary was built with the llama tag.
func Available() bool { return built }

// Load resolves name against pathHint (or the configured models directory)
// and loads the file. Loading a multi-gigabyte model can take many seconds.
func (e *Engine) Load(ctx context.Context, name, pathHint string) (engine.Model, error) {
	dir := pathHint
	if dir == "" {
		dir = e.opts.ModelsDir
	}
	path, err := engine.ResolvePath(dir, name)
	if err != nil {
		return nil, engine.LoadError(name, err)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, engine.LoadError(name, err)
	}
	if info.IsDir() {
		return nil, engine.LoadError(name, errors.New(path+" is a directory"))
	}
	if err := ctx.Err(); err != nil {
		return nil, engine.LoadError(name, err)
	}

	e.log.Info().Str("model", name).Str("path", path).Int64("bytes", info.Size()).Msg("loading model")
	m, err := loadModel(name, path, e.opts)
	if err != nil {
		return nil, engine.LoadError(name, err)
	}
	e.log.Info().Str("model", name).Msg("model loaded")
	return m, nil
}

// List returns the *.gguf files in the models directory.
func (e *Engine) List(ctx context.Context) ([]string, error) {
	return engine.ScanDir(e.opts.ModelsDir)
}

// errNotBuilt is returned by the stub loader.
var errNotBuilt = &engine.Error{
	Kind:    engine.KindUnavailable,
	Message: "llama support not built (rebuild with -tags llama)",
}
