// llmchat - A terminal chat client for local language models.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/jeranaias/llmchat/internal/config"
	"github.com/jeranaias/llmchat/internal/engine"
	"github.com/jeranaias/llmchat/internal/llama"
	"github.com/jeranaias/llmchat/internal/logging"
	"github.com/jeranaias/llmchat/internal/ollama"
	"github.com/jeranaias/llmchat/internal/session"
	"github.com/jeranaias/llmchat/internal/ui/chat"
	"github.com/jeranaias/llmchat/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// listTimeout bounds the startup model listing so an unreachable Ollama
// server does not delay the window.
const listTimeout = 3 * time.Second

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the configuration and opens the log file.
func setup(f *rootFlags) (*config.Config, zerolog.Logger, io.Closer, error) {
	cfg, err := config.LoadWithOverrides(f.configPath, f.overrides)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	log, closer, err := logging.New(logging.Options{File: cfg.Log.File, Level: cfg.Log.Level})
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	return cfg, log, closer, nil
}

// newEngine builds the inference backend named in the configuration.
func newEngine(cfg *config.Config, log zerolog.Logger) (engine.Engine, error) {
	switch cfg.Engine.Backend {
	case config.BackendOllama:
		client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: cfg.Ollama.URL})
		return ollama.NewEngine(client, log), nil
	case config.BackendLlama:
		return llama.NewEngine(llama.Options{
			ModelsDir:      cfg.Engine.ModelsDir,
			ContextSize:    cfg.Llama.ContextSize,
			Threads:        cfg.Llama.Threads,
			MaxTokens:      cfg.Llama.MaxTokens,
			PromptTemplate: cfg.Llama.PromptTemplate,
		}, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Engine.Backend)
	}
}

// listModels merges the configured names with what the backend reports.
// A listing failure is logged and the configured names are returned.
func listModels(ctx context.Context, cfg *config.Config, eng engine.Engine, log zerolog.Logger) []string {
	ctx, cancel := context.WithTimeout(ctx, listTimeout)
	defer cancel()

	names, err := eng.List(ctx)
	if err != nil {
		log.Warn().Err(err).Str("backend", eng.Name()).Msg("model listing failed")
	}
	return engine.MergeNames(cfg.Engine.Models, names)
}

// runChat starts the chat window and blocks until the user quits.
func runChat(ctx context.Context, f *rootFlags) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return errors.New("llmchat needs an interactive terminal (try 'llmchat models')")
	}

	cfg, log, closer, err := setup(f)
	if err != nil {
		return err
	}
	defer closer.Close()

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	models := listModels(ctx, cfg, eng, log)

	log.Info().
		Str("version", Version).
		Str("backend", eng.Name()).
		Str("model", cfg.Engine.DefaultModel).
		Int("models", len(models)).
		Msg("starting")

	m := chat.New(chat.Options{
		Theme:  styles.NewTheme(),
		Models: models,
		Width:  cfg.UI.Width,
	})
	ctrl := session.NewController(session.Options{
		Engine:         eng,
		View:           m,
		Logger:         log,
		Model:          cfg.Engine.DefaultModel,
		ModelsDir:      cfg.Engine.ModelsDir,
		SeparatorWidth: cfg.UI.SeparatorWidth,
	})
	m.Attach(ctrl)

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())
	ctrl.SetSink(p)

	if cfg.Engine.Backend == config.BackendLlama {
		if w := watchModels(cfg, log, p); w != nil {
			defer w.Close()
		}
	}

	_, runErr := p.Run()
	ctrl.Close()
	log.Info().Err(runErr).Msg("exiting")
	return runErr
}

// watchModels pushes the model list to the window whenever the models
// directory changes. It returns nil when the directory cannot be watched.
func watchModels(cfg *config.Config, log zerolog.Logger, p *tea.Program) *engine.Watcher {
	configured := cfg.Engine.Models
	w, err := engine.NewWatcher(cfg.Engine.ModelsDir, 0, log, func(names []string) {
		p.Send(chat.ModelsChangedMsg{Models: engine.MergeNames(configured, names)})
	})
	if err != nil {
		log.Warn().Err(err).Msg("models watcher unavailable")
		return nil
	}
	if err := w.Start(); err != nil {
		log.Debug().Err(err).Str("dir", cfg.Engine.ModelsDir).Msg("models dir not watched")
		_ = w.Close()
		return nil
	}
	return w
}
