// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package worker

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/llmchat/internal/engine"
)

// =============================================================================
// WORKER STATE
// =============================================================================

// State is the worker's position in its lifecycle.
type State int32

const (
	StateNew        State = iota // Not started
	StateLoading                 // Loading the model
	StateIdle                    // Waiting for a prompt
	StateGenerating              // Streaming an answer
	StateStopped                 // Goroutine exited
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateLoading:
		return "loading"
	case StateIdle:
		return "idle"
	case StateGenerating:
		return "generating"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Loader yields the model a worker generates with. It is called once, from
// the worker goroutine, so slow loads never block the UI loop.
type Loader interface {
	Name() string
	Load(ctx context.Context) (engine.Model, error)
}

// =============================================================================
// WORKER
// =============================================================================

// Options configures a Worker.
type Options struct {
	// ID tags every event; a random UUID when empty.
	ID     string
	Loader Loader
	Sink   Sink
	Logger zerolog.Logger
}

// Worker serves the prompts of one chat session, one at a time.
type Worker struct {
	id     string
	loader Loader
	sink   Sink
	log    zerolog.Logger

	queue *Queue
	state atomic.Int32

	ctx    context.Context
	cancel context.CancelFunc

	startOnce sync.Once
	endOnce   sync.Once
	started   atomic.Bool
	done      chan struct{}
}

// New creates a worker. Call Start to launch it.
func New(opts Options) *Worker {
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		id:     id,
		loader: opts.Loader,
		sink:   opts.Sink,
		log:    opts.Logger.With().Str("component", "worker").Str("worker_id", id).Logger(),
		queue:  NewQueue(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// ID returns the worker's event tag.
func (w *Worker) ID() string { return w.id }

// State returns the current state. Safe from any goroutine.
func (w *Worker) State() State { return State(w.state.Load()) }

// Pending returns the number of queued prompts.
func (w *Worker) Pending() int { return w.queue.Len() }

// Start launches the worker goroutine. Later calls are no-ops.
func (w *Worker) Start() {
	w.startOnce.Do(func() {
		w.started.Store(true)
		go w.run()
	})
}

// Submit queues a prompt. It never blocks.
func (w *Worker) Submit(prompt string) {
	w.queue.Put(prompt)
}

// End asks the worker to stop. It returns immediately; a worker waiting for
// a prompt exits at once, a generating worker at the next token boundary.
// Safe to call more than once.
func (w *Worker) End() {
	w.endOnce.Do(func() {
		w.log.Debug().Str("state", w.State().String()).Msg("end requested")
		w.cancel()
		w.queue.Close()
	})
}

// Wait blocks until the goroutine has exited. It returns at once for a
// worker that was never started.
func (w *Worker) Wait() {
	if !w.started.Load() {
		return
	}
	<-w.done
}

// Done is closed when the goroutine exits.
func (w *Worker) Done() <-chan struct{} { return w.done }

func (w *Worker) setState(s State) { w.state.Store(int32(s)) }

func (w *Worker) run() {
	defer close(w.done)

	var endErr error
	defer func() {
		w.setState(StateStopped)
		w.log.Debug().Err(endErr).Msg("worker stopped")
		w.sink.Send(WorkerEndedMsg{WorkerID: w.id, Err: endErr})
	}()

	w.setState(StateLoading)
	model, err := w.load()
	if err != nil {
		if w.ctx.Err() == nil {
			endErr = err
			w.log.Error().Err(err).Str("model", w.loader.Name()).Msg("model load failed")
		}
		return
	}

	sess := model.OpenSession()
	defer func() {
		if err := sess.Close(); err != nil {
			w.log.Warn().Err(err).Msg("session close failed")
		}
	}()
	w.log.Info().Str("model", model.Name()).Msg("session opened")

	for {
		w.setState(StateIdle)
		prompt, err := w.queue.Take(w.ctx)
		if err != nil {
			return
		}

		w.setState(StateGenerating)
		n, genErr := w.generate(sess, model.Name(), prompt)
		if w.ctx.Err() != nil {
			return
		}
		if genErr != nil {
			w.log.Error().Err(genErr).Int("tokens", n).Msg("generation failed")
		} else {
			w.log.Debug().Int("tokens", n).Msg("turn complete")
		}
		w.sink.Send(TurnCompleteMsg{WorkerID: w.id, Prompt: prompt, Tokens: n, Err: genErr})
	}
}

func (w *Worker) load() (m engine.Model, err error) {
	name := w.loader.Name()
	defer func() {
		if r := recover(); r != nil {
			err = engine.LoadError(name, fmt.Errorf("panic: %v", r))
		}
	}()
	m, err = w.loader.Load(w.ctx)
	if err != nil && engine.KindOf(err) == engine.KindUnknown {
		err = engine.LoadError(name, err)
	}
	return m, err
}

func (w *Worker) generate(sess engine.Session, model, prompt string) (n int, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = engine.GenerationError(model, fmt.Errorf("panic: %v", r))
		}
	}()
	err = sess.Generate(w.ctx, prompt, func(tok string) error {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		n++
		w.sink.Send(TokenMsg{WorkerID: w.id, Token: tok})
		return nil
	})
	if err != nil && engine.KindOf(err) == engine.KindUnknown {
		err = engine.GenerationError(model, err)
	}
	return n, err
}
