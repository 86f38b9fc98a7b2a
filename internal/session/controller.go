// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jeranaias/llmchat/internal/engine"
	"github.com/jeranaias/llmchat/internal/worker"
)

// DefaultSeparatorWidth is the length of the "=" rule between turns.
const DefaultSeparatorWidth = 50

// Sentinel errors returned by Submit.
var (
	ErrEmptyPrompt = errors.New("prompt is empty")
	ErrGenerating  = errors.New("a response is still being generated")
	ErrNoModel     = errors.New("no model selected")
	ErrNoSink      = errors.New("event sink not attached")
)

// View is the set of display mutations the controller performs. Each method
// is exactly one widget change.
type View interface {
	AppendOutput(text string)
	ClearOutput()
	ClearInput()
	SetControlsEnabled(enabled bool)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Options configures a Controller.
type Options struct {
	Engine engine.Engine
	View   View
	Sink   worker.Sink
	Logger zerolog.Logger

	// Model is the initially selected model name.
	Model string
	// ModelsDir is the path hint passed to Engine.Load.
	ModelsDir string
	// SeparatorWidth defaults to DefaultSeparatorWidth.
	SeparatorWidth int
}

// Controller drives one chat window.
type Controller struct {
	eng       engine.Engine
	view      View
	sink      worker.Sink
	log       zerolog.Logger
	modelsDir string
	separator string

	selected   string
	handle     *ModelHandle
	worker     *worker.Worker
	newSession bool
	generating bool

	sessionID string
	startedAt time.Time
	turns     int
}

// NewController creates a controller with a fresh session pending.
func NewController(opts Options) *Controller {
	width := opts.SeparatorWidth
	if width <= 0 {
		width = DefaultSeparatorWidth
	}
	return &Controller{
		eng:        opts.Engine,
		view:       opts.View,
		sink:       opts.Sink,
		log:        opts.Logger.With().Str("component", "session").Logger(),
		modelsDir:  opts.ModelsDir,
		separator:  strings.Repeat("=", width),
		selected:   opts.Model,
		newSession: true,
	}
}

// SetSink attaches the event sink workers post to. It must be set before
// the first Submit; main attaches the *tea.Program once it exists.
func (c *Controller) SetSink(s worker.Sink) { c.sink = s }

// SetView replaces the view.
func (c *Controller) SetView(v View) { c.view = v }

// SelectedModel returns the selected model name.
func (c *Controller) SelectedModel() string { return c.selected }

// Generating reports whether a turn is in flight.
func (c *Controller) Generating() bool { return c.generating }

// IsNewSession reports whether the next Submit starts a session.
func (c *Controller) IsNewSession() bool { return c.newSession }

// SessionID returns the ID of the running session, or "" before one starts.
func (c *Controller) SessionID() string { return c.sessionID }

// Turns returns the number of prompts submitted in this session.
func (c *Controller) Turns() int { return c.turns }

// Duration returns how long the running session has been active.
func (c *Controller) Duration() time.Duration {
	if c.startedAt.IsZero() {
		return 0
	}
	return time.Since(c.startedAt)
}

// WorkerState returns the state of the current worker.
func (c *Controller) WorkerState() worker.State {
	if c.worker == nil {
		return worker.StateStopped
	}
	return c.worker.State()
}

// =============================================================================
// USER OPERATIONS
// =============================================================================

// SelectModel switches to name. The current worker is ended, the model is
// released once that worker exits, and both text areas are cleared.
func (c *Controller) SelectModel(name string) {
	if name == c.selected {
		return
	}
	c.log.Info().Str("from", c.selected).Str("to", name).Msg("model selected")

	w := c.endWorker()
	if h := c.handle; h != nil {
		c.handle = nil
		go func() {
			if w != nil {
				w.Wait()
			}
			if err := h.Close(); err != nil {
				c.log.Warn().Err(err).Str("model", h.Name()).Msg("model close failed")
			}
		}()
	}

	c.selected = name
	c.resetSession()
}

// StartNewSession clears both text areas and ends the current worker. The
// loaded model is kept for the next session.
func (c *Controller) StartNewSession() {
	c.log.Info().Str("session_id", c.sessionID).Int("turns", c.turns).Msg("new session")
	c.endWorker()
	c.resetSession()
}

// ClearInput empties the input area.
func (c *Controller) ClearInput() { c.view.ClearInput() }

// ClearResponse empties the output area.
func (c *Controller) ClearResponse() { c.view.ClearOutput() }

// Submit sends prompt to the worker, starting a session first if needed.
// It returns as soon as the prompt is queued.
func (c *Controller) Submit(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return ErrEmptyPrompt
	}
	if c.generating {
		return ErrGenerating
	}
	if c.selected == "" {
		return ErrNoModel
	}
	if c.sink == nil {
		return ErrNoSink
	}

	c.view.SetControlsEnabled(false)
	c.generating = true

	if c.newSession {
		c.beginSession()
		c.view.AppendOutput(c.separator + "\n")
	} else {
		c.view.AppendOutput("\n" + c.separator + "\n")
	}

	c.worker.Submit(prompt)
	c.turns++
	c.view.AppendOutput("Q: " + prompt + "\nA: ")
	c.view.ClearInput()

	c.log.Debug().Str("session_id", c.sessionID).Int("turn", c.turns).Msg("prompt submitted")
	return nil
}

// Close ends the current worker, waits for it, and releases the model.
func (c *Controller) Close() {
	if w := c.endWorker(); w != nil {
		w.Wait()
	}
	if c.handle != nil {
		if err := c.handle.Close(); err != nil {
			c.log.Warn().Err(err).Msg("model close failed")
		}
		c.handle = nil
	}
}

// =============================================================================
// WORKER EVENTS
// =============================================================================

// HandleToken appends a streamed token verbatim.
func (c *Controller) HandleToken(msg worker.TokenMsg) {
	if !c.current(msg.WorkerID) {
		return
	}
	c.view.AppendOutput(msg.Token)
}

// HandleTurnComplete re-enables the controls once an answer is finished.
func (c *Controller) HandleTurnComplete(msg worker.TurnCompleteMsg) {
	if !c.current(msg.WorkerID) {
		return
	}
	if msg.Err != nil {
		c.view.AppendOutput("\n[error] " + msg.Err.Error())
	}
	c.finishTurn()
}

// HandleWorkerEnded reacts to the worker goroutine exiting on its own. A
// load failure is shown, and the next Submit starts over with a fresh
// ModelHandle.
func (c *Controller) HandleWorkerEnded(msg worker.WorkerEndedMsg) {
	if !c.current(msg.WorkerID) {
		return
	}
	c.worker = nil
	c.newSession = true
	if msg.Err != nil {
		c.log.Error().Err(msg.Err).Str("model", c.selected).Msg("worker failed")
		c.view.AppendOutput("\n[error] " + msg.Err.Error())
		if engine.IsModelLoad(msg.Err) && c.handle != nil {
			_ = c.handle.Close()
			c.handle = nil
		}
	}
	if c.generating {
		c.finishTurn()
	}
}

// =============================================================================
// INTERNALS
// =============================================================================

func (c *Controller) current(workerID string) bool {
	return c.worker != nil && c.worker.ID() == workerID
}

func (c *Controller) beginSession() {
	if c.handle == nil || c.handle.Name() != c.selected {
		c.handle = NewModelHandle(c.eng, c.selected, c.modelsDir)
	}
	c.worker = worker.New(worker.Options{
		Loader: c.handle,
		Sink:   c.sink,
		Logger: c.log,
	})
	c.worker.Start()

	c.newSession = false
	c.sessionID = uuid.New().String()
	c.startedAt = time.Now()
	c.turns = 0
	c.log.Info().
		Str("session_id", c.sessionID).
		Str("worker_id", c.worker.ID()).
		Str("model", c.selected).
		Msg("session started")
}

func (c *Controller) resetSession() {
	c.newSession = true
	c.view.ClearInput()
	c.view.ClearOutput()
	if c.generating {
		c.finishTurn()
	}
}

func (c *Controller) finishTurn() {
	c.generating = false
	c.view.SetControlsEnabled(true)
}

// endWorker signals the current worker to stop and forgets it.
func (c *Controller) endWorker() *worker.Worker {
	w := c.worker
	if w == nil {
		return nil
	}
	c.worker = nil
	w.End()
	return w
}
