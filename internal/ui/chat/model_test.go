// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmchat/internal/engine/enginetest"
	"github.com/jeranaias/llmchat/internal/session"
	"github.com/jeranaias/llmchat/internal/ui/styles"
	"github.com/jeranaias/llmchat/internal/worker"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var models = []string{
	"orca-2-7b.Q4_0.gguf",
	"orca-2-13b.Q4_0.gguf",
	"orca-mini-3b-gguf2-q4_0.gguf",
}

type window struct {
	t      *testing.T
	m      *Model
	ctrl   *session.Controller
	eng    *enginetest.Engine
	events chan tea.Msg
}

func newWindow(t *testing.T, eng *enginetest.Engine) *window {
	t.Helper()
	w := &window{t: t, eng: eng, events: make(chan tea.Msg, 256)}
	w.m = New(Options{Theme: styles.NewTheme(), Models: models})
	w.ctrl = session.NewController(session.Options{
		Engine:    eng,
		View:      w.m,
		Sink:      worker.SinkFunc(func(msg tea.Msg) { w.events <- msg }),
		Logger:    zerolog.Nop(),
		Model:     "orca-mini-3b-gguf2-q4_0.gguf",
		ModelsDir: "./models",
	})
	w.m.Attach(w.ctrl)
	t.Cleanup(w.ctrl.Close)
	w.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	return w
}

func (w *window) typeText(s string) {
	w.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (w *window) press(k tea.KeyType) tea.Cmd {
	_, cmd := w.m.Update(tea.KeyMsg{Type: k})
	return cmd
}

// pumpUntil feeds worker events through Update until stop matches.
func (w *window) pumpUntil(stop func(tea.Msg) bool) {
	w.t.Helper()
	for {
		select {
		case msg := <-w.events:
			w.m.Update(msg)
			if stop(msg) {
				return
			}
		case <-time.After(2 * time.Second):
			w.t.Fatal("timed out waiting for worker event")
		}
	}
}

func (w *window) pumpTurn() {
	w.t.Helper()
	w.pumpUntil(func(m tea.Msg) bool {
		_, ok := m.(worker.TurnCompleteMsg)
		return ok
	})
}

var rule = strings.Repeat("=", 50)

// =============================================================================
// RENDERING TESTS
// =============================================================================

func TestView_InitialWindow(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})
	view := w.m.View()

	assert.Contains(t, view, Title)
	assert.Contains(t, view, InputPlaceholder)
	assert.Contains(t, view, OutputPlaceholder)
	for _, label := range []string{labelNewSession, labelClearInput, labelGenerate, labelClearResponse} {
		assert.Contains(t, view, label)
	}
	assert.Contains(t, view, "orca-mini-3b-gguf2-q4_0.gguf")
	assert.True(t, w.m.ControlsEnabled())
}

func TestView_BeforeFirstResize(t *testing.T) {
	m := New(Options{})
	assert.Equal(t, "Loading...", m.View())
}

// =============================================================================
// GENERATION TESTS
// =============================================================================

func TestGenerate_StreamsIntoOutput(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{Replies: map[string][]string{
		"Hello": {"Hi", "!", " How", " can", " I", " help", "?"},
	}})

	w.typeText("Hello")
	assert.Equal(t, "Hello", w.m.InputText())

	w.press(tea.KeyCtrlG)
	assert.False(t, w.m.ControlsEnabled())
	assert.Equal(t, "", w.m.InputText())
	assert.Equal(t, rule+"\nQ: Hello\nA: ", w.m.OutputText())

	w.pumpTurn()
	assert.True(t, w.m.ControlsEnabled())
	assert.Equal(t, rule+"\nQ: Hello\nA: Hi! How can I help?", w.m.OutputText())
	assert.Contains(t, w.m.View(), "help?")
}

func TestGenerate_DisabledWhileGenerating(t *testing.T) {
	eng := &enginetest.Engine{Gate: make(chan struct{}, 16)}
	w := newWindow(t, eng)

	w.typeText("one two")
	w.press(tea.KeyCtrlG)
	require.True(t, w.ctrl.Generating())

	w.typeText("again")
	w.press(tea.KeyCtrlG)
	w.press(tea.KeyCtrlN)
	assert.Equal(t, "again", w.m.InputText(), "disabled generate leaves input alone")
	assert.Equal(t, rule+"\nQ: one two\nA: ", w.m.OutputText(), "disabled new session does not clear")

	// Clear Input stays available.
	w.press(tea.KeyCtrlX)
	assert.Equal(t, "", w.m.InputText())

	eng.Gate <- struct{}{}
	eng.Gate <- struct{}{}
	w.pumpTurn()
	assert.Equal(t, rule+"\nQ: one two\nA: one two", w.m.OutputText())
	assert.Equal(t, []string{"one two"}, eng.Prompts())
}

func TestGenerate_EmptyPromptFlashes(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})

	w.press(tea.KeyCtrlG)
	assert.Equal(t, "", w.m.OutputText())
	assert.Contains(t, w.m.View(), "Type a message first")

	w.typeText("x")
	assert.NotContains(t, w.m.View(), "Type a message first")
}

// =============================================================================
// BUTTON AND SELECTOR TESTS
// =============================================================================

func TestFocus_TabOrderAndActivation(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})
	require.Equal(t, focusInput, w.m.focus)

	w.typeText("Hello")
	w.press(tea.KeyTab)
	assert.Equal(t, focusClearInput, w.m.focus)
	w.press(tea.KeyEnter)
	assert.Equal(t, "", w.m.InputText())

	w.press(tea.KeyShiftTab)
	w.press(tea.KeyShiftTab)
	w.press(tea.KeyShiftTab)
	assert.Equal(t, focusSelector, w.m.focus)
	w.press(tea.KeyShiftTab)
	assert.Equal(t, focusClearResponse, w.m.focus, "focus wraps around")
}

func TestSelector_CyclesModelAndClears(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})
	w.typeText("hi")
	w.press(tea.KeyCtrlG)
	w.pumpTurn()
	require.NotEmpty(t, w.m.OutputText())

	w.m.focus = focusSelector
	w.press(tea.KeyRight)
	assert.Equal(t, "orca-2-7b.Q4_0.gguf", w.ctrl.SelectedModel(), "wraps to the first model")
	assert.Equal(t, "", w.m.OutputText())

	w.press(tea.KeyLeft)
	assert.Equal(t, "orca-mini-3b-gguf2-q4_0.gguf", w.ctrl.SelectedModel())
}

func TestButtons_ClearResponseAndNewSession(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})
	w.typeText("first")
	w.press(tea.KeyCtrlG)
	w.pumpTurn()

	w.press(tea.KeyCtrlR)
	assert.Equal(t, "", w.m.OutputText())
	assert.False(t, w.ctrl.IsNewSession(), "clearing the response keeps the session")

	w.typeText("draft")
	w.press(tea.KeyCtrlN)
	assert.Equal(t, "", w.m.InputText())
	assert.True(t, w.ctrl.IsNewSession())
}

func TestModelsChanged(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})

	w.m.Update(ModelsChangedMsg{Models: []string{"a.gguf"}})
	assert.Equal(t, []string{"a.gguf"}, w.m.Models())
	assert.Equal(t, "orca-mini-3b-gguf2-q4_0.gguf", w.ctrl.SelectedModel(), "selection survives a rescan")

	m := New(Options{})
	ctrl := session.NewController(session.Options{Engine: &enginetest.Engine{}, View: m})
	m.Attach(ctrl)
	m.Update(ModelsChangedMsg{Models: []string{"b.gguf", "c.gguf"}})
	assert.Equal(t, "b.gguf", ctrl.SelectedModel(), "first model picked when none selected")
}

func TestQuit(t *testing.T) {
	w := newWindow(t, &enginetest.Engine{})
	cmd := w.press(tea.KeyCtrlC)
	require.NotNil(t, cmd)
	assert.True(t, quits(cmd()))
}

// quits reports whether msg is, or batches, a tea.QuitMsg.
func quits(msg tea.Msg) bool {
	switch msg := msg.(type) {
	case tea.QuitMsg:
		return true
	case tea.BatchMsg:
		for _, c := range msg {
			if c != nil && quits(c()) {
				return true
			}
		}
	}
	return false
}
