// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/llmchat/internal/session"
	"github.com/jeranaias/llmchat/internal/ui/styles"
	"github.com/jeranaias/llmchat/internal/worker"
)

// Window texts.
const (
	Title              = "LLM Chatbot"
	InputPlaceholder   = "Message me"
	OutputPlaceholder  = "Here are the responses"
	DefaultColumnWidth = 96
	inputHeight        = 5
)

// focusTarget is a widget that can hold keyboard focus, in tab order.
type focusTarget int

const (
	focusSelector focusTarget = iota
	focusNewSession
	focusInput
	focusClearInput
	focusGenerate
	focusOutput
	focusClearResponse
	focusCount
)

// Options configures a Model.
type Options struct {
	Theme *styles.Theme
	// Models is the initial selector list.
	Models []string
	// Width of the chat column; DefaultColumnWidth when zero.
	Width int
}

// Model is the chat window. It is used through a pointer so that the
// session controller and Bubble Tea share one instance.
type Model struct {
	ctrl  Controller
	theme *styles.Theme
	keys  KeyMap
	help  help.Model

	input   textarea.Model
	output  viewport.Model
	spinner spinner.Model

	// outputText is the raw transcript; the viewport holds it wrapped.
	outputText strings.Builder

	models   []string
	focus    focusTarget
	enabled  bool
	spinning bool
	flash    string

	colWidth  int
	maxWidth  int
	width     int
	height    int
	sizeKnown bool
}

var (
	_ tea.Model    = (*Model)(nil)
	_ session.View = (*Model)(nil)
)

// New creates the window with the input area focused. Attach must be
// called before the program starts.
func New(opts Options) *Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}
	width := opts.Width
	if width <= 0 {
		width = DefaultColumnWidth
	}

	ta := textarea.New()
	ta.Placeholder = InputPlaceholder
	ta.ShowLineNumbers = false
	ta.Prompt = ""
	ta.CharLimit = 0
	ta.SetHeight(inputHeight)
	ta.Focus()

	vp := viewport.New(width-4, 10)
	vp.MouseWheelEnabled = true

	// ASCII-compatible spinner
	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}
	sp.Style = theme.Spinner

	m := &Model{
		theme:    theme,
		keys:     DefaultKeyMap(),
		help:     help.New(),
		input:    ta,
		output:   vp,
		spinner:  sp,
		models:   append([]string(nil), opts.Models...),
		focus:    focusInput,
		enabled:  true,
		maxWidth: width,
	}
	m.layout(width, 0)
	return m
}

// Attach sets the controller the window drives.
func (m *Model) Attach(ctrl Controller) {
	m.ctrl = ctrl
}

// Models returns the selector list.
func (m *Model) Models() []string {
	return append([]string(nil), m.models...)
}

// OutputText returns the raw text of the output area.
func (m *Model) OutputText() string {
	return m.outputText.String()
}

// InputText returns the text in the input area.
func (m *Model) InputText() string {
	return m.input.Value()
}

// ControlsEnabled reports whether the selector, New Session and Generate
// Response controls accept activation.
func (m *Model) ControlsEnabled() bool {
	return m.enabled
}

// =============================================================================
// session.View
// =============================================================================

// AppendOutput appends text to the output area and follows the tail when
// the view was already scrolled to the bottom.
func (m *Model) AppendOutput(text string) {
	follow := m.output.AtBottom()
	m.outputText.WriteString(text)
	m.refreshOutput()
	if follow {
		m.output.GotoBottom()
	}
}

// ClearOutput empties the output area.
func (m *Model) ClearOutput() {
	m.outputText.Reset()
	m.refreshOutput()
	m.output.GotoTop()
}

// ClearInput empties the input area.
func (m *Model) ClearInput() {
	m.input.Reset()
}

// SetControlsEnabled enables or disables the model selector and the New
// Session and Generate Response buttons.
func (m *Model) SetControlsEnabled(enabled bool) {
	m.enabled = enabled
}

func (m *Model) refreshOutput() {
	if m.outputText.Len() == 0 {
		m.output.SetContent("")
		return
	}
	wrapped := lipgloss.NewStyle().Width(m.output.Width).Render(m.outputText.String())
	m.output.SetContent(wrapped)
}

// =============================================================================
// BUBBLE TEA
// =============================================================================

// Init starts the cursor blinking.
func (m *Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.sizeKnown = true
		m.layout(min(m.maxWidth, msg.Width), msg.Height)

	case tea.KeyMsg:
		cmds = append(cmds, m.handleKey(msg))

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.output, cmd = m.output.Update(msg)
		cmds = append(cmds, cmd)

	case worker.TokenMsg:
		m.ctrl.HandleToken(msg)

	case worker.TurnCompleteMsg:
		m.ctrl.HandleTurnComplete(msg)

	case worker.WorkerEndedMsg:
		m.ctrl.HandleWorkerEnded(msg)

	case ModelsChangedMsg:
		m.setModels(msg.Models)

	case spinner.TickMsg:
		if m.ctrl.Generating() {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		} else {
			m.spinning = false
		}

	default:
		// Cursor blink and other textarea housekeeping.
		if m.focus == focusInput {
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if m.ctrl.Generating() && !m.spinning {
		m.spinning = true
		cmds = append(cmds, m.spinner.Tick)
	}
	return m, tea.Batch(cmds...)
}

// layout sizes the widgets for a column of width cells in a terminal of
// height rows. A zero height keeps the current output height.
func (m *Model) layout(width, height int) {
	if width < 20 {
		width = 20
	}
	m.colWidth = width
	inner := width - 4 // border + padding
	m.input.SetWidth(inner)
	m.output.Width = inner
	m.help.Width = width

	if height > 0 {
		// header, selector (3), input (inputHeight+2), button row,
		// output border (2), clear row, footer
		fixed := 1 + 3 + inputHeight + 2 + 1 + 2 + 1 + 1
		h := height - fixed
		if h < 3 {
			h = 3
		}
		m.output.Height = h
	}
	m.refreshOutput()
}

// =============================================================================
// KEY HANDLING
// =============================================================================

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	m.flash = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		return tea.Quit
	case key.Matches(msg, m.keys.NextFocus):
		return m.moveFocus(1)
	case key.Matches(msg, m.keys.PrevFocus):
		return m.moveFocus(-1)
	case key.Matches(msg, m.keys.Generate):
		m.activate(focusGenerate)
		return nil
	case key.Matches(msg, m.keys.NewSession):
		m.activate(focusNewSession)
		return nil
	case key.Matches(msg, m.keys.ClearInput):
		m.activate(focusClearInput)
		return nil
	case key.Matches(msg, m.keys.ClearResponse):
		m.activate(focusClearResponse)
		return nil
	}

	var cmd tea.Cmd
	switch m.focus {
	case focusInput:
		m.input, cmd = m.input.Update(msg)
	case focusOutput:
		m.output, cmd = m.output.Update(msg)
	case focusSelector:
		switch {
		case key.Matches(msg, m.keys.Left):
			m.cycleModel(-1)
		case key.Matches(msg, m.keys.Right), key.Matches(msg, m.keys.Activate):
			m.cycleModel(1)
		}
	default:
		if key.Matches(msg, m.keys.Activate) {
			m.activate(m.focus)
		}
	}
	return cmd
}

func (m *Model) moveFocus(step int) tea.Cmd {
	m.focus = (m.focus + focusTarget(step) + focusCount) % focusCount
	if m.focus == focusInput {
		return m.input.Focus()
	}
	m.input.Blur()
	return nil
}

// disabled reports whether target currently ignores activation.
func (m *Model) disabled(target focusTarget) bool {
	if m.enabled {
		return false
	}
	switch target {
	case focusSelector, focusNewSession, focusGenerate:
		return true
	}
	return false
}

func (m *Model) activate(target focusTarget) {
	if m.disabled(target) {
		return
	}
	switch target {
	case focusGenerate:
		m.generate()
	case focusNewSession:
		m.ctrl.StartNewSession()
	case focusClearInput:
		m.ctrl.ClearInput()
	case focusClearResponse:
		m.ctrl.ClearResponse()
	case focusSelector:
		m.cycleModel(1)
	}
}

func (m *Model) generate() {
	err := m.ctrl.Submit(m.input.Value())
	switch {
	case err == nil:
	case errors.Is(err, session.ErrEmptyPrompt):
		m.flash = "Type a message first"
	default:
		m.flash = err.Error()
	}
}

// cycleModel selects the model step places away from the current one.
func (m *Model) cycleModel(step int) {
	if m.disabled(focusSelector) || len(m.models) == 0 {
		return
	}
	n := len(m.models)
	idx := indexOf(m.models, m.ctrl.SelectedModel())
	var next int
	switch {
	case idx < 0 && step > 0:
		next = 0
	case idx < 0:
		next = n - 1
	default:
		next = ((idx+step)%n + n) % n
	}
	m.ctrl.SelectModel(m.models[next])
}

// setModels replaces the selector list. The selected model is kept even
// when it disappears from the list; when nothing is selected yet the first
// listed model is picked.
func (m *Model) setModels(models []string) {
	m.models = append([]string(nil), models...)
	if m.ctrl.SelectedModel() == "" && len(m.models) > 0 && !m.disabled(focusSelector) {
		m.ctrl.SelectModel(m.models[0])
	}
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
