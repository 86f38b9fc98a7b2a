// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat window.
type KeyMap struct {
	NextFocus key.Binding
	PrevFocus key.Binding
	Activate  key.Binding
	Left      key.Binding
	Right     key.Binding

	Generate      key.Binding
	NewSession    key.Binding
	ClearInput    key.Binding
	ClearResponse key.Binding

	ScrollUp   key.Binding
	ScrollDown key.Binding

	Quit key.Binding
}

// DefaultKeyMap returns the default key bindings. Global shortcuts use
// ctrl chords so they never collide with text typed into the input area.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		NextFocus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		PrevFocus: key.NewBinding(
			key.WithKeys("shift+tab"),
			key.WithHelp("S-tab", "previous"),
		),
		Activate: key.NewBinding(
			key.WithKeys("enter", " "),
			key.WithHelp("enter", "press"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/→", "change model"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", "next model"),
		),
		Generate: key.NewBinding(
			key.WithKeys("ctrl+g"),
			key.WithHelp("C-g", "generate"),
		),
		NewSession: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new session"),
		),
		ClearInput: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "clear input"),
		),
		ClearResponse: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("C-r", "clear response"),
		),
		ScrollUp: key.NewBinding(
			key.WithKeys("up", "k", "pgup"),
			key.WithHelp("↑/k", "scroll up"),
		),
		ScrollDown: key.NewBinding(
			key.WithKeys("down", "j", "pgdown"),
			key.WithHelp("↓/j", "scroll down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-q", "quit"),
		),
	}
}

// ShortHelp returns the bindings that work everywhere.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.NextFocus, k.Generate, k.NewSession, k.Quit}
}

// FullHelp returns all bindings, grouped.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.NextFocus, k.PrevFocus, k.Activate},
		{k.Generate, k.NewSession, k.ClearInput, k.ClearResponse},
		{k.Left, k.ScrollUp, k.ScrollDown, k.Quit},
	}
}

// focusHelp shows the bindings relevant to the focused widget first, then
// the global ones.
type focusHelp struct {
	keys  KeyMap
	focus focusTarget
}

func (h focusHelp) ShortHelp() []key.Binding {
	var local []key.Binding
	switch h.focus {
	case focusSelector:
		local = []key.Binding{h.keys.Left}
	case focusOutput:
		local = []key.Binding{h.keys.ScrollUp, h.keys.ScrollDown}
	case focusInput:
	default:
		local = []key.Binding{h.keys.Activate}
	}
	return append(local, h.keys.ShortHelp()...)
}

func (h focusHelp) FullHelp() [][]key.Binding {
	return h.keys.FullHelp()
}
