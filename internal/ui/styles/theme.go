// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme holds all the styled components of the chat view.
type Theme struct {
	// Terminal capabilities
	IsDark       bool
	ColorProfile termenv.Profile

	// Width of the chat column in cells.
	Width int

	// ==========================================================================
	// HEADER AND FOOTER
	// ==========================================================================

	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	HeaderModel lipgloss.Style
	Spinner     lipgloss.Style
	StatusIdle  lipgloss.Style
	StatusBusy  lipgloss.Style
	Footer      lipgloss.Style

	// ==========================================================================
	// WIDGETS
	// ==========================================================================

	Label lipgloss.Style

	// Panel borders for the selector, input and output areas.
	Panel         lipgloss.Style
	PanelFocused  lipgloss.Style
	PanelDisabled lipgloss.Style

	Placeholder lipgloss.Style
	Selected    lipgloss.Style

	Button         lipgloss.Style
	ButtonFocused  lipgloss.Style
	ButtonDisabled lipgloss.Style

	ErrorText lipgloss.Style
}

// NewTheme creates a theme for the current terminal.
func NewTheme() *Theme {
	t := &Theme{
		IsDark:       termenv.HasDarkBackground(),
		ColorProfile: termenv.ColorProfile(),
		Width:        96,
	}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Background(SurfaceDim).
		Padding(0, 1)
	t.HeaderTitle = lipgloss.NewStyle().
		Foreground(Cyan).
		Bold(true)
	t.HeaderModel = lipgloss.NewStyle().
		Foreground(TextSecondary)
	t.Spinner = lipgloss.NewStyle().
		Foreground(Amber)
	t.StatusIdle = lipgloss.NewStyle().
		Foreground(Emerald)
	t.StatusBusy = lipgloss.NewStyle().
		Foreground(Amber)
	t.Footer = lipgloss.NewStyle().
		Foreground(TextMuted).
		Padding(0, 1)

	t.Label = lipgloss.NewStyle().
		Foreground(TextSecondary).
		Bold(true)

	base := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	t.Panel = base.BorderForeground(Overlay)
	t.PanelFocused = base.BorderForeground(FocusRing)
	t.PanelDisabled = base.BorderForeground(OverlayDim).
		Foreground(TextMuted)

	t.Placeholder = lipgloss.NewStyle().
		Foreground(TextMuted).
		Italic(true)
	t.Selected = lipgloss.NewStyle().
		Foreground(TextPrimary).
		Bold(true)

	button := lipgloss.NewStyle().
		Padding(0, 2).
		MarginRight(1)
	t.Button = button.
		Foreground(TextPrimary).
		Background(Overlay)
	t.ButtonFocused = button.
		Foreground(TextInverse).
		Background(Purple).
		Bold(true)
	t.ButtonDisabled = button.
		Foreground(TextMuted).
		Background(SurfaceDim)

	t.ErrorText = lipgloss.NewStyle().
		Foreground(Rose)
}

// SetWidth updates the column width.
func (t *Theme) SetWidth(width int) {
	t.Width = width
}

// PanelStyle picks the border style for a widget.
func (t *Theme) PanelStyle(focused, disabled bool) lipgloss.Style {
	switch {
	case disabled:
		return t.PanelDisabled
	case focused:
		return t.PanelFocused
	default:
		return t.Panel
	}
}

// ButtonStyle picks the style for a button.
func (t *Theme) ButtonStyle(focused, disabled bool) lipgloss.Style {
	switch {
	case disabled:
		return t.ButtonDisabled
	case focused:
		return t.ButtonFocused
	default:
		return t.Button
	}
}
