// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/llmchat/internal/util"
)

// Button labels.
const (
	labelNewSession    = "New Session"
	labelClearInput    = "Clear Input"
	labelGenerate      = "Generate Response"
	labelClearResponse = "Clear Response"
)

// View renders the window.
func (m *Model) View() string {
	if !m.sizeKnown {
		return "Loading..."
	}

	column := lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.renderSelectorRow(),
		m.renderInput(),
		m.renderInputButtons(),
		m.renderOutput(),
		m.renderOutputButtons(),
		m.renderFooter(),
	)
	return lipgloss.PlaceHorizontal(m.width, lipgloss.Center, column)
}

func (m *Model) renderHeader() string {
	t := m.theme
	title := t.HeaderTitle.Render(Title)
	modelName := m.ctrl.SelectedModel()
	if modelName == "" {
		modelName = "no model"
	}

	var status string
	if m.ctrl.Generating() {
		status = m.spinner.View() + t.StatusBusy.Render(" generating")
	} else {
		status = t.StatusIdle.Render(fmt.Sprintf("ready · %d turns", m.ctrl.Turns()))
	}

	// Header padding takes two cells.
	room := m.colWidth - 2 - lipgloss.Width(title) - lipgloss.Width(status) - 2
	left := title + "  " + t.HeaderModel.Render(util.TruncateWidth(modelName, max(room, 0)))
	gap := m.colWidth - 2 - lipgloss.Width(left) - lipgloss.Width(status)
	if gap < 1 {
		gap = 1
	}
	return t.Header.Width(m.colWidth).Render(left + strings.Repeat(" ", gap) + status)
}

func (m *Model) renderSelectorRow() string {
	t := m.theme
	button := m.renderButton(labelNewSession, focusNewSession)

	boxWidth := m.colWidth - lipgloss.Width(button)
	inner := boxWidth - 4
	name := m.ctrl.SelectedModel()
	arrows := "◀ %s ▶"
	if len(m.models) < 2 {
		arrows = "  %s  "
	}
	label := t.Label.Render("Model ")
	text := util.PadWidth(name, max(inner-lipgloss.Width(label)-4, 1))
	if name == "" {
		text = t.Placeholder.Render(text)
	} else if !m.disabled(focusSelector) {
		text = t.Selected.Render(text)
	}
	box := t.PanelStyle(m.focus == focusSelector, m.disabled(focusSelector)).
		Width(boxWidth - 2).
		Render(label + fmt.Sprintf(arrows, text))

	return lipgloss.JoinHorizontal(lipgloss.Center, box, button)
}

func (m *Model) renderInput() string {
	return m.theme.PanelStyle(m.focus == focusInput, false).
		Width(m.colWidth - 2).
		Render(m.input.View())
}

func (m *Model) renderInputButtons() string {
	left := m.renderButton(labelClearInput, focusClearInput)
	right := m.renderButton(labelGenerate, focusGenerate)
	gap := m.colWidth - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m *Model) renderOutput() string {
	body := m.output.View()
	if m.outputText.Len() == 0 {
		body = m.theme.Placeholder.Render(OutputPlaceholder) +
			strings.Repeat("\n", max(m.output.Height-1, 0))
	}
	return m.theme.PanelStyle(m.focus == focusOutput, false).
		Width(m.colWidth - 2).
		Render(body)
}

func (m *Model) renderOutputButtons() string {
	return lipgloss.PlaceHorizontal(m.colWidth, lipgloss.Center,
		m.renderButton(labelClearResponse, focusClearResponse))
}

func (m *Model) renderFooter() string {
	if m.flash != "" {
		return m.theme.ErrorText.Render(util.TruncateWidth(m.flash, m.colWidth))
	}
	return m.theme.Footer.Render(m.help.View(focusHelp{keys: m.keys, focus: m.focus}))
}

func (m *Model) renderButton(label string, target focusTarget) string {
	return m.theme.ButtonStyle(m.focus == target, m.disabled(target)).Render(label)
}
