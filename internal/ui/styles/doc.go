// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for the llmchat TUI.
//
// Colors are lipgloss.AdaptiveColor values so the palette follows the
// terminal's light or dark background. NewTheme detects the terminal's
// color profile with termenv and builds every style the chat view uses.
//
//	theme := styles.NewTheme()
//	theme.SetWidth(96)
//	title := theme.HeaderTitle.Render("LLM Chatbot")
package styles
