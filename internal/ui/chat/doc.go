// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the chat window of the llmchat TUI.

The window is a single column laid out top to bottom:

	LLM Chatbot  <model>                         <status>
	[ model selector ........... ] [ New Session ]
	[ input: "Message me"                         ]
	[ Clear Input ]             [ Generate Response ]
	[ output: "Here are the responses"            ]
	              [ Clear Response ]
	<key help>

# Key Components

## Model (model.go)

The Model is a pointer-based Bubble Tea model. It owns the widgets and
implements session.View, so the session controller mutates it directly
while running inside Update. Worker messages (worker.TokenMsg,
worker.TurnCompleteMsg, worker.WorkerEndedMsg) arrive through
tea.Program.Send and are handed to the controller on the UI loop.

## View Rendering (view.go)

Lip Gloss rendering of the header, widgets, buttons and the key help
footer. Disabled controls are dimmed and ignore activation.

## Keys (keys.go)

Focus moves with tab/shift+tab. Global shortcuts work from any widget:
ctrl+g generate, ctrl+n new session, ctrl+r clear response, ctrl+x clear
input, ctrl+c or ctrl+q quit.

# Usage

	m := chat.New(chat.Options{Theme: styles.NewTheme(), Models: names})
	ctrl := session.NewController(session.Options{View: m, ...})
	m.Attach(ctrl)
	p := tea.NewProgram(m, tea.WithAltScreen())
	ctrl.SetSink(p)
*/
package chat
