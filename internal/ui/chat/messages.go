// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/jeranaias/llmchat/internal/worker"
)

// ModelsChangedMsg replaces the selector's model list. main sends it when
// the models directory changes on disk.
type ModelsChangedMsg struct {
	Models []string
}

// Controller is the session logic the window drives. *session.Controller
// implements it.
type Controller interface {
	SelectedModel() string
	Generating() bool
	Turns() int

	SelectModel(name string)
	StartNewSession()
	ClearInput()
	ClearResponse()
	Submit(prompt string) error

	HandleToken(msg worker.TokenMsg)
	HandleTurnComplete(msg worker.TurnCompleteMsg)
	HandleWorkerEnded(msg worker.WorkerEndedMsg)
}
