// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package worker runs model generation off the UI event loop.
//
// A Worker owns a Queue of prompts and one chat session. Its goroutine takes
// one prompt at a time, streams the answer, and posts each token and a
// turn-complete event to a Sink. *tea.Program satisfies Sink, so events land
// on the Bubble Tea loop in emission order.
//
// Lifecycle:
//
//	w := worker.New(worker.Options{Loader: handle, Sink: program})
//	w.Start()
//	w.Submit("Hello")   // TokenMsg..., TurnCompleteMsg
//	w.End()             // WorkerEndedMsg
package worker
