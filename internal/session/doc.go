// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session provides the chat session controller.
//
// The Controller sits between the view and the generation worker. It owns
// the selected model name, creates the ModelHandle and the Worker lazily on
// the first prompt of a session, routes worker events to view updates, and
// disables the model selector, new-session and generate controls while a
// turn is in flight.
//
// # Key Types
//
//   - Controller: session state machine driven from the UI event loop
//   - ModelHandle: lazily loaded model, reused across sessions on one model
//   - View: the display mutations the controller performs
//
// # Usage
//
//	c := session.NewController(session.Options{Engine: eng, View: view, Model: name})
//	c.SetSink(program)
//	c.Submit("Hello")            // "=====...\nQ: Hello\nA: "
//	c.HandleToken(tokenMsg)      // appends the token
//	c.HandleTurnComplete(msg)    // re-enables controls
//
// All Controller methods must be called from the UI event loop.
package session
