// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package engine defines the model collaborator used by the chat client.
//
// An Engine loads a named model; a Model opens chat sessions; a Session
// streams the tokens of one generation call through a callback. Concrete
// engines live in the ollama (HTTP) and llama (in-process, cgo) packages.
//
// # Key Types
//
//   - Engine: loads models by name and lists what it can load
//   - Model: a loaded model, shared by the sessions opened on it
//   - Session: one chat history; Generate streams one answer
//   - Error: typed failure with a Kind (model load, generation, unavailable)
//   - Watcher: reports changes to the *.gguf files in a models directory
//
// # Usage
//
//	m, err := eng.Load(ctx, "orca-mini-3b-gguf2-q4_0.gguf", "./models")
//	if err != nil {
//	    return err
//	}
//	sess := m.OpenSession()
//	defer sess.Close()
//	err = sess.Generate(ctx, "Hello", func(tok string) error {
//	    fmt.Print(tok)
//	    return nil
//	})
package engine
