// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ollama provides the HTTP client for communicating with Ollama API,
// and an engine.Engine backed by it.
//
// # Key Types
//
//   - Client: HTTP client for the Ollama API (health, models, chat)
//   - StreamReader: line-by-line NDJSON reader for streamed chat answers
//   - Engine: engine.Engine whose sessions keep chat history client-side
//
// # Usage
//
//	client := ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})
//	eng := ollama.NewEngine(client, zerolog.Nop())
//	m, err := eng.Load(ctx, "orca-mini:3b", "")
//	sess := m.OpenSession()
//	err = sess.Generate(ctx, "Hello", func(tok string) error {
//	    fmt.Print(tok)
//	    return nil
//	})
package ollama
