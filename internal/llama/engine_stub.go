// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !llama

package llama

import "github.com/jeranaias/llmchat/internal/engine"

const built = false

// loadModel refuses to run without the llama runtime compiled in.
func loadModel(name, path string, opts Options) (engine.Model, error) {
	return nil, errNotBuilt
}
