// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !llama

package llama

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmchat/internal/engine"
)

func TestStub_LoadReportsUnavailable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "orca-mini-3b-gguf2-q4_0.gguf"), []byte("GGUF"), 0o644))

	assert.False(t, Available())
	_, err := NewEngine(Options{ModelsDir: dir}, zerolog.Nop()).Load(context.Background(), "orca-mini-3b-gguf2-q4_0.gguf", "")
	require.Error(t, err)
	assert.True(t, engine.IsModelLoad(err))
	assert.True(t, engine.IsUnavailable(err))
	assert.Contains(t, err.Error(), "-tags llama")
}
