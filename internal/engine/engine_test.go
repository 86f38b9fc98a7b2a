// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package engine

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestError_KindMatching(t *testing.T) {
	cause := errors.New("file not found")
	err := LoadError("orca-2-7b.Q4_0.gguf", cause)

	assert.True(t, IsModelLoad(err))
	assert.False(t, IsGeneration(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "model load failed (orca-2-7b.Q4_0.gguf): file not found", err.Error())
}

func TestError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("turn 3: %w", GenerationError("m", errors.New("eof")))

	assert.True(t, IsGeneration(err))
	assert.Equal(t, KindGeneration, KindOf(err))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestKind_String(t *testing.T) {
	tests := []struct {
		kind Kind
		want string
	}{
		{KindModelLoad, "model_load"},
		{KindGeneration, "generation"},
		{KindUnavailable, "unavailable"},
		{KindUnknown, "unknown"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.kind.String())
	}
}

// =============================================================================
// REGISTRY TESTS
// =============================================================================

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestScanDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "orca-2-13b.Q4_0.gguf")
	touch(t, dir, "README.md")
	touch(t, dir, "Orca-Mini.GGUF")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.gguf"), 0o755))

	names, err := ScanDir(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"Orca-Mini.GGUF", "orca-2-13b.Q4_0.gguf"}, names)
}

func TestScanDir_Missing(t *testing.T) {
	names, err := ScanDir(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, names)
}

func TestResolvePath(t *testing.T) {
	p, err := ResolvePath("./models", "a.gguf")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("models", "a.gguf"), p)

	abs := filepath.Join(t.TempDir(), "b.gguf")
	p, err = ResolvePath("./models", abs)
	require.NoError(t, err)
	assert.Equal(t, abs, p)

	_, err = ResolvePath("./models", "  ")
	assert.Error(t, err)
}

func TestMergeNames(t *testing.T) {
	got := MergeNames([]string{"a", "b"}, []string{"c", "a", "", "d"})
	assert.Equal(t, []string{"a", "b", "c", "d"}, got)
}

// =============================================================================
// WATCHER TESTS
// =============================================================================

func TestWatcher_ReportsNewModel(t *testing.T) {
	dir := t.TempDir()
	changes := make(chan []string, 4)

	w, err := NewWatcher(dir, 20*time.Millisecond, zerolog.Nop(), func(names []string) {
		changes <- names
	})
	require.NoError(t, err)
	require.NoError(t, w.Start())
	defer w.Close()

	touch(t, dir, "notes.txt")
	touch(t, dir, "new.gguf")

	select {
	case names := <-changes:
		assert.Equal(t, []string{"new.gguf"}, names)
	case <-time.After(3 * time.Second):
		t.Fatal("no change reported")
	}
}

func TestWatcher_CloseIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), 0, zerolog.Nop(), nil)
	require.NoError(t, err)
	require.NoError(t, w.Start())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())
}
