// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"off", zerolog.Disabled, false},
		{"error", zerolog.ErrorLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"", zerolog.InfoLevel, false},
		{"info", zerolog.InfoLevel, false},
		{" debug ", zerolog.DebugLevel, false},
		{"trace", zerolog.TraceLevel, false},
		{"loud", zerolog.InfoLevel, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			assert.Equal(t, tt.want, got)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestNewWriter_FiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	log := NewWriter(&buf, zerolog.InfoLevel)

	log.Debug().Msg("hidden")
	log.Info().Str("component", "worker").Msg("shown")

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 1)
	var rec map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &rec))
	assert.Equal(t, "shown", rec["message"])
	assert.Equal(t, "worker", rec["component"])
	assert.Contains(t, rec, "time")
}

func TestNew_WritesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "llmchat.log")
	log, closer, err := New(Options{File: path, Level: "debug"})
	require.NoError(t, err)

	log.Debug().Msg("hello")
	require.NoError(t, closer.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"hello"`)
}

func TestNew_OffAndEmpty(t *testing.T) {
	dir := t.TempDir()
	_, closer, err := New(Options{File: filepath.Join(dir, "x.log"), Level: "off"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	assert.NoFileExists(t, filepath.Join(dir, "x.log"))

	_, _, err = New(Options{})
	assert.NoError(t, err)

	_, _, err = New(Options{File: filepath.Join(dir, "y.log"), Level: "loud"})
	assert.Error(t, err)
}
