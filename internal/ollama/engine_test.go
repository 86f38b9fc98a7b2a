// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/llmchat/internal/engine"
)

func TestEngine_LoadAndList(t *testing.T) {
	eng := NewEngine(newTestClient(t, &fakeOllama{models: []string{"orca-mini:3b"}}), zerolog.Nop())
	ctx := context.Background()

	names, err := eng.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orca-mini:3b"}, names)

	m, err := eng.Load(ctx, "orca-mini:3b", "./models")
	require.NoError(t, err)
	assert.Equal(t, "orca-mini:3b", m.Name())
	assert.NoError(t, m.Close())

	_, err = eng.Load(ctx, "nope", "")
	require.Error(t, err)
	assert.True(t, engine.IsModelLoad(err))
	assert.True(t, IsModelNotFound(err))

	_, err = eng.Load(ctx, "  ", "")
	assert.True(t, engine.IsModelLoad(err))
}

func TestEngine_Unreachable(t *testing.T) {
	eng := NewEngine(NewClientWithConfig(&ClientConfig{BaseURL: deadURL()}), zerolog.Nop())

	_, err := eng.Load(context.Background(), "orca-mini:3b", "")
	require.Error(t, err)
	assert.True(t, engine.IsModelLoad(err))
	assert.True(t, engine.IsUnavailable(err), "cause chain marks the server as unreachable")

	_, err = eng.List(context.Background())
	assert.True(t, engine.IsUnavailable(err))
}

func TestEngine_SessionKeepsHistory(t *testing.T) {
	f := &fakeOllama{
		models: []string{"m"},
		replies: map[string][]string{
			"Hello": {"Hi", "!"},
			"Bye":   {"See", " you"},
		},
	}
	eng := NewEngine(newTestClient(t, f), zerolog.Nop())
	m, err := eng.Load(context.Background(), "m", "")
	require.NoError(t, err)

	sess := m.OpenSession()
	var toks []string
	collect := func(tok string) error {
		toks = append(toks, tok)
		return nil
	}
	require.NoError(t, sess.Generate(context.Background(), "Hello", collect))
	require.NoError(t, sess.Generate(context.Background(), "Bye", collect))

	assert.Equal(t, []string{"Hi", "!", "See", " you"}, toks)
	chats := f.requests()
	require.Len(t, chats, 2)
	assert.Equal(t, []Message{
		NewUserMessage("Hello"),
		NewAssistantMessage("Hi!"),
		NewUserMessage("Bye"),
	}, chats[1].Messages)

	// A new session starts from an empty history.
	require.NoError(t, m.OpenSession().Generate(context.Background(), "Bye", collect))
	assert.Equal(t, []Message{NewUserMessage("Bye")}, f.requests()[2].Messages)

	require.NoError(t, sess.Close())
	assert.Empty(t, sess.(*chatSession).History())
}

func TestEngine_GenerationErrorKeepsHistoryUnchanged(t *testing.T) {
	f := &fakeOllama{models: []string{"m"}}
	eng := NewEngine(newTestClient(t, f), zerolog.Nop())
	m, err := eng.Load(context.Background(), "m", "")
	require.NoError(t, err)
	sess := m.OpenSession().(*chatSession)

	boom := assert.AnError
	err = sess.Generate(context.Background(), "x", func(string) error { return boom })
	// No content chunks for "x", so the callback never runs.
	require.NoError(t, err)

	f.setReplies(map[string][]string{"y": {"tok"}})
	err = sess.Generate(context.Background(), "y", func(string) error { return boom })
	require.Error(t, err)
	assert.True(t, engine.IsGeneration(err))
	assert.ErrorIs(t, err, boom)
	assert.Len(t, sess.History(), 2, "failed turn is not recorded")
}
