// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// TEST SERVER
// =============================================================================

// fakeOllama serves just enough of the Ollama API for the client.
type fakeOllama struct {
	mu      sync.Mutex
	models  []string
	replies map[string][]string // last user message -> content chunks
	chats   []ChatRequest
}

func (f *fakeOllama) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Ollama is running")
	})
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		var resp ListModelsResponse
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, m := range f.models {
			resp.Models = append(resp.Models, ModelInfo{Name: m})
		}
		_ = json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("/api/show", func(w http.ResponseWriter, r *http.Request) {
		var req ShowModelRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		defer f.mu.Unlock()
		for _, m := range f.models {
			if m == req.Name {
				_ = json.NewEncoder(w).Encode(ShowModelResponse{Details: ModelDetails{Family: "llama"}})
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
		_ = json.NewEncoder(w).Encode(OllamaError{Error: "model '" + req.Name + "' not found"})
	})
	mux.HandleFunc("/api/chat", func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		f.mu.Lock()
		f.chats = append(f.chats, req)
		var reply []string
		if n := len(req.Messages); n > 0 {
			reply = f.replies[req.Messages[n-1].Content]
		}
		f.mu.Unlock()

		for _, c := range reply {
			line, _ := json.Marshal(map[string]any{
				"model":   req.Model,
				"message": map[string]string{"role": "assistant", "content": c},
				"done":    false,
			})
			fmt.Fprintf(w, "%s\n", line)
		}
		fmt.Fprintf(w, `{"model":%q,"message":{"role":"assistant","content":""},"done":true,"done_reason":"stop","eval_count":%d,"eval_duration":1000000000}`+"\n",
			req.Model, len(reply))
	})
	return mux
}

func (f *fakeOllama) requests() []ChatRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]ChatRequest(nil), f.chats...)
}

func (f *fakeOllama) setReplies(r map[string][]string) {
	f.mu.Lock()
	f.replies = r
	f.mu.Unlock()
}

func newTestClient(t *testing.T, f *fakeOllama) *Client {
	t.Helper()
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL, Timeout: 2 * time.Second})
}

// deadURL returns the address of a server that has already shut down.
func deadURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

// =============================================================================
// CLIENT TESTS
// =============================================================================

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, 30*time.Second, c.config.Timeout)

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestClient_CheckRunning(t *testing.T) {
	c := newTestClient(t, &fakeOllama{})
	require.NoError(t, c.CheckRunning(context.Background()))

	dead := NewClientWithConfig(&ClientConfig{BaseURL: deadURL()})
	err := dead.CheckRunning(context.Background())
	require.Error(t, err)
	assert.True(t, IsNotRunning(err))
}

func TestClient_ListAndGetModel(t *testing.T) {
	c := newTestClient(t, &fakeOllama{models: []string{"orca-mini:3b", "orca2:7b"}})
	ctx := context.Background()

	models, err := c.ListModels(ctx)
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "orca-mini:3b", models[0].Name)

	info, err := c.GetModel(ctx, "orca2:7b")
	require.NoError(t, err)
	assert.Equal(t, "llama", info.Details.Family)

	_, err = c.GetModel(ctx, "missing")
	assert.True(t, IsModelNotFound(err))
	assert.False(t, c.ModelExists(ctx, "missing"))
	assert.True(t, c.ModelExists(ctx, "orca-mini:3b"))
}

func TestClient_ChatStream(t *testing.T) {
	f := &fakeOllama{replies: map[string][]string{"Hello": {"Hi", "!", " How", " are", " you", "?"}}}
	c := newTestClient(t, f)

	var got []string
	var final StreamChunk
	err := c.ChatStream(context.Background(), "orca-mini:3b", []Message{NewUserMessage("Hello")}, func(ch StreamChunk) error {
		if ch.Done {
			final = ch
			return nil
		}
		got = append(got, ch.Content)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Hi", "!", " How", " are", " you", "?"}, got)
	assert.Equal(t, "stop", final.DoneReason)
	assert.Equal(t, 6, final.CompletionTokens)
	assert.InDelta(t, 6.0, final.TokensPerSecond(), 0.001)
	chats := f.requests()
	require.Len(t, chats, 1)
	assert.True(t, chats[0].Stream)
}

func TestClient_ChatStreamCallbackErrorAborts(t *testing.T) {
	c := newTestClient(t, &fakeOllama{replies: map[string][]string{"q": {"a", "b", "c"}}})
	stop := errors.New("stop")

	var n int
	err := c.ChatStream(context.Background(), "m", []Message{NewUserMessage("q")}, func(ch StreamChunk) error {
		n++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, n)
}

func TestClient_ChatStreamErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":"out of memory"}`)
	}))
	defer srv.Close()

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	err := c.ChatStream(context.Background(), "m", nil, func(StreamChunk) error { return nil })
	require.Error(t, err)
	assert.Equal(t, "out of memory", err.Error())
}

func TestClient_ChatStreamCancelled(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintln(w, `{"message":{"content":"x"},"done":false}`)
		w.(http.Flusher).Flush()
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewClientWithConfig(&ClientConfig{BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	err := c.ChatStream(ctx, "m", nil, func(StreamChunk) error {
		cancel()
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

// =============================================================================
// STREAM READER TESTS
// =============================================================================

func TestStreamReader_SkipsBlankAndMalformedLines(t *testing.T) {
	input := strings.Join([]string{
		`{"model":"m","message":{"content":"one"},"done":false}`,
		``,
		`not json`,
		`{"message":{"content":" two"},"done":false}`,
		`{"message":{"content":""},"done":true,"prompt_eval_count":3,"eval_count":2}`,
		`{"message":{"content":"after done"},"done":false}`,
	}, "\n")

	r := NewStreamReader(strings.NewReader(input))
	var chunks []StreamChunk
	require.NoError(t, r.Process(context.Background(), func(ch StreamChunk) error {
		chunks = append(chunks, ch)
		return nil
	}))

	require.Len(t, chunks, 3)
	assert.Equal(t, "one two", r.GetAccumulated())
	assert.Equal(t, 2, r.GetTokenCount())
	assert.Equal(t, "m", r.GetModel())
	assert.Equal(t, 3, chunks[2].PromptTokens)
	assert.Equal(t, 2, chunks[2].CompletionTokens)
}

func TestStreamReader_EOFWithoutDone(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`{"message":{"content":"cut"},"done":false}`))
	var n int
	require.NoError(t, r.Process(context.Background(), func(StreamChunk) error {
		n++
		return nil
	}))
	assert.Equal(t, 1, n)
}

func TestStreamReader_ErrorLine(t *testing.T) {
	r := NewStreamReader(strings.NewReader(`{"error":"model crashed"}` + "\n"))
	err := r.Process(context.Background(), func(StreamChunk) error { return nil })
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model crashed")
}

// =============================================================================
// ERROR TESTS
// =============================================================================

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		notFound bool
		notRun   bool
		timeout  bool
	}{
		{"not found", ErrModelNotFound, true, false, false},
		{"not running", ErrNotRunning, false, true, false},
		{"timeout", ErrTimeout, false, false, true},
		{"wrapped", fmt.Errorf("load: %w", ErrNotRunning), false, true, false},
		{"plain", errors.New("x"), false, false, false},
		{"nil", nil, false, false, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.notFound, IsModelNotFound(tt.err))
			assert.Equal(t, tt.notRun, IsNotRunning(tt.err))
			assert.Equal(t, tt.timeout, IsTimeout(tt.err))
		})
	}

	err := &ClientError{Type: ErrTypeConnection, Message: "dial", Cause: errors.New("refused")}
	assert.Equal(t, "dial: refused", err.Error())
	assert.EqualError(t, errors.Unwrap(err), "refused")
}
