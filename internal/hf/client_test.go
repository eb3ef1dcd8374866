package hf

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/models/Helsinki-NLP/opus-mt-en-sw", r.URL.Path)
		assert.Equal(t, "Bearer hf_test", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id":"Helsinki-NLP/opus-mt-en-sw","pipeline_tag":"translation","sha":"abc"}`)
	}))
	defer srv.Close()

	c := New(Config{HubURL: srv.URL, Token: "hf_test"})
	info, err := c.ModelInfo(context.Background(), "Helsinki-NLP/opus-mt-en-sw")
	require.NoError(t, err)
	assert.Equal(t, "translation", info.PipelineTag)
	assert.Equal(t, "abc", info.SHA)
}

func TestModelInfo_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"Repository not found"}`)
	}))
	defer srv.Close()

	c := New(Config{HubURL: srv.URL})
	_, err := c.ModelInfo(context.Background(), "nobody/nothing")

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "Repository not found", se.Body)
}

func TestInferJSON_NoTokenNoAuthHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "Hello", body["inputs"])
		_, _ = io.WriteString(w, `[{"translation_text":"Habari"}]`)
	}))
	defer srv.Close()

	c := New(Config{InferenceURL: srv.URL})
	assert.False(t, c.HasToken())

	out, _, err := c.InferJSON(context.Background(), "m", map[string]any{"inputs": "Hello"})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"translation_text":"Habari"}]`, string(out))
}

func TestInferBytes_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	c := New(Config{InferenceURL: srv.URL, Timeout: 20 * time.Millisecond})
	_, _, err := c.InferBytes(context.Background(), "m", []byte("x"), "text/plain")
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"text":"hi"}`)
	}))
	defer srv.Close()

	c := New(Config{InferenceURL: srv.URL, Retries: 2})
	out, _, err := c.InferBytes(context.Background(), "m", []byte("x"), "audio/wav")
	require.NoError(t, err)
	assert.JSONEq(t, `{"text":"hi"}`, string(out))
	assert.Equal(t, int32(2), calls.Load())
}

func TestNoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(Config{InferenceURL: srv.URL})
	_, _, err := c.InferJSON(context.Background(), "m", map[string]any{})
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}
