package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqProviderGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		if assert.Len(t, req.Messages, 1) {
			assert.Equal(t, "user", req.Messages[0].Role)
			assert.Equal(t, "What is a goroutine?", req.Messages[0].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  A lightweight thread.  "}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", srv.URL, "test-model", NewHTTPClient(time.Second, 5*time.Second))
	out, err := p.Generate(context.Background(), "What is a goroutine?")
	require.NoError(t, err)
	assert.Equal(t, "A lightweight thread.", out)
}

func TestGroqProviderRetriesServerErrorsThroughGateway(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"second try"}}]}`))
	}))
	defer srv.Close()

	g := NewFallbackGateway(fastConfig(1), NewGroqProvider("k", srv.URL, "", srv.Client()))
	out, err := g.Generate(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "second try", out)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGroqProviderClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid api key"}`))
	}))
	defer srv.Close()

	g := NewFallbackGateway(fastConfig(3), NewGroqProvider("k", srv.URL, "", srv.Client()))
	_, err := g.Generate(context.Background(), "prompt")
	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGroqProviderEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("k", srv.URL, "", srv.Client())
	_, err := p.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}

func TestGroqProviderMissingKey(t *testing.T) {
	p := NewGroqProvider("", "http://127.0.0.1:1", "", nil)
	_, err := p.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
