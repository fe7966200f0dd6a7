package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewLLMService(Config{BaseURL: server.URL, Model: "mistral"})
}

func TestNewLLMService_Defaults(t *testing.T) {
	s := NewLLMService(Config{})

	assert.Equal(t, DefaultBaseURL, s.baseURL)
	assert.Equal(t, DefaultModel, s.ModelName())
	assert.Equal(t, DefaultTimeout, s.client.Timeout)
}

func TestGenerate(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "mistral", req.Model)
		assert.False(t, req.Stream)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "question", req.Messages[0].Content)
		require.NotNil(t, req.Options)
		assert.Equal(t, 1000, req.Options.NumPredict)

		_ = json.NewEncoder(w).Encode(chatResponse{Message: message{Role: "assistant", Content: "Revenue was $10B."}, Done: true})
	})

	out, err := s.Generate(context.Background(), "question", driven.GenerateOptions{MaxTokens: 1000})

	require.NoError(t, err)
	assert.Equal(t, "Revenue was $10B.", out)
}

func TestGenerate_NoOptions(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Nil(t, req.Options)
		_ = json.NewEncoder(w).Encode(chatResponse{Message: message{Content: "ok"}, Done: true})
	})

	_, err := s.Generate(context.Background(), "q", driven.GenerateOptions{})
	assert.NoError(t, err)
}

func TestGenerate_Errors(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"model crashed"}`))
	})

	_, err := s.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 500")

	s = newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(chatResponse{Error: "model not loaded"})
	})

	_, err = s.Generate(context.Background(), "q", driven.GenerateOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not loaded")
}

func TestPing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		_, _ = w.Write([]byte(`{"models":[{"name":"mistral:latest"}]}`))
	})

	assert.NoError(t, s.Ping(context.Background()))
	assert.NoError(t, s.Close())
}

func TestPing_ModelMissing(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"llama3.2:latest"}]}`))
	})

	err := s.Ping(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama pull mistral")
}

func TestPing_ServerDown(t *testing.T) {
	s := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	assert.ErrorContains(t, s.Ping(context.Background()), "status 503")
}
