package llmclient

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
	"go.uber.org/zap"

	"github.com/xkilldash9x/a11yscope/internal/config"
)

func testLLMConfig(endpoint string) config.LLMConfig {
	return config.LLMConfig{
		Provider:   config.ProviderGemini,
		APIKey:     "test-key",
		Model:      "gemini-2.0-flash",
		Endpoint:   endpoint,
		APITimeout: 5 * time.Second,
		MaxRetries: 2,
	}
}

func geminiResponse(text string) string {
	payload := map[string]any{
		"candidates": []map[string]any{
			{"content": map[string]any{"parts": []map[string]any{{"text": text}}}},
		},
	}
	encoded, _ := json.Marshal(payload)
	return string(encoded)
}

func TestGeminiClientComplete(t *testing.T) {
	var gotReq geminiRequestPayload
	var gotAPIKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAPIKey = r.Header.Get("x-goog-api-key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		w.Write([]byte(geminiResponse(`{"items": []}`)))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testLLMConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "system prompt", "user prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"items": []}`, text)

	assert.Equal(t, "test-key", gotAPIKey)
	require.Len(t, gotReq.Contents, 1)
	assert.Equal(t, "user prompt", gotReq.Contents[0].Parts[0].Text)
	require.NotNil(t, gotReq.SystemInstruction)
	assert.Equal(t, "system prompt", gotReq.SystemInstruction.Parts[0].Text)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
}

func TestGeminiClientRetriesServerErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(geminiResponse("recovered")))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testLLMConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "recovered", text)
	assert.Equal(t, int64(2), calls.Load())
}

func TestGeminiClientDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	client, err := NewGeminiClient(testLLMConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
	assert.Equal(t, int64(1), calls.Load())
}

func TestGeminiClientEmptyCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates": []}`))
	}))
	defer server.Close()

	client, err := NewGeminiClient(testLLMConfig(server.URL), zap.NewNop())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no candidates")
}

func TestNewGeminiClientRequiresAPIKey(t *testing.T) {
	cfg := testLLMConfig("http://unused")
	cfg.APIKey = ""
	_, err := NewGeminiClient(cfg, zap.NewNop())
	assert.Error(t, err)
}
