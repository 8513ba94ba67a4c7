package docanalysis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clearwater-labs/amlguard/internal/aml"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := aml.LLMConfig{BaseURL: srv.URL, Model: "llama3-70b-8192", TimeoutSeconds: 5}
	return NewClient(cfg, "test-key", zap.NewNop().Sugar())
}

func TestClientAnalyzeDocument(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "llama3-70b-8192", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Invoice 4471")

		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "SHELL_COMPANY identified.\nENTITY: Oceanic Holdings Ltd\nENTITY: Meridian Shipping SA",
				},
			}},
		})
	})

	analysis, err := client.AnalyzeDocument(context.Background(), "Invoice 4471")
	require.NoError(t, err)
	assert.Contains(t, analysis.RiskNotes, "SHELL_COMPANY")
	assert.Equal(t, []string{"Oceanic Holdings Ltd", "Meridian Shipping SA"}, analysis.Entities)
}

func TestClientUpstreamError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"message": "rate limit exceeded"},
		})
	})

	_, err := client.AnalyzeDocument(context.Background(), "Invoice 4471")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit exceeded")
}

func TestClientEmptyCompletion(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	})

	_, err := client.AnalyzeDocument(context.Background(), "Invoice 4471")
	require.Error(t, err)
}

func TestClientRequiresAPIKey(t *testing.T) {
	cfg := aml.LLMConfig{BaseURL: "http://localhost:0", Model: "llama3-70b-8192"}
	client := NewClient(cfg, "", zap.NewNop().Sugar())

	_, err := client.AnalyzeDocument(context.Background(), "Invoice 4471")
	require.Error(t, err)
}
