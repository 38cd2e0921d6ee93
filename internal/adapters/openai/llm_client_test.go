package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/mikey/email-triage/internal/fallback"
)

func TestCompleteReturnsMessageContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-test", req["model"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"cmpl-1","choices":[{"index":0,"message":{"role":"assistant","content":"{\"subcategory\":\"Spam\"}"}}]}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, "gpt-test", 200, 0.1, 0.9, zaptest.NewLogger(t))

	out, err := client.Complete(context.Background(), "system", "prompt")
	require.NoError(t, err)
	assert.Equal(t, `{"subcategory":"Spam"}`, out)
	assert.Equal(t, "openai/gpt-test", client.Name())
}

func TestCompleteMapsStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
	}))
	defer server.Close()

	client := NewClient("key", server.URL, "gpt-test", 200, 0.1, 0.9, zaptest.NewLogger(t))

	_, err := client.Complete(context.Background(), "system", "prompt")
	require.Error(t, err)

	var statusErr *fallback.StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusServiceUnavailable, statusErr.Code)
	assert.True(t, fallback.Retryable(err))
}
