package internal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model       string   `json:"model"`
	Temperature *float64 `json:"temperature"`
	Messages    []struct {
		Role    string          `json:"role"`
		Content json.RawMessage `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, status int, reply string) (*httptest.Server, func() chatRequest) {
	t.Helper()
	var mu sync.Mutex
	var last chatRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		var req chatRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		mu.Lock()
		last = req
		mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"nope","type":"test_error","code":"test"}}`))
			return
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   req.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]int{"prompt_tokens": 10, "completion_tokens": 3, "total_tokens": 13},
		})
	}))
	t.Cleanup(srv.Close)

	return srv, func() chatRequest {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func newTestFantasy(t *testing.T, srv *httptest.Server) *FantasyProvider {
	t.Helper()
	p, err := NewFantasyProvider(context.Background(), FantasyConfig{
		Provider: "openai",
		APIKey:   "sk-test",
		BaseURL:  srv.URL + "/v1",
		Model:    "gpt-3.5-turbo",
	})
	require.NoError(t, err)
	return p
}

func TestFantasyProviderSendsSystemAndUserTurns(t *testing.T) {
	srv, last := chatServer(t, http.StatusOK, "Paris.")
	p := newTestFantasy(t, srv)

	answer, err := p.Complete(context.Background(), Prompt{System: "Use the context.\n\nParis is in France.", User: "Where is Paris?"})
	require.NoError(t, err)
	assert.Equal(t, "Paris.", answer)
	assert.Equal(t, "openai/gpt-3.5-turbo", p.Name())

	req := last()
	assert.Equal(t, "gpt-3.5-turbo", req.Model)
	require.NotNil(t, req.Temperature, "temperature must be sent even when zero")
	assert.Zero(t, *req.Temperature)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, string(req.Messages[0].Content), "Paris is in France.")
	assert.Equal(t, "user", req.Messages[1].Role)
	assert.Contains(t, string(req.Messages[1].Content), "Where is Paris?")
}

func TestFantasyProviderEmptyCompletion(t *testing.T) {
	srv, _ := chatServer(t, http.StatusOK, "  ")

	_, err := newTestFantasy(t, srv).Complete(context.Background(), Prompt{System: "s", User: "u"})
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestFantasyProviderInvalidCredential(t *testing.T) {
	srv, _ := chatServer(t, http.StatusUnauthorized, "")

	_, err := newTestFantasy(t, srv).Complete(context.Background(), Prompt{System: "s", User: "u"})
	assert.ErrorIs(t, err, ErrInvalidCredential)
}

func TestNewFantasyProviderUnknown(t *testing.T) {
	_, err := NewFantasyProvider(context.Background(), FantasyConfig{Provider: "mystery", Model: "m"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}
