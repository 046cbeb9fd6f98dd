package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

// embeddingServer answers /embeddings with vector [i, len(text)] for input i,
// listing the data entries in reverse order.
func embeddingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "application/json")

		if r.URL.Path != "/embeddings" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			fmt.Fprintf(w, `{"error":{"message":"status %d","type":"test_error","code":"test"}}`, status)
			return
		}

		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		type datum struct {
			Object    string    `json:"object"`
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}
		data := make([]datum, 0, len(req.Input))
		for i := len(req.Input) - 1; i >= 0; i-- {
			data = append(data, datum{
				Object:    "embedding",
				Index:     i,
				Embedding: []float64{float64(i), float64(len(req.Input[i]))},
			})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
			"usage":  map[string]int{"prompt_tokens": 1, "total_tokens": 1},
		})
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestEmbedder(srv *httptest.Server) *OpenAIEmbedder {
	return NewOpenAIEmbedder(OpenAIEmbedderConfig{
		APIKey:  "sk-test",
		BaseURL: srv.URL + "/",
		Model:   "text-embedding-3-small",
	})
}

func TestOpenAIEmbedderOrdersByIndex(t *testing.T) {
	srv, _ := embeddingServer(t, http.StatusOK)
	e := newTestEmbedder(srv)

	vecs, err := e.EmbedBatch(context.Background(), []string{"a", "bb", "ccc"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)

	assert.Equal(t, []float32{0, 1}, vecs[0])
	assert.Equal(t, []float32{1, 2}, vecs[1])
	assert.Equal(t, []float32{2, 3}, vecs[2])
	assert.Equal(t, "text-embedding-3-small", e.Model())
}

func TestOpenAIEmbedderEmptyInput(t *testing.T) {
	srv, hits := embeddingServer(t, http.StatusOK)

	vecs, err := newTestEmbedder(srv).EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
	assert.Zero(t, hits.Load())
}

func TestOpenAIEmbedderClassifiesStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrInvalidCredential},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServiceUnreachable},
		{http.StatusBadRequest, ErrMalformedResponse},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv, hits := embeddingServer(t, tt.status)

			_, err := newTestEmbedder(srv).EmbedBatch(context.Background(), []string{"x"})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, int32(1), hits.Load(), "client must not retry on its own")
		})
	}
}

func TestOpenAIEmbedderUnreachable(t *testing.T) {
	srv, _ := embeddingServer(t, http.StatusOK)
	e := newTestEmbedder(srv)
	srv.Close()

	_, err := e.EmbedBatch(context.Background(), []string{"x"})
	assert.ErrorIs(t, err, ErrServiceUnreachable)
}
