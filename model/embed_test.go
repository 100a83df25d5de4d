package model

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"contractrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedderNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ollamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "late fees", req.Prompt)
		w.Write([]byte(`{"embedding":[3,4]}`))
	}))
	defer srv.Close()

	e := NewOllamaEmbedder(srv.URL+"/api/embeddings", "nomic-embed-text", srv.Client())
	vec, err := e.Embed(context.Background(), "late fees")
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-6)
}

func TestOllamaEmbedderErrors(t *testing.T) {
	for name, body := range map[string]string{
		"empty embedding": `{"embedding":[]}`,
		"bad json":        `{`,
	} {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer srv.Close()

			_, err := NewOllamaEmbedder(srv.URL, "m", srv.Client()).Embed(context.Background(), "x")
			assert.ErrorIs(t, err, types.ErrEmbeddingFailed)
		})
	}
}

func TestNormalizeZeroVector(t *testing.T) {
	assert.Equal(t, []float64{0, 0}, normalize64([]float64{0, 0}))
}
