package model

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"contractrag/types"
)

// Embedder turns text into a vector for similarity search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// OllamaEmbedder calls the Ollama embeddings endpoint and returns
// L2-normalized vectors.
type OllamaEmbedder struct {
	apiURL string
	model  string
	client *http.Client
	logger *slog.Logger
}

type ollamaEmbeddingRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type ollamaEmbeddingResponse struct {
	Embedding []float64 `json:"embedding"`
}

func NewOllamaEmbedder(apiURL, model string, client *http.Client) *OllamaEmbedder {
	if client == nil {
		client = http.DefaultClient
	}
	logger := slog.Default().With("component", "embedder")
	logger.Info("using ollama for embeddings", "model", model)
	return &OllamaEmbedder{
		apiURL: apiURL,
		model:  model,
		client: client,
		logger: logger,
	}
}

func (e *OllamaEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	req := ollamaEmbeddingRequest{
		Model:  e.model,
		Prompt: text,
	}

	var resp ollamaEmbeddingResponse
	if err := postJSON(ctx, e.client, e.apiURL, nil, req, &resp, types.ErrEmbeddingFailed); err != nil {
		e.logger.Error("embedding request failed", "error", err)
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, fmt.Errorf("%w: empty embedding", types.ErrEmbeddingFailed)
	}

	norm := normalize64(resp.Embedding)
	embedding := make([]float32, len(norm))
	for i, v := range norm {
		embedding[i] = float32(v)
	}
	return embedding, nil
}

func normalize64(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return vec
	}

	for i, x := range vec {
		vec[i] = x / norm
	}
	return vec
}
