package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"contractrag/model"
)

// MemoryStore keeps embedded documents in process and ranks them by cosine
// similarity.
type MemoryStore struct {
	embedder model.Embedder

	mu          sync.RWMutex
	collections map[string][]memoryDoc
}

type memoryDoc struct {
	id     string
	vector []float32
}

func NewMemoryStore(embedder model.Embedder) *MemoryStore {
	return &MemoryStore{
		embedder:    embedder,
		collections: make(map[string][]memoryDoc),
	}
}

func (s *MemoryStore) Index(ctx context.Context, collection string, docs []Document) error {
	entries := make([]memoryDoc, 0, len(docs))
	for _, d := range docs {
		vec, err := s.embedder.Embed(ctx, d.Text)
		if err != nil {
			return fmt.Errorf("embedding document %s: %w", d.ID, err)
		}
		entries = append(entries, memoryDoc{id: d.ID, vector: vec})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.collections[collection] = entries
	return nil
}

func (s *MemoryStore) Search(ctx context.Context, collection, query string, k int) ([]Hit, error) {
	s.mu.RLock()
	docs, ok := s.collections[collection]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("collection %s not found", collection)
	}
	if len(docs) == 0 || k <= 0 {
		return nil, nil
	}

	qvec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	hits := make([]Hit, len(docs))
	for i, d := range docs {
		hits[i] = Hit{ID: d.id, Score: cosineSimilarity(qvec, d.vector)}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

func (s *MemoryStore) Drop(ctx context.Context, collection string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.collections, collection)
	return nil
}

func (s *MemoryStore) Collections() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.collections)
}

func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
