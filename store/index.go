package store

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"contractrag/types"

	"github.com/google/uuid"
)

// Document is one retrievable unit handed to a Retriever.
type Document struct {
	ID   string
	Text string
}

type Hit struct {
	ID    string
	Score float64
}

// Retriever is the embedding/similarity backend. Search returns ids of
// indexed documents in descending relevance.
type Retriever interface {
	Index(ctx context.Context, collection string, docs []Document) error
	Search(ctx context.Context, collection, query string, k int) ([]Hit, error)
	Drop(ctx context.Context, collection string) error
}

// Handle identifies one built clause index. The zero Handle is a valid,
// empty index.
type Handle struct {
	Collection string
	clauses    map[int]string
}

func (h Handle) Empty() bool {
	return len(h.clauses) == 0
}

func (h Handle) Len() int {
	return len(h.clauses)
}

// ClauseIndex stores contract clauses in a Retriever under a fresh collection
// per build, with the clause number as document id.
type ClauseIndex struct {
	backend Retriever
	logger  *slog.Logger
}

func NewClauseIndex(backend Retriever) *ClauseIndex {
	return &ClauseIndex{
		backend: backend,
		logger:  slog.Default().With("component", "index"),
	}
}

func (x *ClauseIndex) Build(ctx context.Context, clauses []types.Clause) (Handle, error) {
	if len(clauses) == 0 {
		return Handle{}, nil
	}

	h := Handle{
		Collection: uuid.NewString(),
		clauses:    make(map[int]string, len(clauses)),
	}
	docs := make([]Document, len(clauses))
	for i, c := range clauses {
		h.clauses[c.ID] = c.Text
		docs[i] = Document{ID: strconv.Itoa(c.ID), Text: c.Text}
	}

	if err := x.backend.Index(ctx, h.Collection, docs); err != nil {
		// leave nothing half-built behind
		if dropErr := x.backend.Drop(context.WithoutCancel(ctx), h.Collection); dropErr != nil {
			x.logger.Warn("failed to drop partial collection", "collection", h.Collection, "error", dropErr)
		}
		return Handle{}, fmt.Errorf("error indexing clauses: %w", err)
	}
	x.logger.Info("clause index built", "collection", h.Collection, "clauses", len(clauses))
	return h, nil
}

// Query returns at most k clauses of h ranked by the backend. Hits that do
// not name a clause of h are skipped.
func (x *ClauseIndex) Query(ctx context.Context, h Handle, question string, k int) ([]types.RetrievedClause, error) {
	if h.Empty() || k <= 0 {
		return nil, nil
	}

	hits, err := x.backend.Search(ctx, h.Collection, question, k)
	if err != nil {
		return nil, fmt.Errorf("error searching clauses: %w", err)
	}

	results := make([]types.RetrievedClause, 0, len(hits))
	seen := make(map[int]struct{}, len(hits))
	for _, hit := range hits {
		id, err := strconv.Atoi(hit.ID)
		if err != nil {
			x.logger.Warn("skipping hit without clause id", "id", hit.ID)
			continue
		}
		text, ok := h.clauses[id]
		if !ok {
			x.logger.Warn("skipping hit outside clause set", "id", id)
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		results = append(results, types.RetrievedClause{ClauseID: id, Text: text, Score: hit.Score})
		if len(results) == k {
			break
		}
	}
	return results, nil
}

func (x *ClauseIndex) Drop(ctx context.Context, h Handle) error {
	if h.Collection == "" {
		return nil
	}
	return x.backend.Drop(ctx, h.Collection)
}
