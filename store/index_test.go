package store

import (
	"context"
	"errors"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"contractrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wordEmbedder hashes words into a small bag-of-words vector so texts
// sharing words score higher.
type wordEmbedder struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (e *wordEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.fail {
		return nil, types.ErrEmbeddingFailed
	}
	vec := make([]float32, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(w, ".,?!")))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

var leaseClauses = []types.Clause{
	{ID: 1, Text: "The tenant pays rent on the first day of each month."},
	{ID: 2, Text: "The landlord keeps a security deposit of one month."},
	{ID: 3, Text: "Pets are not allowed without written consent."},
}

func TestClauseIndexBuildAndQuery(t *testing.T) {
	idx := NewClauseIndex(NewMemoryStore(&wordEmbedder{}))

	h, err := idx.Build(context.Background(), leaseClauses)
	require.NoError(t, err)
	assert.Equal(t, 3, h.Len())

	got, err := idx.Query(context.Background(), h, "are pets allowed", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ClauseID)
	assert.Equal(t, leaseClauses[2].Text, got[0].Text)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestClauseIndexEmpty(t *testing.T) {
	emb := &wordEmbedder{}
	idx := NewClauseIndex(NewMemoryStore(emb))

	h, err := idx.Build(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, h.Empty())

	got, err := idx.Query(context.Background(), h, "anything", 3)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, emb.calls)

	assert.NoError(t, idx.Drop(context.Background(), h))
}

func TestClauseIndexFailedBuildLeavesNothing(t *testing.T) {
	mem := NewMemoryStore(&wordEmbedder{fail: true})
	idx := NewClauseIndex(mem)

	_, err := idx.Build(context.Background(), leaseClauses)
	assert.ErrorIs(t, err, types.ErrEmbeddingFailed)
	assert.Zero(t, mem.Collections())
}

func TestClauseIndexDrop(t *testing.T) {
	mem := NewMemoryStore(&wordEmbedder{})
	idx := NewClauseIndex(mem)

	first, err := idx.Build(context.Background(), leaseClauses)
	require.NoError(t, err)
	second, err := idx.Build(context.Background(), leaseClauses[:1])
	require.NoError(t, err)
	assert.NotEqual(t, first.Collection, second.Collection)
	assert.Equal(t, 2, mem.Collections())

	require.NoError(t, idx.Drop(context.Background(), first))
	assert.Equal(t, 1, mem.Collections())

	got, err := idx.Query(context.Background(), second, "rent", 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, 1, got[0].ClauseID)
}

type scriptedRetriever struct {
	hits []Hit
	err  error
}

func (r *scriptedRetriever) Index(ctx context.Context, collection string, docs []Document) error {
	return nil
}

func (r *scriptedRetriever) Search(ctx context.Context, collection, query string, k int) ([]Hit, error) {
	return r.hits, r.err
}

func (r *scriptedRetriever) Drop(ctx context.Context, collection string) error {
	return nil
}

func TestClauseIndexSkipsUnknownHits(t *testing.T) {
	backend := &scriptedRetriever{hits: []Hit{
		{ID: "free text", Score: 0.99},
		{ID: "2", Score: 0.9},
		{ID: "42", Score: 0.8},
		{ID: "2", Score: 0.7},
		{ID: "1", Score: 0.6},
	}}
	idx := NewClauseIndex(backend)

	h, err := idx.Build(context.Background(), leaseClauses)
	require.NoError(t, err)

	got, err := idx.Query(context.Background(), h, "deposit", 5)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2, got[0].ClauseID)
	assert.Equal(t, 1, got[1].ClauseID)
}

func TestClauseIndexSearchError(t *testing.T) {
	idx := NewClauseIndex(&scriptedRetriever{err: errors.New("backend down")})

	h, err := idx.Build(context.Background(), leaseClauses)
	require.NoError(t, err)

	_, err = idx.Query(context.Background(), h, "deposit", 3)
	assert.Error(t, err)
}

func TestMemoryStoreUnknownCollection(t *testing.T) {
	_, err := NewMemoryStore(&wordEmbedder{}).Search(context.Background(), "nope", "q", 3)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 2}, []float32{2, 4}), 1e-9)
	assert.Zero(t, cosineSimilarity([]float32{1}, []float32{1, 2}))
	assert.Zero(t, cosineSimilarity([]float32{0, 0}, []float32{1, 2}))
}
