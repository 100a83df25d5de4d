package store

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPostgres(t *testing.T) *PostgresStore {
	t.Helper()
	dsn := os.Getenv("CONTRACTRAG_TEST_PG_DSN")
	if dsn == "" {
		t.Skip("CONTRACTRAG_TEST_PG_DSN not set")
	}

	ctx := context.Background()
	pg, err := NewPostgresStore(ctx, dsn, &wordEmbedder{}, 64)
	require.NoError(t, err)
	t.Cleanup(func() { pg.Close() })
	require.NoError(t, pg.Init(ctx))
	return pg
}

func TestPostgresClauseIndex(t *testing.T) {
	pg := newTestPostgres(t)
	idx := NewClauseIndex(pg)
	ctx := context.Background()

	h, err := idx.Build(ctx, leaseClauses)
	require.NoError(t, err)
	t.Cleanup(func() { idx.Drop(context.Background(), h) })

	got, err := idx.Query(ctx, h, "are pets allowed", 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 3, got[0].ClauseID)

	require.NoError(t, idx.Drop(ctx, h))
	hits, err := pg.Search(ctx, h.Collection, "pets", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}

func TestPostgresRejectsBadCollection(t *testing.T) {
	pg := newTestPostgres(t)
	_, err := pg.Search(context.Background(), "not-a-uuid", "q", 1)
	assert.Error(t, err)
}
