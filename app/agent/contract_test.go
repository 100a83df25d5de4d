package agent

import (
	"context"
	"testing"

	"contractrag/app/session"
	"contractrag/store"
	"contractrag/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContractLoaderLoad(t *testing.T) {
	mem := store.NewMemoryStore(bagOfWords{})
	sess := session.New()
	l := NewContractLoader(&fakePDF{texts: map[string]string{"lease.pdf": leaseText}}, store.NewClauseIndex(mem))

	res, err := l.Load(context.Background(), sess, "lease.pdf", "lease.pdf")
	require.NoError(t, err)
	assert.Equal(t, "lease.pdf", res.FileName)
	assert.Equal(t, 5, res.Clauses)
	assert.False(t, res.UploadedAt.IsZero())
	assert.Equal(t, 1, mem.Collections())

	c, release, err := sess.Acquire()
	require.NoError(t, err)
	defer release()
	assert.Equal(t, leaseText, c.RawText)
	assert.Equal(t, types.Clause{ID: 1, Text: "RESIDENTIAL LEASE"}, c.Clauses[0])
	assert.Equal(t, 5, c.Index.Len())
}

func TestContractLoaderReplacesPrevious(t *testing.T) {
	mem := store.NewMemoryStore(bagOfWords{})
	index := store.NewClauseIndex(mem)
	sess := session.New()
	pdfs := &fakePDF{texts: map[string]string{
		"lease.pdf": leaseText,
		"garage.pdf": "GARAGE\n1. The garage may only be used for vehicles.\n" +
			"2. Keys are returned at the end of the term.",
	}}
	l := NewContractLoader(pdfs, index)
	ctx := context.Background()

	_, err := l.Load(ctx, sess, "lease.pdf", "lease.pdf")
	require.NoError(t, err)
	require.True(t, sess.RecordExchange(mustContract(t, sess), "q", "a"))

	_, err = l.Load(ctx, sess, "garage.pdf", "garage.pdf")
	require.NoError(t, err)
	assert.Zero(t, sess.Log().Len())
	assert.Equal(t, 1, mem.Collections())

	for _, m := range MatchEvidence("LEASE", mustContract(t, sess).Clauses) {
		assert.False(t, m.Matched, "clause %d of the old contract", m.ClauseNumber)
	}
}

func TestContractLoaderFailureKeepsPrevious(t *testing.T) {
	mem := store.NewMemoryStore(bagOfWords{})
	sess := loadedSession(t, store.NewClauseIndex(mem))
	before := mustContract(t, sess)

	l := NewContractLoader(&fakePDF{}, store.NewClauseIndex(mem))
	_, err := l.Load(context.Background(), sess, "broken.pdf", "broken.pdf")
	assert.ErrorIs(t, err, types.ErrUnreadablePdf)
	assert.Same(t, before, mustContract(t, sess))
}

func mustContract(t *testing.T, sess *session.Session) *session.Contract {
	t.Helper()
	c, release, err := sess.Acquire()
	require.NoError(t, err)
	release()
	return c
}
