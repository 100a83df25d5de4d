package agent

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"testing"

	"contractrag/app/session"
	"contractrag/store"
	"contractrag/types"

	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

type bagOfWords struct{}

func (bagOfWords) Embed(ctx context.Context, text string) ([]float32, error) {
	vec := make([]float32, 64)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(strings.Trim(w, ".,?!")))
		vec[h.Sum32()%64]++
	}
	return vec, nil
}

type fakeOCR struct {
	regions []types.TextRegion
	err     error
}

func (o *fakeOCR) Read(ctx context.Context, path string) ([]types.TextRegion, error) {
	return o.regions, o.err
}

type fakePDF struct {
	texts map[string]string
}

func (p *fakePDF) Extract(path string) (string, error) {
	text, ok := p.texts[path]
	if !ok {
		return "", types.ErrUnreadablePdf
	}
	return text, nil
}

const leaseText = `RESIDENTIAL LEASE
1. The tenant pays rent of 900 EUR on the first day of each month.
2. The landlord keeps a security deposit of one month's rent.
3. Pets are not allowed without written consent of the landlord.
4. The lease agreement states a notice period of three months.`

func newIndex() *store.ClauseIndex {
	return store.NewClauseIndex(store.NewMemoryStore(bagOfWords{}))
}

// loadedSession returns a session whose live contract is leaseText.
func loadedSession(t *testing.T, index *store.ClauseIndex) *session.Session {
	t.Helper()
	sess := session.New()
	l := NewContractLoader(&fakePDF{texts: map[string]string{"lease.pdf": leaseText}}, index)
	_, err := l.Load(context.Background(), sess, "lease.pdf", "lease.pdf")
	require.NoError(t, err)
	return sess
}
