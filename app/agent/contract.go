package agent

import (
	"context"
	"log/slog"
	"time"

	"contractrag/app/session"
	"contractrag/loader"
	"contractrag/store"
	"contractrag/types"
)

type ClauseIndexer interface {
	Build(ctx context.Context, clauses []types.Clause) (store.Handle, error)
	Drop(ctx context.Context, h store.Handle) error
}

// ContractLoader turns an uploaded PDF into the live contract of a session.
type ContractLoader struct {
	pdf    loader.PDFExtractor
	index  ClauseIndexer
	logger *slog.Logger
}

func NewContractLoader(pdf loader.PDFExtractor, index ClauseIndexer) *ContractLoader {
	return &ContractLoader{
		pdf:    pdf,
		index:  index,
		logger: slog.Default().With("component", "contract"),
	}
}

// Load extracts, segments and indexes the PDF at path, then swaps it in as
// the live contract. On any failure the previous contract stays live.
func (l *ContractLoader) Load(ctx context.Context, sess *session.Session, path, fileName string) (types.UploadResult, error) {
	done := sess.BeginUpload()
	defer done()

	start := time.Now()
	raw, err := l.pdf.Extract(path)
	if err != nil {
		return types.UploadResult{}, err
	}

	clauses := loader.NumberClauses(loader.SegmentClauses(raw))
	h, err := l.index.Build(ctx, clauses)
	if err != nil {
		return types.UploadResult{}, err
	}

	contract := &session.Contract{
		FileName:   fileName,
		RawText:    raw,
		Clauses:    clauses,
		Index:      h,
		UploadedAt: time.Now(),
	}
	if old := sess.Replace(contract); old != nil {
		old.Wait()
		if err := l.index.Drop(context.WithoutCancel(ctx), old.Index); err != nil {
			l.logger.Warn("failed to drop previous index", "file", old.FileName, "error", err)
		}
	}

	l.logger.Info("contract loaded", "file", fileName, "chars", len(raw), "clauses", len(clauses), "took", time.Since(start))
	return types.UploadResult{
		FileName:   fileName,
		Clauses:    len(clauses),
		UploadedAt: contract.UploadedAt,
	}, nil
}
