package agent

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"contractrag/app/session"
	"contractrag/model"
	"contractrag/store"
	"contractrag/types"
)

// ClauseQuerier retrieves the clauses of a built index most relevant to a
// question.
type ClauseQuerier interface {
	Query(ctx context.Context, h store.Handle, question string, k int) ([]types.RetrievedClause, error)
}

// Answerer answers questions about the live contract from its retrieved
// clauses and records every answered exchange in the conversation.
type Answerer struct {
	index  ClauseQuerier
	gen    model.Generator
	k      int
	logger *slog.Logger
}

func NewAnswerer(index ClauseQuerier, gen model.Generator, k int) *Answerer {
	if k <= 0 {
		k = 3
	}
	return &Answerer{
		index:  index,
		gen:    gen,
		k:      k,
		logger: slog.Default().With("component", "answerer"),
	}
}

func (a *Answerer) Answer(ctx context.Context, sess *session.Session, question string) (string, error) {
	start := time.Now()
	defer func() {
		a.logger.Debug("answer finished", "took", time.Since(start))
	}()

	contract, release, err := sess.Acquire()
	if err != nil {
		return "", err
	}

	question = strings.TrimSpace(question)
	if question == "" {
		release()
		return "", types.ErrMissingQuestion
	}

	// the index is only needed until retrieval returns
	clauses, err := a.index.Query(ctx, contract.Index, question, a.k)
	release()
	if err != nil {
		return "", fmt.Errorf("retrieve clauses: %w", err)
	}
	a.logger.Info("clauses retrieved", "question_chars", len(question), "clauses", len(clauses))

	reply, err := a.gen.Generate(ctx, BuildAnswerPrompt(question, clauses))
	if err != nil {
		return "", err
	}

	answer := FormatAnswer(strings.TrimSpace(reply), clauses)
	if !sess.RecordExchange(contract, question, answer) {
		a.logger.Warn("contract replaced while answering, exchange not recorded", "file", contract.FileName)
	}
	return answer, nil
}
