package agent

import (
	"context"
	"log/slog"
	"strings"

	"contractrag/app/session"
	"contractrag/model"
	"contractrag/types"
)

// LetterWriter drafts a complaint letter to the landlord from conversation
// excerpts and the opening of the contract. It never touches the log.
type LetterWriter struct {
	gen          model.Generator
	excerptChars int
	logger       *slog.Logger
}

func NewLetterWriter(gen model.Generator, excerptChars int) *LetterWriter {
	return &LetterWriter{
		gen:          gen,
		excerptChars: excerptChars,
		logger:       slog.Default().With("component", "letter"),
	}
}

// FromSelection writes a letter from turns the user picked, in the order
// given, each optionally annotated with a note.
func (w *LetterWriter) FromSelection(ctx context.Context, sess *session.Session, req types.LetterRequest) (string, error) {
	lines, notes := selection(req)
	if len(lines) == 0 {
		return "", types.ErrEmptySelection
	}
	raw, err := contractText(sess)
	if err != nil {
		return "", err
	}
	return w.compose(ctx, raw, lines, notes)
}

// FromHistory writes a letter from the whole conversation.
func (w *LetterWriter) FromHistory(ctx context.Context, sess *session.Session) (string, error) {
	raw, err := contractText(sess)
	if err != nil {
		return "", err
	}
	turns := sess.Log().All()
	if len(turns) == 0 {
		return "", types.ErrEmptyHistory
	}

	lines := make([]string, 0, len(turns))
	for _, turn := range turns {
		switch turn.Role {
		case types.RoleAssistant:
			lines = append(lines, "Assistant: "+AnswerText(turn.Text))
		default:
			lines = append(lines, "User: "+turn.Text)
		}
	}
	return w.compose(ctx, raw, lines, nil)
}

func (w *LetterWriter) compose(ctx context.Context, raw string, lines, notes []string) (string, error) {
	prompt := BuildLetterPrompt(Excerpt(raw, w.excerptChars), lines, notes)
	letter, err := w.gen.Generate(ctx, prompt)
	if err != nil {
		return "", err
	}
	w.logger.Info("letter generated", "lines", len(lines), "letter_chars", len(letter))
	return letter, nil
}

func contractText(sess *session.Session) (string, error) {
	contract, release, err := sess.Acquire()
	if err != nil {
		return "", err
	}
	defer release()
	if strings.TrimSpace(contract.RawText) == "" {
		return "", types.ErrNoContractLoaded
	}
	return contract.RawText, nil
}

// selection drops blank turns, keeping each note aligned with its turn.
func selection(req types.LetterRequest) (lines, notes []string) {
	withNotes := len(req.Notes) == len(req.Selected)
	for i, s := range req.Selected {
		if strings.TrimSpace(s) == "" {
			continue
		}
		lines = append(lines, s)
		if withNotes {
			notes = append(notes, req.Notes[i])
		}
	}
	return lines, notes
}
