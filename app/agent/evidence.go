package agent

import (
	"context"
	"log/slog"
	"strings"

	"contractrag/app/session"
	"contractrag/model"
	"contractrag/types"
)

// MatchEvidence reports, for every clause in order, whether the detected text
// appears in it, ignoring case. Blank detected text matches nothing.
func MatchEvidence(detected string, clauses []types.Clause) []types.EvidenceMatch {
	matches := make([]types.EvidenceMatch, 0, len(clauses))
	needle := strings.ToLower(detected)
	// an empty needle is contained in every clause, so OCR that read nothing would match them all
	blank := strings.TrimSpace(needle) == ""
	for _, c := range clauses {
		matches = append(matches, types.EvidenceMatch{
			ClauseNumber: c.ID,
			ClauseText:   c.Text,
			Matched:      !blank && strings.Contains(strings.ToLower(c.Text), needle),
		})
	}
	return matches
}

// DetectedText joins the region texts with single spaces, in the order the
// OCR reported them.
func DetectedText(regions []types.TextRegion) string {
	parts := make([]string, len(regions))
	for i, r := range regions {
		parts[i] = r.Text
	}
	return strings.Join(parts, " ")
}

// EvidenceMatcher reads text from a photo and checks it against the clauses
// of the live contract.
type EvidenceMatcher struct {
	ocr    model.OCR
	logger *slog.Logger
}

func NewEvidenceMatcher(ocr model.OCR) *EvidenceMatcher {
	return &EvidenceMatcher{
		ocr:    ocr,
		logger: slog.Default().With("component", "evidence"),
	}
}

// Match returns the detected text and one match per clause. Without a
// contract there is nothing to match against and the result is empty.
func (m *EvidenceMatcher) Match(ctx context.Context, sess *session.Session, imagePath string) (string, []types.EvidenceMatch, error) {
	var clauses []types.Clause
	if contract, release, err := sess.Acquire(); err == nil {
		clauses = contract.Clauses
		release()
	}

	regions, err := m.ocr.Read(ctx, imagePath)
	if err != nil {
		return "", nil, err
	}
	detected := DetectedText(regions)
	matches := MatchEvidence(detected, clauses)

	matched := 0
	for _, match := range matches {
		if match.Matched {
			matched++
		}
	}
	m.logger.Info("evidence matched", "regions", len(regions), "clauses", len(clauses), "matched", matched)
	return detected, matches, nil
}
