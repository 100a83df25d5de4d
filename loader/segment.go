package loader

import (
	"regexp"
	"strings"

	"contractrag/types"
)

// clauseMarker matches a numbered clause opening a new line, e.g. "\n12. ".
// Any line that starts with "<digits>. " splits, so a line break that
// happens to land before "2. " inside a sentence splits too.
var clauseMarker = regexp.MustCompile(`\n\s*\d+\.\s+`)

// SegmentClauses splits raw contract text into normalized clause texts in
// document order. Text without any marker comes back as a single clause;
// blank text yields none.
func SegmentClauses(raw string) []string {
	parts := clauseMarker.Split(raw, -1)

	clauses := make([]string, 0, len(parts))
	for _, part := range parts {
		text := normalizeSpace(part)
		if text == "" {
			continue
		}
		clauses = append(clauses, text)
	}
	return clauses
}

// NumberClauses assigns 1-based ids in order.
func NumberClauses(texts []string) []types.Clause {
	clauses := make([]types.Clause, len(texts))
	for i, text := range texts {
		clauses[i] = types.Clause{ID: i + 1, Text: text}
	}
	return clauses
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
