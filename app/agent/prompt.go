package agent

import (
	"fmt"
	"strings"

	"contractrag/types"
)

// NoClauseFound is the source section of an answer that no clause backs.
const NoClauseFound = "No specific clause found."

const (
	answerPrefix  = "Answer: "
	sourceHeading = "\n\nSource:\n"
)

const answerInstruction = `Answer the question about the rental contract based on the given clauses. If the clauses are empty or don't contain the information, say that the contract does not address it. Nothing else.`

const letterInstruction = `Write a formal letter from the tenant to the landlord about the rental contract below.
Keep it concise and professional. State the tenant's concerns clearly and make specific requests for their resolution, based on the conversation excerpts.`

func BuildAnswerPrompt(question string, clauses []types.RetrievedClause) string {
	var b strings.Builder
	b.WriteString(answerInstruction)
	b.WriteString("\nClauses:\n")
	if len(clauses) == 0 {
		b.WriteString("(none)\n")
	}
	for _, c := range clauses {
		fmt.Fprintf(&b, "Clause %d: %s\n", c.ClauseID, c.Text)
	}
	b.WriteString("Question:\n")
	b.WriteString(question)
	b.WriteString("\nAnswer:")
	return b.String()
}

// FormatAnswer renders the generated answer with its cited clauses.
func FormatAnswer(answer string, clauses []types.RetrievedClause) string {
	var b strings.Builder
	b.WriteString(answerPrefix)
	b.WriteString(answer)
	b.WriteString(sourceHeading)
	if len(clauses) == 0 {
		b.WriteString(NoClauseFound)
		return b.String()
	}
	for i, c := range clauses {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "Clause %d: \"%s\"", c.ClauseID, c.Text)
	}
	return b.String()
}

// AnswerText strips the citation section and the answer label from a
// formatted answer. Text that isn't a formatted answer is returned as is.
func AnswerText(formatted string) string {
	text := formatted
	if i := strings.LastIndex(text, sourceHeading); i >= 0 {
		text = text[:i]
	}
	return strings.TrimPrefix(text, answerPrefix)
}

// Excerpt returns the first n characters of raw.
func Excerpt(raw string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(raw)
	if len(runes) <= n {
		return raw
	}
	return string(runes[:n])
}

// BuildLetterPrompt assembles the letter prompt from a contract excerpt and
// conversation lines. notes is either empty or parallel to lines.
func BuildLetterPrompt(excerpt string, lines, notes []string) string {
	var b strings.Builder
	b.WriteString(letterInstruction)
	b.WriteString("\n\nContract excerpt:\n")
	b.WriteString(excerpt)
	b.WriteString("\n\nConversation excerpts:\n")
	for i, line := range lines {
		b.WriteString(line)
		if i < len(notes) && strings.TrimSpace(notes[i]) != "" {
			fmt.Fprintf(&b, " (Note: %s)", strings.TrimSpace(notes[i]))
		}
		b.WriteByte('\n')
	}
	b.WriteString("\nLetter:")
	return b.String()
}
