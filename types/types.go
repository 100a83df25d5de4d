package types

import (
	"time"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Clause is one numbered unit of the uploaded contract. IDs start at 1 and
// follow segmentation order.
type Clause struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

type RetrievedClause struct {
	ClauseID int
	Text     string
	Score    float64
}

type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

type EvidenceMatch struct {
	ClauseNumber int    `json:"clause_number"`
	ClauseText   string `json:"clause_text"`
	Matched      bool   `json:"matched"`
}

// TextRegion is a single OCR hit: the bounding box in image pixels
// (x1, y1, x2, y2) and the text read inside it.
type TextRegion struct {
	Box  [4]float64 `json:"box"`
	Text string     `json:"text"`
}

type LetterRequest struct {
	Selected []string
	Notes    []string
}

type UploadResult struct {
	FileName   string
	Clauses    int
	UploadedAt time.Time
}
