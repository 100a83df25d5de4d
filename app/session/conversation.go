package session

import (
	"sync"

	"contractrag/types"
)

// ConversationLog is the append-only chat history of a session.
type ConversationLog struct {
	mu    sync.RWMutex
	turns []types.ConversationTurn
}

func NewConversationLog() *ConversationLog {
	return &ConversationLog{}
}

func (l *ConversationLog) Append(role types.Role, text string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns, types.ConversationTurn{Role: role, Text: text})
}

// AppendPair adds a user turn and the assistant's reply with nothing in
// between.
func (l *ConversationLog) AppendPair(user, assistant string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = append(l.turns,
		types.ConversationTurn{Role: types.RoleUser, Text: user},
		types.ConversationTurn{Role: types.RoleAssistant, Text: assistant},
	)
}

// All returns a copy of the turns in insertion order.
func (l *ConversationLog) All() []types.ConversationTurn {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]types.ConversationTurn, len(l.turns))
	copy(out, l.turns)
	return out
}

func (l *ConversationLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.turns)
}

func (l *ConversationLog) reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.turns = nil
}
