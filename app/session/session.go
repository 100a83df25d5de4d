package session

import (
	"sync"
	"time"

	"contractrag/store"
	"contractrag/types"
)

// Contract is one uploaded contract with its clause index. It is never
// modified after it goes live; an upload replaces it as a whole.
type Contract struct {
	FileName   string
	RawText    string
	Clauses    []types.Clause
	Index      store.Handle
	UploadedAt time.Time

	readers sync.WaitGroup
}

// Wait blocks until every reader that acquired c has released it.
func (c *Contract) Wait() {
	c.readers.Wait()
}

// Session holds the live contract and the conversation about it. Handlers
// share one Session; all of its methods are safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	contract *Contract
	log      *ConversationLog

	upload sync.Mutex
}

func New() *Session {
	return &Session{log: NewConversationLog()}
}

// Acquire returns the live contract and a release func that must be called
// when the caller is done with it.
func (s *Session) Acquire() (*Contract, func(), error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contract == nil {
		return nil, func() {}, types.ErrNoContractLoaded
	}
	c := s.contract
	c.readers.Add(1)
	var once sync.Once
	return c, func() { once.Do(c.readers.Done) }, nil
}

// Loaded reports whether a contract has been uploaded.
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.contract != nil
}

// BeginUpload serializes uploads. The returned func ends the upload.
func (s *Session) BeginUpload() func() {
	s.upload.Lock()
	return s.upload.Unlock
}

// Replace makes c the live contract, clears the conversation and returns
// the previous contract, if any.
func (s *Session) Replace(c *Contract) *Contract {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.contract
	s.contract = c
	s.log.reset()
	return old
}

// RecordExchange appends a question and its answer to the conversation, as
// long as c is still the live contract. It reports whether it did.
func (s *Session) RecordExchange(c *Contract, question, answer string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.contract != c {
		return false
	}
	s.log.AppendPair(question, answer)
	return true
}

func (s *Session) Log() *ConversationLog {
	return s.log
}
