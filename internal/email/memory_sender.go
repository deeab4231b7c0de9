package email

import (
	"context"
	"sync"
)

// MemorySender collects messages in memory. Used by tests to inspect what
// would have been delivered.
type MemorySender struct {
	mu       sync.Mutex
	messages []Message

	// FailWith, when set, is returned by Send instead of recording.
	FailWith error
}

func NewMemorySender() *MemorySender {
	return &MemorySender{}
}

func (s *MemorySender) Send(_ context.Context, msg Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailWith != nil {
		return s.FailWith
	}

	s.messages = append(s.messages, msg)
	return nil
}

func (s *MemorySender) Messages() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Message, len(s.messages))
	copy(out, s.messages)
	return out
}
