package oracle

import (
	"context"
	"sync"

	"fjacquet/spending-coach/internal/conversation"
)

// Call records one invocation of a Stub.
type Call struct {
	Operation string
	Prompt    string
	Turns     []conversation.Turn
}

// Stub is a Backend returning canned replies. It records every call and is safe
// for concurrent use.
type Stub struct {
	mu      sync.Mutex
	reply   string
	replies []string
	err     error
	calls   []Call
}

// NewStub returns a Stub answering every call with reply.
func NewStub(reply string) *Stub {
	return &Stub{reply: reply}
}

// NewFailingStub returns a Stub failing every call with err.
func NewFailingStub(err error) *Stub {
	return &Stub{err: err}
}

// QueueReplies makes the next calls return replies in order before falling back
// to the default reply.
func (s *Stub) QueueReplies(replies ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

// Name implements Backend.
func (s *Stub) Name() string { return "stub" }

// Complete implements Oracle.
func (s *Stub) Complete(_ context.Context, prompt string) (string, error) {
	return s.record(Call{Operation: "complete", Prompt: prompt})
}

// Converse implements Oracle.
func (s *Stub) Converse(_ context.Context, turns []conversation.Turn) (string, error) {
	copied := make([]conversation.Turn, len(turns))
	copy(copied, turns)
	return s.record(Call{Operation: "converse", Turns: copied})
}

func (s *Stub) record(call Call) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
	if s.err != nil {
		return "", s.err
	}
	if len(s.replies) > 0 {
		reply := s.replies[0]
		s.replies = s.replies[1:]
		return reply, nil
	}
	return s.reply, nil
}

// Calls returns a copy of the recorded calls.
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}

// CallCount returns the number of recorded calls.
func (s *Stub) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
