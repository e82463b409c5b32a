package memory

import (
	"context"
	"sync"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

// InProcessStore keeps one Window per session for the process lifetime.
type InProcessStore struct {
	mu       sync.Mutex
	maxTurns int
	windows  map[string]*Window
}

var _ contractx.MemoryStore = (*InProcessStore)(nil)

func NewInProcessStore(maxTurns int) *InProcessStore {
	return &InProcessStore{
		maxTurns: maxTurns,
		windows:  make(map[string]*Window),
	}
}

func (s *InProcessStore) window(sessionID string) *Window {
	key := sessionKey(sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.windows[key]
	if !ok {
		w = NewWindow(s.maxTurns)
		s.windows[key] = w
	}
	return w
}

func (s *InProcessStore) Context(ctx context.Context, sessionID string) (string, error) {
	return s.window(sessionID).ContextString(), nil
}

func (s *InProcessStore) AddTurn(ctx context.Context, sessionID string, turn contractx.Turn) error {
	s.window(sessionID).Add(turn)
	return nil
}

func (s *InProcessStore) Turns(sessionID string) []contractx.Turn {
	return s.window(sessionID).Turns()
}
