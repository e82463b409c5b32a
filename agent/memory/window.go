package memory

import (
	"strings"
	"sync"

	contractx "github.com/tanpawarit/rulebase-agent/agent/contract"
)

const (
	DefaultMaxTurns  = 5
	DefaultSessionID = "default"
)

// Window is a bounded FIFO of conversation turns. It is safe for concurrent use.
type Window struct {
	mu       sync.RWMutex
	maxTurns int
	turns    []contractx.Turn
}

func NewWindow(maxTurns int) *Window {
	if maxTurns <= 0 {
		maxTurns = DefaultMaxTurns
	}
	return &Window{maxTurns: maxTurns}
}

// Add appends a turn and evicts the oldest ones beyond the bound.
func (w *Window) Add(turn contractx.Turn) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.turns = append(w.turns, turn)
	if over := len(w.turns) - w.maxTurns; over > 0 {
		w.turns = append([]contractx.Turn(nil), w.turns[over:]...)
	}
}

func (w *Window) Turns() []contractx.Turn {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return append([]contractx.Turn(nil), w.turns...)
}

func (w *Window) Len() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.turns)
}

func (w *Window) ContextString() string {
	return FormatContext(w.Turns())
}

// FormatContext renders turns as alternating "사용자:" / "에이전트:" lines.
// No turns renders as the empty string.
func FormatContext(turns []contractx.Turn) string {
	if len(turns) == 0 {
		return ""
	}
	lines := make([]string, 0, len(turns)*2)
	for _, t := range turns {
		lines = append(lines, "사용자: "+t.User, "에이전트: "+t.Agent)
	}
	return strings.Join(lines, "\n")
}

func sessionKey(sessionID string) string {
	if s := strings.TrimSpace(sessionID); s != "" {
		return s
	}
	return DefaultSessionID
}

// Backend names accepted by APP_MEMORY_BACKEND.
const (
	BackendInMemory = "inmemory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)
