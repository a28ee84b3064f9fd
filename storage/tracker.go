package storage

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryTracker keeps the current submission token of each session in
// process memory. It is enough for a single replica.
type MemoryTracker struct {
	mu     sync.Mutex
	tokens map[string]string
}

func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{tokens: make(map[string]string)}
}

// Begin issues a new token for session, superseding the previous one.
func (t *MemoryTracker) Begin(_ context.Context, session string) (string, error) {
	token := uuid.NewString()

	t.mu.Lock()
	defer t.mu.Unlock()
	t.tokens[session] = token
	return token, nil
}

// IsCurrent reports whether token is the latest one issued for session.
// A forgotten session has nothing newer, so any token is current.
func (t *MemoryTracker) IsCurrent(_ context.Context, session, token string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	current, ok := t.tokens[session]
	return !ok || current == token, nil
}

// Forget drops the session's token.
func (t *MemoryTracker) Forget(_ context.Context, session string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.tokens, session)
	return nil
}

// Len returns the number of tracked sessions.
func (t *MemoryTracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.tokens)
}
