// Copyright (c) Microsoft. All rights reserved.

package swarm

import (
	"context"
	"sync"
)

// MessageStore persists conversation history between turns. The runner
// never touches a store; callers load history before a turn and append
// the returned messages after it.
type MessageStore interface {
	// ListMessages returns all stored messages in order.
	ListMessages(ctx context.Context) ([]Message, error)

	// AddMessages appends messages to the store.
	AddMessages(ctx context.Context, msgs []Message) error
}

// InMemoryStore is a [MessageStore] backed by a slice. It is safe for
// concurrent use.
type InMemoryStore struct {
	mu       sync.Mutex
	messages []Message
}

// NewInMemoryStore creates an empty [InMemoryStore].
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

func (s *InMemoryStore) ListMessages(_ context.Context) ([]Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]Message, len(s.messages))
	copy(cp, s.messages)
	return cp, nil
}

func (s *InMemoryStore) AddMessages(_ context.Context, msgs []Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msgs...)
	return nil
}
