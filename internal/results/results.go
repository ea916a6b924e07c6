// Package results persists graded quiz attempts.
package results

import (
	"context"
	"sync"

	"github.com/justestif/go-spotify-quiz/internal/quiz"
)

// Store appends quiz records and lists them in insertion order.
type Store interface {
	Insert(ctx context.Context, rec quiz.Record) error
	All(ctx context.Context) ([]quiz.Record, error)
	Close(ctx context.Context) error
}

// MemoryStore keeps records in memory (for development/testing).
type MemoryStore struct {
	mu      sync.RWMutex
	records []quiz.Record
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Insert appends rec.
func (s *MemoryStore) Insert(_ context.Context, rec quiz.Record) error {
	s.mu.Lock()
	s.records = append(s.records, rec)
	s.mu.Unlock()
	return nil
}

// All returns a copy of every record.
func (s *MemoryStore) All(_ context.Context) ([]quiz.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]quiz.Record(nil), s.records...), nil
}

// Close is a no-op.
func (s *MemoryStore) Close(context.Context) error { return nil }

// Ensure all stores implement Store.
var (
	_ Store = (*MemoryStore)(nil)
	_ Store = (*PostgresStore)(nil)
	_ Store = (*MongoStore)(nil)
)
