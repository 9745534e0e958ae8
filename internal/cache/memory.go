package cache

import (
	"context"
	"sync"
	"time"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

type memoryEntry struct {
	answer   model.Answer
	deadline time.Time
}

type memoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory returns a process-local cache for deployments without Redis.
func NewMemory() Store {
	return &memoryStore{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (s *memoryStore) Get(_ context.Context, question string) (*model.Answer, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[cacheKey(question)]
	if !ok {
		return nil, false, nil
	}
	if s.now().After(entry.deadline) {
		delete(s.entries, cacheKey(question))
		return nil, false, nil
	}
	answer := entry.answer
	return &answer, true, nil
}

func (s *memoryStore) Set(_ context.Context, question string, answer *model.Answer, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[cacheKey(question)] = memoryEntry{
		answer:   *answer,
		deadline: s.now().Add(ttl),
	}
	return nil
}

func (s *memoryStore) Close() error {
	return nil
}
