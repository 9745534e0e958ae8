package service

import (
	"context"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/model"
	"github.com/buseagkoc/construction-chatbot/internal/store"
)

// BatchService accumulates sectioned documents and flushes them to the vector
// store in batches. The dual trigger (size or age) bounds worst-case staleness
// even under low upload volume.
type BatchService struct {
	store store.VectorStore

	mu        sync.Mutex
	queue     []model.BatchEntry
	lastFlush time.Time

	batchSize int
	maxAge    time.Duration
	now       func() time.Time
}

func NewBatchService(vectorStore store.VectorStore, batchSize int, maxAge time.Duration) *BatchService {
	if batchSize <= 0 {
		batchSize = 10
	}
	if maxAge <= 0 {
		maxAge = 60 * time.Second
	}
	return &BatchService{
		store:     vectorStore,
		batchSize: batchSize,
		maxAge:    maxAge,
		now:       time.Now,
		lastFlush: time.Now(),
	}
}

// Enqueue appends the document's sections to the batch queue under a
// uniqueness-suffixed doc id and flushes when the queue is full or the oldest
// entry has waited past the age bound. Returns the suffixed id.
func (s *BatchService) Enqueue(ctx context.Context, docID string, sections []model.Section) (string, error) {
	uniqueID := fmt.Sprintf("%s_%s", docID, idSuffix())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, model.BatchEntry{
		DocID:      uniqueID,
		Sections:   sections,
		EnqueuedAt: s.now(),
	})
	if len(s.queue) >= s.batchSize || s.now().Sub(s.lastFlush) > s.maxAge {
		if err := s.flushLocked(ctx); err != nil {
			return uniqueID, err
		}
	}
	return uniqueID, nil
}

// Drain flushes whatever is queued. No-op on an empty queue. Used at shutdown.
func (s *BatchService) Drain(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.flushLocked(ctx)
}

// FlushIfStale flushes only when the queue is non-empty and older than the
// age bound. Called from the periodic job.
func (s *BatchService) FlushIfStale(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 || s.now().Sub(s.lastFlush) <= s.maxAge {
		return nil
	}
	return s.flushLocked(ctx)
}

// Pending reports the queued entry count.
func (s *BatchService) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// flushLocked submits every queued section to the store in one insert call.
// On failure the queue stays intact so the accumulated work retries on the
// next trigger. Caller must hold s.mu.
func (s *BatchService) flushLocked(ctx context.Context) error {
	if len(s.queue) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx).With(zap.Int("entries", len(s.queue)))

	processedAt := s.now().Format(time.RFC3339)
	var records []model.IndexedRecord
	for _, entry := range s.queue {
		for idx, section := range entry.Sections {
			records = append(records, model.IndexedRecord{
				ID:          fmt.Sprintf("%s_section_%d", entry.DocID, idx),
				Content:     section.Content,
				DocID:       entry.DocID,
				Title:       section.Title,
				Page:        section.Page,
				ProcessedAt: processedAt,
			})
		}
	}
	if err := s.store.Insert(ctx, records); err != nil {
		logger.Error("failed to flush batch", zap.Error(err))
		return err
	}
	s.queue = nil
	s.lastFlush = s.now()
	logger.Info("batch flushed", zap.Int("records", len(records)))
	return nil
}

func idSuffix() string {
	id := uuid.New()
	return hex.EncodeToString(id[:])[:8]
}
