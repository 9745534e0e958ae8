package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

func newTestBatchService(store *fakeVectorStore, batchSize int) (*BatchService, *time.Time) {
	now := time.Now()
	svc := NewBatchService(store, batchSize, 60*time.Second)
	svc.now = func() time.Time { return now }
	svc.lastFlush = now
	return svc, &now
}

func TestBatchServiceEnqueueAddsUniqueSuffix(t *testing.T) {
	store := &fakeVectorStore{}
	svc, _ := newTestBatchService(store, 10)

	sections := []model.Section{{Title: "1.1 GENERAL", Content: "Scope.\n", Page: 1}}
	first, err := svc.Enqueue(context.Background(), "doc_spec_20240101", sections)
	require.NoError(t, err)
	second, err := svc.Enqueue(context.Background(), "doc_spec_20240101", sections)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(first, "doc_spec_20240101_"))
	require.Len(t, strings.TrimPrefix(first, "doc_spec_20240101_"), 8)
	require.NotEqual(t, first, second)
}

func TestBatchServiceFlushOnSize(t *testing.T) {
	store := &fakeVectorStore{}
	svc, _ := newTestBatchService(store, 3)

	sections := []model.Section{
		{Title: "1.1 GENERAL", Content: "Scope.\n", Page: 1},
		{Title: "1.2 DEFINITIONS", Content: "Defs.\n", Page: 1},
	}
	for i := 0; i < 3; i++ {
		_, err := svc.Enqueue(context.Background(), fmt.Sprintf("doc_%d", i), sections)
		require.NoError(t, err)
	}

	// Exactly one flush, queue empty afterwards.
	require.Equal(t, 1, store.insertCalls())
	require.Equal(t, 0, svc.Pending())
	require.Len(t, store.inserted[0], 6)

	// Deterministic record identity from doc id and section index.
	for _, record := range store.inserted[0][:2] {
		require.Contains(t, record.ID, "_section_")
	}
	require.True(t, strings.HasSuffix(store.inserted[0][0].ID, "_section_0"))
	require.True(t, strings.HasSuffix(store.inserted[0][1].ID, "_section_1"))
}

func TestBatchServiceFlushOnAge(t *testing.T) {
	store := &fakeVectorStore{}
	svc, now := newTestBatchService(store, 100)

	sections := []model.Section{{Title: "1.1 GENERAL", Content: "Scope.\n", Page: 1}}
	_, err := svc.Enqueue(context.Background(), "doc_a", sections)
	require.NoError(t, err)
	require.Equal(t, 0, store.insertCalls())

	*now = now.Add(61 * time.Second)
	_, err = svc.Enqueue(context.Background(), "doc_b", sections)
	require.NoError(t, err)
	require.Equal(t, 1, store.insertCalls())
	require.Equal(t, 0, svc.Pending())
	require.Len(t, store.inserted[0], 2)
}

func TestBatchServiceDrainEmptyIsNoop(t *testing.T) {
	store := &fakeVectorStore{}
	svc, _ := newTestBatchService(store, 10)

	require.NoError(t, svc.Drain(context.Background()))
	require.Equal(t, 0, store.insertCalls())
}

func TestBatchServiceFailedFlushKeepsQueue(t *testing.T) {
	store := &fakeVectorStore{insertErr: errors.New("store down")}
	svc, _ := newTestBatchService(store, 1)

	sections := []model.Section{{Title: "1.1 GENERAL", Content: "Scope.\n", Page: 1}}
	_, err := svc.Enqueue(context.Background(), "doc_a", sections)
	require.Error(t, err)
	require.Equal(t, 1, svc.Pending())

	// A later drain retries the accumulated work.
	store.insertErr = nil
	require.NoError(t, svc.Drain(context.Background()))
	require.Equal(t, 0, svc.Pending())
	require.Equal(t, 1, store.insertCalls())
}

func TestBatchServiceFlushIfStale(t *testing.T) {
	store := &fakeVectorStore{}
	svc, now := newTestBatchService(store, 100)

	sections := []model.Section{{Title: "1.1 GENERAL", Content: "Scope.\n", Page: 1}}
	_, err := svc.Enqueue(context.Background(), "doc_a", sections)
	require.NoError(t, err)

	// Not stale yet.
	require.NoError(t, svc.FlushIfStale(context.Background()))
	require.Equal(t, 0, store.insertCalls())

	*now = now.Add(61 * time.Second)
	require.NoError(t, svc.FlushIfStale(context.Background()))
	require.Equal(t, 1, store.insertCalls())
	require.Equal(t, 0, svc.Pending())
}
