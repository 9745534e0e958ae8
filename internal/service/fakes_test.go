package service

import (
	"context"
	"sync"
	"time"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

type fakeVectorStore struct {
	mu          sync.Mutex
	inserted    [][]model.IndexedRecord
	insertErr   error
	queryResult []model.RetrievedSection
	queryErr    error
	queries     []string
}

func (f *fakeVectorStore) Insert(_ context.Context, records []model.IndexedRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.inserted = append(f.inserted, records)
	return nil
}

func (f *fakeVectorStore) Query(_ context.Context, text string, _ int) ([]model.RetrievedSection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, text)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return f.queryResult, nil
}

func (f *fakeVectorStore) insertCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

type fakeCache struct {
	mu      sync.Mutex
	entries map[string]*model.Answer
	getErr  error
	setErr  error
	sets    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string]*model.Answer)}
}

func (f *fakeCache) Get(_ context.Context, question string) (*model.Answer, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	answer, ok := f.entries[question]
	return answer, ok, nil
}

func (f *fakeCache) Set(_ context.Context, question string, answer *model.Answer, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.entries[question] = answer
	f.sets++
	return nil
}

func (f *fakeCache) Close() error {
	return nil
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
	systems []string
}

func (f *fakeGenerator) Generate(_ context.Context, systemPrompt, userPrompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return "", f.err
	}
	f.systems = append(f.systems, systemPrompt)
	f.prompts = append(f.prompts, userPrompt)
	return f.reply, nil
}

type fakeSource struct {
	pages   []string
	pageErr map[int]error
	closed  bool
}

func (f *fakeSource) NumPages() int {
	return len(f.pages)
}

func (f *fakeSource) PageText(page int) (string, error) {
	if err, ok := f.pageErr[page]; ok {
		return "", err
	}
	return f.pages[page-1], nil
}

func (f *fakeSource) Close() error {
	f.closed = true
	return nil
}
