package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/buseagkoc/construction-chatbot/internal/ai"
	"github.com/buseagkoc/construction-chatbot/internal/cache"
	"github.com/buseagkoc/construction-chatbot/internal/model"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
	"github.com/buseagkoc/construction-chatbot/internal/store"
)

const (
	systemPrompt = "You are a construction document assistant."

	// Never cached; see Answer.
	noResultsAnswer = "I couldn't find anything relevant in the docs. Could you try rephrasing?"

	retrievalTopK = 3
)

// AnswerService turns a question into an answer: cache lookup, vector
// retrieval, gated generation, cache write.
type AnswerService struct {
	store     store.VectorStore
	cache     cache.Store
	generator ai.IGenerator

	// Bounds simultaneous generation calls against the provider's quota.
	permits    *semaphore.Weighted
	cacheTTL   time.Duration
	genTimeout time.Duration
}

func NewAnswerService(
	vectorStore store.VectorStore,
	queryCache cache.Store,
	generator ai.IGenerator,
	maxConcurrent int,
	cacheTTL time.Duration,
	genTimeout time.Duration,
) *AnswerService {
	if maxConcurrent <= 0 {
		maxConcurrent = 5
	}
	if cacheTTL <= 0 {
		cacheTTL = 300 * time.Second
	}
	return &AnswerService{
		store:      vectorStore,
		cache:      queryCache,
		generator:  generator,
		permits:    semaphore.NewWeighted(int64(maxConcurrent)),
		cacheTTL:   cacheTTL,
		genTimeout: genTimeout,
	}
}

// Answer resolves a question against the indexed sections. conversationContext
// is optional rendered recent history. Sources in the result preserve the
// store's relevance ranking.
func (s *AnswerService) Answer(ctx context.Context, question string, conversationContext string) (*model.Answer, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("question", question))

	// The cache is advisory: a failed lookup degrades to a miss.
	cached, hit, err := s.cache.Get(ctx, question)
	if err != nil {
		logger.Warn("cache lookup failed, treating as miss", zap.Error(err))
	}
	if hit {
		logger.Debug("cache hit")
		return cached, nil
	}

	sections, err := s.store.Query(ctx, question, retrievalTopK)
	if err != nil {
		logger.Error("retrieval failed", zap.Error(err))
		return nil, err
	}
	if len(sections) == 0 {
		return &model.Answer{
			Answer:  noResultsAnswer,
			Sources: []model.AnswerSource{},
		}, nil
	}

	if err := s.permits.Acquire(ctx, 1); err != nil {
		return nil, appErr.Generation(err)
	}
	text, err := s.generate(ctx, question, sections, conversationContext)
	s.permits.Release(1)
	if err != nil {
		logger.Error("generation failed", zap.Error(err))
		return nil, appErr.Generation(err)
	}

	answer := &model.Answer{
		Answer:  text,
		Sources: make([]model.AnswerSource, 0, len(sections)),
	}
	for _, section := range sections {
		answer.Sources = append(answer.Sources, model.AnswerSource{
			Title: section.Title,
			Page:  section.Page,
			DocID: section.DocID,
		})
	}

	if err := s.cache.Set(ctx, question, answer, s.cacheTTL); err != nil {
		logger.Error("failed to cache answer", zap.Error(err))
		return nil, err
	}
	return answer, nil
}

func (s *AnswerService) generate(ctx context.Context, question string, sections []model.RetrievedSection, conversationContext string) (string, error) {
	if s.genTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.genTimeout)
		defer cancel()
	}
	prompt := formatPrompt(question, sections, conversationContext)
	text, err := s.generator.Generate(ctx, systemPrompt, prompt)
	if err != nil {
		return "", err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("empty generation response")
	}
	return text, nil
}

func formatPrompt(question string, sections []model.RetrievedSection, conversationContext string) string {
	var parts []string
	if conversationContext != "" {
		parts = append(parts, conversationContext)
	}
	parts = append(parts, "Relevant sections:")
	for _, section := range sections {
		parts = append(parts, fmt.Sprintf("\nSection: %s (Page %d)", section.Title, section.Page))
		parts = append(parts, fmt.Sprintf("Content: %s", section.Content))
	}
	parts = append(parts, fmt.Sprintf("\nQuestion: %s", question))
	return strings.Join(parts, "\n")
}
