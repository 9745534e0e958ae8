package service

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/cache"
	"github.com/buseagkoc/construction-chatbot/internal/model"
	"github.com/buseagkoc/construction-chatbot/internal/pdftext"
)

// ProcessResult summarizes one ingested upload.
type ProcessResult struct {
	DocID             string           `json:"doc_id"`
	SectionsProcessed int              `json:"sections_processed"`
	TotalPages        int              `json:"total_pages"`
	ElapsedMS         int64            `json:"elapsed_ms"`
	Metadata          pdftext.Metadata `json:"metadata"`
}

// ChatService ties the pipeline together: document ingestion on one side,
// context-aware question answering on the other.
type ChatService struct {
	documents *DocumentService
	batch     *BatchService
	answers   *AnswerService
	history   *ConversationWindow
	cache     cache.Store
	now       func() time.Time
}

func NewChatService(
	documents *DocumentService,
	batch *BatchService,
	answers *AnswerService,
	history *ConversationWindow,
	queryCache cache.Store,
) *ChatService {
	return &ChatService{
		documents: documents,
		batch:     batch,
		answers:   answers,
		history:   history,
		cache:     queryCache,
		now:       time.Now,
	}
}

// ProcessDocument sections a PDF and enqueues it for indexing. The doc id
// carries the file stem and the ingestion date for easier tracking; the batch
// layer adds the uniqueness suffix.
func (s *ChatService) ProcessDocument(ctx context.Context, path string) (*ProcessResult, error) {
	started := s.now()
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	docID := fmt.Sprintf("doc_%s_%s", stem, s.now().Format("20060102"))

	src, err := pdftext.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := src.Close(); err != nil {
			logutil.GetLogger(ctx).Warn("failed to close pdf source", zap.Error(err))
		}
	}()

	meta, err := pdftext.ExtractMetadata(src)
	if err != nil {
		return nil, err
	}

	doc, err := s.documents.Process(ctx, src, docID)
	if err != nil {
		return nil, err
	}
	uniqueID, err := s.batch.Enqueue(ctx, docID, doc.Sections)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{
		DocID:             uniqueID,
		SectionsProcessed: len(doc.Sections),
		TotalPages:        doc.TotalPages,
		ElapsedMS:         s.now().Sub(started).Milliseconds(),
		Metadata:          meta,
	}, nil
}

// Chat answers a message with recent conversation context and records the
// exchange on success.
func (s *ChatService) Chat(ctx context.Context, message string) (*model.Answer, error) {
	conversationContext, _ := s.history.RenderContext()
	answer, err := s.answers.Answer(ctx, message, conversationContext)
	if err != nil {
		return nil, err
	}
	s.history.Record(message, answer.Answer)
	return answer, nil
}

// Search scans the in-memory processed sections.
func (s *ChatService) Search(query string, maxResults int) []model.SectionMatch {
	return s.documents.Search(query, maxResults)
}

// Close drains the batch queue and releases the cache client. Best effort:
// failures are logged but do not block the remaining shutdown sequence.
func (s *ChatService) Close(ctx context.Context) {
	logger := logutil.GetLogger(ctx)
	if err := s.batch.Drain(ctx); err != nil {
		logger.Error("failed to drain batch queue on shutdown", zap.Error(err))
	}
	if err := s.cache.Close(); err != nil {
		logger.Error("failed to close query cache", zap.Error(err))
	}
}
