package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/model"
	"github.com/buseagkoc/construction-chatbot/internal/pdftext"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
	"github.com/buseagkoc/construction-chatbot/internal/sectioner"
)

// DocumentService sections uploaded documents page by page and keeps the
// processed results in memory for substring search. Instantiated per process;
// tests create isolated instances.
type DocumentService struct {
	mu        sync.RWMutex
	documents map[string]*model.Document
}

func NewDocumentService() *DocumentService {
	return &DocumentService{
		documents: make(map[string]*model.Document),
	}
}

// Process sections every page of the source in page order. A failure on any
// page fails the whole document; nothing partial is retained.
func (s *DocumentService) Process(ctx context.Context, src pdftext.Source, docID string) (*model.Document, error) {
	logger := logutil.GetLogger(ctx).With(zap.String("doc_id", docID))

	var sections []model.Section
	totalPages := src.NumPages()
	for page := 1; page <= totalPages; page++ {
		text, err := src.PageText(page)
		if err != nil {
			logger.Error("page extraction failed", zap.Int("page", page), zap.Error(err))
			return nil, appErr.Sectioning(fmt.Errorf("process document %s: %w", docID, err))
		}
		sections = append(sections, sectioner.Split(text, page)...)
	}

	doc := &model.Document{
		ID:         docID,
		Sections:   sections,
		TotalPages: totalPages,
	}
	s.mu.Lock()
	s.documents[docID] = doc
	s.mu.Unlock()

	logger.Info("document processed", zap.Int("pages", totalPages), zap.Int("sections", len(sections)))
	return doc, nil
}

// Get returns a previously processed document.
func (s *DocumentService) Get(docID string) (*model.Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[docID]
	return doc, ok
}

// Delete drops a processed document from memory. Returns false when the id
// was never processed.
func (s *DocumentService) Delete(docID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.documents[docID]; !ok {
		return false
	}
	delete(s.documents, docID)
	return true
}

// Search scans all processed sections for a case-insensitive substring match
// and ranks hits by combined occurrence count in title and content. This is a
// linear scan, not an index.
func (s *DocumentService) Search(query string, maxResults int) []model.SectionMatch {
	if maxResults <= 0 {
		maxResults = 5
	}
	lowered := strings.ToLower(query)

	s.mu.RLock()
	var results []model.SectionMatch
	for docID, doc := range s.documents {
		for _, section := range doc.Sections {
			title := strings.ToLower(section.Title)
			content := strings.ToLower(section.Content)
			if strings.Contains(title, lowered) || strings.Contains(content, lowered) {
				results = append(results, model.SectionMatch{
					DocID:   docID,
					Title:   section.Title,
					Content: section.Content,
					Page:    section.Page,
				})
			}
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(results, func(i, j int) bool {
		return matchScore(results[i], lowered) > matchScore(results[j], lowered)
	})
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func matchScore(match model.SectionMatch, loweredQuery string) int {
	return strings.Count(strings.ToLower(match.Title), loweredQuery) +
		strings.Count(strings.ToLower(match.Content), loweredQuery)
}
