// Package store holds the vector index of document sections.
package store

import (
	"context"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

// VectorStore indexes section records and retrieves the nearest ones to a
// question. Insert is all-or-nothing: either every record in the batch is
// committed or none are.
type VectorStore interface {
	Insert(ctx context.Context, records []model.IndexedRecord) error
	Query(ctx context.Context, text string, topK int) ([]model.RetrievedSection, error)
}
