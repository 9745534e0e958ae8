package store

import (
	"context"
	"fmt"

	"github.com/didi/gendry/builder"
	"github.com/jmoiron/sqlx"
	"github.com/pgvector/pgvector-go"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"

	"github.com/buseagkoc/construction-chatbot/internal/ai"
	"github.com/buseagkoc/construction-chatbot/internal/model"
	appErr "github.com/buseagkoc/construction-chatbot/internal/pkg/errors"
)

const (
	taskTypeDocument = "RETRIEVAL_DOCUMENT"
	taskTypeQuery    = "RETRIEVAL_QUERY"
)

// PgVectorStore keeps section embeddings in Postgres with the pgvector
// extension. Record ids are deterministic, so inserting the same id again
// overwrites the previous row.
type PgVectorStore struct {
	db       *sqlx.DB
	embedder ai.IEmbedder
}

func NewPgVectorStore(database *sqlx.DB, embedder ai.IEmbedder) *PgVectorStore {
	return &PgVectorStore{db: database, embedder: embedder}
}

func (s *PgVectorStore) Insert(ctx context.Context, records []model.IndexedRecord) error {
	if len(records) == 0 {
		return nil
	}
	logger := logutil.GetLogger(ctx).With(zap.Int("records", len(records)))

	vectors := make([]pgvector.Vector, 0, len(records))
	for _, record := range records {
		emb, err := s.embedder.Embed(ctx, record.Content, taskTypeDocument)
		if err != nil {
			logger.Error("failed to embed section", zap.String("id", record.ID), zap.Error(err))
			return appErr.Store(fmt.Errorf("embed section %s: %w", record.ID, err))
		}
		vectors = append(vectors, pgvector.NewVector(emb))
	}

	const query = `
		INSERT INTO document_sections (id, content, doc_id, title, page, processed_at, embedding)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			content = EXCLUDED.content,
			doc_id = EXCLUDED.doc_id,
			title = EXCLUDED.title,
			page = EXCLUDED.page,
			processed_at = EXCLUDED.processed_at,
			embedding = EXCLUDED.embedding
	`
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return appErr.Store(err)
	}
	for i, record := range records {
		if _, err := tx.ExecContext(ctx, query,
			record.ID,
			record.Content,
			record.DocID,
			record.Title,
			record.Page,
			record.ProcessedAt,
			vectors[i],
		); err != nil {
			_ = tx.Rollback()
			return appErr.Store(fmt.Errorf("insert section %s: %w", record.ID, err))
		}
	}
	if err := tx.Commit(); err != nil {
		return appErr.Store(err)
	}
	logger.Info("inserted section batch")
	return nil
}

func (s *PgVectorStore) Query(ctx context.Context, text string, topK int) ([]model.RetrievedSection, error) {
	if topK <= 0 {
		topK = 3
	}
	emb, err := s.embedder.Embed(ctx, text, taskTypeQuery)
	if err != nil {
		return nil, appErr.Store(fmt.Errorf("embed query: %w", err))
	}

	const query = `
		SELECT content, doc_id, title, page, 1 - (embedding <=> $1) AS score
		FROM document_sections
		ORDER BY embedding <=> $1
		LIMIT $2
	`
	rows, err := s.db.QueryContext(ctx, query, pgvector.NewVector(emb), topK)
	if err != nil {
		return nil, appErr.Store(err)
	}
	defer rows.Close()

	var results []model.RetrievedSection
	for rows.Next() {
		var item model.RetrievedSection
		if err := rows.Scan(&item.Content, &item.DocID, &item.Title, &item.Page, &item.Score); err != nil {
			return nil, appErr.Store(err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, appErr.Store(err)
	}
	return results, nil
}

// Count reports how many section records are indexed.
func (s *PgVectorStore) Count(ctx context.Context) (int64, error) {
	sqlStr, args, err := builder.BuildSelect("document_sections", nil, []string{"count(*)"})
	if err != nil {
		return 0, appErr.Store(err)
	}
	row := s.db.QueryRowContext(ctx, sqlStr, args...)
	var count int64
	if err := row.Scan(&count); err != nil {
		return 0, appErr.Store(err)
	}
	return count, nil
}

// DeleteByDocument removes every section of one flushed document.
func (s *PgVectorStore) DeleteByDocument(ctx context.Context, docID string) (int64, error) {
	where := map[string]interface{}{
		"doc_id": docID,
	}
	sqlStr, args, err := builder.BuildDelete("document_sections", where)
	if err != nil {
		return 0, appErr.Store(err)
	}
	sqlStr = sqlx.Rebind(sqlx.DOLLAR, sqlStr)
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, appErr.Store(err)
	}
	return res.RowsAffected()
}
