// Package cache maps a question string to a previously computed answer, with
// a time-to-live. The cache is advisory: every lookup may miss and the answer
// pipeline still works, just slower and costlier.
package cache

import (
	"context"
	"time"

	"github.com/buseagkoc/construction-chatbot/internal/model"
)

const keyPrefix = "query:"

// Store is the question-to-answer cache contract. Absence is a valid state,
// never an error.
type Store interface {
	Get(ctx context.Context, question string) (*model.Answer, bool, error)
	Set(ctx context.Context, question string, answer *model.Answer, ttl time.Duration) error
	Close() error
}

// Key is the question text verbatim, case-sensitive, under a fixed prefix.
func cacheKey(question string) string {
	return keyPrefix + question
}
