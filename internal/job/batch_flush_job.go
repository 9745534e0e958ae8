package job

import (
	"context"

	"github.com/buseagkoc/construction-chatbot/internal/service"
)

// BatchFlushJob keeps the 60-second staleness bound honest even when no
// uploads arrive to trigger the enqueue-time check.
type BatchFlushJob struct {
	batch *service.BatchService
}

func NewBatchFlushJob(batch *service.BatchService) *BatchFlushJob {
	return &BatchFlushJob{batch: batch}
}

func (j *BatchFlushJob) Name() string {
	return "batch_flush"
}

func (j *BatchFlushJob) Run(ctx context.Context) error {
	if j.batch == nil {
		return nil
	}
	return j.batch.FlushIfStale(ctx)
}
