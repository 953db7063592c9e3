package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/leaguedesk/backend/pkg/queue"
)

// Jobs is the queue the processor consumes.
type Jobs interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*queue.Job, error)
	Retry(ctx context.Context, job *queue.Job) error
}

// BlobDeleter removes stored objects.
type BlobDeleter interface {
	Delete(ctx context.Context, key string) error
}

// BlobCleanupProcessor deletes logos left behind by failed organization commits.
type BlobCleanupProcessor struct {
	blobs   BlobDeleter
	queue   Jobs
	logger  *zap.Logger
	poll    time.Duration
	backoff time.Duration
}

// NewBlobCleanupProcessor creates a blob cleanup processor.
func NewBlobCleanupProcessor(blobs BlobDeleter, q Jobs, logger *zap.Logger) *BlobCleanupProcessor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BlobCleanupProcessor{
		blobs:   blobs,
		queue:   q,
		logger:  logger,
		poll:    5 * time.Second,
		backoff: queue.RetryBackoff,
	}
}

// Process executes one cleanup job.
func (p *BlobCleanupProcessor) Process(ctx context.Context, job *queue.Job) error {
	payload, err := queue.DecodeBlobCleanup(job)
	if err != nil {
		return err
	}
	if err := p.blobs.Delete(ctx, payload.Key); err != nil {
		return err
	}
	p.logger.Info("orphaned blob deleted", zap.String("job_id", job.ID), zap.String("key", payload.Key))
	return nil
}

// Run starts the worker loop: dequeue, process, retry on error.
func (p *BlobCleanupProcessor) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("blob cleanup worker stopping")
			return
		default:
		}

		job, err := p.queue.Dequeue(ctx, p.poll)
		if err != nil {
			if ctx.Err() != nil {
				continue
			}
			p.logger.Warn("dequeue error", zap.Error(err))
			p.sleep(ctx)
			continue
		}
		if job == nil {
			continue
		}

		p.logger.Debug("processing job", zap.String("job_id", job.ID), zap.String("type", string(job.Type)))
		if err := p.Process(ctx, job); err != nil {
			p.logger.Error("job failed", zap.String("job_id", job.ID), zap.Int("attempt", job.Attempt), zap.Error(err))
			if reErr := p.queue.Retry(ctx, job); reErr != nil {
				p.logger.Error("retry enqueue failed", zap.Error(reErr))
			}
			p.sleep(ctx)
		}
	}
}

func (p *BlobCleanupProcessor) sleep(ctx context.Context) {
	t := time.NewTimer(p.backoff)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
