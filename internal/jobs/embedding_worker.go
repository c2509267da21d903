package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloo-solutions/linkshelf/internal/domain"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// MaxRetries is the number of attempts before a job is marked failed
	MaxRetries = 3
	// DefaultBatchSize is the number of jobs claimed per pass
	DefaultBatchSize = 10
	// DefaultConcurrency bounds the embedding calls in flight during a pass
	DefaultConcurrency = 4
)

// EmbeddingJobRepository is the job queue the worker drains
type EmbeddingJobRepository interface {
	// ClaimPending moves up to limit pending jobs to processing and returns them
	ClaimPending(ctx context.Context, limit int) ([]*domain.EmbeddingJob, error)
	UpdateStatus(ctx context.Context, id string, status domain.EmbeddingJobStatus, errMsg string) error
	IncrementRetries(ctx context.Context, id string) error
}

// EmbeddingService defines the interface for generating embeddings
type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, itemID string) error
}

// EmbeddingWorker embeds saved items in the background
type EmbeddingWorker struct {
	repo        EmbeddingJobRepository
	service     EmbeddingService
	batchSize   int
	concurrency int
	logger      zerolog.Logger
}

// NewEmbeddingWorker creates a new EmbeddingWorker instance
func NewEmbeddingWorker(repo EmbeddingJobRepository, service EmbeddingService, logger zerolog.Logger) *EmbeddingWorker {
	return &EmbeddingWorker{
		repo:        repo,
		service:     service,
		batchSize:   DefaultBatchSize,
		concurrency: DefaultConcurrency,
		logger:      logger.With().Str("component", "embedding_worker").Logger(),
	}
}

// ProcessJobs claims one batch and embeds its items concurrently. A failing
// job never aborts the others; only a failed claim is returned.
func (w *EmbeddingWorker) ProcessJobs(ctx context.Context) error {
	jobs, err := w.repo.ClaimPending(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("failed to claim pending jobs: %w", err)
	}

	if len(jobs) == 0 {
		return nil
	}

	w.logger.Debug().Int("count", len(jobs)).Msg("processing pending embedding jobs")

	var g errgroup.Group
	g.SetLimit(w.concurrency)
	for _, job := range jobs {
		g.Go(func() error {
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error().Err(err).Str("job_id", job.ID).Msg("error processing job")
			}
			return nil
		})
	}
	return g.Wait()
}

func (w *EmbeddingWorker) processJob(ctx context.Context, job *domain.EmbeddingJob) error {
	if job.ItemID == "" {
		return w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, "job has no item_id")
	}

	err := w.service.GenerateEmbedding(ctx, job.ItemID)
	if errors.Is(err, domain.ErrItemNotFound) {
		// deleted after the job was queued
		return w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, err.Error())
	}
	if err != nil {
		return w.handleJobFailure(ctx, job, err)
	}

	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}

	w.logger.Debug().Str("job_id", job.ID).Str("item_id", job.ItemID).Msg("item embedded")
	return nil
}

// handleJobFailure requeues the job, or fails it once MaxRetries is reached
func (w *EmbeddingWorker) handleJobFailure(ctx context.Context, job *domain.EmbeddingJob, jobErr error) error {
	attempt := job.Retries + 1
	w.logger.Warn().Err(jobErr).Str("job_id", job.ID).Int32("attempt", attempt).Msg("embedding failed")

	if err := w.repo.IncrementRetries(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to increment retries: %w", err)
	}

	if attempt >= MaxRetries {
		errMsg := fmt.Sprintf("max retries exceeded: %v", jobErr)
		if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusFailed, errMsg); err != nil {
			return fmt.Errorf("failed to mark job failed: %w", err)
		}
		return nil
	}

	errMsg := fmt.Sprintf("attempt %d: %v", attempt, jobErr)
	if err := w.repo.UpdateStatus(ctx, job.ID, domain.EmbeddingJobStatusPending, errMsg); err != nil {
		return fmt.Errorf("failed to requeue job: %w", err)
	}
	return nil
}
