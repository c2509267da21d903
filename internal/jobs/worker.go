// Package jobs runs the background embedding pipeline that feeds related-item lookups.
package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// maxBackoffFactor caps how far the poll interval stretches after repeated failures
const maxBackoffFactor = 8

// JobProcessor handles one batch of queued work per call
type JobProcessor interface {
	ProcessJobs(ctx context.Context) error
}

// Worker polls a JobProcessor until stopped. A pass runs as soon as the worker
// starts, so jobs queued while the process was down are picked up immediately.
type Worker struct {
	processor    JobProcessor
	pollInterval time.Duration
	logger       zerolog.Logger

	stopOnce sync.Once
	stopChan chan struct{}
	doneChan chan struct{}
}

// NewWorker creates a new Worker instance
func NewWorker(processor JobProcessor, pollInterval time.Duration, logger zerolog.Logger) *Worker {
	return &Worker{
		processor:    processor,
		pollInterval: pollInterval,
		logger:       logger.With().Str("component", "worker").Logger(),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
}

// Start blocks until ctx is cancelled or Stop is called
func (w *Worker) Start(ctx context.Context) {
	defer close(w.doneChan)

	w.logger.Info().Dur("poll_interval", w.pollInterval).Msg("worker started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	failures := 0
	for {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("worker stopped: context cancelled")
			return
		case <-w.stopChan:
			w.logger.Info().Msg("worker stopped: stop signal received")
			return
		case <-timer.C:
		}

		if err := w.processor.ProcessJobs(ctx); err != nil {
			failures++
			w.logger.Error().Err(err).Int("consecutive_failures", failures).Msg("error processing jobs")
		} else {
			failures = 0
		}
		timer.Reset(w.nextDelay(failures))
	}
}

// nextDelay doubles the poll interval per consecutive failure, up to maxBackoffFactor
func (w *Worker) nextDelay(failures int) time.Duration {
	factor := 1
	for i := 0; i < failures && factor < maxBackoffFactor; i++ {
		factor *= 2
	}
	return w.pollInterval * time.Duration(factor)
}

// Stop ends the polling loop and waits for the current pass to finish.
// It is safe to call more than once.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() { close(w.stopChan) })
	<-w.doneChan
	w.logger.Info().Msg("worker shutdown complete")
}
