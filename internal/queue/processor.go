package queue

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"time"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/metrics"
	"phonics-coach/internal/models"
	"phonics-coach/internal/storage"
	"phonics-coach/pkg/logger"
)

const (
	// MaxRetries is the number of attempts made for one job.
	MaxRetries = 3
	// RetryDelay is the base of the exponential backoff between attempts.
	RetryDelay = 5 * time.Second
)

// AttemptArchiver persists archived attempts. repository.AttemptRepository
// implements it.
type AttemptArchiver interface {
	Create(ctx context.Context, record *models.AttemptRecord) error
}

// Processor uploads attempt audio and writes attempt records.
type Processor struct {
	queue       Queue
	storage     storage.Storage
	archiver    AttemptArchiver
	workerCount int
	retryDelay  time.Duration

	wg           sync.WaitGroup
	shutdownOnce sync.Once
	shutdownCh   chan struct{}
}

// NewProcessor creates a processor. store may be nil, in which case audio is
// dropped and only the record is kept.
func NewProcessor(q Queue, store storage.Storage, archiver AttemptArchiver, workerCount int) *Processor {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Processor{
		queue:       q,
		storage:     store,
		archiver:    archiver,
		workerCount: workerCount,
		retryDelay:  RetryDelay,
		shutdownCh:  make(chan struct{}),
	}
}

func (p *Processor) Start(ctx context.Context) {
	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
	logger.L().Info("archive_processor_started", "workers", p.workerCount)
}

// Stop closes the queue and waits for in-flight jobs. Safe to call twice.
func (p *Processor) Stop() {
	p.shutdownOnce.Do(func() {
		close(p.shutdownCh)
		p.queue.Close()
	})
	p.wg.Wait()
	logger.L().Info("archive_processor_stopped")
}

func (p *Processor) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	for {
		job, err := p.queue.Dequeue(ctx)
		if err != nil {
			if errors.Is(err, ErrQueueClosed) || errors.Is(err, context.Canceled) {
				logger.L().Debug("archive_worker_exit", "worker", id)
				return
			}
			continue
		}
		p.processJob(ctx, job)
	}
}

func (p *Processor) processJob(ctx context.Context, job ArchiveJob) {
	rec := &job.Record
	log := logger.L().With("attempt_id", rec.AttemptID, "try", job.RetryCount+1)

	if len(job.Audio) > 0 && rec.AudioKey == "" && p.storage != nil {
		key := storage.AttemptKey(rec.UserID.Hex(), rec.AttemptID)
		if err := p.storage.PutObject(ctx, key, bytes.NewReader(job.Audio), int64(len(job.Audio)), storage.ContentTypeWAV); err != nil {
			log.Warn("archive_upload_failed", "error", err)
			p.handleFailure(job)
			return
		}
		rec.AudioKey = key
		// the upload is done, retries only need the record
		job.Audio = nil
	}

	if err := p.archiver.Create(ctx, rec); err != nil && !errors.Is(err, apperrors.ErrAttemptAlreadyArchived) {
		log.Warn("archive_write_failed", "error", err)
		p.handleFailure(job)
		return
	}

	metrics.RecordArchiveJob("archived")
	log.Debug("attempt_archived", "audio_key", rec.AudioKey)
}

func (p *Processor) handleFailure(job ArchiveJob) {
	job.RetryCount++
	if job.RetryCount >= MaxRetries {
		metrics.RecordArchiveJob("failed")
		logger.L().Error("archive_gave_up", "attempt_id", job.Record.AttemptID, "tries", job.RetryCount)
		return
	}

	metrics.RecordArchiveJob("retried")
	delay := p.retryDelay * time.Duration(1<<uint(job.RetryCount-1))

	// waits on shutdownCh rather than ctx so a retry in its delay is dropped
	// cleanly on shutdown
	go func() {
		select {
		case <-p.shutdownCh:
			metrics.RecordArchiveJob("failed")
			logger.L().Warn("archive_retry_dropped", "attempt_id", job.Record.AttemptID)
		case <-time.After(delay):
			if err := p.queue.Enqueue(job); err != nil {
				metrics.RecordArchiveJob("failed")
				logger.L().Error("archive_requeue_failed", "attempt_id", job.Record.AttemptID, "error", err)
			}
		}
	}()
}
