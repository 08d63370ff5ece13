// Package queue archives analysed attempts in the background.
package queue

import (
	"context"
	"sync"

	"phonics-coach/internal/models"
)

// ArchiveJob carries one attempt to object storage and MongoDB.
type ArchiveJob struct {
	Record     models.AttemptRecord
	Audio      []byte
	RetryCount int
}

// MemoryQueue is a bounded in-process queue.
type MemoryQueue struct {
	jobs     chan ArchiveJob
	capacity int
	mu       sync.RWMutex
	closed   bool
}

func NewMemoryQueue(capacity int) *MemoryQueue {
	return &MemoryQueue{
		jobs:     make(chan ArchiveJob, capacity),
		capacity: capacity,
	}
}

// Enqueue never blocks: a full queue returns ErrQueueFull. The read lock is
// held for the whole send so Close cannot close the channel underneath it.
func (q *MemoryQueue) Enqueue(job ArchiveJob) error {
	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Dequeue(ctx context.Context) (ArchiveJob, error) {
	select {
	case <-ctx.Done():
		return ArchiveJob{}, ctx.Err()
	case job, ok := <-q.jobs:
		if !ok {
			return ArchiveJob{}, ErrQueueClosed
		}
		return job, nil
	}
}

// Close stops new jobs. Jobs already queued can still be drained.
func (q *MemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
}

// Reset reopens the queue empty. Used between API tests.
func (q *MemoryQueue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.closed = false
	q.jobs = make(chan ArchiveJob, q.capacity)
}

func (q *MemoryQueue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.jobs)
}

func (q *MemoryQueue) Capacity() int {
	return q.capacity
}
