package queue

import "context"

//go:generate mockgen -destination=mocks/mock_queue.go -package=mocks phonics-coach/internal/queue Queue

// Queue holds attempts waiting to be archived.
type Queue interface {
	Enqueue(job ArchiveJob) error
	// Dequeue blocks until a job is available, ctx ends or the queue closes.
	Dequeue(ctx context.Context) (ArchiveJob, error)
	Close()
	Len() int
	Capacity() int
}

var _ Queue = (*MemoryQueue)(nil)
