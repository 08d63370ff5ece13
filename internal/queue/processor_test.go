package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	apperrors "phonics-coach/internal/errors"
	"phonics-coach/internal/models"
	"phonics-coach/internal/storage"
	storagemocks "phonics-coach/internal/storage/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/mock/gomock"
)

// fakeArchiver records created attempts and can fail the first N writes.
type fakeArchiver struct {
	mu       sync.Mutex
	records  []models.AttemptRecord
	failures int
	err      error
	calls    int
}

func (f *fakeArchiver) Create(_ context.Context, rec *models.AttemptRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failures > 0 {
		f.failures--
		return errors.New("mongo: server selection timeout")
	}
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *rec)
	return nil
}

func (f *fakeArchiver) snapshot() ([]models.AttemptRecord, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]models.AttemptRecord(nil), f.records...), f.calls
}

func newJob(audio []byte) ArchiveJob {
	return ArchiveJob{
		Record: models.AttemptRecord{
			AttemptID:    "att-1",
			UserID:       primitive.NewObjectID(),
			ExpectedWord: "Ball",
			Accuracy:     75,
		},
		Audio: audio,
	}
}

func runUntil(t *testing.T, p *Processor, cond func() bool) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	assert.Eventually(t, cond, 2*time.Second, 10*time.Millisecond)
	p.Stop()
}

func TestProcessor_UploadsAudioThenWritesRecord(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := NewMemoryQueue(10)
	store := storagemocks.NewMockStorage(ctrl)
	archiver := &fakeArchiver{}
	p := NewProcessor(q, store, archiver, 1)

	j := newJob([]byte("RIFF....WAVE"))
	key := storage.AttemptKey(j.Record.UserID.Hex(), "att-1")
	store.EXPECT().PutObject(gomock.Any(), key, gomock.Any(), int64(12), storage.ContentTypeWAV).Return(nil)
	require.NoError(t, q.Enqueue(j))

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 1
	})

	recs, _ := archiver.snapshot()
	assert.Equal(t, key, recs[0].AudioKey)
	assert.Equal(t, 75, recs[0].Accuracy)
}

func TestProcessor_NoAudioSkipsUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := NewMemoryQueue(10)
	archiver := &fakeArchiver{}
	// no PutObject expectation: the mock fails the test if it is called
	p := NewProcessor(q, storagemocks.NewMockStorage(ctrl), archiver, 1)
	require.NoError(t, q.Enqueue(newJob(nil)))

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 1
	})

	recs, _ := archiver.snapshot()
	assert.Empty(t, recs[0].AudioKey)
}

func TestProcessor_NilStorageKeepsRecord(t *testing.T) {
	q := NewMemoryQueue(10)
	archiver := &fakeArchiver{}
	p := NewProcessor(q, nil, archiver, 1)
	require.NoError(t, q.Enqueue(newJob([]byte("RIFF"))))

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 1
	})
}

func TestProcessor_RetriesWriteWithoutReuploading(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := NewMemoryQueue(10)
	store := storagemocks.NewMockStorage(ctrl)
	archiver := &fakeArchiver{failures: 1}
	p := NewProcessor(q, store, archiver, 1)
	p.retryDelay = 10 * time.Millisecond

	store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).Times(1)
	require.NoError(t, q.Enqueue(newJob([]byte("RIFF"))))

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 1
	})

	recs, calls := archiver.snapshot()
	assert.Equal(t, 2, calls)
	assert.NotEmpty(t, recs[0].AudioKey)
}

func TestProcessor_RetriesUpload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	q := NewMemoryQueue(10)
	store := storagemocks.NewMockStorage(ctrl)
	archiver := &fakeArchiver{}
	p := NewProcessor(q, store, archiver, 1)
	p.retryDelay = 10 * time.Millisecond

	gomock.InOrder(
		store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(errors.New("503 slow down")),
		store.EXPECT().PutObject(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil),
	)
	require.NoError(t, q.Enqueue(newJob([]byte("RIFF"))))

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 1
	})
}

func TestProcessor_GivesUpAfterMaxRetries(t *testing.T) {
	q := NewMemoryQueue(10)
	archiver := &fakeArchiver{failures: MaxRetries + 5}
	p := NewProcessor(q, nil, archiver, 1)
	p.retryDelay = 5 * time.Millisecond

	require.NoError(t, q.Enqueue(newJob(nil)))

	runUntil(t, p, func() bool {
		_, calls := archiver.snapshot()
		return calls == MaxRetries
	})

	// no further retry is scheduled
	time.Sleep(50 * time.Millisecond)
	recs, calls := archiver.snapshot()
	assert.Empty(t, recs)
	assert.Equal(t, MaxRetries, calls)
}

func TestProcessor_AlreadyArchivedIsSuccess(t *testing.T) {
	q := NewMemoryQueue(10)
	archiver := &fakeArchiver{err: apperrors.ErrAttemptAlreadyArchived}
	p := NewProcessor(q, nil, archiver, 1)
	p.retryDelay = 5 * time.Millisecond

	require.NoError(t, q.Enqueue(newJob(nil)))

	runUntil(t, p, func() bool {
		_, calls := archiver.snapshot()
		return calls == 1
	})

	time.Sleep(30 * time.Millisecond)
	_, calls := archiver.snapshot()
	assert.Equal(t, 1, calls)
}

func TestProcessor_StopIsIdempotent(t *testing.T) {
	p := NewProcessor(NewMemoryQueue(1), nil, &fakeArchiver{}, 3)
	p.Start(context.Background())

	done := make(chan struct{})
	go func() {
		p.Stop()
		p.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop() timed out")
	}
}

func TestProcessor_ConcurrentJobs(t *testing.T) {
	q := NewMemoryQueue(100)
	archiver := &fakeArchiver{}
	p := NewProcessor(q, nil, archiver, 5)

	for i := 0; i < 20; i++ {
		require.NoError(t, q.Enqueue(newJob(nil)))
	}

	runUntil(t, p, func() bool {
		recs, _ := archiver.snapshot()
		return len(recs) == 20
	})
}

func TestBackoff(t *testing.T) {
	delays := []time.Duration{
		RetryDelay * time.Duration(1<<0),
		RetryDelay * time.Duration(1<<1),
	}

	assert.Equal(t, 5*time.Second, delays[0])
	assert.Equal(t, 10*time.Second, delays[1])
}
