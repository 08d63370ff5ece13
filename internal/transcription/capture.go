package transcription

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	apperrors "phonics-coach/internal/errors"
)

// Capture is one recording in progress. The Gateway starts it, waits for the
// recording window, then either stops it for its audio or discards it.
type Capture interface {
	Start(ctx context.Context) error
	// Stop ends the capture and returns the WAV recorded so far.
	Stop() ([]byte, error)
	// Discard ends the capture and drops the audio.
	Discard()
	// Done is closed when the capture ends on its own. A nil channel means
	// the capture only ends when stopped.
	Done() <-chan struct{}
}

// UploadCapture records from a reader, typically an uploaded audio file.
// It finishes early once the reader is exhausted.
type UploadCapture struct {
	src   io.Reader
	limit int64

	mu      sync.Mutex
	buf     bytes.Buffer
	err     error
	started bool
	done    chan struct{}
	stop    chan struct{}
	once    sync.Once
}

// NewUploadCapture wraps r. A reader longer than limit bytes fails the
// capture with ErrRecordingTooLarge; limit <= 0 accepts any length.
func NewUploadCapture(r io.Reader, limit int64) *UploadCapture {
	if limit > 0 {
		r = io.LimitReader(r, limit+1)
	}
	return &UploadCapture{
		src:   r,
		limit: limit,
		done: make(chan struct{}),
		stop: make(chan struct{}),
	}
}

// Start begins copying from the reader in the background.
func (c *UploadCapture) Start(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return errors.New("upload capture already started")
	}
	c.started = true
	go c.copy()
	return nil
}

func (c *UploadCapture) copy() {
	defer close(c.done)

	chunk := make([]byte, 32*1024)
	for {
		select {
		case <-c.stop:
			return
		default:
		}

		n, err := c.src.Read(chunk)
		if n > 0 {
			c.mu.Lock()
			c.buf.Write(chunk[:n])
			over := c.limit > 0 && int64(c.buf.Len()) > c.limit
			if over {
				c.buf.Reset()
				c.err = apperrors.ErrRecordingTooLarge
			}
			c.mu.Unlock()
			if over {
				return
			}
		}
		if err == io.EOF {
			return
		}
		if err != nil {
			c.mu.Lock()
			c.err = err
			c.mu.Unlock()
			return
		}
	}
}

// Stop waits for the reader copy to wind down and returns the bytes read.
func (c *UploadCapture) Stop() ([]byte, error) {
	if !c.halt() {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	out := make([]byte, c.buf.Len())
	copy(out, c.buf.Bytes())
	return out, nil
}

// Discard stops reading and drops the buffer.
func (c *UploadCapture) Discard() {
	if !c.halt() {
		return
	}
	c.mu.Lock()
	c.buf.Reset()
	c.mu.Unlock()
}

// Done is closed once the reader is exhausted.
func (c *UploadCapture) Done() <-chan struct{} {
	return c.done
}

// halt signals the copy loop and waits for it. It reports false when the
// capture was never started.
func (c *UploadCapture) halt() bool {
	c.mu.Lock()
	started := c.started
	c.mu.Unlock()
	if !started {
		return false
	}
	c.once.Do(func() { close(c.stop) })
	<-c.done
	return true
}
