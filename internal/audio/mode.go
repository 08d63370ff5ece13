// Package audio holds the pure-Go audio helpers shared by the server and the
// CLI: WAV encoding and inspection, and the lock that keeps capture and
// playback from using the device at the same time.
package audio

import (
	"context"
	"sync"
)

// Mode is what the audio device is currently used for.
type Mode int

const (
	ModeIdle Mode = iota
	ModeCapture
	ModePlayback
)

func (m Mode) String() string {
	switch m {
	case ModeCapture:
		return "capture"
	case ModePlayback:
		return "playback"
	default:
		return "idle"
	}
}

// ModeLock serializes capture and playback. Only one holder may use the
// audio device at a time; the zero value is not usable, call NewModeLock.
type ModeLock struct {
	slot chan struct{}

	mu   sync.Mutex
	mode Mode
}

// NewModeLock returns an idle lock.
func NewModeLock() *ModeLock {
	return &ModeLock{slot: make(chan struct{}, 1)}
}

// Acquire blocks until the device is free or ctx is done, then switches it to
// mode. The returned release func is idempotent.
func (l *ModeLock) Acquire(ctx context.Context, mode Mode) (func(), error) {
	select {
	case l.slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	return l.hold(mode), nil
}

// TryAcquire is Acquire without waiting. ok is false when the device is busy.
func (l *ModeLock) TryAcquire(mode Mode) (release func(), ok bool) {
	select {
	case l.slot <- struct{}{}:
		return l.hold(mode), true
	default:
		return nil, false
	}
}

func (l *ModeLock) hold(mode Mode) func() {
	l.mu.Lock()
	l.mode = mode
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			l.mode = ModeIdle
			l.mu.Unlock()
			<-l.slot
		})
	}
}

// Current reports the active mode.
func (l *ModeLock) Current() Mode {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.mode
}
