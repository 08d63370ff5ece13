package device

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"sync"

	"phonics-coach/internal/audio"

	"github.com/gen2brain/malgo"
)

// Player plays WAV clips on the default output device. It takes the playback
// mode on its ModeLock for the length of each clip, so it never overlaps a
// microphone capture sharing the same lock.
type Player struct {
	ctx  *malgo.AllocatedContext
	lock *audio.ModeLock
}

// NewPlayer initializes the audio backend. lock may be shared with the
// recording side.
func NewPlayer(lock *audio.ModeLock) (*Player, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	if lock == nil {
		lock = audio.NewModeLock()
	}
	return &Player{ctx: ctx, lock: lock}, nil
}

// Play blocks until the clip has been played or ctx is done.
func (p *Player) Play(ctx context.Context, wavData []byte) error {
	buf, err := audio.DecodePCM(wavData)
	if err != nil {
		return err
	}
	if buf.Format == nil || buf.Format.NumChannels == 0 {
		return fmt.Errorf("device: clip has no format")
	}

	release, err := p.lock.Acquire(ctx, audio.ModePlayback)
	if err != nil {
		return err
	}
	defer release()

	pcm := pcm16Bytes(buf.Data)
	src := bytes.NewReader(pcm)
	done := make(chan struct{})
	var once sync.Once

	cfg := malgo.DefaultDeviceConfig(malgo.Playback)
	cfg.Playback.Format = malgo.FormatS16
	cfg.Playback.Channels = uint32(buf.Format.NumChannels)
	cfg.SampleRate = uint32(buf.Format.SampleRate)

	onSamples := func(pOutput, _ []byte, _ uint32) {
		n, err := io.ReadFull(src, pOutput)
		if err != nil {
			clear(pOutput[n:])
			once.Do(func() { close(done) })
		}
	}

	device, err := malgo.InitDevice(p.ctx.Context, cfg, malgo.DeviceCallbacks{Data: onSamples})
	if err != nil {
		return fmt.Errorf("initializing playback device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("starting playback device: %w", err)
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the audio backend.
func (p *Player) Close() error {
	if p.ctx == nil {
		return nil
	}
	if err := p.ctx.Uninit(); err != nil {
		return fmt.Errorf("uninitializing audio context: %w", err)
	}
	p.ctx.Free()
	p.ctx = nil
	return nil
}

func pcm16Bytes(samples []int) []byte {
	out := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(int16(s)))
	}
	return out
}
