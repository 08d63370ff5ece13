// Package device drives the local sound card through malgo: microphone
// capture for practice attempts and speaker playback for reference words.
package device

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sync"

	"phonics-coach/internal/audio"

	"github.com/gen2brain/malgo"
)

// ErrAlreadyCapturing is returned by Start while a capture is running.
var ErrAlreadyCapturing = errors.New("device: already recording")

// captureDevice is the part of *malgo.Device the microphone stops.
// Uninit blocks until an in-flight data callback returns.
type captureDevice interface {
	Uninit()
}

// Microphone captures one utterance at a time from the default input device
// and hands it back as WAV. Call Close when done.
type Microphone struct {
	ctx        *malgo.AllocatedContext
	device     captureDevice
	sampleRate uint32
	channels   uint32

	mu        sync.Mutex
	buf       []float32
	recording bool
}

// NewMicrophone initializes the audio backend.
func NewMicrophone(sampleRate, channels uint32) (*Microphone, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("initializing audio context: %w", err)
	}
	return &Microphone{ctx: ctx, sampleRate: sampleRate, channels: channels}, nil
}

// Start opens the capture device and begins buffering samples.
func (m *Microphone) Start(_ context.Context) error {
	m.mu.Lock()
	if m.recording {
		m.mu.Unlock()
		return ErrAlreadyCapturing
	}
	m.buf = m.buf[:0]
	m.recording = true
	m.mu.Unlock()

	cfg := malgo.DefaultDeviceConfig(malgo.Capture)
	cfg.Capture.Format = malgo.FormatF32
	cfg.Capture.Channels = m.channels
	cfg.SampleRate = m.sampleRate

	device, err := malgo.InitDevice(m.ctx.Context, cfg, malgo.DeviceCallbacks{Data: m.onData})
	if err != nil {
		m.setRecording(false)
		return fmt.Errorf("initializing capture device: %w", err)
	}
	if err := device.Start(); err != nil {
		device.Uninit()
		m.setRecording(false)
		return fmt.Errorf("starting capture device: %w", err)
	}

	m.mu.Lock()
	m.device = device
	m.mu.Unlock()
	return nil
}

// Stop closes the device and returns the captured audio as 16-bit WAV.
// Without a running capture it returns nil data.
func (m *Microphone) Stop() ([]byte, error) {
	samples := m.stop()
	if samples == nil {
		return nil, nil
	}
	return audio.EncodeFloat32(samples, int(m.sampleRate), int(m.channels))
}

// Discard closes the device and drops whatever was captured.
func (m *Microphone) Discard() {
	m.stop()
}

// Done never fires: a microphone only stops when told to.
func (m *Microphone) Done() <-chan struct{} {
	return nil
}

// IsRecording reports whether the device is capturing.
func (m *Microphone) IsRecording() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.recording
}

// Close releases all audio resources.
func (m *Microphone) Close() error {
	m.stop()
	if m.ctx != nil {
		if err := m.ctx.Uninit(); err != nil {
			return fmt.Errorf("uninitializing audio context: %w", err)
		}
		m.ctx.Free()
		m.ctx = nil
	}
	return nil
}

// stop detaches the device under the lock and uninitializes it after
// unlocking: onData takes the same lock and Uninit waits for it.
func (m *Microphone) stop() []float32 {
	m.mu.Lock()
	if !m.recording {
		m.mu.Unlock()
		return nil
	}
	dev := m.device
	m.device = nil
	m.recording = false
	m.mu.Unlock()

	if dev != nil {
		dev.Uninit()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]float32, len(m.buf))
	copy(out, m.buf)
	return out
}

func (m *Microphone) setRecording(v bool) {
	m.mu.Lock()
	m.recording = v
	m.mu.Unlock()
}

func (m *Microphone) onData(_, pSample []byte, frameCount uint32) {
	samples := bytesToFloat32(pSample, frameCount*m.channels)

	m.mu.Lock()
	m.buf = append(m.buf, samples...)
	m.mu.Unlock()
}

// bytesToFloat32 reads little-endian float32 samples.
func bytesToFloat32(data []byte, sampleCount uint32) []float32 {
	samples := make([]float32, 0, sampleCount)
	for i := uint32(0); i < sampleCount; i++ {
		off := i * 4
		if off+4 > uint32(len(data)) {
			break
		}
		samples = append(samples, math.Float32frombits(binary.LittleEndian.Uint32(data[off:off+4])))
	}
	return samples
}
