package audio

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModeLock(t *testing.T) {
	t.Run("starts idle", func(t *testing.T) {
		l := NewModeLock()
		assert.Equal(t, ModeIdle, l.Current())
	})

	t.Run("acquire and release", func(t *testing.T) {
		l := NewModeLock()

		release, err := l.Acquire(context.Background(), ModeCapture)
		require.NoError(t, err)
		assert.Equal(t, ModeCapture, l.Current())

		release()
		release()
		assert.Equal(t, ModeIdle, l.Current())

		release, ok := l.TryAcquire(ModePlayback)
		require.True(t, ok)
		assert.Equal(t, ModePlayback, l.Current())
		release()
	})

	t.Run("busy device blocks until ctx done", func(t *testing.T) {
		l := NewModeLock()
		release, err := l.Acquire(context.Background(), ModePlayback)
		require.NoError(t, err)
		defer release()

		_, ok := l.TryAcquire(ModeCapture)
		assert.False(t, ok)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		_, err = l.Acquire(ctx, ModeCapture)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Equal(t, ModePlayback, l.Current())
	})

	t.Run("waiter gets the device after release", func(t *testing.T) {
		l := NewModeLock()
		release, err := l.Acquire(context.Background(), ModePlayback)
		require.NoError(t, err)

		got := make(chan Mode, 1)
		go func() {
			r, err := l.Acquire(context.Background(), ModeCapture)
			if err != nil {
				return
			}
			got <- l.Current()
			r()
		}()

		time.Sleep(10 * time.Millisecond)
		release()

		select {
		case m := <-got:
			assert.Equal(t, ModeCapture, m)
		case <-time.After(time.Second):
			t.Fatal("waiter never acquired the device")
		}
	})
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "idle", ModeIdle.String())
	assert.Equal(t, "capture", ModeCapture.String())
	assert.Equal(t, "playback", ModePlayback.String())
}

func TestEncodeAndInspect(t *testing.T) {
	samples := make([]float32, SampleRate/2)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*440*float64(i)/SampleRate))
	}

	data, err := EncodeFloat32(samples, SampleRate, Channels)
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data[:4]))
	assert.Equal(t, "WAVE", string(data[8:12]))

	info, err := Inspect(data)
	require.NoError(t, err)
	assert.Equal(t, SampleRate, info.SampleRate)
	assert.Equal(t, Channels, info.Channels)
	assert.Equal(t, 16, info.BitDepth)
	assert.InDelta(t, 500*time.Millisecond, info.Duration, float64(10*time.Millisecond))
}

func TestEncodeFloat32_Scales(t *testing.T) {
	data, err := EncodeFloat32([]float32{0, 1, -1, 2}, SampleRate, Channels)
	require.NoError(t, err)

	buf, err := DecodePCM(data)
	require.NoError(t, err)
	assert.Equal(t, []int{0, math.MaxInt16, -math.MaxInt16, math.MaxInt16}, buf.Data)
}

func TestInspect_Invalid(t *testing.T) {
	_, err := Inspect([]byte("definitely not a wav file"))
	assert.ErrorIs(t, err, ErrInvalidWAV)

	_, err = DecodePCM(nil)
	assert.ErrorIs(t, err, ErrInvalidWAV)
}
