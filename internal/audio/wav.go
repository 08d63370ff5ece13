package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/orcaman/writerseeker"
)

const (
	// SampleRate is the rate every recording is captured and encoded at.
	SampleRate = 16000
	// Channels is mono.
	Channels = 1

	bitDepth  = 16
	pcmFormat = 1
)

// ErrInvalidWAV is returned for data that is not a RIFF WAV file.
var ErrInvalidWAV = errors.New("audio: not a valid wav file")

// EncodeFloat32 encodes [-1,1] float samples as 16-bit PCM WAV.
func EncodeFloat32(samples []float32, sampleRate, channels int) ([]byte, error) {
	ints := make([]int, len(samples))
	for i, s := range samples {
		v := float64(s)
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		ints[i] = int(math.Round(v * math.MaxInt16))
	}
	return EncodePCM16(ints, sampleRate, channels)
}

// EncodePCM16 encodes signed 16-bit samples as a WAV file in memory.
func EncodePCM16(samples []int, sampleRate, channels int) ([]byte, error) {
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: bitDepth,
	}

	ws := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(ws, sampleRate, bitDepth, channels, pcmFormat)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encoder write buffer: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoder close: %w", err)
	}

	data, err := io.ReadAll(ws.Reader())
	if err != nil {
		return nil, fmt.Errorf("reading wav into memory: %w", err)
	}
	return data, nil
}

// Info describes a decoded WAV file.
type Info struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// Inspect validates data as WAV and reports its format.
func Inspect(data []byte) (Info, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return Info{}, ErrInvalidWAV
	}
	d, err := dec.Duration()
	if err != nil {
		return Info{}, fmt.Errorf("audio: wav duration: %w", err)
	}
	return Info{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
		Duration:   d,
	}, nil
}

// DecodePCM returns the interleaved samples of a WAV file with its format.
func DecodePCM(data []byte) (*goaudio.IntBuffer, error) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, ErrInvalidWAV
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("audio: decode pcm: %w", err)
	}
	return buf, nil
}
