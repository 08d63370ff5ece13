package transcription

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	apperrors "phonics-coach/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "ball", Normalize("  BaLL\n"))
	assert.Equal(t, "", Normalize("   "))
}

func TestWhisperService_Transcribe(t *testing.T) {
	t.Run("posts multipart and parses text", func(t *testing.T) {
		var gotPath, gotLang, gotModel string
		var gotAudio []byte
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			assert.NoError(t, r.ParseMultipartForm(1<<20))
			gotLang = r.FormValue("language")
			gotModel = r.FormValue("model")
			if f, _, err := r.FormFile("file"); assert.NoError(t, err) {
				gotAudio, _ = io.ReadAll(f)
			}
			_, _ = w.Write([]byte(`{"text":" Violin \n"}`))
		}))
		defer srv.Close()

		svc, err := NewWhisperService(srv.URL+"/", WithWhisperModel("base.en"))
		require.NoError(t, err)

		text, err := svc.Transcribe(context.Background(), []byte("RIFFdata"), Options{})

		require.NoError(t, err)
		assert.Equal(t, "Violin", text)
		assert.Equal(t, "/inference", gotPath)
		assert.Equal(t, "en", gotLang)
		assert.Equal(t, "base.en", gotModel)
		assert.Equal(t, []byte("RIFFdata"), gotAudio)
	})

	t.Run("non-200 status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		}))
		defer srv.Close()

		svc, err := NewWhisperService(srv.URL)
		require.NoError(t, err)

		_, err = svc.Transcribe(context.Background(), []byte("x"), Options{Language: "en"})
		assert.EqualError(t, err, "whisper: server returned HTTP 503")
	})

	t.Run("bad json", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer srv.Close()

		svc, err := NewWhisperService(srv.URL)
		require.NoError(t, err)

		_, err = svc.Transcribe(context.Background(), []byte("x"), Options{})
		require.Error(t, err)
		assert.True(t, strings.HasPrefix(err.Error(), "whisper: parse JSON response"))
	})

	t.Run("honours client timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(time.Second):
			}
		}))
		defer srv.Close()

		svc, err := NewWhisperService(srv.URL, WithHTTPClient(&http.Client{Timeout: 20 * time.Millisecond}))
		require.NoError(t, err)

		_, err = svc.Transcribe(context.Background(), []byte("x"), Options{})
		assert.Error(t, err)
	})

	t.Run("requires url", func(t *testing.T) {
		_, err := NewWhisperService("")
		assert.Error(t, err)
	})
}

func TestNewOpenAIService(t *testing.T) {
	_, err := NewOpenAIService("", "")
	assert.Error(t, err)

	svc, err := NewOpenAIService("sk-test", "http://localhost:9999/v1")
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func TestMockService(t *testing.T) {
	t.Run("default hears ball", func(t *testing.T) {
		svc := NewMockService()
		svc.SimulatedDelay = 0

		text, err := svc.Transcribe(context.Background(), []byte("audio"), Options{})

		require.NoError(t, err)
		assert.Equal(t, "ball", text)
	})

	t.Run("configured error", func(t *testing.T) {
		svc := &MockService{Err: errors.New("offline")}

		_, err := svc.Transcribe(context.Background(), []byte("audio"), Options{})
		assert.EqualError(t, err, "offline")
	})

	t.Run("respects context", func(t *testing.T) {
		svc := &MockService{Text: "x", SimulatedDelay: time.Second}
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := svc.Transcribe(ctx, []byte("audio"), Options{})
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestUploadCapture(t *testing.T) {
	t.Run("reads everything and finishes", func(t *testing.T) {
		c := NewUploadCapture(bytes.NewReader(bytes.Repeat([]byte{7}, 100_000)), 0)
		require.NoError(t, c.Start(context.Background()))

		select {
		case <-c.Done():
		case <-time.After(time.Second):
			t.Fatal("capture never finished")
		}

		data, err := c.Stop()
		require.NoError(t, err)
		assert.Len(t, data, 100_000)
	})

	t.Run("upload over the limit fails", func(t *testing.T) {
		c := NewUploadCapture(strings.NewReader(strings.Repeat("a", 5000)), 1024)
		require.NoError(t, c.Start(context.Background()))
		<-c.Done()

		data, err := c.Stop()
		assert.ErrorIs(t, err, apperrors.ErrRecordingTooLarge)
		assert.Nil(t, data)
	})

	t.Run("upload exactly at the limit is kept", func(t *testing.T) {
		c := NewUploadCapture(strings.NewReader(strings.Repeat("a", 1024)), 1024)
		require.NoError(t, c.Start(context.Background()))
		<-c.Done()

		data, err := c.Stop()
		require.NoError(t, err)
		assert.Len(t, data, 1024)
	})

	t.Run("read error surfaces on stop", func(t *testing.T) {
		c := NewUploadCapture(io.MultiReader(strings.NewReader("abc"), errReader{}), 0)
		require.NoError(t, c.Start(context.Background()))
		<-c.Done()

		_, err := c.Stop()
		assert.EqualError(t, err, "broken pipe")
	})

	t.Run("stop before start", func(t *testing.T) {
		c := NewUploadCapture(strings.NewReader("abc"), 0)

		data, err := c.Stop()
		assert.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("double start", func(t *testing.T) {
		c := NewUploadCapture(strings.NewReader("abc"), 0)
		require.NoError(t, c.Start(context.Background()))
		assert.Error(t, c.Start(context.Background()))
		c.Discard()
	})
}

type errReader struct{}

func (errReader) Read([]byte) (int, error) {
	return 0, errors.New("broken pipe")
}
