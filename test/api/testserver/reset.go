//go:build api

package testserver

import (
	"context"
	"testing"

	"phonics-coach/internal/llm"

	"github.com/stretchr/testify/require"
)

// Reset gives a test an empty clinic: no parents, archived attempts,
// practice sessions, refresh families or recordings. Pipeline overrides made
// by the test are undone when it finishes.
func (ts *TestServer) Reset(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, ts.MongoDB.Truncate(ctx), "truncate mongo")
	require.NoError(t, ts.Redis.Truncate(ctx), "truncate redis")
	require.NoError(t, ts.MinIO.Truncate(ctx), "truncate minio")

	ts.ResetPipeline()
	t.Cleanup(ts.ResetPipeline)
}

// ResetPipeline restores the default transcriber and generator behaviour.
func (ts *TestServer) ResetPipeline() {
	ts.Transcriber.Text = "ball"
	ts.Transcriber.Err = nil
	ts.Generator.Response = ""
	ts.Generator.Err = llm.ErrDisabled
}

// LiveSessions counts practice sessions still held in Redis.
func (ts *TestServer) LiveSessions(t *testing.T) int {
	t.Helper()
	n, err := ts.Redis.CountKeys(context.Background(), "practice_session:*")
	require.NoError(t, err)
	return n
}

// RefreshFamilies counts signed-in devices across all parents.
func (ts *TestServer) RefreshFamilies(t *testing.T) int {
	t.Helper()
	n, err := ts.Redis.CountKeys(context.Background(), "auth:refresh_family:*")
	require.NoError(t, err)
	return n
}
