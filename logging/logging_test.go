package logging

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestDoAnnotate(t *testing.T) {
	DoAnnotate(context.Background(), func(ctx context.Context) {
		messageID, ok := pprof.Label(ctx, "messageID")
		require.True(t, ok)
		require.Equal(t, "local-1", messageID)

		fn, ok := pprof.Label(ctx, "fn")
		require.True(t, ok)
		require.Contains(t, fn, "TestDoAnnotate")
	}, map[string]any{"messageID": "local-1"})
}

func TestGoAnnotate(t *testing.T) {
	doneCh := make(chan string)

	GoAnnotate(context.Background(), func(ctx context.Context) {
		action, _ := pprof.Label(ctx, "action")
		doneCh <- action
	}, map[string]any{"action": "reply"})

	require.Equal(t, "reply", <-doneCh)
}

func TestSetLevelFromEnv(t *testing.T) {
	level := logrus.GetLevel()
	defer logrus.SetLevel(level)

	t.Setenv("DRAFTSYNC_TEST_LOG_LEVEL", "trace")
	require.True(t, SetLevelFromEnv("DRAFTSYNC_TEST_LOG_LEVEL"))
	require.Equal(t, logrus.TraceLevel, logrus.GetLevel())

	t.Setenv("DRAFTSYNC_TEST_LOG_LEVEL", "loud")
	require.False(t, SetLevelFromEnv("DRAFTSYNC_TEST_LOG_LEVEL"))
	require.Equal(t, logrus.TraceLevel, logrus.GetLevel())
}
