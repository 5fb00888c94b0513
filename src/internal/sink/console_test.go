// FILE: logfan/src/internal/sink/console_test.go
package sink

import (
	"bytes"
	"testing"

	"logfan/src/internal/core"
	"logfan/src/internal/format"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsoleSink(t *testing.T, cfg ConsoleConfig) (*ConsoleSink, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	logger := newTestLogger()
	formatter, err := format.NewRawFormatter(logger)
	require.NoError(t, err)

	s, err := NewConsoleSink(cfg, formatter, logger)
	require.NoError(t, err)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	s.stdout = stdout
	s.stderr = stderr
	return s, stdout, stderr
}

func TestConsoleSink_Targets(t *testing.T) {
	t.Run("DefaultIsStderr", func(t *testing.T) {
		s, stdout, stderr := newTestConsoleSink(t, ConsoleConfig{})
		require.NoError(t, s.Handle(rec(core.LevelInfo, "hello")))
		assert.Empty(t, stdout.String())
		assert.Equal(t, "hello\n", stderr.String())
	})

	t.Run("Stdout", func(t *testing.T) {
		s, stdout, stderr := newTestConsoleSink(t, ConsoleConfig{Target: "stdout"})
		require.NoError(t, s.Handle(rec(core.LevelError, "hello")))
		assert.Equal(t, "hello\n", stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("SplitRoutesBySeverity", func(t *testing.T) {
		s, stdout, stderr := newTestConsoleSink(t, ConsoleConfig{Target: "split"})
		require.NoError(t, s.Handle(rec(core.LevelDebug, "chatter")))
		require.NoError(t, s.Handle(rec(core.LevelInfo, "routine")))
		require.NoError(t, s.Handle(rec(core.LevelWarn, "trouble")))
		require.NoError(t, s.Handle(rec(core.LevelError, "broken")))

		assert.Equal(t, "chatter\nroutine\n", stdout.String())
		assert.Equal(t, "trouble\nbroken\n", stderr.String())
	})
}

func TestNewConsoleSink_InvalidTarget(t *testing.T) {
	logger := newTestLogger()
	formatter, err := format.NewRawFormatter(logger)
	require.NoError(t, err)

	_, err = NewConsoleSink(ConsoleConfig{Target: "socket"}, formatter, logger)
	assert.Error(t, err)
}

func TestConsoleSink_Stats(t *testing.T) {
	s, _, _ := newTestConsoleSink(t, ConsoleConfig{Target: "stdout"})
	require.NoError(t, s.Handle(rec(core.LevelInfo, "one")))
	require.NoError(t, s.Handle(rec(core.LevelInfo, "two")))

	stats := s.GetStats()
	assert.Equal(t, "console", stats.Type)
	assert.Equal(t, uint64(2), stats.TotalProcessed)
	assert.Equal(t, "stdout", stats.Details["target"])
}
