// FILE: logfan/src/internal/dispatch/dispatch_test.go
package dispatch

import (
	"errors"
	"testing"

	"logfan/src/internal/core"
	"logfan/src/internal/sched"
	"logfan/src/internal/sink"

	"github.com/lixenwraith/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *log.Logger {
	return log.NewLogger()
}

// testSink records its lifecycle and deliveries.
type testSink struct {
	sink.Base

	handled   []core.Record
	handleErr error

	setupCalls   int
	headerCalls  int
	footerCalls  int
	destroyCalls int

	// order stamps footer/destroy against a shared sequence
	order     *int
	footerAt  int
	destroyAt int
}

func (s *testSink) Setup() error {
	s.setupCalls++
	return nil
}

func (s *testSink) Header(*core.Meta) {
	s.headerCalls++
}

func (s *testSink) Handle(rec core.Record) error {
	if s.handleErr != nil {
		return s.handleErr
	}
	s.handled = append(s.handled, rec)
	return nil
}

func (s *testSink) Footer(*core.Meta) {
	s.footerCalls++
	if s.order != nil {
		*s.order++
		s.footerAt = *s.order
	}
}

func (s *testSink) Destroy() error {
	s.destroyCalls++
	if s.order != nil {
		*s.order++
		s.destroyAt = *s.order
	}
	return nil
}

func newTestEngine(t *testing.T, cfg Config) (*Engine, *testSink) {
	t.Helper()
	def := &testSink{}
	if cfg.DefaultSink == nil {
		cfg.DefaultSink = def
	}
	if cfg.LookupEnv == nil {
		cfg.LookupEnv = func(string) (string, bool, error) { return "", false, nil }
	}
	e, err := NewEngine(cfg, sched.NewQueue(), newTestLogger())
	require.NoError(t, err)
	return e, def
}

func levelPtr(l core.Level) *core.Level {
	return &l
}

func TestEmit_LevelGate(t *testing.T) {
	t.Run("ThunkNeverInvokedWhenGated", func(t *testing.T) {
		e, def := newTestEngine(t, Config{MinLevel: levelPtr(core.LevelWarn)})

		invoked := false
		value, err := e.Emit(core.LevelDebug, core.Thunk(func() any {
			invoked = true
			return "expensive"
		}))
		assert.NoError(t, err)
		assert.Nil(t, value)
		assert.False(t, invoked)
		assert.Empty(t, def.handled)
	})

	t.Run("BareFuncTreatedAsThunk", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{MinLevel: levelPtr(core.LevelWarn)})

		invoked := false
		value, err := e.Emit(core.LevelInfo, func() any {
			invoked = true
			return "expensive"
		})
		assert.NoError(t, err)
		assert.Nil(t, value)
		assert.False(t, invoked)
	})

	t.Run("ConcreteValueReturnedWhenGated", func(t *testing.T) {
		e, def := newTestEngine(t, Config{MinLevel: levelPtr(core.LevelWarn)})

		value, err := e.Emit(core.LevelDebug, "already computed")
		assert.NoError(t, err)
		assert.Equal(t, "already computed", value)
		assert.Empty(t, def.handled)
	})

	t.Run("ThunkResolvedWhenPassing", func(t *testing.T) {
		e, def := newTestEngine(t, Config{MinLevel: levelPtr(core.LevelWarn)})

		value, err := e.Emit(core.LevelError, core.Thunk(func() any { return "resolved" }))
		assert.NoError(t, err)
		assert.Equal(t, "resolved", value)
		require.Len(t, def.handled, 1)
		assert.Equal(t, "resolved", def.handled[0].Message)
	})
}

func TestEmit_FilterShortCircuit(t *testing.T) {
	e, def := newTestEngine(t, Config{})

	secondEvaluated := false
	e.AddFilter(FilterFunc(func(s sink.Sink, rec core.Record) bool { return false }))
	e.AddFilter(FilterFunc(func(s sink.Sink, rec core.Record) bool {
		secondEvaluated = true
		return true
	}))

	_, err := e.Emit(core.LevelInfo, "dropped")
	assert.NoError(t, err)
	assert.False(t, secondEvaluated)
	assert.Empty(t, def.handled)
}

func TestEmit_FilterIndependencePerSink(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	s1 := &testSink{}
	s2 := &testSink{}
	require.NoError(t, e.AddSink(s1))
	require.NoError(t, e.AddSink(s2))

	// Skip s1 only; the decision must not leak to s2
	e.AddFilter(FilterFunc(func(s sink.Sink, rec core.Record) bool { return s != s1 }))

	_, err := e.Emit(core.LevelInfo, "hello")
	assert.NoError(t, err)
	assert.Empty(t, s1.handled)
	assert.Len(t, s2.handled, 1)
}

func TestEmit_ObfuscationAccumulatesAcrossSinks(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	s1 := &testSink{}
	s2 := &testSink{}
	require.NoError(t, e.AddSink(s1))
	require.NoError(t, e.AddSink(s2))

	// Rewrites only while processing s1, but the rewritten record
	// carries forward into s2's cycle
	e.AddObfuscator(ObfuscatorFunc(func(s sink.Sink, rec core.Record) core.Record {
		if s == s1 {
			return rec.WithMessage("redacted")
		}
		return rec
	}))

	_, err := e.Emit(core.LevelInfo, "secret")
	assert.NoError(t, err)
	require.Len(t, s1.handled, 1)
	require.Len(t, s2.handled, 1)
	assert.Equal(t, "redacted", s1.handled[0].Message)
	assert.Equal(t, "redacted", s2.handled[0].Message)
}

func TestEmit_TriggerErrorAbortsPipeline(t *testing.T) {
	e, def := newTestEngine(t, Config{})

	fired := 0
	wantErr := errors.New("trigger failed")
	e.AddTrigger(TriggerFunc(func(core.Record) { fired++ }))
	e.AddTrigger(triggerErr{err: wantErr})

	_, err := e.Emit(core.LevelInfo, "boom")
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, fired)
	assert.Empty(t, def.handled)
}

type triggerErr struct{ err error }

func (t triggerErr) Fire(core.Record) error { return t.err }

func TestEmit_SinkErrorAbortsRemainingSinks(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	wantErr := errors.New("sink failed")
	s1 := &testSink{handleErr: wantErr}
	s2 := &testSink{}
	require.NoError(t, e.AddSink(s1))
	require.NoError(t, e.AddSink(s2))

	_, err := e.Emit(core.LevelInfo, "boom")
	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, s2.handled)
}

func TestEmit_TriggersObserveEveryPassingRecord(t *testing.T) {
	e, _ := newTestEngine(t, Config{})

	var seen []core.Record
	e.AddTrigger(TriggerFunc(func(rec core.Record) { seen = append(seen, rec) }))

	// Even with all sinks filtered out, triggers fire
	e.AddFilter(FilterFunc(func(sink.Sink, core.Record) bool { return false }))

	_, err := e.Emit(core.LevelInfo, "observed")
	assert.NoError(t, err)
	require.Len(t, seen, 1)
	assert.Equal(t, "observed", seen[0].Message)
}

func TestAddSink_ReplacesDefault(t *testing.T) {
	e, def := newTestEngine(t, Config{})
	assert.Equal(t, 1, def.setupCalls)
	assert.Equal(t, 1, def.headerCalls)

	explicit := &testSink{}
	require.NoError(t, e.AddSink(explicit))

	// Default sink retired with its lifecycle hooks
	assert.Equal(t, 1, def.footerCalls)
	assert.Equal(t, 1, def.destroyCalls)
	assert.Equal(t, 1, explicit.setupCalls)
	assert.Equal(t, 1, explicit.headerCalls)

	// Second explicit sink must not replace the first
	second := &testSink{}
	require.NoError(t, e.AddSink(second))

	_, err := e.Emit(core.LevelInfo, "to both")
	assert.NoError(t, err)
	assert.Len(t, explicit.handled, 1)
	assert.Len(t, second.handled, 1)
	assert.Empty(t, def.handled)
}

func TestRemoveSink_FooterThenDestroy(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	order := 0
	s := &testSink{order: &order}
	require.NoError(t, e.AddSink(s))

	found, err := e.RemoveSink(s)
	assert.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, 1, s.footerCalls)
	assert.Equal(t, 1, s.destroyCalls)
	assert.Less(t, s.footerAt, s.destroyAt)

	// Removing again finds nothing and runs no hooks
	found, err = e.RemoveSink(s)
	assert.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, s.footerCalls)
	assert.Equal(t, 1, s.destroyCalls)
}

func TestRemoveHandlers(t *testing.T) {
	e, def := newTestEngine(t, Config{})

	blocked := FilterFunc(func(sink.Sink, core.Record) bool { return false })
	e.AddFilter(blocked)

	_, err := e.Emit(core.LevelInfo, "one")
	assert.NoError(t, err)
	assert.Empty(t, def.handled)

	assert.True(t, e.RemoveFilter(blocked))
	assert.False(t, e.RemoveFilter(blocked))

	_, err = e.Emit(core.LevelInfo, "two")
	assert.NoError(t, err)
	assert.Len(t, def.handled, 1)
}

func TestShutdown(t *testing.T) {
	e, _ := newTestEngine(t, Config{})
	order := 0
	s1 := &testSink{order: &order}
	s2 := &testSink{order: &order}
	require.NoError(t, e.AddSink(s1))
	require.NoError(t, e.AddSink(s2))

	require.NoError(t, e.Shutdown())
	assert.Equal(t, 1, s1.footerCalls)
	assert.Equal(t, 1, s1.destroyCalls)
	assert.Equal(t, 1, s2.footerCalls)
	assert.Equal(t, 1, s2.destroyCalls)
	// Registration order, footer before destroy per sink
	assert.Less(t, s1.footerAt, s1.destroyAt)
	assert.Less(t, s1.destroyAt, s2.footerAt)

	// Idempotent
	require.NoError(t, e.Shutdown())
	assert.Equal(t, 1, s1.destroyCalls)
}

func TestMinLevelResolution(t *testing.T) {
	t.Run("ExplicitWinsOverEverything", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{
			MinLevel: levelPtr(core.LevelError),
			Args:     []string{"minLogLevel=DEBUG"},
			LookupEnv: func(string) (string, bool, error) {
				return "INFO", true, nil
			},
		})
		assert.Equal(t, core.LevelError, e.MinLevel())
		assert.Equal(t, core.MinLevelSourceAPI, e.Meta().MinLevelSource)
	})

	t.Run("ArgTokenBeatsEnv", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{
			Args: []string{"other", "minLogLevel=WARN"},
			LookupEnv: func(string) (string, bool, error) {
				return "INFO", true, nil
			},
		})
		assert.Equal(t, core.LevelWarn, e.MinLevel())
		assert.Equal(t, core.MinLevelSourceArg, e.Meta().MinLevelSource)
	})

	t.Run("EnvBeatsDefault", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{
			LookupEnv: func(key string) (string, bool, error) {
				assert.Equal(t, DefaultEnvVar, key)
				return "ERROR", true, nil
			},
		})
		assert.Equal(t, core.LevelError, e.MinLevel())
		assert.Equal(t, core.MinLevelSourceEnv, e.Meta().MinLevelSource)
	})

	t.Run("DefaultIsLowestSeverity", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{})
		assert.Equal(t, core.LevelDebug, e.MinLevel())
		assert.Equal(t, core.MinLevelSourceDefault, e.Meta().MinLevelSource)
	})

	t.Run("EnvReadFailureTreatedAsAbsence", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{
			LookupEnv: func(string) (string, bool, error) {
				return "", false, errors.New("permission denied")
			},
		})
		assert.Equal(t, core.LevelDebug, e.MinLevel())
		assert.Equal(t, core.MinLevelSourceDefault, e.Meta().MinLevelSource)
		assert.True(t, e.Meta().EnvReadFailed)
	})

	t.Run("UnrecognizedNameResolvesToSentinel", func(t *testing.T) {
		e, _ := newTestEngine(t, Config{
			Args: []string{"minLogLevel=VERBOSE"},
		})
		assert.Equal(t, core.LevelUnknown, e.MinLevel())
	})
}

func TestMeta_CountsPassingRecords(t *testing.T) {
	e, _ := newTestEngine(t, Config{MinLevel: levelPtr(core.LevelInfo)})

	_, _ = e.Emit(core.LevelDebug, "gated")
	_, _ = e.Emit(core.LevelInfo, "a")
	_, _ = e.Emit(core.LevelInfo, "b")
	_, _ = e.Emit(core.LevelError, "c")

	meta := e.Meta()
	assert.Equal(t, uint64(0), meta.PerLevelCount[core.LevelDebug])
	assert.Equal(t, uint64(2), meta.PerLevelCount[core.LevelInfo])
	assert.Equal(t, uint64(1), meta.PerLevelCount[core.LevelError])
	assert.NotEmpty(t, meta.Hostname)
}

func TestRecordImmutability(t *testing.T) {
	e, def := newTestEngine(t, Config{})

	metadata := []any{"request", 42}
	_, err := e.Emit(core.LevelInfo, "msg", metadata...)
	require.NoError(t, err)

	// Caller mutation after emit must not leak into the record
	metadata[0] = "mutated"
	require.Len(t, def.handled, 1)
	assert.Equal(t, "request", def.handled[0].Metadata[0])
}
