// FILE: logfan/src/internal/dispatch/dispatch.go
package dispatch

import (
	"fmt"
	"os"
	"sync/atomic"

	"logfan/src/internal/core"
	"logfan/src/internal/format"
	"logfan/src/internal/sched"
	"logfan/src/internal/sink"

	"github.com/lixenwraith/log"
)

// Config configures an Engine. The value is immutable once passed to
// NewEngine; build a new Config per engine instead of mutating a
// shared one.
type Config struct {
	// MinLevel, when set, is the explicit runtime override and wins
	// over every other source
	MinLevel *core.Level

	// Args is the process argument vector scanned for the
	// minLogLevel= token
	Args []string

	// EnvVar names the environment override; empty selects
	// LOGFAN_MIN_LEVEL
	EnvVar string

	// LookupEnv overrides environment access, mainly for tests
	LookupEnv EnvLookup

	// DefaultSink replaces the built-in console default sink
	DefaultSink sink.Sink
}

// Engine owns the ordered sink, trigger, filter and obfuscator lists
// and runs the per-record pipeline: level gate, trigger fan-out, then
// per sink filter chain, obfuscator chain and delivery.
//
// All registration and emission must happen on the same logical thread;
// the engine provides no concurrent-mutation guarantees.
type Engine struct {
	sinks       []sink.Sink
	triggers    []Trigger
	filters     []Filter
	obfuscators []Obfuscator

	meta       *core.Meta
	queue      *sched.Queue
	logger     *log.Logger
	hasDefault bool
	down       bool

	// Statistics
	totalEmitted atomic.Uint64
	totalGated   atomic.Uint64
}

// NewEngine creates an engine, resolves the minimum level, and installs
// the default sink.
func NewEngine(cfg Config, queue *sched.Queue, logger *log.Logger) (*Engine, error) {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown"
	}
	meta := core.NewMeta(hostname)
	resolveMinLevel(&cfg, meta)

	e := &Engine{
		meta:   meta,
		queue:  queue,
		logger: logger,
	}

	def := cfg.DefaultSink
	if def == nil {
		formatter, err := format.NewTextFormatter(nil, logger)
		if err != nil {
			return nil, fmt.Errorf("dispatch: failed to create default formatter: %w", err)
		}
		def, err = sink.NewConsoleSink(sink.ConsoleConfig{Target: "stderr"}, formatter, logger)
		if err != nil {
			return nil, fmt.Errorf("dispatch: failed to create default sink: %w", err)
		}
	}
	if err := e.install(def); err != nil {
		return nil, fmt.Errorf("dispatch: failed to install default sink: %w", err)
	}
	e.hasDefault = true

	logger.Info("msg", "Dispatch engine created",
		"component", "dispatch",
		"min_level", meta.MinLevel.String(),
		"min_level_source", meta.MinLevelSource)
	return e, nil
}

// Meta exposes the process-scoped descriptor sinks receive at header
// and footer time.
func (e *Engine) Meta() *core.Meta {
	return e.meta
}

// MinLevel reports the engine's effective minimum severity.
func (e *Engine) MinLevel() core.Level {
	return e.meta.MinLevel
}

// SetMinLevel applies an explicit runtime minimum, the highest
// precedence source.
func (e *Engine) SetMinLevel(level core.Level) {
	e.meta.MinLevel = level
	e.meta.MinLevelSource = core.MinLevelSourceAPI
}

// Emit runs one record through the pipeline.
//
// If message is a core.Thunk (or bare func() any) and the record is
// gated out, the thunk is never invoked and Emit returns nil: the
// unresolved value. A concrete message is returned as-is regardless of
// gating. On passing the gate the resolved message is returned along
// with any pipeline error; a failing trigger, filter, obfuscator or
// sink aborts processing of the remaining sinks for this call.
func (e *Engine) Emit(level core.Level, message any, metadata ...any) (any, error) {
	if level < e.meta.MinLevel {
		e.totalGated.Add(1)
		switch message.(type) {
		case core.Thunk, func() any:
			return nil, nil
		}
		return message, nil
	}

	resolved := resolve(message)
	rec := core.NewRecord(level, resolved, metadata)
	e.meta.Count(level)
	e.totalEmitted.Add(1)

	for _, tr := range e.triggers {
		if err := tr.Fire(rec); err != nil {
			return resolved, err
		}
	}

	// One record variable is threaded through the whole sink loop:
	// obfuscation is cumulative across sinks in registration order, a
	// binding contract of the pipeline. A filter skip affects its own
	// sink only.
	current := rec
	for _, s := range e.sinks {
		skipped := false
		for _, f := range e.filters {
			allow, err := f.Allow(s, current)
			if err != nil {
				return resolved, err
			}
			if !allow {
				skipped = true
				break
			}
		}
		if skipped {
			continue
		}

		for _, ob := range e.obfuscators {
			next, err := ob.Obfuscate(s, current)
			if err != nil {
				return resolved, err
			}
			current = next
		}

		if err := s.Handle(current); err != nil {
			return resolved, err
		}
	}
	return resolved, nil
}

func resolve(message any) any {
	switch m := message.(type) {
	case core.Thunk:
		return m()
	case func() any:
		return m()
	default:
		return message
	}
}

// AddSink registers a sink and runs its setup and header lifecycle.
// Adding the first explicit sink replaces the default sink. A setup
// failure aborts activation: the sink is not registered.
func (e *Engine) AddSink(s sink.Sink) error {
	if e.hasDefault {
		for _, old := range e.sinks {
			old.Footer(e.meta)
			if err := old.Destroy(); err != nil {
				e.logger.Warn("msg", "Default sink destroy failed",
					"component", "dispatch",
					"error", err)
			}
		}
		e.sinks = e.sinks[:0]
		e.hasDefault = false
	}
	return e.install(s)
}

func (e *Engine) install(s sink.Sink) error {
	if err := s.Setup(); err != nil {
		return err
	}
	s.Header(e.meta)
	e.sinks = append(e.sinks, s)
	return nil
}

// RemoveSink unregisters a sink, invoking its footer then destroy
// hooks. It reports whether the sink was registered.
func (e *Engine) RemoveSink(s sink.Sink) (bool, error) {
	for i, registered := range e.sinks {
		if registered != s {
			continue
		}
		registered.Footer(e.meta)
		err := registered.Destroy()
		e.sinks = append(e.sinks[:i], e.sinks[i+1:]...)
		return true, err
	}
	return false, nil
}

// AddTrigger appends a trigger; registration order is call order.
func (e *Engine) AddTrigger(t Trigger) {
	e.triggers = append(e.triggers, t)
}

// RemoveTrigger unregisters a trigger, reporting whether it was found.
func (e *Engine) RemoveTrigger(t Trigger) bool {
	for i, registered := range e.triggers {
		if sameHandler(registered, t) {
			e.triggers = append(e.triggers[:i], e.triggers[i+1:]...)
			return true
		}
	}
	return false
}

// AddFilter appends a filter; registration order is call order.
func (e *Engine) AddFilter(f Filter) {
	e.filters = append(e.filters, f)
}

// RemoveFilter unregisters a filter, reporting whether it was found.
func (e *Engine) RemoveFilter(f Filter) bool {
	for i, registered := range e.filters {
		if sameHandler(registered, f) {
			e.filters = append(e.filters[:i], e.filters[i+1:]...)
			return true
		}
	}
	return false
}

// AddObfuscator appends an obfuscator; registration order is call order.
func (e *Engine) AddObfuscator(o Obfuscator) {
	e.obfuscators = append(e.obfuscators, o)
}

// RemoveObfuscator unregisters an obfuscator, reporting whether it was
// found.
func (e *Engine) RemoveObfuscator(o Obfuscator) bool {
	for i, registered := range e.obfuscators {
		if sameHandler(registered, o) {
			e.obfuscators = append(e.obfuscators[:i], e.obfuscators[i+1:]...)
			return true
		}
	}
	return false
}

// Shutdown is the explicit teardown entry point the hosting process
// calls deliberately. It drains any scheduled deferred work, then
// invokes footer and destroy on every registered sink in registration
// order. Idempotent.
func (e *Engine) Shutdown() error {
	if e.down {
		return nil
	}
	e.down = true

	e.queue.RunPending()

	var firstErr error
	for _, s := range e.sinks {
		s.Footer(e.meta)
		if err := s.Destroy(); err != nil {
			if firstErr == nil {
				firstErr = err
			}
			e.logger.Error("msg", "Sink destroy failed during shutdown",
				"component", "dispatch",
				"error", err)
		}
	}
	e.sinks = nil

	e.logger.Info("msg", "Dispatch engine shut down",
		"component", "dispatch",
		"total_emitted", e.totalEmitted.Load(),
		"total_gated", e.totalGated.Load())
	return firstErr
}

// GetStats returns engine statistics.
func (e *Engine) GetStats() map[string]any {
	return map[string]any{
		"sink_count":       len(e.sinks),
		"trigger_count":    len(e.triggers),
		"filter_count":     len(e.filters),
		"obfuscator_count": len(e.obfuscators),
		"total_emitted":    e.totalEmitted.Load(),
		"total_gated":      e.totalGated.Load(),
		"min_level":        e.meta.MinLevel.String(),
		"min_level_source": e.meta.MinLevelSource,
	}
}
