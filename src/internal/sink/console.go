// FILE: logfan/src/internal/sink/console.go
package sink

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"logfan/src/internal/core"
	"logfan/src/internal/format"

	"github.com/lixenwraith/log"
	"golang.org/x/term"
)

// ConsoleConfig holds configuration for console sinks
type ConsoleConfig struct {
	// Target for console output: "stdout", "stderr", "split"
	// "split": info/debug to stdout, warn and above to stderr
	Target string

	// Colorize level names when the target is a terminal
	Colorize bool
}

// ConsoleSink writes formatted records to stdout/stderr immediately,
// with no queueing. It serves as the dispatch engine's default sink.
type ConsoleSink struct {
	Base

	config    ConsoleConfig
	stdout    io.Writer
	stderr    io.Writer
	colorize  bool
	formatter format.Formatter
	logger    *log.Logger
	startTime time.Time

	// Statistics
	totalProcessed atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

var levelColors = map[core.Level]string{
	core.LevelDebug: "\033[90m",
	core.LevelInfo:  "\033[32m",
	core.LevelWarn:  "\033[33m",
	core.LevelError: "\033[31m",
	core.LevelFatal: "\033[35m",
}

// NewConsoleSink creates a console sink for the configured target.
func NewConsoleSink(cfg ConsoleConfig, formatter format.Formatter, logger *log.Logger) (*ConsoleSink, error) {
	switch cfg.Target {
	case "", "stdout", "stderr", "split":
	default:
		return nil, fmt.Errorf("console sink: invalid target %q", cfg.Target)
	}
	if cfg.Target == "" {
		cfg.Target = "stderr"
	}

	s := &ConsoleSink{
		config:    cfg,
		stdout:    os.Stdout,
		stderr:    os.Stderr,
		colorize:  cfg.Colorize && term.IsTerminal(int(os.Stderr.Fd())),
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastProcessed.Store(time.Time{})
	return s, nil
}

func (s *ConsoleSink) Handle(rec core.Record) error {
	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())

	encoded, err := s.formatter.Format(rec)
	if err != nil {
		s.logger.Error("msg", "Failed to format log record",
			"component", "console_sink",
			"error", err)
		return nil
	}

	out := s.target(rec.Level)
	if s.colorize {
		if color, ok := levelColors[rec.Level]; ok {
			if _, err := io.WriteString(out, color); err == nil {
				defer io.WriteString(out, "\033[0m")
			}
		}
	}

	if _, err := out.Write(encoded); err != nil {
		return fmt.Errorf("console sink: write failed: %w", err)
	}
	return nil
}

func (s *ConsoleSink) target(level core.Level) io.Writer {
	switch s.config.Target {
	case "stdout":
		return s.stdout
	case "split":
		if level >= core.LevelWarn {
			return s.stderr
		}
		return s.stdout
	default:
		return s.stderr
	}
}

func (s *ConsoleSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)
	return SinkStats{
		Type:           "console",
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"target": s.config.Target,
		},
	}
}
