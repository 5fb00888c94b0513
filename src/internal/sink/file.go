// FILE: logfan/src/internal/sink/file.go
package sink

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"logfan/src/internal/core"
	"logfan/src/internal/format"
	"logfan/src/internal/rotation"
	"logfan/src/internal/sched"

	"github.com/lixenwraith/log"
)

// DefaultBufferSize is the in-memory buffer threshold when none is configured.
const DefaultBufferSize int64 = 8192

// FileConfig configures a buffered file sink. The config value is
// immutable once passed to NewFileSink; build a new config per sink
// instead of mutating a shared one.
type FileConfig struct {
	// Directory and Name locate the live log file
	Directory string
	Name      string

	// MinLevel drops records below it silently, before queueing
	MinLevel core.Level

	// FlushAtLevel marks the high-severity threshold: records at or
	// above it drain and flush synchronously before Handle returns.
	// Zero value selects the default, strictly above ERROR.
	FlushAtLevel core.Level

	// BufferSize is the in-memory buffer flush threshold in bytes.
	// 0 writes through on every append.
	BufferSize int64

	// InitMode controls live-file and backup handling at setup
	InitMode rotation.InitMode

	// Strategy, when set, decides per write whether to rotate first
	Strategy rotation.Strategy
}

// FileSink owns a file handle and an in-memory buffer, batching
// sub-threshold records through a deferred FIFO queue drained at the
// end of the caller's turn, and delegating rotation decisions to its
// strategy. The handle is exclusively owned; no external writer is
// assumed.
type FileSink struct {
	cfg       FileConfig
	path      string
	flushAt   core.Level
	file      *os.File
	buf       []byte
	deferred  []core.Record
	queue     *sched.Queue
	formatter format.Formatter
	logger    *log.Logger
	startTime time.Time
	active    bool

	// Statistics
	totalProcessed atomic.Uint64
	totalRotations atomic.Uint64
	lastProcessed  atomic.Value // time.Time
}

// NewFileSink creates a buffered file sink. The queue supplies the
// deferred-drain scheduling; the formatter renders queued records.
func NewFileSink(cfg FileConfig, formatter format.Formatter, queue *sched.Queue, logger *log.Logger) (*FileSink, error) {
	if cfg.BufferSize < 0 {
		return nil, fmt.Errorf("file sink: buffer size must be non-negative, got %d", cfg.BufferSize)
	}
	if cfg.Directory == "" {
		cfg.Directory = "./"
		logger.Warn("msg", "No directory provided, current directory will be used",
			"component", "file_sink")
	}
	if cfg.Name == "" {
		cfg.Name = "logfan.output"
		logger.Warn("msg", fmt.Sprintf("No filename provided, %s will be used", cfg.Name),
			"component", "file_sink")
	}

	flushAt := cfg.FlushAtLevel
	if flushAt == core.LevelDebug {
		flushAt = core.LevelError + 1
	}

	s := &FileSink{
		cfg:       cfg,
		path:      filepath.Join(cfg.Directory, cfg.Name),
		flushAt:   flushAt,
		queue:     queue,
		formatter: formatter,
		logger:    logger,
		startTime: time.Now(),
	}
	s.lastProcessed.Store(time.Time{})
	return s, nil
}

// Setup initializes rotation state, opens the live file per the
// configured init mode, and initializes the buffer.
func (s *FileSink) Setup() error {
	if s.active {
		return fmt.Errorf("file sink: already set up")
	}

	if s.cfg.Strategy != nil {
		if err := s.cfg.Strategy.InitLogs(s.path, s.cfg.InitMode); err != nil {
			return err
		}
	}

	flags := os.O_CREATE | os.O_WRONLY
	switch s.cfg.InitMode {
	case rotation.InitAppend:
		flags |= os.O_APPEND
	case rotation.InitOverwrite:
		flags |= os.O_TRUNC
	case rotation.InitMustNotExist:
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(s.path, flags, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return fmt.Errorf("%w: live file %s already exists", rotation.ErrCollision, s.path)
		}
		return fmt.Errorf("file sink: failed to open %s: %w", s.path, err)
	}

	s.file = f
	s.buf = s.buf[:0]
	s.active = true

	s.logger.Info("msg", "File sink ready",
		"component", "file_sink",
		"file", s.path,
		"init_mode", s.cfg.InitMode.String())
	return nil
}

// Header writes an open marker carrying the process descriptor.
func (s *FileSink) Header(meta *core.Meta) {
	line := fmt.Sprintf("--- log opened host=%s min_level=%s source=%s ---\n",
		meta.Hostname, meta.MinLevel, meta.MinLevelSource)
	if err := s.write([]byte(line)); err != nil {
		s.logger.Error("msg", "Failed to write header",
			"component", "file_sink",
			"error", err)
	}
}

// Handle queues the record and decides the drain timing by severity:
// high-severity records drain and flush synchronously before returning;
// sub-threshold records batch until the end of the caller's turn. A
// push into an empty queue schedules exactly one drain, so records
// appended during the same turn share a single drain pass.
func (s *FileSink) Handle(rec core.Record) error {
	if rec.Level < s.cfg.MinLevel {
		return nil
	}

	s.totalProcessed.Add(1)
	s.lastProcessed.Store(time.Now())

	wasEmpty := len(s.deferred) == 0
	s.deferred = append(s.deferred, rec)

	if rec.Level >= s.flushAt {
		if err := s.drain(); err != nil {
			return err
		}
		if err := s.flushBuffer(); err != nil {
			return err
		}
		// Durability before the call returns
		return s.file.Sync()
	}

	if wasEmpty {
		s.queue.Schedule(s.drainTask)
	}
	return nil
}

// Footer writes a close marker with the per-level counts.
func (s *FileSink) Footer(meta *core.Meta) {
	line := "--- log closed"
	for _, name := range core.LevelNames {
		line += fmt.Sprintf(" %s=%d", name, meta.PerLevelCount[core.ParseLevel(name)])
	}
	line += " ---\n"
	if err := s.write([]byte(line)); err != nil {
		s.logger.Error("msg", "Failed to write footer",
			"component", "file_sink",
			"error", err)
	}
}

// Flush drains pending deferred records, then flushes the in-memory
// buffer to the file. Idempotent and safe to call when empty.
func (s *FileSink) Flush() error {
	if err := s.drain(); err != nil {
		return err
	}
	return s.flushBuffer()
}

// Destroy flushes and closes the file handle.
func (s *FileSink) Destroy() error {
	if !s.active {
		return nil
	}
	s.active = false

	flushErr := s.Flush()

	if s.file != nil {
		if err := s.file.Sync(); err != nil && flushErr == nil {
			flushErr = err
		}
		if err := s.file.Close(); err != nil && flushErr == nil {
			flushErr = err
		}
		s.file = nil
	}

	s.logger.Info("msg", "File sink closed",
		"component", "file_sink",
		"file", s.path)
	return flushErr
}

func (s *FileSink) GetStats() SinkStats {
	lastProc, _ := s.lastProcessed.Load().(time.Time)
	return SinkStats{
		Type:           "file",
		TotalProcessed: s.totalProcessed.Load(),
		StartTime:      s.startTime,
		LastProcessed:  lastProc,
		Details: map[string]any{
			"file":            s.path,
			"total_rotations": s.totalRotations.Load(),
			"queued":          len(s.deferred),
		},
	}
}

// drainTask runs as the scheduled end-of-turn drain. Errors cannot
// propagate to a caller here, so they surface through diagnostics.
func (s *FileSink) drainTask() {
	if err := s.drain(); err != nil {
		s.logger.Error("msg", "Deferred drain failed",
			"component", "file_sink",
			"error", err)
	}
}

// drain renders and writes every queued record in FIFO order, then
// clears the queue atomically after the pass completes.
func (s *FileSink) drain() error {
	if len(s.deferred) == 0 {
		return nil
	}
	for _, rec := range s.deferred {
		encoded, err := s.formatter.Format(rec)
		if err != nil {
			s.logger.Error("msg", "Failed to format log record",
				"component", "file_sink",
				"error", err)
			continue
		}
		if err := s.write(encoded); err != nil {
			return err
		}
	}
	s.deferred = s.deferred[:0]
	return nil
}

// write appends encoded bytes through the rotation check and the
// in-memory buffer.
func (s *FileSink) write(p []byte) error {
	if s.file == nil {
		return fmt.Errorf("file sink: not set up")
	}

	pending := int64(len(p))
	if s.cfg.Strategy != nil {
		if s.cfg.Strategy.ShouldRotate(pending) {
			if err := s.rotate(pending); err != nil {
				return err
			}
		} else {
			s.cfg.Strategy.Wrote(pending)
		}
	}

	s.buf = append(s.buf, p...)
	if int64(len(s.buf)) >= s.cfg.BufferSize {
		return s.flushBuffer()
	}
	return nil
}

// rotate flushes the live buffer, closes the handle, delegates the
// rename chain to the strategy, then reopens a fresh live file. Nothing
// unwritten is dropped: the buffer is flushed before the handle closes.
func (s *FileSink) rotate(pending int64) error {
	if err := s.flushBuffer(); err != nil {
		return err
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("file sink: failed to close before rotation: %w", err)
	}
	s.file = nil

	if err := s.cfg.Strategy.Rotate(s.path, pending); err != nil {
		return err
	}

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("file sink: failed to reopen after rotation: %w", err)
	}
	s.file = f
	s.buf = s.buf[:0]
	s.totalRotations.Add(1)
	return nil
}

func (s *FileSink) flushBuffer() error {
	if len(s.buf) == 0 || s.file == nil {
		return nil
	}
	if _, err := s.file.Write(s.buf); err != nil {
		return fmt.Errorf("file sink: write failed: %w", err)
	}
	s.buf = s.buf[:0]
	return nil
}
