// FILE: logfan/src/internal/rotation/bytes.go
package rotation

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"logfan/src/internal/retention"

	"github.com/lixenwraith/log"
)

// ByteStrategy rotates when the live file's accumulated size would
// exceed a byte threshold. Backups carry numeric suffixes
// <filename>.1, <filename>.2, ... with 1 the most recent.
type ByteStrategy struct {
	maxBytes    int64
	currentSize int64
	policy      retention.Policy
	logger      *log.Logger
	now         func() time.Time
}

// NewByteStrategy creates a byte-count strategy. A non-positive
// threshold is a configuration error, rejected immediately.
func NewByteStrategy(maxBytes int64, logger *log.Logger) (*ByteStrategy, error) {
	if maxBytes <= 0 {
		return nil, fmt.Errorf("rotation: byte threshold must be positive, got %d", maxBytes)
	}
	return &ByteStrategy{
		maxBytes: maxBytes,
		policy:   retention.Default(),
		logger:   logger,
		now:      time.Now,
	}, nil
}

func (s *ByteStrategy) SetPolicy(p retention.Policy) {
	s.policy = p
}

func (s *ByteStrategy) ShouldRotate(pending int64) bool {
	return s.currentSize+pending > s.maxBytes
}

func (s *ByteStrategy) Wrote(n int64) {
	s.currentSize += n
}

func (s *ByteStrategy) InitLogs(filename string, mode InitMode) error {
	switch mode {
	case InitAppend:
		s.currentSize = 0
		if info, err := os.Stat(filename); err == nil {
			s.currentSize = info.Size()
		}
		return nil

	case InitOverwrite:
		s.currentSize = 0
		s.sweep(filename)
		return nil

	case InitMustNotExist:
		s.currentSize = 0
		for _, idx := range s.backupIndices(filename) {
			if !s.retained(filename, idx) {
				continue
			}
			return fmt.Errorf("%w: backup %s.%d already exists", ErrCollision, filename, idx)
		}
		return nil
	}
	return fmt.Errorf("rotation: unknown init mode %d", mode)
}

func (s *ByteStrategy) Rotate(filename string, pending int64) error {
	highest := 0
	indices := s.backupIndices(filename)
	for _, idx := range indices {
		if idx > highest {
			highest = idx
		}
	}
	// Directory scan yielded nothing; for a count-based policy the
	// retained file count bounds the possible backups.
	if highest == 0 && s.policy.Kind() == retention.KindCount {
		highest = s.policy.Count()
	}

	// Cascade from the highest index downward so no backup is
	// overwritten before it has been moved aside.
	for i := highest; i >= 1; i-- {
		src := backupName(filename, i)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		if err := os.Rename(src, backupName(filename, i+1)); err != nil {
			return fmt.Errorf("rotation: failed to shift backup %s: %w", src, err)
		}
	}

	if err := os.Rename(filename, backupName(filename, 1)); err != nil {
		return fmt.Errorf("rotation: failed to archive live file %s: %w", filename, err)
	}

	s.sweep(filename)
	s.currentSize = pending

	s.logger.Debug("msg", "Rotated log file",
		"component", "byte_rotation",
		"file", filename,
		"max_bytes", s.maxBytes)
	return nil
}

// sweep removes backups the retention policy no longer keeps.
func (s *ByteStrategy) sweep(filename string) {
	for _, idx := range s.backupIndices(filename) {
		if s.retained(filename, idx) {
			continue
		}
		name := backupName(filename, idx)
		if err := os.Remove(name); err != nil {
			s.logger.Warn("msg", "Failed to remove expired backup",
				"component", "byte_rotation",
				"file", name,
				"error", err)
		}
	}
}

// retained reports whether a numbered backup survives the policy.
func (s *ByteStrategy) retained(filename string, idx int) bool {
	if s.policy.Kind() == retention.KindCount {
		return s.policy.KeepIndex(idx)
	}
	info, err := os.Stat(backupName(filename, idx))
	if err != nil {
		return false
	}
	return s.policy.WithinHorizon(info.ModTime(), s.now())
}

// backupIndices enumerates the numeric suffixes of existing backups.
// Directory-scan errors are swallowed: the sweep yields no matches.
func (s *ByteStrategy) backupIndices(filename string) []int {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("msg", "Backup enumeration failed",
			"component", "byte_rotation",
			"directory", dir,
			"error", err)
		return nil
	}

	var indices []int
	prefix := base + "."
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || len(name) <= len(prefix) || name[:len(prefix)] != prefix {
			continue
		}
		idx, err := strconv.Atoi(name[len(prefix):])
		if err != nil || idx < 1 {
			continue
		}
		indices = append(indices, idx)
	}
	return indices
}

func backupName(filename string, idx int) string {
	return fmt.Sprintf("%s.%d", filename, idx)
}
