// FILE: logfan/src/internal/rotation/timed.go
package rotation

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"logfan/src/internal/retention"

	"github.com/lixenwraith/log"
)

// IntervalUnit is the wall-clock granularity of a timed strategy.
type IntervalUnit int

const (
	IntervalMinutes IntervalUnit = iota
	IntervalHours
	IntervalDays
)

const (
	daySuffixLayout    = "2006.01.02"
	minuteSuffixLayout = "2006.01.02_15.04"
)

// TimedStrategy rotates on wall-clock interval boundaries instead of
// size. Backups are suffixed with a date (daily intervals) or
// date-time pattern: <filename>_YYYY.MM.DD or <filename>_YYYY.MM.DD_HH.MM.
type TimedStrategy struct {
	interval time.Duration
	layout   string
	bucket   time.Time
	policy   retention.Policy
	logger   *log.Logger
	now      func() time.Time
}

// NewTimedStrategy creates a timed strategy rotating every n units.
// A non-positive interval is a configuration error, rejected immediately.
func NewTimedStrategy(n int64, unit IntervalUnit, logger *log.Logger) (*TimedStrategy, error) {
	if n <= 0 {
		return nil, fmt.Errorf("rotation: interval must be positive, got %d", n)
	}
	var interval time.Duration
	layout := minuteSuffixLayout
	switch unit {
	case IntervalMinutes:
		interval = time.Duration(n) * time.Minute
	case IntervalHours:
		interval = time.Duration(n) * time.Hour
	case IntervalDays:
		interval = time.Duration(n) * 24 * time.Hour
		layout = daySuffixLayout
	default:
		return nil, fmt.Errorf("rotation: unknown interval unit %d", unit)
	}

	s := &TimedStrategy{
		interval: interval,
		layout:   layout,
		policy:   retention.Default(),
		logger:   logger,
		now:      time.Now,
	}
	s.bucket = s.bucketStart(s.now())
	return s, nil
}

func (s *TimedStrategy) SetPolicy(p retention.Policy) {
	s.policy = p
}

// ShouldRotate reports whether the clock has left the current bucket.
// Pending byte counts do not influence timed rotation.
func (s *TimedStrategy) ShouldRotate(pending int64) bool {
	return !s.now().Before(s.bucket.Add(s.interval))
}

func (s *TimedStrategy) Wrote(n int64) {}

func (s *TimedStrategy) InitLogs(filename string, mode InitMode) error {
	s.bucket = s.bucketStart(s.now())

	switch mode {
	case InitAppend:
		return nil

	case InitOverwrite:
		s.sweep(filename)
		return nil

	case InitMustNotExist:
		for _, b := range s.backups(filename) {
			if !s.retainedBackup(filename, b) {
				continue
			}
			return fmt.Errorf("%w: backup %s already exists", ErrCollision, backupSuffixName(filename, b))
		}
		return nil
	}
	return fmt.Errorf("rotation: unknown init mode %d", mode)
}

func (s *TimedStrategy) Rotate(filename string, pending int64) error {
	target := filename + "_" + s.bucket.Format(s.layout)
	if err := os.Rename(filename, target); err != nil {
		return fmt.Errorf("rotation: failed to archive live file %s: %w", filename, err)
	}

	s.sweep(filename)
	s.bucket = s.bucketStart(s.now())

	s.logger.Debug("msg", "Rotated log file",
		"component", "timed_rotation",
		"file", filename,
		"backup", target)
	return nil
}

// bucketStart floors t to the containing interval boundary.
func (s *TimedStrategy) bucketStart(t time.Time) time.Time {
	if s.layout == daySuffixLayout {
		days := int(s.interval / (24 * time.Hour))
		day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
		if days > 1 {
			epochDays := int(day.Unix() / 86400)
			day = day.AddDate(0, 0, -(epochDays % days))
		}
		return day
	}
	return t.Truncate(s.interval)
}

// sweep removes dated backups the retention policy no longer keeps.
func (s *TimedStrategy) sweep(filename string) {
	backups := s.backups(filename)

	if s.policy.Kind() == retention.KindCount {
		// Keep the N most recent by suffix ordering.
		sort.Slice(backups, func(i, j int) bool { return backups[i].suffix > backups[j].suffix })
		for i, b := range backups {
			if s.policy.KeepIndex(i + 1) {
				continue
			}
			s.remove(backupSuffixName(filename, b))
		}
		return
	}

	for _, b := range backups {
		if s.retainedBackup(filename, b) {
			continue
		}
		s.remove(backupSuffixName(filename, b))
	}
}

func (s *TimedStrategy) remove(name string) {
	if err := os.Remove(name); err != nil {
		s.logger.Warn("msg", "Failed to remove expired backup",
			"component", "timed_rotation",
			"file", name,
			"error", err)
	}
}

// retainedBackup reports whether a dated backup survives the policy.
func (s *TimedStrategy) retainedBackup(filename string, b datedBackup) bool {
	if s.policy.Kind() == retention.KindCount {
		// Count policies are resolved at sweep time by ordering; any
		// existing backup counts as retained for collision purposes.
		return true
	}
	return s.policy.WithinHorizon(b.when, s.now())
}

type datedBackup struct {
	suffix string
	when   time.Time
}

// backups enumerates existing backups whose suffix matches the date or
// date-time pattern. Directory-scan errors are swallowed: the sweep
// yields no matches.
func (s *TimedStrategy) backups(filename string) []datedBackup {
	dir := filepath.Dir(filename)
	base := filepath.Base(filename)
	entries, err := os.ReadDir(dir)
	if err != nil {
		s.logger.Warn("msg", "Backup enumeration failed",
			"component", "timed_rotation",
			"directory", dir,
			"error", err)
		return nil
	}

	var backups []datedBackup
	prefix := base + "_"
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) {
			continue
		}
		suffix := name[len(prefix):]
		when, err := time.ParseInLocation(s.layout, suffix, time.Local)
		if err != nil {
			continue
		}
		backups = append(backups, datedBackup{suffix: suffix, when: when})
	}
	return backups
}

func backupSuffixName(filename string, b datedBackup) string {
	return filename + "_" + b.suffix
}
