// FILE: logfan/src/internal/retention/policy.go
package retention

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind selects how a policy bounds the set of rotated backups.
type Kind int

const (
	// KindCount keeps the N most recent rotated files
	KindCount Kind = iota
	// KindAge keeps files newer than N units
	KindAge
)

// Unit is the age granularity for KindAge policies.
type Unit int

const (
	UnitHours Unit = iota
	UnitDays
)

// DefaultKeepFiles is the backup count retained when no policy is configured.
const DefaultKeepFiles = 7

// Policy is a pure retention decision value: given rotated-backup names
// or ages, it decides which to keep. It carries no mutable state and
// performs no I/O.
type Policy struct {
	kind Kind
	n    int
	unit Unit
}

// KeepFiles builds a count-based policy keeping the n most recent backups.
func KeepFiles(n int) (Policy, error) {
	if n <= 0 {
		return Policy{}, fmt.Errorf("retention: keep count must be positive, got %d", n)
	}
	return Policy{kind: KindCount, n: n}, nil
}

// KeepFor builds an age-based policy keeping backups newer than n units.
func KeepFor(n int, unit Unit) (Policy, error) {
	if n <= 0 {
		return Policy{}, fmt.Errorf("retention: keep age must be positive, got %d", n)
	}
	return Policy{kind: KindAge, n: n, unit: unit}, nil
}

// Default returns the built-in policy: keep the 7 most recent backups.
func Default() Policy {
	return Policy{kind: KindCount, n: DefaultKeepFiles}
}

func (p Policy) Kind() Kind {
	return p.kind
}

// Count reports the keep count for KindCount policies.
func (p Policy) Count() int {
	return p.n
}

// KeepIndex reports whether a numeric backup suffix satisfies a
// count-based policy. Index 1 is the most recent backup.
func (p Policy) KeepIndex(idx int) bool {
	if p.kind != KindCount {
		return true
	}
	return idx <= p.n
}

// WithinHorizon reports whether a backup's file time falls inside the
// retention horizon of an age-based policy.
func (p Policy) WithinHorizon(fileTime, now time.Time) bool {
	if p.kind != KindAge {
		return true
	}
	return fileTime.After(p.Horizon(now))
}

// Horizon returns the cutoff instant now - n*unit.
func (p Policy) Horizon(now time.Time) time.Time {
	var d time.Duration
	switch p.unit {
	case UnitDays:
		d = time.Duration(p.n) * 24 * time.Hour
	default:
		d = time.Duration(p.n) * time.Hour
	}
	return now.Add(-d)
}

func (p Policy) String() string {
	switch p.kind {
	case KindAge:
		if p.unit == UnitDays {
			return fmt.Sprintf("keep %d days", p.n)
		}
		return fmt.Sprintf("keep %d hours", p.n)
	default:
		return fmt.Sprintf("keep %d files", p.n)
	}
}

var parsePattern = regexp.MustCompile(`(?i)^keep\s+(\d+)\s+(files?|days?|hours?)$`)

// Parse builds a policy from the retention DSL:
// "keep N files", "keep N days", "keep N hours".
func Parse(s string) (Policy, error) {
	m := parsePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Policy{}, fmt.Errorf("retention: invalid spec %q", s)
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return Policy{}, fmt.Errorf("retention: invalid count in %q: %w", s, err)
	}
	switch strings.ToLower(strings.TrimSuffix(m[2], "s")) {
	case "file":
		return KeepFiles(n)
	case "day":
		return KeepFor(n, UnitDays)
	default:
		return KeepFor(n, UnitHours)
	}
}
