// FILE: logfan/src/internal/rotation/rotation.go
package rotation

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"logfan/src/internal/retention"

	"github.com/lixenwraith/log"
)

// ErrCollision is returned when init mode mustNotExist finds an existing
// live file or a retained backup.
var ErrCollision = errors.New("rotation: file collision")

// InitMode controls how the live file and existing backups are treated
// when a file sink is set up.
type InitMode int

const (
	// InitAppend reuses an existing live file, creating it if absent
	InitAppend InitMode = iota
	// InitOverwrite truncates the live file and sweeps old backups
	InitOverwrite
	// InitMustNotExist fails if the live file or retained backups exist
	InitMustNotExist
)

// ParseInitMode resolves a mode name from configuration.
func ParseInitMode(s string) (InitMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "append":
		return InitAppend, nil
	case "overwrite":
		return InitOverwrite, nil
	case "mustnotexist", "must_not_exist":
		return InitMustNotExist, nil
	default:
		return InitAppend, fmt.Errorf("rotation: unknown init mode %q", s)
	}
}

func (m InitMode) String() string {
	switch m {
	case InitOverwrite:
		return "overwrite"
	case InitMustNotExist:
		return "mustNotExist"
	default:
		return "append"
	}
}

// Strategy decides, per write, whether the live file must be rotated,
// and performs the rotation. A strategy owns a retention policy and
// enforces it at init and during rotation. Rotation is a finite
// transition: initiating one synchronously completes all file-system
// steps before returning.
type Strategy interface {
	// InitLogs prepares rotation state before the sink opens the live
	// file: seeding size for append mode, sweeping or rejecting old
	// backups for overwrite/mustNotExist.
	InitLogs(filename string, mode InitMode) error

	// ShouldRotate reports whether appending pending more bytes to the
	// live file requires a rotation first.
	ShouldRotate(pending int64) bool

	// Rotate relocates the closed live file to a backup and enforces
	// retention. pending is the byte count of the write that triggered
	// rotation; it seeds the new live file's accumulated size.
	Rotate(filename string, pending int64) error

	// Wrote records bytes appended to the live file without rotation.
	Wrote(n int64)

	// SetPolicy replaces the held retention policy.
	SetPolicy(p retention.Policy)
}

var everyPattern = regexp.MustCompile(`(?i)^every\s+(\d+)\s+(bytes?|minutes?|hours?|days?)$`)

// ValidSpec reports whether s matches the rotation DSL grammar.
func ValidSpec(s string) bool {
	return everyPattern.MatchString(strings.TrimSpace(s))
}

// Parse builds a strategy from the rotation DSL:
// "every N bytes", "every N minutes", "every N hours", "every N days".
func Parse(s string, logger *log.Logger) (Strategy, error) {
	m := everyPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return nil, fmt.Errorf("rotation: invalid spec %q", s)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("rotation: invalid count in %q: %w", s, err)
	}
	switch strings.ToLower(strings.TrimSuffix(m[2], "s")) {
	case "byte":
		return NewByteStrategy(n, logger)
	case "minute":
		return NewTimedStrategy(n, IntervalMinutes, logger)
	case "hour":
		return NewTimedStrategy(n, IntervalHours, logger)
	default:
		return NewTimedStrategy(n, IntervalDays, logger)
	}
}
