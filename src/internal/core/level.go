// FILE: logfan/src/internal/core/level.go
package core

import "strings"

// Level is an ordinal severity. Higher values are more severe.
type Level int

const (
	LevelDebug Level = 0
	LevelInfo  Level = 1
	LevelWarn  Level = 2
	LevelError Level = 3
	LevelFatal Level = 4

	// LevelUnknown is the sentinel for unrecognized level names
	LevelUnknown Level = -1
)

// LevelNames lists the recognized names in ascending severity order
var LevelNames = []string{"DEBUG", "INFO", "WARN", "ERROR", "FATAL"}

// ParseLevel resolves a level name to its ordinal. Unrecognized names
// resolve to LevelUnknown rather than failing.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "WARN", "WARNING":
		return LevelWarn
	case "ERROR":
		return LevelError
	case "FATAL":
		return LevelFatal
	default:
		return LevelUnknown
	}
}

func (l Level) String() string {
	if l >= LevelDebug && int(l) < len(LevelNames) {
		return LevelNames[l]
	}
	return "UNKNOWN"
}
