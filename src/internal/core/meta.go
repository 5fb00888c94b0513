// FILE: logfan/src/internal/core/meta.go
package core

// Minimum-level resolution sources, highest precedence first.
const (
	MinLevelSourceAPI     = "api"
	MinLevelSourceArg     = "arg"
	MinLevelSourceEnv     = "env"
	MinLevelSourceDefault = "default"
)

// Meta is the process-scoped descriptor passed to sinks at header and
// footer time. Its lifecycle spans the dispatch engine's lifetime.
type Meta struct {
	// PerLevelCount tracks how many records passed the gate per severity
	PerLevelCount map[Level]uint64

	Hostname       string
	MinLevel       Level
	MinLevelSource string

	// EnvReadFailed records that the environment lookup for the minimum
	// level failed; the failure is treated as absence, not raised
	EnvReadFailed bool
}

// NewMeta returns a Meta with an initialized counter map.
func NewMeta(hostname string) *Meta {
	return &Meta{
		PerLevelCount: make(map[Level]uint64),
		Hostname:      hostname,
	}
}

// Count increments the per-level counter for a record that passed the gate.
func (m *Meta) Count(level Level) {
	m.PerLevelCount[level]++
}
