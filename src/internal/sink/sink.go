// FILE: logfan/src/internal/sink/sink.go
package sink

import (
	"time"

	"logfan/src/internal/core"
)

// Sink represents an output destination for log records. Every
// lifecycle method is declared on the interface; sinks that do not need
// a hook embed Base for no-op defaults instead of being probed for
// presence at call sites.
//
// The dispatch engine calls Setup then Header when a sink is
// registered, Handle for each delivered record, and Footer then
// Destroy when the sink is removed or the engine shuts down.
type Sink interface {
	// Setup prepares the sink for receiving records
	Setup() error

	// Header is invoked once after setup with the engine's process
	// descriptor
	Header(meta *core.Meta)

	// Handle delivers one record. Errors propagate synchronously out
	// of the emit call, aborting the remaining pipeline.
	Handle(rec core.Record) error

	// Footer is invoked with the final process descriptor before the
	// sink is destroyed
	Footer(meta *core.Meta)

	// Flush forces any buffered data out. Must be idempotent.
	Flush() error

	// Destroy releases the sink's resources. Safe to call at most once
	// per setup.
	Destroy() error
}

// Base provides no-op lifecycle defaults for sinks that only need Handle.
type Base struct{}

func (Base) Setup() error      { return nil }
func (Base) Header(*core.Meta) {}
func (Base) Footer(*core.Meta) {}
func (Base) Flush() error      { return nil }
func (Base) Destroy() error    { return nil }

// SinkStats contains statistics about a sink
type SinkStats struct {
	Type           string
	TotalProcessed uint64
	StartTime      time.Time
	LastProcessed  time.Time
	Details        map[string]any
}
