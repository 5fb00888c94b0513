// FILE: logfan/src/internal/core/record.go
package core

import "time"

// Thunk defers message construction until the record is known to pass
// the dispatch engine's level gate. If the record is gated out, the
// thunk is never invoked.
type Thunk func() any

// Record is a single log record flowing through the pipeline.
// A Record is immutable once constructed: no field, including the
// metadata sequence, may be mutated in place. Obfuscators produce
// replacement records via WithMessage instead of mutating.
type Record struct {
	Message  any
	Metadata []any
	Time     time.Time
	Level    Level
}

// NewRecord constructs a record with a defensive copy of the metadata
// sequence, so later mutation by the caller cannot leak into the record.
func NewRecord(level Level, message any, metadata []any) Record {
	var meta []any
	if len(metadata) > 0 {
		meta = make([]any, len(metadata))
		copy(meta, metadata)
	}
	return Record{
		Message:  message,
		Metadata: meta,
		Time:     time.Now(),
		Level:    level,
	}
}

// WithMessage returns a copy of the record carrying a replacement
// message. The metadata sequence is shared; it is immutable by contract.
func (r Record) WithMessage(message any) Record {
	r.Message = message
	return r
}
