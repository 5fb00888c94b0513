// FILE: logfan/src/internal/dispatch/handler.go
package dispatch

import (
	"reflect"

	"logfan/src/internal/core"
	"logfan/src/internal/sink"
)

// Trigger is a pure observer invoked on every record that passes the
// level gate, independent of sinks. A returned error propagates and
// aborts the remaining pipeline for that emit call.
type Trigger interface {
	Fire(rec core.Record) error
}

// TriggerFunc adapts a bare function into a Trigger, the single
// internal calling convention for function-or-object handlers.
type TriggerFunc func(rec core.Record)

func (f TriggerFunc) Fire(rec core.Record) error {
	f(rec)
	return nil
}

// Filter is a per-sink gate deciding whether a record reaches that
// sink. Allow reports true to pass. The first filter reporting false
// short-circuits the chain and skips the sink for this record only.
type Filter interface {
	Allow(s sink.Sink, rec core.Record) (bool, error)
}

// FilterFunc adapts a bare predicate into a Filter.
type FilterFunc func(s sink.Sink, rec core.Record) bool

func (f FilterFunc) Allow(s sink.Sink, rec core.Record) (bool, error) {
	return f(s, rec), nil
}

// Obfuscator is a per-sink transform that may replace a record's
// content before delivery. The returned record replaces the current
// one for subsequent obfuscators, this sink's Handle call, and every
// later sink's filter/obfuscate cycle.
type Obfuscator interface {
	Obfuscate(s sink.Sink, rec core.Record) (core.Record, error)
}

// ObfuscatorFunc adapts a bare transform into an Obfuscator.
type ObfuscatorFunc func(s sink.Sink, rec core.Record) core.Record

func (f ObfuscatorFunc) Obfuscate(s sink.Sink, rec core.Record) (core.Record, error) {
	return f(s, rec), nil
}

// sameHandler matches registered handlers for removal. Function
// adapters are not comparable with ==, so function kinds compare by
// code pointer.
func sameHandler(a, b any) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Func || bv.Kind() == reflect.Func {
		return av.Kind() == bv.Kind() && av.Pointer() == bv.Pointer()
	}
	return a == b
}
