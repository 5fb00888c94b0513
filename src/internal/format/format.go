// FILE: logfan/src/internal/format/format.go
package format

import (
	"fmt"

	"logfan/src/internal/core"

	"github.com/lixenwraith/log"
)

// Formatter defines the interface for rendering a Record into bytes.
type Formatter interface {
	// Format renders one record, including the trailing newline
	Format(rec core.Record) ([]byte, error)

	// Name returns the formatter type name
	Name() string
}

// Config selects and configures a formatter.
type Config struct {
	// Name: "text", "json" or "raw"
	Name string `toml:"name"`

	Text *TextOptions `toml:"text"`
	JSON *JSONOptions `toml:"json"`
}

// New creates a Formatter based on the provided configuration.
func New(cfg Config, logger *log.Logger) (Formatter, error) {
	// Default to text if no format specified
	if cfg.Name == "" {
		cfg.Name = "text"
	}

	switch cfg.Name {
	case "json":
		return NewJSONFormatter(cfg.JSON, logger)
	case "text":
		return NewTextFormatter(cfg.Text, logger)
	case "raw":
		return NewRawFormatter(logger)
	default:
		return nil, fmt.Errorf("unknown formatter type: %s", cfg.Name)
	}
}

// stringify renders a record message of any type.
func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}
