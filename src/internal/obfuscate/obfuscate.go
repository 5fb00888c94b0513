// FILE: logfan/src/internal/obfuscate/obfuscate.go
package obfuscate

import (
	"fmt"
	"regexp"
	"sync/atomic"

	"logfan/src/internal/core"
	"logfan/src/internal/sink"

	"github.com/lixenwraith/log"
)

// Config describes a regex redaction rule.
type Config struct {
	Pattern     string `toml:"pattern"`
	Replacement string `toml:"replacement"`
}

// Redactor rewrites matching message text before delivery. It
// satisfies the dispatch engine's obfuscator contract: a rewritten
// record replaces the current one and carries forward to every later
// sink in the same emit call.
type Redactor struct {
	pattern     *regexp.Regexp
	replacement string
	logger      *log.Logger

	// Statistics
	totalRedacted atomic.Uint64
}

// New creates a redactor from configuration
func New(cfg Config, logger *log.Logger) (*Redactor, error) {
	if cfg.Pattern == "" {
		return nil, fmt.Errorf("obfuscate: pattern must not be empty")
	}
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("obfuscate: invalid regex pattern '%s': %w", cfg.Pattern, err)
	}

	logger.Debug("msg", "Redactor created",
		"component", "obfuscate",
		"pattern", cfg.Pattern)

	return &Redactor{
		pattern:     re,
		replacement: cfg.Replacement,
		logger:      logger,
	}, nil
}

// Obfuscate implements the dispatch obfuscator contract. Non-string
// messages pass through untouched.
func (r *Redactor) Obfuscate(_ sink.Sink, rec core.Record) (core.Record, error) {
	msg, ok := rec.Message.(string)
	if !ok {
		return rec, nil
	}

	redacted := r.pattern.ReplaceAllString(msg, r.replacement)
	if redacted == msg {
		return rec, nil
	}

	r.totalRedacted.Add(1)
	return rec.WithMessage(redacted), nil
}

// GetStats returns redactor statistics
func (r *Redactor) GetStats() map[string]any {
	return map[string]any{
		"pattern":        r.pattern.String(),
		"total_redacted": r.totalRedacted.Load(),
	}
}
