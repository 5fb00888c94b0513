// FILE: logfan/src/internal/config/validation.go
package config

import (
	"fmt"
	"regexp"

	"logfan/src/internal/filter"
	"logfan/src/internal/retention"
	"logfan/src/internal/rotation"
)

// validateConfig is the centralized validator for the entire
// configuration. Configuration errors fail here, never deferred to
// first use.
func validateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("config is nil")
	}

	if cfg.Logging != nil {
		if err := validateLogConfig(cfg.Logging); err != nil {
			return fmt.Errorf("logging config: %w", err)
		}
	}

	if len(cfg.Pipeline.Sinks) == 0 {
		return fmt.Errorf("no sinks configured")
	}

	for i, f := range cfg.Pipeline.Filters {
		if err := validateFilter(i, &f); err != nil {
			return err
		}
	}

	if rl := cfg.Pipeline.RateLimit; rl != nil && rl.RecordsPerSec <= 0 {
		return fmt.Errorf("rate_limit: records_per_sec must be positive")
	}

	for i, o := range cfg.Pipeline.Obfuscators {
		if o.Pattern == "" {
			return fmt.Errorf("obfuscator[%d]: pattern must not be empty", i)
		}
		if _, err := regexp.Compile(o.Pattern); err != nil {
			return fmt.Errorf("obfuscator[%d] pattern '%s': invalid regex: %w", i, o.Pattern, err)
		}
	}

	for i, s := range cfg.Pipeline.Sinks {
		if err := validateSink(i, &s); err != nil {
			return err
		}
	}

	return nil
}

func validateFilter(filterIndex int, cfg *filter.Config) error {
	switch cfg.Type {
	case filter.TypeInclude, filter.TypeExclude, "":
		// Valid types
	default:
		return fmt.Errorf("filter[%d]: invalid type '%s' (must be 'include' or 'exclude')",
			filterIndex, cfg.Type)
	}

	switch cfg.Logic {
	case filter.LogicOr, filter.LogicAnd, "":
		// Valid logic
	default:
		return fmt.Errorf("filter[%d]: invalid logic '%s' (must be 'or' or 'and')",
			filterIndex, cfg.Logic)
	}

	// Empty patterns is valid - passes everything
	for i, pattern := range cfg.Patterns {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("filter[%d] pattern[%d] '%s': invalid regex: %w",
				filterIndex, i, pattern, err)
		}
	}

	return nil
}

func validateSink(sinkIndex int, cfg *SinkConfig) error {
	switch cfg.Type {
	case "file":
		if cfg.BufferSize < 0 {
			return fmt.Errorf("sink[%d]: buffer_size must be non-negative", sinkIndex)
		}
		if _, err := rotation.ParseInitMode(cfg.InitMode); err != nil {
			return fmt.Errorf("sink[%d]: %w", sinkIndex, err)
		}
		if cfg.Rotation != "" && !rotation.ValidSpec(cfg.Rotation) {
			return fmt.Errorf("sink[%d]: invalid rotation spec '%s'", sinkIndex, cfg.Rotation)
		}
		if cfg.Retention != "" {
			if _, err := retention.Parse(cfg.Retention); err != nil {
				return fmt.Errorf("sink[%d]: %w", sinkIndex, err)
			}
		}
	case "console":
		switch cfg.Target {
		case "", "stdout", "stderr", "split":
		default:
			return fmt.Errorf("sink[%d]: invalid console target '%s'", sinkIndex, cfg.Target)
		}
	default:
		return fmt.Errorf("sink[%d]: invalid type '%s' (must be 'file' or 'console')",
			sinkIndex, cfg.Type)
	}
	return nil
}
