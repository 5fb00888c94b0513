// FILE: logfan/src/internal/config/config.go
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"logfan/src/internal/filter"
	"logfan/src/internal/format"
	"logfan/src/internal/obfuscate"

	lconfig "github.com/lixenwraith/config"
)

// Config is the root configuration for a logfan process.
type Config struct {
	// MinLevel is the explicit minimum severity; empty defers to the
	// argument token, environment variable, then built-in default
	MinLevel string `toml:"min_level"`

	// Logging configures the pipeline's own diagnostics output
	Logging *LogConfig `toml:"logging"`

	Pipeline PipelineConfig `toml:"pipeline"`
}

// PipelineConfig describes the dispatch pipeline: one formatter shared
// by the sinks, plus ordered filter, obfuscator and sink lists.
type PipelineConfig struct {
	Format      format.Config           `toml:"format"`
	Filters     []filter.Config         `toml:"filters"`
	RateLimit   *filter.RateLimitConfig `toml:"rate_limit"`
	Obfuscators []obfuscate.Config      `toml:"obfuscators"`
	Sinks       []SinkConfig            `toml:"sinks"`
}

// SinkConfig describes one sink registration. Type selects which
// fields apply.
type SinkConfig struct {
	// Type: "file" or "console"
	Type string `toml:"type"`

	// File sink settings
	Directory    string `toml:"directory"`
	Name         string `toml:"name"`
	MinLevel     string `toml:"min_level"`
	FlushAtLevel string `toml:"flush_at_level"`
	BufferSize   int64  `toml:"buffer_size"`
	InitMode     string `toml:"init_mode"`

	// Rotation DSL: "every N bytes", "every N minutes/hours/days"
	Rotation string `toml:"rotation"`

	// Retention DSL: "keep N files", "keep N days", "keep N hours"
	Retention string `toml:"retention"`

	// Console sink settings
	Target   string `toml:"target"`
	Colorize bool   `toml:"colorize"`
}

func defaults() *Config {
	return &Config{
		Logging: DefaultLogConfig(),
		Pipeline: PipelineConfig{
			Format: format.Config{Name: "text"},
			Sinks: []SinkConfig{
				{Type: "console", Target: "stderr"},
			},
		},
	}
}

// LoadWithCLI loads configuration with CLI argument overrides, source
// precedence CLI > env > file > defaults.
func LoadWithCLI(cliArgs []string) (*Config, error) {
	configPath := GetConfigPath()

	cfg, err := lconfig.NewBuilder().
		WithDefaults(defaults()).
		WithEnvPrefix("LOGFAN_").
		WithFile(configPath).
		WithArgs(cliArgs).
		WithEnvTransform(customEnvTransform).
		WithSources(
			lconfig.SourceCLI,
			lconfig.SourceEnv,
			lconfig.SourceFile,
			lconfig.SourceDefault,
		).
		Build()

	if err != nil {
		if !strings.Contains(err.Error(), "not found") {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}

	finalConfig := &Config{}
	if err := cfg.Scan(finalConfig); err != nil {
		return nil, fmt.Errorf("failed to scan config: %w", err)
	}

	return finalConfig, validateConfig(finalConfig)
}

func customEnvTransform(path string) string {
	env := strings.ReplaceAll(path, ".", "_")
	env = strings.ToUpper(env)
	env = "LOGFAN_" + env
	return env
}

// GetConfigPath resolves the configuration file location.
func GetConfigPath() string {
	if configFile := os.Getenv("LOGFAN_CONFIG_FILE"); configFile != "" {
		if filepath.IsAbs(configFile) {
			return configFile
		}
		if configDir := os.Getenv("LOGFAN_CONFIG_DIR"); configDir != "" {
			return filepath.Join(configDir, configFile)
		}
		return configFile
	}

	if configDir := os.Getenv("LOGFAN_CONFIG_DIR"); configDir != "" {
		return filepath.Join(configDir, "logfan.toml")
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".config", "logfan.toml")
	}

	return "logfan.toml"
}
