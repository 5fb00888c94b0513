// FILE: logfan/src/cmd/logfan/bootstrap.go
package main

import (
	"fmt"
	"strings"

	"logfan/src/internal/config"
	"logfan/src/internal/core"
	"logfan/src/internal/dispatch"
	"logfan/src/internal/filter"
	"logfan/src/internal/format"
	"logfan/src/internal/obfuscate"
	"logfan/src/internal/retention"
	"logfan/src/internal/rotation"
	"logfan/src/internal/sched"
	"logfan/src/internal/sink"

	"github.com/lixenwraith/log"
)

// initializeLogger sets up the diagnostics logger based on configuration
func initializeLogger(cfg *config.Config, quiet bool) error {
	logger = log.NewLogger()

	var configArgs []string

	if quiet {
		// In quiet mode, disable ALL diagnostics output
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=false",
			"level=255")

		if err := logger.ApplyConfigString(configArgs...); err != nil {
			return err
		}
		return logger.Start()
	}

	logCfg := cfg.Logging
	if logCfg == nil {
		logCfg = config.DefaultLogConfig()
	}

	levelValue, err := parseLogLevel(logCfg.Level)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	configArgs = append(configArgs, fmt.Sprintf("level=%d", levelValue))

	switch logCfg.Output {
	case "none":
		configArgs = append(configArgs, "disable_file=true", "enable_stdout=false")

	case "stdout":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stdout")

	case "stderr":
		configArgs = append(configArgs,
			"disable_file=true",
			"enable_stdout=true",
			"stdout_target=stderr")

	case "file":
		configArgs = append(configArgs, "enable_stdout=false")
		if logCfg.File != nil {
			configArgs = append(configArgs,
				fmt.Sprintf("directory=%s", logCfg.File.Directory),
				fmt.Sprintf("name=%s", logCfg.File.Name),
				fmt.Sprintf("max_size_mb=%d", logCfg.File.MaxSizeMB))
			if logCfg.File.RetentionHours > 0 {
				configArgs = append(configArgs,
					fmt.Sprintf("retention_period_hrs=%.1f", logCfg.File.RetentionHours))
			}
		}

	default:
		return fmt.Errorf("invalid log output mode: %s", logCfg.Output)
	}

	if err := logger.ApplyConfigString(configArgs...); err != nil {
		return err
	}
	return logger.Start()
}

func parseLogLevel(level string) (int, error) {
	switch strings.ToLower(level) {
	case "debug":
		return int(log.LevelDebug), nil
	case "info":
		return int(log.LevelInfo), nil
	case "warn", "warning":
		return int(log.LevelWarn), nil
	case "error":
		return int(log.LevelError), nil
	default:
		return 0, fmt.Errorf("unknown log level: %s", level)
	}
}

// bootstrapEngine builds the dispatch engine, sinks, filters and
// obfuscators from configuration.
func bootstrapEngine(cfg *config.Config, args []string, queue *sched.Queue) (*dispatch.Engine, error) {
	engineCfg := dispatch.Config{Args: args}
	if cfg.MinLevel != "" {
		level := core.ParseLevel(cfg.MinLevel)
		engineCfg.MinLevel = &level
	}

	engine, err := dispatch.NewEngine(engineCfg, queue, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create dispatch engine: %w", err)
	}

	formatter, err := format.New(cfg.Pipeline.Format, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create formatter: %w", err)
	}

	for i, filterCfg := range cfg.Pipeline.Filters {
		f, err := filter.New(filterCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create filter[%d]: %w", i, err)
		}
		engine.AddFilter(f)
	}

	if cfg.Pipeline.RateLimit != nil {
		rl, err := filter.NewRateLimit(*cfg.Pipeline.RateLimit, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create rate limiter: %w", err)
		}
		engine.AddFilter(rl)
	}

	for i, obCfg := range cfg.Pipeline.Obfuscators {
		ob, err := obfuscate.New(obCfg, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create obfuscator[%d]: %w", i, err)
		}
		engine.AddObfuscator(ob)
	}

	for i, sinkCfg := range cfg.Pipeline.Sinks {
		s, err := buildSink(&sinkCfg, formatter, queue)
		if err != nil {
			return nil, fmt.Errorf("failed to create sink[%d]: %w", i, err)
		}
		if err := engine.AddSink(s); err != nil {
			return nil, fmt.Errorf("failed to activate sink[%d]: %w", i, err)
		}
	}

	return engine, nil
}

func buildSink(cfg *config.SinkConfig, formatter format.Formatter, queue *sched.Queue) (sink.Sink, error) {
	switch cfg.Type {
	case "console":
		return sink.NewConsoleSink(sink.ConsoleConfig{
			Target:   cfg.Target,
			Colorize: cfg.Colorize,
		}, formatter, logger)

	case "file":
		fileCfg := sink.FileConfig{
			Directory:    cfg.Directory,
			Name:         cfg.Name,
			MinLevel:     core.ParseLevel(cfg.MinLevel),
			FlushAtLevel: core.ParseLevel(cfg.FlushAtLevel),
			BufferSize:   cfg.BufferSize,
		}
		if fileCfg.MinLevel == core.LevelUnknown {
			fileCfg.MinLevel = core.LevelDebug
		}
		if fileCfg.FlushAtLevel == core.LevelUnknown {
			fileCfg.FlushAtLevel = core.LevelDebug // sink default applies
		}
		if fileCfg.BufferSize == 0 {
			fileCfg.BufferSize = sink.DefaultBufferSize
		}

		mode, err := rotation.ParseInitMode(cfg.InitMode)
		if err != nil {
			return nil, err
		}
		fileCfg.InitMode = mode

		if cfg.Rotation != "" {
			strategy, err := rotation.Parse(cfg.Rotation, logger)
			if err != nil {
				return nil, err
			}
			if cfg.Retention != "" {
				policy, err := retention.Parse(cfg.Retention)
				if err != nil {
					return nil, err
				}
				strategy.SetPolicy(policy)
			}
			fileCfg.Strategy = strategy
		}

		return sink.NewFileSink(fileCfg, formatter, queue, logger)

	default:
		return nil, fmt.Errorf("unknown sink type: %s", cfg.Type)
	}
}
