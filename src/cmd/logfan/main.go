// FILE: logfan/src/cmd/logfan/main.go
package main

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"logfan/src/internal/config"
	"logfan/src/internal/core"
	"logfan/src/internal/dispatch"
	"logfan/src/internal/sched"
	"logfan/src/internal/version"

	"github.com/lixenwraith/log"
)

var logger *log.Logger

// main wires the dispatch engine to stdin: each input line becomes a
// record, with an optional leading "LEVEL " token selecting severity.
func main() {
	flagCfg, rest, err := ParseFlags()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if flagCfg.ShowVersion {
		fmt.Println(version.String())
		os.Exit(0)
	}

	if flagCfg.ConfigFile != "" {
		os.Setenv("LOGFAN_CONFIG_FILE", flagCfg.ConfigFile)
	}

	cfg, err := config.LoadWithCLI(rest)
	if err != nil {
		if flagCfg.ConfigFile != "" && strings.Contains(err.Error(), "not found") {
			fmt.Fprintf(os.Stderr, "Config file not found: %s\n", flagCfg.ConfigFile)
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	if err := initializeLogger(cfg, flagCfg.Quiet); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer shutdownLogger()

	logger.Info("msg", "logfan starting",
		"version", version.String(),
		"config_file", flagCfg.ConfigFile)

	queue := sched.NewQueue()
	engine, err := bootstrapEngine(cfg, rest, queue)
	if err != nil {
		logger.Error("msg", "Failed to bootstrap engine", "error", err)
		shutdownLogger()
		os.Exit(1)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	// Single consumer turn loop: scheduled drains run between turns
	for {
		select {
		case line, ok := <-lines:
			if !ok {
				shutdown(engine, queue)
				return
			}
			queue.Do(func() {
				level, message := splitLevel(line)
				if _, err := engine.Emit(level, message); err != nil {
					logger.Error("msg", "Emit failed", "error", err)
				}
			})

		case <-sigChan:
			logger.Info("msg", "Shutdown signal received")
			shutdown(engine, queue)
			return
		}
	}
}

// splitLevel peels an optional leading level token off an input line.
func splitLevel(line string) (core.Level, string) {
	token, rest, found := strings.Cut(line, " ")
	if found {
		if level := core.ParseLevel(token); level != core.LevelUnknown {
			return level, rest
		}
	}
	return core.LevelInfo, line
}

func shutdown(engine *dispatch.Engine, queue *sched.Queue) {
	queue.RunPending()
	if err := engine.Shutdown(); err != nil {
		logger.Error("msg", "Engine shutdown failed", "error", err)
	}
	logger.Info("msg", "Shutdown complete")
}

func shutdownLogger() {
	if logger != nil {
		if err := logger.Shutdown(2 * time.Second); err != nil {
			fmt.Fprintf(os.Stderr, "Logger shutdown error: %v\n", err)
		}
	}
}
