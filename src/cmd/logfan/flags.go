// FILE: logfan/src/cmd/logfan/flags.go
package main

import (
	"flag"
	"fmt"
	"os"
)

// FlagConfig holds command-line flag values parsed before the
// configuration loader runs.
type FlagConfig struct {
	ConfigFile  string
	ShowVersion bool
	Quiet       bool
}

// ParseFlags parses the binary's own flags, leaving the remaining
// arguments (including minLogLevel= tokens) for the config loader and
// the dispatch engine.
func ParseFlags() (*FlagConfig, []string, error) {
	fs := flag.NewFlagSet("logfan", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	cfg := &FlagConfig{}
	fs.StringVar(&cfg.ConfigFile, "c", "", "path to configuration file")
	fs.BoolVar(&cfg.ShowVersion, "version", false, "print version and exit")
	fs.BoolVar(&cfg.Quiet, "quiet", false, "suppress diagnostics output")

	if err := fs.Parse(os.Args[1:]); err != nil {
		return nil, nil, fmt.Errorf("failed to parse flags: %w", err)
	}
	return cfg, fs.Args(), nil
}
