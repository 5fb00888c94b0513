// FILE: logfan/src/internal/dispatch/minlevel.go
package dispatch

import (
	"os"
	"strings"

	"logfan/src/internal/core"
)

const (
	// ArgToken is the process-argument override, e.g. minLogLevel=WARN
	ArgToken = "minLogLevel="

	// DefaultEnvVar is the environment override consulted when no
	// explicit or argument override is present
	DefaultEnvVar = "LOGFAN_MIN_LEVEL"
)

// EnvLookup reads an environment variable. A returned error is treated
// as absence (no override applied) and recorded in Meta, never raised.
type EnvLookup func(key string) (value string, found bool, err error)

func osEnvLookup(key string) (string, bool, error) {
	v, ok := os.LookupEnv(key)
	return v, ok, nil
}

// resolveMinLevel applies the precedence chain at engine construction:
// explicit API value > minLogLevel= argument token > environment
// variable > built-in default (lowest severity). The winning source and
// level are recorded in meta for sinks to introspect.
func resolveMinLevel(cfg *Config, meta *core.Meta) {
	if cfg.MinLevel != nil {
		meta.MinLevel = *cfg.MinLevel
		meta.MinLevelSource = core.MinLevelSourceAPI
		return
	}

	for _, arg := range cfg.Args {
		if strings.HasPrefix(arg, ArgToken) {
			meta.MinLevel = core.ParseLevel(arg[len(ArgToken):])
			meta.MinLevelSource = core.MinLevelSourceArg
			return
		}
	}

	envVar := cfg.EnvVar
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	lookup := cfg.LookupEnv
	if lookup == nil {
		lookup = osEnvLookup
	}
	value, found, err := lookup(envVar)
	if err != nil {
		meta.EnvReadFailed = true
	} else if found {
		meta.MinLevel = core.ParseLevel(value)
		meta.MinLevelSource = core.MinLevelSourceEnv
		return
	}

	meta.MinLevel = core.LevelDebug
	meta.MinLevelSource = core.MinLevelSourceDefault
}
