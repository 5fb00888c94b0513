// FILE: logfan/src/internal/filter/ratelimit.go
package filter

import (
	"fmt"
	"sync/atomic"

	"logfan/src/internal/core"
	"logfan/src/internal/sink"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// RateLimitConfig bounds how many records per second pass the filter.
type RateLimitConfig struct {
	RecordsPerSec float64 `toml:"records_per_sec"`
	Burst         int     `toml:"burst"`
}

// RateLimit drops records beyond a token-bucket budget. Like every
// filter, its decision is independent per record, not per sink: a
// record it drops is skipped for the sink under evaluation only.
type RateLimit struct {
	limiter *rate.Limiter
	logger  *log.Logger

	// Statistics
	totalDropped atomic.Uint64
}

// NewRateLimit creates a rate-limiting filter.
func NewRateLimit(cfg RateLimitConfig, logger *log.Logger) (*RateLimit, error) {
	if cfg.RecordsPerSec <= 0 {
		return nil, fmt.Errorf("rate limit: records_per_sec must be positive, got %v", cfg.RecordsPerSec)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = int(cfg.RecordsPerSec)
		if burst < 1 {
			burst = 1
		}
	}

	return &RateLimit{
		limiter: rate.NewLimiter(rate.Limit(cfg.RecordsPerSec), burst),
		logger:  logger,
	}, nil
}

// Allow implements the dispatch filter contract.
func (r *RateLimit) Allow(_ sink.Sink, _ core.Record) (bool, error) {
	if r.limiter.Allow() {
		return true, nil
	}
	r.totalDropped.Add(1)
	return false, nil
}

// GetStats returns rate limiter statistics
func (r *RateLimit) GetStats() map[string]any {
	return map[string]any{
		"limit":         float64(r.limiter.Limit()),
		"burst":         r.limiter.Burst(),
		"total_dropped": r.totalDropped.Load(),
	}
}
