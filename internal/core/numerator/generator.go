// Package numerator defines sequential human-readable numbers such as
// student numbers (S-2026-00042). Implementations live in pkg/numerator.
package numerator

import (
	"context"
	"time"
)

// Strategy selects how numbers are reserved.
type Strategy int

const (
	// StrategyStrict reserves one number per call; no gaps.
	StrategyStrict Strategy = iota

	// StrategyCached reserves RangeSize numbers at once and hands them out
	// from memory. A restart leaves a gap.
	StrategyCached
)

// Options tunes a single call.
type Options struct {
	Strategy  Strategy
	RangeSize int64 // default 50
}

// Config holds a numbering scheme.
type Config struct {
	Prefix      string
	IncludeYear bool
	PadWidth    int    // default 5
	ResetPeriod string // "year", "month" or "never"
}

// DefaultConfig returns PREFIX-YYYY-NNNNN numbering reset every year.
func DefaultConfig(prefix string) Config {
	return Config{
		Prefix:      prefix,
		IncludeYear: true,
		PadWidth:    5,
		ResetPeriod: "year",
	}
}

// Generator issues the next number of a sequence.
type Generator interface {
	GetNextNumber(ctx context.Context, cfg Config, opts *Options, period time.Time) (string, error)
}
