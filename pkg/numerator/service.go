// Package numerator implements numerator.Generator on top of the
// sys_sequences table, plus an in-process variant for memory mode.
package numerator

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	core "registrar/internal/core/numerator"
)

const defaultRangeSize = 50

// Querier is the subset of pgx the service needs.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type cachedRange struct {
	current int64
	max     int64
}

// Service issues numbers from sys_sequences(key, current_val).
type Service struct {
	querier Querier

	cacheMu sync.Mutex
	ranges  map[string]*cachedRange
}

var _ core.Generator = (*Service)(nil)

// New creates a numerator backed by querier.
func New(querier Querier) *Service {
	return &Service{
		querier: querier,
		ranges:  make(map[string]*cachedRange),
	}
}

// GetNextNumber implements numerator.Generator.
func (s *Service) GetNextNumber(ctx context.Context, cfg core.Config, opts *core.Options, period time.Time) (string, error) {
	if s == nil {
		return "", fmt.Errorf("numerator service is not initialized")
	}
	if opts == nil {
		opts = &core.Options{Strategy: core.StrategyStrict}
	}

	key := buildKey(cfg, period)

	var (
		num int64
		err error
	)
	switch opts.Strategy {
	case core.StrategyCached:
		num, err = s.nextCached(ctx, key, opts.RangeSize)
	default:
		num, err = s.reserve(ctx, key, 1)
	}
	if err != nil {
		return "", err
	}
	return formatNumber(cfg, period, num), nil
}

// reserve bumps the sequence by n and returns the new last value.
func (s *Service) reserve(ctx context.Context, key string, n int64) (int64, error) {
	var last int64
	err := s.querier.QueryRow(ctx, `
		INSERT INTO sys_sequences (key, current_val)
		VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET current_val = sys_sequences.current_val + $2
		RETURNING current_val
	`, key, n).Scan(&last)
	if err != nil {
		return 0, fmt.Errorf("reserve %s: %w", key, err)
	}
	return last, nil
}

func (s *Service) nextCached(ctx context.Context, key string, size int64) (int64, error) {
	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()

	rng, ok := s.ranges[key]
	if !ok {
		rng = &cachedRange{}
		s.ranges[key] = rng
	}

	if rng.current >= rng.max {
		if size <= 0 {
			size = defaultRangeSize
		}
		last, err := s.reserve(ctx, key, size)
		if err != nil {
			return 0, err
		}
		// Reserved (last-size, last].
		rng.current = last - size
		rng.max = last
	}

	rng.current++
	return rng.current, nil
}

// Memory is an in-process Generator with per-key counters.
type Memory struct {
	mu       sync.Mutex
	counters map[string]int64
}

var _ core.Generator = (*Memory)(nil)

// NewMemory creates an in-process generator.
func NewMemory() *Memory {
	return &Memory{counters: make(map[string]int64)}
}

// GetNextNumber implements numerator.Generator. Strategy is irrelevant here.
func (m *Memory) GetNextNumber(_ context.Context, cfg core.Config, _ *core.Options, period time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := buildKey(cfg, period)
	m.counters[key]++
	return formatNumber(cfg, period, m.counters[key]), nil
}

func buildKey(cfg core.Config, period time.Time) string {
	switch cfg.ResetPeriod {
	case "month":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006_01"))
	case "year":
		return fmt.Sprintf("%s_%s", cfg.Prefix, period.Format("2006"))
	default:
		return cfg.Prefix
	}
}

func formatNumber(cfg core.Config, period time.Time, num int64) string {
	pad := cfg.PadWidth
	if pad == 0 {
		pad = 5
	}
	if cfg.IncludeYear {
		return fmt.Sprintf("%s-%s-%0*d", cfg.Prefix, period.Format("2006"), pad, num)
	}
	return fmt.Sprintf("%s-%0*d", cfg.Prefix, pad, num)
}

// ParseNumber extracts the numeric part of a formatted number, or -1.
func ParseNumber(formatted string) int64 {
	i := strings.LastIndex(formatted, "-")
	if i < 0 {
		return -1
	}
	num, err := strconv.ParseInt(formatted[i+1:], 10, 64)
	if err != nil {
		return -1
	}
	return num
}
