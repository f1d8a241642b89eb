package store

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// The aggregate cache is strictly best-effort: any Redis failure degrades to
// an uncached read with a warning, never to an error.
const (
	cacheKeyAverageSalary  = "hh:agg:avg_salary"
	cacheKeyEmployerCounts = "hh:agg:employer_counts"
	cacheTTL               = 10 * time.Minute
)

func (s *Store) cachedAverageSalary(ctx context.Context) (float64, bool) {
	if s.rdb == nil {
		return 0, false
	}
	val, err := s.rdb.Get(ctx, cacheKeyAverageSalary).Result()
	if err == redis.Nil {
		return 0, false
	}
	if err != nil {
		slog.Warn("aggregate cache read failed", "key", cacheKeyAverageSalary, "err", err)
		return 0, false
	}
	avg, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, false
	}
	return avg, true
}

func (s *Store) storeAverageSalary(ctx context.Context, avg float64) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKeyAverageSalary, strconv.FormatFloat(avg, 'f', -1, 64), cacheTTL).Err(); err != nil {
		slog.Warn("aggregate cache write failed", "key", cacheKeyAverageSalary, "err", err)
	}
}

func (s *Store) cachedEmployerCounts(ctx context.Context) ([]EmployerPostings, bool) {
	if s.rdb == nil {
		return nil, false
	}
	val, err := s.rdb.Get(ctx, cacheKeyEmployerCounts).Bytes()
	if err == redis.Nil {
		return nil, false
	}
	if err != nil {
		slog.Warn("aggregate cache read failed", "key", cacheKeyEmployerCounts, "err", err)
		return nil, false
	}
	var counts []EmployerPostings
	if err := json.Unmarshal(val, &counts); err != nil {
		return nil, false
	}
	return counts, true
}

func (s *Store) storeEmployerCounts(ctx context.Context, counts []EmployerPostings) {
	if s.rdb == nil {
		return
	}
	payload, err := json.Marshal(counts)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKeyEmployerCounts, payload, cacheTTL).Err(); err != nil {
		slog.Warn("aggregate cache write failed", "key", cacheKeyEmployerCounts, "err", err)
	}
}

// InvalidateAggregates drops every cached aggregate. The ingest runner calls
// it after each completed run so the menu never shows pre-run numbers.
func (s *Store) InvalidateAggregates(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Del(ctx, cacheKeyAverageSalary, cacheKeyEmployerCounts).Err(); err != nil {
		slog.Warn("aggregate cache invalidation failed", "err", err)
	}
}
