package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"shopadmin.org/internal/obs"
)

// Logging wraps a Store with debug logs and hit/miss metrics.
type Logging struct {
	inner Store
}

func NewLogging(inner Store) *Logging {
	return &Logging{inner: inner}
}

func (c *Logging) Get(ctx context.Context, key string) ([]byte, bool, error) {
	start := time.Now()
	value, ok, err := c.inner.Get(ctx, key)

	result := "miss"
	switch {
	case err != nil:
		result = "error"
	case ok:
		result = "hit"
	}
	c.record(ctx, "get", key, result, start, err)
	return value, ok, err
}

func (c *Logging) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	start := time.Now()
	err := c.inner.Set(ctx, key, value, ttl)
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.record(ctx, "set", key, result, start, err)
	return err
}

func (c *Logging) Delete(ctx context.Context, key string) error {
	start := time.Now()
	err := c.inner.Delete(ctx, key)
	result := "ok"
	if err != nil {
		result = "error"
	}
	c.record(ctx, "delete", key, result, start, err)
	return err
}

func (c *Logging) record(ctx context.Context, op, key, result string, start time.Time, err error) {
	obs.CacheRequests.WithLabelValues(op, result).Inc()

	fields := []zap.Field{
		zap.String("cache_op", op),
		zap.String("cache_key", key),
		zap.String("cache_result", result),
		zap.Float64("latency_ms", float64(time.Since(start).Microseconds())/1000.0),
	}
	logger := obs.L(ctx)
	if err != nil {
		logger.Error("employee_cache", append(fields, zap.Error(err))...)
		return
	}
	logger.Debug("employee_cache", fields...)
}
