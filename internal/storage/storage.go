// Package storage caches read-mostly marketplace data: active offers,
// financial settings and inventory ledgers. The marketplace stays the source
// of truth; entries expire after a TTL or are dropped on writes.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avstrong/staybook/internal/logger"
)

var ErrCacheMiss = errors.New("cache miss")

type Cache interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// Cached returns the value under key, calling fetch and storing its result on
// a miss. A broken cache is bypassed and logged, the read still succeeds.
func Cached[T any](ctx context.Context, l *logger.Logger, c Cache, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, error) {
	var value T

	if c != nil && ttl > 0 {
		err := c.Get(ctx, key, &value)
		if err == nil {
			return value, nil
		}

		if !errors.Is(err, ErrCacheMiss) && l != nil {
			l.LogErrorf("Could not read %s from cache: %v", key, err.Error())
		}
	}

	value, err := fetch(ctx)
	if err != nil {
		var zero T

		return zero, err
	}

	if c != nil && ttl > 0 {
		if err := c.Set(ctx, key, value, ttl); err != nil && l != nil {
			l.LogErrorf("Could not cache %s: %v", key, err.Error())
		}
	}

	return value, nil
}

const keyPrefix = "staybook"

func OffersKey() string {
	return keyPrefix + ":offers:active"
}

func FinancialSettingsKey() string {
	return keyPrefix + ":legal:financial-settings"
}

func BookingKey(idempotencyKey string) string {
	return keyPrefix + ":booking:" + idempotencyKey
}

func LedgerKey(propertyID, roomTypeID string, year int, month time.Month) string {
	return fmt.Sprintf("%s:ledger:%s:%s:%04d-%02d", keyPrefix, propertyID, roomTypeID, year, int(month))
}

// LedgerKeys lists the ledger keys a write over [start, end) may have touched.
func LedgerKeys(propertyID, roomTypeID string, start, end time.Time) []string {
	var keys []string

	first := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	for m := first; m.Before(end) || m.Equal(first); m = m.AddDate(0, 1, 0) {
		keys = append(keys, LedgerKey(propertyID, roomTypeID, m.Year(), m.Month()))
	}

	return keys
}
