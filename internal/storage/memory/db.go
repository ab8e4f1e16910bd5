package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/storage"
)

type Config struct {
	L   *logger.Logger
	Now func() time.Time
}

type entry struct {
	data      []byte
	expiresAt time.Time
}

// DB is an in-process cache. Values are stored JSON encoded so callers see
// the same copy semantics as with the redis backend.
type DB struct {
	mu      sync.Mutex
	l       *logger.Logger
	now     func() time.Time
	entries map[string]entry
}

func New(conf Config) *DB {
	now := conf.Now
	if now == nil {
		now = time.Now
	}

	return &DB{
		l:       conf.L,
		now:     now,
		entries: make(map[string]entry),
	}
}

func (db *DB) Get(_ context.Context, key string, dest any) error {
	if dest == nil {
		return ErrNilDestination
	}

	db.mu.Lock()
	e, ok := db.entries[key]

	if ok && !db.now().Before(e.expiresAt) {
		delete(db.entries, key)

		ok = false
	}
	db.mu.Unlock()

	if !ok {
		return storage.ErrCacheMiss
	}

	if err := json.Unmarshal(e.data, dest); err != nil {
		return fmt.Errorf("decode cached %s: %w", key, err)
	}

	return nil
}

func (db *DB) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s for cache: %w", key, err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.entries[key] = entry{
		data:      data,
		expiresAt: db.now().Add(ttl),
	}

	return nil
}

func (db *DB) Delete(_ context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	delete(db.entries, key)

	return nil
}

// Purge drops expired entries and returns how many were removed.
func (db *DB) Purge() int {
	db.mu.Lock()
	defer db.mu.Unlock()

	now := db.now()
	removed := 0

	for key, e := range db.entries {
		if !now.Before(e.expiresAt) {
			delete(db.entries, key)
			removed++
		}
	}

	if removed > 0 && db.l != nil {
		db.l.LogDebug("Purged %d expired cache entries", removed)
	}

	return removed
}

// RunJanitor purges expired entries every interval until ctx is done.
func (db *DB) RunJanitor(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			db.Purge()
		}
	}
}
