package inventory

import (
	"context"
	"fmt"

	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/storage"
)

type recorder interface {
	RecordInventory(ctx context.Context, endpoint string, payload Payload) (*Record, error)
}

type cache interface {
	Delete(ctx context.Context, key string) error
}

// Record is the marketplace's acknowledgement of an inventory write.
type Record struct {
	ID   string `json:"id"`
	Kind Kind   `json:"kind"`
}

type Manager struct {
	l        *logger.Logger
	recorder recorder
	cache    cache
}

func New(l *logger.Logger, recorder recorder, cache cache) *Manager {
	return &Manager{
		l:        l,
		recorder: recorder,
		cache:    cache,
	}
}

// Submit records the sheet's action and drops the cached ledger months it touched.
func (m *Manager) Submit(ctx context.Context, s Sheet) (*Record, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	payload := s.Payload()

	rec, err := m.recorder.RecordInventory(ctx, Endpoint(s.Kind()), payload)
	if err != nil {
		return nil, fmt.Errorf("record %s: %w", s.Kind(), err)
	}

	if rec == nil {
		rec = &Record{}
	}

	if rec.Kind == "" {
		rec.Kind = s.Kind()
	}

	if m.cache != nil {
		keys := storage.LedgerKeys(payload.PropertyID, payload.RoomTypeID, payload.StartDate.Time(), payload.EndDate.Time())
		for _, key := range keys {
			if err := m.cache.Delete(ctx, key); err != nil {
				m.l.LogErrorf("Could not drop cached ledger %s: %v", key, err.Error())
			}
		}
	}

	m.l.LogInfo("Recorded %s %s for room %s (%d units)", s.Kind(), rec.ID, payload.RoomTypeID, payload.Units)

	return rec, nil
}
