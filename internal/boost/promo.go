package boost

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/storage"
)

type DiscountType string

const (
	Percentage DiscountType = "percentage"
	Flat       DiscountType = "flat"
)

type source interface {
	ActiveOffers(ctx context.Context) ([]Offer, error)
}

// Offer is a coupon as published by the marketplace.
type Offer struct {
	Code             string       `json:"code"`
	Description      string       `json:"description,omitempty"`
	DiscountType     DiscountType `json:"discountType"`
	DiscountValue    float64      `json:"discountValue"`
	MaxDiscount      *int64       `json:"maxDiscount,omitempty"`
	MinBookingAmount int64        `json:"minBookingAmount"`
	ValidThrough     *time.Time   `json:"validThrough,omitempty"`
}

// Eligible reports whether gross meets the offer's minimum booking amount.
func (o *Offer) Eligible(gross int64) bool {
	if o == nil {
		return false
	}

	return gross >= o.MinBookingAmount
}

// Discount returns the whole-unit discount for gross. It is zero when the
// offer is not eligible and never exceeds gross.
func (o *Offer) Discount(gross int64) int64 {
	if !o.Eligible(gross) || gross <= 0 {
		return 0
	}

	var amount float64

	switch o.DiscountType {
	case Percentage:
		amount = float64(gross) * o.DiscountValue / 100 //nolint:gomnd
		if o.MaxDiscount != nil && amount > float64(*o.MaxDiscount) {
			amount = float64(*o.MaxDiscount)
		}
	case Flat:
		amount = o.DiscountValue
	default:
		return 0
	}

	switch {
	case math.IsNaN(amount) || amount <= 0:
		return 0
	case amount >= float64(gross):
		return gross
	default:
		return int64(math.Floor(amount))
	}
}

func (o *Offer) Expired(now time.Time) bool {
	return o.ValidThrough != nil && now.After(*o.ValidThrough)
}

// FindByCode matches codes case-insensitively.
func FindByCode(offers []Offer, code string) (*Offer, bool) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, false
	}

	for i := range offers {
		if strings.EqualFold(offers[i].Code, code) {
			offer := offers[i]

			return &offer, true
		}
	}

	return nil, false
}

type Manager struct {
	l      *logger.Logger
	source source
	cache  storage.Cache
	ttl    time.Duration
	now    func() time.Time
}

func New(l *logger.Logger, source source, cache storage.Cache, ttl time.Duration) *Manager {
	return &Manager{
		l:      l,
		source: source,
		cache:  cache,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Active returns the offers that have not expired yet.
func (m *Manager) Active(ctx context.Context) ([]Offer, error) {
	offers, err := storage.Cached(ctx, m.l, m.cache, storage.OffersKey(), m.ttl, m.source.ActiveOffers)
	if err != nil {
		return nil, fmt.Errorf("get active offers: %w", err)
	}

	now := m.now()
	res := make([]Offer, 0, len(offers))

	for _, offer := range offers {
		if offer.Expired(now) {
			continue
		}

		res = append(res, offer)
	}

	return res, nil
}

func (m *Manager) Find(ctx context.Context, code string) (*Offer, error) {
	offers, err := m.Active(ctx)
	if err != nil {
		return nil, err
	}

	offer, ok := FindByCode(offers, code)
	if !ok {
		return nil, fmt.Errorf("offer %q: %w", code, ErrOfferNotFound)
	}

	return offer, nil
}
