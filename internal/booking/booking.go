package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/boost"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/stay"
	"github.com/avstrong/staybook/internal/storage"
	"github.com/avstrong/staybook/internal/validation"
)

// ledgerLookbackDays widens a month's ledger fetch so stays that began in the
// previous month are still counted.
const ledgerLookbackDays = 31

// MaxStayNights bounds a single quote or booking.
const MaxStayNights = 366

type market interface {
	GetRoom(ctx context.Context, propertyID, roomTypeID string) (stay.Room, error)
	CheckAvailability(ctx context.Context, q availability.Query) ([]availability.RoomCheck, error)
	GetLedger(ctx context.Context, r marketplace.LedgerRequest) ([]availability.LedgerEntry, error)
	FinancialSettings(ctx context.Context) (marketplace.FinancialSettings, error)
	CreateBooking(ctx context.Context, idempotencyKey string, r marketplace.BookingRequest) (*marketplace.Booking, error)
}

type offerFinder interface {
	Find(ctx context.Context, code string) (*boost.Offer, error)
}

type Config struct {
	TaxTTL      time.Duration
	LedgerTTL   time.Duration
	BookingTTL  time.Duration
	LedgerLimit int
}

type Manager struct {
	l      *logger.Logger
	market market
	offers offerFinder
	cache  storage.Cache
	conf   Config
	now    func() time.Time
}

func New(l *logger.Logger, conf Config, market market, offers offerFinder, cache storage.Cache) *Manager {
	return &Manager{
		l:      l,
		market: market,
		offers: offers,
		cache:  cache,
		conf:   conf,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (m *Manager) today() calendar.Date {
	return calendar.FromTime(m.now())
}

func (in *QuoteInput) validate(today calendar.Date) error {
	inputErr := validation.NewInputError()
	inputErr.Struct(in)

	switch {
	case in.CheckIn.IsZero() && in.CheckOut.IsZero():
	case in.CheckIn.IsZero():
		inputErr.AddError("checkIn", "is required when checkOut is set")
	case in.CheckOut.IsZero():
		inputErr.AddError("checkOut", "is required when checkIn is set")
	default:
		validateStay(inputErr, in.CheckIn, in.CheckOut, today)
	}

	return inputErr.OrNil()
}

func validateStay(inputErr *validation.InputError, checkIn, checkOut, today calendar.Date) {
	switch nights := calendar.DaysBetween(checkIn, checkOut); {
	case nights <= 0:
		inputErr.AddError("checkOut", "must be after checkIn")
	case nights > MaxStayNights:
		inputErr.AddError("checkOut", fmt.Sprintf("must be at most %d nights after checkIn", MaxStayNights))
	}

	if checkIn.Before(today) {
		inputErr.AddError("checkIn", "must not be in the past")
	}
}

func (b *BookInput) validate(today calendar.Date) error {
	inputErr := validation.NewInputError()
	inputErr.Struct(&b.QuoteInput)
	inputErr.StructAt("guest", &b.Guest)

	if b.CheckIn.IsZero() {
		inputErr.AddError("checkIn", "is required")
	}

	if b.CheckOut.IsZero() {
		inputErr.AddError("checkOut", "is required")
	}

	if !b.CheckIn.IsZero() && !b.CheckOut.IsZero() {
		validateStay(inputErr, b.CheckIn, b.CheckOut, today)
	}

	return inputErr.OrNil()
}

func (m *Manager) getRoom(ctx context.Context, propertyID, roomTypeID string) (stay.Room, error) {
	room, err := m.market.GetRoom(ctx, propertyID, roomTypeID)
	if err != nil {
		if marketplace.IsNotFound(err) {
			return stay.Room{}, fmt.Errorf("room %s of property %s: %w", roomTypeID, propertyID, ErrRoomNotFound)
		}

		return stay.Room{}, fmt.Errorf("get room: %w", err)
	}

	return room, nil
}

func (m *Manager) taxRate(ctx context.Context) (float64, error) {
	settings, err := storage.Cached(ctx, m.l, m.cache, storage.FinancialSettingsKey(), m.conf.TaxTTL, m.market.FinancialSettings)
	if err != nil {
		return 0, fmt.Errorf("get financial settings: %w", err)
	}

	return settings.TaxRate, nil
}

// Availability asks the marketplace about one room. Any failure blocks booking.
func (m *Manager) Availability(ctx context.Context, q availability.Query) availability.CheckResult {
	checks, err := m.market.CheckAvailability(ctx, q)
	if err != nil {
		m.l.LogErrorf("Could not check availability of room %s: %v", q.RoomTypeID, err.Error())

		return availability.FromError(err)
	}

	return availability.ReduceRoomResults(checks, q.RoomTypeID, q.Rooms)
}

// Quote prices a stay. Offers and tax degrade to none on failure.
//
//nolint:funlen // linear fan-out
func (m *Manager) Quote(ctx context.Context, in *QuoteInput) (*Quote, error) {
	if err := in.validate(m.today()); err != nil {
		return nil, err
	}

	var (
		room     stay.Room
		offer    *boost.Offer
		taxRate  float64
		check    = availability.Unchecked()
		warnings []string
		offerErr error
		taxErr   error
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error

		room, err = m.getRoom(gctx, in.PropertyID, in.RoomTypeID)
		if err != nil {
			return err
		}

		if in.Dates() != nil {
			check = m.Availability(gctx, in.query(room))
		}

		return nil
	})

	if in.OfferCode != "" {
		g.Go(func() error {
			offer, offerErr = m.offers.Find(gctx, in.OfferCode)

			return nil
		})
	}

	g.Go(func() error {
		taxRate, taxErr = m.taxRate(gctx)

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if offerErr != nil {
		offer = nil

		if !errors.Is(offerErr, boost.ErrOfferNotFound) {
			m.l.LogErrorf("Could not load offers: %v", offerErr.Error())
		}

		warnings = append(warnings, fmt.Sprintf("Offer %s is not available", in.OfferCode))
	}

	if taxErr != nil {
		m.l.LogErrorf("Could not load tax rate, quoting without tax: %v", taxErr.Error())

		taxRate = 0
	}

	breakdown := stay.ComputePriceBreakdown(room, in.Dates(), in.Guests(), offer, taxRate)

	switch {
	case !room.Category.Rules().Bookable:
		warnings = append(warnings, "This listing cannot be booked online")
	case breakdown == nil:
		warnings = append(warnings, "Select check-in and check-out dates")
	case offer != nil && !breakdown.OfferEligible:
		warnings = append(warnings, fmt.Sprintf("Offer %s needs a booking of at least %d", offer.Code, offer.MinBookingAmount))
	}

	return &Quote{
		Room:         room,
		Breakdown:    breakdown,
		Availability: check,
		Offer:        offer,
		TaxRate:      taxRate,
		Warnings:     warnings,
		Bookable:     breakdown != nil && breakdown.GrandTotal > 0 && check.Bookable(),
		QuotedAt:     m.now(),
	}, nil
}

func (in *CalendarInput) validate() error {
	inputErr := validation.NewInputError()
	inputErr.Struct(in)

	return inputErr.OrNil()
}

// Calendar projects a month of availability from the room's ledger.
func (m *Manager) Calendar(ctx context.Context, in *CalendarInput) (*Calendar, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var (
		room    stay.Room
		entries []availability.LedgerEntry
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		room, err = m.getRoom(gctx, in.PropertyID, in.RoomTypeID)

		return err
	})

	g.Go(func() error {
		key := storage.LedgerKey(in.PropertyID, in.RoomTypeID, in.Year, in.Month)

		var err error
		entries, err = storage.Cached(gctx, m.l, m.cache, key, m.conf.LedgerTTL, func(ctx context.Context) ([]availability.LedgerEntry, error) {
			return m.market.GetLedger(ctx, marketplace.LedgerRequest{
				PropertyID: in.PropertyID,
				RoomTypeID: in.RoomTypeID,
				StartDate:  calendar.New(in.Year, in.Month, 1).AddDays(-ledgerLookbackDays),
				Limit:      m.conf.LedgerLimit,
			})
		})
		if err != nil {
			return fmt.Errorf("get ledger: %w", err)
		}

		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Calendar{
		Room:         room,
		Availability: availability.ProjectMonth(room.TotalInventory, entries, in.Year, in.Month),
		Entries:      entries,
	}, nil
}

// CreateBooking re-quotes the stay and forwards it to the marketplace. Repeated
// calls with the same idempotency key return the first booking.
func (m *Manager) CreateBooking(ctx context.Context, in *BookInput) (*marketplace.Booking, error) {
	key, ok := IdempotencyKeyFromContext(ctx)
	if !ok || key == "" {
		return nil, ErrIdempotencyKey
	}

	if err := in.validate(m.today()); err != nil {
		return nil, err
	}

	var prev marketplace.Booking

	if m.cache != nil {
		err := m.cache.Get(ctx, storage.BookingKey(key), &prev)
		if err == nil {
			m.l.LogInfo("Booking %s replayed for idempotency key %s", prev.ID, key)

			return &prev, nil
		}

		if !errors.Is(err, storage.ErrCacheMiss) {
			m.l.LogErrorf("Could not read booking for idempotency key %s: %v", key, err.Error())
		}
	}

	quote, err := m.Quote(ctx, &in.QuoteInput)
	if err != nil {
		return nil, fmt.Errorf("quote: %w", err)
	}

	if !quote.Availability.Bookable() {
		availabilityErr := NewAvailabilityError()
		availabilityErr.AddUnavailableRoom(in.PropertyID, in.RoomTypeID, quote.Availability.Message)

		return nil, availabilityErr
	}

	if !quote.Bookable {
		return nil, ErrNotBookable
	}

	var offerCode string
	if quote.Breakdown.OfferEligible {
		offerCode = quote.Breakdown.OfferCode
	}

	created, err := m.market.CreateBooking(ctx, key, marketplace.BookingRequest{
		PropertyID: in.PropertyID,
		RoomTypeID: in.RoomTypeID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Rooms:      quote.Breakdown.Units,
		Adults:     in.Adults,
		Children:   in.Children,
		OfferCode:  offerCode,
		Guest:      in.Guest,
		Pricing:    *quote.Breakdown,
	})
	if err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}

	if m.cache != nil && m.conf.BookingTTL > 0 {
		if err := m.cache.Set(ctx, storage.BookingKey(key), created, m.conf.BookingTTL); err != nil {
			m.l.LogErrorf("Could not remember booking %s: %v", created.ID, err.Error())
		}
	}

	m.l.LogInfo("Booking %s has been created for room %s, total %d", created.ID, in.RoomTypeID, created.GrandTotal)

	return created, nil
}
