package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/boost"
	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/stay"
)

type checker interface {
	Availability(ctx context.Context, q availability.Query) availability.CheckResult
}

// Session is the state behind one booking page. Every input change reprices
// the stay. Availability answers that arrive for an outdated input are ignored.
type Session struct {
	mu      sync.Mutex
	checker checker
	guard   *Guard
	policy  CouponPolicy

	step       Step
	propertyID string
	room       *stay.Room
	dates      *stay.DateRange
	guests     stay.Guests
	offer      *boost.Offer
	taxRate    float64

	breakdown *stay.PriceBreakdown
	check     availability.CheckResult
	notice    string
}

func New(checker checker, gen idGenerator, policy CouponPolicy) *Session {
	if policy == "" {
		policy = KeepWhenIneligible
	}

	return &Session{
		checker: checker,
		guard:   NewGuard(gen),
		policy:  policy,
		step:    StepSelectRoom,
		guests:  stay.Guests{Units: 1, Adults: 2},
		check:   availability.Unchecked(),
	}
}

func (s *Session) SelectRoom(propertyID string, room stay.Room) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.propertyID = propertyID
	s.room = &room
	s.inputChanged()
}

// SetDates replaces the stay dates. Nil clears them.
func (s *Session) SetDates(dates *stay.DateRange) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if dates != nil {
		d := *dates
		dates = &d
	}

	s.dates = dates
	s.inputChanged()
}

func (s *Session) SetGuests(g stay.Guests) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.guests = g
	s.inputChanged()
}

func (s *Session) ApplyOffer(offer *boost.Offer) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if offer != nil {
		o := *offer
		offer = &o
	}

	s.offer = offer
	s.notice = ""
	s.recompute()
}

func (s *Session) RemoveOffer() {
	s.ApplyOffer(nil)
}

func (s *Session) SetTaxRate(rate float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.taxRate = rate
	s.recompute()
}

// inputChanged reprices and forgets a check that was made for other input.
func (s *Session) inputChanged() {
	prev, hadPrev := s.query()

	s.recompute()

	cur, ok := s.query()
	if !ok || !hadPrev || prev.Key() != cur.Key() {
		s.check = availability.Unchecked()
	}
}

func (s *Session) recompute() {
	if s.room == nil {
		s.breakdown = nil

		return
	}

	s.breakdown = stay.ComputePriceBreakdown(*s.room, s.dates, s.guests, s.offer, s.taxRate)

	if s.policy != DropWhenIneligible || s.offer == nil || s.breakdown == nil || s.breakdown.OfferEligible {
		return
	}

	s.notice = fmt.Sprintf("Offer %s was removed: the booking is below %d", s.offer.Code, s.offer.MinBookingAmount)
	s.offer = nil
	s.breakdown = stay.ComputePriceBreakdown(*s.room, s.dates, s.guests, nil, s.taxRate)
}

func (s *Session) query() (availability.Query, bool) {
	if s.room == nil || s.dates == nil || !s.dates.Valid() {
		return availability.Query{}, false
	}

	return availability.Query{
		PropertyID: s.propertyID,
		RoomTypeID: s.room.ID,
		CheckIn:    s.dates.CheckIn,
		CheckOut:   s.dates.CheckOut,
		Rooms:      stay.BookedUnits(*s.room, s.guests),
	}, true
}

// RefreshAvailability checks the current input and applies the answer unless
// a newer check for the same input started meanwhile or the input changed.
func (s *Session) RefreshAvailability(ctx context.Context) (availability.CheckResult, bool) {
	s.mu.Lock()

	q, ok := s.query()
	if !ok {
		res := s.check
		s.mu.Unlock()

		return res, false
	}

	key := q.Key()

	generation, err := s.guard.Begin(ctx, key)
	if err != nil {
		s.check = availability.FromError(err)
		res := s.check
		s.mu.Unlock()

		return res, true
	}

	s.mu.Unlock()

	res := s.checker.Availability(ctx, q)

	s.mu.Lock()
	defer s.mu.Unlock()

	if ctx.Err() != nil || !s.guard.IsLatest(key, generation) {
		return res, false
	}

	if cur, ok := s.query(); !ok || cur.Key() != key {
		return res, false
	}

	s.check = res

	return res, true
}

func (s *Session) Breakdown() *stay.PriceBreakdown {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.breakdown == nil {
		return nil
	}

	bd := *s.breakdown

	return &bd
}

func (s *Session) Availability() availability.CheckResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.check
}

func (s *Session) Offer() *boost.Offer {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.offer == nil {
		return nil
	}

	o := *s.offer

	return &o
}

// Notice is the last message the coupon policy left for the guest.
func (s *Session) Notice() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.notice
}

func (s *Session) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.step
}

func (s *Session) canBook() bool {
	return s.breakdown != nil && s.breakdown.GrandTotal > 0 && s.check.Bookable()
}

// CanBook is true only for a priced stay with a confirmed availability.
func (s *Session) CanBook() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.canBook()
}

func (s *Session) stepComplete() bool {
	switch s.step {
	case StepSelectRoom:
		return s.room != nil && s.room.Category.Rules().Bookable
	case StepSelectDates:
		if s.dates == nil {
			return s.room != nil && !s.room.Category.Rules().RequiresDateRange
		}

		return s.dates.Valid()
	case StepSelectGuests:
		return s.guests.Adults >= 1 && s.breakdown != nil
	case StepReview:
		return s.canBook()
	default:
		return false
	}
}

// Advance moves to the next step once the current one is complete.
func (s *Session) Advance() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := Next(s.step)
	if err != nil {
		return s.step, err
	}

	if !s.stepComplete() {
		return s.step, fmt.Errorf("%s: %w", s.step, ErrStepIncomplete)
	}

	s.step = next

	return s.step, nil
}

func (s *Session) Back() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, err := Back(s.step)
	if err != nil {
		return s.step, err
	}

	s.step = prev

	return s.step, nil
}

// QuoteInput describes the current selection for a server side re-quote.
func (s *Session) QuoteInput() booking.QuoteInput {
	s.mu.Lock()
	defer s.mu.Unlock()

	in := booking.QuoteInput{
		PropertyID: s.propertyID,
		Units:      max(s.guests.Units, 1),
		Adults:     s.guests.Adults,
		Children:   s.guests.Children,
	}

	if s.room != nil {
		in.RoomTypeID = s.room.ID
	}

	if s.dates != nil {
		in.CheckIn, in.CheckOut = s.dates.CheckIn, s.dates.CheckOut
	}

	if s.offer != nil {
		in.OfferCode = s.offer.Code
	}

	return in
}

// BookingRequest builds the marketplace booking for the current selection.
func (s *Session) BookingRequest(guest marketplace.Guest) (marketplace.BookingRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.canBook() {
		return marketplace.BookingRequest{}, ErrNotBookable
	}

	req := marketplace.BookingRequest{
		PropertyID: s.propertyID,
		RoomTypeID: s.room.ID,
		Rooms:      s.breakdown.Units,
		Adults:     s.guests.Adults,
		Children:   s.guests.Children,
		Guest:      guest,
		Pricing:    *s.breakdown,
	}

	if s.dates != nil {
		req.CheckIn, req.CheckOut = s.dates.CheckIn, s.dates.CheckOut
	}

	if s.breakdown.OfferEligible {
		req.OfferCode = s.breakdown.OfferCode
	}

	return req, nil
}
