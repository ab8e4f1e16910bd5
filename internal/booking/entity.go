package booking

import (
	"time"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/boost"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/stay"
)

type QuoteInput struct {
	PropertyID string        `json:"propertyId" validate:"required"`
	RoomTypeID string        `json:"roomTypeId" validate:"required"`
	CheckIn    calendar.Date `json:"checkIn"`
	CheckOut   calendar.Date `json:"checkOut"`
	Units      int           `json:"units" validate:"gte=1,lte=50"`
	Adults     int           `json:"adults" validate:"gte=1,lte=100"`
	Children   int           `json:"children" validate:"gte=0,lte=100"`
	OfferCode  string        `json:"offerCode,omitempty" validate:"max=64"`
}

// Dates returns nil when no date was supplied at all.
func (in *QuoteInput) Dates() *stay.DateRange {
	if in.CheckIn.IsZero() && in.CheckOut.IsZero() {
		return nil
	}

	return &stay.DateRange{CheckIn: in.CheckIn, CheckOut: in.CheckOut}
}

func (in *QuoteInput) Guests() stay.Guests {
	return stay.Guests{Units: in.Units, Adults: in.Adults, Children: in.Children}
}

// query asks for as many units as the stay is billed for on room.
func (in *QuoteInput) query(room stay.Room) availability.Query {
	return availability.Query{
		PropertyID: in.PropertyID,
		RoomTypeID: in.RoomTypeID,
		CheckIn:    in.CheckIn,
		CheckOut:   in.CheckOut,
		Rooms:      stay.BookedUnits(room, in.Guests()),
	}
}

type Quote struct {
	Room         stay.Room                `json:"room"`
	Breakdown    *stay.PriceBreakdown     `json:"breakdown"`
	Availability availability.CheckResult `json:"availability"`
	Offer        *boost.Offer             `json:"offer,omitempty"`
	TaxRate      float64                  `json:"taxRate"`
	Warnings     []string                 `json:"warnings,omitempty"`
	Bookable     bool                     `json:"bookable"`
	QuotedAt     time.Time                `json:"quotedAt"`
}

type BookInput struct {
	QuoteInput
	Guest marketplace.Guest `json:"guest"`
}

type CalendarInput struct {
	PropertyID string     `json:"propertyId" validate:"required"`
	RoomTypeID string     `json:"roomTypeId" validate:"required"`
	Year       int        `json:"year" validate:"gte=2000,lte=2100"`
	Month      time.Month `json:"month" validate:"gte=1,lte=12"`
}

type Calendar struct {
	Room         stay.Room                    `json:"room"`
	Availability availability.DayAvailability `json:"availability"`
	Entries      []availability.LedgerEntry   `json:"entries"`
}
