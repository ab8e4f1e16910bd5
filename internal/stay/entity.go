package stay

import (
	"github.com/avstrong/staybook/internal/calendar"
)

// Pricing fields are optional; nil means the marketplace did not set one.
type Pricing struct {
	BasePrice       *int64 `json:"basePrice,omitempty"`
	WeekendPrice    *int64 `json:"weekendPrice,omitempty"`
	ExtraAdultPrice *int64 `json:"extraAdultPrice,omitempty"`
	ExtraChildPrice *int64 `json:"extraChildPrice,omitempty"`
}

// Room is a bookable room or bed type of a property.
type Room struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Category Category `json:"category"`
	Pricing  Pricing  `json:"pricing"`
	// MaxAdults and MaxChildren are the occupancy included in the base
	// price per unit; zero MaxAdults means unset.
	MaxAdults      int `json:"maxAdults,omitempty"`
	MaxChildren    int `json:"maxChildren,omitempty"`
	TotalInventory int `json:"totalInventory"`
}

// DateRange is the half-open stay [CheckIn, CheckOut).
type DateRange struct {
	CheckIn  calendar.Date `json:"checkIn"`
	CheckOut calendar.Date `json:"checkOut"`
}

func (r *DateRange) Valid() bool {
	return r != nil && !r.CheckIn.IsZero() && !r.CheckOut.IsZero() && r.CheckOut.After(r.CheckIn)
}

func (r *DateRange) Nights() int {
	if !r.Valid() {
		return 0
	}

	return calendar.DaysBetween(r.CheckIn, r.CheckOut)
}

type Guests struct {
	Units    int `json:"units"`
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

type NightBreakup struct {
	Nights        int   `json:"nights"`
	WeekdayNights int   `json:"weekdayNights"`
	WeekendNights int   `json:"weekendNights"`
	PerNight      int64 `json:"perNight"`
	// Total is the exact sum of nightly rates for one unit.
	Total int64 `json:"total"`
}

// PriceBreakdown is computed from scratch on every input change and never
// mutated afterwards.
type PriceBreakdown struct {
	Category              Category `json:"category"`
	Nights                int      `json:"nights"`
	WeekdayNights         int      `json:"weekdayNights"`
	WeekendNights         int      `json:"weekendNights"`
	Units                 int      `json:"units"`
	UnitLabel             string   `json:"unitLabel"`
	PricePerNight         int64    `json:"pricePerNight"`
	ExtraAdults           int      `json:"extraAdultsCount"`
	ExtraChildren         int      `json:"extraChildrenCount"`
	TotalBasePrice        int64    `json:"totalBasePrice"`
	TotalExtraAdultCharge int64    `json:"totalExtraAdultCharge"`
	TotalExtraChildCharge int64    `json:"totalExtraChildCharge"`
	GrossAmount           int64    `json:"grossAmount"`
	OfferCode             string   `json:"offerCode,omitempty"`
	OfferEligible         bool     `json:"offerEligible"`
	DiscountAmount        int64    `json:"discountAmount"`
	TaxRatePercent        float64  `json:"taxRatePercent"`
	TaxAmount             int64    `json:"taxAmount"`
	GrandTotal            int64    `json:"grandTotal"`
}
