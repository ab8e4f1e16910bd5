package stay

import (
	"math"
	"time"

	"github.com/avstrong/staybook/internal/boost"
)

// FallbackNightlyRate is shown when a room carries no usable price at all.
const FallbackNightlyRate int64 = 1000

const (
	defaultMaxAdults   = 2
	defaultMaxChildren = 0
)

func isWeekendNight(d time.Weekday) bool {
	return d == time.Friday || d == time.Saturday
}

// baseRate is the weekday rate. Negative marketplace prices count as zero.
func baseRate(p Pricing) int64 {
	if p.BasePrice != nil {
		return max(*p.BasePrice, 0)
	}

	return FallbackNightlyRate
}

func weekendRate(p Pricing) int64 {
	if p.WeekendPrice != nil {
		return max(*p.WeekendPrice, 0)
	}

	return baseRate(p)
}

// representativeRate is the nightly rate shown before any dates are picked.
func representativeRate(p Pricing) int64 {
	switch {
	case p.BasePrice != nil:
		return max(*p.BasePrice, 0)
	case p.WeekendPrice != nil:
		return max(*p.WeekendPrice, 0)
	default:
		return FallbackNightlyRate
	}
}

func optional(v *int64) int64 {
	if v == nil {
		return 0
	}

	return max(*v, 0)
}

// roundHalfUp rounds halves towards +Inf.
func roundHalfUp(v float64) int64 {
	return int64(math.Floor(v + 0.5)) //nolint:gomnd
}

// ComputeNightBreakup splits the stay into weekday and weekend nights.
// Without a valid range it returns zero nights and a representative rate.
func ComputeNightBreakup(room Room, dates *DateRange) NightBreakup {
	if !dates.Valid() {
		return NightBreakup{PerNight: representativeRate(room.Pricing)}
	}

	var res NightBreakup

	for d := dates.CheckIn; d.Before(dates.CheckOut); d = d.AddDays(1) {
		res.Nights++

		if isWeekendNight(d.Weekday()) {
			res.WeekendNights++
			res.Total += weekendRate(room.Pricing)

			continue
		}

		res.WeekdayNights++
		res.Total += baseRate(room.Pricing)
	}

	if res.Nights > 0 {
		res.PerNight = roundHalfUp(float64(res.Total) / float64(res.Nights))
	}

	return res
}

// ComputePriceBreakdown prices a stay. It returns nil when the stay cannot be
// priced yet: the category is not bookable, or the dates are missing or
// invalid and the category requires them.
func ComputePriceBreakdown(room Room, dates *DateRange, guests Guests, offer *boost.Offer, taxRatePercent float64) *PriceBreakdown {
	rules := room.Category.Rules()
	if !rules.Bookable {
		return nil
	}

	nb := ComputeNightBreakup(room, dates)

	if nb.Nights == 0 {
		if rules.RequiresDateRange || dates != nil {
			return nil
		}

		periods := max(rules.DefaultBillingPeriods, 1)
		rate := representativeRate(room.Pricing)
		nb = NightBreakup{
			Nights:   periods,
			PerNight: rate,
			Total:    rate * int64(periods),
		}
	}

	units := BookedUnits(room, guests)

	maxAdults := room.MaxAdults
	if maxAdults <= 0 {
		maxAdults = defaultMaxAdults
	}

	maxChildren := room.MaxChildren
	if maxChildren < 0 {
		maxChildren = defaultMaxChildren
	}

	extraAdults := max(0, guests.Adults-maxAdults*units)
	extraChildren := max(0, guests.Children-maxChildren*units)

	nights := int64(nb.Nights)

	bd := PriceBreakdown{
		Category:              room.Category,
		Nights:                nb.Nights,
		WeekdayNights:         nb.WeekdayNights,
		WeekendNights:         nb.WeekendNights,
		Units:                 units,
		UnitLabel:             rules.UnitLabel,
		PricePerNight:         nb.PerNight,
		ExtraAdults:           extraAdults,
		ExtraChildren:         extraChildren,
		TotalBasePrice:        nb.Total * int64(units),
		TotalExtraAdultCharge: int64(extraAdults) * optional(room.Pricing.ExtraAdultPrice) * nights,
		TotalExtraChildCharge: int64(extraChildren) * optional(room.Pricing.ExtraChildPrice) * nights,
	}

	bd.GrossAmount = bd.TotalBasePrice + bd.TotalExtraAdultCharge + bd.TotalExtraChildCharge

	if offer != nil {
		bd.OfferCode = offer.Code
		bd.OfferEligible = offer.Eligible(bd.GrossAmount)
		bd.DiscountAmount = offer.Discount(bd.GrossAmount)
	}

	if taxRatePercent > 0 && !math.IsInf(taxRatePercent, 0) {
		bd.TaxRatePercent = taxRatePercent
		// Tax is levied on the gross amount; the discount does not reduce it.
		bd.TaxAmount = roundHalfUp(float64(bd.GrossAmount) * taxRatePercent / 100) //nolint:gomnd
	}

	bd.GrandTotal = bd.GrossAmount - bd.DiscountAmount + bd.TaxAmount

	return &bd
}

// BookedUnits is the number of units a stay takes from inventory. Whole
// property listings always take one.
func BookedUnits(room Room, guests Guests) int {
	if !room.Category.Rules().PerUnitInventory {
		return 1
	}

	return max(guests.Units, 1)
}
