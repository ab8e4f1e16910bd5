package stay

import "strings"

// Category groups marketplace property types by how they are priced and booked.
type Category int

const (
	DateBased Category = iota
	MonthBased
	WholeUnit
	SaleListing
)

// Rules is the pricing behaviour shared by every property of a category.
type Rules struct {
	// RequiresDateRange is false when a missing range is billed as DefaultBillingPeriods.
	RequiresDateRange     bool
	DefaultBillingPeriods int
	// PerUnitInventory is false when the whole property is one bookable unit.
	PerUnitInventory bool
	Bookable         bool
	UnitLabel        string
}

var categoryRules = map[Category]Rules{
	DateBased: {
		RequiresDateRange: true,
		PerUnitInventory:  true,
		Bookable:          true,
		UnitLabel:         "room",
	},
	MonthBased: {
		RequiresDateRange:     false,
		DefaultBillingPeriods: 1,
		PerUnitInventory:      true,
		Bookable:              true,
		UnitLabel:             "bed",
	},
	WholeUnit: {
		RequiresDateRange: true,
		PerUnitInventory:  false,
		Bookable:          true,
		UnitLabel:         "property",
	},
	SaleListing: {
		UnitLabel: "listing",
	},
}

var propertyTypes = map[string]Category{
	"hotel":      DateBased,
	"resort":     DateBased,
	"lodge":      DateBased,
	"guesthouse": DateBased,
	"apartment":  DateBased,
	"pg":         MonthBased,
	"hostel":     MonthBased,
	"coliving":   MonthBased,
	"villa":      WholeUnit,
	"homestay":   WholeUnit,
	"farmhouse":  WholeUnit,
	"cottage":    WholeUnit,
	"plot":       SaleListing,
	"land":       SaleListing,
	"sale":       SaleListing,
	"commercial": SaleListing,
}

// ParseCategory maps a marketplace propertyType onto a Category.
// Unknown types are treated as date based.
func ParseCategory(propertyType string) Category {
	key := strings.ToLower(strings.TrimSpace(propertyType))
	key = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(key)

	if c, ok := propertyTypes[key]; ok {
		return c
	}

	return DateBased
}

func (c Category) Rules() Rules {
	if r, ok := categoryRules[c]; ok {
		return r
	}

	return categoryRules[DateBased]
}

func (c Category) String() string {
	switch c {
	case DateBased:
		return "date_based"
	case MonthBased:
		return "month_based"
	case WholeUnit:
		return "whole_unit"
	case SaleListing:
		return "sale_listing"
	default:
		return "unknown"
	}
}

func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Category) UnmarshalText(text []byte) error {
	for _, candidate := range []Category{DateBased, MonthBased, WholeUnit, SaleListing} {
		if candidate.String() == string(text) {
			*c = candidate

			return nil
		}
	}

	*c = ParseCategory(string(text))

	return nil
}
