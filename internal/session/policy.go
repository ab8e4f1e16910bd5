package session

import (
	"fmt"
	"strings"
)

// CouponPolicy decides what happens to an applied offer the stay no longer
// qualifies for.
type CouponPolicy string

const (
	// KeepWhenIneligible leaves the offer applied with a zero discount, so it
	// comes back once the gross amount qualifies again.
	KeepWhenIneligible CouponPolicy = "keep"
	// DropWhenIneligible removes the offer and leaves a notice.
	DropWhenIneligible CouponPolicy = "drop"
)

func ParseCouponPolicy(s string) (CouponPolicy, error) {
	switch CouponPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case KeepWhenIneligible, "":
		return KeepWhenIneligible, nil
	case DropWhenIneligible:
		return DropWhenIneligible, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrUnknownPolicy)
	}
}
