package availability

import (
	"fmt"

	"github.com/avstrong/staybook/internal/calendar"
)

// State of an availability check. Only StateAvailable allows booking.
type State string

const (
	StateUnchecked   State = "unchecked"
	StateAvailable   State = "available"
	StateUnavailable State = "unavailable"
	// StateFailed means availability could not be verified.
	StateFailed State = "failed"
)

const MsgVerifyFailed = "Unable to verify availability"

// Query identifies one availability check.
type Query struct {
	PropertyID string        `json:"propertyId"`
	RoomTypeID string        `json:"roomTypeId"`
	CheckIn    calendar.Date `json:"checkIn"`
	CheckOut   calendar.Date `json:"checkOut"`
	Rooms      int           `json:"rooms"`
}

// Key names the logical resource a check is about. Checks with the same key
// supersede each other.
func (q Query) Key() string {
	return fmt.Sprintf("%s/%s/%s/%s/%d", q.PropertyID, q.RoomTypeID, q.CheckIn, q.CheckOut, q.Rooms)
}

// RoomCheck is one per-room answer of the marketplace.
type RoomCheck struct {
	RoomTypeID string `json:"roomTypeId,omitempty"`
	Available  bool   `json:"available"`
	UnitsLeft  *int   `json:"unitsLeft,omitempty"`
	Message    string `json:"message,omitempty"`
}

type CheckResult struct {
	State     State  `json:"state"`
	UnitsLeft *int   `json:"unitsLeft,omitempty"`
	Message   string `json:"message,omitempty"`
}

func (r CheckResult) Bookable() bool {
	return r.State == StateAvailable
}

func Unchecked() CheckResult {
	return CheckResult{State: StateUnchecked}
}

// FromError turns a failed check into a result that blocks booking.
func FromError(err error) CheckResult {
	if err == nil {
		return Unchecked()
	}

	return CheckResult{State: StateFailed, Message: MsgVerifyFailed}
}

// Evaluate applies the requested unit count to a single room answer.
func Evaluate(c RoomCheck, requested int) CheckResult {
	res := CheckResult{UnitsLeft: c.UnitsLeft, Message: c.Message}

	switch {
	case !c.Available:
		res.State = StateUnavailable
		if res.Message == "" {
			res.Message = "Not available for the selected dates"
		}
	case c.UnitsLeft != nil && *c.UnitsLeft < max(requested, 1):
		res.State = StateUnavailable
		res.Message = fmt.Sprintf("Only %d left for the selected dates", max(*c.UnitsLeft, 0))
	default:
		res.State = StateAvailable
	}

	return res
}

// ReduceRoomResults picks the answer for roomTypeID out of a per-room list.
// A single untagged answer applies to the requested room. A missing answer
// fails closed.
func ReduceRoomResults(results []RoomCheck, roomTypeID string, requested int) CheckResult {
	if len(results) == 1 && results[0].RoomTypeID == "" {
		return Evaluate(results[0], requested)
	}

	for _, r := range results {
		if r.RoomTypeID == roomTypeID {
			return Evaluate(r, requested)
		}
	}

	return CheckResult{State: StateFailed, Message: MsgVerifyFailed}
}
