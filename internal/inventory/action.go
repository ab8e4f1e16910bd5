// Package inventory models the partner inventory action sheet: the one
// pending walk-in, external booking or block a partner is about to record.
package inventory

import "github.com/avstrong/staybook/internal/calendar"

type Kind string

const (
	KindWalkIn          Kind = "walk_in"
	KindExternalBooking Kind = "external_booking"
	KindBlock           Kind = "block"
)

func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindWalkIn, KindExternalBooking, KindBlock:
		return Kind(s), true
	default:
		return "", false
	}
}

// Action is exactly one of WalkIn, ExternalBooking or Block.
type Action interface {
	Kind() Kind
	apply(p *Payload)
}

type WalkIn struct{}

type ExternalBooking struct {
	Platform    string
	ReferenceNo string
}

type Block struct {
	Notes string
}

func (WalkIn) Kind() Kind          { return KindWalkIn }
func (ExternalBooking) Kind() Kind { return KindExternalBooking }
func (Block) Kind() Kind           { return KindBlock }

func (WalkIn) apply(*Payload) {}

func (a ExternalBooking) apply(p *Payload) {
	p.Platform = a.Platform
	p.ReferenceNo = a.ReferenceNo
}

func (a Block) apply(p *Payload) {
	p.Notes = a.Notes
}

func newAction(k Kind) Action {
	switch k {
	case KindWalkIn:
		return WalkIn{}
	case KindExternalBooking:
		return ExternalBooking{}
	case KindBlock:
		return Block{}
	default:
		return nil
	}
}

// Payload is the body of every inventory write. Kind specific fields are
// empty for the other kinds.
type Payload struct {
	PropertyID  string        `json:"propertyId" validate:"required"`
	RoomTypeID  string        `json:"roomTypeId" validate:"required"`
	StartDate   calendar.Date `json:"startDate"`
	EndDate     calendar.Date `json:"endDate"`
	Units       int           `json:"units" validate:"gt=0"`
	Platform    string        `json:"platform,omitempty" validate:"max=64"`
	ReferenceNo string        `json:"referenceNo,omitempty" validate:"max=64"`
	Notes       string        `json:"notes,omitempty" validate:"max=500"`
}

// Endpoint is the marketplace path that records an action of kind k.
func Endpoint(k Kind) string {
	switch k {
	case KindWalkIn:
		return "/inventory/walk-ins"
	case KindExternalBooking:
		return "/inventory/external-bookings"
	case KindBlock:
		return "/inventory/blocks"
	default:
		return ""
	}
}
