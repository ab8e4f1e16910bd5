package inventory

import (
	"strings"

	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/validation"
)

type Sheet struct {
	PropertyID string
	RoomTypeID string
	StartDate  calendar.Date
	EndDate    calendar.Date
	Units      int
	Action     Action
}

// NewSheet opens a sheet for one room type, defaulting to a walk-in of one unit.
func NewSheet(propertyID, roomTypeID string) Sheet {
	return Sheet{
		PropertyID: propertyID,
		RoomTypeID: roomTypeID,
		Units:      1,
		Action:     WalkIn{},
	}
}

func (s Sheet) Kind() Kind {
	if s.Action == nil {
		return ""
	}

	return s.Action.Kind()
}

// Event is one user interaction with the sheet.
type Event interface {
	reduce(s Sheet) Sheet
}

type (
	SelectKind   struct{ Kind Kind }
	SetRange     struct{ Start, End calendar.Date }
	SetUnits     struct{ Units int }
	SetPlatform  struct{ Platform string }
	SetReference struct{ ReferenceNo string }
	SetNotes     struct{ Notes string }
	Reset        struct{}
)

// Reduce returns the sheet after e. The input sheet is left untouched.
func Reduce(s Sheet, e Event) Sheet {
	if e == nil {
		return s
	}

	return e.reduce(s)
}

// Switching kind starts the new kind from empty fields.
func (e SelectKind) reduce(s Sheet) Sheet {
	if s.Kind() == e.Kind {
		return s
	}

	if a := newAction(e.Kind); a != nil {
		s.Action = a
	}

	return s
}

func (e SetRange) reduce(s Sheet) Sheet {
	s.StartDate = e.Start
	s.EndDate = e.End

	return s
}

func (e SetUnits) reduce(s Sheet) Sheet {
	s.Units = e.Units

	return s
}

func (e SetPlatform) reduce(s Sheet) Sheet {
	if a, ok := s.Action.(ExternalBooking); ok {
		a.Platform = e.Platform
		s.Action = a
	}

	return s
}

func (e SetReference) reduce(s Sheet) Sheet {
	if a, ok := s.Action.(ExternalBooking); ok {
		a.ReferenceNo = e.ReferenceNo
		s.Action = a
	}

	return s
}

func (e SetNotes) reduce(s Sheet) Sheet {
	if a, ok := s.Action.(Block); ok {
		a.Notes = e.Notes
		s.Action = a
	}

	return s
}

func (Reset) reduce(s Sheet) Sheet {
	return NewSheet(s.PropertyID, s.RoomTypeID)
}

// Payload builds the write body for the current action.
func (s Sheet) Payload() Payload {
	p := Payload{
		PropertyID: s.PropertyID,
		RoomTypeID: s.RoomTypeID,
		StartDate:  s.StartDate,
		EndDate:    s.EndDate,
		Units:      s.Units,
	}

	if s.Action != nil {
		s.Action.apply(&p)
	}

	return p
}

func (s Sheet) Validate() error {
	inputErr := validation.NewInputError()

	if s.Action == nil {
		inputErr.AddError("kind", "select walk-in, external booking or block")
	}

	p := s.Payload()
	inputErr.Struct(p)

	switch {
	case p.StartDate.IsZero():
		inputErr.AddError("startDate", "is required")
	case p.EndDate.IsZero():
		inputErr.AddError("endDate", "is required")
	case !p.EndDate.After(p.StartDate):
		inputErr.AddError("endDate", "must be after startDate")
	}

	if s.Kind() == KindExternalBooking && strings.TrimSpace(p.Platform) == "" {
		inputErr.AddError("platform", "is required for external bookings")
	}

	return inputErr.OrNil()
}

// Request is the flat form of a sheet as submitted over HTTP.
type Request struct {
	PropertyID  string        `json:"propertyId"`
	RoomTypeID  string        `json:"roomTypeId"`
	Kind        Kind          `json:"kind"`
	StartDate   calendar.Date `json:"startDate"`
	EndDate     calendar.Date `json:"endDate"`
	Units       int           `json:"units"`
	Platform    string        `json:"platform,omitempty"`
	ReferenceNo string        `json:"referenceNo,omitempty"`
	Notes       string        `json:"notes,omitempty"`
}

// FromRequest replays r through the reducer, so fields that do not belong to
// r.Kind are dropped. An unknown kind leaves the sheet without an action.
func FromRequest(r Request) Sheet {
	s := NewSheet(r.PropertyID, r.RoomTypeID)

	if _, ok := ParseKind(string(r.Kind)); !ok {
		s.Action = nil
	}

	events := []Event{
		SelectKind{Kind: r.Kind},
		SetRange{Start: r.StartDate, End: r.EndDate},
		SetUnits{Units: r.Units},
		SetPlatform{Platform: r.Platform},
		SetReference{ReferenceNo: r.ReferenceNo},
		SetNotes{Notes: r.Notes},
	}

	for _, e := range events {
		s = Reduce(s, e)
	}

	return s
}
