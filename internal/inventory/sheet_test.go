package inventory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/validation"
)

func day(d int) calendar.Date { return calendar.New(2024, time.March, d) }

func filledSheet() Sheet {
	s := NewSheet("p1", "r1")
	s = Reduce(s, SetRange{Start: day(4), End: day(6)})
	s = Reduce(s, SetUnits{Units: 2})

	return s
}

func TestReduce_SwitchingKindResetsKindFields(t *testing.T) {
	s := filledSheet()
	s = Reduce(s, SelectKind{Kind: KindExternalBooking})
	s = Reduce(s, SetPlatform{Platform: "Booking.com"})
	s = Reduce(s, SetReference{ReferenceNo: "BK-778"})

	s = Reduce(s, SelectKind{Kind: KindBlock})
	s = Reduce(s, SetNotes{Notes: "AC repair"})
	s = Reduce(s, SelectKind{Kind: KindExternalBooking})

	p := s.Payload()
	if p.Platform != "" || p.ReferenceNo != "" || p.Notes != "" {
		t.Fatalf("stale kind fields leaked into payload: %+v", p)
	}
	if p.Units != 2 || !p.StartDate.Equal(day(4)) || !p.EndDate.Equal(day(6)) {
		t.Fatalf("common fields must survive a kind switch: %+v", p)
	}
}

func TestReduce_SelectingSameKindKeepsFields(t *testing.T) {
	s := Reduce(filledSheet(), SelectKind{Kind: KindBlock})
	s = Reduce(s, SetNotes{Notes: "deep clean"})
	s = Reduce(s, SelectKind{Kind: KindBlock})

	if s.Payload().Notes != "deep clean" {
		t.Fatalf("expected notes to be kept, got %+v", s.Payload())
	}
}

func TestReduce_IgnoresFieldsOfOtherKinds(t *testing.T) {
	s := filledSheet()
	s = Reduce(s, SetPlatform{Platform: "Airbnb"})
	s = Reduce(s, SetNotes{Notes: "ignored"})

	if s.Kind() != KindWalkIn {
		t.Fatalf("expected walk-in, got %v", s.Kind())
	}

	p := s.Payload()
	if p.Platform != "" || p.Notes != "" {
		t.Fatalf("walk-in payload carries foreign fields: %+v", p)
	}
}

func TestReduce_DoesNotMutateInput(t *testing.T) {
	before := Reduce(filledSheet(), SelectKind{Kind: KindBlock})
	after := Reduce(before, SetNotes{Notes: "x"})

	if before.Payload().Notes != "" || after.Payload().Notes != "x" {
		t.Fatalf("reducer mutated its input: %+v / %+v", before.Payload(), after.Payload())
	}
}

func TestReduce_ResetAndUnknownKind(t *testing.T) {
	s := Reduce(filledSheet(), SelectKind{Kind: "teleport"})
	if s.Kind() != KindWalkIn {
		t.Fatalf("unknown kind must be ignored, got %v", s.Kind())
	}

	s = Reduce(Reduce(s, SelectKind{Kind: KindBlock}), Reset{})
	if s.Kind() != KindWalkIn || s.Units != 1 || !s.StartDate.IsZero() || s.PropertyID != "p1" {
		t.Fatalf("unexpected sheet after reset %+v", s)
	}

	if got := Reduce(s, nil); got != s {
		t.Fatal("nil event must be a no-op")
	}
}

func TestSheet_Validate(t *testing.T) {
	if err := Reduce(filledSheet(), SelectKind{Kind: KindBlock}).Validate(); err != nil {
		t.Fatalf("expected valid block, got %v", err)
	}

	ext := Reduce(filledSheet(), SelectKind{Kind: KindExternalBooking})
	inputErr := validation.IsInputError(ext.Validate())
	if inputErr == nil || len(inputErr.Fields()["platform"]) == 0 {
		t.Fatalf("external booking without platform must fail, got %v", inputErr)
	}

	bad := Sheet{Units: 0, StartDate: day(6), EndDate: day(6)}
	inputErr = validation.IsInputError(bad.Validate())
	if inputErr == nil {
		t.Fatal("expected input error")
	}
	for _, field := range []string{"kind", "propertyId", "roomTypeId", "units", "endDate"} {
		if len(inputErr.Fields()[field]) == 0 {
			t.Fatalf("expected error on %s, got %+v", field, inputErr.Fields())
		}
	}
}

func TestFromRequest_DropsForeignFields(t *testing.T) {
	s := FromRequest(Request{
		PropertyID:  "p1",
		RoomTypeID:  "r1",
		Kind:        KindBlock,
		StartDate:   day(1),
		EndDate:     day(2),
		Units:       1,
		Platform:    "Expedia",
		ReferenceNo: "X-1",
		Notes:       "painting",
	})

	p := s.Payload()
	if s.Kind() != KindBlock || p.Notes != "painting" || p.Platform != "" || p.ReferenceNo != "" {
		t.Fatalf("unexpected payload %+v", p)
	}

	if FromRequest(Request{Kind: "bogus"}).Action != nil {
		t.Fatal("unknown kind must leave the sheet without an action")
	}
}

func TestEndpoint_DistinctPerKind(t *testing.T) {
	seen := map[string]bool{}
	for _, k := range []Kind{KindWalkIn, KindExternalBooking, KindBlock} {
		ep := Endpoint(k)
		if ep == "" || seen[ep] {
			t.Fatalf("kind %s has no distinct endpoint: %q", k, ep)
		}
		seen[ep] = true
	}
}

type fakeRecorder struct {
	endpoint string
	payload  Payload
	err      error
}

func (f *fakeRecorder) RecordInventory(_ context.Context, endpoint string, payload Payload) (*Record, error) {
	f.endpoint = endpoint
	f.payload = payload

	if f.err != nil {
		return nil, f.err
	}

	return &Record{ID: "led-1"}, nil
}

type fakeCache struct {
	deleted []string
}

func (f *fakeCache) Delete(_ context.Context, key string) error {
	f.deleted = append(f.deleted, key)

	return nil
}

func TestManager_SubmitRecordsAndInvalidates(t *testing.T) {
	rec := &fakeRecorder{}
	c := &fakeCache{}
	m := New(logger.Discard(), rec, c)

	s := Reduce(filledSheet(), SelectKind{Kind: KindExternalBooking})
	s = Reduce(s, SetPlatform{Platform: "Agoda"})

	got, err := m.Submit(context.Background(), s)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got.ID != "led-1" || got.Kind != KindExternalBooking {
		t.Fatalf("unexpected record %+v", got)
	}
	if rec.endpoint != "/inventory/external-bookings" || rec.payload.Platform != "Agoda" {
		t.Fatalf("unexpected write %s %+v", rec.endpoint, rec.payload)
	}
	if len(c.deleted) != 1 || c.deleted[0] != "staybook:ledger:p1:r1:2024-03" {
		t.Fatalf("unexpected invalidation %v", c.deleted)
	}
}

func TestManager_SubmitRejectsInvalidSheet(t *testing.T) {
	rec := &fakeRecorder{}
	m := New(logger.Discard(), rec, nil)

	_, err := m.Submit(context.Background(), NewSheet("", "r1"))
	if validation.IsInputError(err) == nil {
		t.Fatalf("expected input error, got %v", err)
	}
	if rec.endpoint != "" {
		t.Fatal("invalid sheets must not reach the marketplace")
	}
}

func TestManager_SubmitWrapsUpstreamError(t *testing.T) {
	boom := errors.New("502 bad gateway")
	m := New(logger.Discard(), &fakeRecorder{err: boom}, nil)

	_, err := m.Submit(context.Background(), filledSheet())
	if !errors.Is(err, boom) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}
