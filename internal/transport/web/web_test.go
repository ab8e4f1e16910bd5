package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/inventory"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/stay"
	"github.com/avstrong/staybook/internal/validation"
)

func validationError(field, msg string) error {
	inputErr := validation.NewInputError()
	inputErr.AddError(field, msg)

	return inputErr
}

type fakeBooking struct {
	quoteErr    error
	bookErr     error
	calendarIn  *booking.CalendarInput
	idempotency string
}

func (f *fakeBooking) Quote(_ context.Context, in *booking.QuoteInput) (*booking.Quote, error) {
	if f.quoteErr != nil {
		return nil, f.quoteErr
	}

	return &booking.Quote{
		Breakdown:    &stay.PriceBreakdown{GrandTotal: 8260, Units: in.Units},
		Availability: availability.CheckResult{State: availability.StateAvailable},
		Bookable:     true,
	}, nil
}

func (f *fakeBooking) Calendar(_ context.Context, in *booking.CalendarInput) (*booking.Calendar, error) {
	f.calendarIn = in

	return &booking.Calendar{Availability: availability.ProjectMonth(3, nil, in.Year, in.Month)}, nil
}

func (f *fakeBooking) CreateBooking(ctx context.Context, in *booking.BookInput) (*marketplace.Booking, error) {
	f.idempotency, _ = booking.IdempotencyKeyFromContext(ctx)
	if f.bookErr != nil {
		return nil, f.bookErr
	}

	return &marketplace.Booking{ID: "bk-1", Status: "pending_payment", GrandTotal: 8260}, nil
}

type fakeInventory struct {
	sheet inventory.Sheet
}

func (f *fakeInventory) Submit(_ context.Context, s inventory.Sheet) (*inventory.Record, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	f.sheet = s

	return &inventory.Record{ID: "led-1", Kind: s.Kind()}, nil
}

func newTestServer(t *testing.T, b *fakeBooking, inv *fakeInventory) *httptest.Server {
	t.Helper()

	srv, err := New(context.Background(), Conf{L: logger.Discard(), ReadHeaderTimeout: time.Second}, b, inv)
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	return ts
}

func post(t *testing.T, url, body string, header http.Header) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}

	for k, v := range header {
		req.Header[k] = v
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	t.Cleanup(func() { resp.Body.Close() })

	return resp
}

func TestQuoteHandler(t *testing.T) {
	ts := newTestServer(t, &fakeBooking{}, &fakeInventory{})

	resp := post(t, ts.URL+"/api/quotes/v1", `{"propertyId":"p1","roomTypeId":"dlx","checkIn":"2030-03-07","checkOut":"2030-03-10","units":2,"adults":2}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if resp.Header.Get(requestIDHeader) == "" {
		t.Fatalf("expected a request id header")
	}

	var out booking.Quote
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Breakdown.GrandTotal != 8260 || out.Breakdown.Units != 2 || !out.Bookable {
		t.Fatalf("unexpected quote %+v", out)
	}
}

func TestQuoteHandler_MapsErrors(t *testing.T) {
	inputErr := validationError("propertyId", "is required")

	cases := []struct {
		name string
		err  error
		want int
	}{
		{name: "input", err: inputErr, want: http.StatusBadRequest},
		{name: "room not found", err: booking.ErrRoomNotFound, want: http.StatusNotFound},
		{name: "marketplace down", err: &marketplace.APIError{StatusCode: 503}, want: http.StatusBadGateway},
		{name: "unexpected", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ts := newTestServer(t, &fakeBooking{quoteErr: tc.err}, &fakeInventory{})

			resp := post(t, ts.URL+"/api/quotes/v1", `{}`, nil)
			if resp.StatusCode != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.StatusCode)
			}
		})
	}
}

func TestQuoteHandler_RejectsMalformedBody(t *testing.T) {
	ts := newTestServer(t, &fakeBooking{}, &fakeInventory{})

	resp := post(t, ts.URL+"/api/quotes/v1", `{"checkIn":"tomorrow"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateBookingHandler(t *testing.T) {
	b := &fakeBooking{}
	ts := newTestServer(t, b, &fakeInventory{})

	body := `{"propertyId":"p1","roomTypeId":"dlx","checkIn":"2030-03-07","checkOut":"2030-03-10","units":1,"adults":2,"guest":{"name":"Asha","email":"asha@example.com"}}`

	resp := post(t, ts.URL+"/api/bookings/v1", body, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 without idempotency key, got %d", resp.StatusCode)
	}

	resp = post(t, ts.URL+"/api/bookings/v1", body, http.Header{"Idempotency-Key": []string{"key-1"}})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	if b.idempotency != "key-1" {
		t.Fatalf("expected idempotency key in context, got %q", b.idempotency)
	}
}

func TestCreateBookingHandler_Unavailable(t *testing.T) {
	availabilityErr := booking.NewAvailabilityError()
	availabilityErr.AddUnavailableRoom("p1", "dlx", "Only 1 left for the selected dates")

	ts := newTestServer(t, &fakeBooking{bookErr: availabilityErr}, &fakeInventory{})

	resp := post(t, ts.URL+"/api/bookings/v1", `{}`, http.Header{"Idempotency-Key": []string{"key-2"}})
	if resp.StatusCode != http.StatusPreconditionFailed {
		t.Fatalf("expected 412, got %d", resp.StatusCode)
	}

	var out errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Rooms) != 1 {
		t.Fatalf("expected one unavailable room, got %+v", out)
	}
}

func TestCalendarHandler(t *testing.T) {
	b := &fakeBooking{}
	ts := newTestServer(t, b, &fakeInventory{})

	resp, err := http.Get(ts.URL + "/api/calendar/v1?property_id=p1&room_type_id=dlx&year=2024&month=2")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if b.calendarIn.Year != 2024 || b.calendarIn.Month != time.February || b.calendarIn.RoomTypeID != "dlx" {
		t.Fatalf("unexpected calendar input %+v", b.calendarIn)
	}

	var out booking.Calendar
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Availability.Available) != 29 {
		t.Fatalf("expected 29 days in February 2024, got %d", len(out.Availability.Available))
	}
}

func TestCalendarHandler_RejectsBadMonth(t *testing.T) {
	ts := newTestServer(t, &fakeBooking{}, &fakeInventory{})

	resp, err := http.Get(ts.URL + "/api/calendar/v1?property_id=p1&room_type_id=dlx&month=march")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestInventoryHandler(t *testing.T) {
	inv := &fakeInventory{}
	ts := newTestServer(t, &fakeBooking{}, inv)

	body := `{"propertyId":"p1","roomTypeId":"dlx","kind":"block","startDate":"2030-03-07","endDate":"2030-03-09","units":2,"platform":"Agoda","notes":"painting"}`

	resp := post(t, ts.URL+"/api/inventory/v1", body, nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	p := inv.sheet.Payload()
	if p.Notes != "painting" || p.Platform != "" || p.Units != 2 {
		t.Fatalf("expected block payload without platform, got %+v", p)
	}

	resp = post(t, ts.URL+"/api/inventory/v1", `{"propertyId":"p1","roomTypeId":"dlx","kind":"external_booking","units":1}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete external booking, got %d", resp.StatusCode)
	}
}

func TestLiveness(t *testing.T) {
	ts := newTestServer(t, &fakeBooking{}, &fakeInventory{})

	resp, err := http.Get(ts.URL + "/liveness")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
}

func TestRecoverMiddleware(t *testing.T) {
	srv, err := New(context.Background(), Conf{L: logger.Discard()}, &fakeBooking{}, &fakeInventory{})
	if err != nil {
		t.Fatalf("new server: %v", err)
	}

	h := srv.applyMiddlewares(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}), srv.loggerMiddleware(), srv.recoverMiddleware())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
