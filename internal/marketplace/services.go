package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/boost"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/inventory"
	"github.com/avstrong/staybook/internal/stay"
)

type LedgerRequest struct {
	PropertyID string
	RoomTypeID string
	StartDate  calendar.Date
	Limit      int
}

type FinancialSettings struct {
	// TaxRate is a percentage. Zero means no tax.
	TaxRate float64 `json:"taxRate"`
}

type Guest struct {
	Name  string `json:"name" validate:"required,max=120"`
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty" validate:"max=32"`
}

type BookingRequest struct {
	PropertyID string              `json:"propertyId"`
	RoomTypeID string              `json:"roomTypeId"`
	CheckIn    calendar.Date       `json:"checkIn"`
	CheckOut   calendar.Date       `json:"checkOut"`
	Rooms      int                 `json:"rooms"`
	Adults     int                 `json:"adults"`
	Children   int                 `json:"children"`
	OfferCode  string              `json:"offerCode,omitempty"`
	Guest      Guest               `json:"guest"`
	Pricing    stay.PriceBreakdown `json:"pricing"`
}

type Booking struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	GrandTotal int64  `json:"grandTotal"`
}

type roomPricing struct {
	BasePrice       *float64 `json:"basePrice"`
	WeekendPrice    *float64 `json:"weekendPrice"`
	ExtraAdultPrice *float64 `json:"extraAdultPrice"`
	ExtraChildPrice *float64 `json:"extraChildPrice"`
}

type roomResponse struct {
	ID             string      `json:"id"`
	Name           string      `json:"name"`
	PropertyType   string      `json:"propertyType"`
	Pricing        roomPricing `json:"pricing"`
	MaxAdults      int         `json:"maxAdults"`
	MaxChildren    int         `json:"maxChildren"`
	TotalInventory int         `json:"totalInventory"`
}

func wholeUnits(v *float64) *int64 {
	if v == nil {
		return nil
	}

	n := int64(*v)

	return &n
}

func (r roomResponse) toRoom() stay.Room {
	return stay.Room{
		ID:       r.ID,
		Name:     r.Name,
		Category: stay.ParseCategory(r.PropertyType),
		Pricing: stay.Pricing{
			BasePrice:       wholeUnits(r.Pricing.BasePrice),
			WeekendPrice:    wholeUnits(r.Pricing.WeekendPrice),
			ExtraAdultPrice: wholeUnits(r.Pricing.ExtraAdultPrice),
			ExtraChildPrice: wholeUnits(r.Pricing.ExtraChildPrice),
		},
		MaxAdults:      r.MaxAdults,
		MaxChildren:    r.MaxChildren,
		TotalInventory: r.TotalInventory,
	}
}

// GetRoom fetches one room type together with its property type.
func (c *Client) GetRoom(ctx context.Context, propertyID, roomTypeID string) (stay.Room, error) {
	if propertyID == "" || roomTypeID == "" {
		return stay.Room{}, errors.New("property id and room type id are required")
	}

	endpoint := fmt.Sprintf("/properties/%s/rooms/%s", url.PathEscape(propertyID), url.PathEscape(roomTypeID))

	var res roomResponse
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: endpoint, retry: true}, &res); err != nil {
		return stay.Room{}, err
	}

	return res.toRoom(), nil
}

// CheckAvailability returns the marketplace's per-room answers. A single
// object answer is returned as a one-element slice.
func (c *Client) CheckAvailability(ctx context.Context, q availability.Query) ([]availability.RoomCheck, error) {
	var raw json.RawMessage

	err := c.do(ctx, call{method: http.MethodPost, endpoint: "/availability/check", body: q, retry: true}, &raw)
	if err != nil {
		return nil, err
	}

	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return nil, nil
	}

	if raw[0] == '[' {
		var list []availability.RoomCheck
		if err := json.Unmarshal(raw, &list); err != nil {
			return nil, fmt.Errorf("decode availability list: %w", err)
		}

		return list, nil
	}

	var single availability.RoomCheck
	if err := json.Unmarshal(raw, &single); err != nil {
		return nil, fmt.Errorf("decode availability: %w", err)
	}

	return []availability.RoomCheck{single}, nil
}

// GetLedger lists the blocking entries of a room type from StartDate on.
func (c *Client) GetLedger(ctx context.Context, r LedgerRequest) ([]availability.LedgerEntry, error) {
	params := url.Values{}
	params.Set("propertyId", r.PropertyID)
	params.Set("roomTypeId", r.RoomTypeID)

	if !r.StartDate.IsZero() {
		params.Set("startDate", r.StartDate.String())
	}

	if r.Limit > 0 {
		params.Set("limit", strconv.Itoa(r.Limit))
	}

	var res struct {
		Entries []availability.LedgerEntry `json:"entries"`
	}

	endpoint := "/inventory/ledger?" + params.Encode()
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: endpoint, retry: true}, &res); err != nil {
		return nil, err
	}

	return res.Entries, nil
}

func (c *Client) ActiveOffers(ctx context.Context) ([]boost.Offer, error) {
	var offers []boost.Offer
	if err := c.do(ctx, call{method: http.MethodGet, endpoint: "/offers/active", retry: true}, &offers); err != nil {
		return nil, err
	}

	return offers, nil
}

func (c *Client) FinancialSettings(ctx context.Context) (FinancialSettings, error) {
	var res struct {
		TaxRate *float64 `json:"taxRate"`
	}

	err := c.do(ctx, call{method: http.MethodGet, endpoint: "/legal/financial-settings", retry: true}, &res)
	if err != nil {
		return FinancialSettings{}, err
	}

	if res.TaxRate == nil || *res.TaxRate < 0 {
		return FinancialSettings{}, nil
	}

	return FinancialSettings{TaxRate: *res.TaxRate}, nil
}

// CreateBooking is only retried when an idempotency key is supplied.
func (c *Client) CreateBooking(ctx context.Context, idempotencyKey string, r BookingRequest) (*Booking, error) {
	cl := call{method: http.MethodPost, endpoint: "/bookings", body: r}

	if key := strings.TrimSpace(idempotencyKey); key != "" {
		cl.header = http.Header{"Idempotency-Key": []string{key}}
		cl.retry = true
	}

	var res Booking
	if err := c.do(ctx, cl, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) RecordInventory(ctx context.Context, endpoint string, p inventory.Payload) (*inventory.Record, error) {
	if endpoint == "" {
		return nil, errors.New("inventory endpoint is required")
	}

	var res inventory.Record
	if err := c.do(ctx, call{method: http.MethodPost, endpoint: endpoint, body: p}, &res); err != nil {
		return nil, err
	}

	return &res, nil
}
