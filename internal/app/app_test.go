package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/avstrong/staybook/internal/availability"
	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/calendar"
	"github.com/avstrong/staybook/internal/config"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/session"
	"github.com/avstrong/staybook/internal/stay"
)

func marketplaceStub(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /properties/p1/rooms/dlx", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"id":"dlx","name":"Deluxe","propertyType":"hotel","pricing":{"basePrice":2000,"weekendPrice":2500},"maxAdults":2,"totalInventory":5}`))
	})
	mux.HandleFunc("POST /availability/check", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"available":true,"unitsLeft":4}`))
	})
	mux.HandleFunc("GET /legal/financial-settings", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"taxRate":12}`))
	})
	mux.HandleFunc("GET /offers/active", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`[{"code":"SPRING10","discountType":"percentage","discountValue":10}]`))
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return server
}

func testConfig(url string) *config.Config {
	return &config.Config{
		Marketplace:  config.MarketplaceConfig{BaseURL: url, MaxAttempts: 1, Timeout: time.Second},
		Cache:        config.CacheConfig{Backend: config.CacheMemory, OffersTTL: time.Minute, TaxTTL: time.Minute},
		CouponPolicy: "drop",
		LedgerLimit:  100,
	}
}

func TestBuild_QuotesThroughMarketplace(t *testing.T) {
	server := marketplaceStub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := Build(ctx, testConfig(server.URL), logger.Discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	checkIn := calendar.FromTime(time.Now().UTC()).AddDays(30)

	q, err := c.Booking.Quote(ctx, &booking.QuoteInput{
		PropertyID: "p1",
		RoomTypeID: "dlx",
		CheckIn:    checkIn,
		CheckOut:   checkIn.AddDays(2),
		Units:      1,
		Adults:     2,
		OfferCode:  "spring10",
	})
	if err != nil {
		t.Fatalf("quote: %v", err)
	}

	if q.Room.Category != stay.DateBased || q.Breakdown == nil || q.Breakdown.DiscountAmount == 0 || q.TaxRate != 12 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Availability.State != availability.StateAvailable || !q.Bookable {
		t.Fatalf("expected bookable quote, got %+v", q.Availability)
	}
}

func TestBuild_SessionUsesConfiguredPolicy(t *testing.T) {
	server := marketplaceStub(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c, err := Build(ctx, testConfig(server.URL), logger.Discard())
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer c.Close()

	if c.Policy != session.DropWhenIneligible {
		t.Fatalf("expected drop policy, got %s", c.Policy)
	}

	room, err := c.Market.GetRoom(ctx, "p1", "dlx")
	if err != nil {
		t.Fatalf("get room: %v", err)
	}

	checkIn := calendar.FromTime(time.Now().UTC()).AddDays(30)

	s := c.NewSession()
	s.SelectRoom("p1", room)
	s.SetDates(&stay.DateRange{CheckIn: checkIn, CheckOut: checkIn.AddDays(1)})

	if _, applied := s.RefreshAvailability(ctx); !applied || !s.CanBook() {
		t.Fatalf("expected session to be bookable, got %+v", s.Availability())
	}
}

func TestBuild_RejectsUnknownPolicy(t *testing.T) {
	conf := testConfig("http://localhost")
	conf.CouponPolicy = "sometimes"

	if _, err := Build(context.Background(), conf, logger.Discard()); err == nil {
		t.Fatalf("expected an error for an unknown coupon policy")
	}
}
