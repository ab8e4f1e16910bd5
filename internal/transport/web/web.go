package web

import (
	"context"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/inventory"
	"github.com/avstrong/staybook/internal/logger"
	"github.com/avstrong/staybook/internal/marketplace"
)

type bookingService interface {
	Quote(ctx context.Context, in *booking.QuoteInput) (*booking.Quote, error)
	Calendar(ctx context.Context, in *booking.CalendarInput) (*booking.Calendar, error)
	CreateBooking(ctx context.Context, in *booking.BookInput) (*marketplace.Booking, error)
}

type inventoryService interface {
	Submit(ctx context.Context, s inventory.Sheet) (*inventory.Record, error)
}

type Server struct {
	srv       *http.Server
	router    *http.ServeMux
	l         *logger.Logger
	conf      Conf
	bManager  bookingService
	inventory inventoryService
}

type Conf struct {
	L                 *logger.Logger
	ServerLogger      *log.Logger
	Host              string
	Port              string
	ReadHeaderTimeout time.Duration
	LivenessEndpoint  string
}

func New(ctx context.Context, conf Conf, bookingManager bookingService, inventoryManager inventoryService) (*Server, error) {
	mux := http.NewServeMux()

	if conf.LivenessEndpoint == "" {
		conf.LivenessEndpoint = "/liveness"
	}

	//nolint:exhaustruct
	srv := &http.Server{
		Addr:              net.JoinHostPort(conf.Host, conf.Port),
		ReadHeaderTimeout: conf.ReadHeaderTimeout,
		ErrorLog:          conf.ServerLogger,
		Handler:           mux,
		BaseContext: func(listener net.Listener) context.Context {
			return ctx
		},
	}

	server := &Server{
		srv:       srv,
		router:    mux,
		l:         conf.L,
		conf:      conf,
		bManager:  bookingManager,
		inventory: inventoryManager,
	}

	server.addRoutes(mux)

	return server, nil
}

func (s *Server) Srv() *http.Server {
	return s.srv
}

// Handler exposes the routed handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}
