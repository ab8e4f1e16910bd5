package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/avstrong/staybook/internal/booking"
	"github.com/avstrong/staybook/internal/inventory"
	"github.com/avstrong/staybook/internal/marketplace"
	"github.com/avstrong/staybook/internal/validation"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"fields,omitempty"`
	Rooms  []string            `json:"rooms,omitempty"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.l.LogErrorf("Could not encode response: %v", err.Error())
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	if inputErr := validation.IsInputError(err); inputErr != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid input", Fields: inputErr.Fields()})

		return
	}

	if availabilityErr := booking.IsAvailabilityError(err); availabilityErr != nil {
		s.writeJSON(w, http.StatusPreconditionFailed, errorResponse{Error: "not available", Rooms: availabilityErr.Fields()})

		return
	}

	var apiErr *marketplace.APIError

	switch {
	case errors.Is(err, booking.ErrRoomNotFound):
		s.writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, booking.ErrNotBookable):
		s.writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, booking.ErrIdempotencyKey):
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: "Idempotency-Key header is missing"})
	case errors.As(err, &apiErr), errors.Is(err, marketplace.ErrRetriesExhausted):
		s.l.LogErrorf("Marketplace request failed: %v", err.Error())
		s.writeJSON(w, http.StatusBadGateway, errorResponse{Error: http.StatusText(http.StatusBadGateway)})
	default:
		s.l.LogErrorf("Request failed: %v", err.Error())
		s.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: http.StatusText(http.StatusInternalServerError)})
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(v); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return false
	}

	return true
}

func (s *Server) quoteHandler(w http.ResponseWriter, r *http.Request) {
	var input booking.QuoteInput

	if !decodeBody(w, r, &input) {
		return
	}

	out, err := s.bManager.Quote(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) calendarHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	inputErr := validation.NewInputError()

	input := booking.CalendarInput{
		PropertyID: q.Get("property_id"),
		RoomTypeID: q.Get("room_type_id"),
	}

	now := time.Now().UTC()
	input.Year, input.Month = now.Year(), now.Month()

	if v := q.Get("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			inputErr.AddError("year", "must be a number")
		}

		input.Year = year
	}

	if v := q.Get("month"); v != "" {
		month, err := strconv.Atoi(v)
		if err != nil {
			inputErr.AddError("month", "must be a number")
		}

		input.Month = time.Month(month)
	}

	if err := inputErr.OrNil(); err != nil {
		s.writeError(w, err)

		return
	}

	out, err := s.bManager.Calendar(r.Context(), &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) createBookingHandler(w http.ResponseWriter, r *http.Request) {
	idempotencyKey := r.Header.Get("Idempotency-Key")
	if idempotencyKey == "" {
		http.Error(w, "Idempotency-Key header is missing", http.StatusBadRequest)

		return
	}

	var input booking.BookInput

	if !decodeBody(w, r, &input) {
		return
	}

	ctx := booking.NewContextWithIdempotencyKey(r.Context(), idempotencyKey)

	out, err := s.bManager.CreateBooking(ctx, &input)
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) inventoryHandler(w http.ResponseWriter, r *http.Request) {
	var input inventory.Request

	if !decodeBody(w, r, &input) {
		return
	}

	out, err := s.inventory.Submit(r.Context(), inventory.FromRequest(input))
	if err != nil {
		s.writeError(w, err)

		return
	}

	s.writeJSON(w, http.StatusCreated, out)
}

func (s *Server) livenessHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) addRoutes(r *http.ServeMux) {
	routes := []struct {
		pattern string
		handler http.HandlerFunc
	}{
		{"POST /api/quotes/v1", s.quoteHandler},
		{"GET /api/calendar/v1", s.calendarHandler},
		{"POST /api/bookings/v1", s.createBookingHandler},
		{"POST /api/inventory/v1", s.inventoryHandler},
		{fmt.Sprintf("GET %s", s.conf.LivenessEndpoint), s.livenessHandler},
	}

	for _, route := range routes {
		r.Handle(route.pattern, s.applyMiddlewares(route.handler, s.loggerMiddleware(), s.recoverMiddleware()))
	}
}
