package booking

import (
	"errors"
	"fmt"
)

var (
	ErrIdempotencyKey = errors.New("idempotency key not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrNotBookable    = errors.New("stay cannot be booked yet")
)

// AvailabilityError explains why a booking was refused for availability.
type AvailabilityError struct {
	errors []string
}

func NewAvailabilityError() *AvailabilityError {
	//nolint:exhaustruct
	return &AvailabilityError{}
}

func IsAvailabilityError(err error) *AvailabilityError {
	if err == nil {
		return nil
	}

	var availabilityError *AvailabilityError

	if errors.As(err, &availabilityError) {
		return availabilityError
	}

	return nil
}

func (e *AvailabilityError) AddUnavailableRoom(propertyID, roomTypeID, reason string) {
	e.errors = append(e.errors, fmt.Sprintf("room '%v' of property '%v' cannot be booked: %v", roomTypeID, propertyID, reason))
}

func (e *AvailabilityError) Error() string {
	return fmt.Sprintf("%+v", e.errors)
}

func (e *AvailabilityError) Fields() []string {
	return e.errors
}

func (e *AvailabilityError) UnavailableRoomsCount() int {
	return len(e.errors)
}
