package reservation

import (
	"errors"
	"fmt"

	"hotelbook/internal/domain/client"
	"hotelbook/internal/domain/hotel"
)

var (
	ErrInvalidReference  = errors.New("reservation: invalid reference")
	ErrRoomHotelMismatch = errors.New("reservation: room does not belong to the hotel")
	ErrInvalidDateRange  = errors.New("reservation: end must be after start")
	ErrNoRoomsSelected   = errors.New("reservation: at least one room is required")
	ErrRoomUnavailable   = errors.New("reservation: room unavailable")
	ErrNotAuthorized     = errors.New("reservation: not authorized")
	ErrNotFound          = errors.New("reservation: not found")
	ErrConcurrentUpdate  = errors.New("reservation: concurrent update detected")
	ErrDuplicateCode     = errors.New("reservation: code already used")
)

// RoomUnavailableError carries the room that failed the availability check.
type RoomUnavailableError struct {
	RoomID     hotel.RoomID
	RoomNumber string
}

func (e *RoomUnavailableError) Error() string {
	return fmt.Sprintf("reservation: room %s is already booked for this period", e.RoomNumber)
}

func (e *RoomUnavailableError) Unwrap() error {
	return ErrRoomUnavailable
}

type Kind string

const (
	KindInvalidReference  Kind = "InvalidReference"
	KindRoomHotelMismatch Kind = "RoomHotelMismatch"
	KindInvalidDateRange  Kind = "InvalidDateRange"
	KindNoRoomsSelected   Kind = "NoRoomsSelected"
	KindRoomUnavailable   Kind = "RoomUnavailable"
	KindNotAuthorized     Kind = "NotAuthorized"
	KindNotFound          Kind = "NotFound"
	KindConflict          Kind = "Conflict"
	KindInternal          Kind = "Internal"
)

// KindOf classifies err into the booking error taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidReference):
		return KindInvalidReference
	case errors.Is(err, ErrRoomHotelMismatch):
		return KindRoomHotelMismatch
	case errors.Is(err, ErrInvalidDateRange):
		return KindInvalidDateRange
	case errors.Is(err, ErrNoRoomsSelected):
		return KindNoRoomsSelected
	case errors.Is(err, ErrRoomUnavailable):
		return KindRoomUnavailable
	case errors.Is(err, ErrNotAuthorized):
		return KindNotAuthorized
	case errors.Is(err, ErrNotFound),
		errors.Is(err, hotel.ErrNotFound),
		errors.Is(err, hotel.ErrRoomNotFound),
		errors.Is(err, client.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrConcurrentUpdate), errors.Is(err, ErrDuplicateCode):
		return KindConflict
	default:
		return KindInternal
	}
}
