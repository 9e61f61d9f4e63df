package ginserver

import (
	"errors"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/services/auth"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
	"hotelbook/internal/infra/security"
	"hotelbook/internal/infra/storage/s3"
)

const (
	kindUnauthenticated = "Unauthenticated"
	kindForbidden       = "Forbidden"
	kindValidation      = "Validation"
	kindBusy            = "Busy"
	kindUnavailable     = "Unavailable"
	kindRateLimited     = "RateLimited"
)

type errorResponse struct {
	Error      string `json:"error"`
	Kind       string `json:"kind"`
	RoomNumber string `json:"room_number,omitempty"`
}

var (
	unauthenticatedErrors = []error{
		middleware.ErrUnauthenticated,
		auth.ErrInvalidCredentials,
		auth.ErrTokenRequired,
		security.ErrTokenInvalid,
	}
	conflictErrors = []error{
		domainclient.ErrEmailAlreadyUsed,
		domainclient.ErrPhoneAlreadyUsed,
		domainhotel.ErrRoomNumberTaken,
		domainhotel.ErrHotelHasReservations,
		domainhotel.ErrRoomHasReservations,
	}
	validationErrors = []error{
		auth.ErrPasswordTooShort,
		auth.ErrPasswordTooLong,
		domainclient.ErrNameRequired,
		domainclient.ErrEmailRequired,
		domainclient.ErrPhoneRequired,
		domainhotel.ErrNameRequired,
		domainhotel.ErrInvalidCategory,
		domainhotel.ErrRoomNumberRequired,
		domainhotel.ErrInvalidCapacity,
		domainhotel.ErrInvalidPrice,
		domaincomment.ErrContentRequired,
		domaincomment.ErrReservationRequired,
		domaincomment.ErrAuthorRequired,
	}
)

// classify maps an error to its HTTP status and the kind reported to the
// caller. Booking errors keep their taxonomy name.
func classify(err error) (int, string) {
	switch {
	case isAny(err, unauthenticatedErrors):
		return http.StatusUnauthorized, kindUnauthenticated
	case errors.Is(err, middleware.ErrForbidden):
		return http.StatusForbidden, kindForbidden
	case errors.Is(err, daterange.ErrInvalidDate), errors.Is(err, daterange.ErrInvalidRange):
		return http.StatusBadRequest, string(domainreservation.KindInvalidDateRange)
	case errors.Is(err, booking.ErrLockTimeout):
		return http.StatusServiceUnavailable, kindBusy
	case errors.Is(err, s3.ErrNotConfigured):
		return http.StatusServiceUnavailable, kindUnavailable
	case isAny(err, conflictErrors):
		return http.StatusConflict, string(domainreservation.KindConflict)
	case isAny(err, validationErrors):
		return http.StatusBadRequest, kindValidation
	}
	kind := domainreservation.KindOf(err)
	switch kind {
	case domainreservation.KindInvalidReference, domainreservation.KindNotFound:
		return http.StatusNotFound, string(kind)
	case domainreservation.KindNotAuthorized:
		return http.StatusForbidden, string(kind)
	case domainreservation.KindRoomUnavailable, domainreservation.KindConflict:
		return http.StatusConflict, string(kind)
	case domainreservation.KindInvalidDateRange, domainreservation.KindNoRoomsSelected, domainreservation.KindRoomHotelMismatch:
		return http.StatusBadRequest, string(kind)
	default:
		return http.StatusInternalServerError, string(domainreservation.KindInternal)
	}
}

func respondError(c *gin.Context, err error) {
	status, kind := classify(err)
	body := errorResponse{Error: err.Error(), Kind: kind}
	var unavailable *domainreservation.RoomUnavailableError
	if errors.As(err, &unavailable) {
		body.RoomNumber = unavailable.RoomNumber
	}
	switch status {
	case http.StatusInternalServerError:
		_ = c.Error(err)
		body.Error = "internal error"
	case http.StatusServiceUnavailable:
		_ = c.Error(err)
		c.Header("Retry-After", "1")
	}
	c.JSON(status, body)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg, Kind: kindValidation})
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
