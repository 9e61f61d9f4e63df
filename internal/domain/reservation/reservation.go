package reservation

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotelbook/internal/domain/client"
	"hotelbook/internal/domain/hotel"
	"hotelbook/internal/domain/shared/daterange"
	"hotelbook/internal/domain/shared/events"
)

var (
	ErrIDRequired    = errors.New("reservation: id is required")
	ErrInvalidCode   = errors.New("reservation: invalid code")
	ErrHotelRequired = errors.New("reservation: hotel is required")
)

type ID string

// Reservation books one or more rooms of a single hotel for a date range.
// An empty ClientID marks an orphaned reservation.
type Reservation struct {
	ID        ID
	Code      Code
	HotelID   hotel.ID
	ClientID  client.ID
	RoomIDs   []hotel.RoomID
	Range     daterange.DateRange
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   int64
	events.EventRecorder
}

// ConflictQuery selects reservations holding RoomID over Range.
type ConflictQuery struct {
	RoomID    hotel.RoomID
	Range     daterange.DateRange
	Policy    daterange.OverlapPolicy
	ExcludeID ID
}

type Filter struct {
	ClientID client.ID
	HotelID  hotel.ID
	RoomID   hotel.RoomID
	// CodeQuery matches a substring of the code, case-insensitive.
	CodeQuery string
	Skip      int
	Limit     int
}

type Repository interface {
	ByID(ctx context.Context, id ID) (*Reservation, error)
	CodeExists(ctx context.Context, code Code) (bool, error)
	Find(ctx context.Context, filter Filter) ([]*Reservation, error)
	CountConflicts(ctx context.Context, q ConflictQuery) (int, error)
	// Save inserts or updates; a stale Version yields ErrConcurrentUpdate.
	Save(ctx context.Context, r *Reservation) error
	Delete(ctx context.Context, id ID) error
}

type CreateParams struct {
	ID        ID
	Code      Code
	HotelID   hotel.ID
	ClientID  client.ID
	RoomIDs   []hotel.RoomID
	Range     daterange.DateRange
	CreatedAt time.Time
}

func New(params CreateParams) (*Reservation, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if !params.Code.Valid() {
		return nil, ErrInvalidCode
	}
	if params.HotelID == "" {
		return nil, ErrHotelRequired
	}
	if len(params.RoomIDs) == 0 {
		return nil, ErrNoRoomsSelected
	}
	if err := params.Range.Validate(); err != nil {
		return nil, ErrInvalidDateRange
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	now = now.UTC()
	r := &Reservation{
		ID:        params.ID,
		Code:      params.Code,
		HotelID:   params.HotelID,
		ClientID:  params.ClientID,
		RoomIDs:   append([]hotel.RoomID(nil), params.RoomIDs...),
		Range:     params.Range,
		CreatedAt: now,
		UpdatedAt: now,
	}
	r.Record(ReservationCreated{
		ReservationID: r.ID,
		Code:          r.Code,
		HotelID:       r.HotelID,
		ClientID:      r.ClientID,
		RoomIDs:       append([]hotel.RoomID(nil), r.RoomIDs...),
		Range:         r.Range,
		At:            now,
	})
	return r, nil
}

// Replace overwrites hotel, client, rooms and dates. The room set is
// replaced wholesale.
func (r *Reservation) Replace(hotelID hotel.ID, clientID client.ID, rooms []hotel.RoomID, rng daterange.DateRange, now time.Time) error {
	if hotelID == "" {
		return ErrHotelRequired
	}
	if len(rooms) == 0 {
		return ErrNoRoomsSelected
	}
	if err := rng.Validate(); err != nil {
		return ErrInvalidDateRange
	}
	r.HotelID = hotelID
	r.ClientID = clientID
	r.RoomIDs = append([]hotel.RoomID(nil), rooms...)
	r.Range = rng
	r.UpdatedAt = now.UTC()
	r.Record(ReservationUpdated{
		ReservationID: r.ID,
		HotelID:       r.HotelID,
		ClientID:      r.ClientID,
		RoomIDs:       append([]hotel.RoomID(nil), r.RoomIDs...),
		Range:         r.Range,
		At:            r.UpdatedAt,
	})
	return nil
}

// Cancel checks ownership and records the cancellation. The caller removes
// the reservation afterwards.
func (r *Reservation) Cancel(requester client.ID, now time.Time) error {
	if r.ClientID == "" || requester == "" || r.ClientID != requester {
		return ErrNotAuthorized
	}
	r.Record(ReservationCancelled{ReservationID: r.ID, Code: r.Code, ClientID: requester, At: now.UTC()})
	return nil
}

// MarkDeleted records an administrative or cascading removal.
func (r *Reservation) MarkDeleted(reason string, now time.Time) {
	r.Record(ReservationDeleted{ReservationID: r.ID, Code: r.Code, Reason: reason, At: now.UTC()})
}

func (r *Reservation) HasRoom(id hotel.RoomID) bool {
	for _, roomID := range r.RoomIDs {
		if roomID == id {
			return true
		}
	}
	return false
}

func (r *Reservation) OwnedBy(id client.ID) bool {
	return r.ClientID != "" && r.ClientID == id
}

func (r *Reservation) Orphaned() bool {
	return r.ClientID == ""
}
