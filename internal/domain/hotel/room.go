package hotel

import (
	"context"
	"errors"
	"strings"
	"time"
)

var (
	ErrRoomIDRequired      = errors.New("hotel: room id is required")
	ErrRoomNumberRequired  = errors.New("hotel: room number is required")
	ErrRoomNumberTaken     = errors.New("hotel: room number already used in this hotel")
	ErrRoomHotelRequired   = errors.New("hotel: room must belong to a hotel")
	ErrInvalidCapacity     = errors.New("hotel: room capacity must be positive")
	ErrInvalidPrice        = errors.New("hotel: room price must not be negative")
	ErrRoomNotFound        = errors.New("hotel: room not found")
	ErrRoomHasReservations = errors.New("hotel: reservations still reference this room")
)

type RoomID string

// Room numbers are unique within the owning hotel only.
type Room struct {
	ID        RoomID
	HotelID   ID
	Number    string
	Capacity  int
	Price     float64
	Type      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type RoomFilter struct {
	HotelID ID
	// Query matches room number or type, case-insensitive.
	Query string
	Skip  int
	Limit int
}

type RoomRepository interface {
	ByID(ctx context.Context, id RoomID) (*Room, error)
	ByHotel(ctx context.Context, hotelID ID) ([]*Room, error)
	Find(ctx context.Context, filter RoomFilter) ([]*Room, error)
	// Save returns ErrRoomNumberTaken when another room of the hotel has the same number.
	Save(ctx context.Context, room *Room) error
	Delete(ctx context.Context, id RoomID) error
}

type RoomDetails struct {
	Number   string
	Capacity int
	Price    float64
	Type     string
}

type CreateRoomParams struct {
	ID      RoomID
	HotelID ID
	RoomDetails
	CreatedAt time.Time
}

func NewRoom(params CreateRoomParams) (*Room, error) {
	id := strings.TrimSpace(string(params.ID))
	if id == "" {
		return nil, ErrRoomIDRequired
	}
	hotelID := strings.TrimSpace(string(params.HotelID))
	if hotelID == "" {
		return nil, ErrRoomHotelRequired
	}
	r := &Room{ID: RoomID(id), HotelID: ID(hotelID)}
	if err := r.apply(params.RoomDetails); err != nil {
		return nil, err
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	r.CreatedAt = now.UTC()
	r.UpdatedAt = r.CreatedAt
	return r, nil
}

// Update replaces the editable fields. The owning hotel never changes.
func (r *Room) Update(details RoomDetails, now time.Time) error {
	if err := r.apply(details); err != nil {
		return err
	}
	if now.IsZero() {
		now = time.Now()
	}
	r.UpdatedAt = now.UTC()
	return nil
}

func (r *Room) apply(d RoomDetails) error {
	number := strings.TrimSpace(d.Number)
	if number == "" {
		return ErrRoomNumberRequired
	}
	if d.Capacity <= 0 {
		return ErrInvalidCapacity
	}
	if d.Price < 0 {
		return ErrInvalidPrice
	}
	r.Number = number
	r.Capacity = d.Capacity
	r.Price = d.Price
	r.Type = strings.TrimSpace(d.Type)
	return nil
}

func (r *Room) Matches(query string) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}
	return strings.Contains(strings.ToLower(r.Number), query) ||
		strings.Contains(strings.ToLower(r.Type), query)
}

// NumberKey is the normalized form used for per-hotel uniqueness.
func NumberKey(hotelID ID, number string) string {
	return string(hotelID) + "/" + strings.ToLower(strings.TrimSpace(number))
}
