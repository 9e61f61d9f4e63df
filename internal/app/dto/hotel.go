package dto

import (
	"time"

	domainhotel "hotelbook/internal/domain/hotel"
)

type Hotel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Address  string `json:"address"`
	City     string `json:"city"`
	Phone    string `json:"phone"`
	Category int    `json:"category"`
	// Available is set only when the caller asked about a date range.
	Available *bool `json:"available,omitempty"`
}

type HotelCollection struct {
	Items []Hotel `json:"items"`
}

type Room struct {
	ID        string  `json:"id"`
	HotelID   string  `json:"hotel_id"`
	Number    string  `json:"number"`
	Capacity  int     `json:"capacity"`
	Price     float64 `json:"price"`
	Type      string  `json:"type"`
	Available *bool   `json:"available,omitempty"`
}

type RoomCollection struct {
	Items []Room `json:"items"`
}

type RoomAvailability struct {
	RoomID    string    `json:"room_id"`
	CheckIn   time.Time `json:"check_in"`
	CheckOut  time.Time `json:"check_out"`
	Available bool      `json:"available"`
}

type HotelDetails struct {
	Hotel Hotel  `json:"hotel"`
	Rooms []Room `json:"rooms"`
}

func MapHotel(h *domainhotel.Hotel) Hotel {
	return Hotel{
		ID:       string(h.ID),
		Name:     h.Name,
		Address:  h.Address,
		City:     h.City,
		Phone:    h.Phone,
		Category: h.Category,
	}
}

func MapRoom(r *domainhotel.Room) Room {
	return Room{
		ID:       string(r.ID),
		HotelID:  string(r.HotelID),
		Number:   r.Number,
		Capacity: r.Capacity,
		Price:    r.Price,
		Type:     r.Type,
	}
}

func BoolPtr(v bool) *bool {
	return &v
}
