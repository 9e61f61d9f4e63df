package dto

import (
	"time"

	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

type ReservationRoom struct {
	ID     string `json:"id"`
	Number string `json:"number,omitempty"`
}

type Reservation struct {
	ID         string            `json:"id"`
	Code       string            `json:"code"`
	HotelID    string            `json:"hotel_id"`
	HotelName  string            `json:"hotel_name,omitempty"`
	ClientID   string            `json:"client_id,omitempty"`
	ClientName string            `json:"client_name,omitempty"`
	Rooms      []ReservationRoom `json:"rooms"`
	CheckIn    time.Time         `json:"check_in"`
	CheckOut   time.Time         `json:"check_out"`
	Nights     int               `json:"nights"`
	Orphaned   bool              `json:"orphaned"`
	CreatedAt  time.Time         `json:"created_at"`
}

type ReservationCollection struct {
	Items []Reservation `json:"items"`
}

// ReservationRef is returned by write operations.
type ReservationRef struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// MapReservation builds the view of r. Nil hotel, client or rooms leave the
// corresponding labels empty; a nil client marks the reservation orphaned.
func MapReservation(r *domainreservation.Reservation, h *domainhotel.Hotel, c *domainclient.Client, rooms map[domainhotel.RoomID]*domainhotel.Room) Reservation {
	out := Reservation{
		ID:        string(r.ID),
		Code:      string(r.Code),
		HotelID:   string(r.HotelID),
		ClientID:  string(r.ClientID),
		Rooms:     make([]ReservationRoom, 0, len(r.RoomIDs)),
		CheckIn:   r.Range.CheckIn,
		CheckOut:  r.Range.CheckOut,
		Nights:    r.Range.Nights(),
		Orphaned:  r.Orphaned() || c == nil,
		CreatedAt: r.CreatedAt,
	}
	if h != nil {
		out.HotelName = h.Name
	}
	if c != nil {
		out.ClientName = c.Name
	}
	for _, id := range r.RoomIDs {
		ref := ReservationRoom{ID: string(id)}
		if room, ok := rooms[id]; ok && room != nil {
			ref.Number = room.Number
		}
		out.Rooms = append(out.Rooms, ref)
	}
	return out
}

// ReservationExport is the document uploaded by the admin export.
type ReservationExport struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Count       int           `json:"count"`
	Items       []Reservation `json:"items"`
}

type ExportResult struct {
	Key string `json:"key"`
	URL string `json:"url"`
}
