package hotel

import (
	"errors"
	"testing"
	"time"
)

func TestNewHotelValidatesCategory(t *testing.T) {
	for _, category := range []int{0, 6, -1} {
		_, err := NewHotel(CreateParams{ID: "h1", Details: Details{Name: "Paris Centre", Category: category}})
		if !errors.Is(err, ErrInvalidCategory) {
			t.Fatalf("category %d: expected ErrInvalidCategory, got %v", category, err)
		}
	}
	h, err := NewHotel(CreateParams{ID: "h1", Details: Details{Name: " Paris Centre ", City: "Paris", Category: 4}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if h.Name != "Paris Centre" {
		t.Fatalf("expected trimmed name, got %q", h.Name)
	}
	if err := h.Update(Details{Name: "Paris Centre", Category: 9}, time.Now()); !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("expected ErrInvalidCategory on update, got %v", err)
	}
	if h.Category != 4 {
		t.Fatalf("failed update must not change category, got %d", h.Category)
	}
}

func TestHotelMatchesNameOrCity(t *testing.T) {
	h := &Hotel{Name: "Lyon Part-Dieu", City: "Lyon"}
	if !h.Matches("part") || !h.Matches("LYON") || !h.Matches("") {
		t.Fatal("expected hotel to match name, city and empty query")
	}
	if h.Matches("paris") {
		t.Fatal("unexpected match")
	}
}

func TestNewRoomRequiresNumberAndHotel(t *testing.T) {
	if _, err := NewRoom(CreateRoomParams{ID: "r1", HotelID: "h1", RoomDetails: RoomDetails{Capacity: 2}}); !errors.Is(err, ErrRoomNumberRequired) {
		t.Fatalf("expected ErrRoomNumberRequired, got %v", err)
	}
	if _, err := NewRoom(CreateRoomParams{ID: "r1", RoomDetails: RoomDetails{Number: "101", Capacity: 2}}); !errors.Is(err, ErrRoomHotelRequired) {
		t.Fatalf("expected ErrRoomHotelRequired, got %v", err)
	}
	if _, err := NewRoom(CreateRoomParams{ID: "r1", HotelID: "h1", RoomDetails: RoomDetails{Number: "101"}}); !errors.Is(err, ErrInvalidCapacity) {
		t.Fatalf("expected ErrInvalidCapacity, got %v", err)
	}
	room, err := NewRoom(CreateRoomParams{ID: "r1", HotelID: "h1", RoomDetails: RoomDetails{Number: "101", Capacity: 2, Price: 120, Type: "double"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if NumberKey(room.HotelID, " 101 ") != NumberKey("h1", "101") {
		t.Fatal("number key must ignore surrounding spaces")
	}
}
