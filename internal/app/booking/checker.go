package booking

import (
	"context"

	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
)

// Checker decides whether a room is free over a date range. It reads the
// store on every call and keeps no state between calls.
type Checker struct {
	Policy daterange.OverlapPolicy
}

// IsAvailable reports whether no reservation other than exclude holds room
// over rng. rng must already be validated.
func (c Checker) IsAvailable(ctx context.Context, repo domainreservation.Repository, room domainhotel.RoomID, rng daterange.DateRange, exclude domainreservation.ID) (bool, error) {
	n, err := repo.CountConflicts(ctx, domainreservation.ConflictQuery{
		RoomID:    room,
		Range:     rng,
		Policy:    c.Policy,
		ExcludeID: exclude,
	})
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// RoomAvailability pairs a room with its availability over a queried range.
type RoomAvailability struct {
	Room      *domainhotel.Room
	Available bool
}

// Rooms evaluates every room of a hotel over rng.
func (c Checker) Rooms(ctx context.Context, rooms domainhotel.RoomRepository, reservations domainreservation.Repository, hotelID domainhotel.ID, rng daterange.DateRange) ([]RoomAvailability, error) {
	list, err := rooms.ByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}
	out := make([]RoomAvailability, 0, len(list))
	for _, room := range list {
		free, err := c.IsAvailable(ctx, reservations, room.ID, rng, "")
		if err != nil {
			return nil, err
		}
		out = append(out, RoomAvailability{Room: room, Available: free})
	}
	return out, nil
}

// HotelHasAvailability reports whether at least one room of the hotel is free.
func (c Checker) HotelHasAvailability(ctx context.Context, rooms domainhotel.RoomRepository, reservations domainreservation.Repository, hotelID domainhotel.ID, rng daterange.DateRange) (bool, error) {
	list, err := rooms.ByHotel(ctx, hotelID)
	if err != nil {
		return false, err
	}
	for _, room := range list {
		free, err := c.IsAvailable(ctx, reservations, room.ID, rng, "")
		if err != nil {
			return false, err
		}
		if free {
			return true, nil
		}
	}
	return false, nil
}
