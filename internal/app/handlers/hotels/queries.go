package hotels

import (
	"context"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/queries"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
)

const (
	searchHotelsKey = "hotels.search"
	getHotelKey     = "hotels.get"
	listRoomsKey    = "hotels.rooms.admin_list"
	roomAvailKey    = "hotels.rooms.availability"
)

// SearchHotelsQuery matches hotels by name or city. With Range set only
// hotels having at least one free room are returned.
type SearchHotelsQuery struct {
	Query string
	Range *daterange.DateRange
	Skip  int
	Limit int
}

func (q SearchHotelsQuery) Key() string { return searchHotelsKey }

type SearchHotelsHandler struct {
	UoWFactory uow.UoWFactory
	Checker    booking.Checker
}

func (h *SearchHotelsHandler) Handle(ctx context.Context, q SearchHotelsQuery) (dto.HotelCollection, error) {
	if q.Range != nil {
		if err := q.Range.Validate(); err != nil {
			return dto.HotelCollection{}, domainreservation.ErrInvalidDateRange
		}
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HotelCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}

	filter := domainhotel.Filter{Query: q.Query, Skip: q.Skip, Limit: q.Limit}
	if q.Range != nil {
		// Availability filtering happens before paging.
		filter.Skip, filter.Limit = 0, 0
	}
	list, err := unit.Hotels().Find(execCtx, filter)
	if err != nil {
		return dto.HotelCollection{}, err
	}
	items := make([]dto.Hotel, 0, len(list))
	for _, hotel := range list {
		item := dto.MapHotel(hotel)
		if q.Range != nil {
			free, err := h.Checker.HotelHasAvailability(execCtx, unit.Rooms(), unit.Reservations(), hotel.ID, *q.Range)
			if err != nil {
				return dto.HotelCollection{}, err
			}
			if !free {
				continue
			}
			item.Available = dto.BoolPtr(true)
		}
		items = append(items, item)
	}
	if q.Range != nil {
		items = page(items, q.Skip, q.Limit)
	}
	return dto.HotelCollection{Items: items}, nil
}

// GetHotelQuery returns a hotel with its rooms, each flagged with its
// availability when Range is set.
type GetHotelQuery struct {
	ID    string
	Range *daterange.DateRange
}

func (q GetHotelQuery) Key() string { return getHotelKey }

type GetHotelHandler struct {
	UoWFactory uow.UoWFactory
	Checker    booking.Checker
}

func (h *GetHotelHandler) Handle(ctx context.Context, q GetHotelQuery) (dto.HotelDetails, error) {
	if q.Range != nil {
		if err := q.Range.Validate(); err != nil {
			return dto.HotelDetails{}, domainreservation.ErrInvalidDateRange
		}
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.HotelDetails{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	hotel, err := unit.Hotels().ByID(execCtx, domainhotel.ID(q.ID))
	if err != nil {
		return dto.HotelDetails{}, err
	}
	out := dto.HotelDetails{Hotel: dto.MapHotel(hotel)}
	if q.Range == nil {
		rooms, err := unit.Rooms().ByHotel(execCtx, hotel.ID)
		if err != nil {
			return dto.HotelDetails{}, err
		}
		out.Rooms = make([]dto.Room, 0, len(rooms))
		for _, room := range rooms {
			out.Rooms = append(out.Rooms, dto.MapRoom(room))
		}
		return out, nil
	}
	availability, err := h.Checker.Rooms(execCtx, unit.Rooms(), unit.Reservations(), hotel.ID, *q.Range)
	if err != nil {
		return dto.HotelDetails{}, err
	}
	out.Rooms = make([]dto.Room, 0, len(availability))
	anyFree := false
	for _, ra := range availability {
		room := dto.MapRoom(ra.Room)
		room.Available = dto.BoolPtr(ra.Available)
		anyFree = anyFree || ra.Available
		out.Rooms = append(out.Rooms, room)
	}
	out.Hotel.Available = dto.BoolPtr(anyFree)
	return out, nil
}

type ListRoomsQuery struct {
	HotelID string
	Query   string
	Skip    int
	Limit   int
}

func (q ListRoomsQuery) Key() string { return listRoomsKey }

func (q ListRoomsQuery) RequiredRole() string { return string(domainclient.RoleAdmin) }

type ListRoomsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomsHandler) Handle(ctx context.Context, q ListRoomsQuery) (dto.RoomCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.RoomCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	rooms, err := unit.Rooms().Find(execCtx, domainhotel.RoomFilter{
		HotelID: domainhotel.ID(q.HotelID),
		Query:   q.Query,
		Skip:    q.Skip,
		Limit:   q.Limit,
	})
	if err != nil {
		return dto.RoomCollection{}, err
	}
	items := make([]dto.Room, 0, len(rooms))
	for _, room := range rooms {
		items = append(items, dto.MapRoom(room))
	}
	return dto.RoomCollection{Items: items}, nil
}

// RoomAvailabilityQuery asks whether one room is free over a range.
// ExcludeID lets an edit form ignore the reservation being edited.
type RoomAvailabilityQuery struct {
	RoomID    string
	Range     daterange.DateRange
	ExcludeID string
}

func (q RoomAvailabilityQuery) Key() string { return roomAvailKey }

type RoomAvailabilityHandler struct {
	Engine *booking.Service
}

func (h *RoomAvailabilityHandler) Handle(ctx context.Context, q RoomAvailabilityQuery) (dto.RoomAvailability, error) {
	if h.Engine == nil {
		return dto.RoomAvailability{}, booking.ErrServiceMisconfigured
	}
	free, err := h.Engine.CheckAvailability(ctx, domainhotel.RoomID(q.RoomID), q.Range.CheckIn, q.Range.CheckOut, domainreservation.ID(q.ExcludeID))
	if err != nil {
		return dto.RoomAvailability{}, err
	}
	return dto.RoomAvailability{
		RoomID:    q.RoomID,
		CheckIn:   q.Range.CheckIn,
		CheckOut:  q.Range.CheckOut,
		Available: free,
	}, nil
}

func page[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

var (
	_ queries.Handler[SearchHotelsQuery, dto.HotelCollection]      = (*SearchHotelsHandler)(nil)
	_ queries.Handler[GetHotelQuery, dto.HotelDetails]             = (*GetHotelHandler)(nil)
	_ queries.Handler[ListRoomsQuery, dto.RoomCollection]          = (*ListRoomsHandler)(nil)
	_ queries.Handler[RoomAvailabilityQuery, dto.RoomAvailability] = (*RoomAvailabilityHandler)(nil)
	_ middleware.RoleRestricted                                    = ListRoomsQuery{}
)
