package reservations

import (
	"context"
	"errors"

	"hotelbook/internal/app/dto"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

// viewer resolves hotels, clients and rooms for a batch of reservations,
// loading each entity once.
type viewer struct {
	unit    uow.UnitOfWork
	hotels  map[domainhotel.ID]*domainhotel.Hotel
	clients map[domainclient.ID]*domainclient.Client
	rooms   map[domainhotel.RoomID]*domainhotel.Room
}

func newViewer(unit uow.UnitOfWork) *viewer {
	return &viewer{
		unit:    unit,
		hotels:  make(map[domainhotel.ID]*domainhotel.Hotel),
		clients: make(map[domainclient.ID]*domainclient.Client),
		rooms:   make(map[domainhotel.RoomID]*domainhotel.Room),
	}
}

func (v *viewer) view(ctx context.Context, r *domainreservation.Reservation) (dto.Reservation, error) {
	h, err := v.hotel(ctx, r.HotelID)
	if err != nil {
		return dto.Reservation{}, err
	}
	c, err := v.client(ctx, r.ClientID)
	if err != nil {
		return dto.Reservation{}, err
	}
	for _, id := range r.RoomIDs {
		if _, err := v.room(ctx, id); err != nil {
			return dto.Reservation{}, err
		}
	}
	return dto.MapReservation(r, h, c, v.rooms), nil
}

func (v *viewer) viewAll(ctx context.Context, list []*domainreservation.Reservation) (dto.ReservationCollection, error) {
	items := make([]dto.Reservation, 0, len(list))
	for _, r := range list {
		item, err := v.view(ctx, r)
		if err != nil {
			return dto.ReservationCollection{}, err
		}
		items = append(items, item)
	}
	return dto.ReservationCollection{Items: items}, nil
}

func (v *viewer) hotel(ctx context.Context, id domainhotel.ID) (*domainhotel.Hotel, error) {
	if h, ok := v.hotels[id]; ok {
		return h, nil
	}
	h, err := v.unit.Hotels().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainhotel.ErrNotFound) {
		return nil, err
	}
	v.hotels[id] = h
	return h, nil
}

// client returns nil for orphaned reservations.
func (v *viewer) client(ctx context.Context, id domainclient.ID) (*domainclient.Client, error) {
	if id == "" {
		return nil, nil
	}
	if c, ok := v.clients[id]; ok {
		return c, nil
	}
	c, err := v.unit.Clients().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainclient.ErrNotFound) {
		return nil, err
	}
	v.clients[id] = c
	return c, nil
}

func (v *viewer) room(ctx context.Context, id domainhotel.RoomID) (*domainhotel.Room, error) {
	if r, ok := v.rooms[id]; ok {
		return r, nil
	}
	r, err := v.unit.Rooms().ByID(ctx, id)
	if err != nil && !errors.Is(err, domainhotel.ErrRoomNotFound) {
		return nil, err
	}
	v.rooms[id] = r
	return r, nil
}
