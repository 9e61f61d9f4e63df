package memory

import (
	"context"
	"errors"

	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

// Factory wires in-memory repositories into a unit-of-work boundary.
type Factory struct {
	HotelsRepo       domainhotel.Repository
	RoomsRepo        domainhotel.RoomRepository
	ClientsRepo      domainclient.Repository
	ReservationsRepo domainreservation.Repository
	CommentsRepo     domaincomment.Repository
}

// ErrFactoryMisconfigured indicates missing repositories.
var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// NewFactory builds a factory over fresh, empty repositories.
func NewFactory() Factory {
	return Factory{
		HotelsRepo:       NewHotelRepository(),
		RoomsRepo:        NewRoomRepository(),
		ClientsRepo:      NewClientRepository(),
		ReservationsRepo: NewReservationRepository(),
		CommentsRepo:     NewCommentRepository(),
	}
}

// Begin starts a lightweight transaction boundary. No isolation is provided;
// writers serialize through the room locks.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.HotelsRepo == nil || f.RoomsRepo == nil || f.ClientsRepo == nil || f.ReservationsRepo == nil || f.CommentsRepo == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{
		hotels:       f.HotelsRepo,
		rooms:        f.RoomsRepo,
		clients:      f.ClientsRepo,
		reservations: f.ReservationsRepo,
		comments:     f.CommentsRepo,
	}, nil
}

// Unit is a lightweight uow.UnitOfWork backed by in-memory stores.
type Unit struct {
	hotels       domainhotel.Repository
	rooms        domainhotel.RoomRepository
	clients      domainclient.Repository
	reservations domainreservation.Repository
	comments     domaincomment.Repository
}

func (u *Unit) Hotels() domainhotel.Repository {
	return u.hotels
}

func (u *Unit) Rooms() domainhotel.RoomRepository {
	return u.rooms
}

func (u *Unit) Clients() domainclient.Repository {
	return u.clients
}

func (u *Unit) Reservations() domainreservation.Repository {
	return u.reservations
}

func (u *Unit) Comments() domaincomment.Repository {
	return u.comments
}

func (u *Unit) Commit(ctx context.Context) error {
	return nil
}

func (u *Unit) Rollback(ctx context.Context) error {
	return nil
}
