package mongo

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

// Factory wires Mongo transactions into the generic UnitOfWork interface.
// Transactions need a replica set; read-only units run on a plain session.
type Factory struct {
	DB *mongo.Database

	HotelsRepo       domainhotel.Repository
	RoomsRepo        domainhotel.RoomRepository
	ClientsRepo      domainclient.Repository
	ReservationsRepo domainreservation.Repository
	CommentsRepo     domaincomment.Repository
}

var ErrUnitOfWorkNotConfigured = errors.New("mongo: unit of work factory missing database")

// NewFactory builds a factory over the default collections of db.
func NewFactory(db *mongo.Database) Factory {
	return Factory{
		DB:               db,
		HotelsRepo:       NewHotelRepository(db),
		RoomsRepo:        NewRoomRepository(db),
		ClientsRepo:      NewClientRepository(db),
		ReservationsRepo: NewReservationRepository(db),
		CommentsRepo:     NewCommentRepository(db),
	}
}

// Begin starts a MongoDB session and, unless read-only, a transaction.
func (f Factory) Begin(ctx context.Context, opts uow.TxOptions) (uow.UnitOfWork, error) {
	if f.DB == nil {
		return nil, ErrUnitOfWorkNotConfigured
	}
	session, err := f.DB.Client().StartSession()
	if err != nil {
		return nil, err
	}
	unit := &Unit{
		session:      session,
		hotels:       f.HotelsRepo,
		rooms:        f.RoomsRepo,
		clients:      f.ClientsRepo,
		reservations: f.ReservationsRepo,
		comments:     f.CommentsRepo,
	}
	if opts.ReadOnly {
		return unit, nil
	}
	txnOpts := options.Transaction().SetReadConcern(f.DB.ReadConcern()).SetWriteConcern(f.DB.WriteConcern())
	if err := session.StartTransaction(txnOpts); err != nil {
		session.EndSession(ctx)
		return nil, err
	}
	unit.inTxn = true
	return unit, nil
}

type Unit struct {
	session mongo.Session
	inTxn   bool

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
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.CommitTransaction(ctx)
}

func (u *Unit) Rollback(ctx context.Context) error {
	defer u.session.EndSession(ctx)
	if !u.inTxn {
		return nil
	}
	return u.session.AbortTransaction(ctx)
}

// InjectContext ensures Mongo session is available in context for downstream repos.
func (u *Unit) InjectContext(ctx context.Context) context.Context {
	return mongo.NewSessionContext(ctx, u.session)
}
