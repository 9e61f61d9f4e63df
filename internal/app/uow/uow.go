package uow

import (
	"context"
	"errors"

	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

var ErrUnitOfWorkMissing = errors.New("uow: no factory to start a unit of work")

// UnitOfWork groups the repositories a booking write touches so they commit
// or roll back together.
type UnitOfWork interface {
	Hotels() domainhotel.Repository
	Rooms() domainhotel.RoomRepository
	Clients() domainclient.Repository
	Reservations() domainreservation.Repository
	Comments() domaincomment.Repository

	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

type UoWFactory interface {
	Begin(ctx context.Context, opts TxOptions) (UnitOfWork, error)
}

// TxOptions: ReadOnly units may skip the store transaction entirely.
type TxOptions struct {
	ReadOnly bool
}

// sessionBinder is implemented by units that carry a driver session which
// must travel with the context, such as a Mongo transaction.
type sessionBinder interface {
	InjectContext(context.Context) context.Context
}

// Start begins a unit and returns a context carrying it, so nested handlers
// join the same unit through FromContext.
func Start(ctx context.Context, factory UoWFactory, opts TxOptions) (UnitOfWork, context.Context, error) {
	if factory == nil {
		return nil, ctx, ErrUnitOfWorkMissing
	}
	unit, err := factory.Begin(ctx, opts)
	if err != nil {
		return nil, ctx, err
	}
	execCtx := ctx
	if binder, ok := unit.(sessionBinder); ok {
		execCtx = binder.InjectContext(ctx)
	}
	return unit, context.WithValue(execCtx, unitKey{}, unit), nil
}

type unitKey struct{}

// FromContext returns the unit a caller up the stack started, if any.
func FromContext(ctx context.Context) (UnitOfWork, bool) {
	unit, ok := ctx.Value(unitKey{}).(UnitOfWork)
	return unit, ok
}
