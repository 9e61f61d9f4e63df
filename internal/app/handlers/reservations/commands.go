package reservations

import (
	"context"
	"errors"
	"time"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	"hotelbook/internal/app/middleware"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

const (
	createReservationKey      = "reservations.create"
	updateReservationKey      = "reservations.update"
	cancelReservationKey      = "reservations.cancel"
	adminDeleteReservationKey = "reservations.admin_delete"
)

var ErrEngineRequired = errors.New("reservations: booking engine required")

// CreateReservationCommand books rooms of one hotel for a client. Public
// callers always pass their own client id.
type CreateReservationCommand struct {
	HotelID         string
	ClientID        string
	RoomIDs         []string
	CheckIn         time.Time
	CheckOut        time.Time
	IdempotencyKeyV string
}

func (c CreateReservationCommand) Key() string { return createReservationKey }

// IdempotencyKey is scoped to the client so that keys never collide across
// accounts.
func (c CreateReservationCommand) IdempotencyKey() string {
	if c.IdempotencyKeyV == "" {
		return ""
	}
	return c.ClientID + ":" + c.IdempotencyKeyV
}

func (c CreateReservationCommand) ResultPrototype() any { return &dto.ReservationRef{} }

func (c CreateReservationCommand) ManagesTransaction() bool { return true }

type CreateReservationHandler struct {
	Engine *booking.Service
}

func (h *CreateReservationHandler) Handle(ctx context.Context, cmd CreateReservationCommand) (*dto.ReservationRef, error) {
	if h.Engine == nil {
		return nil, ErrEngineRequired
	}
	res, err := h.Engine.CreateReservation(ctx, booking.CreateRequest{
		HotelID:  domainhotel.ID(cmd.HotelID),
		ClientID: domainclient.ID(cmd.ClientID),
		RoomIDs:  roomIDs(cmd.RoomIDs),
		CheckIn:  cmd.CheckIn,
		CheckOut: cmd.CheckOut,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ReservationRef{ID: string(res.ID), Code: string(res.Code)}, nil
}

// UpdateReservationCommand replaces hotel, client, rooms and dates of a
// reservation. Administrators only.
type UpdateReservationCommand struct {
	ID       string
	HotelID  string
	ClientID string
	RoomIDs  []string
	CheckIn  time.Time
	CheckOut time.Time
}

func (c UpdateReservationCommand) Key() string { return updateReservationKey }

func (c UpdateReservationCommand) RequiredRole() string { return string(domainclient.RoleAdmin) }

func (c UpdateReservationCommand) ManagesTransaction() bool { return true }

type UpdateReservationHandler struct {
	Engine *booking.Service
}

func (h *UpdateReservationHandler) Handle(ctx context.Context, cmd UpdateReservationCommand) (*dto.ReservationRef, error) {
	if h.Engine == nil {
		return nil, ErrEngineRequired
	}
	res, err := h.Engine.UpdateReservation(ctx, booking.UpdateRequest{
		ID:       domainreservation.ID(cmd.ID),
		HotelID:  domainhotel.ID(cmd.HotelID),
		ClientID: domainclient.ID(cmd.ClientID),
		RoomIDs:  roomIDs(cmd.RoomIDs),
		CheckIn:  cmd.CheckIn,
		CheckOut: cmd.CheckOut,
	})
	if err != nil {
		return nil, err
	}
	return &dto.ReservationRef{ID: string(res.ID), Code: string(res.Code)}, nil
}

type CancelReservationCommand struct {
	ID       string
	ClientID string
}

func (c CancelReservationCommand) Key() string { return cancelReservationKey }

func (c CancelReservationCommand) ManagesTransaction() bool { return true }

type CancelReservationHandler struct {
	Engine *booking.Service
}

func (h *CancelReservationHandler) Handle(ctx context.Context, cmd CancelReservationCommand) (*dto.ReservationRef, error) {
	if h.Engine == nil {
		return nil, ErrEngineRequired
	}
	if err := h.Engine.CancelReservation(ctx, domainreservation.ID(cmd.ID), domainclient.ID(cmd.ClientID)); err != nil {
		return nil, err
	}
	return &dto.ReservationRef{ID: cmd.ID}, nil
}

type AdminDeleteReservationCommand struct {
	ID string
}

func (c AdminDeleteReservationCommand) Key() string { return adminDeleteReservationKey }

func (c AdminDeleteReservationCommand) RequiredRole() string { return string(domainclient.RoleAdmin) }

func (c AdminDeleteReservationCommand) ManagesTransaction() bool { return true }

type AdminDeleteReservationHandler struct {
	Engine *booking.Service
}

func (h *AdminDeleteReservationHandler) Handle(ctx context.Context, cmd AdminDeleteReservationCommand) (*dto.ReservationRef, error) {
	if h.Engine == nil {
		return nil, ErrEngineRequired
	}
	if err := h.Engine.AdminDeleteReservation(ctx, domainreservation.ID(cmd.ID)); err != nil {
		return nil, err
	}
	return &dto.ReservationRef{ID: cmd.ID}, nil
}

func roomIDs(raw []string) []domainhotel.RoomID {
	out := make([]domainhotel.RoomID, 0, len(raw))
	for _, id := range raw {
		out = append(out, domainhotel.RoomID(id))
	}
	return out
}

var (
	_ commands.Handler[CreateReservationCommand, *dto.ReservationRef]      = (*CreateReservationHandler)(nil)
	_ commands.Handler[UpdateReservationCommand, *dto.ReservationRef]      = (*UpdateReservationHandler)(nil)
	_ commands.Handler[CancelReservationCommand, *dto.ReservationRef]      = (*CancelReservationHandler)(nil)
	_ commands.Handler[AdminDeleteReservationCommand, *dto.ReservationRef] = (*AdminDeleteReservationHandler)(nil)

	_ middleware.IdempotentCommand  = CreateReservationCommand{}
	_ middleware.SelfManagedCommand = CreateReservationCommand{}
	_ middleware.SelfManagedCommand = UpdateReservationCommand{}
	_ middleware.SelfManagedCommand = CancelReservationCommand{}
	_ middleware.SelfManagedCommand = AdminDeleteReservationCommand{}
	_ middleware.RoleRestricted     = UpdateReservationCommand{}
	_ middleware.RoleRestricted     = AdminDeleteReservationCommand{}
)
