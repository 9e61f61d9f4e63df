package clients

import (
	"context"

	"hotelbook/internal/app/booking"
	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/queries"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
)

const (
	getClientKey    = "clients.get"
	listClientsKey  = "clients.admin_list"
	deleteClientKey = "clients.delete"
)

type GetClientQuery struct {
	ID string
}

func (q GetClientQuery) Key() string { return getClientKey }

type GetClientHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetClientHandler) Handle(ctx context.Context, q GetClientQuery) (dto.Client, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Client{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	client, err := unit.Clients().ByID(execCtx, domainclient.ID(q.ID))
	if err != nil {
		return dto.Client{}, err
	}
	return dto.MapClient(client), nil
}

type ListClientsQuery struct {
	Skip  int
	Limit int
}

func (q ListClientsQuery) Key() string { return listClientsKey }

func (q ListClientsQuery) RequiredRole() string { return string(domainclient.RoleAdmin) }

type ListClientsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListClientsHandler) Handle(ctx context.Context, q ListClientsQuery) (dto.ClientCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ClientCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Clients().Find(execCtx, domainclient.Filter{Skip: q.Skip, Limit: q.Limit})
	if err != nil {
		return dto.ClientCollection{}, err
	}
	items := make([]dto.Client, 0, len(list))
	for _, c := range list {
		items = append(items, dto.MapClient(c))
	}
	return dto.ClientCollection{Items: items}, nil
}

// DeleteClientCommand removes a client after removing every reservation it
// owns.
type DeleteClientCommand struct {
	ID string
}

func (c DeleteClientCommand) Key() string { return deleteClientKey }

func (c DeleteClientCommand) RequiredRole() string { return string(domainclient.RoleAdmin) }

func (c DeleteClientCommand) ManagesTransaction() bool { return true }

type DeleteClientHandler struct {
	Engine *booking.Service
}

func (h *DeleteClientHandler) Handle(ctx context.Context, cmd DeleteClientCommand) (*dto.ClientDeleted, error) {
	if h.Engine == nil {
		return nil, booking.ErrServiceMisconfigured
	}
	removed, err := h.Engine.DeleteClient(ctx, domainclient.ID(cmd.ID))
	if err != nil {
		return nil, err
	}
	return &dto.ClientDeleted{ID: cmd.ID, ReservationsRemoved: removed}, nil
}

var (
	_ queries.Handler[GetClientQuery, dto.Client]               = (*GetClientHandler)(nil)
	_ queries.Handler[ListClientsQuery, dto.ClientCollection]   = (*ListClientsHandler)(nil)
	_ commands.Handler[DeleteClientCommand, *dto.ClientDeleted] = (*DeleteClientHandler)(nil)
	_ middleware.RoleRestricted                                 = DeleteClientCommand{}
	_ middleware.SelfManagedCommand                             = DeleteClientCommand{}
)
