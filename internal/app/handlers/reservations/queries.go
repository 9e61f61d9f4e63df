package reservations

import (
	"context"
	"log/slog"
	"strings"

	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/queries"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

const (
	getReservationKey           = "reservations.get"
	listClientReservationsKey   = "reservations.mine"
	listReservationsKey         = "reservations.admin_list"
	defaultAdminReservationPage = 20
)

// GetReservationQuery loads one reservation. Non-admin requesters only see
// their own reservations.
type GetReservationQuery struct {
	ID          string
	RequesterID string
	AsAdmin     bool
}

func (q GetReservationQuery) Key() string { return getReservationKey }

type GetReservationHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *GetReservationHandler) Handle(ctx context.Context, q GetReservationQuery) (dto.Reservation, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.Reservation{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	res, err := unit.Reservations().ByID(execCtx, domainreservation.ID(q.ID))
	if err != nil {
		return dto.Reservation{}, err
	}
	if !q.AsAdmin && !res.OwnedBy(domainclient.ID(q.RequesterID)) {
		return dto.Reservation{}, domainreservation.ErrNotAuthorized
	}
	return newViewer(unit).view(execCtx, res)
}

type ListClientReservationsQuery struct {
	ClientID string
}

func (q ListClientReservationsQuery) Key() string { return listClientReservationsKey }

type ListClientReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Logger     *slog.Logger
}

func (h *ListClientReservationsHandler) Handle(ctx context.Context, q ListClientReservationsQuery) (dto.ReservationCollection, error) {
	clientID := strings.TrimSpace(q.ClientID)
	if clientID == "" {
		return dto.ReservationCollection{}, middleware.ErrUnauthenticated
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Reservations().Find(execCtx, domainreservation.Filter{ClientID: domainclient.ID(clientID)})
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	out, err := newViewer(unit).viewAll(execCtx, list)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if h.Logger != nil {
		h.Logger.Debug("client reservations listed", "client_id", clientID, "count", len(out.Items))
	}
	return out, nil
}

// ListReservationsQuery is the administrative listing; Code matches a
// substring of the reservation code.
type ListReservationsQuery struct {
	Code    string
	HotelID string
	Skip    int
	Limit   int
}

func (q ListReservationsQuery) Key() string { return listReservationsKey }

func (q ListReservationsQuery) RequiredRole() string { return string(domainclient.RoleAdmin) }

type ListReservationsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReservationsHandler) Handle(ctx context.Context, q ListReservationsQuery) (dto.ReservationCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	limit := q.Limit
	if limit <= 0 {
		limit = defaultAdminReservationPage
	}
	list, err := unit.Reservations().Find(execCtx, domainreservation.Filter{
		HotelID:   domainhotel.ID(q.HotelID),
		CodeQuery: strings.TrimSpace(q.Code),
		Skip:      q.Skip,
		Limit:     limit,
	})
	if err != nil {
		return dto.ReservationCollection{}, err
	}
	return newViewer(unit).viewAll(execCtx, list)
}

var (
	_ queries.Handler[GetReservationQuery, dto.Reservation]                   = (*GetReservationHandler)(nil)
	_ queries.Handler[ListClientReservationsQuery, dto.ReservationCollection] = (*ListClientReservationsHandler)(nil)
	_ queries.Handler[ListReservationsQuery, dto.ReservationCollection]       = (*ListReservationsHandler)(nil)
	_ middleware.RoleRestricted                                               = ListReservationsQuery{}
)
