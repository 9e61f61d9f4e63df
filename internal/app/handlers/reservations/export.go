package reservations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/middleware"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/infra/storage/s3"
)

const exportReservationsKey = "reservations.export"

// ExportReservationsCommand writes every reservation to object storage as a
// single JSON document.
type ExportReservationsCommand struct{}

func (c ExportReservationsCommand) Key() string { return exportReservationsKey }

func (c ExportReservationsCommand) RequiredRole() string { return string(domainclient.RoleAdmin) }

type ExportReservationsHandler struct {
	UoWFactory uow.UoWFactory
	Uploader   s3.Uploader
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *ExportReservationsHandler) Handle(ctx context.Context, _ ExportReservationsCommand) (*dto.ExportResult, error) {
	if h.Uploader == nil {
		return nil, s3.ErrNotConfigured
	}
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return nil, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	list, err := unit.Reservations().Find(execCtx, domainreservation.Filter{})
	if err != nil {
		return nil, err
	}
	items, err := newViewer(unit).viewAll(execCtx, list)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if h.Now != nil {
		now = h.Now().UTC()
	}
	doc := dto.ReservationExport{GeneratedAt: now, Count: len(items.Items), Items: items.Items}
	body, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("exports/reservations-%s.json", now.Format("20060102T150405Z"))
	link, err := h.Uploader.Upload(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json")
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("reservations exported", "key", key, "count", doc.Count)
	}
	return &dto.ExportResult{Key: key, URL: link}, nil
}

var (
	_ commands.Handler[ExportReservationsCommand, *dto.ExportResult] = (*ExportReservationsHandler)(nil)
	_ middleware.RoleRestricted                                      = ExportReservationsCommand{}
)
