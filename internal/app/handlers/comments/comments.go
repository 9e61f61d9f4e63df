package comments

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"hotelbook/internal/app/commands"
	"hotelbook/internal/app/dto"
	handlersupport "hotelbook/internal/app/handlers/support"
	"hotelbook/internal/app/queries"
	"hotelbook/internal/app/uow"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
)

const (
	addCommentKey          = "comments.add"
	listRoomCommentsKey    = "comments.room"
	listReservationComsKey = "comments.reservation"
)

// AddCommentCommand reviews a reservation. Only the reservation's client may
// comment on it.
type AddCommentCommand struct {
	ReservationID string
	AuthorID      string
	Content       string
}

func (c AddCommentCommand) Key() string { return addCommentKey }

func (c AddCommentCommand) Validate() error {
	if c.ReservationID == "" {
		return domaincomment.ErrReservationRequired
	}
	if c.AuthorID == "" {
		return domaincomment.ErrAuthorRequired
	}
	return nil
}

type AddCommentHandler struct {
	UoWFactory uow.UoWFactory
	NewID      func() string
	Now        func() time.Time
	Logger     *slog.Logger
}

func (h *AddCommentHandler) Handle(ctx context.Context, cmd AddCommentCommand) (*dto.Comment, error) {
	var out dto.Comment
	err := handlersupport.Managed(ctx, h.UoWFactory, func(ctx context.Context, unit uow.UnitOfWork) error {
		res, err := unit.Reservations().ByID(ctx, domainreservation.ID(cmd.ReservationID))
		if err != nil {
			return err
		}
		author := domainclient.ID(cmd.AuthorID)
		if !res.OwnedBy(author) {
			return domainreservation.ErrNotAuthorized
		}
		id := uuid.NewString()
		if h.NewID != nil {
			id = h.NewID()
		}
		now := time.Now().UTC()
		if h.Now != nil {
			now = h.Now().UTC()
		}
		c, err := domaincomment.New(domaincomment.CreateParams{
			ID:            domaincomment.ID(id),
			ReservationID: res.ID,
			AuthorID:      author,
			Content:       cmd.Content,
			CreatedAt:     now,
		})
		if err != nil {
			return err
		}
		if err := unit.Comments().Save(ctx, c); err != nil {
			return err
		}
		name := ""
		if client, err := unit.Clients().ByID(ctx, author); err == nil {
			name = client.Name
		}
		out = dto.MapComment(c, name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if h.Logger != nil {
		h.Logger.Info("comment added", "comment_id", out.ID, "reservation_id", out.ReservationID)
	}
	return &out, nil
}

// ListRoomCommentsQuery returns the comments left on reservations that
// include the room.
type ListRoomCommentsQuery struct {
	RoomID string
}

func (q ListRoomCommentsQuery) Key() string { return listRoomCommentsKey }

type ListRoomCommentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListRoomCommentsHandler) Handle(ctx context.Context, q ListRoomCommentsQuery) (dto.CommentCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CommentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	room, err := unit.Rooms().ByID(execCtx, domainhotel.RoomID(q.RoomID))
	if err != nil {
		return dto.CommentCollection{}, err
	}
	list, err := unit.Reservations().Find(execCtx, domainreservation.Filter{RoomID: room.ID})
	if err != nil {
		return dto.CommentCollection{}, err
	}
	ids := make([]domainreservation.ID, 0, len(list))
	for _, res := range list {
		ids = append(ids, res.ID)
	}
	return collect(execCtx, unit, ids)
}

type ListReservationCommentsQuery struct {
	ReservationID string
}

func (q ListReservationCommentsQuery) Key() string { return listReservationComsKey }

type ListReservationCommentsHandler struct {
	UoWFactory uow.UoWFactory
}

func (h *ListReservationCommentsHandler) Handle(ctx context.Context, q ListReservationCommentsQuery) (dto.CommentCollection, error) {
	unit, execCtx, cleanup, err := handlersupport.BeginReadOnlyUnit(ctx, h.UoWFactory)
	if err != nil {
		return dto.CommentCollection{}, err
	}
	if cleanup != nil {
		defer cleanup()
	}
	res, err := unit.Reservations().ByID(execCtx, domainreservation.ID(q.ReservationID))
	if err != nil {
		return dto.CommentCollection{}, err
	}
	return collect(execCtx, unit, []domainreservation.ID{res.ID})
}

func collect(ctx context.Context, unit uow.UnitOfWork, ids []domainreservation.ID) (dto.CommentCollection, error) {
	if len(ids) == 0 {
		return dto.CommentCollection{Items: []dto.Comment{}}, nil
	}
	list, err := unit.Comments().ByReservations(ctx, ids)
	if err != nil {
		return dto.CommentCollection{}, err
	}
	names := make(map[domainclient.ID]string)
	items := make([]dto.Comment, 0, len(list))
	for _, c := range list {
		name, ok := names[c.AuthorID]
		if !ok {
			client, err := unit.Clients().ByID(ctx, c.AuthorID)
			switch {
			case err == nil:
				name = client.Name
			case !errors.Is(err, domainclient.ErrNotFound):
				return dto.CommentCollection{}, err
			}
			names[c.AuthorID] = name
		}
		items = append(items, dto.MapComment(c, name))
	}
	return dto.CommentCollection{Items: items}, nil
}

var (
	_ commands.Handler[AddCommentCommand, *dto.Comment]                    = (*AddCommentHandler)(nil)
	_ queries.Handler[ListRoomCommentsQuery, dto.CommentCollection]        = (*ListRoomCommentsHandler)(nil)
	_ queries.Handler[ListReservationCommentsQuery, dto.CommentCollection] = (*ListReservationCommentsHandler)(nil)
)
