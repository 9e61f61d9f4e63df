package comment

import (
	"context"
	"errors"
	"strings"
	"time"

	"hotelbook/internal/domain/client"
	"hotelbook/internal/domain/reservation"
)

var (
	ErrIDRequired          = errors.New("comment: id is required")
	ErrContentRequired     = errors.New("comment: content must not be empty")
	ErrReservationRequired = errors.New("comment: reservation is required")
	ErrAuthorRequired      = errors.New("comment: author is required")
)

type ID string

// Comment is a review left by a client on one of their reservations.
type Comment struct {
	ID            ID
	ReservationID reservation.ID
	AuthorID      client.ID
	Content       string
	CreatedAt     time.Time
}

type Repository interface {
	Save(ctx context.Context, c *Comment) error
	ByReservations(ctx context.Context, ids []reservation.ID) ([]*Comment, error)
	DeleteByReservation(ctx context.Context, id reservation.ID) error
}

type CreateParams struct {
	ID            ID
	ReservationID reservation.ID
	AuthorID      client.ID
	Content       string
	CreatedAt     time.Time
}

func New(params CreateParams) (*Comment, error) {
	if strings.TrimSpace(string(params.ID)) == "" {
		return nil, ErrIDRequired
	}
	if params.ReservationID == "" {
		return nil, ErrReservationRequired
	}
	if params.AuthorID == "" {
		return nil, ErrAuthorRequired
	}
	content := strings.TrimSpace(params.Content)
	if content == "" {
		return nil, ErrContentRequired
	}
	now := params.CreatedAt
	if now.IsZero() {
		now = time.Now()
	}
	return &Comment{
		ID:            params.ID,
		ReservationID: params.ReservationID,
		AuthorID:      params.AuthorID,
		Content:       content,
		CreatedAt:     now.UTC(),
	}, nil
}
