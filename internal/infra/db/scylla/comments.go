package scylla

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/gocql/gocql"

	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainreservation "hotelbook/internal/domain/reservation"
)

var ErrSessionMissing = errors.New("scylla session not initialized")

// CommentRepository stores comments partitioned by reservation. Writes are
// not part of the entity store transaction.
type CommentRepository struct {
	session *gocql.Session
}

func NewCommentRepository(session *gocql.Session) *CommentRepository {
	return &CommentRepository{session: session}
}

func (r *CommentRepository) Save(ctx context.Context, c *domaincomment.Comment) error {
	if r.session == nil {
		return ErrSessionMissing
	}
	return r.session.
		Query(`INSERT INTO comments_by_reservation (reservation_id, created_at, comment_id, author_id, content) VALUES (?, ?, ?, ?, ?)`,
			string(c.ReservationID), c.CreatedAt.UTC(), string(c.ID), string(c.AuthorID), c.Content).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}

func (r *CommentRepository) ByReservations(ctx context.Context, ids []domainreservation.ID) ([]*domaincomment.Comment, error) {
	if r.session == nil {
		return nil, ErrSessionMissing
	}
	var out []*domaincomment.Comment
	for _, id := range ids {
		iter := r.session.
			Query(`SELECT comment_id, author_id, content, created_at FROM comments_by_reservation WHERE reservation_id = ?`, string(id)).
			WithContext(ctx).
			Consistency(gocql.One).
			Iter()
		var (
			commentID string
			authorID  string
			content   string
			createdAt time.Time
		)
		for iter.Scan(&commentID, &authorID, &content, &createdAt) {
			out = append(out, &domaincomment.Comment{
				ID:            domaincomment.ID(commentID),
				ReservationID: id,
				AuthorID:      domainclient.ID(authorID),
				Content:       content,
				CreatedAt:     createdAt.UTC(),
			})
		}
		if err := iter.Close(); err != nil {
			return nil, err
		}
	}
	sortByCreated(out)
	return out, nil
}

func (r *CommentRepository) DeleteByReservation(ctx context.Context, id domainreservation.ID) error {
	if r.session == nil {
		return ErrSessionMissing
	}
	return r.session.
		Query(`DELETE FROM comments_by_reservation WHERE reservation_id = ?`, string(id)).
		WithContext(ctx).
		Consistency(gocql.Quorum).
		Exec()
}

func sortByCreated(list []*domaincomment.Comment) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].CreatedAt.Before(list[j].CreatedAt)
	})
}

var _ domaincomment.Repository = (*CommentRepository)(nil)
