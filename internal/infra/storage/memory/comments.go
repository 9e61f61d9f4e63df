package memory

import (
	"context"
	"sort"
	"sync"

	domaincomment "hotelbook/internal/domain/comment"
	domainreservation "hotelbook/internal/domain/reservation"
)

// CommentRepository groups comments by reservation.
type CommentRepository struct {
	mu    sync.RWMutex
	items map[domainreservation.ID][]domaincomment.Comment
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{items: make(map[domainreservation.ID][]domaincomment.Comment)}
}

func (r *CommentRepository) Save(ctx context.Context, c *domaincomment.Comment) error {
	if c == nil || c.ID == "" {
		return domaincomment.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.items[c.ReservationID]
	for i := range list {
		if list[i].ID == c.ID {
			list[i] = *c
			return nil
		}
	}
	r.items[c.ReservationID] = append(list, *c)
	return nil
}

// ByReservations returns comments of the given reservations, oldest first.
func (r *CommentRepository) ByReservations(ctx context.Context, ids []domainreservation.ID) ([]*domaincomment.Comment, error) {
	r.mu.RLock()
	out := make([]*domaincomment.Comment, 0)
	for _, id := range ids {
		for _, c := range r.items[id] {
			copyComment := c
			out = append(out, &copyComment)
		}
	}
	r.mu.RUnlock()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *CommentRepository) DeleteByReservation(ctx context.Context, id domainreservation.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, id)
	return nil
}
