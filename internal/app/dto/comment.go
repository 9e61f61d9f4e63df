package dto

import (
	"time"

	domaincomment "hotelbook/internal/domain/comment"
)

type Comment struct {
	ID            string    `json:"id"`
	ReservationID string    `json:"reservation_id"`
	AuthorID      string    `json:"author_id"`
	AuthorName    string    `json:"author_name,omitempty"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
}

type CommentCollection struct {
	Items []Comment `json:"items"`
}

func MapComment(c *domaincomment.Comment, authorName string) Comment {
	return Comment{
		ID:            string(c.ID),
		ReservationID: string(c.ReservationID),
		AuthorID:      string(c.AuthorID),
		AuthorName:    authorName,
		Content:       c.Content,
		CreatedAt:     c.CreatedAt,
	}
}
