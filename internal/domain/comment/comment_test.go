package comment

import (
	"errors"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	base := CreateParams{
		ID:            "c1",
		ReservationID: "r1",
		AuthorID:      "alice",
		Content:       "  quiet room, great view  ",
		CreatedAt:     time.Date(2025, 1, 10, 9, 0, 0, 0, time.FixedZone("CET", 3600)),
	}

	c, err := New(base)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.Content != "quiet room, great view" {
		t.Fatalf("content not trimmed: %q", c.Content)
	}
	if c.CreatedAt.Location() != time.UTC || c.CreatedAt.Hour() != 8 {
		t.Fatalf("created_at not normalised to UTC: %v", c.CreatedAt)
	}

	cases := []struct {
		name   string
		mutate func(p *CreateParams)
		want   error
	}{
		{"missing id", func(p *CreateParams) { p.ID = " " }, ErrIDRequired},
		{"missing reservation", func(p *CreateParams) { p.ReservationID = "" }, ErrReservationRequired},
		{"missing author", func(p *CreateParams) { p.AuthorID = "" }, ErrAuthorRequired},
		{"blank content", func(p *CreateParams) { p.Content = "\n\t" }, ErrContentRequired},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := base
			tc.mutate(&p)
			if _, err := New(p); !errors.Is(err, tc.want) {
				t.Fatalf("got %v, want %v", err, tc.want)
			}
		})
	}
}

func TestNewDefaultsCreatedAt(t *testing.T) {
	before := time.Now().UTC()
	c, err := New(CreateParams{ID: "c1", ReservationID: "r1", AuthorID: "a", Content: "ok"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if c.CreatedAt.Before(before.Add(-time.Second)) {
		t.Fatalf("created_at %v earlier than %v", c.CreatedAt, before)
	}
}
