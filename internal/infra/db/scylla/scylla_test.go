package scylla

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gocql/gocql"

	domaincomment "hotelbook/internal/domain/comment"
	domainreservation "hotelbook/internal/domain/reservation"
)

func TestParseConsistency(t *testing.T) {
	cases := []struct {
		in   string
		want gocql.Consistency
	}{
		{"", gocql.Quorum},
		{"one", gocql.One},
		{"LOCAL_QUORUM", gocql.LocalQuorum},
	}
	for _, tc := range cases {
		got, err := ParseConsistency(tc.in)
		if err != nil {
			t.Fatalf("ParseConsistency(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("ParseConsistency(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
	if _, err := ParseConsistency("sometimes"); err == nil {
		t.Fatal("expected error for unknown consistency")
	}
}

func TestNewSessionRejectsBadKeyspace(t *testing.T) {
	if _, err := NewSession(Config{Hosts: []string{"127.0.0.1"}, Keyspace: "bad-name;"}, nil); err == nil {
		t.Fatal("expected invalid keyspace error")
	}
	if _, err := NewSession(Config{Keyspace: "hotelbook"}, nil); err == nil {
		t.Fatal("expected missing hosts error")
	}
}

func TestRepositoryWithoutSession(t *testing.T) {
	repo := NewCommentRepository(nil)
	ctx := context.Background()
	if err := repo.Save(ctx, &domaincomment.Comment{ID: "c1"}); !errors.Is(err, ErrSessionMissing) {
		t.Fatalf("Save = %v", err)
	}
	if _, err := repo.ByReservations(ctx, []domainreservation.ID{"res-1"}); !errors.Is(err, ErrSessionMissing) {
		t.Fatalf("ByReservations = %v", err)
	}
	if err := repo.DeleteByReservation(ctx, "res-1"); !errors.Is(err, ErrSessionMissing) {
		t.Fatalf("DeleteByReservation = %v", err)
	}
}

func TestSortByCreated(t *testing.T) {
	base := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	list := []*domaincomment.Comment{
		{ID: "late", CreatedAt: base.Add(2 * time.Hour)},
		{ID: "early", CreatedAt: base},
		{ID: "mid", CreatedAt: base.Add(time.Hour)},
	}
	sortByCreated(list)
	if list[0].ID != "early" || list[1].ID != "mid" || list[2].ID != "late" {
		t.Fatalf("order = %s %s %s", list[0].ID, list[1].ID, list[2].ID)
	}
}
