package reservation

import (
	"errors"
	"fmt"
	"regexp"
	"testing"
	"time"

	"hotelbook/internal/domain/hotel"
	"hotelbook/internal/domain/shared/daterange"
)

var codeFormat = regexp.MustCompile(`^RES-\d{14}-\d{3}$`)

func TestRandomCodesFormat(t *testing.T) {
	now := time.Date(2025, time.January, 10, 8, 5, 9, 0, time.UTC)
	code := RandomCodes{}.Next(now)
	if !codeFormat.MatchString(string(code)) {
		t.Fatalf("unexpected code %q", code)
	}
	if got := string(code)[4:18]; got != "20250110080509" {
		t.Fatalf("expected timestamp 20250110080509, got %s", got)
	}
	for i := 0; i < 200; i++ {
		var suffix int
		if _, err := fmt.Sscanf(string(RandomCodes{}.Next(now))[19:], "%d", &suffix); err != nil {
			t.Fatalf("parse suffix: %v", err)
		}
		if suffix < 100 || suffix > 999 {
			t.Fatalf("suffix out of range: %d", suffix)
		}
	}
	fixed := RandomCodes{Suffix: func() int { return 7 }}.Next(now)
	if fixed != "RES-20250110080509-007" {
		t.Fatalf("expected zero padded suffix, got %s", fixed)
	}
}

func TestNewRecordsCreatedEvent(t *testing.T) {
	rng := daterange.DateRange{
		CheckIn:  time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2025, time.January, 12, 0, 0, 0, 0, time.UTC),
	}
	r, err := New(CreateParams{ID: "r1", Code: "RES-20250110080509-123", HotelID: "h1", ClientID: "c1", RoomIDs: []hotel.RoomID{"room-a"}, Range: rng})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	evs := r.DrainEvents()
	if len(evs) != 1 || evs[0].EventName() != "reservation.created" {
		t.Fatalf("expected one created event, got %v", evs)
	}
	if len(r.PendingEvents()) != 0 {
		t.Fatal("expected events drained")
	}
	if _, err := New(CreateParams{ID: "r2", Code: "RES-20250110080509-123", HotelID: "h1", RoomIDs: []hotel.RoomID{"a"}, Range: daterange.DateRange{CheckIn: rng.CheckOut, CheckOut: rng.CheckIn}}); !errors.Is(err, ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
	if _, err := New(CreateParams{ID: "r2", Code: "bad", HotelID: "h1", RoomIDs: []hotel.RoomID{"a"}, Range: rng}); !errors.Is(err, ErrInvalidCode) {
		t.Fatalf("expected ErrInvalidCode, got %v", err)
	}
}

func TestCancelRequiresOwner(t *testing.T) {
	r := &Reservation{ID: "r1", ClientID: "c1"}
	if err := r.Cancel("c2", time.Now()); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	orphan := &Reservation{ID: "r2"}
	if err := orphan.Cancel("c1", time.Now()); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("orphaned reservation cannot be cancelled by a client, got %v", err)
	}
	if err := r.Cancel("c1", time.Now()); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
}

func TestKindOf(t *testing.T) {
	unavailable := fmt.Errorf("book: %w", &RoomUnavailableError{RoomID: "a", RoomNumber: "101"})
	cases := map[Kind]error{
		KindRoomUnavailable:   unavailable,
		KindInvalidReference:  fmt.Errorf("%w: hotel h9", ErrInvalidReference),
		KindNotFound:          hotel.ErrNotFound,
		KindInvalidDateRange:  ErrInvalidDateRange,
		KindNoRoomsSelected:   ErrNoRoomsSelected,
		KindRoomHotelMismatch: ErrRoomHotelMismatch,
		KindNotAuthorized:     ErrNotAuthorized,
		KindInternal:          errors.New("boom"),
	}
	for want, err := range cases {
		if got := KindOf(err); got != want {
			t.Errorf("KindOf(%v): expected %s, got %s", err, want, got)
		}
	}
	var target *RoomUnavailableError
	if !errors.As(unavailable, &target) || target.RoomNumber != "101" {
		t.Fatal("expected room number to be recoverable from the error")
	}
}
