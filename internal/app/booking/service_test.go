package booking_test

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"hotelbook/internal/app/booking"
	domainclient "hotelbook/internal/domain/client"
	domaincomment "hotelbook/internal/domain/comment"
	domainhotel "hotelbook/internal/domain/hotel"
	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/daterange"
	"hotelbook/internal/infra/lock"
	"hotelbook/internal/infra/storage/memory"
)

var codeFormat = regexp.MustCompile(`^RES-\d{14}-\d{3}$`)

type fixture struct {
	svc     *booking.Service
	factory memory.Factory
	outbox  *memory.Outbox
}

func jan(d int) time.Time {
	return time.Date(2025, time.January, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T, policy daterange.OverlapPolicy) *fixture {
	t.Helper()
	ctx := context.Background()
	factory := memory.NewFactory()
	for _, h := range []*domainhotel.Hotel{
		{ID: "h1", Name: "Hôtel Paris Centre", City: "Paris", Category: 4},
		{ID: "h2", Name: "Lyon Part-Dieu", City: "Lyon", Category: 3},
	} {
		if err := factory.HotelsRepo.Save(ctx, h); err != nil {
			t.Fatalf("seed hotel: %v", err)
		}
	}
	for _, r := range []*domainhotel.Room{
		{ID: "room-a", HotelID: "h1", Number: "101", Capacity: 2, Price: 120},
		{ID: "room-b", HotelID: "h1", Number: "102", Capacity: 1, Price: 90},
		{ID: "room-c", HotelID: "h2", Number: "201", Capacity: 2, Price: 110},
	} {
		if err := factory.RoomsRepo.Save(ctx, r); err != nil {
			t.Fatalf("seed room: %v", err)
		}
	}
	for _, c := range []*domainclient.Client{
		{ID: "alice", Name: "Alice", Email: "alice@example.com", Phone: "0600000001"},
		{ID: "bob", Name: "Bob", Email: "bob@example.com", Phone: "0600000002"},
	} {
		if err := factory.ClientsRepo.Save(ctx, c); err != nil {
			t.Fatalf("seed client: %v", err)
		}
	}
	box := memory.NewOutbox(nil)
	svc := &booking.Service{
		UoWFactory: factory,
		Locker:     lock.NewMemory(),
		Checker:    booking.Checker{Policy: policy},
		Outbox:     box,
		LockWait:   time.Second,
		Now:        func() time.Time { return time.Date(2024, time.December, 1, 9, 30, 15, 0, time.UTC) },
	}
	return &fixture{svc: svc, factory: factory, outbox: box}
}

func (f *fixture) book(t *testing.T, client domainclient.ID, in, out int, rooms ...domainhotel.RoomID) (*domainreservation.Reservation, error) {
	t.Helper()
	return f.svc.CreateReservation(context.Background(), booking.CreateRequest{
		HotelID:  "h1",
		ClientID: client,
		RoomIDs:  rooms,
		CheckIn:  jan(in),
		CheckOut: jan(out),
	})
}

func (f *fixture) count(t *testing.T) int {
	t.Helper()
	all, err := f.factory.ReservationsRepo.Find(context.Background(), domainreservation.Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	return len(all)
}

func TestBookingScenario(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)

	first, err := f.book(t, "alice", 10, 12, "room-a")
	if err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if !codeFormat.MatchString(string(first.Code)) {
		t.Fatalf("unexpected code %q", first.Code)
	}
	if string(first.Code)[4:18] != "20241201093015" {
		t.Fatalf("code must carry the booking time, got %s", first.Code)
	}

	_, err = f.book(t, "bob", 11, 13, "room-a")
	var unavailable *domainreservation.RoomUnavailableError
	if !errors.As(err, &unavailable) || unavailable.RoomNumber != "101" {
		t.Fatalf("expected RoomUnavailable for 101, got %v", err)
	}

	_, err = f.book(t, "bob", 12, 14, "room-a")
	if !errors.Is(err, domainreservation.ErrRoomUnavailable) {
		t.Fatalf("touching boundary must conflict under inclusive policy, got %v", err)
	}

	if _, err := f.book(t, "bob", 13, 15, "room-a"); err != nil {
		t.Fatalf("non-touching booking should succeed: %v", err)
	}
	if got := f.count(t); got != 2 {
		t.Fatalf("expected 2 reservations, got %d", got)
	}
}

func TestStrictPolicyAllowsBackToBack(t *testing.T) {
	f := newFixture(t, daterange.Strict)
	if _, err := f.book(t, "alice", 10, 12, "room-a"); err != nil {
		t.Fatalf("first booking: %v", err)
	}
	if _, err := f.book(t, "bob", 12, 14, "room-a"); err != nil {
		t.Fatalf("back-to-back should succeed under strict policy: %v", err)
	}
	if _, err := f.book(t, "bob", 11, 12, "room-a"); !errors.Is(err, domainreservation.ErrRoomUnavailable) {
		t.Fatalf("overlap must still conflict, got %v", err)
	}
}

func TestCreateValidation(t *testing.T) {
	cases := []struct {
		name string
		req  booking.CreateRequest
		want error
	}{
		{
			name: "unknown hotel",
			req:  booking.CreateRequest{HotelID: "nope", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(1), CheckOut: jan(2)},
			want: domainreservation.ErrInvalidReference,
		},
		{
			name: "unknown client",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "nobody", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(1), CheckOut: jan(2)},
			want: domainreservation.ErrInvalidReference,
		},
		{
			name: "reference checked before rooms",
			req:  booking.CreateRequest{HotelID: "nope", ClientID: "alice", CheckIn: jan(2), CheckOut: jan(1)},
			want: domainreservation.ErrInvalidReference,
		},
		{
			name: "no rooms",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", CheckIn: jan(1), CheckOut: jan(2)},
			want: domainreservation.ErrNoRoomsSelected,
		},
		{
			name: "rooms checked before dates",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", CheckIn: jan(2), CheckOut: jan(1)},
			want: domainreservation.ErrNoRoomsSelected,
		},
		{
			name: "end equals start",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(3), CheckOut: jan(3)},
			want: domainreservation.ErrInvalidDateRange,
		},
		{
			name: "end before start",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(4), CheckOut: jan(3)},
			want: domainreservation.ErrInvalidDateRange,
		},
		{
			name: "room of another hotel",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"room-a", "room-c"}, CheckIn: jan(1), CheckOut: jan(2)},
			want: domainreservation.ErrRoomHotelMismatch,
		},
		{
			name: "missing room",
			req:  booking.CreateRequest{HotelID: "h1", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"ghost"}, CheckIn: jan(1), CheckOut: jan(2)},
			want: domainreservation.ErrRoomHotelMismatch,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, daterange.Inclusive)
			_, err := f.svc.CreateReservation(context.Background(), tc.req)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
			if got := f.count(t); got != 0 {
				t.Fatalf("nothing may be persisted on failure, got %d", got)
			}
		})
	}
}

func TestMultiRoomBookingIsAllOrNothing(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	if _, err := f.book(t, "alice", 10, 12, "room-b"); err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	_, err := f.book(t, "bob", 11, 13, "room-a", "room-b")
	var unavailable *domainreservation.RoomUnavailableError
	if !errors.As(err, &unavailable) || unavailable.RoomID != "room-b" {
		t.Fatalf("expected room-b unavailable, got %v", err)
	}
	free, err := f.svc.CheckAvailability(context.Background(), "room-a", jan(11), jan(13), "")
	if err != nil || !free {
		t.Fatalf("room-a must stay free after a rejected booking: %v %v", free, err)
	}
}

func TestUpdateExcludesItself(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	res, err := f.book(t, "alice", 10, 12, "room-a")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	same := booking.UpdateRequest{ID: res.ID, HotelID: "h1", ClientID: "alice", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(10), CheckOut: jan(12)}
	if _, err := f.svc.UpdateReservation(ctx, same); err != nil {
		t.Fatalf("same rooms and dates must succeed: %v", err)
	}

	extended := same
	extended.RoomIDs = []domainhotel.RoomID{"room-b"}
	extended.CheckOut = jan(14)
	updated, err := f.svc.UpdateReservation(ctx, extended)
	if err != nil {
		t.Fatalf("replace rooms: %v", err)
	}
	if len(updated.RoomIDs) != 1 || updated.RoomIDs[0] != "room-b" {
		t.Fatalf("room set must be replaced wholesale, got %v", updated.RoomIDs)
	}
	free, err := f.svc.CheckAvailability(ctx, "room-a", jan(10), jan(12), "")
	if err != nil || !free {
		t.Fatalf("room-a should be released by the edit: %v %v", free, err)
	}

	other, err := f.book(t, "bob", 20, 22, "room-a")
	if err != nil {
		t.Fatalf("book other: %v", err)
	}
	clash := booking.UpdateRequest{ID: other.ID, HotelID: "h1", ClientID: "bob", RoomIDs: []domainhotel.RoomID{"room-b"}, CheckIn: jan(13), CheckOut: jan(15)}
	if _, err := f.svc.UpdateReservation(ctx, clash); !errors.Is(err, domainreservation.ErrRoomUnavailable) {
		t.Fatalf("edit onto an occupied room must fail, got %v", err)
	}
	stored, _ := f.factory.ReservationsRepo.ByID(ctx, other.ID)
	if !stored.HasRoom("room-a") || !stored.Range.CheckIn.Equal(jan(20)) {
		t.Fatalf("failed edit must leave the reservation intact: %+v", stored)
	}

	if _, err := f.svc.UpdateReservation(ctx, booking.UpdateRequest{ID: "missing", HotelID: "h1", ClientID: "bob", RoomIDs: []domainhotel.RoomID{"room-a"}, CheckIn: jan(1), CheckOut: jan(2)}); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCancelRequiresOwner(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	res, err := f.book(t, "alice", 10, 12, "room-a")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	if err := f.svc.CancelReservation(ctx, res.ID, "bob"); !errors.Is(err, domainreservation.ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if _, err := f.factory.ReservationsRepo.ByID(ctx, res.ID); err != nil {
		t.Fatalf("reservation must survive a rejected cancel: %v", err)
	}
	if err := f.svc.CancelReservation(ctx, res.ID, "alice"); err != nil {
		t.Fatalf("owner cancel: %v", err)
	}
	if _, err := f.factory.ReservationsRepo.ByID(ctx, res.ID); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatalf("expected reservation removed, got %v", err)
	}
	if err := f.svc.CancelReservation(ctx, res.ID, "alice"); !errors.Is(err, domainreservation.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second cancel, got %v", err)
	}
}

func TestAdminDeleteRemovesComments(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	res, err := f.book(t, "alice", 10, 12, "room-a")
	if err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	_ = f.factory.CommentsRepo.Save(ctx, &domaincomment.Comment{ID: "cm1", ReservationID: res.ID, AuthorID: "alice", Content: "great"})
	if err := f.svc.AdminDeleteReservation(ctx, res.ID); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	comments, _ := f.factory.CommentsRepo.ByReservations(ctx, []domainreservation.ID{res.ID})
	if len(comments) != 0 {
		t.Fatalf("comments must be removed with the reservation, got %d", len(comments))
	}
	names := make([]string, 0)
	for _, rec := range f.outbox.Pending() {
		names = append(names, rec.Name)
	}
	if len(names) != 2 || names[0] != "reservation.created" || names[1] != "reservation.deleted" {
		t.Fatalf("unexpected events: %v", names)
	}
}

func TestDeleteClientCascades(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	if _, err := f.book(t, "alice", 1, 3, "room-a"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.book(t, "alice", 5, 7, "room-b"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.book(t, "bob", 10, 12, "room-a"); err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	removed, err := f.svc.DeleteClient(ctx, "alice")
	if err != nil {
		t.Fatalf("delete client: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 reservations removed, got %d", removed)
	}
	if _, err := f.factory.ClientsRepo.ByID(ctx, "alice"); !errors.Is(err, domainclient.ErrNotFound) {
		t.Fatalf("client should be gone, got %v", err)
	}
	free, err := f.svc.CheckAvailability(ctx, "room-a", jan(1), jan(3), "")
	if err != nil || !free {
		t.Fatalf("cascade must free the rooms: %v %v", free, err)
	}
	if got := f.count(t); got != 1 {
		t.Fatalf("expected bob's reservation to remain, got %d", got)
	}
}

// flakyComments fails DeleteByReservation once, on call number failOn.
type flakyComments struct {
	domaincomment.Repository
	calls  int
	failOn int
}

func (c *flakyComments) DeleteByReservation(ctx context.Context, id domainreservation.ID) error {
	c.calls++
	if c.calls == c.failOn {
		return errors.New("comments store unavailable")
	}
	return c.Repository.DeleteByReservation(ctx, id)
}

func TestDeleteClientCanBeRetried(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	if _, err := f.book(t, "alice", 1, 3, "room-a"); err != nil {
		t.Fatalf("book: %v", err)
	}
	if _, err := f.book(t, "alice", 5, 7, "room-b"); err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	flaky := f.factory
	flaky.CommentsRepo = &flakyComments{Repository: f.factory.CommentsRepo, failOn: 2}
	f.svc.UoWFactory = flaky

	if _, err := f.svc.DeleteClient(ctx, "alice"); err == nil {
		t.Fatal("expected the first run to fail")
	}
	if _, err := f.factory.ClientsRepo.ByID(ctx, "alice"); err != nil {
		t.Fatalf("client must survive a failed cascade: %v", err)
	}
	if got := f.count(t); got != 1 {
		t.Fatalf("memory store keeps the removal done before the failure, got %d reservations", got)
	}

	removed, err := f.svc.DeleteClient(ctx, "alice")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if removed != 1 || f.count(t) != 0 {
		t.Fatalf("retry removed %d, %d left", removed, f.count(t))
	}
	if _, err := f.factory.ClientsRepo.ByID(ctx, "alice"); !errors.Is(err, domainclient.ErrNotFound) {
		t.Fatalf("client should be gone, got %v", err)
	}
}

func TestBookingWaitsForClientLock(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	f.svc.LockWait = 20 * time.Millisecond
	release, err := f.svc.Locker.Lock(context.Background(), []string{booking.ClientLockKey("alice")})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()
	if _, err := f.book(t, "alice", 10, 12, "room-a"); !errors.Is(err, booking.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
	if _, err := f.book(t, "bob", 10, 12, "room-a"); err != nil {
		t.Fatalf("another client is not blocked: %v", err)
	}
}

func TestConcurrentBookingsNeverDoubleBook(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	const workers = 16
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			client := domainclient.ID("alice")
			if i%2 == 1 {
				client = "bob"
			}
			rooms := []domainhotel.RoomID{"room-a", "room-b"}
			if i%3 == 0 {
				rooms = []domainhotel.RoomID{"room-b", "room-a"}
			}
			_, err := f.svc.CreateReservation(context.Background(), booking.CreateRequest{HotelID: "h1", ClientID: client, RoomIDs: rooms, CheckIn: jan(10), CheckOut: jan(12)})
			switch {
			case err == nil:
				mu.Lock()
				succeeded++
				mu.Unlock()
			case !errors.Is(err, domainreservation.ErrRoomUnavailable):
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	wg.Wait()
	if succeeded != 1 {
		t.Fatalf("expected exactly one booking to win, got %d", succeeded)
	}
	assertNoOverlap(t, f)
}

func assertNoOverlap(t *testing.T, f *fixture) {
	t.Helper()
	all, err := f.factory.ReservationsRepo.Find(context.Background(), domainreservation.Filter{})
	if err != nil {
		t.Fatalf("find: %v", err)
	}
	for i := range all {
		for j := i + 1; j < len(all); j++ {
			for _, room := range all[i].RoomIDs {
				if all[j].HasRoom(room) && all[i].Range.Touches(all[j].Range) {
					t.Fatalf("reservations %s and %s overlap on %s", all[i].ID, all[j].ID, room)
				}
			}
		}
	}
}

func TestLockTimeout(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	f.svc.LockWait = 20 * time.Millisecond
	release, err := f.svc.Locker.Lock(context.Background(), booking.LockKeys([]domainhotel.RoomID{"room-a"}))
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()
	if _, err := f.book(t, "alice", 10, 12, "room-a"); !errors.Is(err, booking.ErrLockTimeout) {
		t.Fatalf("expected ErrLockTimeout, got %v", err)
	}
}

func TestFindAvailableRooms(t *testing.T) {
	f := newFixture(t, daterange.Inclusive)
	if _, err := f.book(t, "alice", 10, 12, "room-a"); err != nil {
		t.Fatalf("book: %v", err)
	}
	ctx := context.Background()
	rooms, err := f.svc.FindAvailableRooms(ctx, "h1", daterange.DateRange{CheckIn: jan(11), CheckOut: jan(15)})
	if err != nil {
		t.Fatalf("find rooms: %v", err)
	}
	if len(rooms) != 2 || rooms[0].Available || !rooms[1].Available {
		t.Fatalf("unexpected availability: %+v", rooms)
	}
	ok, err := f.svc.HotelHasAvailability(ctx, "h1", daterange.DateRange{CheckIn: jan(11), CheckOut: jan(15)})
	if err != nil || !ok {
		t.Fatalf("hotel should still have room-b: %v %v", ok, err)
	}
	if _, err := f.svc.FindAvailableRooms(ctx, "h1", daterange.DateRange{CheckIn: jan(5), CheckOut: jan(5)}); !errors.Is(err, domainreservation.ErrInvalidDateRange) {
		t.Fatalf("expected ErrInvalidDateRange, got %v", err)
	}
}

func TestServiceRequiresLocker(t *testing.T) {
	svc := &booking.Service{UoWFactory: memory.NewFactory()}
	if _, err := svc.CreateReservation(context.Background(), booking.CreateRequest{}); !errors.Is(err, booking.ErrServiceMisconfigured) {
		t.Fatalf("expected ErrServiceMisconfigured, got %v", err)
	}
}
