package booking

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	domainclient "hotelbook/internal/domain/client"
	domainhotel "hotelbook/internal/domain/hotel"
)

var ErrLockTimeout = errors.New("booking: timed out waiting for room lock")

// RoomLocker provides mutual exclusion per key. Lock blocks until every key is
// held or ctx ends; release frees all of them.
type RoomLocker interface {
	Lock(ctx context.Context, keys []string) (release func(), err error)
}

// LockKeys maps room ids to lock keys, sorted and de-duplicated so that
// concurrent bookings always acquire in the same order.
func LockKeys(rooms []domainhotel.RoomID) []string {
	seen := make(map[string]struct{}, len(rooms))
	keys := make([]string, 0, len(rooms))
	for _, id := range rooms {
		if id == "" {
			continue
		}
		key := "room:" + string(id)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ClientLockKey guards the reservation set of a client. Reservation writes
// hold it for every client they touch, so a client delete sees them all.
func ClientLockKey(id domainclient.ID) string {
	return "client:" + string(id)
}

// BookingKeys is the sorted lock set of a reservation write.
func BookingKeys(rooms []domainhotel.RoomID, clients ...domainclient.ID) []string {
	keys := LockKeys(rooms)
	for _, id := range clients {
		if id == "" {
			continue
		}
		key := ClientLockKey(id)
		if !slices.Contains(keys, key) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	return keys
}

// HotelLockKey guards the room set of a hotel. It sorts before every room key,
// so a holder may go on to lock rooms without breaking the global order.
func HotelLockKey(id domainhotel.ID) string {
	return "hotel:" + string(id)
}

// Acquire locks keys, waiting at most wait. Running out of wait while ctx is
// still live yields ErrLockTimeout.
func Acquire(ctx context.Context, locker RoomLocker, wait time.Duration, keys []string) (func(), error) {
	if len(keys) == 0 {
		return func() {}, nil
	}
	if locker == nil {
		return nil, ErrServiceMisconfigured
	}
	if wait <= 0 {
		wait = defaultLockWait
	}
	lockCtx, cancel := context.WithTimeout(ctx, wait)
	defer cancel()
	release, err := locker.Lock(lockCtx, keys)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return nil, ErrLockTimeout
		}
		return nil, err
	}
	return release, nil
}
