package memory

import (
	"context"
	"sort"
	"sync"

	domainreservation "hotelbook/internal/domain/reservation"
	"hotelbook/internal/domain/shared/events"
)

// ReservationRepository stores reservations in memory. Save enforces
// optimistic versioning and code uniqueness.
type ReservationRepository struct {
	mu     sync.RWMutex
	items  map[domainreservation.ID]*domainreservation.Reservation
	byCode map[domainreservation.Code]domainreservation.ID
}

func NewReservationRepository() *ReservationRepository {
	return &ReservationRepository{
		items:  make(map[domainreservation.ID]*domainreservation.Reservation),
		byCode: make(map[domainreservation.Code]domainreservation.ID),
	}
}

func (r *ReservationRepository) ByID(ctx context.Context, id domainreservation.ID) (*domainreservation.Reservation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if res, ok := r.items[id]; ok {
		return cloneReservation(res), nil
	}
	return nil, domainreservation.ErrNotFound
}

func (r *ReservationRepository) CodeExists(ctx context.Context, code domainreservation.Code) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byCode[code]
	return ok, nil
}

// Find returns matching reservations, newest check-in first.
func (r *ReservationRepository) Find(ctx context.Context, filter domainreservation.Filter) ([]*domainreservation.Reservation, error) {
	r.mu.RLock()
	out := make([]*domainreservation.Reservation, 0)
	for _, res := range r.items {
		if filter.ClientID != "" && res.ClientID != filter.ClientID {
			continue
		}
		if filter.HotelID != "" && res.HotelID != filter.HotelID {
			continue
		}
		if filter.RoomID != "" && !res.HasRoom(filter.RoomID) {
			continue
		}
		if filter.CodeQuery != "" && !containsFold(string(res.Code), filter.CodeQuery) {
			continue
		}
		out = append(out, cloneReservation(res))
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].Range.CheckIn.Equal(out[j].Range.CheckIn) {
			return out[i].Code > out[j].Code
		}
		return out[i].Range.CheckIn.After(out[j].Range.CheckIn)
	})
	return paginate(out, filter.Skip, filter.Limit), nil
}

// CountConflicts counts reservations holding q.RoomID whose range conflicts
// with q.Range under q.Policy.
func (r *ReservationRepository) CountConflicts(ctx context.Context, q domainreservation.ConflictQuery) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, res := range r.items {
		if q.ExcludeID != "" && res.ID == q.ExcludeID {
			continue
		}
		if !res.HasRoom(q.RoomID) {
			continue
		}
		if res.Range.Conflicts(q.Range, q.Policy) {
			n++
		}
	}
	return n, nil
}

func (r *ReservationRepository) Save(ctx context.Context, res *domainreservation.Reservation) error {
	if res == nil || res.ID == "" {
		return domainreservation.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	prev, exists := r.items[res.ID]
	switch {
	case res.Version == 0 && exists:
		return domainreservation.ErrConcurrentUpdate
	case res.Version > 0 && (!exists || prev.Version != res.Version):
		return domainreservation.ErrConcurrentUpdate
	}
	if owner, ok := r.byCode[res.Code]; ok && owner != res.ID {
		return domainreservation.ErrDuplicateCode
	}
	if exists {
		delete(r.byCode, prev.Code)
	}
	res.Version++
	r.items[res.ID] = cloneReservation(res)
	r.byCode[res.Code] = res.ID
	return nil
}

func (r *ReservationRepository) Delete(ctx context.Context, id domainreservation.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	res, ok := r.items[id]
	if !ok {
		return domainreservation.ErrNotFound
	}
	delete(r.byCode, res.Code)
	delete(r.items, id)
	return nil
}

func cloneReservation(res *domainreservation.Reservation) *domainreservation.Reservation {
	if res == nil {
		return nil
	}
	copyRes := *res
	copyRes.EventRecorder = events.EventRecorder{}
	copyRes.RoomIDs = append(copyRes.RoomIDs[:0:0], res.RoomIDs...)
	return &copyRes
}
