package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	domainhotel "hotelbook/internal/domain/hotel"
)

// HotelRepository stores hotels in memory.
type HotelRepository struct {
	mu    sync.RWMutex
	items map[domainhotel.ID]*domainhotel.Hotel
}

func NewHotelRepository() *HotelRepository {
	return &HotelRepository{items: make(map[domainhotel.ID]*domainhotel.Hotel)}
}

func (r *HotelRepository) ByID(ctx context.Context, id domainhotel.ID) (*domainhotel.Hotel, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.items[id]
	if !ok {
		return nil, domainhotel.ErrNotFound
	}
	copyHotel := *h
	return &copyHotel, nil
}

// Find returns hotels ordered by name.
func (r *HotelRepository) Find(ctx context.Context, filter domainhotel.Filter) ([]*domainhotel.Hotel, error) {
	r.mu.RLock()
	matches := make([]*domainhotel.Hotel, 0, len(r.items))
	for _, h := range r.items {
		if !h.Matches(filter.Query) {
			continue
		}
		copyHotel := *h
		matches = append(matches, &copyHotel)
	}
	r.mu.RUnlock()
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Name == matches[j].Name {
			return matches[i].ID < matches[j].ID
		}
		return matches[i].Name < matches[j].Name
	})
	return paginate(matches, filter.Skip, filter.Limit), nil
}

func (r *HotelRepository) Save(ctx context.Context, h *domainhotel.Hotel) error {
	if h == nil || h.ID == "" {
		return domainhotel.ErrIDRequired
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	copyHotel := *h
	r.items[h.ID] = &copyHotel
	return nil
}

func (r *HotelRepository) Delete(ctx context.Context, id domainhotel.ID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return domainhotel.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

// RoomRepository stores rooms in memory and indexes numbers per hotel.
type RoomRepository struct {
	mu       sync.RWMutex
	items    map[domainhotel.RoomID]*domainhotel.Room
	byNumber map[string]domainhotel.RoomID
}

func NewRoomRepository() *RoomRepository {
	return &RoomRepository{
		items:    make(map[domainhotel.RoomID]*domainhotel.Room),
		byNumber: make(map[string]domainhotel.RoomID),
	}
}

func (r *RoomRepository) ByID(ctx context.Context, id domainhotel.RoomID) (*domainhotel.Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	room, ok := r.items[id]
	if !ok {
		return nil, domainhotel.ErrRoomNotFound
	}
	copyRoom := *room
	return &copyRoom, nil
}

func (r *RoomRepository) ByHotel(ctx context.Context, hotelID domainhotel.ID) ([]*domainhotel.Room, error) {
	return r.Find(ctx, domainhotel.RoomFilter{HotelID: hotelID})
}

// Find returns rooms ordered by hotel then number.
func (r *RoomRepository) Find(ctx context.Context, filter domainhotel.RoomFilter) ([]*domainhotel.Room, error) {
	r.mu.RLock()
	matches := make([]*domainhotel.Room, 0)
	for _, room := range r.items {
		if filter.HotelID != "" && room.HotelID != filter.HotelID {
			continue
		}
		if !room.Matches(filter.Query) {
			continue
		}
		copyRoom := *room
		matches = append(matches, &copyRoom)
	}
	r.mu.RUnlock()
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].HotelID != matches[j].HotelID {
			return matches[i].HotelID < matches[j].HotelID
		}
		return matches[i].Number < matches[j].Number
	})
	return paginate(matches, filter.Skip, filter.Limit), nil
}

func (r *RoomRepository) Save(ctx context.Context, room *domainhotel.Room) error {
	if room == nil || room.ID == "" {
		return domainhotel.ErrRoomIDRequired
	}
	key := domainhotel.NumberKey(room.HotelID, room.Number)
	r.mu.Lock()
	defer r.mu.Unlock()
	if owner, ok := r.byNumber[key]; ok && owner != room.ID {
		return domainhotel.ErrRoomNumberTaken
	}
	if prev, ok := r.items[room.ID]; ok {
		delete(r.byNumber, domainhotel.NumberKey(prev.HotelID, prev.Number))
	}
	copyRoom := *room
	r.items[room.ID] = &copyRoom
	r.byNumber[key] = room.ID
	return nil
}

func (r *RoomRepository) Delete(ctx context.Context, id domainhotel.RoomID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	room, ok := r.items[id]
	if !ok {
		return domainhotel.ErrRoomNotFound
	}
	delete(r.byNumber, domainhotel.NumberKey(room.HotelID, room.Number))
	delete(r.items, id)
	return nil
}

func paginate[T any](items []T, skip, limit int) []T {
	if skip < 0 {
		skip = 0
	}
	if skip >= len(items) {
		return []T{}
	}
	items = items[skip:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(strings.TrimSpace(substr)))
}
