package lock

import (
	"context"
	"sync"

	"hotelbook/internal/app/booking"
)

// Memory is an in-process booking.RoomLocker. Each key owns a one-slot
// channel; waiting honours ctx.
type Memory struct {
	mu    sync.Mutex
	slots map[string]*slot
}

type slot struct {
	ch   chan struct{}
	refs int
}

func NewMemory() *Memory {
	return &Memory{slots: make(map[string]*slot)}
}

// Lock acquires keys in the given order. On failure every key already held
// is released before returning.
func (m *Memory) Lock(ctx context.Context, keys []string) (func(), error) {
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		if err := m.acquire(ctx, key); err != nil {
			m.releaseAll(held)
			return nil, err
		}
		held = append(held, key)
	}
	var once sync.Once
	return func() { once.Do(func() { m.releaseAll(held) }) }, nil
}

func (m *Memory) acquire(ctx context.Context, key string) error {
	m.mu.Lock()
	s, ok := m.slots[key]
	if !ok {
		s = &slot{ch: make(chan struct{}, 1)}
		m.slots[key] = s
	}
	s.refs++
	m.mu.Unlock()

	select {
	case s.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		m.unref(key, s)
		return ctx.Err()
	}
}

func (m *Memory) releaseAll(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		m.mu.Lock()
		s := m.slots[keys[i]]
		m.mu.Unlock()
		if s == nil {
			continue
		}
		<-s.ch
		m.unref(keys[i], s)
	}
}

func (m *Memory) unref(key string, s *slot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.refs--
	if s.refs == 0 {
		delete(m.slots, key)
	}
}

var _ booking.RoomLocker = (*Memory)(nil)
