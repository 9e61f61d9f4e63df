package lock

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLockIsExclusive(t *testing.T) {
	locker := NewMemory()
	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), []string{"room:a", "room:b"})
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			release()
		}()
	}
	wg.Wait()
	if maxInside != 1 {
		t.Fatalf("expected exclusive access, saw %d holders", maxInside)
	}
	if len(locker.slots) != 0 {
		t.Fatalf("expected slots to be cleaned up, got %d", len(locker.slots))
	}
}

func TestMemoryLockHonoursContext(t *testing.T) {
	locker := NewMemory()
	release, err := locker.Lock(context.Background(), []string{"room:b"})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := locker.Lock(ctx, []string{"room:a", "room:b"}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	// room:a must have been released by the failed attempt.
	other, err := locker.Lock(context.Background(), []string{"room:a"})
	if err != nil {
		t.Fatalf("room:a should be free: %v", err)
	}
	other()
	release()
	release()
	if len(locker.slots) != 0 {
		t.Fatalf("expected slots to be cleaned up, got %d", len(locker.slots))
	}
}

func TestMemoryLockDisjointKeysDoNotBlock(t *testing.T) {
	locker := NewMemory()
	release, err := locker.Lock(context.Background(), []string{"room:a"})
	if err != nil {
		t.Fatalf("lock: %v", err)
	}
	defer release()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	other, err := locker.Lock(ctx, []string{"room:b"})
	if err != nil {
		t.Fatalf("disjoint key should not block: %v", err)
	}
	other()
}
