package lock

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"hotelbook/internal/app/booking"
)

const (
	defaultTTL   = 30 * time.Second
	defaultRetry = 25 * time.Millisecond
	redisOpLimit = 2 * time.Second
)

var ErrRedisClientMissing = errors.New("lock: redis client is required")

var (
	unlockScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("del", KEYS[1]) else return 0 end`)
	extendScript = redis.NewScript(`if redis.call("get", KEYS[1]) == ARGV[1] then return redis.call("pexpire", KEYS[1], ARGV[2]) else return 0 end`)
)

// Redis is a booking.RoomLocker shared by every instance pointed at the same
// server. Keys are held with SET NX PX and a random token; release only
// deletes keys still carrying that token. While a lock is held its keys are
// re-armed every TTL/3, so a slow transaction keeps them.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
	Retry  time.Duration
	Prefix string
	Logger *slog.Logger
}

func NewRedis(client *redis.Client, ttl time.Duration, prefix string) *Redis {
	return &Redis{Client: client, TTL: ttl, Retry: defaultRetry, Prefix: prefix}
}

func (l *Redis) Lock(ctx context.Context, keys []string) (func(), error) {
	if l.Client == nil {
		return nil, ErrRedisClientMissing
	}
	token := uuid.NewString()
	held := make([]string, 0, len(keys))
	for _, key := range keys {
		full := l.Prefix + key
		if err := l.acquire(ctx, full, token); err != nil {
			l.release(held, token)
			return nil, err
		}
		held = append(held, full)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.keepAlive(held, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done
			l.release(held, token)
		})
	}, nil
}

func (l *Redis) acquire(ctx context.Context, key, token string) error {
	retry := l.Retry
	if retry <= 0 {
		retry = defaultRetry
	}
	for {
		ok, err := l.Client.SetNX(ctx, key, token, l.ttl()).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}
		if ok {
			return nil
		}
		timer := time.NewTimer(retry)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Redis) keepAlive(keys []string, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl() / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			lost, err := l.extend(keys, token)
			if l.Logger == nil {
				continue
			}
			if err != nil {
				l.Logger.Warn("room lock refresh failed", "error", err)
			} else if lost > 0 {
				l.Logger.Warn("room lock keys expired while held", "lost", lost)
			}
		}
	}
}

// extend re-arms the TTL of every key still carrying token and reports how
// many were no longer held.
func (l *Redis) extend(keys []string, token string) (int, error) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpLimit)
	defer cancel()
	ttl := l.ttl().Milliseconds()
	lost := 0
	for _, key := range keys {
		n, err := extendScript.Run(ctx, l.Client, []string{key}, token, ttl).Int()
		if err != nil {
			return lost, err
		}
		if n == 0 {
			lost++
		}
	}
	return lost, nil
}

// release runs on a fresh context so keys are freed even when the caller's
// context has already ended.
func (l *Redis) release(keys []string, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), redisOpLimit)
	defer cancel()
	for i := len(keys) - 1; i >= 0; i-- {
		_ = unlockScript.Run(ctx, l.Client, []string{keys[i]}, token).Err()
	}
}

func (l *Redis) ttl() time.Duration {
	if l.TTL <= 0 {
		return defaultTTL
	}
	return l.TTL
}

var _ booking.RoomLocker = (*Redis)(nil)
