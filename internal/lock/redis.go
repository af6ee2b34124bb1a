package lock

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still carries our token, so an expired lock
// re-acquired by another replica is never released by the previous holder.
var releaseScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("DEL", KEYS[1])
	end
	return 0
`)

// renewScript extends the expiry only while the key still carries our token.
var renewScript = redis.NewScript(`
	if redis.call("GET", KEYS[1]) == ARGV[1] then
		return redis.call("PEXPIRE", KEYS[1], ARGV[2])
	end
	return 0
`)

// Redis is a lock shared by every replica using the same Redis. The key expires after ttl so a
// crashed holder cannot block the slot forever, and it is renewed every ttl/3 while held.
type Redis struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
	retry  time.Duration
}

func NewRedis(rdb *redis.Client) *Redis {
	return &Redis{
		rdb:    rdb,
		prefix: "gym:slotlock",
		ttl:    5 * time.Second,
		retry:  25 * time.Millisecond,
	}
}

func (l *Redis) Lock(ctx context.Context, key string) (func(), error) {
	k := l.prefix + ":" + key
	token := uuid.NewString()

	for {
		ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return nil, fmt.Errorf("redis lock %s: %w", k, err)
		}
		if ok {
			stop := make(chan struct{})
			go l.keepAlive(k, token, stop)

			var once sync.Once
			return func() {
				once.Do(func() {
					close(stop)
					l.unlock(k, token)
				})
			}, nil
		}

		t := time.NewTimer(l.retry)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (l *Redis) keepAlive(key, token string, stop <-chan struct{}) {
	ticker := time.NewTicker(l.ttl / 3)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		renewed, err := renewScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int()
		cancel()
		if err != nil {
			log.Printf("[SlotLock] failed to renew %s: %v", key, err)
			continue
		}
		if renewed == 0 {
			log.Printf("[SlotLock] lost %s before release", key)
			return
		}
	}
}

func (l *Redis) unlock(key, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
		log.Printf("[SlotLock] failed to release %s: %v", key, err)
	}
}
