package redis

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// GenerationLock implements app.Locker across instances with a Redis
// SET NX key per course module. The TTL bounds how long a crashed
// holder can block regeneration.
type GenerationLock struct {
	client *redis.Client
	ttl    time.Duration
	retry  time.Duration
}

func NewGenerationLock(client *redis.Client, ttl time.Duration) *GenerationLock {
	return &GenerationLock{
		client: client,
		ttl:    ttl,
		retry:  100 * time.Millisecond,
	}
}

func (l *GenerationLock) Lock(ctx context.Context, key string) (func(), error) {
	lockKey := l.key(key)
	token := uuid.NewString()

	for {
		ok, err := l.client.SetNX(ctx, lockKey, token, l.ttl).Result()
		if err != nil {
			return nil, err
		}
		if ok {
			return func() { l.release(lockKey, token) }, nil
		}

		select {
		case <-time.After(l.retry):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// release deletes the key only while this holder still owns it, so a
// slow release after TTL expiry cannot drop someone else's lock.
func (l *GenerationLock) release(lockKey, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	current, err := l.client.Get(ctx, lockKey).Result()
	if err != nil || current != token {
		return
	}
	_ = l.client.Del(ctx, lockKey).Err()
}

func (l *GenerationLock) key(key string) string {
	return "quiz:generation:lock:" + key
}
