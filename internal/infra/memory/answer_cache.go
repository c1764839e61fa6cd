package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"course-quiz-service/internal/domain"
)

// AnswerKeyLoader fetches answer keys from the backing quiz store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches answer keys with TTL so repeated attempts
// against the same quiz do not hit the store every time.
type AnswerKeyCache struct {
	loader AnswerKeyLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedKey
}

type cachedKey struct {
	key       domain.AnswerKey
	expiresAt time.Time
}

func NewAnswerKeyCache(loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedKey),
	}
}

// InvalidateAnswerKey drops the cached key so the next read reloads it.
func (c *AnswerKeyCache) InvalidateAnswerKey(_ context.Context, quizID string) error {
	c.mu.Lock()
	delete(c.cache, quizID)
	c.mu.Unlock()
	return nil
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	now := c.clock()

	c.mu.RLock()
	if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
		c.mu.RUnlock()
		return entry.key, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		now := c.clock()
		c.mu.RLock()
		if entry, ok := c.cache[quizID]; ok && entry.expiresAt.After(now) {
			c.mu.RUnlock()
			return entry.key, nil
		}
		c.mu.RUnlock()

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}

		c.mu.Lock()
		c.cache[quizID] = cachedKey{
			key:       key,
			expiresAt: now.Add(c.ttlWithJitter()),
		}
		c.mu.Unlock()
		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
