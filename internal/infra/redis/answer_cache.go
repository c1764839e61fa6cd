package redis

import (
	"context"
	"math/rand"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"course-quiz-service/internal/domain"
)

// AnswerKeyLoader fetches answer keys from the backing quiz store.
type AnswerKeyLoader interface {
	LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// AnswerKeyCache caches quiz answer keys in Redis (hash per quiz,
// question position -> correct option index) and falls back to the
// loader on a miss. Only the key is cached, never prompts or options.
type AnswerKeyCache struct {
	client *redis.Client
	loader AnswerKeyLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
}

func NewAnswerKeyCache(client *redis.Client, loader AnswerKeyLoader, ttl time.Duration) *AnswerKeyCache {
	return &AnswerKeyCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *AnswerKeyCache) GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	cacheKey := c.key(quizID)

	fields, err := c.client.HGetAll(ctx, cacheKey).Result()
	if err == nil && len(fields) > 0 {
		return buildKeyFromCache(quizID, fields), nil
	}

	result, err, _ := c.sf.Do(quizID, func() (interface{}, error) {
		// Re-check in case another goroutine filled it.
		fields, err := c.client.HGetAll(ctx, cacheKey).Result()
		if err == nil && len(fields) > 0 {
			return buildKeyFromCache(quizID, fields), nil
		}

		key, err := c.loader.LoadAnswerKey(ctx, quizID)
		if err != nil {
			return domain.AnswerKey{}, err
		}
		if len(key.Correct) == 0 {
			return key, nil
		}

		pipe := c.client.Pipeline()
		for i, correct := range key.Correct {
			pipe.HSet(ctx, cacheKey, strconv.Itoa(i), correct)
		}
		if ttl := c.ttlWithJitter(); ttl > 0 {
			pipe.Expire(ctx, cacheKey, ttl)
		}
		// Cache fills are best effort; scoring proceeds either way.
		_, _ = pipe.Exec(ctx)

		return key, nil
	})
	if err != nil {
		return domain.AnswerKey{}, err
	}
	return result.(domain.AnswerKey), nil
}

// InvalidateAnswerKey drops the cached hash so the next read reloads it.
func (c *AnswerKeyCache) InvalidateAnswerKey(ctx context.Context, quizID string) error {
	return c.client.Del(ctx, c.key(quizID)).Err()
}

func (c *AnswerKeyCache) key(quizID string) string {
	return "quiz:" + quizID + ":key"
}

func buildKeyFromCache(quizID string, fields map[string]string) domain.AnswerKey {
	correct := make([]int, len(fields))
	for field, value := range fields {
		pos, err := strconv.Atoi(field)
		if err != nil || pos < 0 || pos >= len(correct) {
			continue
		}
		if answer, err := strconv.Atoi(value); err == nil {
			correct[pos] = answer
		}
	}
	return domain.AnswerKey{QuizID: quizID, Correct: correct}
}

func (c *AnswerKeyCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
