package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"course-quiz-service/internal/domain"
)

func TestAnswerKeyCacheCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{key: domain.AnswerKey{Correct: []int{2, 0, 1}}}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	key, err := cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key: %v", err)
	}
	if len(key.Correct) != 3 || key.Correct[0] != 2 || key.Correct[2] != 1 {
		t.Fatalf("unexpected key %+v", key)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}

	// Second call must rebuild the key from the Redis hash.
	key, err = cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(key.Correct) != 3 || key.Correct[0] != 2 || key.Correct[1] != 0 || key.Correct[2] != 1 {
		t.Fatalf("cache rebuild mismatch: %+v", key)
	}
}

func TestAnswerKeyCacheInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{key: domain.AnswerKey{Correct: []int{0}}}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetAnswerKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get key: %v", err)
	}
	if err := cache.InvalidateAnswerKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("quiz:quiz-1:key") {
		t.Fatal("expected cached hash deleted")
	}

	loader.key = domain.AnswerKey{Correct: []int{1, 1}}
	key, err := cache.GetAnswerKey(context.Background(), "quiz-1")
	if err != nil {
		t.Fatalf("get key after invalidate: %v", err)
	}
	if loader.calls != 2 || len(key.Correct) != 2 {
		t.Fatalf("expected reload after invalidate, calls=%d key=%+v", loader.calls, key)
	}
}

func TestAnswerKeyCacheExpiry(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{key: domain.AnswerKey{Correct: []int{0}}}
	cache := NewAnswerKeyCache(newClient(mr), loader, time.Minute)

	if _, err := cache.GetAnswerKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get key: %v", err)
	}

	// Jitter keeps TTL within [ttl, 1.1*ttl); two minutes is past it.
	mr.FastForward(2 * time.Minute)

	if _, err := cache.GetAnswerKey(context.Background(), "quiz-1"); err != nil {
		t.Fatalf("get key after expiry: %v", err)
	}
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, calls=%d", loader.calls)
	}
}

type countingLoader struct {
	key   domain.AnswerKey
	calls int
}

func (l *countingLoader) LoadAnswerKey(_ context.Context, quizID string) (domain.AnswerKey, error) {
	l.calls++
	key := l.key
	key.QuizID = quizID
	return key, nil
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}
