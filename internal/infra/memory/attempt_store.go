package memory

import (
	"context"
	"sort"
	"sync"

	"course-quiz-service/internal/domain"
)

// AttemptStore is an in-memory implementation of app.AttemptStore.
type AttemptStore struct {
	mu       sync.RWMutex
	attempts []attemptEntry
}

type attemptEntry struct {
	attempt domain.QuizAttempt
	seq     int
}

func NewAttemptStore() *AttemptStore {
	return &AttemptStore{}
}

func (s *AttemptStore) Insert(_ context.Context, attempt domain.QuizAttempt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts = append(s.attempts, attemptEntry{attempt: attempt, seq: len(s.attempts)})
	return nil
}

func (s *AttemptStore) ListByUser(_ context.Context, userID, quizID string) ([]domain.QuizAttempt, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]attemptEntry, 0)
	for _, entry := range s.attempts {
		if entry.attempt.UserID != userID {
			continue
		}
		if quizID != "" && entry.attempt.QuizID != quizID {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].attempt.StartedAt.Equal(entries[j].attempt.StartedAt) {
			return entries[i].attempt.StartedAt.After(entries[j].attempt.StartedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	attempts := make([]domain.QuizAttempt, 0, len(entries))
	for _, entry := range entries {
		attempts = append(attempts, entry.attempt)
	}
	return attempts, nil
}
