package memory

import (
	"context"
	"sort"
	"sync"

	"course-quiz-service/internal/domain"
)

// QuizStore is an in-memory implementation of app.QuizStore.
type QuizStore struct {
	mu      sync.RWMutex
	quizzes map[string]quizEntry
	seq     int
}

type quizEntry struct {
	quiz domain.Quiz
	seq  int
}

func NewQuizStore() *QuizStore {
	return &QuizStore{quizzes: make(map[string]quizEntry)}
}

func (s *QuizStore) Insert(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	s.quizzes[quiz.ID] = quizEntry{quiz: quiz, seq: s.seq}
	return nil
}

func (s *QuizStore) Get(_ context.Context, quizID string) (domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.quizzes[quizID]
	if !ok {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	return entry.quiz, nil
}

func (s *QuizStore) Update(_ context.Context, quiz domain.Quiz) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.quizzes[quiz.ID]
	if !ok {
		return domain.ErrQuizNotFound
	}
	entry.quiz = quiz
	s.quizzes[quiz.ID] = entry
	return nil
}

func (s *QuizStore) ListByCourse(_ context.Context, courseID, moduleCode string) ([]domain.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]quizEntry, 0)
	for _, entry := range s.quizzes {
		quiz := entry.quiz
		if !quiz.IsActive || quiz.CourseID != courseID {
			continue
		}
		if moduleCode != "" && quiz.ModuleCode != moduleCode {
			continue
		}
		entries = append(entries, entry)
	}

	// Newest first; insertion order breaks timestamp ties.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].quiz.CreatedAt.Equal(entries[j].quiz.CreatedAt) {
			return entries[i].quiz.CreatedAt.After(entries[j].quiz.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	quizzes := make([]domain.Quiz, 0, len(entries))
	for _, entry := range entries {
		quizzes = append(quizzes, entry.quiz)
	}
	return quizzes, nil
}
