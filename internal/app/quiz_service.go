package app

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"course-quiz-service/internal/domain"
)

// QuizStore abstracts quiz persistence (in-memory, Postgres, etc).
type QuizStore interface {
	Insert(ctx context.Context, quiz domain.Quiz) error
	// Get returns the quiz regardless of its active flag, or
	// domain.ErrQuizNotFound if the id never existed.
	Get(ctx context.Context, quizID string) (domain.Quiz, error)
	Update(ctx context.Context, quiz domain.Quiz) error
	// ListByCourse returns active quizzes only, newest first by
	// creation time; an empty moduleCode means the whole course.
	ListByCourse(ctx context.Context, courseID, moduleCode string) ([]domain.Quiz, error)
}

// QuizDraft carries the caller-supplied fields for a new quiz. Ids,
// timestamps, the active flag and the question count are derived here.
type QuizDraft struct {
	CourseID             string            `json:"course_id"`
	ModuleCode           string            `json:"module_code"`
	Title                string            `json:"title"`
	Description          string            `json:"description"`
	Difficulty           string            `json:"difficulty"`
	Questions            []domain.Question `json:"questions"`
	EstimatedTimeMinutes int               `json:"estimated_time_minutes"`
	GeneratedByAI        bool              `json:"generated_by_ai"`
}

// QuizPatch is a partial quiz update; nil fields are left untouched.
// The active flag is deliberately absent: deactivation only flows
// through SoftDelete and is terminal.
type QuizPatch struct {
	Title                *string            `json:"title"`
	Description          *string            `json:"description"`
	Difficulty           *string            `json:"difficulty"`
	Questions            *[]domain.Question `json:"questions"`
	EstimatedTimeMinutes *int               `json:"estimated_time_minutes"`
}

// AnswerKeyInvalidator drops a cached answer key once the underlying
// questions have changed.
type AnswerKeyInvalidator interface {
	InvalidateAnswerKey(ctx context.Context, quizID string) error
}

// QuizService holds the quiz CRUD use cases and enforces the derived
// field invariants (total question count, timestamps, soft delete).
type QuizService struct {
	store        QuizStore
	now          func() time.Time
	newID        func() string
	invalidators []AnswerKeyInvalidator
}

func NewQuizService(store QuizStore) *QuizService {
	return NewQuizServiceWithClock(store, time.Now, uuid.NewString)
}

// NewQuizServiceWithClock is for deterministic ids and timestamps in tests.
func NewQuizServiceWithClock(store QuizStore, now func() time.Time, newID func() string) *QuizService {
	return &QuizService{store: store, now: now, newID: newID}
}

// NotifyAnswerKeyChanges registers a cache to invalidate whenever a
// quiz's question list is replaced. Register before serving traffic.
func (s *QuizService) NotifyAnswerKeyChanges(inv AnswerKeyInvalidator) {
	s.invalidators = append(s.invalidators, inv)
}

// Create persists a new quiz. TotalQuestions is always derived from the
// supplied question list, never trusted from the caller.
func (s *QuizService) Create(ctx context.Context, draft QuizDraft) (domain.Quiz, error) {
	now := s.now()
	quiz := domain.Quiz{
		ID:                   s.newID(),
		CourseID:             draft.CourseID,
		ModuleCode:           draft.ModuleCode,
		Title:                draft.Title,
		Description:          draft.Description,
		Difficulty:           draft.Difficulty,
		Questions:            draft.Questions,
		TotalQuestions:       len(draft.Questions),
		EstimatedTimeMinutes: draft.EstimatedTimeMinutes,
		IsActive:             true,
		GeneratedByAI:        draft.GeneratedByAI,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := s.store.Insert(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	return quiz, nil
}

func (s *QuizService) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	return s.store.Get(ctx, quizID)
}

func (s *QuizService) ListByCourse(ctx context.Context, courseID, moduleCode string) ([]domain.Quiz, error) {
	return s.store.ListByCourse(ctx, courseID, moduleCode)
}

// Update applies the patch to an existing quiz. When the question list
// changes, TotalQuestions is recomputed; UpdatedAt is always bumped.
func (s *QuizService) Update(ctx context.Context, quizID string, patch QuizPatch) (domain.Quiz, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return domain.Quiz{}, err
	}

	if patch.Title != nil {
		quiz.Title = *patch.Title
	}
	if patch.Description != nil {
		quiz.Description = *patch.Description
	}
	if patch.Difficulty != nil {
		quiz.Difficulty = *patch.Difficulty
	}
	if patch.Questions != nil {
		quiz.Questions = *patch.Questions
		quiz.TotalQuestions = len(quiz.Questions)
	}
	if patch.EstimatedTimeMinutes != nil {
		quiz.EstimatedTimeMinutes = *patch.EstimatedTimeMinutes
	}
	quiz.UpdatedAt = s.now()

	if err := s.store.Update(ctx, quiz); err != nil {
		return domain.Quiz{}, err
	}
	if patch.Questions != nil {
		// Stale keys would score attempts against the old questions.
		for _, inv := range s.invalidators {
			if err := inv.InvalidateAnswerKey(ctx, quiz.ID); err != nil {
				log.Printf("invalidate answer key for quiz %s: %v", quiz.ID, err)
			}
		}
	}
	return quiz, nil
}

// SoftDelete deactivates a quiz. Deleting an already-inactive quiz is a
// no-op success; only an id that never existed is ErrQuizNotFound.
// Deactivation is terminal, there is no re-activation path.
func (s *QuizService) SoftDelete(ctx context.Context, quizID string) error {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return err
	}
	if !quiz.IsActive {
		return nil
	}
	quiz.IsActive = false
	quiz.UpdatedAt = s.now()
	return s.store.Update(ctx, quiz)
}

// LoadAnswerKey projects a quiz down to its answer key. Soft-deleted
// quizzes still score, so the active flag is not consulted.
func (s *QuizService) LoadAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error) {
	quiz, err := s.store.Get(ctx, quizID)
	if err != nil {
		return domain.AnswerKey{}, err
	}
	correct := make([]int, len(quiz.Questions))
	for i, q := range quiz.Questions {
		correct[i] = q.CorrectAnswer
	}
	return domain.AnswerKey{QuizID: quiz.ID, Correct: correct}, nil
}
