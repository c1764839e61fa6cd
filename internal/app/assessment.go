package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"course-quiz-service/internal/domain"
)

// AttemptStore persists scored attempts. Attempts are write-once.
type AttemptStore interface {
	Insert(ctx context.Context, attempt domain.QuizAttempt) error
	// ListByUser returns attempts newest first by start time; an empty
	// quizID means all of the user's attempts.
	ListByUser(ctx context.Context, userID, quizID string) ([]domain.QuizAttempt, error)
}

// AnswerKeyRepository loads the answer key for a quiz, possibly through
// a cache in front of the quiz store.
type AnswerKeyRepository interface {
	GetAnswerKey(ctx context.Context, quizID string) (domain.AnswerKey, error)
}

// AssessmentService scores submissions against stored answer keys and
// records immutable attempts.
type AssessmentService struct {
	keys     AnswerKeyRepository
	attempts AttemptStore
	now      func() time.Time
	newID    func() string
}

func NewAssessmentService(keys AnswerKeyRepository, attempts AttemptStore) *AssessmentService {
	return NewAssessmentServiceWithClock(keys, attempts, time.Now, uuid.NewString)
}

// NewAssessmentServiceWithClock is for deterministic ids and timestamps in tests.
func NewAssessmentServiceWithClock(keys AnswerKeyRepository, attempts AttemptStore, now func() time.Time, newID func() string) *AssessmentService {
	return &AssessmentService{keys: keys, attempts: attempts, now: now, newID: newID}
}

// CreateAttempt scores answers against the quiz's answer key and
// persists the attempt in its terminal completed state. A missing quiz
// is a hard failure: there is no scoring without an answer key.
func (s *AssessmentService) CreateAttempt(ctx context.Context, userID, quizID string, answers []domain.Answer) (domain.QuizAttempt, error) {
	key, err := s.keys.GetAnswerKey(ctx, quizID)
	if err != nil {
		return domain.QuizAttempt{}, err
	}

	score, maxScore := scoreAnswers(key, answers)
	percentage := 0
	if maxScore > 0 {
		percentage = score * 100 / maxScore
	}

	now := s.now()
	attempt := domain.QuizAttempt{
		ID:          s.newID(),
		QuizID:      quizID,
		UserID:      userID,
		Answers:     answers,
		Score:       score,
		MaxScore:    maxScore,
		Percentage:  percentage,
		StartedAt:   now,
		CompletedAt: now,
		IsCompleted: true,
	}
	if err := s.attempts.Insert(ctx, attempt); err != nil {
		return domain.QuizAttempt{}, err
	}
	return attempt, nil
}

func (s *AssessmentService) ListUserAttempts(ctx context.Context, userID, quizID string) ([]domain.QuizAttempt, error) {
	return s.attempts.ListByUser(ctx, userID, quizID)
}

// scoreAnswers compares answers to the key positionally. Submissions
// shorter or longer than the quiz are tolerated: only overlapping
// positions can score, and max score is always the question count.
func scoreAnswers(key domain.AnswerKey, answers []domain.Answer) (score, maxScore int) {
	maxScore = len(key.Correct)
	for i, answer := range answers {
		if i >= len(key.Correct) {
			break
		}
		if answer.SelectedAnswer == key.Correct[i] {
			score++
		}
	}
	return score, maxScore
}
