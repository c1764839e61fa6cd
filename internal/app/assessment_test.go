package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
)

func TestCreateAttemptScoresPositionally(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, []domain.Question{
		{Prompt: "q1", Options: []string{"a", "b", "c"}, CorrectAnswer: 1},
		{Prompt: "q2", Options: []string{"a", "b", "c"}, CorrectAnswer: 0},
	})

	attempt, err := assessment.CreateAttempt(ctx, "user-1", "quiz-1", []domain.Answer{
		{SelectedAnswer: 1},
		{SelectedAnswer: 2},
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.Score != 1 || attempt.MaxScore != 2 || attempt.Percentage != 50 {
		t.Fatalf("expected score 1/2 (50%%), got %+v", attempt)
	}
	if !attempt.IsCompleted || attempt.CompletedAt.IsZero() {
		t.Fatalf("expected completed attempt, got %+v", attempt)
	}
}

func TestCreateAttemptEmptyAnswers(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, sampleQuestions(3))

	attempt, err := assessment.CreateAttempt(ctx, "user-1", "quiz-1", nil)
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.Score != 0 || attempt.MaxScore != 3 || attempt.Percentage != 0 {
		t.Fatalf("expected 0/3 (0%%), got %+v", attempt)
	}
}

func TestCreateAttemptExtraAnswersIgnored(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, []domain.Question{
		{Prompt: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0},
	})

	attempt, err := assessment.CreateAttempt(ctx, "user-1", "quiz-1", []domain.Answer{
		{SelectedAnswer: 0},
		{SelectedAnswer: 0},
		{SelectedAnswer: 1},
	})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.Score != 1 || attempt.MaxScore != 1 {
		t.Fatalf("expected trailing answers ignored, got %+v", attempt)
	}
}

func TestCreateAttemptTruncatesPercentage(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, sampleQuestions(3))

	// First question of sampleQuestions has correct answer 0.
	attempt, err := assessment.CreateAttempt(ctx, "user-1", "quiz-1", []domain.Answer{{SelectedAnswer: 0}})
	if err != nil {
		t.Fatalf("create attempt: %v", err)
	}
	if attempt.Percentage != 33 {
		t.Fatalf("expected truncated 33%%, got %d", attempt.Percentage)
	}
}

func TestCreateAttemptMissingQuiz(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, sampleQuestions(1))

	if _, err := assessment.CreateAttempt(ctx, "user-1", "missing", nil); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestListUserAttemptsNewestFirst(t *testing.T) {
	ctx := context.Background()
	assessment := newTestAssessment(t, sampleQuestions(1))

	first, _ := assessment.CreateAttempt(ctx, "user-1", "quiz-1", nil)
	second, _ := assessment.CreateAttempt(ctx, "user-1", "quiz-1", nil)
	_, _ = assessment.CreateAttempt(ctx, "user-2", "quiz-1", nil)

	attempts, err := assessment.ListUserAttempts(ctx, "user-1", "")
	if err != nil {
		t.Fatalf("list attempts: %v", err)
	}
	if len(attempts) != 2 {
		t.Fatalf("expected 2 attempts for user-1, got %d", len(attempts))
	}
	if attempts[0].ID != second.ID || attempts[1].ID != first.ID {
		t.Fatalf("expected newest first, got %+v", attempts)
	}

	filtered, err := assessment.ListUserAttempts(ctx, "user-1", "quiz-other")
	if err != nil {
		t.Fatalf("list filtered: %v", err)
	}
	if len(filtered) != 0 {
		t.Fatalf("expected no attempts for other quiz, got %d", len(filtered))
	}
}

// newTestAssessment seeds one quiz with the given questions under the
// fixed id quiz-1 and wires the assessment service against it.
func newTestAssessment(t *testing.T, questions []domain.Question) *app.AssessmentService {
	t.Helper()
	store := memory.NewQuizStore()
	quizzes := app.NewQuizServiceWithClock(store, steppingClock(), func() string { return "quiz-1" })
	if _, err := quizzes.Create(context.Background(), app.QuizDraft{
		CourseID:   "course-1",
		ModuleCode: "m1",
		Questions:  questions,
	}); err != nil {
		t.Fatalf("seed quiz: %v", err)
	}

	keys := memory.NewAnswerKeyCache(quizzes, time.Minute)
	quizzes.NotifyAnswerKeyChanges(keys)
	assessment := app.NewAssessmentServiceWithClock(
		keys,
		memory.NewAttemptStore(),
		steppingClock(),
		sequentialIDs("attempt"),
	)
	return assessment
}
