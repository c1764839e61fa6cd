package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"course-quiz-service/internal/app"
	"course-quiz-service/internal/domain"
	"course-quiz-service/internal/infra/memory"
)

func TestCreateDerivesFields(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	quiz, err := service.Create(ctx, app.QuizDraft{
		CourseID:   "course-1",
		ModuleCode: "m1",
		Title:      "Quiz: Consensus Basics",
		Questions:  sampleQuestions(3),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if quiz.ID == "" {
		t.Fatal("expected assigned id")
	}
	if quiz.TotalQuestions != 3 {
		t.Fatalf("expected total 3, got %d", quiz.TotalQuestions)
	}
	if !quiz.IsActive {
		t.Fatal("expected new quiz active")
	}
	if !quiz.CreatedAt.Equal(quiz.UpdatedAt) {
		t.Fatal("expected created_at == updated_at on create")
	}
}

func TestUpdateRecomputesTotalQuestions(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	quiz, _ := service.Create(ctx, app.QuizDraft{CourseID: "course-1", ModuleCode: "m1", Questions: sampleQuestions(3)})

	fewer := sampleQuestions(1)
	updated, err := service.Update(ctx, quiz.ID, app.QuizPatch{Questions: &fewer})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.TotalQuestions != 1 {
		t.Fatalf("expected recomputed total 1, got %d", updated.TotalQuestions)
	}
	if !updated.UpdatedAt.After(quiz.UpdatedAt) {
		t.Fatal("expected updated_at bumped")
	}

	// A patch without questions must leave the count untouched.
	title := "Renamed"
	renamed, err := service.Update(ctx, quiz.ID, app.QuizPatch{Title: &title})
	if err != nil {
		t.Fatalf("update title: %v", err)
	}
	if renamed.TotalQuestions != 1 || renamed.Title != "Renamed" {
		t.Fatalf("unexpected quiz after rename: %+v", renamed)
	}
}

func TestUpdateMissingQuiz(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	title := "nope"
	if _, err := service.Update(ctx, "missing", app.QuizPatch{Title: &title}); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found, got %v", err)
	}
}

func TestSoftDeleteKeepsRecord(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	quiz, _ := service.Create(ctx, app.QuizDraft{CourseID: "course-1", ModuleCode: "m1", Questions: sampleQuestions(2)})

	if err := service.SoftDelete(ctx, quiz.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	listed, err := service.ListByCourse(ctx, "course-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected inactive quiz hidden from list, got %d", len(listed))
	}

	got, err := service.Get(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if got.IsActive {
		t.Fatal("expected quiz inactive after soft delete")
	}

	// Deleting again is a no-op, not an error.
	if err := service.SoftDelete(ctx, quiz.ID); err != nil {
		t.Fatalf("second soft delete: %v", err)
	}
	if err := service.SoftDelete(ctx, "never-existed"); !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("expected quiz not found for unknown id, got %v", err)
	}
}

func TestSoftDeleteIsTerminal(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	quiz, _ := service.Create(ctx, app.QuizDraft{CourseID: "course-1", ModuleCode: "m1", Questions: sampleQuestions(2)})
	if err := service.SoftDelete(ctx, quiz.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	// No patch field can flip the active flag back on.
	title := "Revived?"
	updated, err := service.Update(ctx, quiz.ID, app.QuizPatch{Title: &title})
	if err != nil {
		t.Fatalf("update after delete: %v", err)
	}
	if updated.IsActive {
		t.Fatal("expected quiz to stay inactive after update")
	}

	listed, err := service.ListByCourse(ctx, "course-1", "m1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 0 {
		t.Fatalf("expected deleted quiz to stay hidden, got %d quizzes", len(listed))
	}
}

func TestUpdateQuestionsInvalidatesAnswerKey(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	service := app.NewQuizServiceWithClock(store, steppingClock(), sequentialIDs("quiz"))
	cache := memory.NewAnswerKeyCache(service, time.Minute)
	service.NotifyAnswerKeyChanges(cache)

	quiz, _ := service.Create(ctx, app.QuizDraft{
		CourseID:   "course-1",
		ModuleCode: "m1",
		Questions:  []domain.Question{{Prompt: "q1", Options: []string{"a", "b"}, CorrectAnswer: 0}},
	})

	// Warm the cache with the original single-question key.
	key, err := cache.GetAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("warm cache: %v", err)
	}
	if len(key.Correct) != 1 || key.Correct[0] != 0 {
		t.Fatalf("unexpected initial key %+v", key)
	}

	replaced := []domain.Question{
		{Prompt: "q1", Options: []string{"a", "b"}, CorrectAnswer: 1},
		{Prompt: "q2", Options: []string{"a", "b"}, CorrectAnswer: 1},
	}
	if _, err := service.Update(ctx, quiz.ID, app.QuizPatch{Questions: &replaced}); err != nil {
		t.Fatalf("update questions: %v", err)
	}

	key, err = cache.GetAnswerKey(ctx, quiz.ID)
	if err != nil {
		t.Fatalf("reload key: %v", err)
	}
	if len(key.Correct) != 2 || key.Correct[0] != 1 || key.Correct[1] != 1 {
		t.Fatalf("expected fresh key after update, got %+v", key)
	}
}

func TestListByCourseNewestFirst(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestQuizService()

	first, _ := service.Create(ctx, app.QuizDraft{CourseID: "course-1", ModuleCode: "m1", Questions: sampleQuestions(1)})
	second, _ := service.Create(ctx, app.QuizDraft{CourseID: "course-1", ModuleCode: "m2", Questions: sampleQuestions(1)})
	_, _ = service.Create(ctx, app.QuizDraft{CourseID: "course-other", ModuleCode: "m1", Questions: sampleQuestions(1)})

	listed, err := service.ListByCourse(ctx, "course-1", "")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 quizzes, got %d", len(listed))
	}
	if listed[0].ID != second.ID || listed[1].ID != first.ID {
		t.Fatalf("expected newest first, got %s then %s", listed[0].ID, listed[1].ID)
	}

	byModule, err := service.ListByCourse(ctx, "course-1", "m2")
	if err != nil {
		t.Fatalf("list by module: %v", err)
	}
	if len(byModule) != 1 || byModule[0].ID != second.ID {
		t.Fatalf("expected only m2 quiz, got %+v", byModule)
	}
}

// newTestQuizService returns a service with a stepping clock so
// creation order is reflected in timestamps.
func newTestQuizService() (*app.QuizService, *memory.QuizStore) {
	store := memory.NewQuizStore()
	service := app.NewQuizServiceWithClock(store, steppingClock(), sequentialIDs("quiz"))
	return service, store
}

func steppingClock() func() time.Time {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	step := 0
	return func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}
}

func sequentialIDs(prefix string) func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func sampleQuestions(n int) []domain.Question {
	questions := make([]domain.Question, 0, n)
	for i := 0; i < n; i++ {
		questions = append(questions, domain.Question{
			Prompt:        fmt.Sprintf("Question %d", i+1),
			Options:       []string{"a", "b", "c", "d"},
			CorrectAnswer: i % 4,
		})
	}
	return questions
}
