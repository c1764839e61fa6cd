package postgres

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/uptrace/bun"

	"course-quiz-service/internal/domain"
)

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes,alias:q"`

	ID                   string          `bun:"id,pk"`
	CourseID             string          `bun:"course_id,notnull"`
	ModuleCode           string          `bun:"module_code,notnull"`
	Title                string          `bun:"title,notnull"`
	Description          string          `bun:"description,notnull"`
	Difficulty           string          `bun:"difficulty,notnull"`
	Questions            json.RawMessage `bun:"questions,type:jsonb"`
	TotalQuestions       int             `bun:"total_questions,notnull"`
	EstimatedTimeMinutes int             `bun:"estimated_time_minutes,notnull"`
	IsActive             bool            `bun:"is_active,notnull"`
	GeneratedByAI        bool            `bun:"generated_by_ai,notnull"`
	CreatedAt            time.Time       `bun:"created_at,notnull"`
	UpdatedAt            time.Time       `bun:"updated_at,notnull"`
}

func quizToRow(quiz domain.Quiz) (quizRow, error) {
	questions, err := json.Marshal(quiz.Questions)
	if err != nil {
		return quizRow{}, fmt.Errorf("marshal questions: %w", err)
	}
	return quizRow{
		ID:                   quiz.ID,
		CourseID:             quiz.CourseID,
		ModuleCode:           quiz.ModuleCode,
		Title:                quiz.Title,
		Description:          quiz.Description,
		Difficulty:           quiz.Difficulty,
		Questions:            questions,
		TotalQuestions:       quiz.TotalQuestions,
		EstimatedTimeMinutes: quiz.EstimatedTimeMinutes,
		IsActive:             quiz.IsActive,
		GeneratedByAI:        quiz.GeneratedByAI,
		CreatedAt:            quiz.CreatedAt,
		UpdatedAt:            quiz.UpdatedAt,
	}, nil
}

func rowToQuiz(row quizRow) (domain.Quiz, error) {
	var questions []domain.Question
	if len(row.Questions) > 0 {
		if err := json.Unmarshal(row.Questions, &questions); err != nil {
			return domain.Quiz{}, fmt.Errorf("unmarshal questions: %w", err)
		}
	}
	return domain.Quiz{
		ID:                   row.ID,
		CourseID:             row.CourseID,
		ModuleCode:           row.ModuleCode,
		Title:                row.Title,
		Description:          row.Description,
		Difficulty:           row.Difficulty,
		Questions:            questions,
		TotalQuestions:       row.TotalQuestions,
		EstimatedTimeMinutes: row.EstimatedTimeMinutes,
		IsActive:             row.IsActive,
		GeneratedByAI:        row.GeneratedByAI,
		CreatedAt:            row.CreatedAt,
		UpdatedAt:            row.UpdatedAt,
	}, nil
}

type attemptRow struct {
	bun.BaseModel `bun:"table:quiz_attempts,alias:a"`

	ID          string          `bun:"id,pk"`
	QuizID      string          `bun:"quiz_id,notnull"`
	UserID      string          `bun:"user_id,notnull"`
	Answers     json.RawMessage `bun:"answers,type:jsonb"`
	Score       int             `bun:"score,notnull"`
	MaxScore    int             `bun:"max_score,notnull"`
	Percentage  int             `bun:"percentage,notnull"`
	StartedAt   time.Time       `bun:"started_at,notnull"`
	CompletedAt time.Time       `bun:"completed_at,notnull"`
	IsCompleted bool            `bun:"is_completed,notnull"`
}

func attemptToRow(attempt domain.QuizAttempt) (attemptRow, error) {
	answers, err := json.Marshal(attempt.Answers)
	if err != nil {
		return attemptRow{}, fmt.Errorf("marshal answers: %w", err)
	}
	return attemptRow{
		ID:          attempt.ID,
		QuizID:      attempt.QuizID,
		UserID:      attempt.UserID,
		Answers:     answers,
		Score:       attempt.Score,
		MaxScore:    attempt.MaxScore,
		Percentage:  attempt.Percentage,
		StartedAt:   attempt.StartedAt,
		CompletedAt: attempt.CompletedAt,
		IsCompleted: attempt.IsCompleted,
	}, nil
}

func rowToAttempt(row attemptRow) (domain.QuizAttempt, error) {
	var answers []domain.Answer
	if len(row.Answers) > 0 {
		if err := json.Unmarshal(row.Answers, &answers); err != nil {
			return domain.QuizAttempt{}, fmt.Errorf("unmarshal answers: %w", err)
		}
	}
	return domain.QuizAttempt{
		ID:          row.ID,
		QuizID:      row.QuizID,
		UserID:      row.UserID,
		Answers:     answers,
		Score:       row.Score,
		MaxScore:    row.MaxScore,
		Percentage:  row.Percentage,
		StartedAt:   row.StartedAt,
		CompletedAt: row.CompletedAt,
		IsCompleted: row.IsCompleted,
	}, nil
}
