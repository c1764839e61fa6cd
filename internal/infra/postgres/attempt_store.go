package postgres

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"

	"course-quiz-service/internal/domain"
)

// AttemptStore is the Postgres implementation of app.AttemptStore.
// Attempts are insert-only; there is no update path.
type AttemptStore struct {
	db *bun.DB
}

func NewAttemptStore(db *bun.DB) *AttemptStore {
	return &AttemptStore{db: db}
}

func (s *AttemptStore) Insert(ctx context.Context, attempt domain.QuizAttempt) error {
	row, err := attemptToRow(attempt)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert attempt: %w", err)
	}
	return nil
}

func (s *AttemptStore) ListByUser(ctx context.Context, userID, quizID string) ([]domain.QuizAttempt, error) {
	var rows []attemptRow
	query := s.db.NewSelect().Model(&rows).
		Where("a.user_id = ?", userID).
		Order("a.started_at DESC")
	if quizID != "" {
		query = query.Where("a.quiz_id = ?", quizID)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list attempts: %w", err)
	}

	attempts := make([]domain.QuizAttempt, 0, len(rows))
	for _, row := range rows {
		attempt, err := rowToAttempt(row)
		if err != nil {
			return nil, err
		}
		attempts = append(attempts, attempt)
	}
	return attempts, nil
}
