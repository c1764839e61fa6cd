package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"course-quiz-service/internal/domain"
)

// QuizStore is the Postgres implementation of app.QuizStore, with
// questions persisted as JSONB.
type QuizStore struct {
	db *bun.DB
}

func NewQuizStore(db *bun.DB) *QuizStore {
	return &QuizStore{db: db}
}

func (s *QuizStore) Insert(ctx context.Context, quiz domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	if _, err := s.db.NewInsert().Model(&row).Exec(ctx); err != nil {
		return fmt.Errorf("insert quiz: %w", err)
	}
	return nil
}

func (s *QuizStore) Get(ctx context.Context, quizID string) (domain.Quiz, error) {
	var row quizRow
	err := s.db.NewSelect().Model(&row).Where("q.id = ?", quizID).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Quiz{}, domain.ErrQuizNotFound
	}
	if err != nil {
		return domain.Quiz{}, fmt.Errorf("get quiz: %w", err)
	}
	return rowToQuiz(row)
}

func (s *QuizStore) Update(ctx context.Context, quiz domain.Quiz) error {
	row, err := quizToRow(quiz)
	if err != nil {
		return err
	}
	res, err := s.db.NewUpdate().Model(&row).WherePK().Exec(ctx)
	if err != nil {
		return fmt.Errorf("update quiz: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return domain.ErrQuizNotFound
	}
	return nil
}

func (s *QuizStore) ListByCourse(ctx context.Context, courseID, moduleCode string) ([]domain.Quiz, error) {
	var rows []quizRow
	query := s.db.NewSelect().Model(&rows).
		Where("q.course_id = ?", courseID).
		Where("q.is_active").
		Order("q.created_at DESC")
	if moduleCode != "" {
		query = query.Where("q.module_code = ?", moduleCode)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, fmt.Errorf("list quizzes: %w", err)
	}

	quizzes := make([]domain.Quiz, 0, len(rows))
	for _, row := range rows {
		quiz, err := rowToQuiz(row)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, quiz)
	}
	return quizzes, nil
}
