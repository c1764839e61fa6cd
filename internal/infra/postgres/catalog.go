package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"course-quiz-service/internal/domain"
)

// CourseCatalog reads the externally owned courses and assets tables.
// Courses keep their module list as a JSONB document, mirroring how the
// course subsystem stores them; this side never writes either table.
type CourseCatalog struct {
	pool *pgxpool.Pool
}

func NewCourseCatalog(pool *pgxpool.Pool) *CourseCatalog {
	return &CourseCatalog{pool: pool}
}

func (c *CourseCatalog) GetCourse(ctx context.Context, courseID string) (domain.Course, error) {
	var (
		title string
		raw   []byte
	)
	err := c.pool.QueryRow(ctx, `SELECT title, modules FROM courses WHERE id=$1`, courseID).Scan(&title, &raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	if err != nil {
		return domain.Course{}, fmt.Errorf("load course: %w", err)
	}

	course := domain.Course{ID: courseID, Title: title}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &course.Modules); err != nil {
			return domain.Course{}, fmt.Errorf("unmarshal modules: %w", err)
		}
	}
	return course, nil
}

// GetAssetsByIDs returns whichever of the ids resolve; dangling
// references simply produce a shorter result.
func (c *CourseCatalog) GetAssetsByIDs(ctx context.Context, ids []string) ([]domain.Asset, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := c.pool.Query(ctx, `SELECT id, title, content FROM assets WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load assets: %w", err)
	}
	defer rows.Close()

	assets := make([]domain.Asset, 0, len(ids))
	for rows.Next() {
		var asset domain.Asset
		if err := rows.Scan(&asset.ID, &asset.Title, &asset.Content); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, asset)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}
