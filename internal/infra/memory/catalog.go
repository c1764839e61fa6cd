package memory

import (
	"context"

	"course-quiz-service/internal/domain"
)

// CourseCatalog is a static course/asset source backed by in-memory
// maps (useful for tests and demo mode). It implements both
// app.CourseRepository and app.AssetRepository.
type CourseCatalog struct {
	courses map[string]domain.Course
	assets  map[string]domain.Asset
}

func NewCourseCatalog(courses []domain.Course, assets []domain.Asset) *CourseCatalog {
	catalog := &CourseCatalog{
		courses: make(map[string]domain.Course, len(courses)),
		assets:  make(map[string]domain.Asset, len(assets)),
	}
	for _, course := range courses {
		catalog.courses[course.ID] = course
	}
	for _, asset := range assets {
		catalog.assets[asset.ID] = asset
	}
	return catalog
}

func (c *CourseCatalog) GetCourse(_ context.Context, courseID string) (domain.Course, error) {
	course, ok := c.courses[courseID]
	if !ok {
		return domain.Course{}, domain.ErrCourseNotFound
	}
	return course, nil
}

// GetAssetsByIDs resolves the ids it can; unknown ids are skipped.
func (c *CourseCatalog) GetAssetsByIDs(_ context.Context, ids []string) ([]domain.Asset, error) {
	assets := make([]domain.Asset, 0, len(ids))
	for _, id := range ids {
		if asset, ok := c.assets[id]; ok {
			assets = append(assets, asset)
		}
	}
	return assets, nil
}
