package app

import (
	"context"
	"strings"

	"course-quiz-service/internal/domain"
)

// CourseRepository resolves courses from the externally owned catalog.
type CourseRepository interface {
	GetCourse(ctx context.Context, courseID string) (domain.Course, error)
}

// AssetRepository resolves asset bodies by id. Ids that do not resolve
// are simply absent from the result, never an error.
type AssetRepository interface {
	GetAssetsByIDs(ctx context.Context, ids []string) ([]domain.Asset, error)
}

// ContentAggregator turns a course (or one of its modules) into
// per-module content blobs suitable as generation input.
type ContentAggregator struct {
	courses CourseRepository
	assets  AssetRepository
}

func NewContentAggregator(courses CourseRepository, assets AssetRepository) *ContentAggregator {
	return &ContentAggregator{courses: courses, assets: assets}
}

// Aggregate resolves courseID and produces one ModuleContent per module.
// With a non-empty moduleCode only the matching module is returned;
// a code that matches nothing yields domain.ErrModuleNotFound.
func (a *ContentAggregator) Aggregate(ctx context.Context, courseID, moduleCode string) ([]domain.ModuleContent, error) {
	course, err := a.courses.GetCourse(ctx, courseID)
	if err != nil {
		return nil, err
	}

	modules := course.Modules
	if moduleCode != "" {
		found := false
		for _, m := range course.Modules {
			if m.Code == moduleCode {
				modules = []domain.Module{m}
				found = true
				break
			}
		}
		if !found {
			return nil, domain.ErrModuleNotFound
		}
	}

	infos := make([]domain.ModuleContent, 0, len(modules))
	for _, m := range modules {
		infos = append(infos, domain.ModuleContent{
			CourseID:      course.ID,
			CourseTitle:   course.Title,
			ModuleID:      m.ID,
			ModuleTitle:   m.Title,
			ModuleCode:    m.Code,
			AssetsContent: a.assetsContent(ctx, m.AssetIDs),
		})
	}
	return infos, nil
}

// assetsContent concatenates the bodies of every resolvable asset.
// A module with no resolvable assets aggregates to the empty string;
// asset lookup failures never abort the aggregation.
func (a *ContentAggregator) assetsContent(ctx context.Context, assetIDs []string) string {
	if len(assetIDs) == 0 {
		return ""
	}

	assets, err := a.assets.GetAssetsByIDs(ctx, assetIDs)
	if err != nil {
		return ""
	}

	blocks := make([]string, 0, len(assets))
	for _, asset := range assets {
		switch {
		case asset.Title != "" && asset.Content != "":
			blocks = append(blocks, "Asset: "+asset.Title+"\n"+asset.Content)
		case asset.Content != "":
			blocks = append(blocks, asset.Content)
		}
	}
	return strings.Join(blocks, "\n\n")
}
