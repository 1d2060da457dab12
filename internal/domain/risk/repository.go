package risk

import (
	"context"

	"github.com/google/uuid"
)

// CatalogRepository reads the question catalog. The catalog is managed
// out of band and treated as read-only by the questionnaire engine.
type CatalogRepository interface {
	FindCategoriesByCode(ctx context.Context, code string) ([]Category, error)
	FindBlueprintsByCategoryIDs(ctx context.Context, ids []uuid.UUID) ([]BluePrint, error)
}

// AnswerRepository persists per-engagement answers.
type AnswerRepository interface {
	FindByEngagement(ctx context.Context, engagementID uuid.UUID) ([]Risk, error)
	FindByEngagementAndBlueprint(ctx context.Context, engagementID, blueprintID uuid.UUID) ([]Risk, error)
	Save(ctx context.Context, r *Risk) error
	Delete(ctx context.Context, id uuid.UUID) error
}
