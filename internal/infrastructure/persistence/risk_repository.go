package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/risk"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// GormRiskCatalogRepository implements risk.CatalogRepository using GORM.
// The risk catalog structs carry their GORM mapping directly, so no model
// conversion is needed here.
type GormRiskCatalogRepository struct {
	db *gorm.DB
}

// NewGormRiskCatalogRepository creates a new GormRiskCatalogRepository
func NewGormRiskCatalogRepository(db *gorm.DB) *GormRiskCatalogRepository {
	return &GormRiskCatalogRepository{db: db}
}

// FindCategoriesByCode returns the whole category tree of one root code,
// roots first, then children in display order.
func (r *GormRiskCatalogRepository) FindCategoriesByCode(ctx context.Context, code string) ([]risk.Category, error) {
	var categories []risk.Category
	if err := r.db.WithContext(ctx).
		Where("code = ?", code).
		Order(`parent_id NULLS FIRST, "order" ASC`).
		Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

// FindBlueprintsByCategoryIDs returns the questions of the given categories.
func (r *GormRiskCatalogRepository) FindBlueprintsByCategoryIDs(ctx context.Context, ids []uuid.UUID) ([]risk.BluePrint, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var blueprints []risk.BluePrint
	if err := r.db.WithContext(ctx).
		Where("category_id IN ?", ids).
		Order("created_at ASC").
		Find(&blueprints).Error; err != nil {
		return nil, err
	}
	return blueprints, nil
}

// Ensure GormRiskCatalogRepository implements risk.CatalogRepository
var _ risk.CatalogRepository = (*GormRiskCatalogRepository)(nil)

// GormRiskAnswerRepository implements risk.AnswerRepository using GORM
type GormRiskAnswerRepository struct {
	db *gorm.DB
}

// NewGormRiskAnswerRepository creates a new GormRiskAnswerRepository
func NewGormRiskAnswerRepository(db *gorm.DB) *GormRiskAnswerRepository {
	return &GormRiskAnswerRepository{db: db}
}

// FindByEngagement returns every answer recorded for an engagement.
func (r *GormRiskAnswerRepository) FindByEngagement(ctx context.Context, engagementID uuid.UUID) ([]risk.Risk, error) {
	var answers []risk.Risk
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ?", engagementID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

// FindByEngagementAndBlueprint returns the answers for one question of one
// engagement. More than one row only exists for questionnaires that allow
// multiple answers.
func (r *GormRiskAnswerRepository) FindByEngagementAndBlueprint(ctx context.Context, engagementID, blueprintID uuid.UUID) ([]risk.Risk, error) {
	var answers []risk.Risk
	if err := r.db.WithContext(ctx).
		Where("engagement_id = ? AND blueprint_id = ?", engagementID, blueprintID).
		Order("created_at ASC").
		Find(&answers).Error; err != nil {
		return nil, err
	}
	return answers, nil
}

// Save creates or updates an answer
func (r *GormRiskAnswerRepository) Save(ctx context.Context, answer *risk.Risk) error {
	return r.db.WithContext(ctx).Save(answer).Error
}

// Delete removes an answer
func (r *GormRiskAnswerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&risk.Risk{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFound("risk answer")
	}
	return nil
}

// Ensure GormRiskAnswerRepository implements risk.AnswerRepository
var _ risk.AnswerRepository = (*GormRiskAnswerRepository)(nil)

// notFoundOr maps gorm's record-not-found to a domain not-found error.
func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFound(resource)
	}
	return err
}
