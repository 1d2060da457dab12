package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/psea"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormPSEAAssessmentRepository implements psea.Repository using GORM
type GormPSEAAssessmentRepository struct {
	db *gorm.DB
}

// NewGormPSEAAssessmentRepository creates a new GormPSEAAssessmentRepository
func NewGormPSEAAssessmentRepository(db *gorm.DB) *GormPSEAAssessmentRepository {
	return &GormPSEAAssessmentRepository{db: db}
}

// FindByID finds an assessment by its ID
func (r *GormPSEAAssessmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*psea.Assessment, error) {
	var model models.AssessmentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("psea assessment")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an assessment by ID within a tenant
func (r *GormPSEAAssessmentRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*psea.Assessment, error) {
	var model models.AssessmentModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("psea assessment")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all assessments for a tenant with filtering
func (r *GormPSEAAssessmentRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]psea.Assessment, error) {
	var rows []models.AssessmentModel
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.AssessmentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	query = applySort(query, filter.Sort, AssessmentSortFields)
	query = applyPagination(query, filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]psea.Assessment, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// CountForTenant counts assessments for a tenant with optional filters
func (r *GormPSEAAssessmentRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.AssessmentModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an assessment, assigning the tenant-scoped
// sequence number on first insert under the counter row lock.
func (r *GormPSEAAssessmentRepository) Save(ctx context.Context, a *psea.Assessment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if a.SequenceNumber == 0 {
			seq, err := nextSequence(tx, a.TenantID, sequenceScopePSEA)
			if err != nil {
				return err
			}
			a.SequenceNumber = seq
		}
		model := models.AssessmentModelFromDomain(a)
		return tx.Save(model).Error
	})
}

// SaveWithLock saves with optimistic locking on the version column.
func (r *GormPSEAAssessmentRepository) SaveWithLock(ctx context.Context, a *psea.Assessment) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.AssessmentModel{}).
			Where("id = ?", a.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFound("psea assessment")
			}
			return err
		}
		if currentVersion != a.Version {
			return shared.NewConflict("the assessment has been modified by another user")
		}

		a.Version++
		a.UpdatedAt = time.Now()
		model := models.AssessmentModelFromDomain(a)

		result := tx.Model(&models.AssessmentModel{}).
			Where("id = ? AND version = ?", a.ID, currentVersion).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewConflict("the assessment has been modified by another user")
		}
		return nil
	})
}

// filtered applies search and field filters without pagination
func (r *GormPSEAAssessmentRepository) filtered(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference_number ILIKE ? OR partner_name ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "partner_id":
			query = query.Where("partner_id = ?", value)
		case "focal_point_id":
			query = query.Where("focal_point_ids @> ?::jsonb", jsonbUUIDElement(value))
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}
	return query
}

// Ensure GormPSEAAssessmentRepository implements psea.Repository
var _ psea.Repository = (*GormPSEAAssessmentRepository)(nil)

// GormIndicatorRepository implements psea.IndicatorRepository using GORM
type GormIndicatorRepository struct {
	db *gorm.DB
}

// NewGormIndicatorRepository creates a new GormIndicatorRepository
func NewGormIndicatorRepository(db *gorm.DB) *GormIndicatorRepository {
	return &GormIndicatorRepository{db: db}
}

// FindActive returns the active indicator catalog in insertion order.
func (r *GormIndicatorRepository) FindActive(ctx context.Context) ([]psea.Indicator, error) {
	var rows []models.IndicatorModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	indicators := make([]psea.Indicator, 0, len(rows))
	for i := range rows {
		indicators = append(indicators, rows[i].ToDomain())
	}
	return indicators, nil
}

// RatingWeights maps every rating id of the catalog to its weight.
// Inactive indicators stay included so old answers keep scoring.
func (r *GormIndicatorRepository) RatingWeights(ctx context.Context) (map[uuid.UUID]int, error) {
	var rows []models.IndicatorModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	weights := make(map[uuid.UUID]int)
	for i := range rows {
		for _, rating := range rows[i].Ratings {
			weights[rating.ID] = rating.Weight
		}
	}
	return weights, nil
}

// Ensure GormIndicatorRepository implements psea.IndicatorRepository
var _ psea.IndicatorRepository = (*GormIndicatorRepository)(nil)
