package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/tpm"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormTPMVisitRepository implements tpm.Repository using GORM
type GormTPMVisitRepository struct {
	db *gorm.DB
}

// NewGormTPMVisitRepository creates a new GormTPMVisitRepository
func NewGormTPMVisitRepository(db *gorm.DB) *GormTPMVisitRepository {
	return &GormTPMVisitRepository{db: db}
}

// FindByID finds a visit by its ID
func (r *GormTPMVisitRepository) FindByID(ctx context.Context, id uuid.UUID) (*tpm.Visit, error) {
	var model models.VisitModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("tpm visit")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds a visit by ID within a tenant
func (r *GormTPMVisitRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*tpm.Visit, error) {
	var model models.VisitModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFound("tpm visit")
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all visits for a tenant with filtering
func (r *GormTPMVisitRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]tpm.Visit, error) {
	var rows []models.VisitModel
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.VisitModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	query = applySort(query, filter.Sort, VisitSortFields)
	query = applyPagination(query, filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]tpm.Visit, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// CountForTenant counts visits for a tenant with optional filters
func (r *GormTPMVisitRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.VisitModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates a visit, assigning the tenant-scoped sequence
// number on first insert under the counter row lock.
func (r *GormTPMVisitRepository) Save(ctx context.Context, v *tpm.Visit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if v.SequenceNumber == 0 {
			seq, err := nextSequence(tx, v.TenantID, sequenceScopeTPMVisit)
			if err != nil {
				return err
			}
			v.SequenceNumber = seq
		}
		model := models.VisitModelFromDomain(v)
		return tx.Save(model).Error
	})
}

// SaveWithLock saves with optimistic locking on the version column.
func (r *GormTPMVisitRepository) SaveWithLock(ctx context.Context, v *tpm.Visit) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var currentVersion int
		if err := tx.Model(&models.VisitModel{}).
			Where("id = ?", v.ID).
			Select("version").
			Scan(&currentVersion).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.NewNotFound("tpm visit")
			}
			return err
		}
		if currentVersion != v.Version {
			return shared.NewConflict("the visit has been modified by another user")
		}

		v.Version++
		v.UpdatedAt = time.Now()
		model := models.VisitModelFromDomain(v)

		result := tx.Model(&models.VisitModel{}).
			Where("id = ? AND version = ?", v.ID, currentVersion).
			Select("*").
			Updates(model)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewConflict("the visit has been modified by another user")
		}
		return nil
	})
}

// filtered applies search and field filters without pagination
func (r *GormTPMVisitRepository) filtered(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("reference_number ILIKE ? OR vendor_number ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "tpm_partner_id":
			query = query.Where("tpm_partner_id = ?", value)
		case "focal_point_id":
			query = query.Where("unicef_focal_point_ids @> ?::jsonb", jsonbUUIDElement(value))
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

// Ensure GormTPMVisitRepository implements tpm.Repository
var _ tpm.Repository = (*GormTPMVisitRepository)(nil)
