package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormOrganizationRepository implements identity.OrganizationRepository using GORM
type GormOrganizationRepository struct {
	db *gorm.DB
}

// NewGormOrganizationRepository creates a new GormOrganizationRepository
func NewGormOrganizationRepository(db *gorm.DB) *GormOrganizationRepository {
	return &GormOrganizationRepository{db: db}
}

// FindByID finds an organization by its ID
func (r *GormOrganizationRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "organization")
	}
	return model.ToDomain(), nil
}

// FindByIDForTenant finds an organization by ID within a tenant
func (r *GormOrganizationRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "organization")
	}
	return model.ToDomain(), nil
}

// FindByVendorNumber finds an organization by its stable ERP key
func (r *GormOrganizationRepository) FindByVendorNumber(ctx context.Context, tenantID uuid.UUID, vendorNumber string) (*identity.Organization, error) {
	var model models.OrganizationModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND vendor_number = ?", tenantID, vendorNumber).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "organization")
	}
	return model.ToDomain(), nil
}

// FindAllForTenant finds all organizations for a tenant with filtering.
// Hidden organizations are excluded unless explicitly requested.
func (r *GormOrganizationRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]identity.Organization, error) {
	var rows []models.OrganizationModel
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.OrganizationModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	query = applySort(query, filter.Sort, OrganizationSortFields)
	query = applyPagination(query, filter)

	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]identity.Organization, 0, len(rows))
	for i := range rows {
		result = append(result, *rows[i].ToDomain())
	}
	return result, nil
}

// CountForTenant counts organizations for a tenant with optional filters
func (r *GormOrganizationRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.filtered(
		r.db.WithContext(ctx).Model(&models.OrganizationModel{}).Where("tenant_id = ?", tenantID),
		filter,
	)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an organization
func (r *GormOrganizationRepository) Save(ctx context.Context, org *identity.Organization) error {
	model := models.OrganizationModelFromDomain(org)
	return r.db.WithContext(ctx).Save(model).Error
}

// filtered applies search and field filters without pagination
func (r *GormOrganizationRepository) filtered(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR vendor_number ILIKE ?", pattern, pattern)
	}
	includeHidden := false
	for key, value := range filter.Filters {
		switch key {
		case "type":
			query = query.Where("type = ?", value)
		case "risk_rating":
			query = query.Where("risk_rating = ?", value)
		case "blocked":
			query = query.Where("blocked = ?", value)
		case "include_hidden":
			if b, ok := value.(bool); ok {
				includeHidden = b
			}
		}
	}
	if !includeHidden {
		query = query.Where("hidden = ?", false)
	}
	return query
}

// Ensure GormOrganizationRepository implements identity.OrganizationRepository
var _ identity.OrganizationRepository = (*GormOrganizationRepository)(nil)
