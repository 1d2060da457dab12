package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormPointOfInterestRepository implements lastmile.PointOfInterestRepository.
type GormPointOfInterestRepository struct {
	db *gorm.DB
}

// NewGormPointOfInterestRepository creates a new location repository.
func NewGormPointOfInterestRepository(db *gorm.DB) *GormPointOfInterestRepository {
	return &GormPointOfInterestRepository{db: db}
}

// FindByID retrieves a location by its identifier.
func (r *GormPointOfInterestRepository) FindByID(ctx context.Context, id uuid.UUID) (*lastmile.PointOfInterest, error) {
	var model models.PointOfInterestModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "point of interest")
	}
	return model.ToDomain(), nil
}

// FindByPCode retrieves a location by its tenant-scoped p-code.
func (r *GormPointOfInterestRepository) FindByPCode(ctx context.Context, tenantID uuid.UUID, pCode string) (*lastmile.PointOfInterest, error) {
	var model models.PointOfInterestModel
	err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND p_code = ?", tenantID, pCode).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "point of interest")
	}
	return model.ToDomain(), nil
}

// FindAllForPartner lists the locations a partner can see: public locations
// plus those explicitly shared with the partner.
func (r *GormPointOfInterestRepository) FindAllForPartner(ctx context.Context, tenantID, partnerID uuid.UUID, filter shared.Filter) ([]lastmile.PointOfInterest, error) {
	query := r.db.WithContext(ctx).
		Model(&models.PointOfInterestModel{}).
		Where("tenant_id = ?", tenantID).
		Where("partner_ids IS NULL OR partner_ids = '[]' OR partner_ids @> ?", jsonbUUID(partnerID))

	if filter.Search != "" {
		pattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR p_code ILIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "poi_type_id":
			query = query.Where("poi_type_id = ?", value)
		case "approval_status":
			query = query.Where("approval_status = ?", value)
		case "is_active":
			query = query.Where("is_active = ?", value)
		}
	}

	query = applySort(query, filter.Sort, PointOfInterestSortFields)
	query = applyPagination(query, filter)

	var rows []models.PointOfInterestModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	points := make([]lastmile.PointOfInterest, 0, len(rows))
	for i := range rows {
		points = append(points, *rows[i].ToDomain())
	}
	return points, nil
}

// CountStockedItems counts the visible items currently stocked at a
// location, i.e. items riding on completed transfers destined there.
func (r *GormPointOfInterestRepository) CountStockedItems(ctx context.Context, poiID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.ItemModel{}).
		Joins("JOIN lastmile_transfers ON lastmile_transfers.id = lastmile_items.transfer_id").
		Where("lastmile_transfers.destination_point_id = ?", poiID).
		Where("lastmile_transfers.status = ?", string(lastmile.TransferCompleted)).
		Where("lastmile_items.hidden = false AND lastmile_items.quantity > 0").
		Count(&count).Error
	return count, err
}

// FindTypes lists every location category.
func (r *GormPointOfInterestRepository) FindTypes(ctx context.Context) ([]lastmile.PoIType, error) {
	var rows []models.PoITypeModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	types := make([]lastmile.PoIType, 0, len(rows))
	for i := range rows {
		types = append(types, rows[i].ToDomain())
	}
	return types, nil
}

// FindTypeMappings lists the allowed primary/secondary type pairs.
func (r *GormPointOfInterestRepository) FindTypeMappings(ctx context.Context) ([]lastmile.PoITypeMapping, error) {
	var rows []models.PoITypeMappingModel
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}
	mappings := make([]lastmile.PoITypeMapping, 0, len(rows))
	for i := range rows {
		mappings = append(mappings, rows[i].ToDomain())
	}
	return mappings, nil
}

// FindConsignee retrieves the consignee code bound to a location.
func (r *GormPointOfInterestRepository) FindConsignee(ctx context.Context, poiID uuid.UUID) (*lastmile.Consignee, error) {
	var model models.ConsigneeModel
	err := r.db.WithContext(ctx).
		Where("point_of_interest_id = ?", poiID).
		First(&model).Error
	if err != nil {
		return nil, notFoundOr(err, "consignee")
	}
	return model.ToDomain(), nil
}

// SaveConsignee persists a consignee binding. A location carries at most
// one consignee, so an existing row for the same location is a conflict.
func (r *GormPointOfInterestRepository) SaveConsignee(ctx context.Context, c *lastmile.Consignee) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&models.ConsigneeModel{}).
			Where("point_of_interest_id = ? AND id <> ?", c.PointOfInterestID, c.ID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return shared.ErrConsigneeExists
		}
		model := &models.ConsigneeModel{}
		model.FromDomain(c)
		return tx.Save(model).Error
	})
}

// Save persists a location.
func (r *GormPointOfInterestRepository) Save(ctx context.Context, p *lastmile.PointOfInterest) error {
	model := models.PointOfInterestModelFromDomain(p)
	return r.db.WithContext(ctx).Save(model).Error
}

// jsonbUUID renders one uuid as a jsonb array literal for containment checks.
func jsonbUUID(id uuid.UUID) string {
	return `["` + id.String() + `"]`
}

var _ lastmile.PointOfInterestRepository = (*GormPointOfInterestRepository)(nil)
