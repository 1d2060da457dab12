package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormMaterialRepository implements lastmile.MaterialRepository.
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new material catalog repository.
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID retrieves a material by its identifier.
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*lastmile.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "material")
	}
	return model.ToDomain(), nil
}

// FindByNumber retrieves a material by its ERP material number.
func (r *GormMaterialRepository) FindByNumber(ctx context.Context, number string) (*lastmile.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).Where("number = ?", number).First(&model).Error; err != nil {
		return nil, notFoundOr(err, "material")
	}
	return model.ToDomain(), nil
}

// FindNumbers resolves material ids to their ERP numbers in one query.
func (r *GormMaterialRepository) FindNumbers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	numbers := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return numbers, nil
	}
	var rows []models.MaterialModel
	err := r.db.WithContext(ctx).
		Select("id", "number").
		Where("id IN ?", ids).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		numbers[rows[i].ID] = rows[i].Number
	}
	return numbers, nil
}

// UpsertPartnerMaterial writes a partner's material description, replacing
// any previous one for the same partner and material pair.
func (r *GormMaterialRepository) UpsertPartnerMaterial(ctx context.Context, pm *lastmile.PartnerMaterial) error {
	model := &models.PartnerMaterialModel{}
	model.FromDomain(pm)
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "partner_id"}, {Name: "material_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"description", "updated_at"}),
		}).
		Create(model).Error
}

var _ lastmile.MaterialRepository = (*GormMaterialRepository)(nil)
