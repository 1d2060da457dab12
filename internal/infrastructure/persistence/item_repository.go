package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormItemRepository implements lastmile.ItemRepository.
type GormItemRepository struct {
	db *gorm.DB
}

// NewGormItemRepository creates a new item repository.
func NewGormItemRepository(db *gorm.DB) *GormItemRepository {
	return &GormItemRepository{db: db}
}

// FindByID retrieves an item by its identifier.
func (r *GormItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*lastmile.Item, error) {
	var model models.ItemModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "item")
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate retrieves an item under a row lock so concurrent
// splits and updates of the same item serialize.
func (r *GormItemRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*lastmile.Item, error) {
	var model models.ItemModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&model, "id = ?", id).Error
	if err != nil {
		return nil, notFoundOr(err, "item")
	}
	return model.ToDomain(), nil
}

// FindStockedAtLocation resolves the requested items to the stock actually
// held at a location: visible items riding on completed transfers destined
// there for the partner. Each hit carries its owning transfer so callers
// can validate and clone from it.
func (r *GormItemRepository) FindStockedAtLocation(ctx context.Context, poiID, partnerID uuid.UUID, ids []uuid.UUID) (map[uuid.UUID]lastmile.SourceItem, error) {
	sources := make(map[uuid.UUID]lastmile.SourceItem, len(ids))
	if len(ids) == 0 {
		return sources, nil
	}

	var itemRows []models.ItemModel
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ? AND hidden = false", ids).
		Find(&itemRows).Error
	if err != nil {
		return nil, err
	}
	if len(itemRows) == 0 {
		return sources, nil
	}

	transferIDs := make([]uuid.UUID, 0, len(itemRows))
	for i := range itemRows {
		transferIDs = append(transferIDs, itemRows[i].TransferID)
	}
	var transferRows []models.TransferModel
	err = r.db.WithContext(ctx).
		Where("id IN ?", transferIDs).
		Where("destination_point_id = ? AND status = ?", poiID, string(lastmile.TransferCompleted)).
		Where("partner_id = ? OR recipient_partner_id = ?", partnerID, partnerID).
		Find(&transferRows).Error
	if err != nil {
		return nil, err
	}

	transfers := make(map[uuid.UUID]*lastmile.Transfer, len(transferRows))
	for i := range transferRows {
		transfers[transferRows[i].ID] = transferRows[i].ToDomain()
	}
	for i := range itemRows {
		t, stocked := transfers[itemRows[i].TransferID]
		if !stocked {
			continue
		}
		sources[itemRows[i].ID] = lastmile.SourceItem{Item: itemRows[i].ToDomain(), Transfer: t}
	}
	return sources, nil
}

// SaveSplit writes a split: the shrunk original, its new siblings and the
// audit rows in one transaction.
func (r *GormItemRepository) SaveSplit(ctx context.Context, original *lastmile.Item, siblings []*lastmile.Item, logs []*lastmile.ItemAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ItemModelFromDomain(original)).Error; err != nil {
			return err
		}
		for _, sibling := range siblings {
			if err := tx.Save(models.ItemModelFromDomain(sibling)).Error; err != nil {
				return err
			}
		}
		return appendAuditLogs(tx, logs)
	})
}

// SaveUpdate writes one item mutation together with its audit row.
func (r *GormItemRepository) SaveUpdate(ctx context.Context, item *lastmile.Item, log *lastmile.ItemAuditLog) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(models.ItemModelFromDomain(item)).Error; err != nil {
			return err
		}
		if log == nil {
			return nil
		}
		return tx.Create(models.ItemAuditLogModelFromDomain(log)).Error
	})
}

// Save persists items without audit rows.
func (r *GormItemRepository) Save(ctx context.Context, items ...*lastmile.Item) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			if err := tx.Save(models.ItemModelFromDomain(item)).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

var _ lastmile.ItemRepository = (*GormItemRepository)(nil)
