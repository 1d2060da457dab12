package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/integration"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormPurchaseOrderRepository implements integration.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByOrderNumber finds a cached purchase order by its ERP order number
func (r *GormPurchaseOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*integration.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("order_number = ?", orderNumber).
		First(&model).Error; err != nil {
		return nil, notFoundOr(err, "purchase order")
	}
	return model.ToDomain(), nil
}

// FindByID finds a cached purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*integration.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFoundOr(err, "purchase order")
	}
	return model.ToDomain(), nil
}

// Save creates or updates a purchase order with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, po *integration.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(po)
		items := model.Items
		model.Items = nil
		if err := tx.Save(model).Error; err != nil {
			return err
		}

		currentItemIDs := make([]uuid.UUID, len(items))
		for i := range items {
			currentItemIDs[i] = items[i].ID
		}
		if len(currentItemIDs) > 0 {
			if err := tx.Where("purchase_order_id = ? AND id NOT IN ?", model.ID, currentItemIDs).
				Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("purchase_order_id = ?", model.ID).
				Delete(&models.PurchaseOrderItemModel{}).Error; err != nil {
				return err
			}
		}
		for i := range items {
			items[i].PurchaseOrderID = model.ID
			if err := tx.Save(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Ensure GormPurchaseOrderRepository implements integration.PurchaseOrderRepository
var _ integration.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
