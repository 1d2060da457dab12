package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// GormAuditLogRepository implements lastmile.AuditLogRepository. Rows are
// append-only.
type GormAuditLogRepository struct {
	db *gorm.DB
}

// NewGormAuditLogRepository creates a new item audit log repository.
func NewGormAuditLogRepository(db *gorm.DB) *GormAuditLogRepository {
	return &GormAuditLogRepository{db: db}
}

// Append writes audit entries.
func (r *GormAuditLogRepository) Append(ctx context.Context, entries ...*lastmile.ItemAuditLog) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return appendAuditLogs(tx, entries)
	})
}

// FindByItem lists an item's audit trail oldest first.
func (r *GormAuditLogRepository) FindByItem(ctx context.Context, itemID uuid.UUID) ([]lastmile.ItemAuditLog, error) {
	var rows []models.ItemAuditLogModel
	err := r.db.WithContext(ctx).
		Where("item_id = ?", itemID).
		Order("recorded_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	logs := make([]lastmile.ItemAuditLog, 0, len(rows))
	for i := range rows {
		logs = append(logs, rows[i].ToDomain())
	}
	return logs, nil
}

var _ lastmile.AuditLogRepository = (*GormAuditLogRepository)(nil)
