package persistence

import (
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/unicef/etools-sub003/internal/infrastructure/persistence/models"
)

// Counter scopes. One counter row per (tenant, scope) pair.
const (
	sequenceScopeEngagement = "engagement"
	sequenceScopeTPMVisit   = "tpm_visit"
	sequenceScopePSEA       = "psea_assessment"
	sequenceScopeTransfer   = "lastmile_transfer"
)

// nextSequence increments and returns the tenant-scoped counter under a row
// lock. Must run inside the caller's transaction so the sequence commits or
// rolls back with the aggregate it numbers.
func nextSequence(tx *gorm.DB, tenantID uuid.UUID, scope string) (int64, error) {
	var row models.SequenceCounter
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ? AND scope = ?", tenantID, scope).
		First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		row = models.SequenceCounter{TenantID: tenantID, Scope: scope, Value: 1}
		if err := tx.Create(&row).Error; err != nil {
			return 0, err
		}
		return row.Value, nil
	}
	if err != nil {
		return 0, err
	}
	row.Value++
	if err := tx.Model(&models.SequenceCounter{}).
		Where("tenant_id = ? AND scope = ?", tenantID, scope).
		Update("value", row.Value).Error; err != nil {
		return 0, err
	}
	return row.Value, nil
}
