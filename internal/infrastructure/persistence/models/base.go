package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// BaseModel provides common persistence fields for all models.
// It maps to the domain's BaseEntity.
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// ToDomain converts BaseModel to domain BaseEntity
func (m *BaseModel) ToDomain() shared.BaseEntity {
	return shared.BaseEntity{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// FromDomainBaseEntity populates BaseModel from domain BaseEntity
func (m *BaseModel) FromDomainBaseEntity(e shared.BaseEntity) {
	m.ID = e.ID
	m.CreatedAt = e.CreatedAt
	m.UpdatedAt = e.UpdatedAt
}

// TenantAggregateModel provides common persistence fields for tenant-scoped
// aggregate roots, including the version column for optimistic locking.
type TenantAggregateModel struct {
	BaseModel
	Version  int       `gorm:"not null;default:1"`
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// FromDomainTenantAggregateRoot populates TenantAggregateModel from domain TenantAggregateRoot
func (m *TenantAggregateModel) FromDomainTenantAggregateRoot(t shared.TenantAggregateRoot) {
	m.FromDomainBaseEntity(t.BaseEntity)
	m.Version = t.Version
	m.TenantID = t.TenantID
}

// PopulateTenantAggregateRoot populates a domain TenantAggregateRoot from persistence model
func (m *TenantAggregateModel) PopulateTenantAggregateRoot(t *shared.TenantAggregateRoot) {
	t.BaseEntity.ID = m.ID
	t.BaseEntity.CreatedAt = m.CreatedAt
	t.BaseEntity.UpdatedAt = m.UpdatedAt
	t.Version = m.Version
	t.TenantID = m.TenantID
}

// SequenceCounter is one tenant-scoped counter row. Reference numbers of
// engagements, visits and assessments derive from it; callers lock the row
// before incrementing so sequences advance monotonically.
type SequenceCounter struct {
	TenantID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Scope    string    `gorm:"type:varchar(32);primaryKey"`
	Value    int64     `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SequenceCounter) TableName() string {
	return "sequence_counters"
}
