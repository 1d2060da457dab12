package shared

import "github.com/google/uuid"

// AggregateRoot is the base interface for all aggregate roots.
type AggregateRoot interface {
	Entity
	GetVersion() int
	IncrementVersion()
	AddDomainEvent(event DomainEvent)
	GetDomainEvents() []DomainEvent
	ClearDomainEvents()
}

// BaseAggregateRoot provides version tracking and event collection.
type BaseAggregateRoot struct {
	BaseEntity
	Version      int           `gorm:"not null;default:1"`
	domainEvents []DomainEvent `gorm:"-"`
}

func (a *BaseAggregateRoot) GetVersion() int   { return a.Version }
func (a *BaseAggregateRoot) IncrementVersion() { a.Version++ }

// AddDomainEvent queues an event for publication after commit.
func (a *BaseAggregateRoot) AddDomainEvent(event DomainEvent) {
	a.domainEvents = append(a.domainEvents, event)
}

func (a *BaseAggregateRoot) GetDomainEvents() []DomainEvent { return a.domainEvents }
func (a *BaseAggregateRoot) ClearDomainEvents()             { a.domainEvents = nil }

// NewBaseAggregateRoot creates a new base aggregate root.
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{BaseEntity: NewBaseEntity(), Version: 1}
}

// TenantAggregateRoot scopes an aggregate to a tenant (country workspace).
// The tenant is ambient context; the core never decides tenant selection.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewTenantAggregateRoot creates a new tenant-scoped aggregate root.
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{BaseAggregateRoot: NewBaseAggregateRoot(), TenantID: tenantID}
}
