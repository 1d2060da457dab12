package engagement

import (
	"context"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Repository defines persistence for engagements. Save assigns the
// tenant-scoped sequence number on first insert under a counter row lock so
// reference numbers advance monotonically under concurrent callers.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Engagement, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Engagement, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Engagement, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, e *Engagement) error
	SaveWithLock(ctx context.Context, e *Engagement) error
}
