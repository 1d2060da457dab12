package psea

import (
	"context"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Repository defines persistence for PSEA assessments.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Assessment, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Assessment, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Assessment, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, a *Assessment) error
	SaveWithLock(ctx context.Context, a *Assessment) error
}
