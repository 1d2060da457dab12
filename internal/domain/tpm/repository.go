package tpm

import (
	"context"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Repository defines persistence for TPM visits. Save assigns the visit's
// tenant-scoped sequence number on first insert under a counter row lock.
type Repository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Visit, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Visit, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Visit, error)
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
	Save(ctx context.Context, v *Visit) error
	SaveWithLock(ctx context.Context, v *Visit) error
}
