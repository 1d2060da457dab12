package identity

import (
	"context"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// OrganizationRepository defines persistence for organizations.
type OrganizationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Organization, error)
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Organization, error)
	FindByVendorNumber(ctx context.Context, tenantID uuid.UUID, vendorNumber string) (*Organization, error)
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Organization, error)
	Save(ctx context.Context, org *Organization) error
	CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error)
}

// StaffMemberRepository defines persistence for staff members.
type StaffMemberRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*StaffMember, error)
	FindByUser(ctx context.Context, userID uuid.UUID) ([]StaffMember, error)
	FindActiveByOrganization(ctx context.Context, organizationID uuid.UUID) ([]StaffMember, error)
	Save(ctx context.Context, member *StaffMember) error
}

// UserRepository defines read access to the synced user directory.
type UserRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByGroup(ctx context.Context, group string) ([]User, error)
}
