package identity

import (
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// StaffMember links one user to exactly one organization. Deactivating a
// staff member withdraws the roles that depend on it; prior references to
// the member remain valid.
type StaffMember struct {
	shared.BaseEntity
	OrganizationID uuid.UUID
	UserID         uuid.UUID
	Active         bool
}

// NewStaffMember creates an active staff member for an organization.
func NewStaffMember(organizationID, userID uuid.UUID) (*StaffMember, error) {
	if organizationID == uuid.Nil {
		return nil, shared.NewValidationError("organization_id", "organization is required")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user_id", "user is required")
	}
	return &StaffMember{
		BaseEntity:     shared.NewBaseEntity(),
		OrganizationID: organizationID,
		UserID:         userID,
		Active:         true,
	}, nil
}

// Deactivate withdraws the membership without deleting the record.
func (m *StaffMember) Deactivate() {
	m.Active = false
	m.Touch()
}

// Reactivate restores the membership.
func (m *StaffMember) Reactivate() {
	m.Active = true
	m.Touch()
}
