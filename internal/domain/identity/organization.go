package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// OrganizationType distinguishes the kinds of firms the platform works with.
type OrganizationType string

const (
	OrganizationPartner     OrganizationType = "partner"
	OrganizationAuditorFirm OrganizationType = "auditor_firm"
	OrganizationTPMPartner  OrganizationType = "tpm_partner"
	OrganizationUNICEF      OrganizationType = "unicef"
)

// IsValid checks if the type is a known OrganizationType.
func (t OrganizationType) IsValid() bool {
	switch t {
	case OrganizationPartner, OrganizationAuditorFirm, OrganizationTPMPartner, OrganizationUNICEF:
		return true
	}
	return false
}

// RiskRating is the assurance risk classification of a partner.
type RiskRating string

const (
	RiskRatingNotAssessed RiskRating = "not_assessed"
	RiskRatingLow         RiskRating = "low"
	RiskRatingMedium      RiskRating = "medium"
	RiskRatingSignificant RiskRating = "significant"
	RiskRatingHigh        RiskRating = "high"
)

// Contact holds organization contact details.
type Contact struct {
	Email   string
	Phone   string
	Address string
}

// Organization represents a partner, auditor firm or TPM vendor. The vendor
// number is the stable ERP key: once set it only changes through ERP sync.
// Organizations are hidden, never hard-deleted, while referenced.
type Organization struct {
	shared.TenantAggregateRoot
	VendorNumber       string
	Name               string
	ShortName          string
	Type               OrganizationType
	Contact            Contact
	Hidden             bool
	Blocked            bool
	RiskRating         RiskRating
	LastAssessmentDate *time.Time
	AuditsCompleted    int
}

// NewOrganization creates an organization of the given type.
func NewOrganization(tenantID uuid.UUID, orgType OrganizationType, vendorNumber, name string) (*Organization, error) {
	if !orgType.IsValid() {
		return nil, shared.NewValidationError("organization_type", "unknown organization type")
	}
	if name == "" {
		return nil, shared.NewValidationError("name", "name cannot be empty")
	}
	return &Organization{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		VendorNumber:        vendorNumber,
		Name:                name,
		Type:                orgType,
		RiskRating:          RiskRatingNotAssessed,
	}, nil
}

// AssignVendorNumber sets the vendor number on first assignment only.
func (o *Organization) AssignVendorNumber(vendorNumber string) error {
	if vendorNumber == "" {
		return shared.NewValidationError("vendor_number", "vendor number cannot be empty")
	}
	if o.VendorNumber != "" && o.VendorNumber != vendorNumber {
		return shared.NewDomainError("vendor_number_immutable", "vendor number can only change through ERP sync")
	}
	o.VendorNumber = vendorNumber
	o.Touch()
	return nil
}

// ApplyERPSync upserts ERP-owned fields. This is the only path that may
// rewrite the vendor number.
func (o *Organization) ApplyERPSync(vendorNumber, name string, blocked bool) {
	o.VendorNumber = vendorNumber
	if name != "" {
		o.Name = name
	}
	o.Blocked = blocked
	o.Touch()
}

// Hide logically removes the organization while references remain.
func (o *Organization) Hide() {
	o.Hidden = true
	o.Touch()
}

// Unhide restores a hidden organization.
func (o *Organization) Unhide() {
	o.Hidden = false
	o.Touch()
}

// RecordAssessment stores the outcome of a completed assessment.
func (o *Organization) RecordAssessment(rating RiskRating, assessedAt time.Time) {
	o.RiskRating = rating
	o.LastAssessmentDate = &assessedAt
	o.Touch()
}

// IncrementAuditsCompleted bumps the completed audit counter. Called when an
// audit or special audit reaches its final state.
func (o *Organization) IncrementAuditsCompleted() {
	o.AuditsCompleted++
	o.Touch()
}
