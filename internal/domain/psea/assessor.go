package psea

import (
	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// AssessorType is the variant of the single assessor on an assessment.
type AssessorType string

const (
	AssessorUNICEF   AssessorType = "unicef"
	AssessorExternal AssessorType = "external"
	AssessorVendor   AssessorType = "vendor"
)

// IsValid checks if the type is a known AssessorType.
func (t AssessorType) IsValid() bool {
	switch t {
	case AssessorUNICEF, AssessorExternal, AssessorVendor:
		return true
	}
	return false
}

// Assessor is the entity performing an assessment. UNICEF and External
// assessors are single users; a Vendor assessor is an auditor firm with a
// staff set scoped to that firm and a purchase order binding the work.
type Assessor struct {
	ID                 uuid.UUID
	Type               AssessorType
	UserID             *uuid.UUID
	AuditorFirmID      *uuid.UUID
	AuditorFirmStaffID []uuid.UUID
	OrderNumber        string
}

// NewUserAssessor creates a UNICEF or External assessor.
func NewUserAssessor(assessorType AssessorType, userID uuid.UUID) (*Assessor, error) {
	if assessorType != AssessorUNICEF && assessorType != AssessorExternal {
		return nil, shared.NewValidationError("assessor_type", "user assessors are unicef or external")
	}
	if userID == uuid.Nil {
		return nil, shared.NewValidationError("user", "user is required")
	}
	return &Assessor{ID: uuid.New(), Type: assessorType, UserID: &userID}, nil
}

// NewVendorAssessor creates a firm assessor bound to a purchase order.
func NewVendorAssessor(firmID uuid.UUID, staffIDs []uuid.UUID, orderNumber string) (*Assessor, error) {
	if firmID == uuid.Nil {
		return nil, shared.NewValidationError("auditor_firm", "auditor firm is required")
	}
	if orderNumber == "" {
		return nil, shared.NewValidationError("order_number", "order number is required")
	}
	return &Assessor{
		ID:                 uuid.New(),
		Type:               AssessorVendor,
		AuditorFirmID:      &firmID,
		AuditorFirmStaffID: staffIDs,
		OrderNumber:        orderNumber,
	}, nil
}

// SwitchType resets the variant-specific attributes atomically when the
// assessor kind changes.
func (a *Assessor) SwitchType(assessorType AssessorType) error {
	if !assessorType.IsValid() {
		return shared.NewValidationError("assessor_type", "unknown assessor type")
	}
	if a.Type == assessorType {
		return nil
	}
	a.Type = assessorType
	a.UserID = nil
	a.AuditorFirmID = nil
	a.AuditorFirmStaffID = nil
	a.OrderNumber = ""
	return nil
}

// Validate checks the variant invariants ahead of assignment.
func (a *Assessor) Validate() error {
	switch a.Type {
	case AssessorUNICEF, AssessorExternal:
		if a.UserID == nil {
			return shared.RequiredField("user")
		}
	case AssessorVendor:
		if a.AuditorFirmID == nil {
			return shared.RequiredField("auditor_firm")
		}
		if len(a.AuditorFirmStaffID) == 0 {
			return shared.RequiredField("auditor_firm_staff")
		}
		if a.OrderNumber == "" {
			return shared.RequiredField("order_number")
		}
	default:
		return shared.NewValidationError("assessor_type", "unknown assessor type")
	}
	return nil
}
