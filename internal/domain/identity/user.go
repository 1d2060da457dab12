package identity

import (
	"strings"

	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Directory group names granted through the user directory. Object-level
// roles (focal point for a specific visit, staff of the assigned firm) are
// not groups; they are resolved per request by the RoleResolver.
const (
	GroupAuditFocalPoint  = "UNICEF Audit Focal Point"
	GroupPME              = "PME"
	GroupLMSMCOAdmin      = "LMSM CO Admin"
	GroupLMSMHQAdmin      = "LMSM HQ Admin"
	GroupIPLMEditor       = "IP LM Editor"
	GroupWaybillRecipient = "Waybill Recipient"
)

// User is the directory identity an actor authenticates as. The directory
// itself (sync, SAML) is outside the core; the core only reads this shape.
type User struct {
	shared.BaseEntity
	Email     string
	FirstName string
	LastName  string
	Groups    []string
	IsActive  bool
}

// NewUser creates a user record.
func NewUser(email, firstName, lastName string) (*User, error) {
	if email == "" {
		return nil, shared.NewValidationError("email", "email cannot be empty")
	}
	return &User{
		BaseEntity: shared.NewBaseEntity(),
		Email:      strings.ToLower(email),
		FirstName:  firstName,
		LastName:   lastName,
		IsActive:   true,
	}, nil
}

// FullName returns the display name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// InGroup reports membership in a directory group.
func (u *User) InGroup(group string) bool {
	for _, g := range u.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// IsUNICEF reports whether the user belongs to the internal directory,
// decided by the configured email suffix (e.g. "@unicef.org").
func (u *User) IsUNICEF(emailSuffix string) bool {
	return emailSuffix != "" && strings.HasSuffix(u.Email, strings.ToLower(emailSuffix))
}
