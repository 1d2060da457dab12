package identity

import "github.com/google/uuid"

// Actor is the request-scoped view of the authenticated user that role
// resolution needs. OrganizationIDs lists the organizations the actor is an
// active staff member of.
type Actor struct {
	UserID          uuid.UUID
	Email           string
	Groups          []string
	OrganizationIDs []uuid.UUID
	// PartnerID scopes IP LM editors to one partner organization.
	PartnerID *uuid.UUID
	System    bool
}

// InGroup reports directory group membership.
func (a Actor) InGroup(group string) bool {
	for _, g := range a.Groups {
		if g == group {
			return true
		}
	}
	return false
}

// MemberOf reports active staff membership in an organization.
func (a Actor) MemberOf(orgID uuid.UUID) bool {
	for _, id := range a.OrganizationIDs {
		if id == orgID {
			return true
		}
	}
	return false
}

// SubjectContext is the object-level membership view of one subject. Each
// workflow aggregate builds this for the resolver; the resolver never loads
// subjects itself.
type SubjectContext struct {
	Kind WorkflowKind
	// FocalPointIDs are the UNICEF focal points designated on the subject.
	FocalPointIDs []uuid.UUID
	// FirmID is the assigned auditor firm / TPM partner / assessor firm.
	FirmID *uuid.UUID
	// AssessorUserID is set for UNICEF/External PSEA assessors.
	AssessorUserID *uuid.UUID
	// PartnerID is the subject's implementing partner organization.
	PartnerID *uuid.UUID
}

// RoleResolver computes the set of roles an actor holds for a subject.
type RoleResolver struct {
	unicefEmailSuffix string
}

// NewRoleResolver creates a resolver with the internal email suffix from
// configuration.
func NewRoleResolver(unicefEmailSuffix string) *RoleResolver {
	return &RoleResolver{unicefEmailSuffix: unicefEmailSuffix}
}

// Resolve returns every role the actor holds for the subject. The result is
// order-insensitive; the permission matrix merges multiple roles by taking
// the most permissive answer.
func (r *RoleResolver) Resolve(actor Actor, subject SubjectContext) []Role {
	if actor.System {
		return []Role{RoleSystem}
	}

	var roles []Role
	isUNICEF := hasSuffixFold(actor.Email, r.unicefEmailSuffix)

	switch subject.Kind {
	case KindEngagement:
		if isUNICEF && actor.InGroup(GroupAuditFocalPoint) {
			roles = append(roles, RoleAuditFocalPoint)
		}
		if subject.FirmID != nil && actor.MemberOf(*subject.FirmID) {
			roles = append(roles, RoleAuditor)
		}
		if isUNICEF {
			roles = append(roles, RoleUNICEFUser)
		}

	case KindTPMVisit:
		if isUNICEF && actor.InGroup(GroupPME) {
			roles = append(roles, RolePME)
		}
		if subject.FirmID != nil && actor.MemberOf(*subject.FirmID) {
			roles = append(roles, RoleThirdPartyMon)
		}
		if containsID(subject.FocalPointIDs, actor.UserID) {
			roles = append(roles, RoleVisitFocalPoint)
		}
		if isUNICEF {
			roles = append(roles, RoleUNICEFUser)
		}

	case KindPSEA:
		if isUNICEF && actor.InGroup(GroupAuditFocalPoint) {
			roles = append(roles, RoleAuditFocalPoint)
		}
		if subject.AssessorUserID != nil && *subject.AssessorUserID == actor.UserID {
			roles = append(roles, RoleAssessorUser)
		}
		if subject.FirmID != nil && actor.MemberOf(*subject.FirmID) {
			roles = append(roles, RoleVendorAssessorStaff)
		}
		if subject.PartnerID != nil && actor.MemberOf(*subject.PartnerID) {
			roles = append(roles, RolePartnerFocalPoint)
		}
		if isUNICEF {
			roles = append(roles, RoleUNICEFUser)
		}

	case KindInventory:
		if actor.InGroup(GroupLMSMHQAdmin) {
			roles = append(roles, RoleLMSMHQAdmin)
		}
		if actor.InGroup(GroupLMSMCOAdmin) {
			roles = append(roles, RoleLMSMCOAdmin)
		}
		if actor.InGroup(GroupIPLMEditor) && actor.PartnerID != nil {
			if subject.PartnerID == nil || *subject.PartnerID == *actor.PartnerID {
				roles = append(roles, RoleIPLMEditor)
			}
		}
	}

	return roles
}

func containsID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func hasSuffixFold(email, suffix string) bool {
	if suffix == "" || len(email) < len(suffix) {
		return false
	}
	tail := email[len(email)-len(suffix):]
	for i := 0; i < len(suffix); i++ {
		a, b := tail[i], suffix[i]
		if 'A' <= a && a <= 'Z' {
			a += 'a' - 'A'
		}
		if 'A' <= b && b <= 'Z' {
			b += 'a' - 'A'
		}
		if a != b {
			return false
		}
	}
	return true
}
