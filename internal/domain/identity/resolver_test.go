package identity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

const emailSuffix = "@unicef.org"

func unicefActor(groups ...string) Actor {
	return Actor{
		UserID: uuid.New(),
		Email:  "jsmith@unicef.org",
		Groups: groups,
	}
}

func TestResolve_System(t *testing.T) {
	r := NewRoleResolver(emailSuffix)
	roles := r.Resolve(Actor{System: true, Groups: []string{GroupAuditFocalPoint}}, SubjectContext{Kind: KindEngagement})
	assert.Equal(t, []Role{RoleSystem}, roles)
}

func TestResolve_Engagement(t *testing.T) {
	r := NewRoleResolver(emailSuffix)
	firmID := uuid.New()
	subject := SubjectContext{Kind: KindEngagement, FirmID: &firmID}

	t.Run("unicef focal point group", func(t *testing.T) {
		roles := r.Resolve(unicefActor(GroupAuditFocalPoint), subject)
		assert.ElementsMatch(t, []Role{RoleAuditFocalPoint, RoleUNICEFUser}, roles)
	})

	t.Run("the group alone is not enough without the email domain", func(t *testing.T) {
		actor := Actor{UserID: uuid.New(), Email: "jsmith@auditor.example", Groups: []string{GroupAuditFocalPoint}}
		assert.Empty(t, r.Resolve(actor, subject))
	})

	t.Run("firm staff are auditors", func(t *testing.T) {
		actor := Actor{UserID: uuid.New(), Email: "staff@auditor.example", OrganizationIDs: []uuid.UUID{firmID}}
		assert.Equal(t, []Role{RoleAuditor}, r.Resolve(actor, subject))
	})

	t.Run("email suffix match is case insensitive", func(t *testing.T) {
		actor := Actor{UserID: uuid.New(), Email: "JSMITH@UNICEF.ORG"}
		assert.Equal(t, []Role{RoleUNICEFUser}, r.Resolve(actor, subject))
	})
}

func TestResolve_TPMVisit(t *testing.T) {
	r := NewRoleResolver(emailSuffix)
	firmID := uuid.New()
	focalPoint := uuid.New()
	subject := SubjectContext{Kind: KindTPMVisit, FirmID: &firmID, FocalPointIDs: []uuid.UUID{focalPoint}}

	t.Run("pme", func(t *testing.T) {
		roles := r.Resolve(unicefActor(GroupPME), subject)
		assert.ElementsMatch(t, []Role{RolePME, RoleUNICEFUser}, roles)
	})

	t.Run("vendor staff", func(t *testing.T) {
		actor := Actor{UserID: uuid.New(), Email: "m@tpmvendor.example", OrganizationIDs: []uuid.UUID{firmID}}
		assert.Equal(t, []Role{RoleThirdPartyMon}, r.Resolve(actor, subject))
	})

	t.Run("designated focal point", func(t *testing.T) {
		actor := Actor{UserID: focalPoint, Email: "fp@unicef.org"}
		roles := r.Resolve(actor, subject)
		assert.ElementsMatch(t, []Role{RoleVisitFocalPoint, RoleUNICEFUser}, roles)
	})
}

func TestResolve_PSEA(t *testing.T) {
	r := NewRoleResolver(emailSuffix)
	assessorID := uuid.New()
	partnerID := uuid.New()
	subject := SubjectContext{Kind: KindPSEA, AssessorUserID: &assessorID, PartnerID: &partnerID}

	t.Run("assigned assessor user", func(t *testing.T) {
		actor := Actor{UserID: assessorID, Email: "ext@consultants.example"}
		assert.Equal(t, []Role{RoleAssessorUser}, r.Resolve(actor, subject))
	})

	t.Run("partner staff are partner focal points", func(t *testing.T) {
		actor := Actor{UserID: uuid.New(), Email: "p@partner.example", OrganizationIDs: []uuid.UUID{partnerID}}
		assert.Equal(t, []Role{RolePartnerFocalPoint}, r.Resolve(actor, subject))
	})

	t.Run("vendor assessor staff via firm membership", func(t *testing.T) {
		firmID := uuid.New()
		vendorSubject := SubjectContext{Kind: KindPSEA, FirmID: &firmID}
		actor := Actor{UserID: uuid.New(), Email: "s@firm.example", OrganizationIDs: []uuid.UUID{firmID}}
		assert.Equal(t, []Role{RoleVendorAssessorStaff}, r.Resolve(actor, vendorSubject))
	})
}

func TestResolve_Inventory(t *testing.T) {
	r := NewRoleResolver(emailSuffix)
	partnerID := uuid.New()
	subject := SubjectContext{Kind: KindInventory, PartnerID: &partnerID}

	t.Run("admin groups need no partner scope", func(t *testing.T) {
		roles := r.Resolve(Actor{UserID: uuid.New(), Groups: []string{GroupLMSMCOAdmin}}, subject)
		assert.Equal(t, []Role{RoleLMSMCOAdmin}, roles)
	})

	t.Run("ip editor only inside their own partner", func(t *testing.T) {
		editor := Actor{UserID: uuid.New(), Groups: []string{GroupIPLMEditor}, PartnerID: &partnerID}
		assert.Equal(t, []Role{RoleIPLMEditor}, r.Resolve(editor, subject))

		other := uuid.New()
		editor.PartnerID = &other
		assert.Empty(t, r.Resolve(editor, subject))
	})

	t.Run("editor without a partner binding gets nothing", func(t *testing.T) {
		editor := Actor{UserID: uuid.New(), Groups: []string{GroupIPLMEditor}}
		assert.Empty(t, r.Resolve(editor, subject))
	})

	t.Run("unscoped subject admits any bound editor", func(t *testing.T) {
		editor := Actor{UserID: uuid.New(), Groups: []string{GroupIPLMEditor}, PartnerID: &partnerID}
		assert.Equal(t, []Role{RoleIPLMEditor}, r.Resolve(editor, SubjectContext{Kind: KindInventory}))
	})
}
