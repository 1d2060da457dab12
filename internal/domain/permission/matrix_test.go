package permission

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/unicef/etools-sub003/internal/domain/identity"
)

func TestMatrix_FieldPermission(t *testing.T) {
	m := NewMatrix([]Entry{{
		Kind:         identity.KindEngagement,
		Status:       "partner_contacted",
		Role:         identity.RoleAuditor,
		DefaultField: Read,
		Fields:       map[string]FieldPermission{"findings": Write, "send_back_comment": Hidden},
	}})

	t.Run("explicit field wins", func(t *testing.T) {
		assert.Equal(t, Write, m.FieldPermission(identity.KindEngagement, "partner_contacted", identity.RoleAuditor, "findings"))
		assert.Equal(t, Hidden, m.FieldPermission(identity.KindEngagement, "partner_contacted", identity.RoleAuditor, "send_back_comment"))
	})

	t.Run("unlisted field falls back to the default", func(t *testing.T) {
		assert.Equal(t, Read, m.FieldPermission(identity.KindEngagement, "partner_contacted", identity.RoleAuditor, "partner"))
	})

	t.Run("missing row is hidden", func(t *testing.T) {
		assert.Equal(t, Hidden, m.FieldPermission(identity.KindEngagement, "final", identity.RoleAuditor, "findings"))
		assert.Equal(t, Hidden, m.FieldPermission(identity.KindTPMVisit, "partner_contacted", identity.RoleAuditor, "findings"))
	})
}

func TestMatrix_CombinedFieldPermission(t *testing.T) {
	m := NewMatrix([]Entry{
		{Kind: identity.KindPSEA, Status: "final", Role: identity.RolePartnerFocalPoint, DefaultField: Hidden,
			Fields: map[string]FieldPermission{"overall_rating": Read}},
		{Kind: identity.KindPSEA, Status: "final", Role: identity.RoleAuditFocalPoint, DefaultField: Read},
	})
	roles := []identity.Role{identity.RolePartnerFocalPoint, identity.RoleAuditFocalPoint}

	assert.Equal(t, Read, m.CombinedFieldPermission(identity.KindPSEA, "final", roles, "answers"))
	assert.Equal(t, Hidden, m.CombinedFieldPermission(identity.KindPSEA, "final",
		[]identity.Role{identity.RolePartnerFocalPoint}, "answers"))
	assert.Equal(t, Hidden, m.CombinedFieldPermission(identity.KindPSEA, "final", nil, "answers"))
}

func TestMatrix_ActionAllowed(t *testing.T) {
	m := NewMatrix([]Entry{{
		Kind: identity.KindTPMVisit, Status: "assigned", Role: identity.RoleThirdPartyMon,
		Actions: []string{ActionAccept, ActionReject},
	}})

	assert.True(t, m.ActionAllowed(identity.KindTPMVisit, "assigned", identity.RoleThirdPartyMon, ActionAccept))
	assert.False(t, m.ActionAllowed(identity.KindTPMVisit, "assigned", identity.RoleThirdPartyMon, ActionApprove))
	assert.False(t, m.ActionAllowed(identity.KindTPMVisit, "draft", identity.RoleThirdPartyMon, ActionAccept))

	t.Run("any role may carry the action", func(t *testing.T) {
		roles := []identity.Role{identity.RoleUNICEFUser, identity.RoleThirdPartyMon}
		assert.True(t, m.AnyActionAllowed(identity.KindTPMVisit, "assigned", roles, ActionAccept))
		assert.False(t, m.AnyActionAllowed(identity.KindTPMVisit, "assigned",
			[]identity.Role{identity.RoleUNICEFUser}, ActionAccept))
	})
}

func TestDefault(t *testing.T) {
	m := Default()

	t.Run("auditor submits while the focal point cannot", func(t *testing.T) {
		assert.True(t, m.ActionAllowed(identity.KindEngagement, "partner_contacted", identity.RoleAuditor, ActionSubmit))
		assert.False(t, m.ActionAllowed(identity.KindEngagement, "partner_contacted", identity.RoleAuditFocalPoint, ActionSubmit))
	})

	t.Run("focal point finalizes submitted reports", func(t *testing.T) {
		assert.True(t, m.ActionAllowed(identity.KindEngagement, "report_submitted", identity.RoleAuditFocalPoint, ActionFinalize))
		assert.True(t, m.ActionAllowed(identity.KindEngagement, "report_submitted", identity.RoleAuditFocalPoint, ActionSendBack))
		assert.False(t, m.ActionAllowed(identity.KindEngagement, "report_submitted", identity.RoleAuditor, ActionSubmit))
	})

	t.Run("send back comment is hidden from plain unicef users", func(t *testing.T) {
		assert.Equal(t, Hidden, m.FieldPermission(identity.KindEngagement, "report_submitted", identity.RoleUNICEFUser, "send_back_comment"))
		assert.Equal(t, Read, m.FieldPermission(identity.KindEngagement, "report_submitted", identity.RoleUNICEFUser, "partner"))
	})

	t.Run("vendor staff report only after acceptance", func(t *testing.T) {
		assert.True(t, m.ActionAllowed(identity.KindTPMVisit, "tpm_accepted", identity.RoleThirdPartyMon, ActionSendReport))
		assert.False(t, m.ActionAllowed(identity.KindTPMVisit, "assigned", identity.RoleThirdPartyMon, ActionSendReport))
	})

	t.Run("psea final flips everything to read", func(t *testing.T) {
		assert.Equal(t, Read, m.FieldPermission(identity.KindPSEA, "final", identity.RoleAuditFocalPoint, "answers"))
		assert.False(t, m.AnyActionAllowed(identity.KindPSEA, "final",
			[]identity.Role{identity.RoleAuditFocalPoint, identity.RoleAssessorUser}, ActionSubmit))
	})

	t.Run("partner focal point sees psea results only when final", func(t *testing.T) {
		assert.Equal(t, Hidden, m.FieldPermission(identity.KindPSEA, "in_progress", identity.RolePartnerFocalPoint, "answers"))
		assert.Equal(t, Read, m.FieldPermission(identity.KindPSEA, "in_progress", identity.RolePartnerFocalPoint, "status"))
		assert.Equal(t, Read, m.FieldPermission(identity.KindPSEA, "final", identity.RolePartnerFocalPoint, "answers"))
	})

	t.Run("system runs transitions on every kind", func(t *testing.T) {
		system := []identity.Role{identity.RoleSystem}
		assert.True(t, m.AnyActionAllowed(identity.KindEngagement, "report_submitted", system, ActionFinalize))
		assert.True(t, m.AnyActionAllowed(identity.KindTPMVisit, "draft", system, ActionAssign))
		assert.True(t, m.AnyActionAllowed(identity.KindTPMVisit, "tpm_reported", system, ActionApprove))
		assert.True(t, m.AnyActionAllowed(identity.KindPSEA, "submitted", system, ActionFinalize))
		assert.True(t, m.AnyActionAllowed(identity.KindInventory, "COMPLETED", system, ActionReverse))
		assert.Equal(t, Write, m.FieldPermission(identity.KindPSEA, "in_progress", identity.RoleSystem, "answers"))
	})

	t.Run("reverse and bulk review are admin only", func(t *testing.T) {
		assert.True(t, m.ActionAllowed(identity.KindInventory, "COMPLETED", identity.RoleLMSMCOAdmin, ActionReverse))
		assert.False(t, m.ActionAllowed(identity.KindInventory, "COMPLETED", identity.RoleIPLMEditor, ActionReverse))
		assert.False(t, m.ActionAllowed(identity.KindInventory, "COMPLETED", identity.RoleIPLMEditor, ActionBulkReview))
		assert.True(t, m.ActionAllowed(identity.KindInventory, "PENDING", identity.RoleIPLMEditor, ActionCheckIn))
	})
}
