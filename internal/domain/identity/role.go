package identity

// WorkflowKind names the subject families the platform manages.
type WorkflowKind string

const (
	KindEngagement WorkflowKind = "engagement"
	KindTPMVisit   WorkflowKind = "tpm_visit"
	KindPSEA       WorkflowKind = "psea_assessment"
	KindInventory  WorkflowKind = "inventory"
)

// Role is the relation an actor holds to a subject. Roles are computed per
// request: they depend on membership sets that change over the subject's
// lifetime, so they are never cached across transitions.
type Role string

const (
	// Engagement roles.
	RoleAuditFocalPoint Role = "unicef_audit_focal_point"
	RoleAuditor         Role = "auditor"
	RoleUNICEFUser      Role = "unicef_user"
	RoleSystem          Role = "system"

	// TPM visit roles.
	RolePME             Role = "pme"
	RoleThirdPartyMon   Role = "third_party_monitor"
	RoleVisitFocalPoint Role = "unicef_focal_point"

	// PSEA assessment roles.
	RoleAssessorUser        Role = "assessor_user"
	RoleVendorAssessorStaff Role = "vendor_assessor_staff"
	RolePartnerFocalPoint   Role = "partner_focal_point"

	// Inventory roles.
	RoleLMSMCOAdmin Role = "lmsm_co_admin"
	RoleLMSMHQAdmin Role = "lmsm_hq_admin"
	RoleIPLMEditor  Role = "ip_lm_editor"
)
