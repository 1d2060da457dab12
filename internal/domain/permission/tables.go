package permission

import (
	"github.com/unicef/etools-sub003/internal/domain/identity"
)

// Transition actions. Names are shared with the workflow engines.
const (
	ActionSubmit         = "submit"
	ActionSendBack       = "send_back"
	ActionCancel         = "cancel"
	ActionFinalize       = "finalize"
	ActionAssign         = "assign"
	ActionAccept         = "accept"
	ActionReject         = "reject"
	ActionSendReport     = "send_report"
	ActionRejectReport   = "reject_report"
	ActionApprove        = "approve"
	ActionCheckIn        = "check_in"
	ActionCheckOut       = "check_out"
	ActionSplit          = "split"
	ActionUpdateItem     = "update_item"
	ActionReverse        = "reverse"
	ActionBulkReview     = "bulk_review"
	ActionUploadEvidence = "upload_evidence"
)

// Default declares the platform's permission matrix. The table is data, not
// behavior: adding a row never requires engine changes.
func Default() *Matrix {
	var entries []Entry
	entries = append(entries, engagementEntries()...)
	entries = append(entries, tpmEntries()...)
	entries = append(entries, pseaEntries()...)
	entries = append(entries, inventoryEntries()...)
	return NewMatrix(entries)
}

func engagementEntries() []Entry {
	const (
		stContacted = "partner_contacted"
		stReported  = "report_submitted"
		stFinal     = "final"
		stCancelled = "cancelled"
	)
	writable := func(fields ...string) map[string]FieldPermission {
		m := make(map[string]FieldPermission, len(fields))
		for _, f := range fields {
			m[f] = Write
		}
		return m
	}
	var entries []Entry

	// UNICEF audit focal point drives the lifecycle from the agency side.
	entries = append(entries,
		Entry{Kind: identity.KindEngagement, Status: stContacted, Role: identity.RoleAuditFocalPoint,
			DefaultField: Write, Fields: map[string]FieldPermission{"reference_number": Read, "status": Read},
			Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindEngagement, Status: stReported, Role: identity.RoleAuditFocalPoint,
			DefaultField: Read, Fields: writable("action_points", "send_back_comment", "cancel_comment"),
			Actions: []string{ActionSendBack, ActionFinalize, ActionCancel}},
		Entry{Kind: identity.KindEngagement, Status: stFinal, Role: identity.RoleAuditFocalPoint, DefaultField: Read},
		Entry{Kind: identity.KindEngagement, Status: stCancelled, Role: identity.RoleAuditFocalPoint, DefaultField: Read},
	)

	// Auditor staff of the assigned firm fill findings and submit the report.
	entries = append(entries,
		Entry{Kind: identity.KindEngagement, Status: stContacted, Role: identity.RoleAuditor,
			DefaultField: Read,
			Fields: writable(
				"report_attachments", "final_report", "financial_findings", "audited_expenditure",
				"financial_findings_local", "audited_expenditure_local", "audit_opinion",
				"total_amount_tested", "total_amount_of_ineligible_expenditure",
				"findings", "specific_procedures", "date_of_field_visit",
			),
			Actions: []string{ActionSubmit}},
		Entry{Kind: identity.KindEngagement, Status: stReported, Role: identity.RoleAuditor, DefaultField: Read},
		Entry{Kind: identity.KindEngagement, Status: stFinal, Role: identity.RoleAuditor, DefaultField: Read},
		Entry{Kind: identity.KindEngagement, Status: stCancelled, Role: identity.RoleAuditor, DefaultField: Read},
	)

	// Any UNICEF user sees engagements read-only; partner-sensitive comments
	// stay hidden.
	for _, st := range []string{stContacted, stReported, stFinal, stCancelled} {
		entries = append(entries, Entry{
			Kind: identity.KindEngagement, Status: st, Role: identity.RoleUNICEFUser,
			DefaultField: Read,
			Fields:       map[string]FieldPermission{"send_back_comment": Hidden},
		})
	}

	// System bypasses field restrictions and may run every transition.
	for _, st := range []string{stContacted, stReported, stFinal, stCancelled} {
		entries = append(entries, Entry{
			Kind: identity.KindEngagement, Status: st, Role: identity.RoleSystem,
			DefaultField: Write,
			Actions:      []string{ActionSubmit, ActionSendBack, ActionCancel, ActionFinalize},
		})
	}
	return entries
}

func tpmEntries() []Entry {
	const (
		stDraft          = "draft"
		stAssigned       = "assigned"
		stAccepted       = "tpm_accepted"
		stRejected       = "tpm_rejected"
		stReported       = "tpm_reported"
		stReportRejected = "tpm_report_rejected"
		stApproved       = "unicef_approved"
		stCancelled      = "cancelled"
	)
	all := []string{stDraft, stAssigned, stAccepted, stRejected, stReported, stReportRejected, stApproved, stCancelled}
	var entries []Entry

	// PME owns the visit from creation to approval.
	entries = append(entries,
		Entry{Kind: identity.KindTPMVisit, Status: stDraft, Role: identity.RolePME,
			DefaultField: Write, Fields: map[string]FieldPermission{"reference_number": Read, "status": Read},
			Actions: []string{ActionAssign, ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stAssigned, Role: identity.RolePME,
			DefaultField: Read, Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stAccepted, Role: identity.RolePME,
			DefaultField: Read, Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stRejected, Role: identity.RolePME,
			DefaultField: Write, Fields: map[string]FieldPermission{"reference_number": Read, "status": Read},
			Actions: []string{ActionAssign, ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stReported, Role: identity.RolePME,
			DefaultField: Read, Fields: map[string]FieldPermission{"approval_comment": Write},
			Actions: []string{ActionApprove, ActionRejectReport, ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stReportRejected, Role: identity.RolePME,
			DefaultField: Read, Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindTPMVisit, Status: stApproved, Role: identity.RolePME, DefaultField: Read},
		Entry{Kind: identity.KindTPMVisit, Status: stCancelled, Role: identity.RolePME, DefaultField: Read},
	)

	// The TPM vendor's staff accept, reject and report.
	entries = append(entries,
		Entry{Kind: identity.KindTPMVisit, Status: stAssigned, Role: identity.RoleThirdPartyMon,
			DefaultField: Read, Fields: map[string]FieldPermission{"reject_comment": Write},
			Actions: []string{ActionAccept, ActionReject}},
		Entry{Kind: identity.KindTPMVisit, Status: stAccepted, Role: identity.RoleThirdPartyMon,
			DefaultField: Read, Fields: map[string]FieldPermission{"report_attachments": Write},
			Actions: []string{ActionSendReport}},
		Entry{Kind: identity.KindTPMVisit, Status: stReportRejected, Role: identity.RoleThirdPartyMon,
			DefaultField: Read, Fields: map[string]FieldPermission{"report_attachments": Write},
			Actions: []string{ActionSendReport}},
		Entry{Kind: identity.KindTPMVisit, Status: stReported, Role: identity.RoleThirdPartyMon, DefaultField: Read},
		Entry{Kind: identity.KindTPMVisit, Status: stApproved, Role: identity.RoleThirdPartyMon, DefaultField: Read},
	)

	// The visit's designated focal points may approve alongside PME.
	entries = append(entries, Entry{
		Kind: identity.KindTPMVisit, Status: stReported, Role: identity.RoleVisitFocalPoint,
		DefaultField: Read, Fields: map[string]FieldPermission{"approval_comment": Write},
		Actions: []string{ActionApprove, ActionRejectReport},
	})
	for _, st := range all {
		if st == stReported {
			continue
		}
		entries = append(entries, Entry{Kind: identity.KindTPMVisit, Status: st, Role: identity.RoleVisitFocalPoint, DefaultField: Read})
	}

	for _, st := range all {
		entries = append(entries, Entry{Kind: identity.KindTPMVisit, Status: st, Role: identity.RoleUNICEFUser, DefaultField: Read})
	}

	// System bypasses field restrictions and may run every transition.
	for _, st := range all {
		entries = append(entries, Entry{
			Kind: identity.KindTPMVisit, Status: st, Role: identity.RoleSystem,
			DefaultField: Write,
			Actions: []string{ActionAssign, ActionAccept, ActionReject, ActionSendReport,
				ActionRejectReport, ActionApprove, ActionCancel},
		})
	}
	return entries
}

func pseaEntries() []Entry {
	const (
		stDraft      = "draft"
		stAssigned   = "assigned"
		stInProgress = "in_progress"
		stSubmitted  = "submitted"
		stRejected   = "rejected"
		stFinal      = "final"
		stCancelled  = "cancelled"
	)
	all := []string{stDraft, stAssigned, stInProgress, stSubmitted, stRejected, stFinal, stCancelled}
	var entries []Entry

	entries = append(entries,
		Entry{Kind: identity.KindPSEA, Status: stDraft, Role: identity.RoleAuditFocalPoint,
			DefaultField: Write, Fields: map[string]FieldPermission{"reference_number": Read, "status": Read, "overall_rating": Read},
			Actions: []string{ActionAssign, ActionCancel}},
		Entry{Kind: identity.KindPSEA, Status: stAssigned, Role: identity.RoleAuditFocalPoint,
			DefaultField: Read, Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindPSEA, Status: stInProgress, Role: identity.RoleAuditFocalPoint,
			DefaultField: Read, Actions: []string{ActionCancel}},
		Entry{Kind: identity.KindPSEA, Status: stSubmitted, Role: identity.RoleAuditFocalPoint,
			DefaultField: Read, Fields: map[string]FieldPermission{"reject_comment": Write},
			Actions: []string{ActionFinalize, ActionReject, ActionCancel}},
		Entry{Kind: identity.KindPSEA, Status: stRejected, Role: identity.RoleAuditFocalPoint,
			DefaultField: Read, Actions: []string{ActionCancel}},
		// Finalize flips the whole write matrix to read.
		Entry{Kind: identity.KindPSEA, Status: stFinal, Role: identity.RoleAuditFocalPoint, DefaultField: Read},
		Entry{Kind: identity.KindPSEA, Status: stCancelled, Role: identity.RoleAuditFocalPoint, DefaultField: Read},
	)

	// The single assessor (user or firm staff) answers and submits.
	for _, role := range []identity.Role{identity.RoleAssessorUser, identity.RoleVendorAssessorStaff} {
		for _, st := range []string{stAssigned, stInProgress, stRejected} {
			entries = append(entries, Entry{
				Kind: identity.KindPSEA, Status: st, Role: role,
				DefaultField: Read,
				Fields: map[string]FieldPermission{
					"answers":         Write,
					"assessment_date": Write,
				},
				Actions: []string{ActionSubmit},
			})
		}
		for _, st := range []string{stSubmitted, stFinal, stCancelled} {
			entries = append(entries, Entry{Kind: identity.KindPSEA, Status: st, Role: role, DefaultField: Read})
		}
	}

	// Partner focal points see results once final, never the working state.
	for _, st := range all {
		def := Hidden
		if st == stFinal {
			def = Read
		}
		entries = append(entries, Entry{
			Kind: identity.KindPSEA, Status: st, Role: identity.RolePartnerFocalPoint,
			DefaultField: def,
			Fields:       map[string]FieldPermission{"reference_number": Read, "status": Read, "partner": Read},
		})
	}

	for _, st := range all {
		entries = append(entries, Entry{Kind: identity.KindPSEA, Status: st, Role: identity.RoleUNICEFUser, DefaultField: Read})
	}

	// System bypasses field restrictions and may run every transition.
	for _, st := range all {
		entries = append(entries, Entry{
			Kind: identity.KindPSEA, Status: st, Role: identity.RoleSystem,
			DefaultField: Write,
			Actions:      []string{ActionAssign, ActionSubmit, ActionReject, ActionFinalize, ActionCancel},
		})
	}
	return entries
}

func inventoryEntries() []Entry {
	const (
		stPending   = "PENDING"
		stCompleted = "COMPLETED"
	)
	adminActions := []string{
		ActionCheckIn, ActionCheckOut, ActionSplit, ActionUpdateItem,
		ActionReverse, ActionBulkReview, ActionUploadEvidence,
	}
	editorActions := []string{
		ActionCheckIn, ActionCheckOut, ActionSplit, ActionUpdateItem, ActionUploadEvidence,
	}
	var entries []Entry
	for _, st := range []string{stPending, stCompleted} {
		entries = append(entries,
			Entry{Kind: identity.KindInventory, Status: st, Role: identity.RoleLMSMHQAdmin, DefaultField: Write, Actions: adminActions},
			Entry{Kind: identity.KindInventory, Status: st, Role: identity.RoleLMSMCOAdmin, DefaultField: Write, Actions: adminActions},
			Entry{Kind: identity.KindInventory, Status: st, Role: identity.RoleIPLMEditor, DefaultField: Write, Actions: editorActions},
			Entry{Kind: identity.KindInventory, Status: st, Role: identity.RoleSystem, DefaultField: Write, Actions: adminActions},
		)
	}
	return entries
}
