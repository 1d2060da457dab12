package engagement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
)

// CreateEngagementRequest starts a new engagement of one variant.
type CreateEngagementRequest struct {
	EngagementType string      `json:"engagement_type" binding:"required"`
	PartnerID      uuid.UUID   `json:"partner_id" binding:"required"`
	PartnerName    string      `json:"partner_name" binding:"required"`
	AgreementID    *uuid.UUID  `json:"agreement_id"`
	AuditorFirmID  *uuid.UUID  `json:"auditor_firm_id"`
	Currency       string      `json:"currency"`
	FocalPointIDs  []uuid.UUID `json:"focal_point_ids"`
	SectionIDs     []uuid.UUID `json:"section_ids"`
	OfficeIDs      []uuid.UUID `json:"office_ids"`
}

// PatchEngagementRequest carries the writable fields of a PATCH. Nil means
// "leave unchanged".
type PatchEngagementRequest struct {
	AuditedExpenditure      *decimal.Decimal `json:"audited_expenditure"`
	FinancialFindings       *decimal.Decimal `json:"financial_findings"`
	AuditedExpenditureLocal *decimal.Decimal `json:"audited_expenditure_local"`
	FinancialFindingsLocal  *decimal.Decimal `json:"financial_findings_local"`
	AuditOpinion            *string          `json:"audit_opinion"`
	AmountRefunded          *decimal.Decimal `json:"amount_refunded"`
	AdditionalSupportingDoc *decimal.Decimal `json:"additional_supporting_documentation_provided"`
	JustificationAccepted   *decimal.Decimal `json:"justification_provided_and_accepted"`
	WriteOffRequired        *decimal.Decimal `json:"write_off_required"`
	TotalAmountTested       *decimal.Decimal `json:"total_amount_tested"`
	TotalIneligibleExpOther *decimal.Decimal `json:"total_amount_of_ineligible_expenditure"`
	DateOfFieldVisit        *time.Time       `json:"date_of_field_visit"`
	DateOfDraftReportToIP   *time.Time       `json:"date_of_draft_report_to_ip"`
	DateOfCommentsByIP      *time.Time       `json:"date_of_comments_by_ip"`
	DateOfDraftReportToUN   *time.Time       `json:"date_of_draft_report_to_unicef"`
	DateOfCommentsByUN      *time.Time       `json:"date_of_comments_by_unicef"`
	FocalPointIDs           []uuid.UUID      `json:"focal_point_ids"`
	StaffMemberIDs          []uuid.UUID      `json:"staff_members"`
	AuthorizedOfficerIDs    []uuid.UUID      `json:"authorized_officers"`
}

// Fields lists the patch keys actually present, for matrix write checks.
func (r PatchEngagementRequest) Fields() []string {
	var fields []string
	add := func(name string, set bool) {
		if set {
			fields = append(fields, name)
		}
	}
	add("audited_expenditure", r.AuditedExpenditure != nil)
	add("financial_findings", r.FinancialFindings != nil)
	add("audited_expenditure_local", r.AuditedExpenditureLocal != nil)
	add("financial_findings_local", r.FinancialFindingsLocal != nil)
	add("audit_opinion", r.AuditOpinion != nil)
	add("amount_refunded", r.AmountRefunded != nil)
	add("additional_supporting_documentation_provided", r.AdditionalSupportingDoc != nil)
	add("justification_provided_and_accepted", r.JustificationAccepted != nil)
	add("write_off_required", r.WriteOffRequired != nil)
	add("total_amount_tested", r.TotalAmountTested != nil)
	add("total_amount_of_ineligible_expenditure", r.TotalIneligibleExpOther != nil)
	add("date_of_field_visit", r.DateOfFieldVisit != nil)
	add("date_of_draft_report_to_ip", r.DateOfDraftReportToIP != nil)
	add("date_of_comments_by_ip", r.DateOfCommentsByIP != nil)
	add("date_of_draft_report_to_unicef", r.DateOfDraftReportToUN != nil)
	add("date_of_comments_by_unicef", r.DateOfCommentsByUN != nil)
	add("focal_point_ids", r.FocalPointIDs != nil)
	add("staff_members", r.StaffMemberIDs != nil)
	add("authorized_officers", r.AuthorizedOfficerIDs != nil)
	return fields
}

// ActionRequest carries the optional payload of a workflow action.
type ActionRequest struct {
	Comment string `json:"comment"`
}

// ActionResponse reports the outcome of a workflow action.
type ActionResponse struct {
	NewStatus     string   `json:"new_status"`
	DisplayStatus string   `json:"display_status"`
	EmittedEvents []string `json:"emitted_events"`
}

// EngagementResponse is the unfiltered read shape. The HTTP layer drops
// fields the actor may not read before rendering.
type EngagementResponse struct {
	ID                      uuid.UUID        `json:"id"`
	ReferenceNumber         string           `json:"reference_number"`
	EngagementType          string           `json:"engagement_type"`
	Status                  string           `json:"status"`
	DisplayStatus           string           `json:"display_status"`
	PartnerID               uuid.UUID        `json:"partner_id"`
	PartnerName             string           `json:"partner_name"`
	AgreementID             *uuid.UUID       `json:"agreement_id"`
	AuditorFirmID           *uuid.UUID       `json:"auditor_firm_id"`
	Currency                string           `json:"currency"`
	FocalPointIDs           []uuid.UUID      `json:"focal_point_ids"`
	StaffMemberIDs          []uuid.UUID      `json:"staff_members"`
	AuthorizedOfficerIDs    []uuid.UUID      `json:"authorized_officers"`
	SectionIDs              []uuid.UUID      `json:"section_ids"`
	OfficeIDs               []uuid.UUID      `json:"office_ids"`
	AuditedExpenditure      *decimal.Decimal `json:"audited_expenditure"`
	FinancialFindings       *decimal.Decimal `json:"financial_findings"`
	AuditOpinion            string           `json:"audit_opinion"`
	TotalAmountTested       *decimal.Decimal `json:"total_amount_tested"`
	TotalIneligibleExpOther *decimal.Decimal `json:"total_amount_of_ineligible_expenditure"`
	PendingUnsupported      *decimal.Decimal `json:"pending_unsupported_amount"`
	SendBackComment         string           `json:"send_back_comment"`
	CancelComment           string           `json:"cancel_comment"`
	PartnerContactedAt      *time.Time       `json:"partner_contacted_at"`
	DateOfFieldVisit        *time.Time       `json:"date_of_field_visit"`
	DateOfReportSubmit      *time.Time       `json:"date_of_report_submit"`
	DateOfFinalReport       *time.Time       `json:"date_of_final_report"`
	DateOfCancel            *time.Time       `json:"date_of_cancel"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// ToEngagementResponse maps the aggregate to the read shape.
func ToEngagementResponse(e *engagement.Engagement) EngagementResponse {
	return EngagementResponse{
		ID:                      e.ID,
		ReferenceNumber:         e.ReferenceNumber,
		EngagementType:          string(e.Type),
		Status:                  string(e.Status),
		DisplayStatus:           string(e.DisplayStatus()),
		PartnerID:               e.PartnerID,
		PartnerName:             e.PartnerName,
		AgreementID:             e.AgreementID,
		AuditorFirmID:           e.AuditorFirmID,
		Currency:                e.Currency,
		FocalPointIDs:           e.FocalPointIDs,
		StaffMemberIDs:          e.StaffMemberIDs,
		AuthorizedOfficerIDs:    e.AuthorizedOfficerIDs,
		SectionIDs:              e.SectionIDs,
		OfficeIDs:               e.OfficeIDs,
		AuditedExpenditure:      e.AuditedExpenditure,
		FinancialFindings:       e.FinancialFindings,
		AuditOpinion:            e.AuditOpinion,
		TotalAmountTested:       e.TotalAmountTested,
		TotalIneligibleExpOther: e.TotalIneligibleExpOther,
		PendingUnsupported:      e.PendingUnsupportedAmount(),
		SendBackComment:         e.SendBackComment,
		CancelComment:           e.CancelComment,
		PartnerContactedAt:      e.PartnerContactedAt,
		DateOfFieldVisit:        e.DateOfFieldVisit,
		DateOfReportSubmit:      e.DateOfReportSubmit,
		DateOfFinalReport:       e.DateOfFinalReport,
		DateOfCancel:            e.DateOfCancel,
		CreatedAt:               e.CreatedAt,
		UpdatedAt:               e.UpdatedAt,
	}
}

// ListFilter narrows an engagement listing.
type ListFilter struct {
	Page           int        `form:"page"`
	PageSize       int        `form:"page_size"`
	Status         string     `form:"status"`
	EngagementType string     `form:"engagement_type"`
	PartnerID      *uuid.UUID `form:"partner_id"`
	FocalPointID   *uuid.UUID `form:"focal_point_id"`
	StartDate      *time.Time `form:"start_date"`
	EndDate        *time.Time `form:"end_date"`
	Search         string     `form:"search"`
	Sort           string     `form:"sort"`
}
