package engagement

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Status represents the stored status of an engagement.
type Status string

const (
	StatusPartnerContacted Status = "partner_contacted"
	StatusReportSubmitted  Status = "report_submitted"
	StatusFinal            Status = "final"
	StatusCancelled        Status = "cancelled"
)

// IsValid checks if the status is a known Status.
func (s Status) IsValid() bool {
	switch s {
	case StatusPartnerContacted, StatusReportSubmitted, StatusFinal, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Type tags the engagement variant. Exactly one tag per engagement.
type Type string

const (
	TypeAudit           Type = "audit"
	TypeSpotCheck       Type = "sc"
	TypeMicroAssessment Type = "ma"
	TypeSpecialAudit    Type = "sa"
)

// IsValid checks if the type is a known Type.
func (t Type) IsValid() bool {
	switch t {
	case TypeAudit, TypeSpotCheck, TypeMicroAssessment, TypeSpecialAudit:
		return true
	}
	return false
}

// Code returns the reference-number type code.
func (t Type) Code() string {
	switch t {
	case TypeAudit:
		return "A"
	case TypeSpotCheck:
		return "SC"
	case TypeMicroAssessment:
		return "MA"
	case TypeSpecialAudit:
		return "SA"
	}
	return ""
}

// DisplaySubStatus is the view-only refinement of partner_contacted derived
// from the date stamps. It is never stored.
type DisplaySubStatus string

const (
	SubStatusPartnerContacted        DisplaySubStatus = "partner_contacted"
	SubStatusFieldVisit              DisplaySubStatus = "field_visit"
	SubStatusDraftIssuedToPartner    DisplaySubStatus = "draft_issued_to_partner"
	SubStatusCommentsByPartner       DisplaySubStatus = "comments_received_by_partner"
	SubStatusDraftIssuedToUNICEF     DisplaySubStatus = "draft_issued_to_unicef"
	SubStatusCommentsByUNICEF        DisplaySubStatus = "comments_received_by_unicef"
	SubStatusReportSubmitted         DisplaySubStatus = "report_submitted"
	SubStatusFinal                   DisplaySubStatus = "final"
	SubStatusCancelled               DisplaySubStatus = "cancelled"
)

// Attachment references a file managed outside the core.
type Attachment struct {
	AttachmentID uuid.UUID
	FileTypeCode string
	Code         string
}

// SpecificProcedure is one agreed procedure of a special audit.
type SpecificProcedure struct {
	ID          uuid.UUID
	Description string
	Finding     string
}

// Finding is one spot check finding with a priority.
type Finding struct {
	ID             uuid.UUID
	Priority       string // "high" or "low"
	Description    string
	HasActionPoint bool
}

const FindingPriorityHigh = "high"

// Engagement is a scheduled assurance activity against one partner. The
// variant tag selects the guard set; the lifecycle graph is shared.
type Engagement struct {
	shared.TenantAggregateRoot
	ReferenceNumber string
	SequenceNumber  int64
	Type            Type
	Status          Status
	AgreementID     *uuid.UUID // purchase order
	PartnerID       uuid.UUID
	PartnerName     string
	AuditorFirmID   *uuid.UUID
	Currency        string

	StaffMemberIDs       []uuid.UUID
	AuthorizedOfficerIDs []uuid.UUID
	SectionIDs           []uuid.UUID
	OfficeIDs            []uuid.UUID
	FocalPointIDs        []uuid.UUID

	EngagementAttachments []Attachment
	ReportAttachments     []Attachment
	FinalReport           *Attachment

	CancelComment   string
	SendBackComment string

	// Date stamps, one per status or milestone ever entered.
	PartnerContactedAt        *time.Time
	DateOfFieldVisit          *time.Time
	DateOfDraftReportToIP     *time.Time
	DateOfCommentsByIP        *time.Time
	DateOfDraftReportToUnicef *time.Time
	DateOfCommentsByUnicef    *time.Time
	DateOfReportSubmit        *time.Time
	DateOfFinalReport         *time.Time
	DateOfCancel              *time.Time

	// Audit / special audit findings.
	AuditedExpenditure      *decimal.Decimal
	FinancialFindings       *decimal.Decimal
	AuditedExpenditureLocal *decimal.Decimal
	FinancialFindingsLocal  *decimal.Decimal
	AuditOpinion            string
	AmountRefunded          decimal.Decimal
	AdditionalSupportingDoc decimal.Decimal
	JustificationAccepted   decimal.Decimal
	WriteOffRequired        decimal.Decimal

	// Spot check totals.
	TotalAmountTested       *decimal.Decimal
	TotalIneligibleExpOther *decimal.Decimal
	Findings                []Finding

	// Special audit procedures.
	SpecificProcedures []SpecificProcedure

	// Micro assessment questionnaire completeness, resolved by the risk
	// engine before submit.
	questionnaireComplete bool
}

// New creates an engagement in partner_contacted.
func New(tenantID uuid.UUID, engagementType Type, partnerID uuid.UUID, partnerName string) (*Engagement, error) {
	if !engagementType.IsValid() {
		return nil, shared.NewValidationError("engagement_type", "unknown engagement type")
	}
	if partnerID == uuid.Nil {
		return nil, shared.NewValidationError("partner", "partner is required")
	}
	now := time.Now()
	e := &Engagement{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Type:                engagementType,
		Status:              StatusPartnerContacted,
		PartnerID:           partnerID,
		PartnerName:         partnerName,
		Currency:            "USD",
		PartnerContactedAt:  &now,
	}
	e.AddDomainEvent(NewCreatedEvent(e))
	return e, nil
}

// CurrentStatus implements workflow.Subject.
func (e *Engagement) CurrentStatus() string { return string(e.Status) }

// SetStatus implements workflow.Subject.
func (e *Engagement) SetStatus(status string) { e.Status = Status(status) }

// AssignReferenceNumber computes the reference once the sequence number is
// known. Format: <CountryShortOrEmpty>/<Partner[:5]>/<TypeCode>/<Year>/<Seq>.
// Re-invocation is a no-op while a value is present.
func (e *Engagement) AssignReferenceNumber(countryShort string) {
	if e.ReferenceNumber != "" || e.SequenceNumber == 0 {
		return
	}
	partner := e.PartnerName
	if len(partner) > 5 {
		partner = partner[:5]
	}
	e.ReferenceNumber = fmt.Sprintf("%s/%s/%s/%d/%d",
		countryShort, partner, e.Type.Code(), e.CreatedAt.Year(), e.SequenceNumber)
}

// DisplayStatus derives the shown status. While in partner_contacted the
// most recent date among the milestone stamps decides the label.
func (e *Engagement) DisplayStatus() DisplaySubStatus {
	switch e.Status {
	case StatusReportSubmitted:
		return SubStatusReportSubmitted
	case StatusFinal:
		return SubStatusFinal
	case StatusCancelled:
		return SubStatusCancelled
	}

	best := SubStatusPartnerContacted
	var bestAt time.Time
	if e.PartnerContactedAt != nil {
		bestAt = *e.PartnerContactedAt
	}
	candidates := []struct {
		at    *time.Time
		label DisplaySubStatus
	}{
		{e.DateOfFieldVisit, SubStatusFieldVisit},
		{e.DateOfDraftReportToIP, SubStatusDraftIssuedToPartner},
		{e.DateOfCommentsByIP, SubStatusCommentsByPartner},
		{e.DateOfDraftReportToUnicef, SubStatusDraftIssuedToUNICEF},
		{e.DateOfCommentsByUnicef, SubStatusCommentsByUNICEF},
	}
	for _, c := range candidates {
		if c.at != nil && c.at.After(bestAt) {
			best, bestAt = c.label, *c.at
		}
	}
	return best
}

// SetFinancials validates and stores audit monetary findings. Financial
// findings may never exceed the audited expenditure.
func (e *Engagement) SetFinancials(auditedExpenditure, financialFindings *decimal.Decimal) error {
	ae, ff := auditedExpenditure, financialFindings
	if ae == nil {
		ae = e.AuditedExpenditure
	}
	if ff == nil {
		ff = e.FinancialFindings
	}
	if ae != nil && ff != nil && ff.GreaterThan(*ae) {
		return shared.NewDomainError("financial_findings_exceeds_audited_expenditure",
			"financial findings cannot exceed audited expenditure")
	}
	if auditedExpenditure != nil {
		e.AuditedExpenditure = auditedExpenditure
	}
	if financialFindings != nil {
		e.FinancialFindings = financialFindings
	}
	e.Touch()
	return nil
}

// PendingUnsupportedAmount is derived, never stored.
func (e *Engagement) PendingUnsupportedAmount() *decimal.Decimal {
	switch e.Type {
	case TypeAudit, TypeSpecialAudit:
		if e.FinancialFindings == nil {
			return nil
		}
		v := e.FinancialFindings.Sub(e.AmountRefunded).
			Sub(e.AdditionalSupportingDoc).
			Sub(e.JustificationAccepted).
			Sub(e.WriteOffRequired)
		return &v
	case TypeSpotCheck:
		if e.TotalIneligibleExpOther == nil {
			return nil
		}
		v := e.TotalIneligibleExpOther.Sub(e.AdditionalSupportingDoc).
			Sub(e.JustificationAccepted).
			Sub(e.WriteOffRequired)
		return &v
	}
	return nil
}

// SetQuestionnaireComplete records the risk engine's verdict ahead of a
// micro assessment submit.
func (e *Engagement) SetQuestionnaireComplete(complete bool) {
	e.questionnaireComplete = complete
}

// AddSpecificProcedure appends a special audit procedure.
func (e *Engagement) AddSpecificProcedure(description string) (*SpecificProcedure, error) {
	if e.Type != TypeSpecialAudit {
		return nil, shared.NewValidationError("specific_procedures", "only special audits carry specific procedures")
	}
	if strings.TrimSpace(description) == "" {
		return nil, shared.NewValidationError("description", "description cannot be empty")
	}
	sp := SpecificProcedure{ID: uuid.New(), Description: description}
	e.SpecificProcedures = append(e.SpecificProcedures, sp)
	e.Touch()
	return &e.SpecificProcedures[len(e.SpecificProcedures)-1], nil
}

// AddFinding appends a spot check finding.
func (e *Engagement) AddFinding(priority, description string) (*Finding, error) {
	if e.Type != TypeSpotCheck {
		return nil, shared.NewValidationError("findings", "only spot checks carry findings")
	}
	f := Finding{ID: uuid.New(), Priority: priority, Description: description}
	e.Findings = append(e.Findings, f)
	e.Touch()
	return &e.Findings[len(e.Findings)-1], nil
}

// AttachReport appends a report attachment.
func (e *Engagement) AttachReport(a Attachment) {
	e.ReportAttachments = append(e.ReportAttachments, a)
	e.Touch()
}

// RoleSubject builds the membership view for role resolution.
func (e *Engagement) RoleSubject() identity.SubjectContext {
	return identity.SubjectContext{
		Kind:          identity.KindEngagement,
		FocalPointIDs: e.FocalPointIDs,
		FirmID:        e.AuditorFirmID,
		PartnerID:     &e.PartnerID,
	}
}

// Submit moves partner_contacted -> report_submitted under the variant's
// guard set and stamps the submit date.
func (e *Engagement) Submit() error {
	if err := lifecycle.Execute(e, ActionSubmit); err != nil {
		return err
	}
	e.AddDomainEvent(NewSubmittedEvent(e))
	e.Touch()
	return nil
}

// SendBack returns a submitted report to the auditor with a mandatory
// comment; the submit stamp is cleared.
func (e *Engagement) SendBack(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return shared.RequiredField("send_back_comment")
	}
	e.SendBackComment = comment
	if err := lifecycle.Execute(e, ActionSendBack); err != nil {
		return err
	}
	e.AddDomainEvent(NewSentBackEvent(e))
	e.Touch()
	return nil
}

// Cancel terminates the engagement with a mandatory comment.
func (e *Engagement) Cancel(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return shared.RequiredField("cancel_comment")
	}
	e.CancelComment = comment
	if err := lifecycle.Execute(e, ActionCancel); err != nil {
		return err
	}
	e.AddDomainEvent(NewCancelledEvent(e))
	e.Touch()
	return nil
}

// Finalize moves report_submitted -> final. The final report artifact is
// produced by an external collaborator before this is called.
func (e *Engagement) Finalize() error {
	if err := lifecycle.Execute(e, ActionFinalize); err != nil {
		return err
	}
	e.AddDomainEvent(NewFinalizedEvent(e))
	e.Touch()
	return nil
}

// CountsTowardsAudits reports whether finalizing this engagement increments
// the partner's completed-audits counter.
func (e *Engagement) CountsTowardsAudits() bool {
	return e.Type == TypeAudit || e.Type == TypeSpecialAudit
}
