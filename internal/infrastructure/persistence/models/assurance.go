package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
)

// EngagementModel is the persistence model for the Engagement aggregate.
// Membership sets, attachments, findings and procedures live in jsonb
// columns; they are always read and written with the whole row.
type EngagementModel struct {
	TenantAggregateModel
	ReferenceNumber string     `gorm:"type:varchar(64);index"`
	SequenceNumber  int64      `gorm:"not null;default:0"`
	Type            string     `gorm:"type:varchar(8);not null;index"`
	Status          string     `gorm:"type:varchar(32);not null;index"`
	AgreementID     *uuid.UUID `gorm:"type:uuid;index"`
	PartnerID       uuid.UUID  `gorm:"type:uuid;not null;index"`
	PartnerName     string     `gorm:"type:varchar(255);not null"`
	AuditorFirmID   *uuid.UUID `gorm:"type:uuid;index"`
	Currency        string     `gorm:"type:varchar(3);not null;default:'USD'"`

	StaffMemberIDs       []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	AuthorizedOfficerIDs []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	SectionIDs           []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	OfficeIDs            []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	FocalPointIDs        []uuid.UUID `gorm:"type:jsonb;serializer:json"`

	EngagementAttachments []engagement.Attachment `gorm:"type:jsonb;serializer:json"`
	ReportAttachments     []engagement.Attachment `gorm:"type:jsonb;serializer:json"`
	FinalReport           *engagement.Attachment  `gorm:"type:jsonb;serializer:json"`

	CancelComment   string `gorm:"type:text"`
	SendBackComment string `gorm:"type:text"`

	PartnerContactedAt        *time.Time
	DateOfFieldVisit          *time.Time
	DateOfDraftReportToIP     *time.Time
	DateOfCommentsByIP        *time.Time
	DateOfDraftReportToUnicef *time.Time
	DateOfCommentsByUnicef    *time.Time
	DateOfReportSubmit        *time.Time
	DateOfFinalReport         *time.Time
	DateOfCancel              *time.Time

	AuditedExpenditure      *decimal.Decimal `gorm:"type:numeric(20,2)"`
	FinancialFindings       *decimal.Decimal `gorm:"type:numeric(20,2)"`
	AuditedExpenditureLocal *decimal.Decimal `gorm:"type:numeric(20,2)"`
	FinancialFindingsLocal  *decimal.Decimal `gorm:"type:numeric(20,2)"`
	AuditOpinion            string           `gorm:"type:varchar(32)"`
	AmountRefunded          decimal.Decimal  `gorm:"type:numeric(20,2);not null;default:0"`
	AdditionalSupportingDoc decimal.Decimal  `gorm:"type:numeric(20,2);not null;default:0"`
	JustificationAccepted   decimal.Decimal  `gorm:"type:numeric(20,2);not null;default:0"`
	WriteOffRequired        decimal.Decimal  `gorm:"type:numeric(20,2);not null;default:0"`

	TotalAmountTested       *decimal.Decimal `gorm:"type:numeric(20,2)"`
	TotalIneligibleExpOther *decimal.Decimal `gorm:"type:numeric(20,2)"`

	Findings           []engagement.Finding           `gorm:"type:jsonb;serializer:json"`
	SpecificProcedures []engagement.SpecificProcedure `gorm:"type:jsonb;serializer:json"`
}

// TableName returns the table name for GORM
func (EngagementModel) TableName() string {
	return "engagements"
}

// ToDomain converts the persistence model to a domain Engagement aggregate.
func (m *EngagementModel) ToDomain() *engagement.Engagement {
	e := &engagement.Engagement{
		ReferenceNumber: m.ReferenceNumber,
		SequenceNumber:  m.SequenceNumber,
		Type:            engagement.Type(m.Type),
		Status:          engagement.Status(m.Status),
		AgreementID:     m.AgreementID,
		PartnerID:       m.PartnerID,
		PartnerName:     m.PartnerName,
		AuditorFirmID:   m.AuditorFirmID,
		Currency:        m.Currency,

		StaffMemberIDs:       m.StaffMemberIDs,
		AuthorizedOfficerIDs: m.AuthorizedOfficerIDs,
		SectionIDs:           m.SectionIDs,
		OfficeIDs:            m.OfficeIDs,
		FocalPointIDs:        m.FocalPointIDs,

		EngagementAttachments: m.EngagementAttachments,
		ReportAttachments:     m.ReportAttachments,
		FinalReport:           m.FinalReport,

		CancelComment:   m.CancelComment,
		SendBackComment: m.SendBackComment,

		PartnerContactedAt:        m.PartnerContactedAt,
		DateOfFieldVisit:          m.DateOfFieldVisit,
		DateOfDraftReportToIP:     m.DateOfDraftReportToIP,
		DateOfCommentsByIP:        m.DateOfCommentsByIP,
		DateOfDraftReportToUnicef: m.DateOfDraftReportToUnicef,
		DateOfCommentsByUnicef:    m.DateOfCommentsByUnicef,
		DateOfReportSubmit:        m.DateOfReportSubmit,
		DateOfFinalReport:         m.DateOfFinalReport,
		DateOfCancel:              m.DateOfCancel,

		AuditedExpenditure:      m.AuditedExpenditure,
		FinancialFindings:       m.FinancialFindings,
		AuditedExpenditureLocal: m.AuditedExpenditureLocal,
		FinancialFindingsLocal:  m.FinancialFindingsLocal,
		AuditOpinion:            m.AuditOpinion,
		AmountRefunded:          m.AmountRefunded,
		AdditionalSupportingDoc: m.AdditionalSupportingDoc,
		JustificationAccepted:   m.JustificationAccepted,
		WriteOffRequired:        m.WriteOffRequired,

		TotalAmountTested:       m.TotalAmountTested,
		TotalIneligibleExpOther: m.TotalIneligibleExpOther,

		Findings:           m.Findings,
		SpecificProcedures: m.SpecificProcedures,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain Engagement aggregate.
func (m *EngagementModel) FromDomain(e *engagement.Engagement) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.ReferenceNumber = e.ReferenceNumber
	m.SequenceNumber = e.SequenceNumber
	m.Type = string(e.Type)
	m.Status = string(e.Status)
	m.AgreementID = e.AgreementID
	m.PartnerID = e.PartnerID
	m.PartnerName = e.PartnerName
	m.AuditorFirmID = e.AuditorFirmID
	m.Currency = e.Currency

	m.StaffMemberIDs = e.StaffMemberIDs
	m.AuthorizedOfficerIDs = e.AuthorizedOfficerIDs
	m.SectionIDs = e.SectionIDs
	m.OfficeIDs = e.OfficeIDs
	m.FocalPointIDs = e.FocalPointIDs

	m.EngagementAttachments = e.EngagementAttachments
	m.ReportAttachments = e.ReportAttachments
	m.FinalReport = e.FinalReport

	m.CancelComment = e.CancelComment
	m.SendBackComment = e.SendBackComment

	m.PartnerContactedAt = e.PartnerContactedAt
	m.DateOfFieldVisit = e.DateOfFieldVisit
	m.DateOfDraftReportToIP = e.DateOfDraftReportToIP
	m.DateOfCommentsByIP = e.DateOfCommentsByIP
	m.DateOfDraftReportToUnicef = e.DateOfDraftReportToUnicef
	m.DateOfCommentsByUnicef = e.DateOfCommentsByUnicef
	m.DateOfReportSubmit = e.DateOfReportSubmit
	m.DateOfFinalReport = e.DateOfFinalReport
	m.DateOfCancel = e.DateOfCancel

	m.AuditedExpenditure = e.AuditedExpenditure
	m.FinancialFindings = e.FinancialFindings
	m.AuditedExpenditureLocal = e.AuditedExpenditureLocal
	m.FinancialFindingsLocal = e.FinancialFindingsLocal
	m.AuditOpinion = e.AuditOpinion
	m.AmountRefunded = e.AmountRefunded
	m.AdditionalSupportingDoc = e.AdditionalSupportingDoc
	m.JustificationAccepted = e.JustificationAccepted
	m.WriteOffRequired = e.WriteOffRequired

	m.TotalAmountTested = e.TotalAmountTested
	m.TotalIneligibleExpOther = e.TotalIneligibleExpOther

	m.Findings = e.Findings
	m.SpecificProcedures = e.SpecificProcedures
}

// EngagementModelFromDomain creates a new persistence model from a domain Engagement aggregate.
func EngagementModelFromDomain(e *engagement.Engagement) *EngagementModel {
	m := &EngagementModel{}
	m.FromDomain(e)
	return m
}
