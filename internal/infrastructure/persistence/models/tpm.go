package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// VisitModel is the persistence model for the TPM Visit aggregate.
type VisitModel struct {
	TenantAggregateModel
	ReferenceNumber string     `gorm:"type:varchar(64);index"`
	SequenceNumber  int64      `gorm:"not null;default:0"`
	Status          string     `gorm:"type:varchar(32);not null;index"`
	TPMPartnerID    *uuid.UUID `gorm:"type:uuid;index"`
	VendorNumber    string     `gorm:"type:varchar(32)"`

	Activities []tpm.Activity `gorm:"type:jsonb;serializer:json"`

	ReportAttachments []tpm.Attachment          `gorm:"type:jsonb;serializer:json"`
	RejectComment     string                    `gorm:"type:text"`
	ApprovalComment   string                    `gorm:"type:text"`
	ReportRejects     []tpm.ReportRejectComment `gorm:"type:jsonb;serializer:json"`

	UNICEFFocalPointIDs []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	TPMFocalPointIDs    []uuid.UUID `gorm:"type:jsonb;serializer:json"`
	OfficeIDs           []uuid.UUID `gorm:"type:jsonb;serializer:json"`

	DateOfAssigned       *time.Time
	DateOfTPMAccepted    *time.Time
	DateOfTPMRejected    *time.Time
	DateOfTPMReported    *time.Time
	DateOfReportRejected *time.Time
	DateOfUNICEFApproved *time.Time
	DateOfCancelled      *time.Time
}

// TableName returns the table name for GORM
func (VisitModel) TableName() string {
	return "tpm_visits"
}

// ToDomain converts the persistence model to a domain Visit aggregate.
func (m *VisitModel) ToDomain() *tpm.Visit {
	v := &tpm.Visit{
		ReferenceNumber: m.ReferenceNumber,
		SequenceNumber:  m.SequenceNumber,
		Status:          tpm.Status(m.Status),
		TPMPartnerID:    m.TPMPartnerID,
		VendorNumber:    m.VendorNumber,

		Activities: m.Activities,

		ReportAttachments: m.ReportAttachments,
		RejectComment:     m.RejectComment,
		ApprovalComment:   m.ApprovalComment,
		ReportRejects:     m.ReportRejects,

		UNICEFFocalPointIDs: m.UNICEFFocalPointIDs,
		TPMFocalPointIDs:    m.TPMFocalPointIDs,
		OfficeIDs:           m.OfficeIDs,

		DateOfAssigned:       m.DateOfAssigned,
		DateOfTPMAccepted:    m.DateOfTPMAccepted,
		DateOfTPMRejected:    m.DateOfTPMRejected,
		DateOfTPMReported:    m.DateOfTPMReported,
		DateOfReportRejected: m.DateOfReportRejected,
		DateOfUNICEFApproved: m.DateOfUNICEFApproved,
		DateOfCancelled:      m.DateOfCancelled,
	}
	m.PopulateTenantAggregateRoot(&v.TenantAggregateRoot)
	return v
}

// FromDomain populates the persistence model from a domain Visit aggregate.
func (m *VisitModel) FromDomain(v *tpm.Visit) {
	m.FromDomainTenantAggregateRoot(v.TenantAggregateRoot)
	m.ReferenceNumber = v.ReferenceNumber
	m.SequenceNumber = v.SequenceNumber
	m.Status = string(v.Status)
	m.TPMPartnerID = v.TPMPartnerID
	m.VendorNumber = v.VendorNumber

	m.Activities = v.Activities

	m.ReportAttachments = v.ReportAttachments
	m.RejectComment = v.RejectComment
	m.ApprovalComment = v.ApprovalComment
	m.ReportRejects = v.ReportRejects

	m.UNICEFFocalPointIDs = v.UNICEFFocalPointIDs
	m.TPMFocalPointIDs = v.TPMFocalPointIDs
	m.OfficeIDs = v.OfficeIDs

	m.DateOfAssigned = v.DateOfAssigned
	m.DateOfTPMAccepted = v.DateOfTPMAccepted
	m.DateOfTPMRejected = v.DateOfTPMRejected
	m.DateOfTPMReported = v.DateOfTPMReported
	m.DateOfReportRejected = v.DateOfReportRejected
	m.DateOfUNICEFApproved = v.DateOfUNICEFApproved
	m.DateOfCancelled = v.DateOfCancelled
}

// VisitModelFromDomain creates a new persistence model from a domain Visit aggregate.
func VisitModelFromDomain(v *tpm.Visit) *VisitModel {
	m := &VisitModel{}
	m.FromDomain(v)
	return m
}
