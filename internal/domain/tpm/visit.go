package tpm

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/workflow"
)

// Status represents the status of a TPM visit.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusAssigned       Status = "assigned"
	StatusAccepted       Status = "tpm_accepted"
	StatusRejected       Status = "tpm_rejected"
	StatusReported       Status = "tpm_reported"
	StatusReportRejected Status = "tpm_report_rejected"
	StatusApproved       Status = "unicef_approved"
	StatusCancelled      Status = "cancelled"
)

// IsValid checks if the status is a known Status.
func (s Status) IsValid() bool {
	switch s {
	case StatusDraft, StatusAssigned, StatusAccepted, StatusRejected,
		StatusReported, StatusReportRejected, StatusApproved, StatusCancelled:
		return true
	}
	return false
}

func (s Status) String() string { return string(s) }

// Activity is one monitored activity of a visit.
type Activity struct {
	ID                    uuid.UUID
	ImplementingPartnerID uuid.UUID
	InterventionID        *uuid.UUID
	CPOutputID            *uuid.UUID
	SectionID             *uuid.UUID
	LocationIDs           []uuid.UUID
	Date                  *time.Time
	Attachments           []Attachment
	IsProgrammaticVisit   bool
}

// Attachment references a file managed outside the core.
type Attachment struct {
	AttachmentID uuid.UUID
	FileTypeCode string
	Code         string
}

// ReportRejectComment is one rejection of a TPM report. Comments are
// append-only across reject cycles.
type ReportRejectComment struct {
	ID         uuid.UUID
	Comment    string
	RejectedAt time.Time
}

// Visit is a monitoring visit carried out by a TPM vendor.
type Visit struct {
	shared.TenantAggregateRoot
	ReferenceNumber string
	SequenceNumber  int64
	Status          Status
	TPMPartnerID    *uuid.UUID
	VendorNumber    string

	Activities []Activity

	ReportAttachments []Attachment
	RejectComment     string
	ApprovalComment   string
	ReportRejects     []ReportRejectComment

	UNICEFFocalPointIDs []uuid.UUID
	TPMFocalPointIDs    []uuid.UUID
	OfficeIDs           []uuid.UUID

	DateOfAssigned       *time.Time
	DateOfTPMAccepted    *time.Time
	DateOfTPMRejected    *time.Time
	DateOfTPMReported    *time.Time
	DateOfReportRejected *time.Time
	DateOfUNICEFApproved *time.Time
	DateOfCancelled      *time.Time
}

// NewVisit creates a visit in draft.
func NewVisit(tenantID uuid.UUID) *Visit {
	return &Visit{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Status:              StatusDraft,
	}
}

// CurrentStatus implements workflow.Subject.
func (v *Visit) CurrentStatus() string { return string(v.Status) }

// SetStatus implements workflow.Subject.
func (v *Visit) SetStatus(status string) { v.Status = Status(status) }

// AssignReferenceNumber computes <createdYear>/<vendorOrDashes>/<seq> once.
func (v *Visit) AssignReferenceNumber() {
	if v.ReferenceNumber != "" || v.SequenceNumber == 0 {
		return
	}
	vendor := v.VendorNumber
	if vendor == "" {
		vendor = "--"
	}
	v.ReferenceNumber = fmt.Sprintf("%d/%s/%d", v.CreatedAt.Year(), vendor, v.SequenceNumber)
}

// SetTPMPartner binds the vendor before assignment.
func (v *Visit) SetTPMPartner(partnerID uuid.UUID, vendorNumber string) error {
	if v.Status != StatusDraft && v.Status != StatusRejected {
		return shared.ErrInvalidStatusTransition
	}
	v.TPMPartnerID = &partnerID
	v.VendorNumber = vendorNumber
	v.Touch()
	return nil
}

// AddActivity appends an activity. Every activity needs at least one
// location before the visit can be assigned.
func (v *Visit) AddActivity(implementingPartnerID uuid.UUID, locationIDs []uuid.UUID) (*Activity, error) {
	if implementingPartnerID == uuid.Nil {
		return nil, shared.NewValidationError("implementing_partner", "implementing partner is required")
	}
	a := Activity{
		ID:                    uuid.New(),
		ImplementingPartnerID: implementingPartnerID,
		LocationIDs:           locationIDs,
	}
	v.Activities = append(v.Activities, a)
	v.Touch()
	return &v.Activities[len(v.Activities)-1], nil
}

// AttachReport appends a TPM report attachment.
func (v *Visit) AttachReport(a Attachment) {
	v.ReportAttachments = append(v.ReportAttachments, a)
	v.Touch()
}

// RoleSubject builds the membership view for role resolution.
func (v *Visit) RoleSubject() identity.SubjectContext {
	return identity.SubjectContext{
		Kind:          identity.KindTPMVisit,
		FocalPointIDs: v.UNICEFFocalPointIDs,
		FirmID:        v.TPMPartnerID,
	}
}

// Actions shared with the permission matrix.
const (
	ActionAssign       = "assign"
	ActionAccept       = "accept"
	ActionReject       = "reject"
	ActionSendReport   = "send_report"
	ActionRejectReport = "reject_report"
	ActionApprove      = "approve"
	ActionCancel       = "cancel"
)

var lifecycle = workflow.NewDefinition[*Visit](identity.KindTPMVisit,
	workflow.Transition[*Visit]{
		Action:  ActionAssign,
		Sources: []string{string(StatusDraft), string(StatusRejected)},
		Target:  string(StatusAssigned),
		Guards: []workflow.Guard[*Visit]{
			{Name: "tpm_partner_set", Check: func(v *Visit) error {
				if v.TPMPartnerID == nil {
					return shared.RequiredField("tpm_partner")
				}
				return nil
			}},
			{Name: "activities_valid", Check: guardActivitiesValid},
		},
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfAssigned = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action:  ActionAccept,
		Sources: []string{string(StatusAssigned)},
		Target:  string(StatusAccepted),
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfTPMAccepted = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action:  ActionReject,
		Sources: []string{string(StatusAssigned)},
		Target:  string(StatusRejected),
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfTPMRejected = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action:  ActionSendReport,
		Sources: []string{string(StatusAccepted), string(StatusReportRejected)},
		Target:  string(StatusReported),
		Guards: []workflow.Guard[*Visit]{
			{Name: "report_attached", Check: func(v *Visit) error {
				if len(v.ReportAttachments) == 0 {
					return shared.RequiredField("report_attachments")
				}
				return nil
			}},
		},
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfTPMReported = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action:  ActionRejectReport,
		Sources: []string{string(StatusReported)},
		Target:  string(StatusReportRejected),
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfReportRejected = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action:  ActionApprove,
		Sources: []string{string(StatusReported)},
		Target:  string(StatusApproved),
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfUNICEFApproved = &now },
		},
	},
	workflow.Transition[*Visit]{
		Action: ActionCancel,
		Sources: []string{
			string(StatusDraft), string(StatusAssigned), string(StatusAccepted),
			string(StatusRejected), string(StatusReported), string(StatusReportRejected),
		},
		Target: string(StatusCancelled),
		Effects: []workflow.Effect[*Visit]{
			func(v *Visit, now time.Time) { v.DateOfCancelled = &now },
		},
	},
)

func guardActivitiesValid(v *Visit) error {
	if len(v.Activities) == 0 {
		return shared.RequiredField("activities")
	}
	for _, a := range v.Activities {
		if len(a.LocationIDs) == 0 {
			return shared.GuardFailed("activity_locations")
		}
	}
	return nil
}

// Assign hands the visit to the bound TPM vendor.
func (v *Visit) Assign() error {
	if err := lifecycle.Execute(v, ActionAssign); err != nil {
		return err
	}
	v.AddDomainEvent(newEvent(EventAssigned, v))
	v.Touch()
	return nil
}

// Accept records the vendor's acceptance.
func (v *Visit) Accept() error {
	if err := lifecycle.Execute(v, ActionAccept); err != nil {
		return err
	}
	v.AddDomainEvent(newEvent(EventAccepted, v))
	v.Touch()
	return nil
}

// Reject returns the visit to UNICEF with a mandatory comment. A rejected
// visit may be re-assigned.
func (v *Visit) Reject(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return shared.RequiredField("reject_comment")
	}
	v.RejectComment = comment
	if err := lifecycle.Execute(v, ActionReject); err != nil {
		return err
	}
	v.AddDomainEvent(newEvent(EventRejected, v))
	v.Touch()
	return nil
}

// SendReport submits the vendor's report for UNICEF review.
func (v *Visit) SendReport() error {
	if err := lifecycle.Execute(v, ActionSendReport); err != nil {
		return err
	}
	v.AddDomainEvent(newEvent(EventReported, v))
	v.Touch()
	return nil
}

// RejectReport appends a rejection comment; prior comments are kept.
func (v *Visit) RejectReport(comment string) error {
	if strings.TrimSpace(comment) == "" {
		return shared.RequiredField("reject_comment")
	}
	if err := lifecycle.Execute(v, ActionRejectReport); err != nil {
		return err
	}
	v.ReportRejects = append(v.ReportRejects, ReportRejectComment{
		ID:         uuid.New(),
		Comment:    comment,
		RejectedAt: time.Now(),
	})
	v.AddDomainEvent(newEvent(EventReportRejected, v))
	v.Touch()
	return nil
}

// ApprovePayload carries the optional settings of an approve call.
type ApprovePayload struct {
	MarkAsProgrammaticVisit []uuid.UUID
	ApprovalComment         string
	NotifyFocalPoint        bool
	NotifyTPMPartner        bool
}

// Approve closes the review, optionally marking activities as programmatic
// visits.
func (v *Visit) Approve(payload ApprovePayload) error {
	if err := lifecycle.Execute(v, ActionApprove); err != nil {
		return err
	}
	v.ApprovalComment = payload.ApprovalComment
	for _, id := range payload.MarkAsProgrammaticVisit {
		for i := range v.Activities {
			if v.Activities[i].ID == id {
				v.Activities[i].IsProgrammaticVisit = true
			}
		}
	}
	event := newEvent(EventApproved, v)
	event.NotifyFocalPoint = payload.NotifyFocalPoint
	event.NotifyTPMPartner = payload.NotifyTPMPartner
	v.AddDomainEvent(event)
	v.Touch()
	return nil
}

// Cancel terminates the visit from any non-terminal state.
func (v *Visit) Cancel() error {
	if err := lifecycle.Execute(v, ActionCancel); err != nil {
		return err
	}
	v.AddDomainEvent(newEvent(EventCancelled, v))
	v.Touch()
	return nil
}
