package tpm

import (
	"time"

	"github.com/google/uuid"

	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// CreateVisitRequest starts a draft visit.
type CreateVisitRequest struct {
	TPMPartnerID        *uuid.UUID  `json:"tpm_partner_id"`
	UNICEFFocalPointIDs []uuid.UUID `json:"unicef_focal_points"`
	OfficeIDs           []uuid.UUID `json:"offices"`
}

// ActivityRequest adds one activity to a draft or rejected visit.
type ActivityRequest struct {
	ImplementingPartnerID uuid.UUID   `json:"implementing_partner_id" binding:"required"`
	InterventionID        *uuid.UUID  `json:"intervention_id"`
	CPOutputID            *uuid.UUID  `json:"cp_output_id"`
	SectionID             *uuid.UUID  `json:"section_id"`
	LocationIDs           []uuid.UUID `json:"location_ids" binding:"required,min=1"`
	Date                  *time.Time  `json:"date"`
}

// ActionRequest carries the optional payload of a workflow action.
type ActionRequest struct {
	Comment                 string      `json:"comment"`
	MarkAsProgrammaticVisit []uuid.UUID `json:"mark_as_programmatic_visit"`
	ApprovalComment         string      `json:"approval_comment"`
	NotifyFocalPoint        bool        `json:"notify_focal_point"`
	NotifyTPMPartner        bool        `json:"notify_tpm_partner"`
}

// ActionResponse reports the outcome of a workflow action.
type ActionResponse struct {
	NewStatus     string   `json:"new_status"`
	EmittedEvents []string `json:"emitted_events"`
}

// ActivityResponse is the read shape of one activity.
type ActivityResponse struct {
	ID                    uuid.UUID   `json:"id"`
	ImplementingPartnerID uuid.UUID   `json:"implementing_partner_id"`
	InterventionID        *uuid.UUID  `json:"intervention_id"`
	CPOutputID            *uuid.UUID  `json:"cp_output_id"`
	SectionID             *uuid.UUID  `json:"section_id"`
	LocationIDs           []uuid.UUID `json:"location_ids"`
	Date                  *time.Time  `json:"date"`
	IsProgrammaticVisit   bool        `json:"is_pv"`
}

// VisitResponse is the unfiltered read shape of a visit.
type VisitResponse struct {
	ID                   uuid.UUID          `json:"id"`
	ReferenceNumber      string             `json:"reference_number"`
	Status               string             `json:"status"`
	TPMPartnerID         *uuid.UUID         `json:"tpm_partner_id"`
	VendorNumber         string             `json:"vendor_number"`
	Activities           []ActivityResponse `json:"activities"`
	UNICEFFocalPointIDs  []uuid.UUID        `json:"unicef_focal_points"`
	TPMFocalPointIDs     []uuid.UUID        `json:"tpm_partner_focal_points"`
	OfficeIDs            []uuid.UUID        `json:"offices"`
	RejectComment        string             `json:"reject_comment"`
	ApprovalComment      string             `json:"approval_comment"`
	ReportRejectComments []string           `json:"report_reject_comments"`
	DateOfAssigned       *time.Time         `json:"date_of_assigned"`
	DateOfTPMAccepted    *time.Time         `json:"date_of_tpm_accepted"`
	DateOfTPMReported    *time.Time         `json:"date_of_tpm_reported"`
	DateOfUNICEFApproved *time.Time         `json:"date_of_unicef_approved"`
	DateOfCancelled      *time.Time         `json:"date_of_cancelled"`
	CreatedAt            time.Time          `json:"created_at"`
	UpdatedAt            time.Time          `json:"updated_at"`
}

// ToVisitResponse maps the aggregate to the read shape.
func ToVisitResponse(v *tpm.Visit) VisitResponse {
	activities := make([]ActivityResponse, 0, len(v.Activities))
	for _, a := range v.Activities {
		activities = append(activities, ActivityResponse{
			ID:                    a.ID,
			ImplementingPartnerID: a.ImplementingPartnerID,
			InterventionID:        a.InterventionID,
			CPOutputID:            a.CPOutputID,
			SectionID:             a.SectionID,
			LocationIDs:           a.LocationIDs,
			Date:                  a.Date,
			IsProgrammaticVisit:   a.IsProgrammaticVisit,
		})
	}
	rejects := make([]string, 0, len(v.ReportRejects))
	for _, r := range v.ReportRejects {
		rejects = append(rejects, r.Comment)
	}
	return VisitResponse{
		ID:                   v.ID,
		ReferenceNumber:      v.ReferenceNumber,
		Status:               string(v.Status),
		TPMPartnerID:         v.TPMPartnerID,
		VendorNumber:         v.VendorNumber,
		Activities:           activities,
		UNICEFFocalPointIDs:  v.UNICEFFocalPointIDs,
		TPMFocalPointIDs:     v.TPMFocalPointIDs,
		OfficeIDs:            v.OfficeIDs,
		RejectComment:        v.RejectComment,
		ApprovalComment:      v.ApprovalComment,
		ReportRejectComments: rejects,
		DateOfAssigned:       v.DateOfAssigned,
		DateOfTPMAccepted:    v.DateOfTPMAccepted,
		DateOfTPMReported:    v.DateOfTPMReported,
		DateOfUNICEFApproved: v.DateOfUNICEFApproved,
		DateOfCancelled:      v.DateOfCancelled,
		CreatedAt:            v.CreatedAt,
		UpdatedAt:            v.UpdatedAt,
	}
}

// ListFilter narrows a visit listing.
type ListFilter struct {
	Page         int        `form:"page"`
	PageSize     int        `form:"page_size"`
	Status       string     `form:"status"`
	TPMPartnerID *uuid.UUID `form:"tpm_partner_id"`
	FocalPointID *uuid.UUID `form:"focal_point_id"`
	StartDate    *time.Time `form:"start_date"`
	EndDate      *time.Time `form:"end_date"`
	Search       string     `form:"search"`
	Sort         string     `form:"sort"`
}
