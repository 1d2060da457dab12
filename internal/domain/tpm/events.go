package tpm

import (
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Event types emitted by the visit lifecycle.
const (
	EventAssigned       = "tpm_visit.assigned"
	EventAccepted       = "tpm_visit.tpm_accepted"
	EventRejected       = "tpm_visit.tpm_rejected"
	EventReported       = "tpm_visit.tpm_reported"
	EventReportRejected = "tpm_visit.report_rejected"
	EventApproved       = "tpm_visit.unicef_approved"
	EventCancelled      = "tpm_visit.cancelled"
)

const aggregateType = "TPMVisit"

// Event is the shared payload of all visit events.
type Event struct {
	shared.BaseDomainEvent
	ReferenceNumber  string   `json:"reference_number"`
	Status           Status   `json:"status"`
	FocalPointIDs    []string `json:"focal_point_ids"`
	TPMFocalPointIDs []string `json:"tpm_focal_point_ids"`
	NotifyFocalPoint bool     `json:"notify_focal_point,omitempty"`
	NotifyTPMPartner bool     `json:"notify_tpm_partner,omitempty"`
}

func newEvent(eventType string, v *Visit) *Event {
	unicef := make([]string, 0, len(v.UNICEFFocalPointIDs))
	for _, id := range v.UNICEFFocalPointIDs {
		unicef = append(unicef, id.String())
	}
	vendor := make([]string, 0, len(v.TPMFocalPointIDs))
	for _, id := range v.TPMFocalPointIDs {
		vendor = append(vendor, id.String())
	}
	return &Event{
		BaseDomainEvent:  shared.NewBaseDomainEvent(eventType, aggregateType, v.ID, v.TenantID),
		ReferenceNumber:  v.ReferenceNumber,
		Status:           v.Status,
		FocalPointIDs:    unicef,
		TPMFocalPointIDs: vendor,
	}
}
