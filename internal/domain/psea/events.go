package psea

import (
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Event types emitted by the assessment lifecycle.
const (
	EventAssigned  = "psea.assigned"
	EventSubmitted = "psea.submitted"
	EventRejected  = "psea.rejected"
	EventFinalized = "psea.finalized"
	EventCancelled = "psea.cancelled"
)

const aggregateType = "PSEAAssessment"

// Event is the shared payload of all assessment events.
type Event struct {
	shared.BaseDomainEvent
	ReferenceNumber string   `json:"reference_number"`
	Status          Status   `json:"status"`
	PartnerName     string   `json:"partner_name"`
	FocalPointIDs   []string `json:"focal_point_ids"`
	Rating          Rating   `json:"overall_rating,omitempty"`
}

func newEvent(eventType string, a *Assessment) *Event {
	focalPoints := make([]string, 0, len(a.FocalPointIDs))
	for _, id := range a.FocalPointIDs {
		focalPoints = append(focalPoints, id.String())
	}
	return &Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateType, a.ID, a.TenantID),
		ReferenceNumber: a.ReferenceNumber,
		Status:          a.Status,
		PartnerName:     a.PartnerName,
		FocalPointIDs:   focalPoints,
		Rating:          a.RatingDisplay(),
	}
}
