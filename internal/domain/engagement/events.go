package engagement

import (
	"github.com/unicef/etools-sub003/internal/domain/shared"
)

// Event types emitted by the engagement lifecycle.
const (
	EventCreated   = "engagement.created"
	EventSubmitted = "engagement.report_submitted"
	EventSentBack  = "engagement.sent_back"
	EventCancelled = "engagement.cancelled"
	EventFinalized = "engagement.finalized"
)

const aggregateType = "Engagement"

// Event is the shared payload of all engagement events.
type Event struct {
	shared.BaseDomainEvent
	ReferenceNumber string   `json:"reference_number"`
	EngagementType  Type     `json:"engagement_type"`
	Status          Status   `json:"status"`
	PartnerName     string   `json:"partner_name"`
	FocalPointIDs   []string `json:"focal_point_ids"`
}

func newEvent(eventType string, e *Engagement) *Event {
	focalPoints := make([]string, 0, len(e.FocalPointIDs))
	for _, id := range e.FocalPointIDs {
		focalPoints = append(focalPoints, id.String())
	}
	return &Event{
		BaseDomainEvent: shared.NewBaseDomainEvent(eventType, aggregateType, e.ID, e.TenantID),
		ReferenceNumber: e.ReferenceNumber,
		EngagementType:  e.Type,
		Status:          e.Status,
		PartnerName:     e.PartnerName,
		FocalPointIDs:   focalPoints,
	}
}

func NewCreatedEvent(e *Engagement) *Event   { return newEvent(EventCreated, e) }
func NewSubmittedEvent(e *Engagement) *Event { return newEvent(EventSubmitted, e) }
func NewSentBackEvent(e *Engagement) *Event  { return newEvent(EventSentBack, e) }
func NewCancelledEvent(e *Engagement) *Event { return newEvent(EventCancelled, e) }
func NewFinalizedEvent(e *Engagement) *Event { return newEvent(EventFinalized, e) }
