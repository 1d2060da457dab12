package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Template identifiers. Templates themselves are owned by the mail
// infrastructure; the dispatcher only addresses them.
const (
	TemplateReportedByAuditor   = "audit/engagement/reported_by_auditor"
	TemplateEngagementAction    = "audit/engagement/action_required"
	TemplateVisitAssigned       = "tpm/visit/assign"
	TemplateVisitAccepted       = "tpm/visit/accept"
	TemplateVisitRejected       = "tpm/visit/reject"
	TemplateVisitReported       = "tpm/visit/report"
	TemplateVisitReportRejected = "tpm/visit/report_rejected"
	TemplateVisitApproved       = "tpm/visit/approve"
	TemplateVisitCancelled      = "tpm/visit/cancel"
	TemplatePSEAAssigned        = "psea/assessment/assigned"
	TemplatePSEASubmitted       = "psea/assessment/submitted"
	TemplatePSEARejected        = "psea/assessment/rejected"
	TemplatePSEAFinalized       = "psea/assessment/finalized"
	TemplateWastage             = "last_mile/wastage"
	TemplateWaybill             = "last_mile/waybill"
)

// Message is one rendered outbound notification.
type Message struct {
	Recipient  string         `json:"recipient"`
	TemplateID string         `json:"template_id"`
	Context    map[string]any `json:"context"`
	SubjectID  uuid.UUID      `json:"subject_id"`
}

// Key identifies a message for idempotent delivery.
type Key struct {
	SubjectID  uuid.UUID
	TemplateID string
	Recipient  string
}

// Key returns the idempotency key of a message.
func (m Message) Key() Key {
	return Key{SubjectID: m.SubjectID, TemplateID: m.TemplateID, Recipient: m.Recipient}
}

// IdempotencyStore suppresses duplicate sends of the same message within
// a retry window.
type IdempotencyStore interface {
	// MarkSent records the key and reports whether it was already present.
	MarkSent(ctx context.Context, key Key, window time.Duration) (alreadySent bool, err error)
}

// Sender delivers rendered messages. Delivery is best-effort; senders run
// after the owning transaction commits.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
