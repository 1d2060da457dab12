package notification

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/psea"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// routes maps a workflow event type to the template it triggers. Events
// without a route produce no messages.
var routes = map[string]string{
	engagement.EventSubmitted: TemplateReportedByAuditor,
	engagement.EventSentBack:  TemplateEngagementAction,
	engagement.EventCancelled: TemplateEngagementAction,

	tpm.EventAssigned:       TemplateVisitAssigned,
	tpm.EventAccepted:       TemplateVisitAccepted,
	tpm.EventRejected:       TemplateVisitRejected,
	tpm.EventReported:       TemplateVisitReported,
	tpm.EventReportRejected: TemplateVisitReportRejected,
	tpm.EventApproved:       TemplateVisitApproved,
	tpm.EventCancelled:      TemplateVisitCancelled,

	psea.EventAssigned:  TemplatePSEAAssigned,
	psea.EventSubmitted: TemplatePSEASubmitted,
	psea.EventRejected:  TemplatePSEARejected,
	psea.EventFinalized: TemplatePSEAFinalized,

	lastmile.EventShortCheckIn:  TemplateWastage,
	lastmile.EventSurplusCheck:  TemplateWastage,
	lastmile.EventWastage:       TemplateWastage,
	lastmile.EventWaybillUpload: TemplateWaybill,
}

// Build renders a workflow event into outbound messages, one per
// recipient. It is a pure function: no I/O, no clock.
func Build(event shared.DomainEvent, recipients []string, templateContext map[string]any) []Message {
	templateID, ok := routes[event.EventType()]
	if !ok || len(recipients) == 0 {
		return nil
	}
	messages := make([]Message, 0, len(recipients))
	for _, recipient := range recipients {
		if recipient == "" {
			continue
		}
		messages = append(messages, Message{
			Recipient:  recipient,
			TemplateID: templateID,
			Context:    templateContext,
			SubjectID:  event.AggregateID(),
		})
	}
	return messages
}

// Dispatcher delivers rendered messages after a transition commits,
// suppressing duplicates within the retry window. Send failures are
// logged and swallowed; notifications are best-effort.
type Dispatcher struct {
	sender Sender
	store  IdempotencyStore
	window time.Duration
	logger *zap.Logger
}

func NewDispatcher(sender Sender, store IdempotencyStore, window time.Duration, logger *zap.Logger) *Dispatcher {
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &Dispatcher{sender: sender, store: store, window: window, logger: logger}
}

// Dispatch renders and sends the messages for one committed event.
func (d *Dispatcher) Dispatch(ctx context.Context, event shared.DomainEvent, recipients []string, templateContext map[string]any) {
	for _, msg := range Build(event, recipients, templateContext) {
		already, err := d.store.MarkSent(ctx, msg.Key(), d.window)
		if err != nil {
			d.logger.Warn("notification idempotency check failed",
				zap.String("template", msg.TemplateID),
				zap.Error(err))
		}
		if already {
			continue
		}
		if err := d.sender.Send(ctx, msg); err != nil {
			d.logger.Error("notification send failed",
				zap.String("template", msg.TemplateID),
				zap.String("recipient", msg.Recipient),
				zap.Error(err))
		}
	}
}
