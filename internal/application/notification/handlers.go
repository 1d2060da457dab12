// Package notification subscribes the dispatcher to the event bus and
// resolves each event's recipients from the directory. Handlers run after
// the producing transaction has committed; failures here never surface
// back to the producer.
package notification

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/engagement"
	"github.com/unicef/etools-sub003/internal/domain/identity"
	"github.com/unicef/etools-sub003/internal/domain/lastmile"
	"github.com/unicef/etools-sub003/internal/domain/notification"
	"github.com/unicef/etools-sub003/internal/domain/psea"
	"github.com/unicef/etools-sub003/internal/domain/shared"
	"github.com/unicef/etools-sub003/internal/domain/tpm"
)

// EventHandler turns committed workflow events into outbound messages.
type EventHandler struct {
	dispatcher *notification.Dispatcher
	userRepo   identity.UserRepository
	logger     *zap.Logger
}

func NewEventHandler(dispatcher *notification.Dispatcher, userRepo identity.UserRepository, logger *zap.Logger) *EventHandler {
	return &EventHandler{dispatcher: dispatcher, userRepo: userRepo, logger: logger}
}

// EventTypes lists the events with a notification route.
func (h *EventHandler) EventTypes() []string {
	return []string{
		engagement.EventSubmitted,
		engagement.EventSentBack,
		engagement.EventCancelled,
		tpm.EventAssigned,
		tpm.EventAccepted,
		tpm.EventRejected,
		tpm.EventReported,
		tpm.EventReportRejected,
		tpm.EventApproved,
		tpm.EventCancelled,
		psea.EventAssigned,
		psea.EventSubmitted,
		psea.EventRejected,
		psea.EventFinalized,
		lastmile.EventShortCheckIn,
		lastmile.EventSurplusCheck,
		lastmile.EventWastage,
	}
}

// Handle resolves recipients for one event and dispatches the messages.
func (h *EventHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	var (
		recipients      []string
		templateContext map[string]any
	)
	switch e := event.(type) {
	case *engagement.Event:
		recipients = h.resolveEmails(ctx, e.FocalPointIDs)
		templateContext = map[string]any{
			"reference_number": e.ReferenceNumber,
			"engagement_type":  string(e.EngagementType),
			"partner_name":     e.PartnerName,
			"status":           string(e.Status),
		}
	case *tpm.Event:
		ids := make([]string, 0, len(e.FocalPointIDs)+len(e.TPMFocalPointIDs))
		if e.NotifyFocalPoint || !e.NotifyTPMPartner {
			ids = append(ids, e.FocalPointIDs...)
		}
		if e.NotifyTPMPartner || !e.NotifyFocalPoint {
			ids = append(ids, e.TPMFocalPointIDs...)
		}
		recipients = h.resolveEmails(ctx, ids)
		templateContext = map[string]any{
			"reference_number": e.ReferenceNumber,
			"status":           string(e.Status),
		}
	case *psea.Event:
		recipients = h.resolveEmails(ctx, e.FocalPointIDs)
		templateContext = map[string]any{
			"reference_number": e.ReferenceNumber,
			"partner_name":     e.PartnerName,
			"status":           string(e.Status),
			"overall_rating":   string(e.Rating),
		}
	case *lastmile.Event:
		recipients = h.groupEmails(ctx, identity.GroupLMSMCOAdmin)
		templateContext = map[string]any{
			"transfer_name": e.TransferName,
			"transfer_type": string(e.TransferType),
			"subtype":       string(e.TransferSubtype),
		}
	default:
		return nil
	}

	h.dispatcher.Dispatch(ctx, event, recipients, templateContext)
	return nil
}

// resolveEmails maps user ids to active directory emails, skipping
// anything that does not resolve.
func (h *EventHandler) resolveEmails(ctx context.Context, rawIDs []string) []string {
	emails := make([]string, 0, len(rawIDs))
	for _, raw := range rawIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		user, err := h.userRepo.FindByID(ctx, id)
		if err != nil {
			h.logger.Debug("notification recipient not resolved",
				zap.String("user_id", raw),
				zap.Error(err))
			continue
		}
		if user.IsActive {
			emails = append(emails, user.Email)
		}
	}
	return emails
}

func (h *EventHandler) groupEmails(ctx context.Context, group string) []string {
	users, err := h.userRepo.FindByGroup(ctx, group)
	if err != nil {
		h.logger.Warn("notification group not resolved",
			zap.String("group", group),
			zap.Error(err))
		return nil
	}
	emails := make([]string, 0, len(users))
	for _, u := range users {
		if u.IsActive {
			emails = append(emails, u.Email)
		}
	}
	return emails
}

var _ shared.EventHandler = (*EventHandler)(nil)
