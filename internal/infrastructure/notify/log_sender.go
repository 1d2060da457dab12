// Package notify carries outbound messages to the platform mailer. The
// core does not render or deliver email itself; it hands addressed
// template messages over and logs what it handed off.
package notify

import (
	"context"

	"go.uber.org/zap"

	"github.com/unicef/etools-sub003/internal/domain/notification"
)

// LogSender implements notification.Sender by logging each handed-off
// message. Stands in for the mailer gateway in development and tests.
type LogSender struct {
	from   string
	logger *zap.Logger
}

// NewLogSender creates a sender that records deliveries in the log.
func NewLogSender(from string, logger *zap.Logger) *LogSender {
	return &LogSender{from: from, logger: logger}
}

// Send logs the message hand-off.
func (s *LogSender) Send(ctx context.Context, msg notification.Message) error {
	s.logger.Info("notification dispatched",
		zap.String("from", s.from),
		zap.String("recipient", msg.Recipient),
		zap.String("template_id", msg.TemplateID),
		zap.String("subject_id", msg.SubjectID.String()))
	return nil
}

var _ notification.Sender = (*LogSender)(nil)
