// Package service contains the notifier's delivery pipeline: a base service
// that renders and sends one email, wrapped by a worker pool that bounds
// concurrent SMTP connections.
package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oneplanet-market/internal/domain/shared"
	"github.com/oneplanet-market/internal/notifier/mailer"
)

// MailDeliveryService implements DeliveryService using a Mailer
type MailDeliveryService struct {
	mailer mailer.Mailer
	logger *slog.Logger
}

// NewMailDeliveryService creates the base delivery service
func NewMailDeliveryService(logger *slog.Logger, m mailer.Mailer) *MailDeliveryService {
	return &MailDeliveryService{
		mailer: m,
		logger: logger,
	}
}

// DeliverNotification sends one notification email
func (s *MailDeliveryService) DeliverNotification(ctx context.Context, event *shared.NotificationEvent) error {
	logger := s.logger
	if event.CorrelationID != "" {
		logger = s.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Delivering notification",
		"event_id", event.EventID.String(),
		"kind", string(event.Kind),
		"recipient", event.Recipient,
	)

	if err := s.mailer.Send(ctx, event); err != nil {
		return fmt.Errorf("delivering notification %s failed: %w", event.EventID.String(), err)
	}

	return nil
}
