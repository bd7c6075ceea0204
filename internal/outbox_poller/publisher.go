package outbox_poller

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
	"github.com/oneplanet-market/internal/platform/messaging/producers"
)

// NotificationPublisher publishes outbox messages to the notification topic
type NotificationPublisher interface {
	PublishNotification(ctx context.Context, message *outbox.Message) error
}

// NotificationPublisherImpl implements NotificationPublisher
type NotificationPublisherImpl struct {
	outboxRepo outbox.Repository
	producer   producers.MessagePublisher
	logger     *slog.Logger
}

// NewNotificationPublisher creates a new publisher
func NewNotificationPublisher(
	outboxRepo outbox.Repository,
	producer producers.MessagePublisher,
	logger *slog.Logger,
) NotificationPublisher {
	return &NotificationPublisherImpl{
		outboxRepo: outboxRepo,
		producer:   producer,
		logger:     logger,
	}
}

// PublishNotification forwards the stored event to Kafka and marks the outbox
// row processed. Messages carrying a payload that no longer parses are parked
// as FAILED_TO_PUBLISH instead of being retried forever.
func (p *NotificationPublisherImpl) PublishNotification(ctx context.Context, message *outbox.Message) error {
	event, err := message.GetEvent()
	if err != nil {
		p.logger.Error("Failed to unmarshal notification event from outbox payload",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		if updateErr := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusFailedToPublish); updateErr != nil {
			p.logger.Error("Also failed to update outbox status to FAILED_TO_PUBLISH after unmarshal error", "outbox_id", message.ID, "update_error", updateErr)
		}
		return fmt.Errorf("unmarshal payload for outbox %d failed: %w", message.ID, err)
	}

	logger := p.logger
	if event.CorrelationID != "" {
		logger = p.logger.With("correlation_id", event.CorrelationID)
	}

	logger.Info("Attempting to publish outbox message to notification topic",
		"outbox_id", message.ID, "event_id", message.EventID, "kind", string(event.Kind),
	)

	// Key by recipient so one mailbox's notifications stay ordered
	if err := p.producer.Publish(ctx, event.Recipient, event); err != nil {
		return fmt.Errorf("failed to publish notification event %s: %w", message.EventID, err)
	}

	if err := p.outboxRepo.UpdateStatus(ctx, message.ID, shared.OutboxStatusProcessed); err != nil {
		logger.Error("Failed to update outbox message status to PROCESSED",
			"outbox_id", message.ID, "event_id", message.EventID, "error", err,
		)
		return fmt.Errorf("publish for %s OK, but failed to mark outbox %d as PROCESSED: %w", message.EventID, message.ID, err)
	}

	logger.Info("Outbox message successfully published and marked as PROCESSED", "outbox_id", message.ID, "event_id", message.EventID)
	return nil
}
