package shared

import (
	"time"

	"github.com/google/uuid"
)

// NotificationKind selects the email template to render
type NotificationKind string

const (
	NotificationWelcome             NotificationKind = "welcome"
	NotificationNewsletterConfirm   NotificationKind = "newsletter_confirmation"
	NotificationOrderConfirmation   NotificationKind = "order_confirmation"
	NotificationPaymentFailed       NotificationKind = "payment_failed"
	NotificationPasswordReset       NotificationKind = "password_reset"
	NotificationApplicationReceived NotificationKind = "producer_application_received"
	NotificationApplicationApproved NotificationKind = "producer_application_approved"
	NotificationApplicationRejected NotificationKind = "producer_application_rejected"
)

// OutboxStatus defines notification publishing states
type OutboxStatus string

const (
	OutboxStatusPending         OutboxStatus = "PENDING"
	OutboxStatusProcessed       OutboxStatus = "PROCESSED"
	OutboxStatusFailedToPublish OutboxStatus = "FAILED_TO_PUBLISH"
)

// NotificationEvent is the Kafka message carrying one best-effort email.
// Delivery is strictly fire-and-forget: no consumer outcome ever reaches back
// into the operation that produced the event.
type NotificationEvent struct {
	EventID       uuid.UUID         `json:"event_id"`
	Kind          NotificationKind  `json:"kind"`
	Recipient     string            `json:"recipient"`
	Data          map[string]string `json:"data"` // Template fields
	CorrelationID string            `json:"correlation_id,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// NewNotificationEvent builds an event for the given recipient and template data
func NewNotificationEvent(kind NotificationKind, recipient string, data map[string]string) *NotificationEvent {
	return &NotificationEvent{
		EventID:   uuid.New(),
		Kind:      kind,
		Recipient: recipient,
		Data:      data,
		Timestamp: time.Now(),
	}
}
