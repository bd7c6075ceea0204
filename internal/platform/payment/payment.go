// Package payment integrates external payment providers. Checkout sessions
// and card charges happen outside our transactional boundary, so order state
// only advances on provider confirmation.
package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/domain/order"
)

// Currency is the settlement currency for all provider charges
const Currency = "usd"

// CheckoutSession is a provider-hosted payment page for one order
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// WebhookEventType classifies the provider callback outcome
type WebhookEventType string

const (
	WebhookPaymentSucceeded WebhookEventType = "payment_succeeded"
	WebhookPaymentFailed    WebhookEventType = "payment_failed"
	WebhookIgnored          WebhookEventType = "ignored"
)

// WebhookEvent is a verified provider callback mapped to an order
type WebhookEvent struct {
	Type      WebhookEventType
	OrderID   uuid.UUID
	PaymentID string
}

// CheckoutProvider creates hosted checkout sessions and verifies the
// asynchronous callbacks that settle them
type CheckoutProvider interface {
	CreateCheckoutSession(ctx context.Context, o *order.Order, successURL, cancelURL string) (*CheckoutSession, error)
	VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error)
}

// CardCharger charges a tokenized card synchronously and returns the
// provider payment reference
type CardCharger interface {
	Charge(ctx context.Context, sourceID string, amount int64, idempotencyKey string) (string, error)
}
