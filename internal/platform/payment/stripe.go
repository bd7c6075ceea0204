package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"

	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/order"
)

// StripeProvider implements CheckoutProvider using Stripe hosted checkout.
// The order ID travels in the session metadata so the webhook can map the
// settlement back to the order.
type StripeProvider struct {
	client        *client.API
	webhookSecret string
	logger        *slog.Logger
}

// NewStripeProvider creates a Stripe checkout provider
func NewStripeProvider(logger *slog.Logger, cfg *config.PaymentsConfig) *StripeProvider {
	sc := &client.API{}
	sc.Init(cfg.StripeSecretKey, nil)

	return &StripeProvider{
		client:        sc,
		webhookSecret: cfg.StripeWebhookSecret,
		logger:        logger,
	}
}

// CreateCheckoutSession opens a hosted checkout page for the order. Each line
// item is listed at its snapshot price and the tax surcharge is added as its
// own line so the session total equals the stored order amount.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, o *order.Order, successURL, cancelURL string) (*CheckoutSession, error) {
	lineItems := make([]*stripe.CheckoutSessionLineItemParams, 0, len(o.Items)+1)
	for _, item := range o.Items {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(Currency),
				UnitAmount: stripe.Int64(item.UnitPrice),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String(item.Name),
				},
			},
			Quantity: stripe.Int64(int64(item.Quantity)),
		})
	}

	if tax := o.Amount - order.Subtotal(o.Items); tax > 0 {
		lineItems = append(lineItems, &stripe.CheckoutSessionLineItemParams{
			PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
				Currency:   stripe.String(Currency),
				UnitAmount: stripe.Int64(tax),
				ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
					Name: stripe.String("Tax"),
				},
			},
			Quantity: stripe.Int64(1),
		})
	}

	params := &stripe.CheckoutSessionParams{
		Mode:       stripe.String(string(stripe.CheckoutSessionModePayment)),
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
		LineItems:  lineItems,
	}
	params.Context = ctx
	params.AddMetadata("order_id", o.ID.String())

	sess, err := p.client.CheckoutSessions.New(params)
	if err != nil {
		p.logger.Error("Failed to create checkout session", "order_id", o.ID.String(), "error", err)
		return nil, fmt.Errorf("failed to create checkout session: %w", err)
	}

	return &CheckoutSession{
		ID:  sess.ID,
		URL: sess.URL,
	}, nil
}

// VerifyWebhook validates the Stripe signature and maps the event to a
// settlement outcome. Only a bad signature is an error; a signed event we
// cannot act on (unknown type, missing or unparseable order metadata) is
// reported as ignored so the endpoint acknowledges it and Stripe stops
// retrying.
func (p *StripeProvider) VerifyWebhook(payload []byte, signatureHeader string) (*WebhookEvent, error) {
	event, err := webhook.ConstructEvent(payload, signatureHeader, p.webhookSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to verify webhook signature: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed", "checkout.session.expired", "checkout.session.async_payment_failed":
	default:
		return &WebhookEvent{Type: WebhookIgnored}, nil
	}

	var sess stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
		p.logger.Warn("ignoring webhook event with unreadable session payload",
			"event_type", string(event.Type),
			"error", err,
		)
		return &WebhookEvent{Type: WebhookIgnored}, nil
	}

	orderID, err := uuid.Parse(sess.Metadata["order_id"])
	if err != nil {
		p.logger.Warn("ignoring webhook event without a resolvable order id",
			"event_type", string(event.Type),
			"session_id", sess.ID,
			"error", err,
		)
		return &WebhookEvent{Type: WebhookIgnored}, nil
	}

	result := &WebhookEvent{
		OrderID:   orderID,
		PaymentID: sess.ID,
	}
	if sess.PaymentIntent != nil && sess.PaymentIntent.ID != "" {
		result.PaymentID = sess.PaymentIntent.ID
	}

	if event.Type == "checkout.session.completed" {
		result.Type = WebhookPaymentSucceeded
	} else {
		result.Type = WebhookPaymentFailed
	}

	return result, nil
}
