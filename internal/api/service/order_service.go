package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/config"
	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/catalog"
	"github.com/oneplanet-market/internal/domain/ecojourney"
	"github.com/oneplanet-market/internal/domain/order"
	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
	"github.com/oneplanet-market/internal/domain/wallet"
	"github.com/oneplanet-market/internal/platform/payment"
)

// OrderServiceImpl implements the OrderService interface. Orders become
// visible either immediately (COD, synchronous card charges) or when the
// payment provider's webhook confirms the checkout session; completion side
// effects run at that moment and only then.
type OrderServiceImpl struct {
	accountRepo      account.Repository
	productRepo      catalog.Repository
	orderRepo        order.Repository
	outboxRepo       outbox.Repository
	walletService    WalletService
	journeyService   EcoJourneyService
	checkoutProvider payment.CheckoutProvider
	cardCharger      payment.CardCharger
	walletCfg        *config.WalletConfig
	logger           *slog.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	logger *slog.Logger,
	walletCfg *config.WalletConfig,
	accountRepo account.Repository,
	productRepo catalog.Repository,
	orderRepo order.Repository,
	outboxRepo outbox.Repository,
	walletService WalletService,
	journeyService EcoJourneyService,
	checkoutProvider payment.CheckoutProvider,
	cardCharger payment.CardCharger,
) OrderService {
	return &OrderServiceImpl{
		accountRepo:      accountRepo,
		productRepo:      productRepo,
		orderRepo:        orderRepo,
		outboxRepo:       outboxRepo,
		walletService:    walletService,
		journeyService:   journeyService,
		checkoutProvider: checkoutProvider,
		cardCharger:      cardCharger,
		walletCfg:        walletCfg,
		logger:           logger,
	}
}

// PlaceCODOrder creates a cash-on-delivery order. COD orders are visible and
// complete the moment they are stored.
func (s *OrderServiceImpl) PlaceCODOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address) (*order.Order, *ecojourney.OrderImpact, error) {
	resolved, err := s.resolveItems(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	o, err := order.NewOrder(accountID, resolved, address, order.PaymentTypeCOD)
	if err != nil {
		return nil, nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, nil, err
	}

	impact := s.completeOrder(ctx, o)
	return o, impact, nil
}

// PlaceOnlineOrder stores an unpaid order and opens a hosted checkout
// session. The order stays invisible until the provider webhook settles it;
// a failed session creation discards the order again.
func (s *OrderServiceImpl) PlaceOnlineOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address, successURL, cancelURL string) (*OnlineCheckout, error) {
	resolved, err := s.resolveItems(ctx, items)
	if err != nil {
		return nil, err
	}

	o, err := order.NewOrder(accountID, resolved, address, order.PaymentTypeOnline)
	if err != nil {
		return nil, err
	}

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, err
	}

	session, err := s.checkoutProvider.CreateCheckoutSession(ctx, o, successURL, cancelURL)
	if err != nil {
		if delErr := s.orderRepo.Delete(ctx, o.ID); delErr != nil {
			s.logger.Error("Failed to discard order after checkout session error",
				"order_id", o.ID.String(), "error", delErr)
		}
		return nil, err
	}

	s.logger.Info("Checkout session opened",
		"order_id", o.ID.String(),
		"session_id", session.ID,
	)
	return &OnlineCheckout{Order: o, SessionURL: session.URL}, nil
}

// PlaceCardOrder charges the card synchronously and stores a paid, complete
// order. The order ID doubles as the idempotency key, so a retried request
// can never charge twice.
func (s *OrderServiceImpl) PlaceCardOrder(ctx context.Context, accountID uuid.UUID, items []CheckoutItem, address order.Address, sourceID string) (*order.Order, *ecojourney.OrderImpact, error) {
	resolved, err := s.resolveItems(ctx, items)
	if err != nil {
		return nil, nil, err
	}

	o, err := order.NewOrder(accountID, resolved, address, order.PaymentTypeSquare)
	if err != nil {
		return nil, nil, err
	}

	paymentID, err := s.cardCharger.Charge(ctx, sourceID, o.Amount, o.ID.String())
	if err != nil {
		return nil, nil, err
	}

	o.PaymentID = paymentID
	o.IsPaid = true

	if err := s.orderRepo.Create(ctx, o); err != nil {
		return nil, nil, err
	}

	impact := s.completeOrder(ctx, o)
	return o, impact, nil
}

// HandlePaymentWebhook verifies and applies a provider callback. Successful
// payments mark the order paid and complete it; failures delete the pending
// order so it never becomes visible. Replayed events are no-ops.
func (s *OrderServiceImpl) HandlePaymentWebhook(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.checkoutProvider.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		return err
	}

	if event.Type == payment.WebhookIgnored {
		return nil
	}

	o, err := s.orderRepo.GetByID(ctx, event.OrderID)
	if err != nil {
		var notFound order.ErrOrderNotFound
		if errors.As(err, &notFound) {
			// Failure events can arrive after the order was already
			// discarded; nothing left to do
			s.logger.Warn("Webhook references unknown order", "order_id", event.OrderID.String())
			return nil
		}
		return err
	}

	switch event.Type {
	case payment.WebhookPaymentSucceeded:
		if o.IsPaid {
			return nil // Replayed event
		}
		if err := s.orderRepo.MarkPaid(ctx, o.ID, event.PaymentID); err != nil {
			return err
		}
		o.IsPaid = true
		o.PaymentID = event.PaymentID
		s.completeOrder(ctx, o)
		return nil

	case payment.WebhookPaymentFailed:
		if o.IsPaid {
			return nil // Settled orders are never rolled back
		}
		if err := s.orderRepo.Delete(ctx, o.ID); err != nil {
			return err
		}
		s.notifyPaymentFailed(ctx, o)
		return nil
	}

	return fmt.Errorf("unhandled webhook event type %q", event.Type)
}

// GetMyOrders returns the account's visible orders
func (s *OrderServiceImpl) GetMyOrders(ctx context.Context, accountID uuid.UUID, page, perPage int) ([]*order.Order, error) {
	offset := (page - 1) * perPage
	return s.orderRepo.GetByAccountID(ctx, accountID, perPage, offset)
}

// ListOrders returns all visible orders for admin views
func (s *OrderServiceImpl) ListOrders(ctx context.Context, page, perPage int) ([]*order.Order, error) {
	offset := (page - 1) * perPage
	return s.orderRepo.ListVisible(ctx, perPage, offset)
}

// resolveItems snapshots the requested products into order lines at their
// current offer price
func (s *OrderServiceImpl) resolveItems(ctx context.Context, items []CheckoutItem) ([]order.Item, error) {
	if len(items) == 0 {
		return nil, order.ErrEmptyOrder
	}

	resolved := make([]order.Item, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("quantity for product %s must be positive", item.ProductID)
		}

		product, err := s.productRepo.GetByID(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		if !product.InStock {
			return nil, ErrProductOutOfStock
		}

		resolved = append(resolved, order.Item{
			ProductID:  product.ID,
			ProducerID: product.ProducerID,
			Name:       product.Name,
			UnitPrice:  product.OfferPrice,
			Quantity:   item.Quantity,
		})
	}
	return resolved, nil
}

// completeOrder runs the side effects of an order becoming visible: journey
// progression, producer payouts, the confirmation email, and clearing the
// buyer's cart. Each effect is isolated so one failure never blocks the rest,
// and none of them can fail the order itself.
func (s *OrderServiceImpl) completeOrder(ctx context.Context, o *order.Order) *ecojourney.OrderImpact {
	impact, err := s.journeyService.RecordCompletedOrder(ctx, o)
	if err != nil {
		s.logger.Error("Failed to record order on eco journey",
			"order_id", o.ID.String(), "error", err)
	}

	s.payoutProducers(ctx, o)

	if err := s.accountRepo.UpdateCart(ctx, o.AccountID, map[string]int{}); err != nil {
		s.logger.Error("Failed to clear cart after order",
			"order_id", o.ID.String(), "error", err)
	}

	s.notifyOrderConfirmed(ctx, o, impact)

	return impact
}

// payoutProducers credits each producer their share of the order: the line
// subtotal minus the platform commission. Payouts land as system credits on
// the producers' wallet ledgers.
func (s *OrderServiceImpl) payoutProducers(ctx context.Context, o *order.Order) {
	totals := make(map[uuid.UUID]int64)
	for _, item := range o.Items {
		if item.ProducerID == nil {
			continue
		}
		totals[*item.ProducerID] += item.UnitPrice * int64(item.Quantity)
	}

	for producerID, gross := range totals {
		payout := gross - gross*s.walletCfg.CommissionPercent/100
		if payout <= 0 {
			continue
		}

		remark := "Payout for order " + o.ID.String()
		if _, err := s.walletService.Credit(ctx, producerID, payout, remark, wallet.SourceSystem); err != nil {
			s.logger.Error("Failed to pay out producer",
				"order_id", o.ID.String(),
				"producer_id", producerID.String(),
				"amount", payout,
				"error", err,
			)
		}
	}
}

func (s *OrderServiceImpl) notifyOrderConfirmed(ctx context.Context, o *order.Order, impact *ecojourney.OrderImpact) {
	acc, err := s.accountRepo.GetByID(ctx, o.AccountID)
	if err != nil {
		s.logger.Error("Failed to load account for order confirmation",
			"order_id", o.ID.String(), "error", err)
		return
	}

	carbonSaved := float64(order.TotalQuantity(o.Items)) * ecojourney.CarbonSavedPerUnitKG
	if impact != nil {
		carbonSaved = impact.CarbonSaved
	}

	event := shared.NewNotificationEvent(shared.NotificationOrderConfirmation, acc.Email, map[string]string{
		"name":         acc.Name,
		"order_id":     o.ID.String(),
		"amount":       strconv.FormatInt(o.Amount, 10),
		"carbon_saved": strconv.FormatFloat(carbonSaved, 'f', 1, 64),
	})
	if err := enqueueNotification(ctx, s.outboxRepo, event); err != nil {
		s.logger.Error("Failed to enqueue order confirmation",
			"order_id", o.ID.String(), "error", err)
	}
}

func (s *OrderServiceImpl) notifyPaymentFailed(ctx context.Context, o *order.Order) {
	acc, err := s.accountRepo.GetByID(ctx, o.AccountID)
	if err != nil {
		s.logger.Error("Failed to load account for payment failure notice",
			"order_id", o.ID.String(), "error", err)
		return
	}

	event := shared.NewNotificationEvent(shared.NotificationPaymentFailed, acc.Email, map[string]string{
		"name": acc.Name,
	})
	if err := enqueueNotification(ctx, s.outboxRepo, event); err != nil {
		s.logger.Error("Failed to enqueue payment failure notice",
			"order_id", o.ID.String(), "error", err)
	}
}
