package handler

import (
	"errors"
	"io"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/api/middleware"
	"github.com/oneplanet-market/internal/api/service"
	"github.com/oneplanet-market/internal/domain/catalog"
	"github.com/oneplanet-market/internal/domain/order"
)

// webhookBodyLimit caps the payload size accepted on the payment callback
// endpoint. Provider events are small; anything larger is not a real event.
const webhookBodyLimit = 1 << 16

// OrderHandler handles HTTP requests for checkout and order operations
type OrderHandler struct {
	orderService service.OrderService
	logger       *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(logger *slog.Logger, orderService service.OrderService) *OrderHandler {
	return &OrderHandler{
		orderService: orderService,
		logger:       logger,
	}
}

// Place handles checkout for all payment types. COD and card orders complete
// synchronously; online orders return a hosted checkout URL instead.
func (h *OrderHandler) Place(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	items := make([]service.CheckoutItem, 0, len(req.Items))
	for _, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			RespondBadRequest(c, "Invalid product ID: "+item.ProductID)
			return
		}
		items = append(items, service.CheckoutItem{ProductID: productID, Quantity: item.Quantity})
	}

	address := order.Address{
		Street:  req.Address.Street,
		City:    req.Address.City,
		State:   req.Address.State,
		Zipcode: req.Address.Zipcode,
		Country: req.Address.Country,
	}

	switch order.PaymentType(req.PaymentType) {
	case order.PaymentTypeCOD:
		o, impact, err := h.orderService.PlaceCODOrder(c.Request.Context(), accountID, items, address)
		if err != nil {
			h.respondCheckoutError(c, err)
			return
		}
		RespondCreated(c, CheckoutResponse{Order: mapOrderToResponse(o), Impact: impact})

	case order.PaymentTypeOnline:
		if req.SuccessURL == "" || req.CancelURL == "" {
			RespondBadRequest(c, "Online checkout requires success_url and cancel_url")
			return
		}
		checkout, err := h.orderService.PlaceOnlineOrder(c.Request.Context(), accountID, items, address, req.SuccessURL, req.CancelURL)
		if err != nil {
			h.respondCheckoutError(c, err)
			return
		}
		RespondCreated(c, CheckoutResponse{Order: mapOrderToResponse(checkout.Order), SessionURL: checkout.SessionURL})

	case order.PaymentTypeSquare:
		if req.SourceID == "" {
			RespondBadRequest(c, "Card checkout requires source_id")
			return
		}
		o, impact, err := h.orderService.PlaceCardOrder(c.Request.Context(), accountID, items, address, req.SourceID)
		if err != nil {
			h.respondCheckoutError(c, err)
			return
		}
		RespondCreated(c, CheckoutResponse{Order: mapOrderToResponse(o), Impact: impact})

	default:
		RespondBadRequest(c, "Unsupported payment type")
	}
}

// ListMine returns the authenticated account's visible orders
func (h *OrderHandler) ListMine(c *gin.Context) {
	accountID, ok := middleware.GetAccountID(c)
	if !ok {
		RespondUnauthorized(c, "")
		return
	}

	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	orders, err := h.orderService.GetMyOrders(c.Request.Context(), accountID, pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list orders", "account_id", accountID.String(), "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, mapOrderToResponse(o))
	}
	RespondOK(c, responses)
}

// List returns all visible orders for admin views
func (h *OrderHandler) List(c *gin.Context) {
	var pagination PaginationParams
	if err := c.ShouldBindQuery(&pagination); err != nil {
		RespondBadRequest(c, "Invalid pagination parameters: "+err.Error())
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), pagination.Page, pagination.PerPage)
	if err != nil {
		h.logger.Error("Failed to list all orders", "error", err)
		RespondInternalError(c)
		return
	}

	responses := make([]OrderResponse, 0, len(orders))
	for _, o := range orders {
		responses = append(responses, mapOrderToResponse(o))
	}
	RespondOK(c, responses)
}

// PaymentWebhook receives payment provider callbacks. The raw body is needed
// for signature verification, so the payload is read before any parsing.
func (h *OrderHandler) PaymentWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, webhookBodyLimit))
	if err != nil {
		h.logger.Error("Failed to read webhook payload", "error", err)
		RespondBadRequest(c, "Unreadable payload")
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.orderService.HandlePaymentWebhook(c.Request.Context(), payload, signature); err != nil {
		h.logger.Error("Failed to process payment webhook", "error", err)
		RespondBadRequest(c, "Webhook rejected")
		return
	}

	RespondOK(c, gin.H{"received": true})
}

func (h *OrderHandler) respondCheckoutError(c *gin.Context, err error) {
	var productNotFound catalog.ErrProductNotFound
	switch {
	case errors.As(err, &productNotFound):
		RespondNotFound(c, "Product not found: "+productNotFound.ProductID.String())
	case errors.Is(err, service.ErrProductOutOfStock):
		RespondUnprocessable(c, "One or more products are out of stock")
	case errors.Is(err, order.ErrEmptyOrder):
		RespondBadRequest(c, "Order must contain at least one item")
	case errors.Is(err, order.ErrMissingAddress):
		RespondBadRequest(c, "Delivery address is incomplete")
	default:
		h.logger.Error("Failed to place order", "error", err)
		RespondInternalError(c)
	}
}
