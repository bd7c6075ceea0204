package service

import (
	"context"

	"github.com/oneplanet-market/internal/domain/shared"
)

// DeliveryService defines the interface for delivering notification events
type DeliveryService interface {
	DeliverNotification(ctx context.Context, event *shared.NotificationEvent) error
}
