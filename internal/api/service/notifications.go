package service

import (
	"context"

	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
)

// enqueueNotification stores a notification event in the outbox. Pass a
// tx-bound repository to make the write atomic with the state change that
// produced the event; the poller handles everything after commit.
func enqueueNotification(ctx context.Context, repo outbox.Repository, event *shared.NotificationEvent) error {
	message, err := outbox.NewMessage(event)
	if err != nil {
		return err
	}
	return repo.Create(ctx, message)
}
