package content

import (
	"context"

	"github.com/google/uuid"
)

// BlogRepository manages blog post persistence
type BlogRepository interface {
	Create(ctx context.Context, blog *Blog) error
	GetByID(ctx context.Context, id uuid.UUID) (*Blog, error)
	ListByStatus(ctx context.Context, status ModerationStatus, limit, offset int) ([]*Blog, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status ModerationStatus, remark string) error
}

// SubscriberRepository manages newsletter subscriptions
type SubscriberRepository interface {
	Subscribe(ctx context.Context, subscriber *Subscriber) error
	Unsubscribe(ctx context.Context, email string) error
	GetByEmail(ctx context.Context, email string) (*Subscriber, error)
}

// ApplicationRepository manages producer applications
type ApplicationRepository interface {
	Create(ctx context.Context, application *ProducerApplication) error
	GetByID(ctx context.Context, id uuid.UUID) (*ProducerApplication, error)
	GetPendingByAccountID(ctx context.Context, accountID uuid.UUID) (*ProducerApplication, error)
	ListByStatus(ctx context.Context, status ModerationStatus, limit, offset int) ([]*ProducerApplication, error)
	Update(ctx context.Context, application *ProducerApplication) error
}

// ErrBlogNotFound indicates missing blog post
type ErrBlogNotFound struct {
	BlogID uuid.UUID
}

func (e ErrBlogNotFound) Error() string {
	return "blog not found: " + e.BlogID.String()
}

// ErrApplicationNotFound indicates missing producer application
type ErrApplicationNotFound struct {
	ApplicationID uuid.UUID
}

func (e ErrApplicationNotFound) Error() string {
	return "producer application not found: " + e.ApplicationID.String()
}

// ErrAlreadySubscribed indicates the email already receives the newsletter
type ErrAlreadySubscribed struct {
	Email string
}

func (e ErrAlreadySubscribed) Error() string {
	return "email already subscribed: " + e.Email
}

// ErrSubscriberNotFound indicates the email is not subscribed
type ErrSubscriberNotFound struct {
	Email string
}

func (e ErrSubscriberNotFound) Error() string {
	return "subscriber not found: " + e.Email
}
