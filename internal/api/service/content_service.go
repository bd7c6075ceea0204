package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/oneplanet-market/internal/domain/account"
	"github.com/oneplanet-market/internal/domain/content"
	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
)

// ContentServiceImpl implements the ContentService interface
type ContentServiceImpl struct {
	blogRepo        content.BlogRepository
	subscriberRepo  content.SubscriberRepository
	applicationRepo content.ApplicationRepository
	accountRepo     account.Repository
	outboxRepo      outbox.Repository
	db              TxRunner
	logger          *slog.Logger
}

// NewContentService creates a new content service
func NewContentService(
	logger *slog.Logger,
	db TxRunner,
	blogRepo content.BlogRepository,
	subscriberRepo content.SubscriberRepository,
	applicationRepo content.ApplicationRepository,
	accountRepo account.Repository,
	outboxRepo outbox.Repository,
) ContentService {
	return &ContentServiceImpl{
		blogRepo:        blogRepo,
		subscriberRepo:  subscriberRepo,
		applicationRepo: applicationRepo,
		accountRepo:     accountRepo,
		outboxRepo:      outboxRepo,
		db:              db,
		logger:          logger,
	}
}

// CreateBlog submits a blog post for moderation
func (s *ContentServiceImpl) CreateBlog(ctx context.Context, authorID uuid.UUID, title, body, coverURL string) (*content.Blog, error) {
	blog, err := content.NewBlog(authorID, title, body, coverURL)
	if err != nil {
		return nil, err
	}

	if err := s.blogRepo.Create(ctx, blog); err != nil {
		return nil, err
	}

	s.logger.Info("Blog submitted", "blog_id", blog.ID.String(), "author_id", authorID.String())
	return blog, nil
}

// GetBlog retrieves a blog post
func (s *ContentServiceImpl) GetBlog(ctx context.Context, id uuid.UUID) (*content.Blog, error) {
	return s.blogRepo.GetByID(ctx, id)
}

// ListBlogs returns blog posts in the given moderation state
func (s *ContentServiceImpl) ListBlogs(ctx context.Context, status content.ModerationStatus, page, perPage int) ([]*content.Blog, error) {
	offset := (page - 1) * perPage
	return s.blogRepo.ListByStatus(ctx, status, perPage, offset)
}

// ModerateBlog records an admin decision on a blog post
func (s *ContentServiceImpl) ModerateBlog(ctx context.Context, id uuid.UUID, approve bool, remark string) error {
	blog, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if blog.Status != content.ModerationPending {
		return ErrDecisionNotPending
	}

	status := content.ModerationRejected
	if approve {
		status = content.ModerationApproved
	}

	if err := s.blogRepo.UpdateStatus(ctx, id, status, remark); err != nil {
		return err
	}

	s.logger.Info("Blog moderated", "blog_id", id.String(), "status", string(status))
	return nil
}

// Subscribe adds a newsletter subscription and enqueues the confirmation
// email. Duplicate emails surface as ErrAlreadySubscribed.
func (s *ContentServiceImpl) Subscribe(ctx context.Context, email string) error {
	subscriber := &content.Subscriber{
		ID:           uuid.New(),
		Email:        email,
		SubscribedAt: time.Now(),
	}
	if err := s.subscriberRepo.Subscribe(ctx, subscriber); err != nil {
		return err
	}

	event := shared.NewNotificationEvent(shared.NotificationNewsletterConfirm, email, nil)
	if err := enqueueNotification(ctx, s.outboxRepo, event); err != nil {
		s.logger.Error("Failed to enqueue newsletter confirmation", "error", err)
	}
	return nil
}

// Unsubscribe removes a newsletter subscription
func (s *ContentServiceImpl) Unsubscribe(ctx context.Context, email string) error {
	return s.subscriberRepo.Unsubscribe(ctx, email)
}

// ApplyAsProducer submits an application to sell on the platform. An account
// can hold at most one pending application at a time.
func (s *ContentServiceImpl) ApplyAsProducer(ctx context.Context, accountID uuid.UUID, farmName, description, location string) (*content.ProducerApplication, error) {
	pending, err := s.applicationRepo.GetPendingByAccountID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, ErrAlreadyApplied
	}

	application, err := content.NewProducerApplication(accountID, farmName, description, location)
	if err != nil {
		return nil, err
	}

	if err := s.applicationRepo.Create(ctx, application); err != nil {
		return nil, err
	}

	s.notifyApplicant(ctx, accountID, shared.NotificationApplicationReceived, map[string]string{
		"farm_name": farmName,
	})

	s.logger.Info("Producer application submitted",
		"application_id", application.ID.String(),
		"account_id", accountID.String(),
	)
	return application, nil
}

// ListApplications returns applications in the given state for admin review
func (s *ContentServiceImpl) ListApplications(ctx context.Context, status content.ModerationStatus, page, perPage int) ([]*content.ProducerApplication, error) {
	offset := (page - 1) * perPage
	return s.applicationRepo.ListByStatus(ctx, status, perPage, offset)
}

// DecideApplication resolves a pending application. Approval promotes the
// applicant to the producer role; the application record is settled first so
// a replayed decision cannot promote twice.
func (s *ContentServiceImpl) DecideApplication(ctx context.Context, applicationID uuid.UUID, approve bool, reason string) (*content.ProducerApplication, error) {
	application, err := s.applicationRepo.GetByID(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if application.Status != content.ModerationPending {
		return nil, ErrDecisionNotPending
	}

	now := time.Now()
	application.Status = content.ModerationRejected
	if approve {
		application.Status = content.ModerationApproved
	}
	application.Reason = reason
	application.DecidedAt = &now

	if err := s.applicationRepo.Update(ctx, application); err != nil {
		return nil, err
	}

	if approve {
		if err := s.promoteToProducer(ctx, application); err != nil {
			return nil, err
		}
	} else {
		s.notifyApplicant(ctx, application.AccountID, shared.NotificationApplicationRejected, map[string]string{
			"farm_name": application.FarmName,
			"reason":    reason,
		})
	}

	s.logger.Info("Producer application decided",
		"application_id", application.ID.String(),
		"status", string(application.Status),
	)
	return application, nil
}

// promoteToProducer flips the applicant's account to an approved producer and
// enqueues the approval email in the same transaction
func (s *ContentServiceImpl) promoteToProducer(ctx context.Context, application *content.ProducerApplication) error {
	return s.db.ExecuteTx(ctx, func(tx pgx.Tx) error {
		txAccountRepo := s.accountRepo.WithTx(tx)

		acc, err := txAccountRepo.LockForUpdate(ctx, application.AccountID)
		if err != nil {
			return err
		}

		acc.Role = account.RoleProducer
		acc.Status = account.StatusApproved
		acc.Version++
		acc.UpdatedAt = time.Now()

		if err := txAccountRepo.Update(ctx, acc); err != nil {
			return err
		}

		event := shared.NewNotificationEvent(shared.NotificationApplicationApproved, acc.Email, map[string]string{
			"name":      acc.Name,
			"farm_name": application.FarmName,
		})
		return enqueueNotification(ctx, s.outboxRepo.WithTx(tx), event)
	})
}

// notifyApplicant looks up the account email and enqueues a lifecycle email.
// Best effort: a notification failure never fails the application flow.
func (s *ContentServiceImpl) notifyApplicant(ctx context.Context, accountID uuid.UUID, kind shared.NotificationKind, data map[string]string) {
	acc, err := s.accountRepo.GetByID(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to load account for application notice",
			"account_id", accountID.String(), "error", err)
		return
	}

	if data == nil {
		data = map[string]string{}
	}
	data["name"] = acc.Name

	event := shared.NewNotificationEvent(kind, acc.Email, data)
	if err := enqueueNotification(ctx, s.outboxRepo, event); err != nil {
		s.logger.Error("Failed to enqueue application notice",
			"account_id", accountID.String(), "error", err)
	}
}
