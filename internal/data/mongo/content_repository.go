package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oneplanet-market/internal/domain/content"
)

const (
	// BlogCollectionName is the name of the blog collection in MongoDB
	BlogCollectionName = "blogs"
	// SubscriberCollectionName is the name of the newsletter collection in MongoDB
	SubscriberCollectionName = "subscribers"
	// ApplicationCollectionName is the name of the producer application collection in MongoDB
	ApplicationCollectionName = "producer_applications"
)

// BlogRepository implements the content.BlogRepository interface for MongoDB
type BlogRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewBlogRepository creates a new MongoDB blog repository
func NewBlogRepository(logger *slog.Logger, db *mongo.Database) content.BlogRepository {
	return &BlogRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new blog post
func (r *BlogRepository) Create(ctx context.Context, blog *content.Blog) error {
	collection := r.db.Collection(BlogCollectionName)

	_, err := collection.InsertOne(ctx, blog)
	if err != nil {
		r.logger.Error("Failed to create blog",
			"author_id", blog.AuthorID.String(),
			"error", err)
		return fmt.Errorf("failed to create blog: %w", err)
	}

	return nil
}

// GetByID retrieves a blog post by its ID
func (r *BlogRepository) GetByID(ctx context.Context, id uuid.UUID) (*content.Blog, error) {
	collection := r.db.Collection(BlogCollectionName)

	var blog content.Blog
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&blog)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrBlogNotFound{BlogID: id}
		}
		r.logger.Error("Failed to get blog", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get blog: %w", err)
	}

	return &blog, nil
}

// ListByStatus retrieves paginated blog posts in the given moderation state,
// newest first
func (r *BlogRepository) ListByStatus(ctx context.Context, status content.ModerationStatus, limit, offset int) ([]*content.Blog, error) {
	collection := r.db.Collection(BlogCollectionName)

	filter := bson.M{"status": status}
	opts := options.Find().
		SetSort(bson.M{"created_at": -1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list blogs", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to list blogs: %w", err)
	}
	defer cursor.Close(ctx)

	var blogs []*content.Blog
	if err := cursor.All(ctx, &blogs); err != nil {
		r.logger.Error("Failed to decode blogs", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to decode blogs: %w", err)
	}

	return blogs, nil
}

// UpdateStatus records a moderation decision on a blog post
func (r *BlogRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status content.ModerationStatus, remark string) error {
	collection := r.db.Collection(BlogCollectionName)

	update := bson.M{
		"$set": bson.M{
			"status":     status,
			"remark":     remark,
			"updated_at": time.Now(),
		},
	}

	result, err := collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		r.logger.Error("Failed to update blog status",
			"id", id.String(),
			"status", string(status),
			"error", err)
		return fmt.Errorf("failed to update blog status: %w", err)
	}

	if result.MatchedCount == 0 {
		return content.ErrBlogNotFound{BlogID: id}
	}

	return nil
}

// SubscriberRepository implements the content.SubscriberRepository interface for MongoDB
type SubscriberRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewSubscriberRepository creates a new MongoDB subscriber repository
func NewSubscriberRepository(logger *slog.Logger, db *mongo.Database) content.SubscriberRepository {
	return &SubscriberRepository{
		db:     db,
		logger: logger,
	}
}

// Subscribe stores a newsletter subscription after checking for duplicates.
// Returns ErrAlreadySubscribed if the email already receives the newsletter.
func (r *SubscriberRepository) Subscribe(ctx context.Context, subscriber *content.Subscriber) error {
	collection := r.db.Collection(SubscriberCollectionName)

	existing, err := r.GetByEmail(ctx, subscriber.Email)
	if err != nil {
		var notFound content.ErrSubscriberNotFound
		if !errors.As(err, &notFound) {
			return err
		}
	}
	if existing != nil {
		return content.ErrAlreadySubscribed{Email: subscriber.Email}
	}

	_, err = collection.InsertOne(ctx, subscriber)
	if err != nil {
		r.logger.Error("Failed to create subscriber", "email", subscriber.Email, "error", err)
		return fmt.Errorf("failed to create subscriber: %w", err)
	}

	return nil
}

// Unsubscribe removes a newsletter subscription.
// Returns ErrSubscriberNotFound if the email is not subscribed.
func (r *SubscriberRepository) Unsubscribe(ctx context.Context, email string) error {
	collection := r.db.Collection(SubscriberCollectionName)

	result, err := collection.DeleteOne(ctx, bson.M{"email": email})
	if err != nil {
		r.logger.Error("Failed to delete subscriber", "email", email, "error", err)
		return fmt.Errorf("failed to delete subscriber: %w", err)
	}

	if result.DeletedCount == 0 {
		return content.ErrSubscriberNotFound{Email: email}
	}

	return nil
}

// GetByEmail retrieves a subscriber by email
func (r *SubscriberRepository) GetByEmail(ctx context.Context, email string) (*content.Subscriber, error) {
	collection := r.db.Collection(SubscriberCollectionName)

	var subscriber content.Subscriber
	err := collection.FindOne(ctx, bson.M{"email": email}).Decode(&subscriber)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrSubscriberNotFound{Email: email}
		}
		r.logger.Error("Failed to get subscriber", "email", email, "error", err)
		return nil, fmt.Errorf("failed to get subscriber: %w", err)
	}

	return &subscriber, nil
}

// ApplicationRepository implements the content.ApplicationRepository interface for MongoDB
type ApplicationRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewApplicationRepository creates a new MongoDB producer application repository
func NewApplicationRepository(logger *slog.Logger, db *mongo.Database) content.ApplicationRepository {
	return &ApplicationRepository{
		db:     db,
		logger: logger,
	}
}

// Create stores a new producer application
func (r *ApplicationRepository) Create(ctx context.Context, application *content.ProducerApplication) error {
	collection := r.db.Collection(ApplicationCollectionName)

	_, err := collection.InsertOne(ctx, application)
	if err != nil {
		r.logger.Error("Failed to create producer application",
			"account_id", application.AccountID.String(),
			"error", err)
		return fmt.Errorf("failed to create producer application: %w", err)
	}

	return nil
}

// GetByID retrieves a producer application by its ID
func (r *ApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*content.ProducerApplication, error) {
	collection := r.db.Collection(ApplicationCollectionName)

	var application content.ProducerApplication
	err := collection.FindOne(ctx, bson.M{"_id": id}).Decode(&application)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, content.ErrApplicationNotFound{ApplicationID: id}
		}
		r.logger.Error("Failed to get producer application", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get producer application: %w", err)
	}

	return &application, nil
}

// GetPendingByAccountID retrieves the account's open application, if any.
// Returns nil, nil when the account has no pending application so callers can
// branch on existence.
func (r *ApplicationRepository) GetPendingByAccountID(ctx context.Context, accountID uuid.UUID) (*content.ProducerApplication, error) {
	collection := r.db.Collection(ApplicationCollectionName)

	filter := bson.M{
		"account_id": accountID,
		"status":     content.ModerationPending,
	}
	var application content.ProducerApplication
	err := collection.FindOne(ctx, filter).Decode(&application)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		r.logger.Error("Failed to get pending producer application",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get pending producer application: %w", err)
	}

	return &application, nil
}

// ListByStatus retrieves paginated applications in the given state, oldest
// first so admins review them in arrival order
func (r *ApplicationRepository) ListByStatus(ctx context.Context, status content.ModerationStatus, limit, offset int) ([]*content.ProducerApplication, error) {
	collection := r.db.Collection(ApplicationCollectionName)

	filter := bson.M{"status": status}
	opts := options.Find().
		SetSort(bson.M{"created_at": 1}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to list producer applications", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to list producer applications: %w", err)
	}
	defer cursor.Close(ctx)

	var applications []*content.ProducerApplication
	if err := cursor.All(ctx, &applications); err != nil {
		r.logger.Error("Failed to decode producer applications", "status", string(status), "error", err)
		return nil, fmt.Errorf("failed to decode producer applications: %w", err)
	}

	return applications, nil
}

// Update persists the decision on a producer application
func (r *ApplicationRepository) Update(ctx context.Context, application *content.ProducerApplication) error {
	collection := r.db.Collection(ApplicationCollectionName)

	result, err := collection.ReplaceOne(ctx, bson.M{"_id": application.ID}, application)
	if err != nil {
		r.logger.Error("Failed to update producer application",
			"id", application.ID.String(),
			"error", err)
		return fmt.Errorf("failed to update producer application: %w", err)
	}

	if result.MatchedCount == 0 {
		return content.ErrApplicationNotFound{ApplicationID: application.ID}
	}

	return nil
}
