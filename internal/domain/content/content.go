package content

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrEmptyBody       = errors.New("body cannot be empty")
	ErrInvalidDecision = errors.New("decision must be approved or rejected")
)

// ModerationStatus is the review state shared by blogs and producer applications
type ModerationStatus string

const (
	ModerationPending  ModerationStatus = "pending"
	ModerationApproved ModerationStatus = "approved"
	ModerationRejected ModerationStatus = "rejected"
)

// Blog is a community post subject to admin moderation
type Blog struct {
	ID        uuid.UUID        `json:"id" bson:"_id"`
	AuthorID  uuid.UUID        `json:"author_id" bson:"author_id"`
	Title     string           `json:"title" bson:"title"`
	Body      string           `json:"body" bson:"body"`
	CoverURL  string           `json:"cover_url,omitempty" bson:"cover_url,omitempty"`
	Status    ModerationStatus `json:"status" bson:"status"`
	Remark    string           `json:"remark,omitempty" bson:"remark,omitempty"`
	CreatedAt time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" bson:"updated_at"`
}

// NewBlog creates a pending blog post
func NewBlog(authorID uuid.UUID, title, body, coverURL string) (*Blog, error) {
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if body == "" {
		return nil, ErrEmptyBody
	}

	now := time.Now()
	return &Blog{
		ID:        uuid.New(),
		AuthorID:  authorID,
		Title:     title,
		Body:      body,
		CoverURL:  coverURL,
		Status:    ModerationPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Subscriber is a newsletter recipient, deduplicated by email
type Subscriber struct {
	ID           uuid.UUID `json:"id" bson:"_id"`
	Email        string    `json:"email" bson:"email"`
	SubscribedAt time.Time `json:"subscribed_at" bson:"subscribed_at"`
}

// ProducerApplication is a request to sell on the platform, decided by an admin
type ProducerApplication struct {
	ID          uuid.UUID        `json:"id" bson:"_id"`
	AccountID   uuid.UUID        `json:"account_id" bson:"account_id"`
	FarmName    string           `json:"farm_name" bson:"farm_name"`
	Description string           `json:"description" bson:"description"`
	Location    string           `json:"location" bson:"location"`
	Status      ModerationStatus `json:"status" bson:"status"`
	Reason      string           `json:"reason,omitempty" bson:"reason,omitempty"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	DecidedAt   *time.Time       `json:"decided_at,omitempty" bson:"decided_at,omitempty"`
}

// NewProducerApplication creates a pending application
func NewProducerApplication(accountID uuid.UUID, farmName, description, location string) (*ProducerApplication, error) {
	if farmName == "" {
		return nil, ErrEmptyTitle
	}

	return &ProducerApplication{
		ID:          uuid.New(),
		AccountID:   accountID,
		FarmName:    farmName,
		Description: description,
		Location:    location,
		Status:      ModerationPending,
		CreatedAt:   time.Now(),
	}, nil
}
