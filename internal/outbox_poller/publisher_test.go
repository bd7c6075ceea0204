package outbox_poller

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/oneplanet-market/internal/domain/outbox"
	"github.com/oneplanet-market/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockOutboxRepo for testing
type MockOutboxRepo struct {
	mock.Mock
}

func (m *MockOutboxRepo) Create(ctx context.Context, message *outbox.Message) error {
	args := m.Called(ctx, message)
	return args.Error(0)
}

func (m *MockOutboxRepo) GetPending(ctx context.Context, limit int) ([]*outbox.Message, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*outbox.Message), args.Error(1)
}

func (m *MockOutboxRepo) UpdateStatus(ctx context.Context, id int64, status shared.OutboxStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockOutboxRepo) IncrementAttempts(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOutboxRepo) WithTx(tx pgx.Tx) outbox.Repository {
	args := m.Called(tx)
	return args.Get(0).(outbox.Repository)
}

// MockMessagePublisher for testing
type MockMessagePublisher struct {
	mock.Mock
}

func (m *MockMessagePublisher) Publish(ctx context.Context, key string, value interface{}) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockMessagePublisher) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestNotificationPublisher_PublishNotification(t *testing.T) {
	mockOutboxRepo := &MockOutboxRepo{}
	mockProducer := &MockMessagePublisher{}
	logger := slog.Default()

	publisher := NewNotificationPublisher(mockOutboxRepo, mockProducer, logger)

	event := shared.NewNotificationEvent(shared.NotificationOrderConfirmation, "jane@example.com", map[string]string{
		"Name":    "Jane",
		"OrderID": "ord-123",
	})
	event.CorrelationID = "corr1"

	eventJSON, err := json.Marshal(event)
	assert.NoError(t, err)

	message := &outbox.Message{
		ID:        1,
		EventID:   event.EventID,
		Recipient: event.Recipient,
		Status:    shared.OutboxStatusPending,
		Payload:   eventJSON,
		Attempts:  0,
		CreatedAt: time.Now(),
	}

	matchesEvent := func(value interface{}) bool {
		e, ok := value.(*shared.NotificationEvent)
		return ok && e.EventID == event.EventID && e.Kind == shared.NotificationOrderConfirmation
	}

	tests := []struct {
		name          string
		message       *outbox.Message
		setupMocks    func()
		expectedError error
	}{
		{
			name:    "successful publish keyed by recipient",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, "jane@example.com", mock.MatchedBy(matchesEvent)).Return(nil).Once()

				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(nil).Once()
			},
			expectedError: nil,
		},
		{
			name: "error unmarshalling payload parks the message",
			message: &outbox.Message{
				ID:        1,
				EventID:   event.EventID,
				Recipient: event.Recipient,
				Status:    shared.OutboxStatusPending,
				Payload:   []byte("invalid json"),
				Attempts:  0,
				CreatedAt: time.Now(),
			},
			setupMocks: func() {
				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusFailedToPublish).Return(nil).Once()
			},
			expectedError: errors.New("unmarshal payload"),
		},
		{
			name:    "error publishing to kafka",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, "jane@example.com", mock.MatchedBy(matchesEvent)).Return(errors.New("broker down")).Once()
			},
			expectedError: errors.New("failed to publish notification event"),
		},
		{
			name:    "error updating outbox status after publish",
			message: message,
			setupMocks: func() {
				mockProducer.On("Publish", mock.Anything, "jane@example.com", mock.MatchedBy(matchesEvent)).Return(nil).Once()

				mockOutboxRepo.On("UpdateStatus", mock.Anything, int64(1), shared.OutboxStatusProcessed).Return(errors.New("db error")).Once()
			},
			expectedError: errors.New("failed to mark outbox"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockOutboxRepo = &MockOutboxRepo{}
			mockProducer = &MockMessagePublisher{}
			publisher = NewNotificationPublisher(mockOutboxRepo, mockProducer, logger)

			tt.setupMocks()
			ctx := context.Background()

			err := publisher.PublishNotification(ctx, tt.message)

			if tt.expectedError != nil {
				assert.Error(t, err)
				assert.Contains(t, err.Error(), tt.expectedError.Error())
			} else {
				assert.NoError(t, err)
			}

			mockOutboxRepo.AssertExpectations(t)
			mockProducer.AssertExpectations(t)
		})
	}
}
