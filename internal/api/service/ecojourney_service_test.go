package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/oneplanet-market/internal/domain/ecojourney"
	"github.com/oneplanet-market/internal/domain/order"
)

type MockEcoJourneyRepository struct {
	mock.Mock
}

func (m *MockEcoJourneyRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*ecojourney.Journey, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ecojourney.Journey), args.Error(1)
}

func (m *MockEcoJourneyRepository) Create(ctx context.Context, journey *ecojourney.Journey) error {
	args := m.Called(ctx, journey)
	return args.Error(0)
}

func (m *MockEcoJourneyRepository) Replace(ctx context.Context, journey *ecojourney.Journey, expectedVersion int) error {
	args := m.Called(ctx, journey, expectedVersion)
	return args.Error(0)
}

func (m *MockEcoJourneyRepository) Leaderboard(ctx context.Context, metric ecojourney.LeaderboardMetric, limit int) ([]*ecojourney.Journey, error) {
	args := m.Called(ctx, metric, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ecojourney.Journey), args.Error(1)
}

func recordableOrder(accountID uuid.UUID) *order.Order {
	producerID := uuid.New()
	o, err := order.NewOrder(accountID, []order.Item{
		{ProductID: uuid.New(), ProducerID: &producerID, Name: "Organic Apples", UnitPrice: 500, Quantity: 2},
		{ProductID: uuid.New(), Name: "Wildflower Honey", UnitPrice: 798, Quantity: 1},
	}, order.Address{Street: "12 Orchard Lane", City: "Portland"}, order.PaymentTypeCOD)
	if err != nil {
		panic(err)
	}
	return o
}

func TestEcoJourneyService_GetJourney(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("ReturnsExistingJourney", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)

		existing := ecojourney.NewJourney(accountID)
		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(existing, nil).Once()

		journey, err := svc.GetJourney(ctx, accountID)

		require.NoError(t, err)
		assert.Equal(t, existing, journey)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("CreatesJourneyOnFirstAccess", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)

		mockRepo.On("GetByAccountID", mock.Anything, accountID).
			Return(nil, ecojourney.ErrJourneyNotFound{AccountID: accountID}).Once()
		mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(j *ecojourney.Journey) bool {
			return j.AccountID == accountID && j.Level == 1 && j.Version == 1
		})).Return(nil).Once()

		journey, err := svc.GetJourney(ctx, accountID)

		require.NoError(t, err)
		assert.Equal(t, accountID, journey.AccountID)
		assert.Len(t, journey.Achievements, 1, "new journeys carry the starter achievement")
		mockRepo.AssertExpectations(t)
	})

	t.Run("CreateError", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)

		mockRepo.On("GetByAccountID", mock.Anything, accountID).
			Return(nil, ecojourney.ErrJourneyNotFound{AccountID: accountID}).Once()
		mockRepo.On("Create", mock.Anything, mock.Anything).Return(errors.New("mongo down")).Once()

		_, err := svc.GetJourney(ctx, accountID)

		assert.Error(t, err)
	})

	t.Run("RepositoryError", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)

		mockRepo.On("GetByAccountID", mock.Anything, accountID).
			Return(nil, errors.New("mongo down")).Once()

		_, err := svc.GetJourney(ctx, accountID)

		assert.Error(t, err)
		mockRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestEcoJourneyService_RecordCompletedOrder(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	t.Run("AppliesOrderAndReplaces", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)
		o := recordableOrder(accountID)

		journey := ecojourney.NewJourney(accountID)
		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil).Once()
		mockRepo.On("Replace", mock.Anything, journey, 1).Return(nil).Once()

		impact, err := svc.RecordCompletedOrder(ctx, o)

		require.NoError(t, err)
		// 3 items at 10 XP each plus amount/10
		assert.Equal(t, int64(3*10+o.Amount/10), impact.ExperienceGained)
		assert.Equal(t, 2, journey.Version, "replace carries the bumped version")
		assert.Equal(t, 1, journey.TotalOrders)
		mockRepo.AssertExpectations(t)
	})

	t.Run("RetriesOnVersionConflict", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)
		o := recordableOrder(accountID)

		stale := ecojourney.NewJourney(accountID)
		fresh := ecojourney.NewJourney(accountID)
		fresh.Version = 2

		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(stale, nil).Once()
		mockRepo.On("Replace", mock.Anything, stale, 1).
			Return(ecojourney.ErrVersionConflict{AccountID: accountID}).Once()
		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(fresh, nil).Once()
		mockRepo.On("Replace", mock.Anything, fresh, 2).Return(nil).Once()

		impact, err := svc.RecordCompletedOrder(ctx, o)

		require.NoError(t, err)
		assert.NotNil(t, impact)
		assert.Equal(t, 1, fresh.TotalOrders, "the retry applies the order to the fresh document")
		mockRepo.AssertExpectations(t)
	})

	t.Run("GivesUpAfterRepeatedConflicts", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)
		o := recordableOrder(accountID)

		journey := ecojourney.NewJourney(accountID)
		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil)
		mockRepo.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(ecojourney.ErrVersionConflict{AccountID: accountID})

		_, err := svc.RecordCompletedOrder(ctx, o)

		assert.Error(t, err)
		var conflict ecojourney.ErrVersionConflict
		assert.ErrorAs(t, err, &conflict)
		mockRepo.AssertNumberOfCalls(t, "Replace", 5)
	})

	t.Run("NonConflictErrorStopsRetrying", func(t *testing.T) {
		mockRepo := &MockEcoJourneyRepository{}
		svc := NewEcoJourneyService(slog.Default(), mockRepo)
		o := recordableOrder(accountID)

		journey := ecojourney.NewJourney(accountID)
		mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil).Once()
		mockRepo.On("Replace", mock.Anything, mock.Anything, mock.Anything).
			Return(errors.New("mongo down")).Once()

		_, err := svc.RecordCompletedOrder(ctx, o)

		assert.Error(t, err)
		mockRepo.AssertNumberOfCalls(t, "Replace", 1)
	})
}

func TestEcoJourneyService_UpdateGoals(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	mockRepo := &MockEcoJourneyRepository{}
	svc := NewEcoJourneyService(slog.Default(), mockRepo)

	journey := ecojourney.NewJourney(accountID)
	mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil).Once()
	mockRepo.On("Replace", mock.Anything, journey, 1).Return(nil).Once()

	spending := int64(25000)
	updated, err := svc.UpdateGoals(ctx, accountID, &spending, nil, nil)

	require.NoError(t, err)
	assert.Equal(t, int64(25000), updated.Goals.MonthlySpending)
	mockRepo.AssertExpectations(t)
}

func TestEcoJourneyService_UpdatePreferences(t *testing.T) {
	ctx := context.Background()
	accountID := uuid.New()

	mockRepo := &MockEcoJourneyRepository{}
	svc := NewEcoJourneyService(slog.Default(), mockRepo)

	journey := ecojourney.NewJourney(accountID)
	mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil).Once()
	mockRepo.On("Replace", mock.Anything, journey, 1).Return(nil).Once()

	prefs := ecojourney.Preferences{Categories: []string{"produce"}, Notifications: true, PublicProfile: true}
	updated, err := svc.UpdatePreferences(ctx, accountID, prefs)

	require.NoError(t, err)
	assert.Equal(t, prefs, updated.Preferences)
	assert.Equal(t, 2, updated.Version)
	mockRepo.AssertExpectations(t)
}

func TestEcoJourneyService_Leaderboard(t *testing.T) {
	mockRepo := &MockEcoJourneyRepository{}
	svc := NewEcoJourneyService(slog.Default(), mockRepo)

	expected := []*ecojourney.Journey{ecojourney.NewJourney(uuid.New())}
	mockRepo.On("Leaderboard", mock.Anything, ecojourney.LeaderboardCarbon, 10).Return(expected, nil).Once()

	journeys, err := svc.Leaderboard(context.Background(), ecojourney.LeaderboardCarbon, 10)

	require.NoError(t, err)
	assert.Equal(t, expected, journeys)
	mockRepo.AssertExpectations(t)
}

func TestEcoJourneyService_AchievementProgress(t *testing.T) {
	accountID := uuid.New()
	mockRepo := &MockEcoJourneyRepository{}
	svc := NewEcoJourneyService(slog.Default(), mockRepo)

	journey := ecojourney.NewJourney(accountID)
	mockRepo.On("GetByAccountID", mock.Anything, accountID).Return(journey, nil).Once()

	progress, err := svc.AchievementProgress(context.Background(), accountID)

	require.NoError(t, err)
	assert.Len(t, progress, len(ecojourney.Definitions))
}
