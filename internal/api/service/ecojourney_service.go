package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/domain/ecojourney"
	"github.com/oneplanet-market/internal/domain/order"
)

// replaceRetries bounds the optimistic retry loop when concurrent orders
// update the same journey
const replaceRetries = 5

// EcoJourneyServiceImpl implements the EcoJourneyService interface. Journeys
// are created lazily on first access and updated with compare-and-swap
// replaces so concurrent recordings never lose progress.
type EcoJourneyServiceImpl struct {
	journeyRepo ecojourney.Repository
	logger      *slog.Logger
}

// NewEcoJourneyService creates a new eco journey service
func NewEcoJourneyService(logger *slog.Logger, journeyRepo ecojourney.Repository) EcoJourneyService {
	return &EcoJourneyServiceImpl{
		journeyRepo: journeyRepo,
		logger:      logger,
	}
}

// GetJourney returns the account's journey, creating it with the starter
// achievement on first access
func (s *EcoJourneyServiceImpl) GetJourney(ctx context.Context, accountID uuid.UUID) (*ecojourney.Journey, error) {
	journey, err := s.journeyRepo.GetByAccountID(ctx, accountID)
	if err == nil {
		return journey, nil
	}

	var notFound ecojourney.ErrJourneyNotFound
	if !errors.As(err, &notFound) {
		return nil, err
	}

	journey = ecojourney.NewJourney(accountID)
	if err := s.journeyRepo.Create(ctx, journey); err != nil {
		return nil, err
	}

	s.logger.Info("Eco journey created", "account_id", accountID.String())
	return journey, nil
}

// RecordCompletedOrder applies one completed order to the journey. On a
// version conflict the whole read-apply-replace cycle is retried against the
// fresh document, so two concurrent orders both land.
func (s *EcoJourneyServiceImpl) RecordCompletedOrder(ctx context.Context, o *order.Order) (*ecojourney.OrderImpact, error) {
	var lastErr error

	for attempt := 0; attempt < replaceRetries; attempt++ {
		journey, err := s.GetJourney(ctx, o.AccountID)
		if err != nil {
			return nil, err
		}

		expectedVersion := journey.Version
		impact := journey.RecordOrder(o, time.Now())

		err = s.journeyRepo.Replace(ctx, journey, expectedVersion)
		if err == nil {
			s.logger.Info("Order recorded on eco journey",
				"account_id", o.AccountID.String(),
				"order_id", o.ID.String(),
				"experience_gained", impact.ExperienceGained,
				"new_achievements", len(impact.NewAchievements),
			)
			return &impact, nil
		}

		var conflict ecojourney.ErrVersionConflict
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}

// UpdateGoals merges the non-nil goal fields with optimistic retry
func (s *EcoJourneyServiceImpl) UpdateGoals(ctx context.Context, accountID uuid.UUID, monthlySpending *int64, carbonReduction *float64, localSupport *int) (*ecojourney.Journey, error) {
	return s.mutate(ctx, accountID, func(j *ecojourney.Journey) {
		j.MergeGoals(monthlySpending, carbonReduction, localSupport)
	})
}

// UpdatePreferences replaces the journey preferences with optimistic retry
func (s *EcoJourneyServiceImpl) UpdatePreferences(ctx context.Context, accountID uuid.UUID, prefs ecojourney.Preferences) (*ecojourney.Journey, error) {
	return s.mutate(ctx, accountID, func(j *ecojourney.Journey) {
		j.Preferences = prefs
		j.Version++
		j.UpdatedAt = time.Now()
	})
}

// Leaderboard returns public journeys ranked by the metric
func (s *EcoJourneyServiceImpl) Leaderboard(ctx context.Context, metric ecojourney.LeaderboardMetric, limit int) ([]*ecojourney.Journey, error) {
	return s.journeyRepo.Leaderboard(ctx, metric, limit)
}

// AchievementProgress reports percentage progress toward every achievement
func (s *EcoJourneyServiceImpl) AchievementProgress(ctx context.Context, accountID uuid.UUID) ([]ecojourney.Progress, error) {
	journey, err := s.GetJourney(ctx, accountID)
	if err != nil {
		return nil, err
	}
	return journey.AchievementProgress(), nil
}

// mutate runs the read-apply-replace cycle for small journey edits
func (s *EcoJourneyServiceImpl) mutate(ctx context.Context, accountID uuid.UUID, apply func(*ecojourney.Journey)) (*ecojourney.Journey, error) {
	var lastErr error

	for attempt := 0; attempt < replaceRetries; attempt++ {
		journey, err := s.GetJourney(ctx, accountID)
		if err != nil {
			return nil, err
		}

		expectedVersion := journey.Version
		apply(journey)

		err = s.journeyRepo.Replace(ctx, journey, expectedVersion)
		if err == nil {
			return journey, nil
		}

		var conflict ecojourney.ErrVersionConflict
		if !errors.As(err, &conflict) {
			return nil, err
		}
		lastErr = err
	}

	return nil, lastErr
}
