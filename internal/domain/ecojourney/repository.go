package ecojourney

import (
	"context"

	"github.com/google/uuid"
)

// LeaderboardMetric selects the ranking field for the public leaderboard
type LeaderboardMetric string

const (
	LeaderboardLevel    LeaderboardMetric = "level"
	LeaderboardCarbon   LeaderboardMetric = "carbon"
	LeaderboardSpending LeaderboardMetric = "spending"
	LeaderboardOrders   LeaderboardMetric = "orders"
)

// Repository manages journey document persistence. Replace is conditional on
// the stored version so concurrent order recordings never lose updates;
// callers retry on ErrVersionConflict.
type Repository interface {
	GetByAccountID(ctx context.Context, accountID uuid.UUID) (*Journey, error)
	Create(ctx context.Context, journey *Journey) error

	// Replace swaps the whole document if the stored version still equals
	// expectedVersion
	Replace(ctx context.Context, journey *Journey, expectedVersion int) error

	// Leaderboard returns public-profile journeys sorted descending by the
	// metric, ties broken by ascending account ID
	Leaderboard(ctx context.Context, metric LeaderboardMetric, limit int) ([]*Journey, error)
}

// ErrJourneyNotFound indicates no journey exists for the account yet
type ErrJourneyNotFound struct {
	AccountID uuid.UUID
}

func (e ErrJourneyNotFound) Error() string {
	return "eco journey not found for account: " + e.AccountID.String()
}

// ErrVersionConflict indicates the document changed between read and replace
type ErrVersionConflict struct {
	AccountID uuid.UUID
}

func (e ErrVersionConflict) Error() string {
	return "eco journey version conflict for account: " + e.AccountID.String()
}
