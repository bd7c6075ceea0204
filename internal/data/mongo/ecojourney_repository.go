// Package mongo provides MongoDB implementations of the document-oriented
// repositories: eco journeys and community content. Each journey is one
// document so progression updates from a single order commit atomically.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oneplanet-market/internal/domain/ecojourney"
)

const (
	// JourneyCollectionName is the name of the eco journey collection in MongoDB
	JourneyCollectionName = "eco_journeys"
)

// EcoJourneyRepository implements the ecojourney.Repository interface for MongoDB
type EcoJourneyRepository struct {
	db     *mongo.Database
	logger *slog.Logger
}

// NewEcoJourneyRepository creates a new MongoDB eco journey repository
func NewEcoJourneyRepository(logger *slog.Logger, db *mongo.Database) ecojourney.Repository {
	return &EcoJourneyRepository{
		db:     db,
		logger: logger,
	}
}

// GetByAccountID retrieves the account's journey document.
// Returns ErrJourneyNotFound if the account has no journey yet.
func (r *EcoJourneyRepository) GetByAccountID(ctx context.Context, accountID uuid.UUID) (*ecojourney.Journey, error) {
	collection := r.db.Collection(JourneyCollectionName)

	filter := bson.M{"account_id": accountID}
	var journey ecojourney.Journey
	err := collection.FindOne(ctx, filter).Decode(&journey)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ecojourney.ErrJourneyNotFound{AccountID: accountID}
		}
		r.logger.Error("Failed to get eco journey",
			"account_id", accountID.String(),
			"error", err)
		return nil, fmt.Errorf("failed to get eco journey: %w", err)
	}

	return &journey, nil
}

// Create stores a new journey document for an account
func (r *EcoJourneyRepository) Create(ctx context.Context, journey *ecojourney.Journey) error {
	collection := r.db.Collection(JourneyCollectionName)

	_, err := collection.InsertOne(ctx, journey)
	if err != nil {
		r.logger.Error("Failed to create eco journey",
			"account_id", journey.AccountID.String(),
			"error", err)
		return fmt.Errorf("failed to create eco journey: %w", err)
	}

	return nil
}

// Replace swaps the whole journey document, conditional on the stored version
// still matching expectedVersion. Returns ErrVersionConflict when another
// writer got there first; callers re-read and retry.
func (r *EcoJourneyRepository) Replace(ctx context.Context, journey *ecojourney.Journey, expectedVersion int) error {
	collection := r.db.Collection(JourneyCollectionName)

	filter := bson.M{
		"account_id": journey.AccountID,
		"version":    expectedVersion,
	}

	result, err := collection.ReplaceOne(ctx, filter, journey)
	if err != nil {
		r.logger.Error("Failed to replace eco journey",
			"account_id", journey.AccountID.String(),
			"error", err)
		return fmt.Errorf("failed to replace eco journey: %w", err)
	}

	if result.MatchedCount == 0 {
		return ecojourney.ErrVersionConflict{AccountID: journey.AccountID}
	}

	return nil
}

// Leaderboard retrieves public-profile journeys ranked by the chosen metric.
// Ties are broken by ascending account ID so the ordering is stable across
// requests.
func (r *EcoJourneyRepository) Leaderboard(ctx context.Context, metric ecojourney.LeaderboardMetric, limit int) ([]*ecojourney.Journey, error) {
	collection := r.db.Collection(JourneyCollectionName)

	filter := bson.M{"preferences.public_profile": true}
	opts := options.Find().
		SetSort(bson.D{
			{Key: leaderboardSortField(metric), Value: -1},
			{Key: "account_id", Value: 1},
		}).
		SetLimit(int64(limit))

	cursor, err := collection.Find(ctx, filter, opts)
	if err != nil {
		r.logger.Error("Failed to get leaderboard",
			"metric", string(metric),
			"error", err)
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer cursor.Close(ctx)

	var journeys []*ecojourney.Journey
	if err := cursor.All(ctx, &journeys); err != nil {
		r.logger.Error("Failed to decode leaderboard journeys",
			"metric", string(metric),
			"error", err)
		return nil, fmt.Errorf("failed to decode leaderboard journeys: %w", err)
	}

	return journeys, nil
}

func leaderboardSortField(metric ecojourney.LeaderboardMetric) string {
	switch metric {
	case ecojourney.LeaderboardCarbon:
		return "carbon_footprint_saved"
	case ecojourney.LeaderboardSpending:
		return "total_spent"
	case ecojourney.LeaderboardOrders:
		return "total_orders"
	default:
		return "level"
	}
}
