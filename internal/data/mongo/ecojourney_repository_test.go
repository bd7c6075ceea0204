package mongo

import (
	"testing"

	"log/slog"

	"github.com/oneplanet-market/internal/domain/ecojourney"
	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestNewEcoJourneyRepository(t *testing.T) {
	db := &mongo.Database{}
	logger := slog.Default()

	repo := NewEcoJourneyRepository(logger, db)

	assert.NotNil(t, repo)
	assert.IsType(t, &EcoJourneyRepository{}, repo)
}

func TestLeaderboardSortField(t *testing.T) {
	tests := []struct {
		name     string
		metric   ecojourney.LeaderboardMetric
		expected string
	}{
		{"carbon metric", ecojourney.LeaderboardCarbon, "carbon_footprint_saved"},
		{"spending metric", ecojourney.LeaderboardSpending, "total_spent"},
		{"orders metric", ecojourney.LeaderboardOrders, "total_orders"},
		{"level metric", ecojourney.LeaderboardLevel, "level"},
		{"unknown metric falls back to level", ecojourney.LeaderboardMetric("bogus"), "level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, leaderboardSortField(tt.metric))
		})
	}
}

// CRUD paths need a running mongod; the optimistic-retry semantics built on
// Replace are covered by the eco journey service tests
