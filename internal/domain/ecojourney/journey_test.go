package ecojourney

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oneplanet-market/internal/domain/order"
)

func testOrder(amount int64, quantities ...int) *order.Order {
	producerID := uuid.New()
	items := make([]order.Item, 0, len(quantities))
	for _, q := range quantities {
		items = append(items, order.Item{
			ProductID:  uuid.New(),
			ProducerID: &producerID,
			Name:       "Organic Apples",
			UnitPrice:  100,
			Quantity:   q,
		})
	}
	return &order.Order{
		ID:        uuid.New(),
		AccountID: uuid.New(),
		Items:     items,
		Amount:    amount,
		IsPaid:    true,
	}
}

func TestNewJourney(t *testing.T) {
	accountID := uuid.New()
	j := NewJourney(accountID)

	require.NotNil(t, j)
	assert.NotEqual(t, uuid.Nil, j.ID)
	assert.Equal(t, accountID, j.AccountID)
	assert.Equal(t, 1, j.Level)
	assert.Equal(t, 1, j.Version)
	assert.Zero(t, j.TotalOrders)
	assert.True(t, j.Preferences.Notifications)

	require.Len(t, j.Achievements, 1, "New journeys carry the starter badge")
	assert.Equal(t, "Welcome to OPM", j.Achievements[0].Name)
	assert.Equal(t, CategoryWelcome, j.Achievements[0].Category)
}

func TestLevelForExperience(t *testing.T) {
	t.Run("Thresholds", func(t *testing.T) {
		assert.Equal(t, 1, LevelForExperience(0))
		assert.Equal(t, 1, LevelForExperience(99))
		assert.Equal(t, 2, LevelForExperience(100))
		assert.Equal(t, 2, LevelForExperience(399))
		assert.Equal(t, 3, LevelForExperience(400))
		assert.Equal(t, 4, LevelForExperience(900))
		assert.Equal(t, 10, LevelForExperience(8100))
	})

	t.Run("NonDecreasing", func(t *testing.T) {
		prev := LevelForExperience(0)
		for xp := int64(1); xp <= 10000; xp += 37 {
			level := LevelForExperience(xp)
			require.GreaterOrEqual(t, level, prev, "level dropped at xp=%d", xp)
			prev = level
		}
	})
}

func TestJourney_RecordOrder(t *testing.T) {
	t.Run("UpdatesCountersAndExperience", func(t *testing.T) {
		j := NewJourney(uuid.New())
		initialVersion := j.Version
		now := time.Now()

		// 3 items, amount 1500: xp = 3*10 + 1500/10 = 180
		impact := j.RecordOrder(testOrder(1500, 2, 1), now)

		assert.Equal(t, 1, j.TotalOrders)
		assert.Equal(t, int64(1500), j.TotalSpent)
		assert.Equal(t, 3, j.SustainableProducts)
		assert.Equal(t, 3*CarbonSavedPerUnitKG, j.CarbonFootprintSaved)
		assert.Equal(t, int64(180), j.ExperiencePoints)
		assert.Equal(t, 2, j.Level)
		assert.Equal(t, initialVersion+1, j.Version)
		assert.Equal(t, now, j.UpdatedAt)

		assert.Equal(t, int64(180), impact.ExperienceGained)
		assert.Equal(t, 3*CarbonSavedPerUnitKG, impact.CarbonSaved)
	})

	t.Run("DeduplicatesLocalProducers", func(t *testing.T) {
		j := NewJourney(uuid.New())
		o := testOrder(500, 1)
		now := time.Now()

		j.RecordOrder(o, now)
		j.RecordOrder(o, now.Add(time.Hour))

		assert.Len(t, j.LocalProducers, 1, "The same producer counts once")
	})

	t.Run("ItemsWithoutProducerSkipLocalSupport", func(t *testing.T) {
		j := NewJourney(uuid.New())
		o := testOrder(500, 1)
		o.Items[0].ProducerID = nil

		j.RecordOrder(o, time.Now())

		assert.Empty(t, j.LocalProducers)
	})

	t.Run("StreakContinuesWithinWindow", func(t *testing.T) {
		j := NewJourney(uuid.New())
		now := time.Now()

		j.RecordOrder(testOrder(100, 1), now)
		j.RecordOrder(testOrder(100, 1), now.Add(3*24*time.Hour))
		j.RecordOrder(testOrder(100, 1), now.Add(6*24*time.Hour))

		assert.Equal(t, 3, j.Streaks.CurrentSustainableStreak)
		assert.Equal(t, 3, j.Streaks.LongestSustainableStreak)
	})

	t.Run("StreakResetsAfterWindow", func(t *testing.T) {
		j := NewJourney(uuid.New())
		now := time.Now()

		j.RecordOrder(testOrder(100, 1), now)
		j.RecordOrder(testOrder(100, 1), now.Add(2*24*time.Hour))
		j.RecordOrder(testOrder(100, 1), now.Add(2*24*time.Hour).Add(StreakWindow).Add(time.Second))

		assert.Equal(t, 1, j.Streaks.CurrentSustainableStreak)
		assert.Equal(t, 2, j.Streaks.LongestSustainableStreak, "Longest streak survives the reset")
	})

	t.Run("MonthlyStatsAggregateByCalendarMonth", func(t *testing.T) {
		j := NewJourney(uuid.New())
		january := time.Date(2026, time.January, 10, 12, 0, 0, 0, time.UTC)
		february := time.Date(2026, time.February, 2, 12, 0, 0, 0, time.UTC)

		j.RecordOrder(testOrder(300, 1), january)
		j.RecordOrder(testOrder(200, 2), january.Add(5*24*time.Hour))
		j.RecordOrder(testOrder(100, 1), february)

		require.Len(t, j.MonthlyStats, 2)
		assert.Equal(t, "2026-01", j.MonthlyStats[0].Month)
		assert.Equal(t, 2, j.MonthlyStats[0].Orders)
		assert.Equal(t, int64(500), j.MonthlyStats[0].Spent)
		assert.Equal(t, 3, j.MonthlyStats[0].SustainableItems)
		assert.Equal(t, "2026-02", j.MonthlyStats[1].Month)
		assert.Equal(t, 1, j.MonthlyStats[1].Orders)
	})

	t.Run("ReturnsNewlyEarnedAchievements", func(t *testing.T) {
		j := NewJourney(uuid.New())

		impact := j.RecordOrder(testOrder(500, 1), time.Now())

		names := make([]string, 0, len(impact.NewAchievements))
		for _, a := range impact.NewAchievements {
			names = append(names, a.Name)
		}
		assert.Contains(t, names, "First Purchase")
		assert.NotContains(t, names, "Welcome to OPM", "The starter badge is granted at creation, not by orders")
	})
}

func TestJourney_MergeGoals(t *testing.T) {
	t.Run("MergesOnlyProvidedFields", func(t *testing.T) {
		j := NewJourney(uuid.New())
		initialVersion := j.Version
		spending := int64(250)

		j.MergeGoals(&spending, nil, nil)

		assert.Equal(t, int64(250), j.Goals.MonthlySpending)
		assert.Equal(t, float64(10), j.Goals.CarbonReduction, "Untouched goal keeps its default")
		assert.Equal(t, 3, j.Goals.LocalSupport)
		assert.Equal(t, initialVersion+1, j.Version)
	})

	t.Run("MergesAllFields", func(t *testing.T) {
		j := NewJourney(uuid.New())
		spending := int64(400)
		carbon := 25.0
		local := 7

		j.MergeGoals(&spending, &carbon, &local)

		assert.Equal(t, Goals{MonthlySpending: 400, CarbonReduction: 25, LocalSupport: 7}, j.Goals)
	})
}

func TestJourney_RecordOrder_LevelProgression(t *testing.T) {
	j := NewJourney(uuid.New())
	now := time.Now()

	for i := 0; i < 30; i++ {
		prev := j.Level
		j.RecordOrder(testOrder(1000, 2), now.Add(time.Duration(i)*24*time.Hour))
		require.GreaterOrEqual(t, j.Level, prev, fmt.Sprintf("level dropped on order %d", i+1))
	}

	assert.Equal(t, LevelForExperience(j.ExperiencePoints), j.Level)
	assert.Greater(t, j.Level, 1)
}
