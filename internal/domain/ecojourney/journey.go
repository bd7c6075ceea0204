package ecojourney

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/oneplanet-market/internal/domain/order"
)

const (
	// CarbonSavedPerUnitKG is the estimated CO2 saving per sustainable item
	CarbonSavedPerUnitKG = 0.5

	// ExperiencePerItem is the XP granted per item in a completed order
	ExperiencePerItem = 10

	// StreakWindow is the maximum gap between purchases that keeps a streak alive
	StreakWindow = 7 * 24 * time.Hour
)

// Streaks tracks consecutive qualifying purchases. A purchase continues the
// streak when it lands within StreakWindow of the previous one.
type Streaks struct {
	CurrentSustainableStreak int        `json:"current_sustainable_streak" bson:"current_sustainable_streak"`
	LongestSustainableStreak int        `json:"longest_sustainable_streak" bson:"longest_sustainable_streak"`
	LastPurchaseDate         *time.Time `json:"last_purchase_date,omitempty" bson:"last_purchase_date,omitempty"`
}

// MonthlyStat aggregates one calendar month of activity, keyed YYYY-MM
type MonthlyStat struct {
	Month            string  `json:"month" bson:"month"`
	Orders           int     `json:"orders" bson:"orders"`
	Spent            int64   `json:"spent" bson:"spent"`
	CarbonSaved      float64 `json:"carbon_saved" bson:"carbon_saved"`
	SustainableItems int     `json:"sustainable_items" bson:"sustainable_items"`
}

// Goals are user-editable monthly targets
type Goals struct {
	MonthlySpending int64   `json:"monthly_spending" bson:"monthly_spending"`
	CarbonReduction float64 `json:"carbon_reduction" bson:"carbon_reduction"`
	LocalSupport    int     `json:"local_support" bson:"local_support"`
}

// Preferences control visibility and notification behaviour
type Preferences struct {
	Categories    []string `json:"categories" bson:"categories"`
	Notifications bool     `json:"notifications" bson:"notifications"`
	PublicProfile bool     `json:"public_profile" bson:"public_profile"`
}

// Journey is the gamified sustainability aggregate, one per account. All
// counters are monotonic; only the current streak ever resets. The aggregate
// is persisted as a single document so one order's updates commit atomically.
type Journey struct {
	ID                   uuid.UUID     `json:"id" bson:"_id"`
	AccountID            uuid.UUID     `json:"account_id" bson:"account_id"`
	TotalOrders          int           `json:"total_orders" bson:"total_orders"`
	TotalSpent           int64         `json:"total_spent" bson:"total_spent"`
	CarbonFootprintSaved float64       `json:"carbon_footprint_saved" bson:"carbon_footprint_saved"` // kg CO2
	SustainableProducts  int           `json:"sustainable_products" bson:"sustainable_products"`
	LocalProducers       []string      `json:"local_producers" bson:"local_producers"` // Producer IDs, set semantics
	ExperiencePoints     int64         `json:"experience_points" bson:"experience_points"`
	Level                int           `json:"level" bson:"level"`
	Streaks              Streaks       `json:"streaks" bson:"streaks"`
	Achievements         []Achievement `json:"achievements" bson:"achievements"`
	MonthlyStats         []MonthlyStat `json:"monthly_stats" bson:"monthly_stats"`
	Goals                Goals         `json:"goals" bson:"goals"`
	Preferences          Preferences   `json:"preferences" bson:"preferences"`
	Version              int           `json:"version" bson:"version"` // For optimistic replace
	CreatedAt            time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at" bson:"updated_at"`
}

// OrderImpact is the incremental feedback of one recorded order
type OrderImpact struct {
	ExperienceGained int64         `json:"experience_gained"`
	CarbonSaved      float64       `json:"carbon_saved"`
	NewAchievements  []Achievement `json:"new_achievements"`
}

// NewJourney lazily creates the aggregate for an account with the starter
// achievement and default goals
func NewJourney(accountID uuid.UUID) *Journey {
	now := time.Now()
	return &Journey{
		ID:             uuid.New(),
		AccountID:      accountID,
		LocalProducers: []string{},
		Level:          1,
		Achievements: []Achievement{{
			Name:        "Welcome to OPM",
			Description: "Started your sustainable shopping journey",
			Icon:        "🌟",
			Category:    CategoryWelcome,
			EarnedAt:    now,
		}},
		MonthlyStats: []MonthlyStat{},
		Goals: Goals{
			MonthlySpending: 100,
			CarbonReduction: 10,
			LocalSupport:    3,
		},
		Preferences: Preferences{
			Notifications: true,
		},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LevelForExperience derives the level from experience points:
// floor(sqrt(xp/100)) + 1. The function is non-decreasing in xp, so the
// level never goes down.
func LevelForExperience(xp int64) int {
	return int(math.Sqrt(float64(xp)/100)) + 1
}

// RecordOrder applies one completed, paid order to the aggregate: counters,
// local producer set, streak, experience, monthly stats, then achievement
// evaluation against the post-update values. It returns the incremental
// impact so callers can surface immediate feedback.
func (j *Journey) RecordOrder(o *order.Order, now time.Time) OrderImpact {
	items := order.TotalQuantity(o.Items)
	carbonSaved := float64(items) * CarbonSavedPerUnitKG

	j.TotalOrders++
	j.TotalSpent += o.Amount
	j.CarbonFootprintSaved += carbonSaved
	j.SustainableProducts += items
	for _, item := range o.Items {
		if item.ProducerID != nil {
			j.addLocalProducer(item.ProducerID.String())
		}
	}

	j.advanceStreak(now)

	gained := int64(items)*ExperiencePerItem + o.Amount/10
	j.ExperiencePoints += gained
	j.Level = LevelForExperience(j.ExperiencePoints)

	j.recordMonthly(o.Amount, carbonSaved, items, now)

	earned := j.evaluateAchievements(now)

	j.Version++
	j.UpdatedAt = now

	return OrderImpact{
		ExperienceGained: gained,
		CarbonSaved:      carbonSaved,
		NewAchievements:  earned,
	}
}

// MergeGoals shallow-merges the non-nil fields into the stored goals
func (j *Journey) MergeGoals(monthlySpending *int64, carbonReduction *float64, localSupport *int) {
	if monthlySpending != nil {
		j.Goals.MonthlySpending = *monthlySpending
	}
	if carbonReduction != nil {
		j.Goals.CarbonReduction = *carbonReduction
	}
	if localSupport != nil {
		j.Goals.LocalSupport = *localSupport
	}
	j.Version++
	j.UpdatedAt = time.Now()
}

func (j *Journey) addLocalProducer(producerID string) {
	for _, id := range j.LocalProducers {
		if id == producerID {
			return
		}
	}
	j.LocalProducers = append(j.LocalProducers, producerID)
}

func (j *Journey) advanceStreak(now time.Time) {
	last := j.Streaks.LastPurchaseDate
	if last == nil || now.Sub(*last) <= StreakWindow {
		j.Streaks.CurrentSustainableStreak++
		if j.Streaks.CurrentSustainableStreak > j.Streaks.LongestSustainableStreak {
			j.Streaks.LongestSustainableStreak = j.Streaks.CurrentSustainableStreak
		}
	} else {
		j.Streaks.CurrentSustainableStreak = 1
	}
	t := now
	j.Streaks.LastPurchaseDate = &t
}

func (j *Journey) recordMonthly(amount int64, carbonSaved float64, items int, now time.Time) {
	month := now.UTC().Format("2006-01")
	for i := range j.MonthlyStats {
		if j.MonthlyStats[i].Month == month {
			j.MonthlyStats[i].Orders++
			j.MonthlyStats[i].Spent += amount
			j.MonthlyStats[i].CarbonSaved += carbonSaved
			j.MonthlyStats[i].SustainableItems += items
			return
		}
	}
	j.MonthlyStats = append(j.MonthlyStats, MonthlyStat{
		Month:            month,
		Orders:           1,
		Spent:            amount,
		CarbonSaved:      carbonSaved,
		SustainableItems: items,
	})
}
