package ecojourney

import (
	"time"
)

// Achievement categories
const (
	CategoryWelcome  = "welcome"
	CategoryOrders   = "orders"
	CategoryCarbon   = "carbon"
	CategoryLocal    = "local"
	CategoryStreak   = "streak"
	CategorySpending = "spending"
	CategoryLevel    = "level"
)

// Metric names the journey counter an achievement tracks
type Metric string

const (
	MetricOrders         Metric = "total_orders"
	MetricCarbon         Metric = "carbon_footprint_saved"
	MetricLocalProducers Metric = "local_producers"
	MetricStreak         Metric = "current_streak"
	MetricSpent          Metric = "total_spent"
	MetricLevel          Metric = "level"
)

// Achievement is a one-time badge earned when a tracked counter reaches its
// target. Names are unique within a journey; a badge is never granted twice
// and never revoked.
type Achievement struct {
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description" bson:"description"`
	Icon        string    `json:"icon" bson:"icon"`
	Category    string    `json:"category" bson:"category"`
	EarnedAt    time.Time `json:"earned_at" bson:"earned_at"`
}

// Definition declares an achievement trigger: the tracked metric reaching
// Target grants the badge
type Definition struct {
	Name        string
	Description string
	Icon        string
	Category    string
	Metric      Metric
	Target      float64
}

// Definitions is the full achievement table, evaluated in order after every
// recorded order using the post-update counter values
var Definitions = []Definition{
	{Name: "First Purchase", Description: "Made your first sustainable purchase", Icon: "🛒", Category: CategoryOrders, Metric: MetricOrders, Target: 1},
	{Name: "Regular Shopper", Description: "Made 5 sustainable purchases", Icon: "🛍️", Category: CategoryOrders, Metric: MetricOrders, Target: 5},
	{Name: "Green Dozen", Description: "Made 12 sustainable purchases", Icon: "📦", Category: CategoryOrders, Metric: MetricOrders, Target: 12},
	{Name: "Eco Enthusiast", Description: "Made 25 sustainable purchases", Icon: "🌟", Category: CategoryOrders, Metric: MetricOrders, Target: 25},
	{Name: "Carbon Saver", Description: "Saved 10kg of CO2", Icon: "🌍", Category: CategoryCarbon, Metric: MetricCarbon, Target: 10},
	{Name: "Climate Champion", Description: "Saved 50kg of CO2", Icon: "🏆", Category: CategoryCarbon, Metric: MetricCarbon, Target: 50},
	{Name: "Community Supporter", Description: "Supported 3 local producers", Icon: "🤝", Category: CategoryLocal, Metric: MetricLocalProducers, Target: 3},
	{Name: "Local Hero", Description: "Supported 5 local producers", Icon: "🏘️", Category: CategoryLocal, Metric: MetricLocalProducers, Target: 5},
	{Name: "Streak Master", Description: "Maintained a 7-purchase streak", Icon: "🔥", Category: CategoryStreak, Metric: MetricStreak, Target: 7},
	{Name: "Eco Spender", Description: "Spent 500 on sustainable products", Icon: "💳", Category: CategorySpending, Metric: MetricSpent, Target: 500},
	{Name: "Eco Investor", Description: "Spent 1000 on sustainable products", Icon: "💰", Category: CategorySpending, Metric: MetricSpent, Target: 1000},
	{Name: "Eco Beginner", Description: "Reached level 2", Icon: "🌱", Category: CategoryLevel, Metric: MetricLevel, Target: 2},
	{Name: "Green Shopper", Description: "Reached level 5", Icon: "🌿", Category: CategoryLevel, Metric: MetricLevel, Target: 5},
	{Name: "Sustainability Champion", Description: "Reached level 10", Icon: "🏆", Category: CategoryLevel, Metric: MetricLevel, Target: 10},
	{Name: "Eco Master", Description: "Reached level 20", Icon: "🌍", Category: CategoryLevel, Metric: MetricLevel, Target: 20},
}

// Progress reports how far a journey is towards one achievement definition
type Progress struct {
	Definition
	Current  float64 `json:"current"`
	Achieved bool    `json:"achieved"`
	Percent  float64 `json:"progress"` // min(current/target, 100)%
}

// MetricValue returns the current value of the tracked counter
func (j *Journey) MetricValue(metric Metric) float64 {
	switch metric {
	case MetricOrders:
		return float64(j.TotalOrders)
	case MetricCarbon:
		return j.CarbonFootprintSaved
	case MetricLocalProducers:
		return float64(len(j.LocalProducers))
	case MetricStreak:
		return float64(j.Streaks.CurrentSustainableStreak)
	case MetricSpent:
		return float64(j.TotalSpent)
	case MetricLevel:
		return float64(j.Level)
	}
	return 0
}

// HasAchievement reports whether the badge with the given name was earned
func (j *Journey) HasAchievement(name string) bool {
	for _, a := range j.Achievements {
		if a.Name == name {
			return true
		}
	}
	return false
}

// AchievementProgress computes the progress of every definition against the
// live counters without mutating state
func (j *Journey) AchievementProgress() []Progress {
	progress := make([]Progress, 0, len(Definitions))
	for _, def := range Definitions {
		current := j.MetricValue(def.Metric)
		pct := current / def.Target * 100
		if pct > 100 {
			pct = 100
		}
		progress = append(progress, Progress{
			Definition: def,
			Current:    current,
			Achieved:   j.HasAchievement(def.Name),
			Percent:    pct,
		})
	}
	return progress
}

// evaluateAchievements grants every definition whose tracked counter has
// reached its target and whose badge is not yet present. Returns the newly
// earned badges.
func (j *Journey) evaluateAchievements(now time.Time) []Achievement {
	var earned []Achievement
	for _, def := range Definitions {
		if j.MetricValue(def.Metric) < def.Target || j.HasAchievement(def.Name) {
			continue
		}
		badge := Achievement{
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			Category:    def.Category,
			EarnedAt:    now,
		}
		j.Achievements = append(j.Achievements, badge)
		earned = append(earned, badge)
	}
	return earned
}
