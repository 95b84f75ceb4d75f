package model

import (
	"time"
)

type CriteriaType string

const (
	CriteriaMealLogCount        CriteriaType = "meal_log_count"
	CriteriaMealLogStreak       CriteriaType = "meal_log_streak"
	CriteriaHydrationStreak     CriteriaType = "hydration_streak"
	CriteriaWeightConsistency   CriteriaType = "weight_consistency"
	CriteriaActivityStreak      CriteriaType = "activity_streak"
	CriteriaWeightLossMilestone CriteriaType = "weight_loss_milestone"
	CriteriaFirstMeal           CriteriaType = "first_meal"
)

// Valid reports whether the criteria type is one the evaluator knows how to measure.
func (c CriteriaType) Valid() bool {
	switch c {
	case CriteriaMealLogCount,
		CriteriaMealLogStreak,
		CriteriaHydrationStreak,
		CriteriaWeightConsistency,
		CriteriaActivityStreak,
		CriteriaWeightLossMilestone,
		CriteriaFirstMeal:
		return true
	}
	return false
}

const (
	AchievementCategoryConsistency = "consistency"
	AchievementCategoryMilestone   = "milestone"
	AchievementCategoryStreak      = "streak"
	AchievementCategorySpecial     = "special"
)

// AchievementDefinition is reference data managed by administrators.
type AchievementDefinition struct {
	ID            string       `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	Description   string       `db:"description" json:"description"`
	Icon          string       `db:"icon" json:"icon"`
	Category      string       `db:"category" json:"category"`
	CriteriaType  CriteriaType `db:"criteria_type" json:"criteria_type"`
	CriteriaValue int          `db:"criteria_value" json:"criteria_value"`
	Points        int          `db:"points" json:"points"`
	Active        bool         `db:"active" json:"active"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
}

type AchievementProgress struct {
	ID            string    `db:"id" json:"id"`
	ClientID      string    `db:"client_id" json:"client_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	CurrentValue  int       `db:"current_value" json:"current_value"`
	TargetValue   int       `db:"target_value" json:"target_value"`
	LastUpdated   time.Time `db:"last_updated" json:"last_updated"`
}

// Completed reports whether the progress has reached its target.
func (p *AchievementProgress) Completed() bool {
	return p.CurrentValue >= p.TargetValue
}

// EarnedAchievement is a row of the append-only award ledger.
type EarnedAchievement struct {
	ID            string    `db:"id" json:"id"`
	ClientID      string    `db:"client_id" json:"client_id"`
	AchievementID string    `db:"achievement_id" json:"achievement_id"`
	ProgressValue int       `db:"progress_value" json:"progress_value"`
	EarnedAt      time.Time `db:"earned_at" json:"earned_at"`
}

// AwardedAchievement is a definition paired with the moment it was earned.
type AwardedAchievement struct {
	AchievementDefinition
	EarnedAt time.Time `json:"earned_at"`
}
