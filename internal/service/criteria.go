package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
)

const (
	mealStreakWindow = 100
	weighInWindow    = 30
	dailyLogWindow   = 60
)

var (
	ErrUnknownCriteria = errors.New("unknown criteria type")
)

// CriteriaEvaluator measures a client's current value for a criteria type
// from their activity history.
type CriteriaEvaluator struct {
	activity repository.ActivityRepository
}

func NewCriteriaEvaluator(activity repository.ActivityRepository) *CriteriaEvaluator {
	return &CriteriaEvaluator{activity: activity}
}

func (e *CriteriaEvaluator) Value(ctx context.Context, client *model.Client, criteria model.CriteriaType, today time.Time) (int, error) {
	switch criteria {
	case model.CriteriaMealLogCount, model.CriteriaFirstMeal:
		return e.activity.CountMealLogs(ctx, client.ID)

	case model.CriteriaMealLogStreak:
		times, err := e.activity.RecentMealLogTimes(ctx, client.ID, mealStreakWindow)
		if err != nil {
			return 0, err
		}
		return Streak(times, today), nil

	case model.CriteriaWeightConsistency:
		dates, err := e.activity.RecentWeighInDates(ctx, client.ID, weighInWindow)
		if err != nil {
			return 0, err
		}
		return Streak(localDates(dates, today.Location()), today), nil

	case model.CriteriaHydrationStreak:
		target := HydrationTarget(client.Calories())
		return e.dailyStreak(ctx, client.ID, today, func(l *model.DailyLog) bool {
			return l.WaterMl != nil && *l.WaterMl >= target
		})

	case model.CriteriaActivityStreak:
		return e.dailyStreak(ctx, client.ID, today, func(l *model.DailyLog) bool {
			return l.ActivityMinutes != nil && *l.ActivityMinutes > 0
		})

	case model.CriteriaWeightLossMilestone:
		first, latest, err := e.activity.FirstAndLatestWeight(ctx, client.ID)
		if err != nil {
			return 0, err
		}
		if first == nil || latest == nil {
			return 0, nil
		}
		return WeightLoss(*first, *latest), nil
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownCriteria, criteria)
}

func (e *CriteriaEvaluator) dailyStreak(ctx context.Context, clientID string, today time.Time, qualifies func(*model.DailyLog) bool) (int, error) {
	logs, err := e.activity.RecentDailyLogs(ctx, clientID, dailyLogWindow)
	if err != nil {
		return 0, err
	}

	var dates []time.Time
	for _, l := range logs {
		if qualifies(l) {
			dates = append(dates, l.LogDate)
		}
	}

	return Streak(localDates(dates, today.Location()), today), nil
}

// localDates re-anchors DATE values, which carry no zone of their own, onto
// the same calendar day in loc.
func localDates(dates []time.Time, loc *time.Location) []time.Time {
	out := make([]time.Time, len(dates))
	for i, d := range dates {
		y, m, day := d.Date()
		out[i] = time.Date(y, m, day, 12, 0, 0, 0, loc)
	}
	return out
}

// HydrationTarget derives the daily water target in millilitres from a
// calorie target.
func HydrationTarget(targetCalories int) int {
	return int(math.Round(float64(targetCalories)*0.035)) * 100
}

// WeightLoss is the whole number of units lost between the first and the
// most recent weigh-in. Gains count as zero.
func WeightLoss(first, latest float64) int {
	return max(0, int(math.Floor(first-latest)))
}
