package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/coachflow/internal/model"
)

// ActivityRepository reads the client's meal and daily logs. The engine
// never writes activity history.
type ActivityRepository interface {
	CountMealLogs(ctx context.Context, clientID string) (int, error)
	RecentMealLogTimes(ctx context.Context, clientID string, limit int) ([]time.Time, error)
	RecentWeighInDates(ctx context.Context, clientID string, limit int) ([]time.Time, error)
	RecentDailyLogs(ctx context.Context, clientID string, limit int) ([]*model.DailyLog, error)
	// FirstAndLatestWeight returns nil values when no weight was ever recorded.
	FirstAndLatestWeight(ctx context.Context, clientID string) (first, latest *float64, err error)
}

type activityRepository struct {
	db *sqlx.DB
}

func NewActivityRepository(db *sqlx.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) CountMealLogs(ctx context.Context, clientID string) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM meal_logs WHERE client_id = $1`
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&count)
	return count, err
}

func (r *activityRepository) RecentMealLogTimes(ctx context.Context, clientID string, limit int) ([]time.Time, error) {
	var times []time.Time
	query := `SELECT logged_at FROM meal_logs WHERE client_id = $1 ORDER BY logged_at DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &times, query, clientID, limit)
	if err != nil {
		return nil, err
	}

	return times, nil
}

func (r *activityRepository) RecentWeighInDates(ctx context.Context, clientID string, limit int) ([]time.Time, error) {
	var dates []time.Time
	query := `SELECT log_date FROM daily_logs
	          WHERE client_id = $1 AND weight IS NOT NULL
	          ORDER BY log_date DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &dates, query, clientID, limit)
	if err != nil {
		return nil, err
	}

	return dates, nil
}

func (r *activityRepository) RecentDailyLogs(ctx context.Context, clientID string, limit int) ([]*model.DailyLog, error) {
	var logs []*model.DailyLog
	query := `SELECT * FROM daily_logs WHERE client_id = $1 ORDER BY log_date DESC LIMIT $2`

	err := r.db.SelectContext(ctx, &logs, query, clientID, limit)
	if err != nil {
		return nil, err
	}

	return logs, nil
}

func (r *activityRepository) FirstAndLatestWeight(ctx context.Context, clientID string) (*float64, *float64, error) {
	first, err := r.weightAt(ctx, `SELECT weight FROM daily_logs
	          WHERE client_id = $1 AND weight IS NOT NULL
	          ORDER BY log_date ASC, created_at ASC LIMIT 1`, clientID)
	if err != nil {
		return nil, nil, err
	}
	if first == nil {
		return nil, nil, nil
	}

	latest, err := r.weightAt(ctx, `SELECT weight FROM daily_logs
	          WHERE client_id = $1 AND weight IS NOT NULL
	          ORDER BY log_date DESC, created_at DESC LIMIT 1`, clientID)
	if err != nil {
		return nil, nil, err
	}

	return first, latest, nil
}

func (r *activityRepository) weightAt(ctx context.Context, query, clientID string) (*float64, error) {
	var weight float64
	err := r.db.QueryRowContext(ctx, query, clientID).Scan(&weight)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &weight, nil
}
