package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	"github.com/templui/coachflow/internal/db"
)

// newTestDB opens a migrated sqlite database that lives for the test only.
func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := db.Init(context.Background(), "sqlite", filepath.Join(t.TempDir(), "coachflow.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	err = db.RunMigrations(context.Background(), database.DB, "sqlite")
	require.NoError(t, err)

	return database
}

func insertClient(t *testing.T, database *sqlx.DB, name string, targetCalories *int) string {
	t.Helper()

	id := uuid.New().String()
	_, err := database.Exec(
		`INSERT INTO clients (id, name, email, target_calories, created_at) VALUES ($1, $2, $3, $4, $5)`,
		id, name, name+"@example.com", targetCalories, time.Now().UTC(),
	)
	require.NoError(t, err)
	return id
}

func insertMealLog(t *testing.T, database *sqlx.DB, clientID string, at time.Time) {
	t.Helper()

	_, err := database.Exec(
		`INSERT INTO meal_logs (id, client_id, meal_type, logged_at) VALUES ($1, $2, 'lunch', $3)`,
		uuid.New().String(), clientID, at,
	)
	require.NoError(t, err)
}

func insertDailyLog(t *testing.T, database *sqlx.DB, clientID string, date time.Time, weight *float64, water, activity *int) {
	t.Helper()

	_, err := database.Exec(
		`INSERT INTO daily_logs (id, client_id, log_date, weight, water_ml, activity_minutes, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New().String(), clientID, date, weight, water, activity, date,
	)
	require.NoError(t, err)
}

func ptr[T any](v T) *T {
	return &v
}

func at(hour int) time.Time {
	return time.Date(2026, 3, 10, hour, 0, 0, 0, time.UTC)
}
