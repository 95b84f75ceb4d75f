package model

import (
	"time"
)

type MealLog struct {
	ID       string    `db:"id"`
	ClientID string    `db:"client_id"`
	MealType string    `db:"meal_type"`
	Calories *int      `db:"calories"`
	LoggedAt time.Time `db:"logged_at"`
}

// DailyLog holds the once-per-day measurements a client records.
type DailyLog struct {
	ID              string    `db:"id"`
	ClientID        string    `db:"client_id"`
	LogDate         time.Time `db:"log_date"`
	Weight          *float64  `db:"weight"`
	WaterMl         *int      `db:"water_ml"`
	ActivityMinutes *int      `db:"activity_minutes"`
	CreatedAt       time.Time `db:"created_at"`
}
