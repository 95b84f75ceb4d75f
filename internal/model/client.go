package model

import (
	"strings"
	"time"
)

// DefaultTargetCalories applies when a client has no calorie target on file.
const DefaultTargetCalories = 2000

type Client struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	Email          string    `db:"email"`
	TargetCalories *int      `db:"target_calories"`
	CreatedAt      time.Time `db:"created_at"`
}

// FirstName returns the first word of the client's name.
func (c *Client) FirstName() string {
	fields := strings.Fields(c.Name)
	if len(fields) == 0 {
		return "there"
	}
	return fields[0]
}

// Calories returns the calorie target, falling back to DefaultTargetCalories.
func (c *Client) Calories() int {
	if c.TargetCalories == nil || *c.TargetCalories <= 0 {
		return DefaultTargetCalories
	}
	return *c.TargetCalories
}
