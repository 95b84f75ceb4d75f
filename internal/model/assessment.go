package model

import (
	"time"
)

// Assessment is the client-facing snapshot materialized from a sent card.
type Assessment struct {
	ID             string    `db:"id" json:"id"`
	ClientID       string    `db:"client_id" json:"client_id"`
	Name           string    `db:"name" json:"name"`
	AssessmentType string    `db:"assessment_type" json:"assessment_type"`
	Content        string    `db:"content" json:"content"`
	ContentHTML    string    `db:"content_html" json:"content_html"`
	SourceCardID   *string   `db:"source_card_id" json:"source_card_id"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
}
