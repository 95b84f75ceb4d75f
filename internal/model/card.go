package model

import (
	"time"
)

const (
	CardStatusDraft  = "draft"
	CardStatusEdited = "edited"
	CardStatusSent   = "sent"
)

// PendingReviewCard is generated content awaiting coach review before release.
type PendingReviewCard struct {
	ID               string        `db:"id"`
	ClientID         string        `db:"client_id"`
	CardType         string        `db:"card_type"`
	GeneratedContent string        `db:"generated_content"`
	Status           string        `db:"status"`
	WorkflowStage    WorkflowStage `db:"workflow_stage"`
	SentAt           *time.Time    `db:"sent_at"`
	ReviewedBy       *string       `db:"reviewed_by"`
	CreatedAt        time.Time     `db:"created_at"`
	UpdatedAt        time.Time     `db:"updated_at"`
}

func (c *PendingReviewCard) IsSent() bool {
	return c.Status == CardStatusSent
}
