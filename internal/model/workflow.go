package model

import (
	"time"
)

type ServiceType string

const (
	ServiceTypeConsultation ServiceType = "consultation"
	ServiceTypeHundredDays  ServiceType = "hundred_days"
)

func (s ServiceType) Valid() bool {
	return s == ServiceTypeConsultation || s == ServiceTypeHundredDays
}

// WorkflowAction identifies the next automated step scheduled for a client.
type WorkflowAction string

const (
	ActionSendHealthAssessment WorkflowAction = "send_health_assessment"
	ActionSendStressCard       WorkflowAction = "send_stress_card"
	ActionSendSleepCard        WorkflowAction = "send_sleep_card"
	ActionPrepareActionPlan    WorkflowAction = "prepare_action_plan"
)

// WorkflowStage is a free-form label; the constants are the stages the
// transition table knows about.
type WorkflowStage string

const (
	StageHealthAssessmentSent WorkflowStage = "health_assessment_sent"
	StageStressCardSent       WorkflowStage = "stress_card_sent"
	StageSleepCardSent        WorkflowStage = "sleep_card_sent"
)

const TriggeredBySystem = "system"

type WorkflowState struct {
	ID               string          `db:"id" json:"id"`
	ClientID         string          `db:"client_id" json:"client_id"`
	ServiceType      ServiceType     `db:"service_type" json:"service_type"`
	WorkflowStage    *WorkflowStage  `db:"workflow_stage" json:"workflow_stage"`
	StageCompletedAt *time.Time      `db:"stage_completed_at" json:"stage_completed_at"`
	NextAction       *WorkflowAction `db:"next_action" json:"next_action"`
	NextActionDueAt  *time.Time      `db:"next_action_due_at" json:"next_action_due_at"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Terminal reports whether no further action is scheduled.
func (w *WorkflowState) Terminal() bool {
	return w.NextAction == nil
}

// Due reports whether the scheduled action is due at now.
func (w *WorkflowState) Due(now time.Time) bool {
	return w.NextAction != nil && w.NextActionDueAt != nil && !w.NextActionDueAt.After(now)
}

type WorkflowHistoryEntry struct {
	ID          string        `db:"id" json:"id"`
	ClientID    string        `db:"client_id" json:"client_id"`
	Stage       WorkflowStage `db:"stage" json:"stage"`
	Action      string        `db:"action" json:"action"`
	TriggeredBy string        `db:"triggered_by" json:"triggered_by"`
	CreatedAt   time.Time     `db:"created_at" json:"created_at"`
}
