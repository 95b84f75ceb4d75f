package service

import (
	"sort"
	"time"

	"github.com/templui/coachflow/internal/model"
)

// Transition describes one hop of the onboarding workflow.
type Transition struct {
	// Message renders the automated message for the client's first name.
	// Nil when the hop sends nothing.
	Message    func(firstName string) string
	NextStage  model.WorkflowStage
	NextAction *model.WorkflowAction
	Delay      time.Duration
}

// Schedule returns the next action and its due time relative to now. Both
// are nil for terminal hops.
func (t Transition) Schedule(now time.Time) (*model.WorkflowAction, *time.Time) {
	if t.NextAction == nil {
		return nil, nil
	}
	action := *t.NextAction
	due := now.Add(t.Delay)
	return &action, &due
}

func actionPtr(a model.WorkflowAction) *model.WorkflowAction {
	return &a
}

const (
	stressCardDelay = 2*time.Hour + 30*time.Minute
	sleepCardDelay  = 3*time.Hour + 30*time.Minute
	actionPlanDelay = 48 * time.Hour
)

// automaticTransitions is keyed by the action the sweep found due.
var automaticTransitions = map[model.ServiceType]map[model.WorkflowAction]Transition{
	model.ServiceTypeHundredDays: {
		model.ActionSendHealthAssessment: {
			Message:    healthAssessmentMessage,
			NextStage:  model.StageHealthAssessmentSent,
			NextAction: actionPtr(model.ActionSendStressCard),
			Delay:      stressCardDelay,
		},
		model.ActionSendStressCard: {
			Message:    stressCardMessage,
			NextStage:  model.StageStressCardSent,
			NextAction: actionPtr(model.ActionSendSleepCard),
			Delay:      sleepCardDelay,
		},
		model.ActionSendSleepCard: {
			Message:    sleepCardMessage,
			NextStage:  model.StageSleepCardSent,
			NextAction: actionPtr(model.ActionPrepareActionPlan),
			Delay:      actionPlanDelay,
		},
	},
	model.ServiceTypeConsultation: {
		model.ActionSendHealthAssessment: {
			Message:   healthAssessmentMessage,
			NextStage: model.StageHealthAssessmentSent,
		},
	},
}

// manualTransitions is keyed by the stage an administrator moves a client to
// and yields what should follow once the client is in that stage.
var manualTransitions = map[model.ServiceType]map[model.WorkflowStage]Transition{
	model.ServiceTypeHundredDays: {
		model.StageHealthAssessmentSent: {
			NextStage:  model.StageHealthAssessmentSent,
			NextAction: actionPtr(model.ActionSendStressCard),
			Delay:      stressCardDelay,
		},
		model.StageStressCardSent: {
			NextStage:  model.StageStressCardSent,
			NextAction: actionPtr(model.ActionSendSleepCard),
			Delay:      sleepCardDelay,
		},
		model.StageSleepCardSent: {
			NextStage:  model.StageSleepCardSent,
			NextAction: actionPtr(model.ActionPrepareActionPlan),
			Delay:      actionPlanDelay,
		},
	},
	model.ServiceTypeConsultation: {
		model.StageHealthAssessmentSent: {
			NextStage: model.StageHealthAssessmentSent,
		},
	},
}

// AutomaticTransition looks up the hop the sweep performs for a due action.
func AutomaticTransition(serviceType model.ServiceType, action model.WorkflowAction) (Transition, bool) {
	t, ok := automaticTransitions[serviceType][action]
	return t, ok
}

// AutomaticActions lists every action the sweep can fire for some service
// type. Rows waiting on anything else, such as the coach preparing the action
// plan, are left out of the sweep.
func AutomaticActions() []model.WorkflowAction {
	seen := make(map[model.WorkflowAction]bool)
	var actions []model.WorkflowAction
	for _, byAction := range automaticTransitions {
		for action := range byAction {
			if !seen[action] {
				seen[action] = true
				actions = append(actions, action)
			}
		}
	}
	sort.Slice(actions, func(i, j int) bool { return actions[i] < actions[j] })
	return actions
}

// ManualTransition looks up the hop for an administrator moving a client to
// stage. Stages the table does not know are terminal.
func ManualTransition(serviceType model.ServiceType, stage model.WorkflowStage) Transition {
	t, ok := manualTransitions[serviceType][stage]
	if !ok {
		return Transition{NextStage: stage}
	}
	return t
}
