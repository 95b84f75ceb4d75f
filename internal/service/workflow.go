package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/templui/coachflow/internal/metrics"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/validation"
)

const (
	SweepSuccess = "success"
	SweepError   = "error"
	SweepSkipped = "skipped"
)

const (
	historyActionManual = "manual_trigger"
	historyActionEnroll = "enroll"
	historyStageEnroll  = "enrolled"
)

var (
	ErrInvalidServiceType = fmt.Errorf("%w: unknown service type", validation.ErrInvalid)
)

// SweepResult reports what the sweep did with one due row.
type SweepResult struct {
	ClientID string `json:"client_id"`
	Status   string `json:"status"`
	Action   string `json:"action,omitempty"`
	Error    string `json:"error,omitempty"`
}

type TriggerResult struct {
	WorkflowStage string  `json:"workflow_stage"`
	NextAction    *string `json:"next_action"`
}

type WorkflowService struct {
	workflows repository.WorkflowRepository
	history   repository.HistoryRepository
	clients   repository.ClientRepository
	messages  repository.MessageRepository
	notifier  Notifier
	clock     clock
}

func NewWorkflowService(
	workflows repository.WorkflowRepository,
	history repository.HistoryRepository,
	clients repository.ClientRepository,
	messages repository.MessageRepository,
	notifier Notifier,
	loc *time.Location,
) *WorkflowService {
	return &WorkflowService{
		workflows: workflows,
		history:   history,
		clients:   clients,
		messages:  messages,
		notifier:  notifier,
		clock:     newClock(loc),
	}
}

// Sweep fires every automated action that is due. Each row is handled on its
// own: a failure is recorded in that row's result and the sweep moves on.
// Only a failure to list due rows fails the whole sweep.
func (s *WorkflowService) Sweep(ctx context.Context) ([]SweepResult, error) {
	start := time.Now()
	defer func() {
		metrics.ObserveSweep(time.Since(start))
	}()

	now := s.clock.stamp()

	due, err := s.workflows.Due(ctx, now, AutomaticActions())
	if err != nil {
		return nil, fmt.Errorf("failed to load due workflows: %w", err)
	}

	results := make([]SweepResult, 0, len(due))
	var failed int
	for _, state := range due {
		result := s.fire(ctx, state, now)
		if result.Status == SweepError {
			failed++
		}
		metrics.RecordSweepRow(result.Status)
		results = append(results, result)
	}

	slog.Info("workflow sweep finished", "processed", len(results), "failed", failed)
	return results, nil
}

// fire performs one due action. The claim keeps two sweeps from firing the
// same action; if the message or history write then fails the claim is
// released so the next sweep retries the row.
func (s *WorkflowService) fire(ctx context.Context, state *model.WorkflowState, now time.Time) SweepResult {
	result := SweepResult{ClientID: state.ClientID}
	if state.NextAction == nil {
		result.Status = SweepSkipped
		return result
	}

	action := *state.NextAction
	result.Action = string(action)

	transition, ok := AutomaticTransition(state.ServiceType, action)
	if !ok {
		result.Status = SweepSkipped
		return result
	}

	// Store errors stay in the log; the result only names the failed step.
	fail := func(step string, err error) SweepResult {
		slog.Error("workflow action failed",
			"client_id", state.ClientID,
			"action", action,
			"step", step,
			"error", err,
		)
		result.Status = SweepError
		result.Error = step
		return result
	}

	client, err := s.clients.ByID(ctx, state.ClientID)
	if err != nil {
		return fail("failed to load client", err)
	}

	nextAction, dueAt := transition.Schedule(now)
	advance := repository.WorkflowAdvance{
		Stage:           transition.NextStage,
		NextAction:      nextAction,
		NextActionDueAt: dueAt,
		At:              now,
	}

	claimed, err := s.workflows.Claim(ctx, state, advance)
	if err != nil {
		return fail("failed to advance workflow", err)
	}
	if !claimed {
		result.Status = SweepSkipped
		return result
	}

	release := func(step string, err error) SweepResult {
		restored, releaseErr := s.workflows.Release(ctx, state, advance)
		if releaseErr != nil {
			slog.Error("failed to release workflow claim", "client_id", state.ClientID, "action", action, "error", releaseErr)
		} else if !restored {
			slog.Warn("workflow changed before its claim could be released", "client_id", state.ClientID, "action", action)
		}
		return fail(step, err)
	}

	var content string
	if transition.Message != nil {
		content = transition.Message(client.FirstName())
		err = s.messages.Create(ctx, &model.Message{
			ID:          uuid.New().String(),
			ClientID:    client.ID,
			SenderType:  model.MessageSenderSystem,
			MessageType: model.MessageTypeAutomated,
			Content:     content,
			CreatedAt:   now,
		})
		if err != nil {
			return release("failed to create message", err)
		}
	}

	err = s.history.Append(ctx, &model.WorkflowHistoryEntry{
		ID:          uuid.New().String(),
		ClientID:    client.ID,
		Stage:       transition.NextStage,
		Action:      string(action),
		TriggeredBy: model.TriggeredBySystem,
		CreatedAt:   now,
	})
	if err != nil {
		return release("failed to append history", err)
	}

	if content != "" {
		notifyBestEffort(ctx, s.notifier, client, "New message from your coach", content)
	}

	result.Status = SweepSuccess
	return result
}

// Trigger moves a client to stage on an administrator's behalf and schedules
// whatever the manual table says follows it. Stages the table does not know
// leave the workflow terminal.
func (s *WorkflowService) Trigger(ctx context.Context, clientID, stage, actor string) (*TriggerResult, error) {
	err := validation.Required("client_id", clientID)
	if err != nil {
		return nil, err
	}
	err = validation.ValidateStage(stage)
	if err != nil {
		return nil, err
	}

	state, err := s.workflows.ByClientID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	now := s.clock.stamp()
	transition := ManualTransition(state.ServiceType, model.WorkflowStage(stage))
	nextAction, dueAt := transition.Schedule(now)

	err = s.workflows.Advance(ctx, clientID, repository.WorkflowAdvance{
		Stage:           transition.NextStage,
		NextAction:      nextAction,
		NextActionDueAt: dueAt,
		At:              now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update workflow: %w", err)
	}

	err = s.history.Append(ctx, &model.WorkflowHistoryEntry{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		Stage:       transition.NextStage,
		Action:      historyActionManual,
		TriggeredBy: actor,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append history: %w", err)
	}

	slog.Info("workflow triggered", "client_id", clientID, "stage", stage, "triggered_by", actor)

	result := &TriggerResult{WorkflowStage: string(transition.NextStage)}
	if nextAction != nil {
		next := string(*nextAction)
		result.NextAction = &next
	}
	return result, nil
}

// Enroll starts a client's workflow with the health assessment due now.
func (s *WorkflowService) Enroll(ctx context.Context, clientID string, serviceType model.ServiceType, actor string) (*model.WorkflowState, error) {
	err := validation.Required("client_id", clientID)
	if err != nil {
		return nil, err
	}
	if !serviceType.Valid() {
		return nil, ErrInvalidServiceType
	}

	_, err = s.clients.ByID(ctx, clientID)
	if err != nil {
		return nil, err
	}

	now := s.clock.stamp()
	first := model.ActionSendHealthAssessment
	state := &model.WorkflowState{
		ID:              uuid.New().String(),
		ClientID:        clientID,
		ServiceType:     serviceType,
		NextAction:      &first,
		NextActionDueAt: &now,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	err = s.workflows.Create(ctx, state)
	if errors.Is(err, repository.ErrWorkflowExists) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow: %w", err)
	}

	err = s.history.Append(ctx, &model.WorkflowHistoryEntry{
		ID:          uuid.New().String(),
		ClientID:    clientID,
		Stage:       historyStageEnroll,
		Action:      historyActionEnroll,
		TriggeredBy: actor,
		CreatedAt:   now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to append history: %w", err)
	}

	slog.Info("client enrolled", "client_id", clientID, "service_type", serviceType, "triggered_by", actor)
	return state, nil
}

func (s *WorkflowService) History(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error) {
	err := validation.Required("client_id", clientID)
	if err != nil {
		return nil, err
	}
	return s.history.ByClient(ctx, clientID)
}
