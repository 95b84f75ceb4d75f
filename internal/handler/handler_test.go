package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/templui/coachflow/internal/ctxkeys"
	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/repository"
	"github.com/templui/coachflow/internal/service"
	"github.com/templui/coachflow/internal/validation"
)

type stubEngine struct {
	gotClient string
	gotHint   string
	report    *service.ProgressReport
	err       error
}

func (s *stubEngine) Evaluate(ctx context.Context, clientID, actionHint string) (*service.EvaluationResult, error) {
	s.gotClient, s.gotHint = clientID, actionHint
	if s.err != nil {
		return nil, s.err
	}
	return &service.EvaluationResult{
		NewAchievements: []model.AwardedAchievement{},
		UpdatedProgress: []*model.AchievementProgress{},
	}, nil
}

func (s *stubEngine) Progress(ctx context.Context, clientID string) (*service.ProgressReport, error) {
	s.gotClient = clientID
	return s.report, s.err
}

type stubScheduler struct {
	results  []service.SweepResult
	sweepErr error
	actor    string
	trigger  *service.TriggerResult
	err      error
}

func (s *stubScheduler) Sweep(ctx context.Context) ([]service.SweepResult, error) {
	return s.results, s.sweepErr
}

func (s *stubScheduler) Trigger(ctx context.Context, clientID, stage, actor string) (*service.TriggerResult, error) {
	s.actor = actor
	return s.trigger, s.err
}

func (s *stubScheduler) Enroll(ctx context.Context, clientID string, serviceType model.ServiceType, actor string) (*model.WorkflowState, error) {
	s.actor = actor
	if s.err != nil {
		return nil, s.err
	}
	return &model.WorkflowState{ClientID: clientID, ServiceType: serviceType}, nil
}

func (s *stubScheduler) History(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error) {
	return nil, s.err
}

type stubFinalizer struct {
	reviewer string
	err      error
}

func (s *stubFinalizer) Finalize(ctx context.Context, cardID, displayName, reviewer string) (*service.FinalizeResult, error) {
	s.reviewer = reviewer
	if s.err != nil {
		return nil, s.err
	}
	return &service.FinalizeResult{Message: "Stress Card sent to Jane Doe"}, nil
}

func request(method, target, body string, identity *model.Identity) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if identity != nil {
		req = req.WithContext(ctxkeys.WithIdentity(req.Context(), identity))
	}
	return req
}

var (
	admin  = &model.Identity{Subject: "coach-7", Role: model.RoleAdmin}
	client = &model.Identity{Subject: "c-1", Role: model.RoleClient}
)

func TestEvaluate(t *testing.T) {
	engine := &stubEngine{}
	h := NewAchievementHandler(engine)

	rec := httptest.NewRecorder()
	h.Evaluate(rec, request(http.MethodPost, "/functions/evaluate-achievements", `{"client_id":"c-1","action_type":"meal_logged"}`, client))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"newAchievements":[],"updatedProgress":[]}`, rec.Body.String())
	assert.Equal(t, "c-1", engine.gotClient)
	assert.Equal(t, "meal_logged", engine.gotHint)
}

func TestEvaluateRejects(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		identity *model.Identity
		err      error
		status   int
	}{
		{"missing body", "", client, nil, http.StatusBadRequest},
		{"malformed body", "{", client, nil, http.StatusBadRequest},
		{"missing client id", `{"action_type":"x"}`, client, nil, http.StatusBadRequest},
		{"other client", `{"client_id":"c-2"}`, client, nil, http.StatusForbidden},
		{"unknown client", `{"client_id":"c-1"}`, admin, repository.ErrClientNotFound, http.StatusNotFound},
		{"store failure", `{"client_id":"c-1"}`, admin, errors.New("connection refused"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewAchievementHandler(&stubEngine{err: tt.err})
			rec := httptest.NewRecorder()

			h.Evaluate(rec, request(http.MethodPost, "/functions/evaluate-achievements", tt.body, tt.identity))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"success":false`)
		})
	}
}

func TestStoreErrorsAreNotLeaked(t *testing.T) {
	h := NewAchievementHandler(&stubEngine{err: errors.New("pq: password authentication failed")})
	rec := httptest.NewRecorder()

	h.Evaluate(rec, request(http.MethodPost, "/", `{"client_id":"c-1"}`, admin))

	assert.JSONEq(t, `{"success":false,"error":"Internal Server Error"}`, rec.Body.String())
}

func TestProgress(t *testing.T) {
	earnedAt := time.Date(2026, 3, 10, 18, 30, 0, 0, time.UTC)
	engine := &stubEngine{report: &service.ProgressReport{
		Progress: []*model.AchievementProgress{
			{ID: "p-1", ClientID: "c-1", AchievementID: "meal-log-50", CurrentValue: 12, TargetValue: 50, LastUpdated: earnedAt},
		},
		Earned: []model.AwardedAchievement{
			{AchievementDefinition: model.AchievementDefinition{ID: "first-meal", Name: "First Meal"}, EarnedAt: earnedAt},
		},
	}}
	h := NewAchievementHandler(engine)

	rec := httptest.NewRecorder()
	h.Progress(rec, request(http.MethodGet, "/functions/achievement-progress?client_id=c-1", "", client))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "c-1", engine.gotClient)

	var body struct {
		Success  bool `json:"success"`
		Progress []struct {
			AchievementID string `json:"achievement_id"`
		} `json:"progress"`
		Earned []struct {
			ID       string    `json:"id"`
			EarnedAt time.Time `json:"earned_at"`
		} `json:"earned"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)
	require.Len(t, body.Progress, 1)
	assert.Equal(t, "meal-log-50", body.Progress[0].AchievementID)
	require.Len(t, body.Earned, 1)
	assert.Equal(t, "first-meal", body.Earned[0].ID)
	assert.True(t, body.Earned[0].EarnedAt.Equal(earnedAt))
}

func TestProgressRejects(t *testing.T) {
	h := NewAchievementHandler(&stubEngine{})

	rec := httptest.NewRecorder()
	h.Progress(rec, request(http.MethodGet, "/functions/achievement-progress", "", admin))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Progress(rec, request(http.MethodGet, "/functions/achievement-progress?client_id=c-2", "", client))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSweep(t *testing.T) {
	h := NewWorkflowHandler(&stubScheduler{results: []service.SweepResult{
		{ClientID: "c-1", Status: service.SweepSuccess, Action: "send_stress_card"},
		{ClientID: "c-2", Status: service.SweepError, Action: "send_sleep_card", Error: "boom"},
	}})
	rec := httptest.NewRecorder()

	h.Sweep(rec, request(http.MethodPost, "/functions/workflow-sweep", "", admin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{
		"success": true,
		"processed": 2,
		"results": [
			{"client_id":"c-1","status":"success","action":"send_stress_card"},
			{"client_id":"c-2","status":"error","action":"send_sleep_card","error":"boom"}
		]
	}`, rec.Body.String())
}

func TestSweepListFailure(t *testing.T) {
	h := NewWorkflowHandler(&stubScheduler{sweepErr: fmt.Errorf("failed to load due workflows: %w", errors.New("timeout"))})
	rec := httptest.NewRecorder()

	h.Sweep(rec, request(http.MethodPost, "/functions/workflow-sweep", "", admin))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestTrigger(t *testing.T) {
	next := "send_sleep_card"
	scheduler := &stubScheduler{trigger: &service.TriggerResult{WorkflowStage: "stress_card_sent", NextAction: &next}}
	h := NewWorkflowHandler(scheduler)
	rec := httptest.NewRecorder()

	h.Trigger(rec, request(http.MethodPost, "/functions/workflow-trigger", `{"client_id":"c-1","stage":"stress_card_sent"}`, admin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"workflow_stage":"stress_card_sent","next_action":"send_sleep_card"}`, rec.Body.String())
	assert.Equal(t, "coach-7", scheduler.actor)
}

func TestTriggerTerminal(t *testing.T) {
	h := NewWorkflowHandler(&stubScheduler{trigger: &service.TriggerResult{WorkflowStage: "paused"}})
	rec := httptest.NewRecorder()

	h.Trigger(rec, request(http.MethodPost, "/functions/workflow-trigger", `{"client_id":"c-1","stage":"paused"}`, admin))

	assert.JSONEq(t, `{"success":true,"workflow_stage":"paused","next_action":null}`, rec.Body.String())
}

func TestTriggerErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repository.ErrWorkflowNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: stage is required", validation.ErrInvalid), http.StatusBadRequest},
	}

	for _, tt := range tests {
		h := NewWorkflowHandler(&stubScheduler{err: tt.err})
		rec := httptest.NewRecorder()

		h.Trigger(rec, request(http.MethodPost, "/functions/workflow-trigger", `{"client_id":"c-1","stage":"x"}`, admin))

		assert.Equal(t, tt.status, rec.Code)
	}
}

func TestEnroll(t *testing.T) {
	h := NewWorkflowHandler(&stubScheduler{})
	rec := httptest.NewRecorder()

	h.Enroll(rec, request(http.MethodPost, "/functions/workflow-enroll", `{"client_id":"c-1","service_type":"hundred_days"}`, admin))
	assert.Equal(t, http.StatusCreated, rec.Code)

	h = NewWorkflowHandler(&stubScheduler{err: repository.ErrWorkflowExists})
	rec = httptest.NewRecorder()

	h.Enroll(rec, request(http.MethodPost, "/functions/workflow-enroll", `{"client_id":"c-1","service_type":"hundred_days"}`, admin))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHistoryEmpty(t *testing.T) {
	h := NewWorkflowHandler(&stubScheduler{})
	rec := httptest.NewRecorder()

	h.History(rec, request(http.MethodGet, "/functions/workflow-history?client_id=c-1", "", admin))

	assert.JSONEq(t, `{"success":true,"history":[]}`, rec.Body.String())
}

func TestFinalize(t *testing.T) {
	finalizer := &stubFinalizer{}
	h := NewCardHandler(finalizer)
	rec := httptest.NewRecorder()

	h.Finalize(rec, request(http.MethodPost, "/functions/finalize-card", `{"card_id":"card-1"}`, admin))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true,"message":"Stress Card sent to Jane Doe"}`, rec.Body.String())
	assert.Equal(t, "coach-7", finalizer.reviewer)
}

func TestFinalizeErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{repository.ErrCardNotFound, http.StatusNotFound},
		{repository.ErrCardAlreadySent, http.StatusConflict},
		{fmt.Errorf("failed to create assessment: %w", errors.New("disk full")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			h := NewCardHandler(&stubFinalizer{err: tt.err})
			rec := httptest.NewRecorder()

			h.Finalize(rec, request(http.MethodPost, "/functions/finalize-card", `{"card_id":"card-1"}`, admin))

			assert.Equal(t, tt.status, rec.Code)
		})
	}
}

type stubPinger struct{ err error }

func (p stubPinger) PingContext(ctx context.Context) error { return p.err }

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(stubPinger{}).Health(rec, request(http.MethodGet, "/healthz", "", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	NewHealthHandler(stubPinger{err: errors.New("down")}).Health(rec, request(http.MethodGet, "/healthz", "", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
