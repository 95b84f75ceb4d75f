package handler

import (
	"context"
	"net/http"

	"github.com/templui/coachflow/internal/model"
	"github.com/templui/coachflow/internal/service"
)

type workflowScheduler interface {
	Sweep(ctx context.Context) ([]service.SweepResult, error)
	Trigger(ctx context.Context, clientID, stage, actor string) (*service.TriggerResult, error)
	Enroll(ctx context.Context, clientID string, serviceType model.ServiceType, actor string) (*model.WorkflowState, error)
	History(ctx context.Context, clientID string) ([]*model.WorkflowHistoryEntry, error)
}

type WorkflowHandler struct {
	scheduler workflowScheduler
}

func NewWorkflowHandler(scheduler workflowScheduler) *WorkflowHandler {
	return &WorkflowHandler{
		scheduler: scheduler,
	}
}

// Sweep handles POST /functions/workflow-sweep. Row failures are reported in
// the results; only a failure to list due rows fails the request.
func (h *WorkflowHandler) Sweep(w http.ResponseWriter, r *http.Request) {
	results, err := h.scheduler.Sweep(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":   true,
		"processed": len(results),
		"results":   results,
	})
}

type triggerRequest struct {
	ClientID string `json:"client_id"`
	Stage    string `json:"stage"`
}

// Trigger handles POST /functions/workflow-trigger.
func (h *WorkflowHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	var req triggerRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.scheduler.Trigger(r.Context(), req.ClientID, req.Stage, callerSubject(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":        true,
		"workflow_stage": result.WorkflowStage,
		"next_action":    result.NextAction,
	})
}

type enrollRequest struct {
	ClientID    string            `json:"client_id"`
	ServiceType model.ServiceType `json:"service_type"`
}

// Enroll handles POST /functions/workflow-enroll.
func (h *WorkflowHandler) Enroll(w http.ResponseWriter, r *http.Request) {
	var req enrollRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	state, err := h.scheduler.Enroll(r.Context(), req.ClientID, req.ServiceType, callerSubject(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success":  true,
		"workflow": state,
	})
}

// History handles GET /functions/workflow-history?client_id=.
func (h *WorkflowHandler) History(w http.ResponseWriter, r *http.Request) {
	entries, err := h.scheduler.History(r.Context(), r.URL.Query().Get("client_id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*model.WorkflowHistoryEntry{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"history": entries,
	})
}
