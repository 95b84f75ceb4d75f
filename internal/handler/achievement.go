package handler

import (
	"context"
	"net/http"

	"github.com/templui/coachflow/internal/ctxkeys"
	"github.com/templui/coachflow/internal/service"
	"github.com/templui/coachflow/internal/validation"
)

type achievementEngine interface {
	Evaluate(ctx context.Context, clientID, actionHint string) (*service.EvaluationResult, error)
	Progress(ctx context.Context, clientID string) (*service.ProgressReport, error)
}

type AchievementHandler struct {
	engine achievementEngine
}

func NewAchievementHandler(engine achievementEngine) *AchievementHandler {
	return &AchievementHandler{
		engine: engine,
	}
}

type evaluateRequest struct {
	ClientID   string `json:"client_id"`
	ActionType string `json:"action_type"`
}

// Evaluate handles POST /functions/evaluate-achievements.
func (h *AchievementHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req evaluateRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	err = validation.Required("client_id", req.ClientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !ctxkeys.Identity(r.Context()).CanActFor(req.ClientID) {
		writeError(w, r, service.ErrForbidden)
		return
	}

	result, err := h.engine.Evaluate(r.Context(), req.ClientID, req.ActionType)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// Progress handles GET /functions/achievement-progress?client_id=.
func (h *AchievementHandler) Progress(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	err := validation.Required("client_id", clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !ctxkeys.Identity(r.Context()).CanActFor(clientID) {
		writeError(w, r, service.ErrForbidden)
		return
	}

	report, err := h.engine.Progress(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"progress": report.Progress,
		"earned":   report.Earned,
	})
}
