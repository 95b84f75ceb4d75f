package handler

import (
	"context"
	"net/http"

	"github.com/templui/coachflow/internal/service"
)

type cardFinalizer interface {
	Finalize(ctx context.Context, cardID, displayName, reviewer string) (*service.FinalizeResult, error)
}

type CardHandler struct {
	finalizer cardFinalizer
}

func NewCardHandler(finalizer cardFinalizer) *CardHandler {
	return &CardHandler{
		finalizer: finalizer,
	}
}

type finalizeRequest struct {
	CardID      string `json:"card_id"`
	DisplayName string `json:"display_name"`
}

// Finalize handles POST /functions/finalize-card.
func (h *CardHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req finalizeRequest
	err := decodeJSON(r, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.finalizer.Finalize(r.Context(), req.CardID, req.DisplayName, callerSubject(r))
	if err != nil {
		writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": result.Message,
	})
}
