package handler

import (
	"encoding/json"
	"net/http"

	"vulture/internal/model"
	"vulture/internal/service"
)

// TriggerHandler receives fire events from the external scheduler. Delivery
// is at-least-once, so the underlying end transition absorbs duplicates.
type TriggerHandler struct {
	gameSvc   *service.GameService
	sharedKey string
}

// NewTriggerHandler creates a new trigger handler
func NewTriggerHandler(gameSvc *service.GameService, sharedKey string) *TriggerHandler {
	return &TriggerHandler{
		gameSvc:   gameSvc,
		sharedKey: sharedKey,
	}
}

// EndGame handles POST /triggers/end-game
func (h *TriggerHandler) EndGame(w http.ResponseWriter, r *http.Request) {
	if h.sharedKey != "" && r.Header.Get("X-Scheduler-Key") != h.sharedKey {
		writeError(w, http.StatusBadRequest, "invalid scheduler key")
		return
	}

	var event model.EndGameEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if event.GameID == "" {
		writeError(w, http.StatusBadRequest, "missing gameId")
		return
	}

	if err := h.gameSvc.End(r.Context(), event.GameID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"ended": event.GameID})
}
