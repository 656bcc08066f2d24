package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"vulture/internal/model"
	"vulture/internal/service"
	"vulture/internal/transport/rest/middleware"
)

// GameHandler handles game lifecycle endpoints
type GameHandler struct {
	gameSvc   *service.GameService
	playerSvc *service.PlayerService
}

// NewGameHandler creates a new game handler
func NewGameHandler(gameSvc *service.GameService, playerSvc *service.PlayerService) *GameHandler {
	return &GameHandler{
		gameSvc:   gameSvc,
		playerSvc: playerSvc,
	}
}

// CreateGameRequest is the request body for creating a game
type CreateGameRequest struct {
	Settings model.GameSettings `json:"settings"`
	Tasks    []model.Task       `json:"tasks"`
}

// Create handles POST /games
func (h *GameHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUserClaims(r.Context())

	var req CreateGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.gameSvc.Create(r.Context(), user, req.Settings, req.Tasks)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Get handles GET /games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if publicView(r) {
		game, err := h.gameSvc.GetPublic(r.Context(), gameID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, game)
		return
	}

	game, err := h.gameSvc.Get(r.Context(), gameID, middleware.GetGameClaims(r.Context()))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

// Action handles POST /games/{id} with a start/stop/restart action body
func (h *GameHandler) Action(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	claims := middleware.GetGameClaims(r.Context())

	var req model.GameActionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Action {
	case "start":
		result, err := h.gameSvc.Start(r.Context(), gameID, claims)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case "stop":
		result, err := h.gameSvc.Stop(r.Context(), gameID, claims)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	case "restart":
		result, err := h.gameSvc.Restart(r.Context(), gameID, claims)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		writeError(w, http.StatusBadRequest, "invalid action")
	}
}

// Delete handles DELETE /games/{id}
func (h *GameHandler) Delete(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if err := h.gameSvc.Delete(r.Context(), gameID, middleware.GetGameClaims(r.Context())); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"deleted": gameID})
}

// Leaderboard handles GET /games/{id}/leaderboard. With ?player=name it
// returns that player's rank instead of the top standings.
func (h *GameHandler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if username := r.URL.Query().Get("player"); username != "" {
		rank, err := h.playerSvc.Rank(r.Context(), gameID, username)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]interface{}{"username": username, "rank": rank})
		return
	}

	top := 20
	if topStr := r.URL.Query().Get("top"); topStr != "" {
		if n, err := strconv.Atoi(topStr); err == nil && n > 0 {
			top = n
		}
	}

	entries, err := h.playerSvc.Leaderboard(r.Context(), gameID, top)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"leaderboard": entries})
}
