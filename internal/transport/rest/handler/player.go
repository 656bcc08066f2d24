package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"vulture/internal/model"
	"vulture/internal/service"
	"vulture/internal/transport/rest/middleware"
)

// PlayerHandler handles player registry endpoints
type PlayerHandler struct {
	playerSvc *service.PlayerService
}

// NewPlayerHandler creates a new player handler
func NewPlayerHandler(playerSvc *service.PlayerService) *PlayerHandler {
	return &PlayerHandler{playerSvc: playerSvc}
}

// Join handles POST /games/{id}/players
func (h *PlayerHandler) Join(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]
	user := middleware.GetUserClaims(r.Context())

	var req model.JoinGameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Role == "" {
		req.Role = model.RolePlayer
	}
	if !req.Role.Valid() {
		writeError(w, http.StatusBadRequest, "unknown role")
		return
	}

	creds, err := h.playerSvc.Join(r.Context(), gameID, user, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, creds)
}

// List handles GET /games/{id}/players
func (h *PlayerHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if publicView(r) {
		players, err := h.playerSvc.PublicPlayers(r.Context(), gameID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, players)
		return
	}

	claims := middleware.GetGameClaims(r.Context())
	if claims == nil || claims.GameID != gameID || claims.Role != model.RoleHost {
		writeError(w, http.StatusBadRequest, "only the host may view full player records")
		return
	}
	players, err := h.playerSvc.Players(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// Get handles GET /games/{id}/players/{username}
func (h *PlayerHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, username := vars["id"], vars["username"]

	if publicView(r) {
		player, err := h.playerSvc.PublicPlayer(r.Context(), gameID, username)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, player)
		return
	}

	claims := middleware.GetGameClaims(r.Context())
	if claims == nil || claims.GameID != gameID {
		writeError(w, http.StatusBadRequest, "must have a game token for this operation")
		return
	}
	player, err := h.playerSvc.Player(r.Context(), gameID, username, claims)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, player)
}
