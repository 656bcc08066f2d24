package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"vulture/internal/model"
	"vulture/internal/service"
	"vulture/internal/transport/rest/middleware"
)

// TaskHandler handles task catalog endpoints
type TaskHandler struct {
	taskSvc *service.TaskService
	gameSvc *service.GameService
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(taskSvc *service.TaskService, gameSvc *service.GameService) *TaskHandler {
	return &TaskHandler{
		taskSvc: taskSvc,
		gameSvc: gameSvc,
	}
}

func (h *TaskHandler) hostFor(r *http.Request, gameID string) bool {
	claims := middleware.GetGameClaims(r.Context())
	return claims != nil && claims.GameID == gameID && claims.Role == model.RoleHost
}

// List handles GET /games/{id}/tasks
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	if publicView(r) {
		tasks, err := h.taskSvc.PublicTasks(r.Context(), gameID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, tasks)
		return
	}

	if !h.hostFor(r, gameID) {
		writeError(w, http.StatusBadRequest, "only the host may view answer keys")
		return
	}
	tasks, err := h.taskSvc.Tasks(r.Context(), gameID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

// Get handles GET /games/{id}/tasks/{taskId}
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, taskID := vars["id"], vars["taskId"]

	if publicView(r) {
		task, err := h.taskSvc.PublicTask(r.Context(), gameID, taskID)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
		return
	}

	if !h.hostFor(r, gameID) {
		writeError(w, http.StatusBadRequest, "only the host may view answer keys")
		return
	}
	task, err := h.taskSvc.Task(r.Context(), gameID, taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// Submit handles POST /games/{id}/tasks/{taskId}/submit
func (h *TaskHandler) Submit(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	gameID, taskID := vars["id"], vars["taskId"]
	claims := middleware.GetGameClaims(r.Context())

	var req model.SubmitTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.gameSvc.Submit(r.Context(), gameID, taskID, claims, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
