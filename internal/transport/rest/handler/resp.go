package handler

import (
	"encoding/json"
	"net/http"
)

// Helper functions shared by all handlers. Every failure, whether malformed
// input, a forbidden role, or an illegal state transition, is reported as a
// 400 with the reason in the body.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

func writeServiceError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusBadRequest, err.Error())
}

// publicView reads the ?public query param; anything but an explicit
// "false" selects the public view.
func publicView(r *http.Request) bool {
	return r.URL.Query().Get("public") != "false"
}
