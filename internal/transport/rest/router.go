package rest

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"vulture/internal/service"
	"vulture/internal/transport/rest/handler"
	"vulture/internal/transport/rest/middleware"
)

// Container holds all dependencies for the router
type Container struct {
	AuthService   *service.AuthService
	GameService   *service.GameService
	TaskService   *service.TaskService
	PlayerService *service.PlayerService
	SchedulerKey  string
	Logger        *slog.Logger
}

// NewRouter creates the API router with all endpoints
func NewRouter(c *Container) http.Handler {
	r := mux.NewRouter()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(c.AuthService)
	gameHandler := handler.NewGameHandler(c.GameService, c.PlayerService)
	playerHandler := handler.NewPlayerHandler(c.PlayerService)
	taskHandler := handler.NewTaskHandler(c.TaskService, c.GameService)
	triggerHandler := handler.NewTriggerHandler(c.GameService, c.SchedulerKey)

	// Initialize middleware
	authMW := middleware.NewAuthMiddleware(c.AuthService)

	// CORS middleware (apply first)
	r.Use(corsMiddleware)
	if c.Logger != nil {
		r.Use(middleware.RequestLogger(c.Logger))
	}

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Public routes
	r.HandleFunc("/auth/refresh", authHandler.Refresh).Methods("POST", "OPTIONS")
	r.HandleFunc("/triggers/end-game", triggerHandler.EndGame).Methods("POST", "OPTIONS")

	// Read routes. A game token is optional here: public views work without
	// one, host-only views check the parsed claims in the handler.
	readRoutes := r.NewRoute().Subrouter()
	readRoutes.Use(authMW.ParseGame)

	readRoutes.HandleFunc("/games/{id}", gameHandler.Get).Methods("GET", "OPTIONS")
	readRoutes.HandleFunc("/games/{id}/players", playerHandler.List).Methods("GET", "OPTIONS")
	readRoutes.HandleFunc("/games/{id}/players/{username}", playerHandler.Get).Methods("GET", "OPTIONS")
	readRoutes.HandleFunc("/games/{id}/tasks", taskHandler.List).Methods("GET", "OPTIONS")
	readRoutes.HandleFunc("/games/{id}/tasks/{taskId}", taskHandler.Get).Methods("GET", "OPTIONS")
	readRoutes.HandleFunc("/games/{id}/leaderboard", gameHandler.Leaderboard).Methods("GET", "OPTIONS")

	// User routes (require user auth)
	userRoutes := r.NewRoute().Subrouter()
	userRoutes.Use(authMW.RequireUser)

	userRoutes.HandleFunc("/games", gameHandler.Create).Methods("POST", "OPTIONS")
	userRoutes.HandleFunc("/games/{id}/players", playerHandler.Join).Methods("POST", "OPTIONS")

	// Game routes (require game-scoped auth)
	gameRoutes := r.NewRoute().Subrouter()
	gameRoutes.Use(authMW.RequireGame)

	gameRoutes.HandleFunc("/games/{id}", gameHandler.Action).Methods("POST", "OPTIONS")
	gameRoutes.HandleFunc("/games/{id}", gameHandler.Delete).Methods("DELETE", "OPTIONS")
	gameRoutes.HandleFunc("/games/{id}/tasks/{taskId}/submit", taskHandler.Submit).Methods("POST", "OPTIONS")

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowedOrigins := os.Getenv("CORS_ALLOWED_ORIGINS")
		if allowedOrigins == "" {
			allowedOrigins = "*"
		}

		allowedMethods := os.Getenv("CORS_ALLOWED_METHODS")
		if allowedMethods == "" {
			allowedMethods = "GET, POST, PUT, DELETE, OPTIONS"
		}

		allowedHeaders := os.Getenv("CORS_ALLOWED_HEADERS")
		if allowedHeaders == "" {
			allowedHeaders = "Content-Type, Authorization"
		}

		w.Header().Set("Access-Control-Allow-Origin", allowedOrigins)
		w.Header().Set("Access-Control-Allow-Methods", allowedMethods)
		w.Header().Set("Access-Control-Allow-Headers", allowedHeaders)

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
