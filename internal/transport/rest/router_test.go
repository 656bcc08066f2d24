package rest

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vulture/internal/cache"
	"vulture/internal/model"
	"vulture/internal/repository"
	"vulture/internal/service"
)

const (
	testAccessKey  = "access-test-key"
	testRefreshKey = "refresh-test-key"
	testTriggerKey = "trigger-test-key"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	gameRepo := repository.NewMemoryGameRepo()
	playerRepo := repository.NewMemoryPlayerRepo()
	locks := service.NewGameLocks()

	authSvc := service.NewAuthService(testAccessKey, testRefreshKey)
	taskSvc := service.NewTaskService(gameRepo, 20)
	playerSvc := service.NewPlayerService(gameRepo, playerRepo, cache.NewMemoryLeaderboard(), authSvc, locks, 0, logger)
	gameSvc := service.NewGameService(gameRepo, playerRepo, taskSvc, playerSvc, authSvc, service.NewNoopTrigger(), locks, logger)

	return NewRouter(&Container{
		AuthService:   authSvc,
		GameService:   gameSvc,
		TaskService:   taskSvc,
		PlayerService: playerSvc,
		SchedulerKey:  testTriggerKey,
	})
}

// userToken mints a platform-level token the way the auth provider would.
func userToken(t *testing.T, userID, username string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.UserClaims{
		UserID:   userID,
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := token.SignedString([]byte(testAccessKey))
	if err != nil {
		t.Fatalf("sign user token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, r http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	}
	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func createGameRequest() map[string]interface{} {
	return map[string]interface{}{
		"settings": map[string]interface{}{
			"name":             "plaza hunt",
			"duration":         3600,
			"numRequiredTasks": 1,
		},
		"tasks": []map[string]interface{}{
			{
				"type":          "multiple choice",
				"question":      "What day is it?",
				"answerChoices": []string{"Saturday", "Sunday"},
				"answers":       []int{1},
				"attempts":      2,
				"points":        25,
			},
		},
	}
}

func createGame(t *testing.T, r http.Handler, hostToken string) *model.CreateGameResult {
	t.Helper()
	w := doRequest(t, r, http.MethodPost, "/games", hostToken, createGameRequest())
	if w.Code != http.StatusOK {
		t.Fatalf("create game: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var result model.CreateGameResult
	decode(t, w, &result)
	return &result
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	w := doRequest(t, r, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestCreateGameRequiresToken(t *testing.T) {
	r := newTestRouter(t)

	w := doRequest(t, r, http.MethodPost, "/games", "", createGameRequest())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing token: expected 400, got %d", w.Code)
	}
	w = doRequest(t, r, http.MethodPost, "/games", "bogus", createGameRequest())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bogus token: expected 400, got %d", w.Code)
	}
}

func TestGameFlow(t *testing.T) {
	r := newTestRouter(t)
	hostToken := userToken(t, "u-host", "alice")

	created := createGame(t, r, hostToken)
	if created.GameID == "" || len(created.TaskIDs) != 1 || created.Creds == nil {
		t.Fatalf("unexpected create result: %+v", created)
	}
	gamePath := "/games/" + created.GameID

	// Public view is open and hides settings internals.
	w := doRequest(t, r, http.MethodGet, gamePath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public get: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var public model.PublicGame
	decode(t, w, &public)
	if public.State != model.GameCreated || public.NumTasks != 1 {
		t.Errorf("unexpected public view: %+v", public)
	}

	// The host's private view includes tasks and settings.
	w = doRequest(t, r, http.MethodGet, gamePath+"?public=false", created.Creds.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("host get: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// bob joins.
	bobToken := userToken(t, "u-bob", "bob")
	w = doRequest(t, r, http.MethodPost, gamePath+"/players", bobToken, model.JoinGameRequest{})
	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var bobCreds model.AccessCredentials
	decode(t, w, &bobCreds)

	// Host starts the game.
	w = doRequest(t, r, http.MethodPost, gamePath, created.Creds.AccessToken, model.GameActionRequest{Action: "start"})
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var change model.StateChangeResult
	decode(t, w, &change)
	if change.State != model.GameRunning {
		t.Fatalf("expected running, got %s", change.State)
	}

	// bob submits the right answer.
	submitPath := gamePath + "/tasks/" + created.TaskIDs[0] + "/submit"
	w = doRequest(t, r, http.MethodPost, submitPath, bobCreds.AccessToken, model.SubmitTaskRequest{Answers: []string{"Sunday"}})
	if w.Code != http.StatusOK {
		t.Fatalf("submit: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var submit model.SubmitResult
	decode(t, w, &submit)
	if !submit.Success || submit.PointsAwarded != 25 {
		t.Fatalf("unexpected submit result: %+v", submit)
	}

	// Standings reflect the score.
	w = doRequest(t, r, http.MethodGet, gamePath+"/leaderboard", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("leaderboard: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var standings struct {
		Leaderboard []cache.LeaderboardEntry `json:"leaderboard"`
	}
	decode(t, w, &standings)
	if len(standings.Leaderboard) != 1 || standings.Leaderboard[0].Username != "bob" || standings.Leaderboard[0].Points != 25 {
		t.Fatalf("unexpected standings: %+v", standings.Leaderboard)
	}

	w = doRequest(t, r, http.MethodGet, gamePath+"/leaderboard?player=bob", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("rank: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var rank struct {
		Username string `json:"username"`
		Rank     int64  `json:"rank"`
	}
	decode(t, w, &rank)
	if rank.Rank != 1 {
		t.Fatalf("expected bob ranked 1, got %+v", rank)
	}

	// Host stops the game.
	w = doRequest(t, r, http.MethodPost, gamePath, created.Creds.AccessToken, model.GameActionRequest{Action: "stop"})
	if w.Code != http.StatusOK {
		t.Fatalf("stop: expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestActionAuthorization(t *testing.T) {
	r := newTestRouter(t)
	hostToken := userToken(t, "u-host", "alice")
	created := createGame(t, r, hostToken)
	gamePath := "/games/" + created.GameID

	// A user token is not a game token.
	w := doRequest(t, r, http.MethodPost, gamePath, hostToken, model.GameActionRequest{Action: "start"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("user token on game route: expected 400, got %d", w.Code)
	}

	// A joined player is not the host.
	bobToken := userToken(t, "u-bob", "bob")
	w = doRequest(t, r, http.MethodPost, gamePath+"/players", bobToken, model.JoinGameRequest{})
	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var bobCreds model.AccessCredentials
	decode(t, w, &bobCreds)

	w = doRequest(t, r, http.MethodPost, gamePath, bobCreds.AccessToken, model.GameActionRequest{Action: "start"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("player start: expected 400, got %d", w.Code)
	}

	// Unknown actions are rejected.
	w = doRequest(t, r, http.MethodPost, gamePath, created.Creds.AccessToken, model.GameActionRequest{Action: "pause"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("unknown action: expected 400, got %d", w.Code)
	}
}

func TestTaskViewsRedactAnswers(t *testing.T) {
	r := newTestRouter(t)
	hostToken := userToken(t, "u-host", "alice")
	created := createGame(t, r, hostToken)
	taskPath := "/games/" + created.GameID + "/tasks/" + created.TaskIDs[0]

	// The public view never carries the answer key.
	w := doRequest(t, r, http.MethodGet, taskPath, "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("public task: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var view map[string]interface{}
	decode(t, w, &view)
	if _, ok := view["answers"]; ok {
		t.Error("public task view must not include the answer key")
	}
	if view["question"] != "What day is it?" {
		t.Errorf("unexpected public task view: %v", view)
	}

	// The host view does.
	w = doRequest(t, r, http.MethodGet, taskPath+"?public=false", created.Creds.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("host task: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var hostView map[string]interface{}
	decode(t, w, &hostView)
	if _, ok := hostView["answers"]; !ok {
		t.Error("host task view should include the answer key")
	}

	// A player asking for the host view is refused.
	bobToken := userToken(t, "u-bob", "bob")
	w = doRequest(t, r, http.MethodPost, "/games/"+created.GameID+"/players", bobToken, model.JoinGameRequest{})
	if w.Code != http.StatusOK {
		t.Fatalf("join: expected 200, got %d", w.Code)
	}
	var bobCreds model.AccessCredentials
	decode(t, w, &bobCreds)
	w = doRequest(t, r, http.MethodGet, taskPath+"?public=false", bobCreds.AccessToken, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("player host-view: expected 400, got %d", w.Code)
	}
}

func TestEndGameTriggerCallback(t *testing.T) {
	r := newTestRouter(t)
	hostToken := userToken(t, "u-host", "alice")
	created := createGame(t, r, hostToken)
	gamePath := "/games/" + created.GameID

	w := doRequest(t, r, http.MethodPost, gamePath, created.Creds.AccessToken, model.GameActionRequest{Action: "start"})
	if w.Code != http.StatusOK {
		t.Fatalf("start: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	fire := func() *httptest.ResponseRecorder {
		body, _ := json.Marshal(model.EndGameEvent{GameID: created.GameID})
		req := httptest.NewRequest(http.MethodPost, "/triggers/end-game", bytes.NewReader(body))
		req.Header.Set("X-Scheduler-Key", testTriggerKey)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	// Wrong shared key is refused.
	body, _ := json.Marshal(model.EndGameEvent{GameID: created.GameID})
	req := httptest.NewRequest(http.MethodPost, "/triggers/end-game", bytes.NewReader(body))
	req.Header.Set("X-Scheduler-Key", "wrong")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("wrong key: expected 400, got %d", rec.Code)
	}

	// First fire ends the game; the duplicate is absorbed.
	if w := fire(); w.Code != http.StatusOK {
		t.Fatalf("fire: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if w := fire(); w.Code != http.StatusOK {
		t.Fatalf("duplicate fire: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodGet, gamePath, "", nil)
	var public model.PublicGame
	decode(t, w, &public)
	if public.State != model.GameEnded {
		t.Fatalf("expected ended, got %s", public.State)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	r := newTestRouter(t)
	hostToken := userToken(t, "u-host", "alice")
	created := createGame(t, r, hostToken)

	w := doRequest(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{
		"refreshToken": created.Creds.RefreshToken,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("refresh: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var creds model.AccessCredentials
	decode(t, w, &creds)
	if creds.AccessToken == "" || creds.RefreshToken == "" {
		t.Fatal("expected a fresh credential pair")
	}

	// The new access token works on host routes.
	w = doRequest(t, r, http.MethodGet, "/games/"+created.GameID+"?public=false", creds.AccessToken, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("refreshed token: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = doRequest(t, r, http.MethodPost, "/auth/refresh", "", map[string]string{"refreshToken": "junk"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("junk refresh: expected 400, got %d", w.Code)
	}
}
