package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"vulture/internal/model"
	"vulture/internal/repository"
)

// GameService owns the game lifecycle state machine:
//
//	created -> running -> {stopped, ended}
//
// ended is terminal; stopped is terminal for gameplay but permits a restart,
// which spawns a brand-new game from the old one's template. Every operation
// on a game runs under that game's lock, including ends delivered by the
// external scheduler.
type GameService struct {
	gameRepo   repository.GameRepo
	playerRepo repository.PlayerRepo
	taskSvc    *TaskService
	playerSvc  *PlayerService
	authSvc    *AuthService
	trigger    EndGameTrigger
	locks      *GameLocks
	logger     *slog.Logger
}

// NewGameService creates a new game service
func NewGameService(
	gameRepo repository.GameRepo,
	playerRepo repository.PlayerRepo,
	taskSvc *TaskService,
	playerSvc *PlayerService,
	authSvc *AuthService,
	trigger EndGameTrigger,
	locks *GameLocks,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		gameRepo:   gameRepo,
		playerRepo: playerRepo,
		taskSvc:    taskSvc,
		playerSvc:  playerSvc,
		authSvc:    authSvc,
		trigger:    trigger,
		locks:      locks,
		logger:     logger,
	}
}

// Create validates the settings and task specs, mints host credentials, and
// stores a new game in the created state.
func (s *GameService) Create(ctx context.Context, user *model.UserClaims, settings model.GameSettings, taskSpecs []model.Task) (*model.CreateGameResult, error) {
	if err := validateSettings(&settings, len(taskSpecs)); err != nil {
		return nil, err
	}

	gameID := uuid.NewString()
	tasks, taskIDs, err := s.taskSvc.CreateTasks(gameID, taskSpecs)
	if err != nil {
		return nil, err
	}

	creds, err := s.authSvc.GrantGameCredentials(user.UserID, user.Username, gameID, model.RoleHost)
	if err != nil {
		return nil, fmt.Errorf("failed to mint host credentials: %w", err)
	}

	settings.StartTime = 0
	settings.EndTime = 0
	game := &model.Game{
		ID:              gameID,
		Settings:        settings,
		Tasks:           tasks,
		State:           model.GameCreated,
		HostID:          user.Username,
		HostAccessToken: creds.AccessToken,
		Players:         []string{},
		CreatedAt:       time.Now().Unix(),
	}
	if err := s.gameRepo.Create(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	s.logger.Info("game created", "game", gameID, "host", user.Username, "tasks", len(tasks))
	return &model.CreateGameResult{
		Creds:   creds,
		GameID:  gameID,
		TaskIDs: taskIDs,
	}, nil
}

func validateSettings(settings *model.GameSettings, numTasks int) error {
	if settings.Duration < 0 {
		return fmt.Errorf("%w: duration must be >= 0", ErrValidation)
	}
	if settings.MinPlayers < 0 || settings.MaxPlayers < 0 {
		return fmt.Errorf("%w: player bounds must be >= 0", ErrValidation)
	}
	if settings.MinPlayers > 0 && settings.MaxPlayers > 0 && settings.MinPlayers > settings.MaxPlayers {
		return fmt.Errorf("%w: minPlayers must not exceed maxPlayers", ErrValidation)
	}
	if settings.NumRequiredTasks < 0 || settings.NumRequiredTasks > numTasks {
		return fmt.Errorf("%w: numRequiredTasks must be between 0 and the number of tasks", ErrValidation)
	}
	return nil
}

// Get returns the full game; only its host may see it.
func (s *GameService) Get(ctx context.Context, gameID string, claims *model.GameClaims) (*model.Game, error) {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(game, claims); err != nil {
		return nil, err
	}
	return game, nil
}

// GetPublic returns the unprivileged view of a game.
func (s *GameService) GetPublic(ctx context.Context, gameID string) (*model.PublicGame, error) {
	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return game.Public(), nil
}

// Start transitions a created game to running. With a duration configured it
// computes the deadline and arms the end-game trigger; a trigger failure is
// logged for reconciliation but never rolls back the transition.
func (s *GameService) Start(ctx context.Context, gameID string, claims *model.GameClaims) (*model.StateChangeResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(game, claims); err != nil {
		return nil, err
	}
	if game.State != model.GameCreated {
		return nil, fmt.Errorf("%w: cannot start a %s game", ErrState, game.State)
	}
	if len(game.Players) < game.Settings.MinPlayers {
		return nil, fmt.Errorf("%w: %d joined, %d required", ErrPlayers, len(game.Players), game.Settings.MinPlayers)
	}

	now := time.Now()
	game.State = model.GameRunning
	game.Settings.StartTime = now.Unix()
	if game.Settings.Duration > 0 {
		game.Settings.EndTime = now.Unix() + game.Settings.Duration
	} else {
		game.Settings.EndTime = 0
	}
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to start game: %w", err)
	}

	if game.Settings.Duration > 0 {
		fireAt := now.Add(time.Duration(game.Settings.Duration) * time.Second)
		if err := s.trigger.Arm(ctx, gameID, fireAt); err != nil {
			// The game is running regardless; an orphaned or missing
			// schedule is reconciled out of band.
			s.logger.Error("failed to arm end-game trigger", "game", gameID, "error", err)
		}
	}

	s.logger.Info("game started", "game", gameID, "endTime", game.Settings.EndTime)
	return &model.StateChangeResult{
		State:     game.State,
		StartTime: game.Settings.StartTime,
		EndTime:   game.Settings.EndTime,
	}, nil
}

// Stop transitions a running game to stopped and tears down its trigger.
func (s *GameService) Stop(ctx context.Context, gameID string, claims *model.GameClaims) (*model.StateChangeResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(game, claims); err != nil {
		return nil, err
	}
	if game.State != model.GameRunning {
		return nil, fmt.Errorf("%w: cannot stop a %s game", ErrState, game.State)
	}

	// Disarm on every exit path from here on, even if the write fails.
	defer s.disarm(ctx, gameID)

	game.State = model.GameStopped
	game.Settings.EndTime = time.Now().Unix()
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to stop game: %w", err)
	}

	s.logger.Info("game stopped", "game", gameID)
	return &model.StateChangeResult{
		State:     game.State,
		StartTime: game.Settings.StartTime,
		EndTime:   game.Settings.EndTime,
	}, nil
}

// End transitions a running game to ended. It is invoked by the scheduler's
// fire callback, which delivers at least once, so a second call (or a call
// racing a manual stop) is absorbed as a no-op.
func (s *GameService) End(ctx context.Context, gameID string) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		// Late fire for a deleted game.
		s.logger.Info("end-game trigger fired for unknown game", "game", gameID)
		return nil
	}
	if game.State != model.GameRunning {
		s.logger.Info("end-game trigger absorbed", "game", gameID, "state", game.State)
		return nil
	}

	defer s.disarm(ctx, gameID)

	game.State = model.GameEnded
	game.Settings.EndTime = time.Now().Unix()
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return fmt.Errorf("failed to end game: %w", err)
	}

	s.logger.Info("game ended", "game", gameID)
	return nil
}

// Restart creates a brand-new game from an existing game's settings and task
// templates. The original game keeps its state; only its schedule, if any,
// is torn down.
func (s *GameService) Restart(ctx context.Context, gameID string, claims *model.GameClaims) (*model.CreateGameResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if err := requireHost(game, claims); err != nil {
		return nil, err
	}
	if game.State != model.GameRunning && game.State != model.GameStopped {
		return nil, fmt.Errorf("%w: cannot restart a %s game", ErrState, game.State)
	}

	s.disarm(ctx, gameID)

	specs := make([]model.Task, len(game.Tasks))
	for i, task := range game.Tasks {
		task.ID = ""
		task.GameID = ""
		specs[i] = task
	}
	user := &model.UserClaims{UserID: claims.UserID, Username: claims.Username}
	result, err := s.Create(ctx, user, game.Settings, specs)
	if err != nil {
		return nil, err
	}

	s.logger.Info("game restarted", "game", gameID, "newGame", result.GameID)
	return result, nil
}

// Delete removes a game, its tasks, and its players from any state. The
// second delete for the same id reports not found.
func (s *GameService) Delete(ctx context.Context, gameID string, claims *model.GameClaims) error {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return err
	}
	if err := requireHost(game, claims); err != nil {
		return err
	}

	defer s.disarm(ctx, gameID)

	if err := s.playerSvc.RemoveByGame(ctx, gameID); err != nil {
		return fmt.Errorf("failed to remove players: %w", err)
	}
	deleted, err := s.gameRepo.Delete(ctx, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game: %w", err)
	}
	if !deleted {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	s.locks.Forget(gameID)
	s.logger.Info("game deleted", "game", gameID)
	return nil
}

// Submit grades a player's answers for a task and awards points on success.
func (s *GameService) Submit(ctx context.Context, gameID, taskID string, claims *model.GameClaims, answers []string) (*model.SubmitResult, error) {
	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.load(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.State != model.GameRunning {
		return nil, fmt.Errorf("%w: game is not running", ErrState)
	}
	if claims.Role != model.RolePlayer || claims.GameID != gameID {
		return nil, fmt.Errorf("%w: only joined players may submit", ErrForbidden)
	}

	task := game.Task(taskID)
	if task == nil {
		return nil, fmt.Errorf("%w: task %s", ErrNotFound, taskID)
	}

	player, err := s.playerRepo.Get(ctx, gameID, claims.Username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("%w: %s has not joined this game", ErrForbidden, claims.Username)
	}

	if player.Solved(taskID) {
		return nil, fmt.Errorf("%w: task %s", ErrAlreadySolved, taskID)
	}
	used := player.AttemptsUsed(taskID)
	if used >= task.Attempts {
		return nil, fmt.Errorf("%w: task %s", ErrAttemptsExceeded, taskID)
	}
	attemptNumber := used + 1

	correct, points := s.taskSvc.Grade(task, answers, attemptNumber)
	sub := model.TaskSubmission{
		ID:             uuid.NewString(),
		TaskID:         taskID,
		Answers:        answers,
		SubmissionTime: time.Now().UnixMilli(),
		Success:        correct,
		PointsAwarded:  points,
	}

	done := false
	if correct && !player.Done && game.Settings.NumRequiredTasks > 0 {
		done = player.CompletedTasks()+1 >= game.Settings.NumRequiredTasks
	}

	if err := s.playerSvc.RecordSubmission(ctx, gameID, claims.Username, sub, points, done); err != nil {
		return nil, err
	}

	if !correct {
		if attemptNumber >= task.Attempts {
			return nil, fmt.Errorf("%w: task %s", ErrAttemptsExceeded, taskID)
		}
		return nil, fmt.Errorf("%w: %d of %d attempts used", ErrIncorrectAnswer, attemptNumber, task.Attempts)
	}

	return &model.SubmitResult{
		Success:        true,
		PointsAwarded:  points,
		SubmissionTime: sub.SubmissionTime,
	}, nil
}

func (s *GameService) load(ctx context.Context, gameID string) (*model.Game, error) {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return game, nil
}

// disarm tears down the game's schedule registration; absence is fine.
func (s *GameService) disarm(ctx context.Context, gameID string) {
	if err := s.trigger.Disarm(ctx, gameID); err != nil {
		s.logger.Error("failed to disarm end-game trigger", "game", gameID, "error", err)
	}
}

func requireHost(game *model.Game, claims *model.GameClaims) error {
	if claims == nil || claims.Role != model.RoleHost || claims.GameID != game.ID || claims.Username != game.HostID {
		return fmt.Errorf("%w: only the host may do this", ErrForbidden)
	}
	return nil
}
