package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"vulture/internal/cache"
	"vulture/internal/model"
	"vulture/internal/repository"
)

// PlayerService is the player registry: per-game membership, roles, and
// cumulative points.
type PlayerService struct {
	gameRepo    repository.GameRepo
	playerRepo  repository.PlayerRepo
	leaderboard cache.LeaderboardCache
	authSvc     *AuthService
	locks       *GameLocks
	maxPlayers  int // global cap, 0 for none
	logger      *slog.Logger
}

// NewPlayerService creates a new player service
func NewPlayerService(
	gameRepo repository.GameRepo,
	playerRepo repository.PlayerRepo,
	leaderboard cache.LeaderboardCache,
	authSvc *AuthService,
	locks *GameLocks,
	maxPlayers int,
	logger *slog.Logger,
) *PlayerService {
	return &PlayerService{
		gameRepo:    gameRepo,
		playerRepo:  playerRepo,
		leaderboard: leaderboard,
		authSvc:     authSvc,
		locks:       locks,
		maxPlayers:  maxPlayers,
		logger:      logger,
	}
}

// Join admits a user into a game as a player and grants game-scoped
// credentials. The game's host cannot join their own game.
func (s *PlayerService) Join(ctx context.Context, gameID string, user *model.UserClaims, role model.PlayerRole) (*model.AccessCredentials, error) {
	if role != model.RolePlayer {
		return nil, fmt.Errorf("%w: cannot join with role %q", ErrValidation, role)
	}

	unlock := s.locks.Lock(gameID)
	defer unlock()

	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}

	if user.Username == game.HostID {
		return nil, fmt.Errorf("%w: the host cannot join their own game as a player", ErrForbidden)
	}
	for _, existing := range game.Players {
		if existing == user.Username {
			return nil, fmt.Errorf("%w: %s already joined this game", ErrValidation, user.Username)
		}
	}

	if game.State.Terminal() {
		return nil, fmt.Errorf("%w: game is %s", ErrState, game.State)
	}
	if game.State == model.GameRunning && !game.Settings.JoinMidGame {
		return nil, fmt.Errorf("%w: game already started", ErrState)
	}

	if game.Settings.MaxPlayers > 0 && len(game.Players) >= game.Settings.MaxPlayers {
		return nil, fmt.Errorf("%w: game allows at most %d players", ErrCapacity, game.Settings.MaxPlayers)
	}
	if s.maxPlayers > 0 && len(game.Players) >= s.maxPlayers {
		return nil, fmt.Errorf("%w: deployment allows at most %d players", ErrCapacity, s.maxPlayers)
	}

	player := &model.Player{
		GameID:   gameID,
		Username: user.Username,
		Points:   0,
		// Nothing required means the player starts the game done.
		Done:     game.Settings.NumRequiredTasks == 0,
		JoinedAt: time.Now().Unix(),
	}
	if err := s.playerRepo.Create(ctx, player); err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}

	game.Players = append(game.Players, user.Username)
	if err := s.gameRepo.Update(ctx, game); err != nil {
		return nil, fmt.Errorf("failed to update game roster: %w", err)
	}

	// Seed the standings entry so new players appear immediately.
	if err := s.leaderboard.AddPoints(ctx, gameID, user.Username, 0); err != nil {
		s.logger.Warn("failed to seed leaderboard entry", "game", gameID, "player", user.Username, "error", err)
	}

	return s.authSvc.GrantGameCredentials(user.UserID, user.Username, gameID, model.RolePlayer)
}

// Players returns full player records for a game; host view.
func (s *PlayerService) Players(ctx context.Context, gameID string) ([]*model.Player, error) {
	if err := s.requireGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.playerRepo.ListByGame(ctx, gameID)
}

// PublicPlayers returns the redacted player list for a game.
func (s *PlayerService) PublicPlayers(ctx context.Context, gameID string) ([]*model.PublicPlayer, error) {
	if err := s.requireGame(ctx, gameID); err != nil {
		return nil, err
	}
	players, err := s.playerRepo.ListByGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	public := make([]*model.PublicPlayer, len(players))
	for i, p := range players {
		public[i] = p.Public()
	}
	return public, nil
}

// Player returns a single full player record. Hosts may read any record;
// players may only read their own.
func (s *PlayerService) Player(ctx context.Context, gameID, username string, viewer *model.GameClaims) (*model.Player, error) {
	if viewer.Role != model.RoleHost && viewer.Username != username {
		return nil, fmt.Errorf("%w: players may only view their own record", ErrForbidden)
	}
	player, err := s.playerRepo.Get(ctx, gameID, username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, username)
	}
	return player, nil
}

// PublicPlayer returns the redacted view of a single player.
func (s *PlayerService) PublicPlayer(ctx context.Context, gameID, username string) (*model.PublicPlayer, error) {
	player, err := s.playerRepo.Get(ctx, gameID, username)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, fmt.Errorf("%w: player %s", ErrNotFound, username)
	}
	return player.Public(), nil
}

// RecordSubmission persists a graded attempt and awards its points. Points
// are only ever added; a failed attempt awards nothing.
func (s *PlayerService) RecordSubmission(ctx context.Context, gameID, username string, sub model.TaskSubmission, points int, done bool) error {
	if err := s.playerRepo.AddSubmission(ctx, gameID, username, sub, points, done); err != nil {
		return fmt.Errorf("failed to record submission: %w", err)
	}
	if points > 0 {
		if err := s.leaderboard.AddPoints(ctx, gameID, username, points); err != nil {
			// Standings are a cache over the registry; log and move on.
			s.logger.Warn("failed to update leaderboard", "game", gameID, "player", username, "error", err)
		}
	}
	return nil
}

// Leaderboard returns the top standings for a game.
func (s *PlayerService) Leaderboard(ctx context.Context, gameID string, top int) ([]cache.LeaderboardEntry, error) {
	if err := s.requireGame(ctx, gameID); err != nil {
		return nil, err
	}
	return s.leaderboard.GetTop(ctx, gameID, top)
}

// Rank returns a player's 1-indexed standing within a game, or -1 if the
// player has no standings entry.
func (s *PlayerService) Rank(ctx context.Context, gameID, username string) (int64, error) {
	if err := s.requireGame(ctx, gameID); err != nil {
		return -1, err
	}
	return s.leaderboard.GetRank(ctx, gameID, username)
}

// RemoveByGame drops all player records and standings for a deleted game.
func (s *PlayerService) RemoveByGame(ctx context.Context, gameID string) error {
	if err := s.playerRepo.DeleteByGame(ctx, gameID); err != nil {
		return err
	}
	if err := s.leaderboard.Delete(ctx, gameID); err != nil {
		s.logger.Warn("failed to drop leaderboard", "game", gameID, "error", err)
	}
	return nil
}

func (s *PlayerService) requireGame(ctx context.Context, gameID string) error {
	game, err := s.gameRepo.GetByID(ctx, gameID)
	if err != nil {
		return err
	}
	if game == nil {
		return fmt.Errorf("%w: game %s", ErrNotFound, gameID)
	}
	return nil
}
