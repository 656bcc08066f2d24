package repository

import (
	"context"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"vulture/internal/model"
)

// In-memory implementations backing tests and local development without a
// MongoDB instance. They mirror the not-found semantics of the Mongo repos.

type memoryGameRepo struct {
	mu    sync.RWMutex
	games map[string]model.Game
}

func NewMemoryGameRepo() GameRepo {
	return &memoryGameRepo{games: make(map[string]model.Game)}
}

func (r *memoryGameRepo) Create(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.games[game.ID] = cloneGame(game)
	return nil
}

func (r *memoryGameRepo) GetByID(_ context.Context, id string) (*model.Game, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	game, ok := r.games[id]
	if !ok {
		return nil, nil
	}
	copied := cloneGame(&game)
	return &copied, nil
}

func (r *memoryGameRepo) Update(_ context.Context, game *model.Game) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[game.ID]; !ok {
		return mongo.ErrNoDocuments
	}
	r.games[game.ID] = cloneGame(game)
	return nil
}

func (r *memoryGameRepo) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[id]; !ok {
		return false, nil
	}
	delete(r.games, id)
	return true, nil
}

func cloneGame(g *model.Game) model.Game {
	copied := *g
	copied.Tasks = append([]model.Task(nil), g.Tasks...)
	copied.Players = append([]string(nil), g.Players...)
	return copied
}

type memoryPlayerRepo struct {
	mu      sync.RWMutex
	players map[string]model.Player // keyed by gameID + "/" + username
}

func NewMemoryPlayerRepo() PlayerRepo {
	return &memoryPlayerRepo{players: make(map[string]model.Player)}
}

func playerKey(gameID, username string) string {
	return gameID + "/" + username
}

func (r *memoryPlayerRepo) Create(_ context.Context, player *model.Player) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}
	r.players[playerKey(player.GameID, player.Username)] = clonePlayer(player)
	return nil
}

func (r *memoryPlayerRepo) Get(_ context.Context, gameID, username string) (*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	player, ok := r.players[playerKey(gameID, username)]
	if !ok {
		return nil, nil
	}
	copied := clonePlayer(&player)
	return &copied, nil
}

func (r *memoryPlayerRepo) ListByGame(_ context.Context, gameID string) ([]*model.Player, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var players []*model.Player
	for _, player := range r.players {
		if player.GameID == gameID {
			copied := clonePlayer(&player)
			players = append(players, &copied)
		}
	}
	return players, nil
}

func (r *memoryPlayerRepo) AddSubmission(_ context.Context, gameID, username string, sub model.TaskSubmission, points int, done bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := playerKey(gameID, username)
	player, ok := r.players[key]
	if !ok {
		return mongo.ErrNoDocuments
	}
	if sub.ID == "" {
		sub.ID = primitive.NewObjectID().Hex()
	}
	player.TasksSubmitted = append(player.TasksSubmitted, sub)
	if points > 0 {
		player.Points += points
	}
	if done {
		player.Done = true
	}
	r.players[key] = player
	return nil
}

func (r *memoryPlayerRepo) DeleteByGame(_ context.Context, gameID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for key, player := range r.players {
		if player.GameID == gameID {
			delete(r.players, key)
		}
	}
	return nil
}

func clonePlayer(p *model.Player) model.Player {
	copied := *p
	copied.TasksSubmitted = append([]model.TaskSubmission(nil), p.TasksSubmitted...)
	return copied
}
