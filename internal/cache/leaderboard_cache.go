package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// LeaderboardCache handles Redis ZSET operations for per-game standings
type LeaderboardCache interface {
	// AddPoints increments a player's score; delta is never negative.
	AddPoints(ctx context.Context, gameID, username string, delta int) error
	GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error)
	GetRank(ctx context.Context, gameID, username string) (int64, error)
	// Delete drops the game's standings entirely.
	Delete(ctx context.Context, gameID string) error
}

// LeaderboardEntry represents a single leaderboard entry
type LeaderboardEntry struct {
	Username string `json:"username"`
	Points   int    `json:"points"`
	Rank     int    `json:"rank"`
}

type leaderboardCache struct {
	client *redis.Client
}

// NewLeaderboardCache creates a new leaderboard cache
func NewLeaderboardCache(client *redis.Client) LeaderboardCache {
	return &leaderboardCache{
		client: client,
	}
}

func (c *leaderboardCache) key(gameID string) string {
	return fmt.Sprintf("game:%s:lb", gameID)
}

func (c *leaderboardCache) AddPoints(ctx context.Context, gameID, username string, delta int) error {
	return c.client.ZIncrBy(ctx, c.key(gameID), float64(delta), username).Err()
}

func (c *leaderboardCache) GetTop(ctx context.Context, gameID string, limit int) ([]LeaderboardEntry, error) {
	results, err := c.client.ZRevRangeWithScores(ctx, c.key(gameID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, len(results))
	for i, z := range results {
		entries[i] = LeaderboardEntry{
			Username: z.Member.(string),
			Points:   int(z.Score),
			Rank:     i + 1,
		}
	}
	return entries, nil
}

func (c *leaderboardCache) GetRank(ctx context.Context, gameID, username string) (int64, error) {
	rank, err := c.client.ZRevRank(ctx, c.key(gameID), username).Result()
	if err == redis.Nil {
		return -1, nil
	}
	return rank + 1, err // 1-indexed
}

func (c *leaderboardCache) Delete(ctx context.Context, gameID string) error {
	return c.client.Del(ctx, c.key(gameID)).Err()
}
