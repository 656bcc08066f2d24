package cache

import (
	"context"
	"sort"
	"sync"
)

// memoryLeaderboard is an in-process LeaderboardCache used by tests and
// local runs without Redis.
type memoryLeaderboard struct {
	mu     sync.RWMutex
	scores map[string]map[string]int // gameID -> username -> points
}

func NewMemoryLeaderboard() LeaderboardCache {
	return &memoryLeaderboard{scores: make(map[string]map[string]int)}
}

func (c *memoryLeaderboard) AddPoints(_ context.Context, gameID, username string, delta int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.scores[gameID] == nil {
		c.scores[gameID] = make(map[string]int)
	}
	c.scores[gameID][username] += delta
	return nil
}

func (c *memoryLeaderboard) GetTop(_ context.Context, gameID string, limit int) ([]LeaderboardEntry, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entries := make([]LeaderboardEntry, 0, len(c.scores[gameID]))
	for username, points := range c.scores[gameID] {
		entries = append(entries, LeaderboardEntry{Username: username, Points: points})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Points != entries[j].Points {
			return entries[i].Points > entries[j].Points
		}
		return entries[i].Username < entries[j].Username
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

func (c *memoryLeaderboard) GetRank(ctx context.Context, gameID, username string) (int64, error) {
	c.mu.RLock()
	size := len(c.scores[gameID])
	c.mu.RUnlock()

	entries, err := c.GetTop(ctx, gameID, size)
	if err != nil {
		return -1, err
	}
	for _, e := range entries {
		if e.Username == username {
			return int64(e.Rank), nil
		}
	}
	return -1, nil
}

func (c *memoryLeaderboard) Delete(_ context.Context, gameID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.scores, gameID)
	return nil
}
