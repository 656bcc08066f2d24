package service

import "sync"

// GameLocks serializes read-modify-write operations per game. Operations on
// different games never contend; within one game, lifecycle transitions,
// joins, and submissions all funnel through the same mutex, including ends
// delivered by the external scheduler.
type GameLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGameLocks creates an empty lock table.
func NewGameLocks() *GameLocks {
	return &GameLocks{locks: make(map[string]*sync.Mutex)}
}

// Lock acquires the mutex for a game and returns its release func.
func (l *GameLocks) Lock(gameID string) func() {
	l.mu.Lock()
	m, ok := l.locks[gameID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[gameID] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// Forget drops the lock entry for a deleted game. Callers must not hold the
// game's lock concurrently with new acquisitions after this point, which is
// guaranteed once the game document is gone.
func (l *GameLocks) Forget(gameID string) {
	l.mu.Lock()
	delete(l.locks, gameID)
	l.mu.Unlock()
}
