package service

import "errors"

// Failure taxonomy surfaced to callers. Handlers fold all of these into a
// 400 response with the error text as the reason; none of them should ever
// crash the process.
var (
	ErrValidation       = errors.New("invalid input")
	ErrState            = errors.New("operation not allowed in current game state")
	ErrForbidden        = errors.New("insufficient role or ownership")
	ErrCapacity         = errors.New("game is at player capacity")
	ErrPlayers          = errors.New("not enough players")
	ErrNotFound         = errors.New("not found")
	ErrAttemptsExceeded = errors.New("max attempts reached")
	ErrAlreadySolved    = errors.New("task already solved")
	ErrIncorrectAnswer  = errors.New("incorrect answer")
	ErrTrigger          = errors.New("scheduler registration failed")
	ErrInvalidToken     = errors.New("invalid or expired token")
)
