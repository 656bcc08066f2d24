package model

import "github.com/golang-jwt/jwt/v5"

// UserClaims are the platform-level JWT claims issued by the auth provider.
// The game engine verifies these but never issues them.
type UserClaims struct {
	UserID   string `json:"userid"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GameClaims are JWT claims for game-scoped tokens minted on create/join
type GameClaims struct {
	UserID   string     `json:"userid"`
	Username string     `json:"username"`
	GameID   string     `json:"gameId"`
	Role     PlayerRole `json:"role"`
	jwt.RegisteredClaims
}

// AccessCredentials are the token pair granted for game-scoped actions
type AccessCredentials struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// JoinGameRequest is the request body for joining a game
type JoinGameRequest struct {
	Role PlayerRole `json:"role"`
}

// GameActionRequest is the request body for lifecycle actions on a game
type GameActionRequest struct {
	Action string `json:"action"` // start | stop | restart
}

// SubmitTaskRequest is the request body for submitting task answers
type SubmitTaskRequest struct {
	Answers []string `json:"answers"`
}

// EndGameEvent is the payload delivered by the external scheduler when an
// end-game trigger fires
type EndGameEvent struct {
	GameID string `json:"gameId"`
}
