package service

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"vulture/internal/model"
)

const (
	accessTokenTTL  = 15 * time.Minute
	refreshTokenTTL = 3 * time.Hour
)

// AuthService verifies platform-level user tokens and mints game-scoped
// credential pairs. User registration and login belong to the external auth
// provider; this service only shares its signing keys.
type AuthService struct {
	accessKey  []byte
	refreshKey []byte
}

// NewAuthService creates a new auth service
func NewAuthService(accessKey, refreshKey string) *AuthService {
	return &AuthService{
		accessKey:  []byte(accessKey),
		refreshKey: []byte(refreshKey),
	}
}

// VerifyUserToken validates a user access token issued by the auth provider.
func (s *AuthService) VerifyUserToken(tokenString string) (*model.UserClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.UserClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.accessKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.UserClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// VerifyGameToken validates a game-scoped access token.
func (s *AuthService) VerifyGameToken(tokenString string) (*model.GameClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.GameClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.accessKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.GameClaims)
	if !ok || !token.Valid || claims.GameID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GrantGameCredentials upgrades a user identity to game-scoped credentials
// carrying the game id and the user's role within it.
func (s *AuthService) GrantGameCredentials(userID, username, gameID string, role model.PlayerRole) (*model.AccessCredentials, error) {
	now := time.Now()

	access := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.GameClaims{
		UserID:   userID,
		Username: username,
		GameID:   gameID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(accessTokenTTL)),
		},
	})
	accessToken, err := access.SignedString(s.accessKey)
	if err != nil {
		return nil, err
	}

	refresh := jwt.NewWithClaims(jwt.SigningMethodHS256, &model.GameClaims{
		UserID:   userID,
		Username: username,
		GameID:   gameID,
		Role:     role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(refreshTokenTTL)),
		},
	})
	refreshToken, err := refresh.SignedString(s.refreshKey)
	if err != nil {
		return nil, err
	}

	return &model.AccessCredentials{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// RefreshGameCredentials exchanges a valid refresh token for a fresh pair.
func (s *AuthService) RefreshGameCredentials(refreshToken string) (*model.AccessCredentials, error) {
	token, err := jwt.ParseWithClaims(refreshToken, &model.GameClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.refreshKey, nil
	})
	if err != nil {
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*model.GameClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	return s.GrantGameCredentials(claims.UserID, claims.Username, claims.GameID, claims.Role)
}
