package service

import (
	"errors"
	"testing"

	"vulture/internal/model"
)

func TestGameCredentialsRoundTrip(t *testing.T) {
	svc := NewAuthService("access-test-key", "refresh-test-key")

	creds, err := svc.GrantGameCredentials("u1", "alice", "g1", model.RoleHost)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	claims, err := svc.VerifyGameToken(creds.AccessToken)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "u1" || claims.Username != "alice" || claims.GameID != "g1" || claims.Role != model.RoleHost {
		t.Errorf("claims round trip lost fields: %+v", claims)
	}
}

func TestVerifyGameTokenRejectsBadTokens(t *testing.T) {
	svc := NewAuthService("access-test-key", "refresh-test-key")
	other := NewAuthService("another-key", "refresh-test-key")

	creds, err := other.GrantGameCredentials("u1", "alice", "g1", model.RolePlayer)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	// Wrong signing key.
	if _, err := svc.VerifyGameToken(creds.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("foreign signature: expected ErrInvalidToken, got %v", err)
	}
	// Garbage.
	if _, err := svc.VerifyGameToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("garbage token: expected ErrInvalidToken, got %v", err)
	}
	// A refresh token is not an access token.
	if _, err := svc.VerifyGameToken(creds.RefreshToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("refresh as access: expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshGameCredentials(t *testing.T) {
	svc := NewAuthService("access-test-key", "refresh-test-key")

	creds, err := svc.GrantGameCredentials("u1", "bob", "g1", model.RolePlayer)
	if err != nil {
		t.Fatalf("grant: %v", err)
	}

	fresh, err := svc.RefreshGameCredentials(creds.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	claims, err := svc.VerifyGameToken(fresh.AccessToken)
	if err != nil {
		t.Fatalf("verify refreshed: %v", err)
	}
	if claims.Username != "bob" || claims.GameID != "g1" || claims.Role != model.RolePlayer {
		t.Errorf("refreshed claims lost fields: %+v", claims)
	}

	// An access token cannot be used to refresh.
	if _, err := svc.RefreshGameCredentials(creds.AccessToken); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("access as refresh: expected ErrInvalidToken, got %v", err)
	}
}
