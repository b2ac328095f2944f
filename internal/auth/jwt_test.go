package auth_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/confetex/api/internal/auth"
)

const secret = "test-secret"

func TestGenerateAndValidateToken(t *testing.T) {
	userID := uuid.New()
	schoolID := uuid.New()

	token, err := auth.GenerateToken(secret, userID, schoolID, "seller")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := auth.ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.UserID != userID {
		t.Errorf("user ID: got %v, want %v", claims.UserID, userID)
	}
	if claims.SchoolID != schoolID {
		t.Errorf("school ID: got %v, want %v", claims.SchoolID, schoolID)
	}
	if claims.Role != "seller" {
		t.Errorf("role: got %q, want seller", claims.Role)
	}
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token, _ := auth.GenerateToken(secret, uuid.New(), uuid.New(), "admin")
	if _, err := auth.ValidateToken("other-secret", token); err == nil {
		t.Error("expected error for wrong secret")
	}
}

func TestRefreshTokenRoundTrip(t *testing.T) {
	userID := uuid.New()
	token, err := auth.GenerateRefreshToken(secret, userID)
	if err != nil {
		t.Fatalf("GenerateRefreshToken: %v", err)
	}
	got, err := auth.ValidateRefreshToken(secret, token)
	if err != nil {
		t.Fatalf("ValidateRefreshToken: %v", err)
	}
	if got != userID {
		t.Errorf("user ID: got %v, want %v", got, userID)
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	token, _ := auth.GenerateToken(secret, uuid.New(), uuid.New(), "viewer")
	if _, err := auth.ValidateRefreshToken(secret, token); err == nil {
		t.Error("access token should not validate as refresh token")
	}
}
