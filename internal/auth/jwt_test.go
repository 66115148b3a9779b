package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func initSecret(t *testing.T) {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")
	if err := InitJWTSecret(); err != nil {
		t.Fatalf("InitJWTSecret() error = %v", err)
	}
}

func TestGenerateAndVerifyJWT(t *testing.T) {
	initSecret(t)

	token, err := GenerateJWT(42, "user@example.com")
	if err != nil {
		t.Fatalf("GenerateJWT() error = %v", err)
	}

	userID, err := VerifyJWT(token)
	if err != nil {
		t.Fatalf("VerifyJWT() error = %v", err)
	}

	if userID != 42 {
		t.Errorf("VerifyJWT() = %d, want 42", userID)
	}
}

func TestVerifyJWTRejectsGarbage(t *testing.T) {
	initSecret(t)

	if _, err := VerifyJWT("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyJWTRejectsWrongSecret(t *testing.T) {
	initSecret(t)

	claims := jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("other-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := VerifyJWT(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("error = %v, want ErrInvalidToken", err)
	}
}

func TestVerifyJWTReportsExpiry(t *testing.T) {
	initSecret(t)

	claims := jwt.MapClaims{
		"user_id": float64(7),
		"exp":     time.Now().Add(-time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(jwtSecret))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}

	if _, err := VerifyJWT(token); !errors.Is(err, ErrExpiredToken) {
		t.Errorf("error = %v, want ErrExpiredToken", err)
	}
}
