package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenRoundTrip(t *testing.T) {
	m := &TokenManager{Secret: "test-secret", TTL: time.Hour}
	token, err := m.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	userID, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("userID=%s want=user-1", userID)
	}
}

func TestVerify_RejectsGarbage(t *testing.T) {
	m := &TokenManager{Secret: "test-secret", TTL: time.Hour}
	if _, err := m.Verify("not-a-token"); err != ErrInvalidToken {
		t.Fatalf("err=%v want ErrInvalidToken", err)
	}
}

func TestVerify_RejectsWrongSecret(t *testing.T) {
	issuer := &TokenManager{Secret: "secret-a", TTL: time.Hour}
	token, err := issuer.Issue("user-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	verifier := &TokenManager{Secret: "secret-b", TTL: time.Hour}
	if _, err := verifier.Verify(token); err != ErrInvalidToken {
		t.Fatalf("err=%v want ErrInvalidToken", err)
	}
}

func TestVerify_RejectsExpiredToken(t *testing.T) {
	m := &TokenManager{Secret: "test-secret", TTL: time.Hour}
	past := time.Now().UTC().Add(-2 * time.Hour)
	claims := jwt.RegisteredClaims{
		Subject:   "user-1",
		IssuedAt:  jwt.NewNumericDate(past),
		ExpiresAt: jwt.NewNumericDate(past.Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.Secret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := m.Verify(token); err != ErrInvalidToken {
		t.Fatalf("err=%v want ErrInvalidToken", err)
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	hash, err := HashPassword("s3nh4-segura")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !CheckPassword("s3nh4-segura", hash) {
		t.Fatal("correct password rejected")
	}
	if CheckPassword("wrong", hash) {
		t.Fatal("wrong password accepted")
	}
}
