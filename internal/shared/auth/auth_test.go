package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssuerRoundTrip(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Hour, "dev")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	token, err := issuer.Sign("user-1", Claims{Name: "alice", Provider: "local"})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	claims, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Name != "alice" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestIssuerRejectsExpiredAndForeignTokens(t *testing.T) {
	issuer, err := NewIssuer("test-secret", time.Minute, "dev")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	base := time.Date(2026, time.January, 1, 12, 0, 0, 0, time.UTC)
	issuer.now = func() time.Time { return base }
	token, err := issuer.Sign("user-1", Claims{})
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}

	issuer.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := issuer.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected expired token to fail, got %v", err)
	}

	other, err := NewIssuer("other-secret", time.Minute, "dev")
	if err != nil {
		t.Fatalf("NewIssuer: %v", err)
	}
	other.now = func() time.Time { return base }
	issuer.now = func() time.Time { return base }
	if _, err := other.Verify(token); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected foreign secret to fail, got %v", err)
	}
	if _, err := issuer.Verify("not-a-token"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expected garbage token to fail, got %v", err)
	}
}

func TestNewIssuerRequiresSecretInProduction(t *testing.T) {
	if _, err := NewIssuer("", time.Hour, "production"); err == nil {
		t.Fatalf("expected error without secret in production")
	}
	if _, err := NewIssuer("", time.Hour, "dev"); err != nil {
		t.Fatalf("expected dev fallback secret, got %v", err)
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cret-pass")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "s3cret-pass" || !strings.HasPrefix(hash, "$2") {
		t.Fatalf("expected bcrypt hash, got %q", hash)
	}
	if !CheckPassword(hash, "s3cret-pass") {
		t.Fatalf("expected password to match")
	}
	if CheckPassword(hash, "wrong") {
		t.Fatalf("expected wrong password to fail")
	}
	if CheckPassword("", "anything") {
		t.Fatalf("expected empty hash to fail")
	}
	if _, err := HashPassword(""); err == nil {
		t.Fatalf("expected empty password to be rejected")
	}
}
