package security

import (
	"errors"
	"testing"
	"time"
)

func newTestTokenManager(t *testing.T, ttl time.Duration) *TokenManager {
	t.Helper()
	manager, err := NewTokenManager("test-secret-0123456789", "registration-service", ttl)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}
	return manager
}

func TestTokenManager_IssueAndParse(t *testing.T) {
	manager := newTestTokenManager(t, 15*time.Minute)

	signed, err := manager.Issue("acc-1", "alice", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	claims, err := manager.Parse(signed)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	if claims.AccountID != "acc-1" {
		t.Fatalf("expected account id acc-1, got %s", claims.AccountID)
	}
	if claims.Username != "alice" {
		t.Fatalf("expected username alice, got %s", claims.Username)
	}
	if claims.Email != "alice@example.com" {
		t.Fatalf("expected email alice@example.com, got %s", claims.Email)
	}
	if claims.Role != "USER" {
		t.Fatalf("expected role USER, got %s", claims.Role)
	}
	if claims.Issuer != "registration-service" {
		t.Fatalf("expected issuer registration-service, got %s", claims.Issuer)
	}
	if claims.Subject != "acc-1" {
		t.Fatalf("expected subject acc-1, got %s", claims.Subject)
	}

	lifetime := claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	if lifetime != 15*time.Minute {
		t.Fatalf("expected 15m lifetime, got %s", lifetime)
	}
}

func TestTokenManager_ParseExpired(t *testing.T) {
	manager := newTestTokenManager(t, time.Nanosecond)

	signed, err := manager.Issue("acc-1", "alice", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	time.Sleep(5 * time.Millisecond)

	if _, err := manager.Parse(signed); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenManager_ParseGarbage(t *testing.T) {
	manager := newTestTokenManager(t, 15*time.Minute)

	if _, err := manager.Parse("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenManager_ParseForeignSignature(t *testing.T) {
	manager := newTestTokenManager(t, 15*time.Minute)

	foreign, err := NewTokenManager("another-secret-9876543210", "registration-service", 15*time.Minute)
	if err != nil {
		t.Fatalf("NewTokenManager returned error: %v", err)
	}

	signed, err := foreign.Issue("acc-1", "alice", "alice@example.com", "USER")
	if err != nil {
		t.Fatalf("Issue returned error: %v", err)
	}

	if _, err := manager.Parse(signed); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestNewTokenManager_RequiresSecret(t *testing.T) {
	if _, err := NewTokenManager("", "registration-service", time.Minute); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestNewTokenManager_DefaultsTTL(t *testing.T) {
	manager := newTestTokenManager(t, 0)

	if manager.TTL() != 15*time.Minute {
		t.Fatalf("expected default 15m TTL, got %s", manager.TTL())
	}
}
