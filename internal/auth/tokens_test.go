package auth

import (
	"errors"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestTokenServiceIssueAndVerify(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)

	tokens, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatalf("expected both tokens to be issued, got %+v", tokens)
	}
	if tokens.AccessToken == tokens.RefreshToken {
		t.Fatal("access and refresh tokens must differ")
	}

	userID, err := svc.Verify(tokens.AccessToken, KindAccess)
	if err != nil {
		t.Fatalf("verify access token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected subject user-1, got %q", userID)
	}

	userID, err = svc.Verify(tokens.RefreshToken, KindRefresh)
	if err != nil {
		t.Fatalf("verify refresh token: %v", err)
	}
	if userID != "user-1" {
		t.Fatalf("expected subject user-1, got %q", userID)
	}
}

func TestTokenServiceRejectsWrongKind(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)

	tokens, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := svc.Verify(tokens.AccessToken, KindRefresh); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for access token presented as refresh, got %v", err)
	}
	if _, err := svc.Verify(tokens.RefreshToken, KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for refresh token presented as access, got %v", err)
	}
}

func TestTokenServiceExpiry(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)

	issuedAt := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	svc.NowFunc = func() time.Time { return issuedAt }

	tokens, err := svc.Issue("user-1")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	svc.NowFunc = func() time.Time { return issuedAt.Add(16 * time.Minute) }

	if _, err := svc.Verify(tokens.AccessToken, KindAccess); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after access TTL, got %v", err)
	}
	if _, err := svc.Verify(tokens.RefreshToken, KindRefresh); err != nil {
		t.Fatalf("refresh token should outlive access token: %v", err)
	}

	svc.NowFunc = func() time.Time { return issuedAt.Add(25 * time.Hour) }

	if _, err := svc.Verify(tokens.RefreshToken, KindRefresh); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired after refresh TTL, got %v", err)
	}
}

func TestTokenServiceRejectsForeignSignature(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)
	other := NewTokenService("fedcba9876543210fedcba9876543210", 15*time.Minute, 24*time.Hour)

	tokens, err := other.Issue("user-1")
	if err != nil {
		t.Fatalf("issue tokens: %v", err)
	}

	if _, err := svc.Verify(tokens.AccessToken, KindAccess); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid for foreign signature, got %v", err)
	}
}

func TestTokenServiceRejectsGarbage(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)

	for _, input := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := svc.Verify(input, KindAccess); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", input, err)
		}
	}
}

func TestTokenServiceRequiresUserID(t *testing.T) {
	svc := NewTokenService(testSecret, 15*time.Minute, 24*time.Hour)

	if _, err := svc.Issue(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
}
