package utils

import "testing"

const testSecret = "test-secret"

func TestAccessTokenRoundTrip(t *testing.T) {
	at, err := NewAccessToken(testSecret, 42, "Dana", "MANAGER", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	c, err := ParseAccess(testSecret, at.Token)
	if err != nil {
		t.Fatalf("ParseAccess: %v", err)
	}
	if c.UserID != 42 || c.Name != "Dana" || c.Role != "MANAGER" {
		t.Fatalf("claims mismatch: %+v", c)
	}
}

func TestParseAccessWrongSecret(t *testing.T) {
	at, err := NewAccessToken(testSecret, 1, "a", "ADMIN", 15)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseAccess("other-secret", at.Token); err != ErrInvalidToken {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParseAccessExpired(t *testing.T) {
	// Negative TTL yields a token that is already past its exp claim.
	at, err := NewAccessToken(testSecret, 7, "b", "DEVELOPER", -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	if _, err := ParseAccess(testSecret, at.Token); err != ErrInvalidToken {
		t.Fatalf("expected expired token to be rejected, got %v", err)
	}
	c, err := ParseAccessAllowExpired(testSecret, at.Token)
	if err != nil {
		t.Fatalf("ParseAccessAllowExpired: %v", err)
	}
	if c.UserID != 7 {
		t.Fatalf("claims mismatch: %+v", c)
	}
	// A tampered token must still fail even on the lenient path.
	if _, err := ParseAccessAllowExpired("other-secret", at.Token); err != ErrInvalidToken {
		t.Fatalf("expected tampered token to be rejected, got %v", err)
	}
}

func TestRefreshTokenShape(t *testing.T) {
	rt, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if len(rt.Raw) != 96 {
		t.Fatalf("expected 96 hex chars, got %d", len(rt.Raw))
	}
	again, err := NewRefreshToken(7)
	if err != nil {
		t.Fatalf("NewRefreshToken: %v", err)
	}
	if rt.Raw == again.Raw {
		t.Fatal("two tokens should never collide")
	}
}

func TestResetTokenShape(t *testing.T) {
	rt, err := NewResetToken(0)
	if err != nil {
		t.Fatalf("NewResetToken: %v", err)
	}
	if len(rt.Raw) != 128 {
		t.Fatalf("expected 128 hex chars, got %d", len(rt.Raw))
	}
}

func TestHashTokenRaw(t *testing.T) {
	h1 := HashTokenRaw("abc")
	h2 := HashTokenRaw("abc")
	if h1 != h2 {
		t.Fatal("hash must be deterministic")
	}
	if len(h1) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(h1))
	}
	if h1 == HashTokenRaw("abd") {
		t.Fatal("distinct inputs must not collide")
	}
}
