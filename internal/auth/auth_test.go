package auth

import (
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/royaltydesk/royaltydesk-server/internal/domain"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("unexpected hash format: %s", hash)
	}

	ok, err := VerifyPassword(hash, "correct horse battery staple")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !ok {
		t.Error("expected password to verify")
	}

	ok, err = VerifyPassword(hash, "wrong password")
	if err != nil {
		t.Fatalf("verify wrong: %v", err)
	}
	if ok {
		t.Error("wrong password must not verify")
	}
}

func TestVerifyPasswordMalformedHash(t *testing.T) {
	ok, err := VerifyPassword("not-a-hash", "anything")
	if err != nil {
		t.Fatalf("expected nil error for malformed hash, got %v", err)
	}
	if ok {
		t.Error("malformed hash must not verify")
	}
}

func TestHashPasswordEmpty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Error("expected error for empty password")
	}
}

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	keyHex := strings.Repeat("ab", 32)
	svc, err := NewTokenService(keyHex, 15*time.Minute, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}
	return svc
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestTokenService(t)

	user := &domain.User{
		ID:      "user_abc",
		Email:   "author@example.com",
		IsAdmin: true,
	}

	token, err := svc.GenerateAccessToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.HasPrefix(token, "v4.local.") {
		t.Errorf("expected v4.local token, got prefix %q", token[:10])
	}

	claims, err := svc.VerifyAccessToken(token)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.UserID != "user_abc" {
		t.Errorf("user_id: got %q", claims.UserID)
	}
	if claims.Email != "author@example.com" {
		t.Errorf("email: got %q", claims.Email)
	}
	if !claims.IsAdmin {
		t.Error("expected admin claim")
	}
	if claims.Subject != "user_abc" {
		t.Errorf("subject: got %q", claims.Subject)
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	keyHex := strings.Repeat("cd", 32)
	svc, err := NewTokenService(keyHex, -1*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("token service: %v", err)
	}

	token, err := svc.GenerateAccessToken(&domain.User{ID: "user_abc"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := svc.VerifyAccessToken(token); err == nil {
		t.Error("expected expired token to be rejected")
	}
}

func TestTokenWrongKeyRejected(t *testing.T) {
	svc := newTestTokenService(t)
	token, err := svc.GenerateAccessToken(&domain.User{ID: "user_abc"})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	other, err := NewTokenService(strings.Repeat("ef", 32), 15*time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("other service: %v", err)
	}
	if _, err := other.VerifyAccessToken(token); err == nil {
		t.Error("token must not verify under a different key")
	}
}

func TestRefreshTokenHashing(t *testing.T) {
	svc := newTestTokenService(t)

	token, err := svc.GenerateRefreshToken()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	h1 := HashRefreshToken(token)
	h2 := HashRefreshToken(token)
	if h1 != h2 {
		t.Error("hash must be deterministic")
	}
	if h1 == token {
		t.Error("hash must differ from the token")
	}
	if _, err := hex.DecodeString(h1); err != nil {
		t.Errorf("hash must be hex: %v", err)
	}
}

func TestLoadOrGenerateKey(t *testing.T) {
	dir := t.TempDir()

	first, err := LoadOrGenerateKey(dir)
	if err != nil {
		t.Fatalf("first load: %v", err)
	}
	if len(first) != keyHexLength {
		t.Fatalf("key length: got %d", len(first))
	}

	second, err := LoadOrGenerateKey(dir)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if first != second {
		t.Error("expected the same key on reload")
	}
}
