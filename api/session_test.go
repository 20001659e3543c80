package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestCookieSessions(t *testing.T) {
	sessions, err := NewCookieSessions(strings.Repeat("x", 32))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }
	ctx := context.Background()

	token, err := sessions.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ok, _ := sessions.Valid(ctx, token); !ok {
		t.Fatalf("expected fresh token to be valid")
	}

	other, _ := sessions.Create(ctx)
	if other == token {
		t.Fatalf("expected distinct tokens")
	}

	tampered := []byte(token)
	if tampered[20] == 'A' {
		tampered[20] = 'B'
	} else {
		tampered[20] = 'A'
	}
	if ok, _ := sessions.Valid(ctx, string(tampered)); ok {
		t.Fatalf("expected tampered token to be rejected")
	}
	if ok, _ := sessions.Valid(ctx, "garbage"); ok {
		t.Fatalf("expected garbage token to be rejected")
	}

	now = now.Add(sessionTTL + time.Second)
	if ok, _ := sessions.Valid(ctx, token); ok {
		t.Fatalf("expected token to expire after the session ttl")
	}
}

func TestNewCookieSessions_RequiresKey(t *testing.T) {
	if _, err := NewCookieSessions("short"); err == nil {
		t.Fatalf("expected error for short secret")
	}
}

func TestCookieSessions_DestroyRevokesToken(t *testing.T) {
	sessions, err := NewCookieSessions(strings.Repeat("x", 32))
	if err != nil {
		t.Fatal(err)
	}
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }
	ctx := context.Background()

	kept, _ := sessions.Create(ctx)
	dropped, _ := sessions.Create(ctx)

	if err := sessions.Destroy(ctx, dropped); err != nil {
		t.Fatal(err)
	}
	if ok, _ := sessions.Valid(ctx, dropped); ok {
		t.Fatalf("expected destroyed token to be rejected")
	}
	if ok, _ := sessions.Valid(ctx, kept); !ok {
		t.Fatalf("expected other sessions to stay valid")
	}
	if err := sessions.Destroy(ctx, "garbage"); err != nil {
		t.Fatalf("expected unknown token to be ignored, got %v", err)
	}

	now = now.Add(sessionTTL + time.Second)
	if err := sessions.Destroy(ctx, kept); err != nil {
		t.Fatal(err)
	}
	if n := len(sessions.revoked); n != 0 {
		t.Fatalf("expected expired revocations to be pruned, got %d", n)
	}
}

func TestLogout_RevokesCookieSession(t *testing.T) {
	env := newTestEnv(t)
	sessions, err := NewCookieSessions(strings.Repeat("x", 32))
	if err != nil {
		t.Fatal(err)
	}
	env.handler = NewServer(Options{
		Store:        env.store,
		Digest:       env.digest,
		Sessions:     sessions,
		SitePassword: testPassword,
	}).Routes()

	env.login(t)
	stolen := *env.cookie

	if w := env.do(t, http.MethodPost, "/api/auth/logout", nil); w.Code != http.StatusOK {
		t.Fatalf("logout failed: %d", w.Code)
	}
	env.cookie = &stolen
	if w := env.do(t, http.MethodGet, "/api/messages", nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected a logged-out cookie to be refused, got %d", w.Code)
	}
}
