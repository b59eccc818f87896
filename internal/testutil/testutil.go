package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/cijene-me/cijene-api/internal/auth"
	"github.com/cijene-me/cijene-api/internal/domain"
)

// TestPassword satisfies the password policy.
const TestPassword = "Sup3r!secret"

// NewRedis starts a miniredis server bound to t and returns a client for it.
func NewRedis(t *testing.T) (*redis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb, mr
}

// NewTokenManager returns a manager with short test secrets and the given clock.
func NewTokenManager(now func() time.Time) *auth.TokenManager {
	if now == nil {
		now = time.Now
	}
	return auth.NewTokenManager("test-access", "test-refresh", 30*time.Minute, 30*24*time.Hour, auth.WithClock(now))
}

// SeedUser inserts a user with TestPassword hashed at the minimum bcrypt cost.
func SeedUser(t *testing.T, store *MemStore, email string, role domain.Role) *domain.User {
	t.Helper()
	hash, err := auth.HashPassword(TestPassword, 4)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}
	u := &domain.User{Email: email, FullName: "Test User", PasswordHash: hash, Role: role}
	if err := store.Users().Create(context.Background(), u); err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

// AccessToken issues an access token for u.
func AccessToken(t *testing.T, tm *auth.TokenManager, u *domain.User) string {
	t.Helper()
	tok, _, err := tm.IssueAccess(u.ID, u.Role)
	if err != nil {
		t.Fatalf("issue access token: %v", err)
	}
	return tok
}
