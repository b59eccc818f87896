package repository

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound is returned when a refresh session is unknown, expired, rotated
// away or belongs to a revoked generation.
var ErrSessionNotFound = errors.New("refresh session not found")

// SessionRepository tracks live refresh-token sessions keyed by token id (jti).
//
// Layout:
//
//	<prefix>rt:<jti>     -> "<uid>:<ver>" with the refresh TTL
//	<prefix>rtver:<uid>  -> current session generation for the user
//
// RevokeAll bumps the generation, which invalidates every session minted before it.
type SessionRepository interface {
	Create(ctx context.Context, jti string, userID int64, ttl time.Duration) error
	// Rotate atomically retires oldJTI and registers newJTI for the same user.
	// Only one of several concurrent rotations of the same oldJTI can succeed.
	Rotate(ctx context.Context, oldJTI, newJTI string, ttl time.Duration) (int64, error)
	Lookup(ctx context.Context, jti string) (int64, error)
	Revoke(ctx context.Context, jti string) error
	RevokeAll(ctx context.Context, userID int64) error
}

// rotateScript moves KEYS[1] to KEYS[2] with a PX of ARGV[1] and returns the value,
// or nil when KEYS[1] is absent.
var rotateScript = redis.NewScript(`
local v = redis.call("GET", KEYS[1])
if not v then
  return nil
end
redis.call("DEL", KEYS[1])
redis.call("SET", KEYS[2], v, "PX", ARGV[1])
return v
`)

type sessionRepository struct {
	rdb         redis.UniversalClient
	rtPrefix    string
	rtverPrefix string
}

// NewSessionRepository returns a Redis-backed session store. prefix namespaces all keys.
func NewSessionRepository(rdb redis.UniversalClient, prefix string) SessionRepository {
	return &sessionRepository{
		rdb:         rdb,
		rtPrefix:    prefix + "sess:rt:",
		rtverPrefix: prefix + "sess:rtver:",
	}
}

func (s *sessionRepository) Create(ctx context.Context, jti string, userID int64, ttl time.Duration) error {
	jti = strings.TrimSpace(jti)
	if jti == "" || userID <= 0 {
		return fmt.Errorf("create session: invalid jti or user id")
	}
	if ttl <= 0 {
		return fmt.Errorf("create session: ttl must be positive")
	}

	ver, err := s.generation(ctx, userID)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, s.rtPrefix+jti, formatSession(userID, ver), ttl).Err()
}

func (s *sessionRepository) Rotate(ctx context.Context, oldJTI, newJTI string, ttl time.Duration) (int64, error) {
	oldJTI, newJTI = strings.TrimSpace(oldJTI), strings.TrimSpace(newJTI)
	if oldJTI == "" || newJTI == "" || oldJTI == newJTI {
		return 0, ErrSessionNotFound
	}
	if ttl <= 0 {
		return 0, fmt.Errorf("rotate session: ttl must be positive")
	}

	res, err := rotateScript.Run(ctx, s.rdb, []string{s.rtPrefix + oldJTI, s.rtPrefix + newJTI}, ttl.Milliseconds()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, fmt.Errorf("rotate session: %w", err)
	}

	val, ok := res.(string)
	if !ok {
		return 0, ErrSessionNotFound
	}
	uid, tokVer, err := parseSession(val)
	if err != nil {
		_ = s.rdb.Del(ctx, s.rtPrefix+newJTI).Err()
		return 0, ErrSessionNotFound
	}

	curVer, err := s.generation(ctx, uid)
	if err != nil {
		_ = s.rdb.Del(ctx, s.rtPrefix+newJTI).Err()
		return 0, err
	}
	if tokVer != curVer {
		_ = s.rdb.Del(ctx, s.rtPrefix+newJTI).Err()
		return 0, ErrSessionNotFound
	}
	return uid, nil
}

func (s *sessionRepository) Lookup(ctx context.Context, jti string) (int64, error) {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return 0, ErrSessionNotFound
	}

	val, err := s.rdb.Get(ctx, s.rtPrefix+jti).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}

	uid, tokVer, err := parseSession(val)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	curVer, err := s.generation(ctx, uid)
	if err != nil {
		return 0, err
	}
	if tokVer != curVer {
		return 0, ErrSessionNotFound
	}
	return uid, nil
}

func (s *sessionRepository) Revoke(ctx context.Context, jti string) error {
	jti = strings.TrimSpace(jti)
	if jti == "" {
		return nil
	}
	return s.rdb.Del(ctx, s.rtPrefix+jti).Err()
}

func (s *sessionRepository) RevokeAll(ctx context.Context, userID int64) error {
	return s.rdb.Incr(ctx, s.rtverKey(userID)).Err()
}

func (s *sessionRepository) rtverKey(userID int64) string {
	return s.rtverPrefix + strconv.FormatInt(userID, 10)
}

// generation returns the user's current session generation, 0 when never bumped.
func (s *sessionRepository) generation(ctx context.Context, userID int64) (int64, error) {
	v, err := s.rdb.Get(ctx, s.rtverKey(userID)).Result()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("corrupt session generation for user %d: %w", userID, err)
	}
	return n, nil
}

func formatSession(userID, ver int64) string {
	return strconv.FormatInt(userID, 10) + ":" + strconv.FormatInt(ver, 10)
}

func parseSession(s string) (int64, int64, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("bad session value %q", s)
	}
	uid, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || uid <= 0 {
		return 0, 0, fmt.Errorf("bad session uid %q", parts[0])
	}
	ver, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("bad session version %q", parts[1])
	}
	return uid, ver, nil
}
