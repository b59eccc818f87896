package cache

import (
	"context"
	"crypto/sha1"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Namespace groups cached responses that are invalidated together.
type Namespace string

const (
	StoreBrands    Namespace = "store_brands"
	StoreLocations Namespace = "store_locations"
	Categories     Namespace = "categories"
	Products       Namespace = "products"
	ProductEntries Namespace = "product_entries"
)

// Store is a Redis response cache. Keys embed a per-namespace version so a single
// INCR drops every entry of a namespace without scanning keys.
type Store struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

func New(rdb redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Store{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (s *Store) versionKey(ns Namespace) string {
	return s.prefix + "cache:ver:" + string(ns)
}

// Key returns the current cache key for a request identity (method + URL) in ns.
func (s *Store) Key(ctx context.Context, ns Namespace, identity string) (string, error) {
	ver, err := s.rdb.Get(ctx, s.versionKey(ns)).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	sum := sha1.Sum([]byte(identity))
	return fmt.Sprintf("%scache:%s:v%d:%x", s.prefix, ns, ver, sum[:]), nil
}

// Get returns the cached body, or ok=false on a miss.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := s.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (s *Store) Set(ctx context.Context, key string, body []byte) error {
	return s.rdb.Set(ctx, key, body, s.ttl).Err()
}

// Invalidate bumps the version of every namespace given.
func (s *Store) Invalidate(ctx context.Context, namespaces ...Namespace) error {
	if len(namespaces) == 0 {
		return nil
	}
	pipe := s.rdb.TxPipeline()
	for _, ns := range namespaces {
		pipe.Incr(ctx, s.versionKey(ns))
	}
	_, err := pipe.Exec(ctx)
	return err
}
