package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoSession means the presented credential resolves to nothing: expired,
// revoked, or never issued.
var ErrNoSession = errors.New("session not found")

// Identity is the verified user behind a session credential.
type Identity struct {
	UserID   string `json:"user_id"`
	Username string `json:"username"`
}

// Store resolves opaque session tokens against Redis. Sessions are written
// by the external auth service; this server only reads them.
type Store struct {
	rdb *redis.Client
}

func NewStore(redisURL string) (*Store, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for auth store")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Store{rdb: rdb}, nil
}

// NewStoreWithClient wraps an existing client; used by tests.
func NewStoreWithClient(rdb *redis.Client) *Store { return &Store{rdb: rdb} }

func (s *Store) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func sessionKey(token string) string { return "auth:session:" + strings.TrimSpace(token) }

// Resolve maps a session token to its verified identity.
func (s *Store) Resolve(ctx context.Context, token string) (*Identity, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoSession
	}
	raw, err := s.rdb.Get(ctx, sessionKey(token)).Bytes()
	if err == redis.Nil {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var id Identity
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if strings.TrimSpace(id.UserID) == "" {
		return nil, ErrNoSession
	}
	return &id, nil
}

// Put writes a session entry. The production writer is the external auth
// service; this exists for tooling and tests.
func (s *Store) Put(ctx context.Context, token string, id Identity, ttl time.Duration) error {
	raw, err := json.Marshal(&id)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, sessionKey(token), raw, ttl).Err()
}

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, err
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		if n, err := strconv.Atoi(p); err == nil {
			db = n
		}
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Password: pass, DB: db}, nil
}
