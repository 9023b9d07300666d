package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/oauth2"
)

// DefaultRedisKey is the hash holding the token
const DefaultRedisKey = "authsession:token"

// Hash fields:
//   token:  access token
//   expiry: advisory expiry (unix seconds, 0 when unknown)

// RedisStore keeps the token in a Redis hash, so several processes share one session.
// No Redis TTL is applied; the expiry field is advisory.
type RedisStore struct {
	rdb  redis.UniversalClient
	key  string
	opts *options
}

func (r *RedisStore) Set(ctx context.Context, token string, ttl time.Duration) error {
	t := r.opts.newToken(token, ttl)
	var expiry int64
	if !t.Expiry.IsZero() {
		expiry = t.Expiry.Unix()
	}
	if err := r.rdb.HSet(ctx, r.key, map[string]interface{}{
		"token":  t.AccessToken,
		"expiry": expiry,
	}).Err(); err != nil {
		return fmt.Errorf("failed to store token: %w", err)
	}
	return nil
}

func (r *RedisStore) Get(ctx context.Context) *oauth2.Token {
	fields, err := r.rdb.HGetAll(ctx, r.key).Result()
	if err != nil {
		r.opts.logger.Debug("token store unavailable", "key", r.key, "error", err)
		return nil
	}
	value := fields["token"]
	if value == "" {
		return nil
	}
	ret := &oauth2.Token{AccessToken: value, TokenType: tokenType}
	var expiry int64
	if _, err := fmt.Sscan(fields["expiry"], &expiry); err == nil && expiry > 0 {
		ret.Expiry = time.Unix(expiry, 0)
	}
	return ret
}

func (r *RedisStore) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("failed to clear token: %w", err)
	}
	return nil
}

// NewRedisStore creates a store on the given client; an empty key uses DefaultRedisKey
func NewRedisStore(client redis.UniversalClient, key string, opts ...Option) *RedisStore {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisStore{rdb: client, key: key, opts: newOptions(opts)}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(URL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(URL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	return redis.NewClient(opts), nil
}
