package services

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenBlacklist invalidates JWTs before they expire (logout, refresh, account deactivation)
type TokenBlacklist interface {
	// AddToBlacklist stores a token id until ttl elapses
	AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	// InvalidateUserTokens rejects every token of the user issued up to now
	InvalidateUserTokens(ctx context.Context, userID int64, ttl time.Duration) error
	IsUserTokenInvalidated(ctx context.Context, userID int64, issuedAt time.Time) (bool, error)
}

// RedisTokenBlacklist implements TokenBlacklist using Redis
type RedisTokenBlacklist struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient parses a redis:// URL and checks the connection
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	opts.PoolSize = 10
	opts.MinIdleConns = 3
	opts.MaxRetries = 3
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// NewRedisTokenBlacklist creates a token blacklist on an existing Redis client
func NewRedisTokenBlacklist(client *redis.Client) *RedisTokenBlacklist {
	return &RedisTokenBlacklist{
		client:    client,
		keyPrefix: "agroinnova:blacklist:",
	}
}

func (b *RedisTokenBlacklist) jtiKey(jti string) string {
	return b.keyPrefix + "jti:" + jti
}

func (b *RedisTokenBlacklist) userKey(userID int64) string {
	return b.keyPrefix + "user:" + strconv.FormatInt(userID, 10)
}

// AddToBlacklist adds a token id to the blacklist
func (b *RedisTokenBlacklist) AddToBlacklist(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := b.client.Set(ctx, b.jtiKey(jti), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to add token to blacklist: %w", err)
	}
	return nil
}

// IsBlacklisted checks if a token id is in the blacklist
func (b *RedisTokenBlacklist) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	exists, err := b.client.Exists(ctx, b.jtiKey(jti)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return exists > 0, nil
}

// InvalidateUserTokens stores the current time, in nanoseconds, as the user's cut-off
func (b *RedisTokenBlacklist) InvalidateUserTokens(ctx context.Context, userID int64, ttl time.Duration) error {
	if err := b.client.Set(ctx, b.userKey(userID), time.Now().UnixNano(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to invalidate user tokens: %w", err)
	}
	return nil
}

// IsUserTokenInvalidated checks if a token was issued before the user's cut-off
func (b *RedisTokenBlacklist) IsUserTokenInvalidated(ctx context.Context, userID int64, issuedAt time.Time) (bool, error) {
	cutoff, err := b.client.Get(ctx, b.userKey(userID)).Int64()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check user token invalidation: %w", err)
	}
	return issuedAt.UnixNano() < cutoff, nil
}

var _ TokenBlacklist = (*RedisTokenBlacklist)(nil)

// InMemoryTokenBlacklist keeps blacklisted tokens in process memory.
// Entries are lost on restart and are not shared between instances.
type InMemoryTokenBlacklist struct {
	mu       sync.Mutex
	tokens   map[string]time.Time
	userCuts map[int64]time.Time
	userTTL  map[int64]time.Time
	nowFunc  func() time.Time
}

// NewInMemoryTokenBlacklist creates a new in-memory token blacklist
func NewInMemoryTokenBlacklist() *InMemoryTokenBlacklist {
	return &InMemoryTokenBlacklist{
		tokens:   make(map[string]time.Time),
		userCuts: make(map[int64]time.Time),
		userTTL:  make(map[int64]time.Time),
		nowFunc:  time.Now,
	}
}

// AddToBlacklist adds a token id until ttl elapses
func (b *InMemoryTokenBlacklist) AddToBlacklist(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[jti] = b.nowFunc().Add(ttl)
	return nil
}

// IsBlacklisted checks if a token id is blacklisted and not yet expired
func (b *InMemoryTokenBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	expiry, ok := b.tokens[jti]
	if !ok {
		return false, nil
	}
	if b.nowFunc().After(expiry) {
		delete(b.tokens, jti)
		return false, nil
	}
	return true, nil
}

// InvalidateUserTokens records the current time as the user's cut-off
func (b *InMemoryTokenBlacklist) InvalidateUserTokens(_ context.Context, userID int64, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.nowFunc()
	b.userCuts[userID] = now
	b.userTTL[userID] = now.Add(ttl)
	return nil
}

// IsUserTokenInvalidated checks if a token was issued before the user's cut-off
func (b *InMemoryTokenBlacklist) IsUserTokenInvalidated(_ context.Context, userID int64, issuedAt time.Time) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	cut, ok := b.userCuts[userID]
	if !ok {
		return false, nil
	}
	return issuedAt.Before(cut), nil
}

// Cleanup drops expired entries and returns how many were removed
func (b *InMemoryTokenBlacklist) Cleanup() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := b.nowFunc()
	removed := 0
	for jti, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, jti)
			removed++
		}
	}
	for userID, expiry := range b.userTTL {
		if now.After(expiry) {
			delete(b.userTTL, userID)
			delete(b.userCuts, userID)
			removed++
		}
	}
	return removed
}

// Len returns the number of blacklisted token ids
func (b *InMemoryTokenBlacklist) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.tokens)
}

var _ TokenBlacklist = (*InMemoryTokenBlacklist)(nil)
