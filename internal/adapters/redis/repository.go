package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// RevokedKeyPrefix is the prefix for revoked token ids in Redis
	RevokedKeyPrefix = "revoked:"
	// minRevokeTTL keeps a revoked id around long enough to cover clock skew near expiry
	minRevokeTTL = time.Second
)

// NewClient parses url, applies password when set and checks connectivity
func NewClient(ctx context.Context, url, password string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	if password != "" {
		opts.Password = password
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}

// TokenDenylist implements core.TokenDenylist using Redis
type TokenDenylist struct {
	client *redis.Client
}

// NewTokenDenylist creates a new Redis token denylist
func NewTokenDenylist(client *redis.Client) *TokenDenylist {
	return &TokenDenylist{client: client}
}

// Revoke marks tokenID as revoked until ttl elapses
func (d *TokenDenylist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl < minRevokeTTL {
		ttl = minRevokeTTL
	}
	if err := d.client.Set(ctx, RevokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

// IsRevoked reports whether tokenID was revoked and has not yet expired
func (d *TokenDenylist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	n, err := d.client.Exists(ctx, RevokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return n > 0, nil
}
