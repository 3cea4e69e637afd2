package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"chain-wallet-gateway/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// DecimalsCache implements ports.DecimalsCache using Redis. One entry per
// contract address; token metadata is immutable in practice, the TTL just
// bounds staleness.
type DecimalsCache struct {
	client *goredis.Client
	prefix string
}

// NewDecimalsCache creates a new Redis-backed token metadata cache.
func NewDecimalsCache(client *goredis.Client) *DecimalsCache {
	return &DecimalsCache{
		client: client,
		prefix: "token_meta:",
	}
}

// Get retrieves cached token metadata by contract address.
// Returns nil, nil if the contract has not been seen.
func (c *DecimalsCache) Get(ctx context.Context, contract string) (*ports.TokenInfo, error) {
	val, err := c.client.Get(ctx, c.key(contract)).Bytes()
	if err != nil {
		if err == goredis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("redis token metadata get: %w", err)
	}

	info := &ports.TokenInfo{}
	if err := json.Unmarshal(val, info); err != nil {
		return nil, fmt.Errorf("decode token metadata: %w", err)
	}
	return info, nil
}

// Set stores token metadata with TTL.
func (c *DecimalsCache) Set(ctx context.Context, contract string, info ports.TokenInfo, ttl time.Duration) error {
	val, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("encode token metadata: %w", err)
	}
	if err := c.client.Set(ctx, c.key(contract), val, ttl).Err(); err != nil {
		return fmt.Errorf("redis token metadata set: %w", err)
	}
	return nil
}

func (c *DecimalsCache) key(contract string) string {
	return c.prefix + strings.ToLower(contract)
}
