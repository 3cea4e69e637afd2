package redis

import (
	"context"
	"testing"
	"time"

	"chain-wallet-gateway/internal/core/ports"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testContract = "0x3333333333333333333333333333333333333333"

func TestDecimalsCache_SetAndGet(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDecimalsCache(client)
	ctx := context.Background()

	// Get before set => nil
	info, err := cache.Get(ctx, testContract)
	assert.NoError(t, err)
	assert.Nil(t, info)

	err = cache.Set(ctx, testContract, ports.TokenInfo{Decimals: 6, Symbol: "usdt"}, 24*time.Hour)
	require.NoError(t, err)

	info, err = cache.Get(ctx, testContract)
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, int32(6), info.Decimals)
	assert.Equal(t, "usdt", info.Symbol)
}

func TestDecimalsCache_CaseInsensitiveKey(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDecimalsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, "0x3333333333333333333333333333333333333333", ports.TokenInfo{Decimals: 18, Symbol: "dai"}, time.Hour)
	require.NoError(t, err)

	info, err := cache.Get(ctx, "0x3333333333333333333333333333333333333333")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "dai", info.Symbol)
}

func TestDecimalsCache_TTLExpiry(t *testing.T) {
	s := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: s.Addr()})
	cache := NewDecimalsCache(client)
	ctx := context.Background()

	err := cache.Set(ctx, testContract, ports.TokenInfo{Decimals: 6, Symbol: "usdc"}, time.Second)
	require.NoError(t, err)

	s.FastForward(2 * time.Second)

	info, err := cache.Get(ctx, testContract)
	assert.NoError(t, err)
	assert.Nil(t, info, "expired entry should return nil")
}
