package service

import (
	"context"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSigner(t *testing.T) *KeystoreSigner {
	t.Helper()
	s, err := NewKeystoreSigner(t.TempDir(), "test-passphrase", big.NewInt(1), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func TestKeystoreSigner_GenerateAndHasKey(t *testing.T) {
	s := newTestSigner(t)
	ctx := context.Background()

	addr, err := s.GenerateWallet(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, common.Address{}, addr)

	ok, err := s.HasKey(ctx, addr)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasKey(ctx, common.HexToAddress("0x0000000000000000000000000000000000000042"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestKeystoreSigner_KeyFileNaming(t *testing.T) {
	s := newTestSigner(t)

	addr, err := s.GenerateWallet(context.Background())
	require.NoError(t, err)

	expected := filepath.Join(s.dir, "eth_wallet_"+strings.ToLower(addr.Hex()))
	_, statErr := os.Stat(expected)
	assert.NoError(t, statErr)
}

func TestKeystoreSigner_KeyFileEncrypted(t *testing.T) {
	s := newTestSigner(t)

	addr, err := s.GenerateWallet(context.Background())
	require.NoError(t, err)

	raw, err := os.ReadFile(s.keyPath(addr))
	require.NoError(t, err)
	// salt + nonce + 32-byte key + GCM tag
	assert.Greater(t, len(raw), 32+saltSize)
}

func TestKeystoreSigner_SignProducesValidSignature(t *testing.T) {
	s := newTestSigner(t)
	ctx := context.Background()

	addr, err := s.GenerateWallet(ctx)
	require.NoError(t, err)

	to := common.HexToAddress("0x0000000000000000000000000000000000000099")
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID:   big.NewInt(1),
		Nonce:     7,
		GasTipCap: big.NewInt(2_000_000_000),
		GasFeeCap: big.NewInt(30_000_000_000),
		Gas:       21000,
		To:        &to,
		Value:     big.NewInt(1000),
	})

	signed, err := s.Sign(ctx, addr, unsigned)
	require.NoError(t, err)

	sender, err := types.Sender(types.NewLondonSigner(big.NewInt(1)), signed)
	require.NoError(t, err)
	assert.Equal(t, addr, sender)
}

func TestKeystoreSigner_SignUnknownAddress(t *testing.T) {
	s := newTestSigner(t)

	to := common.HexToAddress("0x0000000000000000000000000000000000000099")
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID: big.NewInt(1),
		Gas:     21000,
		To:      &to,
		Value:   big.NewInt(1),
	})

	_, err := s.Sign(context.Background(), common.HexToAddress("0x0000000000000000000000000000000000000042"), unsigned)
	assert.ErrorIs(t, err, ErrKeyNotFound)
}

func TestKeystoreSigner_WrongPassphrase(t *testing.T) {
	dir := t.TempDir()
	s1, err := NewKeystoreSigner(dir, "correct", big.NewInt(1), zerolog.Nop())
	require.NoError(t, err)

	addr, err := s1.GenerateWallet(context.Background())
	require.NoError(t, err)

	s2, err := NewKeystoreSigner(dir, "wrong", big.NewInt(1), zerolog.Nop())
	require.NoError(t, err)

	to := common.HexToAddress("0x0000000000000000000000000000000000000099")
	unsigned := types.NewTx(&types.DynamicFeeTx{
		ChainID: big.NewInt(1),
		Gas:     21000,
		To:      &to,
		Value:   big.NewInt(1),
	})

	_, err = s2.Sign(context.Background(), addr, unsigned)
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
}
