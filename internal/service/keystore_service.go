package service

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/scrypt"
)

// ErrKeyNotFound indicates the keystore holds no material for an address.
var ErrKeyNotFound = errors.New("no key material for address")

const (
	keyFilePrefix = "eth_wallet_"
	saltSize      = 16

	// scrypt parameters for the file encryption key.
	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// KeystoreSigner implements ports.SignerGateway with a local on-disk
// keystore. Each private key is encrypted with AES-256-GCM under a key
// derived from the passphrase via scrypt and stored as one file per address.
type KeystoreSigner struct {
	dir        string
	passphrase []byte
	chainID    *big.Int
	log        zerolog.Logger
}

// NewKeystoreSigner creates the keystore directory if needed.
func NewKeystoreSigner(dir string, passphrase string, chainID *big.Int, log zerolog.Logger) (*KeystoreSigner, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating keystore dir: %w", err)
	}
	return &KeystoreSigner{
		dir:        dir,
		passphrase: []byte(passphrase),
		chainID:    chainID,
		log:        log,
	}, nil
}

// HasKey reports whether key material exists for the address.
func (s *KeystoreSigner) HasKey(_ context.Context, address common.Address) (bool, error) {
	_, err := os.Stat(s.keyPath(address))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat key file: %w", err)
	}
	return true, nil
}

// GenerateWallet creates a fresh key, stores it encrypted and returns the
// derived address.
func (s *KeystoreSigner) GenerateWallet(_ context.Context) (common.Address, error) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		return common.Address{}, fmt.Errorf("generating key: %w", err)
	}
	address := crypto.PubkeyToAddress(priv.PublicKey)

	sealed, err := s.seal(crypto.FromECDSA(priv))
	if err != nil {
		return common.Address{}, fmt.Errorf("sealing key: %w", err)
	}
	if err := os.WriteFile(s.keyPath(address), sealed, 0o600); err != nil {
		return common.Address{}, fmt.Errorf("writing key file: %w", err)
	}

	s.log.Info().Str("address", address.Hex()).Msg("wallet generated")
	return address, nil
}

// Sign signs tx with the key held for from using the EIP-1559 signer.
// Returns ErrKeyNotFound when no material exists; any decryption or
// key-mismatch failure is a refusal.
func (s *KeystoreSigner) Sign(_ context.Context, from common.Address, tx *types.Transaction) (*types.Transaction, error) {
	sealed, err := os.ReadFile(s.keyPath(from))
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, from.Hex())
	}
	if err != nil {
		return nil, fmt.Errorf("reading key file: %w", err)
	}

	keyBytes, err := s.open(sealed)
	if err != nil {
		return nil, fmt.Errorf("unsealing key for %s: %w", from.Hex(), err)
	}
	priv, err := crypto.ToECDSA(keyBytes)
	if err != nil {
		return nil, fmt.Errorf("parsing key: %w", err)
	}
	if crypto.PubkeyToAddress(priv.PublicKey) != from {
		return nil, fmt.Errorf("key material does not derive address %s", from.Hex())
	}

	return types.SignTx(tx, types.NewLondonSigner(s.chainID), priv)
}

func (s *KeystoreSigner) keyPath(address common.Address) string {
	return filepath.Join(s.dir, keyFilePrefix+strings.ToLower(address.Hex()))
}

// seal encrypts plaintext as salt || nonce || ciphertext.
func (s *KeystoreSigner) seal(plaintext []byte) ([]byte, error) {
	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("generating salt: %w", err)
	}

	aesGCM, err := s.cipherFor(salt)
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aesGCM.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("generating nonce: %w", err)
	}

	out := append(salt, aesGCM.Seal(nonce, nonce, plaintext, nil)...)
	return out, nil
}

// open decrypts the salt || nonce || ciphertext layout produced by seal.
func (s *KeystoreSigner) open(sealed []byte) ([]byte, error) {
	if len(sealed) < saltSize {
		return nil, fmt.Errorf("key file too short")
	}
	salt, rest := sealed[:saltSize], sealed[saltSize:]

	aesGCM, err := s.cipherFor(salt)
	if err != nil {
		return nil, err
	}

	nonceSize := aesGCM.NonceSize()
	if len(rest) < nonceSize {
		return nil, fmt.Errorf("key file too short")
	}
	nonce, ciphertext := rest[:nonceSize], rest[nonceSize:]

	plaintext, err := aesGCM.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("decrypting: %w", err)
	}
	return plaintext, nil
}

func (s *KeystoreSigner) cipherFor(salt []byte) (cipher.AEAD, error) {
	key, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, 32)
	if err != nil {
		return nil, fmt.Errorf("deriving key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("creating cipher: %w", err)
	}
	return cipher.NewGCM(block)
}
