package chain

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
)

func TestApplyMargin(t *testing.T) {
	// 20% margin on a 10 gwei base fee
	got := applyMargin(big.NewInt(10_000_000_000), 20)
	assert.Equal(t, "12000000000", got.String())

	// zero margin is identity
	got = applyMargin(big.NewInt(12345), 0)
	assert.Equal(t, "12345", got.String())
}

func TestDecodeStringReturn_ABIString(t *testing.T) {
	// offset(32) | length(32) | data padded to 32
	ret := make([]byte, 0, 96)
	ret = append(ret, common.LeftPadBytes(big.NewInt(32).Bytes(), 32)...)
	ret = append(ret, common.LeftPadBytes(big.NewInt(4).Bytes(), 32)...)
	ret = append(ret, common.RightPadBytes([]byte("USDT"), 32)...)

	assert.Equal(t, "USDT", decodeStringReturn(ret))
}

func TestDecodeStringReturn_Bytes32(t *testing.T) {
	ret := common.RightPadBytes([]byte("MKR"), 32)
	assert.Equal(t, "MKR", decodeStringReturn(ret))
}

func TestDecodeStringReturn_Empty(t *testing.T) {
	assert.Equal(t, "", decodeStringReturn(nil))
}
