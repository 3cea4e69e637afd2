package units

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToMinorUnits_ExampleConversion(t *testing.T) {
	got, err := ToMinorUnits("0.0001", 18)
	require.NoError(t, err)
	assert.Equal(t, "100000000000000", got.String())
}

func TestToMinorUnits_WholeNumber(t *testing.T) {
	got, err := ToMinorUnits("2", 18)
	require.NoError(t, err)
	assert.Equal(t, "2000000000000000000", got.String())
}

func TestToMinorUnits_PrecisionExceeded(t *testing.T) {
	_, err := ToMinorUnits("0.00011", 4)
	assert.ErrorIs(t, err, ErrPrecisionExceeded)
}

func TestToMinorUnits_TrailingZerosWithinPrecision(t *testing.T) {
	// "0.1000" carries only one significant fractional digit.
	got, err := ToMinorUnits("0.1000", 1)
	require.NoError(t, err)
	assert.Equal(t, "1", got.String())
}

func TestToMinorUnits_ZeroDecimalsToken(t *testing.T) {
	got, err := ToMinorUnits("42", 0)
	require.NoError(t, err)
	assert.Equal(t, "42", got.String())

	_, err = ToMinorUnits("42.5", 0)
	assert.ErrorIs(t, err, ErrPrecisionExceeded)
}

func TestToMinorUnits_InvalidInput(t *testing.T) {
	for _, v := range []string{"", "abc", "1,5", "0x10", "--1"} {
		_, err := ToMinorUnits(v, 18)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %q", v)
	}
}

func TestToMinorUnits_NonPositive(t *testing.T) {
	for _, v := range []string{"0", "0.0", "-1", "-0.5"} {
		_, err := ToMinorUnits(v, 18)
		assert.ErrorIs(t, err, ErrInvalidAmount, "value %q", v)
	}
}

func TestToDecimalString_TokenTransfer(t *testing.T) {
	// 10500000 raw units at 6 decimals is 10.5 tokens.
	v := big.NewInt(10500000)
	assert.Equal(t, "10.5", ToDecimalString(v, 6))
}

func TestToDecimalString_TrimsTrailingZeros(t *testing.T) {
	v, ok := new(big.Int).SetString("1000000000000000000", 10)
	require.True(t, ok)
	assert.Equal(t, "1", ToDecimalString(v, 18))
}

func TestToDecimalString_SubUnit(t *testing.T) {
	assert.Equal(t, "0.000021", ToDecimalString(big.NewInt(21000000000000), 18))
}

func TestToDecimalString_Nil(t *testing.T) {
	assert.Equal(t, "0", ToDecimalString(nil, 18))
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		value    string
		decimals int32
	}{
		{"0.0001", 18},
		{"1.5", 18},
		{"123456789.123456789123456789", 18},
		{"10.5", 6},
		{"0.000001", 6},
		{"7", 0},
	}
	for _, tc := range cases {
		minor, err := ToMinorUnits(tc.value, tc.decimals)
		require.NoError(t, err, "value %q", tc.value)
		assert.Equal(t, tc.value, ToDecimalString(minor, tc.decimals), "value %q", tc.value)
	}
}
