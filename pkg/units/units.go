// Package units converts between human-readable decimal amounts and integer
// minor units (e.g. ETH <-> Wei). All arithmetic is exact decimal arithmetic;
// binary floating point is never involved.
package units

import (
	"errors"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// NativeDecimals is the denomination exponent of the native asset (Wei).
const NativeDecimals int32 = 18

var (
	// ErrInvalidAmount indicates the input is not a valid positive decimal.
	ErrInvalidAmount = errors.New("amount must be a positive decimal number")
	// ErrPrecisionExceeded indicates the input carries more fractional
	// digits than the asset's denomination allows.
	ErrPrecisionExceeded = errors.New("amount exceeds asset precision")
)

// ToMinorUnits converts a decimal string into integer minor units by an exact
// shift of 10^decimals. The fractional part must fit within decimals digits;
// no rounding is ever applied.
func ToMinorUnits(value string, decimals int32) (*big.Int, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(value))
	if err != nil {
		return nil, ErrInvalidAmount
	}
	if d.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	shifted := d.Shift(decimals)
	if !shifted.IsInteger() {
		return nil, ErrPrecisionExceeded
	}

	return shifted.BigInt(), nil
}

// ToDecimalString renders integer minor units as a canonical decimal string
// in human units. Trailing fractional zeros are trimmed, so the result is the
// exact inverse of ToMinorUnits up to trailing-zero canonicalization.
func ToDecimalString(minorUnits *big.Int, decimals int32) string {
	if minorUnits == nil {
		return "0"
	}

	s := decimal.NewFromBigInt(new(big.Int).Set(minorUnits), -decimals).String()
	if strings.Contains(s, ".") {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	return s
}
