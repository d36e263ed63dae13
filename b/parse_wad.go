package b

import (
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"
)

// ParseWad converts a decimal string such as "0.75" into WAD fixed-point.
// Digits beyond 18 decimals are truncated.
func ParseWad(s string) (*big.Int, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, fmt.Errorf("could not parse decimal %q: %w", s, err)
	}
	if d.IsNegative() {
		return nil, fmt.Errorf("negative decimal %q", s)
	}
	return d.Shift(18).BigInt(), nil
}

// Units converts a whole-token amount into its 18-decimal representation.
func Units(amount int64) *big.Int {
	return big.NewInt(0).Mul(big.NewInt(amount), E18)
}

// FormatWad renders a WAD fixed-point value as a decimal string.
func FormatWad(x *big.Int) string {
	return decimal.NewFromBigInt(x, -18).String()
}
