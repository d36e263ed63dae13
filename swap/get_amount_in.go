package swap

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// GetAmountIn adopted from Uniswap v2, with the fee given in basis points:
// => https://github.com/Uniswap/v2-periphery/blob/master/contracts/libraries/UniswapV2Library.sol#L52-L59
// It returns nil when the output cannot be reached with the reserves.
func GetAmountIn(amountOut *big.Int, reserveIn *big.Int, reserveOut *big.Int, fee uint64) *big.Int {
	if amountOut.Sign() <= 0 {
		return big.NewInt(0)
	}
	if reserveIn.Sign() <= 0 || amountOut.Cmp(reserveOut) >= 0 {
		return nil
	}
	numerator := big.NewInt(0).Mul(reserveIn, amountOut)
	numerator.Mul(numerator, b.BPS)
	denominator := big.NewInt(0).Sub(reserveOut, amountOut)
	denominator.Mul(denominator, feeComplement(fee))
	amountIn := big.NewInt(0).Div(numerator, denominator)
	amountIn.Add(amountIn, b.D1)
	return amountIn
}
