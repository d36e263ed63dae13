package swap

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// GetAmountOut adopted from Uniswap v2, with the fee given in basis points:
// => https://github.com/Uniswap/v2-periphery/blob/master/contracts/libraries/UniswapV2Library.sol#L42-L49
func GetAmountOut(amountIn *big.Int, reserveIn *big.Int, reserveOut *big.Int, fee uint64) *big.Int {
	if amountIn.Sign() <= 0 || reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return big.NewInt(0)
	}
	amountInWithFee := big.NewInt(0).Mul(amountIn, feeComplement(fee))
	numerator := big.NewInt(0).Mul(amountInWithFee, reserveOut)
	denominator := big.NewInt(0).Mul(reserveIn, b.BPS)
	denominator.Add(denominator, amountInWithFee)
	amountOut := big.NewInt(0).Div(numerator, denominator)
	return amountOut
}

func feeComplement(fee uint64) *big.Int {
	return big.NewInt(0).Sub(b.BPS, big.NewInt(0).SetUint64(fee))
}
