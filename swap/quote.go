package swap

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// Quote adopted from Uniswap v2:
// => https://github.com/Uniswap/v2-periphery/blob/master/contracts/libraries/UniswapV2Library.sol#L35-L40
func Quote(amountA *big.Int, reserveA *big.Int, reserveB *big.Int) *big.Int {
	if reserveA.Sign() <= 0 {
		return big.NewInt(0)
	}
	amountB := big.NewInt(0).Mul(amountA, reserveB)
	amountB.Div(amountB, reserveA)
	return amountB
}

// QuoteNet quotes at the spot price and deducts the swap fee, without price
// impact.
func QuoteNet(amountA *big.Int, reserveA *big.Int, reserveB *big.Int, fee uint64) *big.Int {
	amountB := Quote(amountA, reserveA, reserveB)
	return b.MulDiv(amountB, feeComplement(fee), b.BPS)
}
