package aave

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// CalculateCompoundedInterest adopted from AAVE v2:
// => https://github.com/aave/protocol-v2/blob/master/contracts/protocol/libraries/math/MathUtils.sol#L32-L70
//
// The rate is a yearly rate in ray; the result is the ray growth factor over
// the given number of seconds, using the three-term binomial expansion.
func CalculateCompoundedInterest(rate *big.Int, seconds uint64) *big.Int {

	if seconds == 0 || rate.Sign() == 0 {
		return big.NewInt(0).Set(b.RAY)
	}

	exp := big.NewInt(0).SetUint64(seconds)
	em1 := big.NewInt(0).Sub(exp, b.D1)
	em2 := big.NewInt(0).Sub(exp, b.D2)
	if em2.Sign() < 0 {
		em2 = big.NewInt(0)
	}

	rps := big.NewInt(0).Div(rate, b.SPY)
	bp2 := RayMul(rps, rps)
	bp3 := RayMul(bp2, rps)

	t1 := big.NewInt(0).Mul(exp, rps)

	t2 := big.NewInt(0).Mul(exp, em1)
	t2.Mul(t2, bp2)
	t2.Div(t2, b.D2)

	t3 := big.NewInt(0).Mul(exp, em1)
	t3.Mul(t3, em2)
	t3.Mul(t3, bp3)
	t3.Div(t3, b.D6)

	out := big.NewInt(0).Add(b.RAY, t1)
	out.Add(out, t2)
	out.Add(out, t3)

	return out
}
