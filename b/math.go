package b

import (
	"math/big"
)

// MulDiv returns x * y / z rounded down. A zero divisor yields zero.
func MulDiv(x *big.Int, y *big.Int, z *big.Int) *big.Int {
	if z.Sign() == 0 {
		return big.NewInt(0)
	}
	out := big.NewInt(0).Mul(x, y)
	out.Quo(out, z)
	return out
}

// MulDivUp returns x * y / z rounded up. A zero divisor yields zero.
func MulDivUp(x *big.Int, y *big.Int, z *big.Int) *big.Int {
	if z.Sign() == 0 {
		return big.NewInt(0)
	}
	out := big.NewInt(0).Mul(x, y)
	out.Add(out, z)
	out.Sub(out, D1)
	out.Quo(out, z)
	return out
}

// SubFloor returns x - y, or zero when y exceeds x.
func SubFloor(x *big.Int, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return big.NewInt(0)
	}
	return big.NewInt(0).Sub(x, y)
}

func Min(x *big.Int, y *big.Int) *big.Int {
	if x.Cmp(y) <= 0 {
		return big.NewInt(0).Set(x)
	}
	return big.NewInt(0).Set(y)
}

func Copy(x *big.Int) *big.Int {
	if x == nil {
		return big.NewInt(0)
	}
	return big.NewInt(0).Set(x)
}
