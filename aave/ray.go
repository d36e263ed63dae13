package aave

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// RayMul multiplies two ray values, rounding half up.
func RayMul(x *big.Int, y *big.Int) *big.Int {
	out := big.NewInt(0).Mul(x, y)
	out.Add(out, b.HALF)
	out.Div(out, b.RAY)
	return out
}

// RayDiv divides two ray values, rounding half up.
func RayDiv(x *big.Int, y *big.Int) *big.Int {
	if y.Sign() == 0 {
		return big.NewInt(0)
	}
	half := big.NewInt(0).Div(y, b.D2)
	out := big.NewInt(0).Mul(x, b.RAY)
	out.Add(out, half)
	out.Div(out, y)
	return out
}

// WadToRay scales a wad value up to ray precision.
func WadToRay(x *big.Int) *big.Int {
	return big.NewInt(0).Mul(x, big.NewInt(1_000_000_000))
}
