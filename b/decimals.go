package b

import (
	"math/big"
)

var (
	D0     = big.NewInt(0)
	D1     = big.NewInt(1)
	D2     = big.NewInt(2)
	D6     = big.NewInt(6)
	D10    = big.NewInt(10)
	D18    = big.NewInt(18)
	D24    = big.NewInt(24)
	D27    = big.NewInt(27)
	D365   = big.NewInt(365)
	D3600  = big.NewInt(3600)
	D10000 = big.NewInt(10000)
)
