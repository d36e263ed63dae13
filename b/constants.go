package b

import (
	"math/big"
)

var (
	WAD  = E18                           // fixed-point one for ratios and value per share
	RAY  = E27                           // fixed-point one for interest indexes
	BPS  = D10000                        // basis points in one
	HPY  = big.NewInt(0).Mul(D365, D24)  // hours per year
	SPY  = big.NewInt(0).Mul(HPY, D3600) // seconds per year
	HALF = big.NewInt(0).Div(E27, D2)    // Half Ray
)
