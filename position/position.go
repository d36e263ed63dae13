package position

import (
	"math/big"
)

// Position is the vault's standing in the lending market. Debt is held as
// shares of the borrow pool and has to be valued by the market before use.
type Position struct {
	Collateral *big.Int
	DebtShares *big.Int
}

func (p Position) IsEmpty() bool {
	return p.Collateral.Sign() == 0 && p.DebtShares.Sign() == 0
}

// Scale returns the share of the position matching the wad ratio, rounded
// down.
func (p Position) Scale(ratio *big.Int, one *big.Int) Position {
	collateral := big.NewInt(0).Mul(p.Collateral, ratio)
	collateral.Quo(collateral, one)
	shares := big.NewInt(0).Mul(p.DebtShares, ratio)
	shares.Quo(shares, one)
	return Position{Collateral: collateral, DebtShares: shares}
}
