package gateway

import (
	"math/big"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/journal"
)

// Wrapper is a yield-bearing vault over the stable asset. Its shares are the
// collateral asset; the exchange rate grows as assets accrue.
type Wrapper struct {
	journal     *journal.Journal
	totalAssets *big.Int
	totalShares *big.Int
}

func NewWrapper(j *journal.Journal) *Wrapper {
	return &Wrapper{
		journal:     j,
		totalAssets: big.NewInt(0),
		totalShares: big.NewInt(0),
	}
}

func (w *Wrapper) Totals() (*big.Int, *big.Int) {
	return big.NewInt(0).Set(w.totalAssets), big.NewInt(0).Set(w.totalShares)
}

// ExchangeRate returns the assets per share in wad.
func (w *Wrapper) ExchangeRate() *big.Int {
	if w.totalShares.Sign() == 0 {
		return big.NewInt(0).Set(b.WAD)
	}
	return b.MulDiv(w.totalAssets, b.WAD, w.totalShares)
}

func (w *Wrapper) ConvertToShares(assets *big.Int) *big.Int {
	if w.totalShares.Sign() == 0 || w.totalAssets.Sign() == 0 {
		return big.NewInt(0).Set(assets)
	}
	return b.MulDiv(assets, w.totalShares, w.totalAssets)
}

func (w *Wrapper) ConvertToAssets(shares *big.Int) *big.Int {
	if w.totalShares.Sign() == 0 {
		return big.NewInt(0).Set(shares)
	}
	return b.MulDiv(shares, w.totalAssets, w.totalShares)
}

// PreviewWithdraw returns the shares to redeem for at least assets, rounded
// up.
func (w *Wrapper) PreviewWithdraw(assets *big.Int) *big.Int {
	if w.totalShares.Sign() == 0 || w.totalAssets.Sign() == 0 {
		return big.NewInt(0).Set(assets)
	}
	return b.MulDivUp(assets, w.totalShares, w.totalAssets)
}

func (w *Wrapper) Deposit(assets *big.Int) *big.Int {
	shares := w.ConvertToShares(assets)
	journal.Assign(w.journal, &w.totalAssets, big.NewInt(0).Add(w.totalAssets, assets))
	journal.Assign(w.journal, &w.totalShares, big.NewInt(0).Add(w.totalShares, shares))
	return shares
}

func (w *Wrapper) Redeem(shares *big.Int) *big.Int {
	assets := w.ConvertToAssets(shares)
	journal.Assign(w.journal, &w.totalAssets, b.SubFloor(w.totalAssets, assets))
	journal.Assign(w.journal, &w.totalShares, b.SubFloor(w.totalShares, shares))
	return assets
}

// Accrue applies yield (positive delta) or a loss (negative delta) to the
// wrapper's assets.
func (w *Wrapper) Accrue(delta *big.Int) {
	assets := big.NewInt(0).Add(w.totalAssets, delta)
	if assets.Sign() < 0 {
		assets = big.NewInt(0)
	}
	journal.Assign(w.journal, &w.totalAssets, assets)
}

// SetExchangeRate moves the assets per share to the given wad rate.
func (w *Wrapper) SetExchangeRate(rate *big.Int) {
	if w.totalShares.Sign() == 0 {
		return
	}
	journal.Assign(w.journal, &w.totalAssets, b.MulDiv(w.totalShares, rate, b.WAD))
}
