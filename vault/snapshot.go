package vault

import (
	"math/big"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/position"
)

// Snapshot describes the vault's position and accounting at one point in
// time.
type Snapshot struct {
	Target          position.Leverage
	Position        position.Position
	Idle            *big.Int
	CollateralValue *big.Int
	DebtValue       *big.Int
	NAV             *big.Int
	Supply          *big.Int
	HighWaterMark   *big.Int
	// ValuePerShare and Ratio are wad; Ratio is debt over collateral value.
	ValuePerShare *big.Int
	Ratio         *big.Int
}

func (v *Vault) CurrentPosition() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()

	pos := v.currentPosition()
	collateralValue := v.gateway.PriceOf(pos.Collateral)
	debt := v.market.DebtValue(v.address)
	nav := v.nav()
	supply := v.book.Supply(v.shares)

	snapshot := Snapshot{
		Target:          v.target,
		Position:        pos,
		Idle:            v.idle(),
		CollateralValue: collateralValue,
		DebtValue:       debt,
		NAV:             nav,
		Supply:          supply,
		HighWaterMark:   big.NewInt(0).Set(v.highWaterMark),
		ValuePerShare:   big.NewInt(0).Set(b.WAD),
		Ratio:           b.MulDiv(debt, b.WAD, collateralValue),
	}
	if supply.Sign() > 0 {
		snapshot.ValuePerShare = b.MulDiv(nav, b.WAD, supply)
	}

	return snapshot
}
