package vault

import (
	"math/big"

	"github.com/optakt/lever/b"
)

// NAV returns idle base asset plus collateral value minus debt value, or
// zero when the debt is not covered.
func (v *Vault) NAV() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nav()
}

func (v *Vault) nav() *big.Int {
	collateral, _ := v.market.Position(v.address)
	assets := big.NewInt(0).Add(v.idle(), v.gateway.PriceOf(collateral))
	debt := v.market.DebtValue(v.address)
	return b.SubFloor(assets, debt)
}
