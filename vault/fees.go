package vault

import (
	"fmt"
	"math/big"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/journal"
)

// accrueFee mints the performance fee earned above the high-water mark to the
// fee recipient and raises the mark. It returns the NAV and the share supply
// after the fee.
func (v *Vault) accrueFee() (*big.Int, *big.Int, error) {

	nav := v.nav()
	supply := v.book.Supply(v.shares)

	feeShares, valuePerShare := v.pendingFee(nav, supply)
	if valuePerShare == nil {
		return nav, supply, nil
	}

	err := v.book.Mint(v.shares, v.feeRecipient, feeShares)
	if err != nil {
		return nil, nil, fmt.Errorf("could not mint fee shares: %w", err)
	}
	journal.Assign(v.journal, &v.highWaterMark, valuePerShare)

	v.log.Info().
		Str("fee_shares", feeShares.String()).
		Str("value_per_share", b.FormatWad(valuePerShare)).
		Str("recipient", v.feeRecipient.Hex()).
		Msg("performance fee accrued")

	return nav, big.NewInt(0).Add(supply, feeShares), nil
}

// pendingFee returns the fee shares owed and the value per share that
// becomes the new high-water mark. The value per share is nil when no fee
// applies.
func (v *Vault) pendingFee(nav *big.Int, supply *big.Int) (*big.Int, *big.Int) {

	if v.feeRate.Sign() == 0 || supply.Sign() == 0 {
		return big.NewInt(0), nil
	}

	valuePerShare := b.MulDiv(nav, b.WAD, supply)
	if valuePerShare.Cmp(v.highWaterMark) <= 0 {
		return big.NewInt(0), nil
	}

	profitPerShare := big.NewInt(0).Sub(valuePerShare, v.highWaterMark)
	feePerShare := b.MulDiv(profitPerShare, v.feeRate, b.WAD)

	// minting these shares dilutes every holder by exactly the fee
	feeShares := b.MulDiv(supply, feePerShare, big.NewInt(0).Sub(valuePerShare, feePerShare))

	return feeShares, valuePerShare
}
