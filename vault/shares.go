package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/position"
)

// PreviewDeposit estimates the shares a deposit of assets would mint. It
// ignores the deposit cap and dust rejection.
func (v *Vault) PreviewDeposit(assets *big.Int) *big.Int {
	if assets == nil || assets.Sign() <= 0 {
		return big.NewInt(0)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	nav := v.nav()
	supply := v.book.Supply(v.shares)
	feeShares, _ := v.pendingFee(nav, supply)
	supply.Add(supply, feeShares)

	return v.previewShares(assets, nav, supply)
}

// PreviewRedeem estimates the base asset a redemption of shares would
// realize, before unwinding costs.
func (v *Vault) PreviewRedeem(shares *big.Int) *big.Int {
	if shares == nil || shares.Sign() <= 0 {
		return big.NewInt(0)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	nav := v.nav()
	supply := v.book.Supply(v.shares)
	feeShares, _ := v.pendingFee(nav, supply)
	supply.Add(supply, feeShares)

	return b.MulDiv(shares, nav, supply)
}

func (v *Vault) previewShares(assets *big.Int, nav *big.Int, supply *big.Int) *big.Int {
	added := v.estimateValueAdded(assets)
	if supply.Sign() == 0 {
		return added
	}
	if nav.Sign() == 0 {
		return big.NewInt(0)
	}
	return b.MulDiv(added, supply, nav)
}

// estimateValueAdded projects the NAV increase from building a position out
// of assets at the current target.
func (v *Vault) estimateValueAdded(assets *big.Int) *big.Int {

	if assets.Sign() == 0 {
		return big.NewInt(0)
	}

	borrow := big.NewInt(0)
	switch v.target.Kind() {
	case position.KindIdle:
		return big.NewInt(0).Set(assets)
	case position.KindLeveraged:
		ratio := v.target.Ratio()
		borrow = b.MulDiv(assets, ratio, big.NewInt(0).Sub(b.WAD, ratio))
	}

	collateral, err := v.gateway.Preview(v.gateway.Base(), big.NewInt(0).Add(assets, borrow))
	if err != nil {
		return big.NewInt(0)
	}

	return b.SubFloor(v.gateway.PriceOf(collateral), borrow)
}

// Deposit pulls assets from the caller, builds them into the position and
// mints shares to the receiver in proportion to the NAV actually added, so
// the depositor bears the cost of building their own position.
func (v *Vault) Deposit(assets *big.Int, receiver common.Address, caller common.Address) (*big.Int, error) {

	if assets == nil || assets.Sign() < 0 {
		return nil, fmt.Errorf("could not deposit %v: %w", assets, ErrInvalidAmount)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if assets.Sign() == 0 {
		return big.NewInt(0), nil
	}

	var shares *big.Int
	err := v.journal.Atomic(func() error {

		navBefore, supplyBefore, err := v.accrueFee()
		if err != nil {
			return err
		}

		if supplyBefore.Sign() > 0 && navBefore.Sign() == 0 {
			return ErrInsolventSupply
		}

		if v.maxTotalValue.Sign() > 0 {
			total := big.NewInt(0).Add(assets, navBefore)
			if total.Cmp(v.maxTotalValue) > 0 {
				return fmt.Errorf("total %s above cap %s: %w", total, v.maxTotalValue, ErrCapExceeded)
			}
		}

		if supplyBefore.Sign() > 0 && v.previewShares(assets, navBefore, supplyBefore).Sign() == 0 {
			return ErrDepositTooSmall
		}

		err = v.book.Transfer(v.gateway.Base(), caller, v.address, assets)
		if err != nil {
			return fmt.Errorf("could not pull deposit: %w", err)
		}

		if !v.target.IsIdle() {
			err = v.buildForDeposit(assets)
			if err != nil {
				return fmt.Errorf("could not build position: %w", err)
			}
		}

		navAfter := v.nav()
		if supplyBefore.Sign() == 0 {
			shares = navAfter
		} else {
			added := b.SubFloor(navAfter, navBefore)
			shares = b.MulDiv(added, supplyBefore, navBefore)
		}

		if shares.Sign() == 0 {
			return ErrDepositTooSmall
		}

		err = v.book.Mint(v.shares, receiver, shares)
		if err != nil {
			return fmt.Errorf("could not mint shares: %w", err)
		}

		v.log.Info().
			Str("assets", assets.String()).
			Str("shares", shares.String()).
			Str("receiver", receiver.Hex()).
			Str("nav", navAfter.String()).
			Msg("deposit completed")

		return nil
	})
	if err != nil {
		return nil, err
	}

	return shares, nil
}

// Redeem burns shares of the owner and pays the receiver the base asset
// realized by unwinding the same fraction of the idle balance and of the
// position.
func (v *Vault) Redeem(shares *big.Int, receiver common.Address, owner common.Address) (*big.Int, error) {

	if shares == nil || shares.Sign() < 0 {
		return nil, fmt.Errorf("could not redeem %v: %w", shares, ErrInvalidAmount)
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	var assets *big.Int
	err := v.journal.Atomic(func() error {

		_, supply, err := v.accrueFee()
		if err != nil {
			return err
		}

		balance := v.book.BalanceOf(v.shares, owner)
		if shares.Cmp(balance) > 0 {
			return fmt.Errorf("redeeming %s with balance %s: %w", shares, balance, ErrInsufficientShares)
		}
		if shares.Sign() == 0 {
			assets = big.NewInt(0)
			return nil
		}

		ratio := b.MulDiv(shares, b.WAD, supply)

		err = v.book.Burn(v.shares, owner, shares)
		if err != nil {
			return fmt.Errorf("could not burn shares: %w", err)
		}

		assets, err = v.unwindProportional(ratio)
		if err != nil {
			return fmt.Errorf("could not unwind position: %w", err)
		}

		err = v.book.Transfer(v.gateway.Base(), v.address, receiver, assets)
		if err != nil {
			return fmt.Errorf("could not pay redemption: %w", err)
		}

		v.log.Info().
			Str("shares", shares.String()).
			Str("assets", assets.String()).
			Str("owner", owner.Hex()).
			Str("receiver", receiver.Hex()).
			Msg("redemption completed")

		return nil
	})
	if err != nil {
		return nil, err
	}

	return assets, nil
}
