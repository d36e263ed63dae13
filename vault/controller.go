package vault

import (
	"fmt"
	"math/big"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/position"
)

// Rebalance moves the position to the target leverage. An insolvent vault
// with outstanding debt cannot delever without outside capital, so the call
// then returns without changing anything.
func (v *Vault) Rebalance(target position.Leverage) error {

	v.mu.Lock()
	defer v.mu.Unlock()

	err := v.validate(target)
	if err != nil {
		return err
	}

	return v.journal.Atomic(func() error {

		nav, _, err := v.accrueFee()
		if err != nil {
			return err
		}

		debt := v.market.DebtValue(v.address)
		if debt.Sign() > 0 && nav.Sign() == 0 {
			v.log.Warn().
				Str("debt", debt.String()).
				Str("target", target.String()).
				Msg("vault insolvent, skipping rebalance")
			return nil
		}

		previous := v.target
		journal.Assign(v.journal, &v.target, target)

		switch target.Kind() {

		case position.KindIdle:
			err = v.exit()

		case position.KindUnleveraged:
			if debt.Sign() > 0 {
				err = v.delever(debt)
			}
			if err == nil {
				err = v.deployIdle()
			}

		case position.KindLeveraged:
			ratio := target.Ratio()
			targetDebt := b.MulDiv(nav, ratio, big.NewInt(0).Sub(b.WAD, ratio))
			switch targetDebt.Cmp(debt) {
			case 1:
				err = v.build(v.idle(), big.NewInt(0).Sub(targetDebt, debt))
			case -1:
				err = v.delever(big.NewInt(0).Sub(debt, targetDebt))
				if err == nil {
					err = v.deployIdle()
				}
			default:
				err = v.deployIdle()
			}
		}
		if err != nil {
			return fmt.Errorf("could not rebalance from %s to %s: %w", previous, target, err)
		}

		v.log.Info().
			Str("from", previous.String()).
			Str("to", target.String()).
			Str("nav", v.nav().String()).
			Str("debt", v.market.DebtValue(v.address).String()).
			Msg("rebalance completed")

		return nil
	})
}

func (v *Vault) validate(target position.Leverage) error {
	switch target.Kind() {
	case position.KindIdle, position.KindUnleveraged:
		return nil
	case position.KindLeveraged:
		ratio := target.Ratio()
		if ratio.Sign() <= 0 || ratio.Cmp(v.maxRatio) >= 0 {
			return fmt.Errorf("ratio %s not below %s: %w", b.FormatWad(ratio), b.FormatWad(v.maxRatio), ErrInvalidRatio)
		}
		threshold := v.market.LiquidationThreshold()
		if ratio.Cmp(threshold) >= 0 {
			return fmt.Errorf("ratio %s not below %s: %w", b.FormatWad(ratio), b.FormatWad(threshold), ErrRatioExceedsLiquidationThreshold)
		}
		return nil
	default:
		return ErrInvalidRatio
	}
}

// build turns principal base asset plus a borrow of the given size into
// collateral. Without a borrow the principal is converted and supplied
// directly; otherwise the borrow is advanced by an uncollateralized loan that
// the real borrow repays.
func (v *Vault) build(principal *big.Int, borrow *big.Int) error {

	if borrow.Sign() == 0 {
		if principal.Sign() == 0 {
			return nil
		}
		collateral, err := v.gateway.Convert(v.address, v.gateway.Base(), principal)
		if err != nil {
			return fmt.Errorf("could not convert to collateral: %w", err)
		}
		err = v.market.SupplyCollateral(v.address, collateral)
		if err != nil {
			return fmt.Errorf("could not supply collateral: %w", err)
		}
		return nil
	}

	op := newLoanOp(loanBuild, borrow)
	op.Principal = big.NewInt(0).Set(principal)

	v.log.Debug().
		Str("principal", principal.String()).
		Str("borrow", borrow.String()).
		Msg("building position")

	return v.issueLoan(op)
}

// buildForDeposit sizes the borrow for new assets at the target ratio.
func (v *Vault) buildForDeposit(assets *big.Int) error {
	ratio := v.target.Ratio()
	borrow := b.MulDiv(assets, ratio, big.NewInt(0).Sub(b.WAD, ratio))
	return v.build(assets, borrow)
}

// unwindProportional releases the given wad share of the idle balance and of
// the position. It returns the base asset realized: the idle share plus the
// measured growth of the idle balance from unwinding the position.
func (v *Vault) unwindProportional(ratio *big.Int) (*big.Int, error) {

	before := v.idle()
	idleShare := b.MulDiv(before, ratio, b.WAD)

	pos := v.currentPosition()
	release := pos.Scale(ratio, b.WAD)

	switch {

	case release.Collateral.Sign() == 0:
		// too small to touch the position

	case pos.DebtShares.Sign() == 0:
		withdrawn, err := v.market.WithdrawCollateral(v.address, release.Collateral)
		if err != nil {
			return nil, fmt.Errorf("could not withdraw collateral: %w", err)
		}
		_, err = v.gateway.Convert(v.address, v.gateway.Collateral(), withdrawn)
		if err != nil {
			return nil, fmt.Errorf("could not convert collateral: %w", err)
		}

	case release.DebtShares.Sign() == 0:
		// too small to touch the position

	default:
		op := newLoanOp(loanRepay, v.market.SharesToDebt(release.DebtShares))
		op.Shares = release.DebtShares
		op.Collateral = release.Collateral
		err := v.issueLoan(op)
		if err != nil {
			return nil, err
		}
	}

	realized := big.NewInt(0).Sub(v.idle(), before)
	realized.Add(realized, idleShare)
	if realized.Sign() < 0 {
		realized.SetInt64(0)
	}

	return realized, nil
}

// exit repays all debt and converts all collateral into the base asset.
func (v *Vault) exit() error {

	pos := v.currentPosition()

	if pos.DebtShares.Sign() == 0 {
		if pos.Collateral.Sign() == 0 {
			return nil
		}
		withdrawn, err := v.market.WithdrawCollateral(v.address, pos.Collateral)
		if err != nil {
			return fmt.Errorf("could not withdraw collateral: %w", err)
		}
		_, err = v.gateway.Convert(v.address, v.gateway.Collateral(), withdrawn)
		if err != nil {
			return fmt.Errorf("could not convert collateral: %w", err)
		}
		return nil
	}

	op := newLoanOp(loanRepay, v.market.SharesToDebt(pos.DebtShares))
	op.Shares = pos.DebtShares
	op.Collateral = pos.Collateral

	return v.issueLoan(op)
}

// delever repays the given amount of debt with a loan covered by just enough
// collateral plus the safety buffer. Repaying the whole debt switches to
// share-denominated repayment so no dust is left behind.
func (v *Vault) delever(amount *big.Int) error {

	pos := v.currentPosition()
	debt := v.market.DebtValue(v.address)

	var op loanOp
	if amount.Cmp(debt) >= 0 {
		op = newLoanOp(loanRepay, debt)
		op.Shares = pos.DebtShares
	} else {
		op = newLoanOp(loanRepay, amount)
		op.Repay = big.NewInt(0).Set(amount)
	}

	needed := b.MulDivUp(op.Amount, big.NewInt(0).SetUint64(10_000+v.buffer), b.BPS)
	op.Collateral = v.collateralFor(needed, pos.Collateral)

	v.log.Debug().
		Str("repay", op.Amount.String()).
		Str("collateral", op.Collateral.String()).
		Bool("full", op.Shares.Sign() > 0).
		Msg("delevering position")

	return v.issueLoan(op)
}

// deployIdle converts the whole idle balance into supplied collateral.
func (v *Vault) deployIdle() error {
	return v.build(v.idle(), big.NewInt(0))
}

// collateralFor returns the collateral that converts into at least value,
// capped at held.
func (v *Vault) collateralFor(value *big.Int, held *big.Int) *big.Int {
	collateral, err := v.gateway.RequiredCollateral(value)
	if err != nil {
		return big.NewInt(0).Set(held)
	}
	return b.Min(collateral, held)
}
