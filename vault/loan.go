package vault

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/google/uuid"
)

const (
	loanBuild uint8 = iota + 1
	loanRepay
)

// loanOp is the operation the vault performs inside an uncollateralized loan.
// It travels RLP-encoded as the loan payload.
//
// A build converts Principal plus the advance into collateral, supplies it
// and borrows the advance from the market. A repay pays back debt (exact
// Shares when set, otherwise Repay in assets), withdraws Collateral and
// converts it into the base asset that returns the advance.
type loanOp struct {
	ID         [16]byte
	Kind       uint8
	Amount     *big.Int
	Principal  *big.Int
	Shares     *big.Int
	Repay      *big.Int
	Collateral *big.Int
}

func newLoanOp(kind uint8, amount *big.Int) loanOp {
	return loanOp{
		ID:         uuid.New(),
		Kind:       kind,
		Amount:     big.NewInt(0).Set(amount),
		Principal:  big.NewInt(0),
		Shares:     big.NewInt(0),
		Repay:      big.NewInt(0),
		Collateral: big.NewInt(0),
	}
}

// issueLoan requests the loan for op from the market; the market calls back
// into OnLoanReceived before returning.
func (v *Vault) issueLoan(op loanOp) error {

	payload, err := rlp.EncodeToBytes(&op)
	if err != nil {
		return fmt.Errorf("could not encode loan payload: %w", err)
	}

	v.pending = &op
	defer func() {
		v.pending = nil
	}()

	err = v.market.FlashLoan(v, op.Amount, payload)
	if err != nil {
		return fmt.Errorf("could not complete loan %s: %w", uuid.UUID(op.ID), err)
	}

	return nil
}

// OnLoanReceived is the market's callback for loans issued by the vault. It
// runs inside the vault operation that requested the loan, so it does not
// take the vault lock.
func (v *Vault) OnLoanReceived(caller common.Address, amount *big.Int, payload []byte) error {

	if caller != v.market.Address() {
		return fmt.Errorf("caller %s: %w", caller.Hex(), ErrUnauthorizedCaller)
	}
	if v.pending == nil {
		return ErrUnexpectedLoan
	}

	var op loanOp
	err := rlp.DecodeBytes(payload, &op)
	if err != nil {
		return fmt.Errorf("could not decode loan payload (%s): %w", err, ErrLoanMismatch)
	}
	pending := *v.pending
	if op.ID != pending.ID || op.Kind != pending.Kind || amount.Cmp(pending.Amount) != 0 {
		return fmt.Errorf("loan %s: %w", uuid.UUID(op.ID), ErrLoanMismatch)
	}

	v.log.Debug().
		Str("loan", uuid.UUID(pending.ID).String()).
		Uint8("kind", pending.Kind).
		Str("amount", amount.String()).
		Msg("loan received")

	switch pending.Kind {
	case loanBuild:
		return v.onBuild(pending)
	case loanRepay:
		return v.onRepay(pending)
	default:
		return fmt.Errorf("loan kind %d: %w", pending.Kind, ErrLoanMismatch)
	}
}

func (v *Vault) onBuild(op loanOp) error {

	total := big.NewInt(0).Add(op.Principal, op.Amount)
	collateral, err := v.gateway.Convert(v.address, v.gateway.Base(), total)
	if err != nil {
		return fmt.Errorf("could not convert to collateral: %w", err)
	}

	err = v.market.SupplyCollateral(v.address, collateral)
	if err != nil {
		return fmt.Errorf("could not supply collateral: %w", err)
	}

	_, err = v.market.Borrow(v.address, op.Amount)
	if err != nil {
		return fmt.Errorf("could not borrow: %w", err)
	}

	return nil
}

func (v *Vault) onRepay(op loanOp) error {

	var err error
	switch {
	case op.Shares.Sign() > 0:
		_, err = v.market.RepayShares(v.address, op.Shares)
	case op.Repay.Sign() > 0:
		_, err = v.market.Repay(v.address, op.Repay)
	}
	if err != nil {
		return fmt.Errorf("could not repay debt: %w", err)
	}

	withdrawn, err := v.market.WithdrawCollateral(v.address, op.Collateral)
	if err != nil {
		return fmt.Errorf("could not withdraw collateral: %w", err)
	}

	proceeds, err := v.gateway.Convert(v.address, v.gateway.Collateral(), withdrawn)
	if err != nil {
		return fmt.Errorf("could not convert collateral: %w", err)
	}

	if proceeds.Cmp(op.Amount) < 0 {
		return fmt.Errorf("proceeds %s below loan %s: %w", proceeds, op.Amount, ErrLoanShortfall)
	}

	return nil
}
