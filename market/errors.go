package market

import (
	"errors"
)

var (
	ErrInsufficientCollateral = errors.New("insufficient collateral")
	ErrInsufficientLiquidity  = errors.New("insufficient liquidity")
	ErrUnhealthy              = errors.New("position would exceed liquidation threshold")
	ErrRepayExceedsDebt       = errors.New("repayment exceeds debt")
	ErrLoanNotRepaid          = errors.New("uncollateralized loan not repaid")
	ErrReentrantLoan          = errors.New("reentrant uncollateralized loan")
)
