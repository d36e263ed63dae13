package vault

import (
	"errors"
)

// Configuration errors.
var (
	ErrInvalidRatio                     = errors.New("invalid leverage ratio")
	ErrRatioExceedsLiquidationThreshold = errors.New("leverage ratio exceeds liquidation threshold")
	ErrInvalidFeeRate                   = errors.New("invalid performance fee rate")
	ErrZeroRecipient                    = errors.New("fee recipient is the zero address")
)

// Capacity and solvency errors.
var (
	ErrCapExceeded        = errors.New("deposit exceeds vault capacity")
	ErrDepositTooSmall    = errors.New("deposit too small to mint shares")
	ErrInsolventSupply    = errors.New("vault is insolvent with shares outstanding")
	ErrInsufficientShares = errors.New("insufficient shares")
	ErrInvalidAmount      = errors.New("amount is missing or negative")
	ErrLoanShortfall      = errors.New("released collateral does not cover the loan")
)

// Loan callback errors.
var (
	ErrUnauthorizedCaller = errors.New("loan callback from unauthorized caller")
	ErrUnexpectedLoan     = errors.New("loan callback without an outstanding loan")
	ErrLoanMismatch       = errors.New("loan callback does not match the issued loan")
)
