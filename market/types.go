package market

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Pricer values collateral in the loan asset.
type Pricer interface {
	PriceOf(collateral *big.Int) *big.Int
}

// Borrower receives uncollateralized loans. The advance must be back in the
// borrower's balance when OnLoanReceived returns.
type Borrower interface {
	Address() common.Address
	OnLoanReceived(caller common.Address, amount *big.Int, payload []byte) error
}

// Params groups the risk and rate settings of the market.
type Params struct {
	// LLTV is the liquidation loan-to-value in wad; borrowing and withdrawals
	// must keep debt at or below collateral value times LLTV.
	LLTV *big.Int
	// Rate is the yearly borrow rate in wad.
	Rate *big.Int
	// Clock returns the current time; it defaults to time.Now.
	Clock func() time.Time
}

type account struct {
	collateral *big.Int
	debtShares *big.Int
}
