package vault

import (
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/market"
	"github.com/optakt/lever/position"
	"github.com/optakt/lever/token"
)

// MaxPerformanceFee caps the performance fee at 50% in wad.
var MaxPerformanceFee = big.NewInt(0).Div(b.WAD, b.D2)

// DefaultDeleverBuffer is the extra collateral, in basis points, withdrawn
// on top of a repayment loan to absorb rate and rounding drift.
const DefaultDeleverBuffer = 10

// Market is the lending market holding the vault's collateral and debt.
type Market interface {
	Address() common.Address
	SupplyCollateral(owner common.Address, amount *big.Int) error
	WithdrawCollateral(owner common.Address, amount *big.Int) (*big.Int, error)
	Borrow(owner common.Address, amount *big.Int) (*big.Int, error)
	Repay(owner common.Address, amount *big.Int) (*big.Int, error)
	RepayShares(owner common.Address, shares *big.Int) (*big.Int, error)
	Position(owner common.Address) (*big.Int, *big.Int)
	DebtValue(owner common.Address) *big.Int
	SharesToDebt(shares *big.Int) *big.Int
	LiquidationThreshold() *big.Int
	FlashLoan(receiver market.Borrower, amount *big.Int, payload []byte) error
}

// Gateway converts between the base asset and the collateral asset and
// prices collateral in the base asset.
type Gateway interface {
	Base() token.Asset
	Collateral() token.Asset
	Convert(holder common.Address, from token.Asset, amount *big.Int) (*big.Int, error)
	Preview(from token.Asset, amount *big.Int) (*big.Int, error)
	RequiredCollateral(amount *big.Int) (*big.Int, error)
	PriceOf(collateral *big.Int) *big.Int
}

// Params configures a vault at creation.
type Params struct {
	Shares         token.Asset
	Target         position.Leverage
	MaxRatio       *big.Int
	PerformanceFee *big.Int
	FeeRecipient   common.Address
	// MaxTotalValue caps NAV plus the deposit; zero disables the cap.
	MaxTotalValue *big.Int
	DeleverBuffer uint64
}

// Vault manages a leveraged position on behalf of its share holders. All
// public operations are serialized by a single lock and either complete or
// leave no trace.
type Vault struct {
	mu sync.Mutex

	log     zerolog.Logger
	address common.Address
	journal *journal.Journal
	book    *token.Book
	market  Market
	gateway Gateway
	shares  token.Asset

	target        position.Leverage
	maxRatio      *big.Int
	highWaterMark *big.Int
	feeRate       *big.Int
	feeRecipient  common.Address
	maxTotalValue *big.Int
	buffer        uint64

	pending *loanOp
}

func New(log zerolog.Logger, j *journal.Journal, book *token.Book, address common.Address, market Market, gateway Gateway, params Params) (*Vault, error) {

	if params.MaxRatio == nil || params.MaxRatio.Sign() <= 0 || params.MaxRatio.Cmp(b.WAD) >= 0 {
		return nil, fmt.Errorf("maximum ratio must be between zero and one: %w", ErrInvalidRatio)
	}
	feeRate := b.Copy(params.PerformanceFee)
	if feeRate.Cmp(MaxPerformanceFee) > 0 {
		return nil, ErrInvalidFeeRate
	}
	if params.FeeRecipient == (common.Address{}) {
		return nil, ErrZeroRecipient
	}
	buffer := params.DeleverBuffer
	if buffer == 0 {
		buffer = DefaultDeleverBuffer
	}
	target := params.Target
	if target.Kind() == 0 {
		target = position.Idle()
	}

	v := Vault{
		log:           log.With().Str("component", "vault").Logger(),
		address:       address,
		journal:       j,
		book:          book,
		market:        market,
		gateway:       gateway,
		shares:        params.Shares,
		target:        target,
		maxRatio:      b.Copy(params.MaxRatio),
		highWaterMark: big.NewInt(0).Set(b.WAD),
		feeRate:       feeRate,
		feeRecipient:  params.FeeRecipient,
		maxTotalValue: b.Copy(params.MaxTotalValue),
		buffer:        buffer,
	}

	err := v.validate(target)
	if err != nil {
		return nil, err
	}

	return &v, nil
}

func (v *Vault) Address() common.Address {
	return v.address
}

func (v *Vault) BalanceOf(holder common.Address) *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.book.BalanceOf(v.shares, holder)
}

func (v *Vault) TotalSupply() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.book.Supply(v.shares)
}

func (v *Vault) Target() position.Leverage {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.target
}

func (v *Vault) HighWaterMark() *big.Int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return big.NewInt(0).Set(v.highWaterMark)
}

// IsHealthy reports whether the vault has positive value or no debt.
func (v *Vault) IsHealthy() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.nav().Sign() > 0 || v.market.DebtValue(v.address).Sign() == 0
}

// SetPerformanceFee charges fees owed under the current rate, then switches
// to the new wad rate.
func (v *Vault) SetPerformanceFee(rate *big.Int) error {
	if rate == nil || rate.Sign() < 0 || rate.Cmp(MaxPerformanceFee) > 0 {
		return ErrInvalidFeeRate
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.journal.Atomic(func() error {
		_, _, err := v.accrueFee()
		if err != nil {
			return err
		}
		journal.Assign(v.journal, &v.feeRate, big.NewInt(0).Set(rate))
		return nil
	})
}

func (v *Vault) SetFeeRecipient(recipient common.Address) error {
	if recipient == (common.Address{}) {
		return ErrZeroRecipient
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.feeRecipient = recipient
	return nil
}

// SetMaxTotalValue sets the deposit cap; zero disables it.
func (v *Vault) SetMaxTotalValue(limit *big.Int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.maxTotalValue = b.Copy(limit)
}

func (v *Vault) idle() *big.Int {
	return v.book.BalanceOf(v.gateway.Base(), v.address)
}

func (v *Vault) currentPosition() position.Position {
	collateral, shares := v.market.Position(v.address)
	return position.Position{Collateral: collateral, DebtShares: shares}
}
