package market

import (
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/optakt/lever/aave"
	"github.com/optakt/lever/b"
	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/token"
)

// Market is an isolated lending market: one collateral asset, one loan asset,
// debt tracked as shares of a borrow pool whose index grows with interest.
type Market struct {
	log        zerolog.Logger
	address    common.Address
	book       *token.Book
	journal    *journal.Journal
	loan       token.Asset
	collateral token.Asset
	pricer     Pricer
	clock      func() time.Time

	lltv       *big.Int
	rate       *big.Int
	index      *big.Int
	lastUpdate time.Time
	totalDebt  *big.Int
	accounts   map[common.Address]account
	lending    bool
}

func New(log zerolog.Logger, j *journal.Journal, book *token.Book, address common.Address, loan token.Asset, collateral token.Asset, pricer Pricer, params Params) *Market {

	clock := params.Clock
	if clock == nil {
		clock = time.Now
	}

	m := Market{
		log:        log.With().Str("component", "market").Logger(),
		address:    address,
		book:       book,
		journal:    j,
		loan:       loan,
		collateral: collateral,
		pricer:     pricer,
		clock:      clock,
		lltv:       b.Copy(params.LLTV),
		rate:       aave.WadToRay(b.Copy(params.Rate)),
		index:      big.NewInt(0).Set(b.RAY),
		lastUpdate: clock(),
		totalDebt:  big.NewInt(0),
		accounts:   make(map[common.Address]account),
	}

	return &m
}

func (m *Market) Address() common.Address {
	return m.address
}

func (m *Market) LiquidationThreshold() *big.Int {
	return big.NewInt(0).Set(m.lltv)
}

// Liquidity returns the loan asset available to borrow.
func (m *Market) Liquidity() *big.Int {
	return m.book.BalanceOf(m.loan, m.address)
}

// Fund adds lender liquidity to the market.
func (m *Market) Fund(amount *big.Int) error {
	return m.book.Mint(m.loan, m.address, amount)
}

// SetRate accrues interest at the old rate and switches to the new yearly
// wad rate.
func (m *Market) SetRate(rate *big.Int) {
	m.accrue()
	journal.Assign(m.journal, &m.rate, aave.WadToRay(rate))
}

// Index returns the borrow index in ray, including interest not yet accrued.
func (m *Market) Index() *big.Int {
	return m.expectedIndex()
}

// Position returns the collateral units and debt shares of the owner.
func (m *Market) Position(owner common.Address) (*big.Int, *big.Int) {
	acc := m.account(owner)
	return big.NewInt(0).Set(acc.collateral), big.NewInt(0).Set(acc.debtShares)
}

// DebtValue returns the owner's current debt including pending interest,
// rounded up.
func (m *Market) DebtValue(owner common.Address) *big.Int {
	return m.SharesToDebt(m.account(owner).debtShares)
}

// SharesToDebt values debt shares at the current index, rounded up.
func (m *Market) SharesToDebt(shares *big.Int) *big.Int {
	return b.MulDivUp(shares, m.expectedIndex(), b.RAY)
}

func (m *Market) SupplyCollateral(owner common.Address, amount *big.Int) error {
	if amount.Sign() == 0 {
		return nil
	}
	err := m.book.Transfer(m.collateral, owner, m.address, amount)
	if err != nil {
		return fmt.Errorf("could not supply collateral: %w", err)
	}
	acc := m.account(owner)
	acc.collateral = big.NewInt(0).Add(acc.collateral, amount)
	m.setAccount(owner, acc)
	return nil
}

func (m *Market) WithdrawCollateral(owner common.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	err := m.journal.Atomic(func() error {
		m.accrue()
		acc := m.account(owner)
		if acc.collateral.Cmp(amount) < 0 {
			return fmt.Errorf("could not withdraw %s (supplied %s): %w", amount, acc.collateral, ErrInsufficientCollateral)
		}
		acc.collateral = big.NewInt(0).Sub(acc.collateral, amount)
		m.setAccount(owner, acc)
		err := m.checkHealth(owner)
		if err != nil {
			return err
		}
		err = m.book.Transfer(m.collateral, m.address, owner, amount)
		if err != nil {
			return fmt.Errorf("could not release collateral: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return big.NewInt(0).Set(amount), nil
}

func (m *Market) Borrow(owner common.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	err := m.journal.Atomic(func() error {
		m.accrue()
		if m.Liquidity().Cmp(amount) < 0 {
			return fmt.Errorf("could not borrow %s: %w", amount, ErrInsufficientLiquidity)
		}
		shares := b.MulDivUp(amount, b.RAY, m.index)
		acc := m.account(owner)
		acc.debtShares = big.NewInt(0).Add(acc.debtShares, shares)
		m.setAccount(owner, acc)
		journal.Assign(m.journal, &m.totalDebt, big.NewInt(0).Add(m.totalDebt, shares))
		err := m.checkHealth(owner)
		if err != nil {
			return err
		}
		err = m.book.Transfer(m.loan, m.address, owner, amount)
		if err != nil {
			return fmt.Errorf("could not transfer borrowed funds: %w", err)
		}
		m.log.Debug().Str("owner", owner.Hex()).Str("amount", amount.String()).Str("shares", shares.String()).Msg("borrowed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return big.NewInt(0).Set(amount), nil
}

// Repay pays back an amount of the loan asset. Converting the amount to
// shares rounds down, so a full repayment by amount can leave dust shares.
func (m *Market) Repay(owner common.Address, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}
	m.accrue()
	acc := m.account(owner)
	if amount.Cmp(b.MulDivUp(acc.debtShares, m.index, b.RAY)) > 0 {
		return nil, fmt.Errorf("could not repay %s: %w", amount, ErrRepayExceedsDebt)
	}
	shares := b.Min(b.MulDiv(amount, b.RAY, m.index), acc.debtShares)
	return amount, m.repay(owner, acc, shares, amount)
}

// RepayShares burns an exact number of debt shares, charging their value
// rounded up. It returns the amount paid.
func (m *Market) RepayShares(owner common.Address, shares *big.Int) (*big.Int, error) {
	if shares.Sign() == 0 {
		return big.NewInt(0), nil
	}
	m.accrue()
	acc := m.account(owner)
	if shares.Cmp(acc.debtShares) > 0 {
		return nil, fmt.Errorf("could not repay %s shares (owed %s): %w", shares, acc.debtShares, ErrRepayExceedsDebt)
	}
	amount := b.MulDivUp(shares, m.index, b.RAY)
	return amount, m.repay(owner, acc, shares, amount)
}

func (m *Market) repay(owner common.Address, acc account, shares *big.Int, amount *big.Int) error {
	err := m.book.Transfer(m.loan, owner, m.address, amount)
	if err != nil {
		return fmt.Errorf("could not collect repayment: %w", err)
	}
	acc.debtShares = big.NewInt(0).Sub(acc.debtShares, shares)
	m.setAccount(owner, acc)
	journal.Assign(m.journal, &m.totalDebt, b.SubFloor(m.totalDebt, shares))
	m.log.Debug().Str("owner", owner.Hex()).Str("amount", amount.String()).Str("shares", shares.String()).Msg("repaid")
	return nil
}

func (m *Market) checkHealth(owner common.Address) error {
	acc := m.account(owner)
	if acc.debtShares.Sign() == 0 {
		return nil
	}
	debt := b.MulDivUp(acc.debtShares, m.index, b.RAY)
	limit := b.MulDiv(m.pricer.PriceOf(acc.collateral), m.lltv, b.WAD)
	if debt.Cmp(limit) > 0 {
		return fmt.Errorf("debt %s above limit %s: %w", debt, limit, ErrUnhealthy)
	}
	return nil
}

func (m *Market) accrue() {
	now := m.clock()
	if !now.After(m.lastUpdate) {
		return
	}
	journal.Assign(m.journal, &m.index, m.expectedIndex())
	journal.Assign(m.journal, &m.lastUpdate, now)
}

func (m *Market) expectedIndex() *big.Int {
	now := m.clock()
	if !now.After(m.lastUpdate) {
		return big.NewInt(0).Set(m.index)
	}
	elapsed := uint64(now.Sub(m.lastUpdate) / time.Second)
	factor := aave.CalculateCompoundedInterest(m.rate, elapsed)
	return aave.RayMul(m.index, factor)
}

func (m *Market) account(owner common.Address) account {
	acc, ok := m.accounts[owner]
	if !ok {
		return account{collateral: big.NewInt(0), debtShares: big.NewInt(0)}
	}
	return acc
}

func (m *Market) setAccount(owner common.Address, acc account) {
	previous, existed := m.accounts[owner]
	m.journal.Record(func() {
		if !existed {
			delete(m.accounts, owner)
			return
		}
		m.accounts[owner] = previous
	})
	m.accounts[owner] = acc
}

// TotalBorrowed returns the value of all outstanding debt shares.
func (m *Market) TotalBorrowed() *big.Int {
	return m.SharesToDebt(m.totalDebt)
}
