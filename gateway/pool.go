package gateway

import (
	"fmt"
	"math/big"

	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/swap"
)

// Pool is the stable-swap hop between the base asset and the stable asset
// backing the yield wrapper.
type Pool struct {
	journal       *journal.Journal
	reserveBase   *big.Int
	reserveStable *big.Int
	fee           uint64
}

func NewPool(j *journal.Journal, reserveBase *big.Int, reserveStable *big.Int, fee uint64) *Pool {
	return &Pool{
		journal:       j,
		reserveBase:   big.NewInt(0).Set(reserveBase),
		reserveStable: big.NewInt(0).Set(reserveStable),
		fee:           fee,
	}
}

func (p *Pool) Reserves() (*big.Int, *big.Int) {
	return big.NewInt(0).Set(p.reserveBase), big.NewInt(0).Set(p.reserveStable)
}

func (p *Pool) Fee() uint64 {
	return p.fee
}

// PreviewBaseForStable returns the stable output for a base input.
func (p *Pool) PreviewBaseForStable(amount *big.Int) *big.Int {
	return swap.GetAmountOut(amount, p.reserveBase, p.reserveStable, p.fee)
}

// PreviewStableForBase returns the base output for a stable input.
func (p *Pool) PreviewStableForBase(amount *big.Int) *big.Int {
	return swap.GetAmountOut(amount, p.reserveStable, p.reserveBase, p.fee)
}

// RequiredStableForBase returns the stable input that buys at least amount
// of base, or nil when the pool cannot provide it.
func (p *Pool) RequiredStableForBase(amount *big.Int) *big.Int {
	return swap.GetAmountIn(amount, p.reserveStable, p.reserveBase, p.fee)
}

func (p *Pool) SwapBaseForStable(amount *big.Int) (*big.Int, error) {
	out := p.PreviewBaseForStable(amount)
	if out.Cmp(p.reserveStable) >= 0 {
		return nil, fmt.Errorf("could not swap %s base: %w", amount, ErrInsufficientReserves)
	}
	journal.Assign(p.journal, &p.reserveBase, big.NewInt(0).Add(p.reserveBase, amount))
	journal.Assign(p.journal, &p.reserveStable, big.NewInt(0).Sub(p.reserveStable, out))
	return out, nil
}

func (p *Pool) SwapStableForBase(amount *big.Int) (*big.Int, error) {
	out := p.PreviewStableForBase(amount)
	if out.Cmp(p.reserveBase) >= 0 {
		return nil, fmt.Errorf("could not swap %s stable: %w", amount, ErrInsufficientReserves)
	}
	journal.Assign(p.journal, &p.reserveStable, big.NewInt(0).Add(p.reserveStable, amount))
	journal.Assign(p.journal, &p.reserveBase, big.NewInt(0).Sub(p.reserveBase, out))
	return out, nil
}
