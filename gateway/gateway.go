package gateway

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/swap"
	"github.com/optakt/lever/token"
)

// Gateway converts between the base asset and the collateral asset through
// two hops: the stable-swap pool and the yield wrapper.
type Gateway struct {
	log        zerolog.Logger
	address    common.Address
	book       *token.Book
	pool       *Pool
	wrapper    *Wrapper
	base       token.Asset
	collateral token.Asset
	// price of one stable unit in base units, in wad
	price *big.Int
}

// New creates a gateway holding the pool's base reserve at the given address.
func New(log zerolog.Logger, book *token.Book, address common.Address, base token.Asset, collateral token.Asset, pool *Pool, wrapper *Wrapper) (*Gateway, error) {

	reserveBase, _ := pool.Reserves()
	err := book.Mint(base, address, reserveBase)
	if err != nil {
		return nil, fmt.Errorf("could not fund gateway reserve: %w", err)
	}

	g := Gateway{
		log:        log.With().Str("component", "gateway").Logger(),
		address:    address,
		book:       book,
		pool:       pool,
		wrapper:    wrapper,
		base:       base,
		collateral: collateral,
		price:      big.NewInt(0).Set(b.WAD),
	}

	return &g, nil
}

func (g *Gateway) Base() token.Asset {
	return g.base
}

func (g *Gateway) Collateral() token.Asset {
	return g.collateral
}

func (g *Gateway) Pool() *Pool {
	return g.pool
}

func (g *Gateway) Wrapper() *Wrapper {
	return g.wrapper
}

// Price returns the oracle price of the stable asset in the base asset.
func (g *Gateway) Price() *big.Int {
	return big.NewInt(0).Set(g.price)
}

// SetPrice sets the oracle price of the stable asset in wad. It defaults to
// one.
func (g *Gateway) SetPrice(price *big.Int) {
	g.price = big.NewInt(0).Set(price)
}

// Convert takes amount of the from asset out of the holder's balance and
// credits the holder with the other asset, returning the amount credited.
func (g *Gateway) Convert(holder common.Address, from token.Asset, amount *big.Int) (*big.Int, error) {
	if amount.Sign() == 0 {
		return big.NewInt(0), nil
	}

	switch from {

	case g.base:
		err := g.book.Transfer(g.base, holder, g.address, amount)
		if err != nil {
			return nil, fmt.Errorf("could not pull base asset: %w", err)
		}
		stable, err := g.pool.SwapBaseForStable(amount)
		if err != nil {
			return nil, err
		}
		shares := g.wrapper.Deposit(stable)
		err = g.book.Mint(g.collateral, holder, shares)
		if err != nil {
			return nil, fmt.Errorf("could not credit collateral: %w", err)
		}
		g.log.Debug().Str("base", amount.String()).Str("collateral", shares.String()).Msg("converted base to collateral")
		return shares, nil

	case g.collateral:
		err := g.book.Burn(g.collateral, holder, amount)
		if err != nil {
			return nil, fmt.Errorf("could not pull collateral: %w", err)
		}
		stable := g.wrapper.Redeem(amount)
		out, err := g.pool.SwapStableForBase(stable)
		if err != nil {
			return nil, err
		}
		err = g.book.Transfer(g.base, g.address, holder, out)
		if err != nil {
			return nil, fmt.Errorf("could not credit base asset: %w", err)
		}
		g.log.Debug().Str("collateral", amount.String()).Str("base", out.String()).Msg("converted collateral to base")
		return out, nil

	default:
		return nil, fmt.Errorf("could not convert %s: %w", from, ErrUnknownAsset)
	}
}

// Preview returns what Convert would credit, without changing any state.
func (g *Gateway) Preview(from token.Asset, amount *big.Int) (*big.Int, error) {
	switch from {
	case g.base:
		stable := g.pool.PreviewBaseForStable(amount)
		return g.wrapper.ConvertToShares(stable), nil
	case g.collateral:
		stable := g.wrapper.ConvertToAssets(amount)
		return g.pool.PreviewStableForBase(stable), nil
	default:
		return nil, fmt.Errorf("could not preview %s: %w", from, ErrUnknownAsset)
	}
}

// RequiredCollateral returns the collateral that converts into at least
// amount of the base asset at current reserves.
func (g *Gateway) RequiredCollateral(amount *big.Int) (*big.Int, error) {
	stable := g.pool.RequiredStableForBase(amount)
	if stable == nil {
		return nil, fmt.Errorf("could not source %s base: %w", amount, ErrInsufficientReserves)
	}
	return g.wrapper.PreviewWithdraw(stable), nil
}

// PriceOf values collateral in the base asset: the wrapper's redemption value
// at the oracle price of the stable asset, net of the swap fee. Pool reserves
// do not enter the valuation.
func (g *Gateway) PriceOf(collateral *big.Int) *big.Int {
	if collateral.Sign() == 0 {
		return big.NewInt(0)
	}
	stable := g.wrapper.ConvertToAssets(collateral)
	return swap.QuoteNet(stable, b.WAD, g.price, g.pool.Fee())
}
