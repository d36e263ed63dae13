package vault

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/gateway"
	"github.com/optakt/lever/journal"
	"github.com/optakt/lever/market"
	"github.com/optakt/lever/position"
	"github.com/optakt/lever/token"
)

const (
	usdc   token.Asset = "usdc"
	susde  token.Asset = "susde"
	shares token.Asset = "lvusdc"
)

var (
	vaultAddress   = common.HexToAddress("0x7a")
	marketAddress  = common.HexToAddress("0x3a")
	gatewayAddress = common.HexToAddress("0x6a")
	feeRecipient   = common.HexToAddress("0xfee")
	alice          = common.HexToAddress("0xa1")
	bob            = common.HexToAddress("0xb0")
)

type fixture struct {
	now     time.Time
	journal *journal.Journal
	book    *token.Book
	gateway *gateway.Gateway
	market  *market.Market
	vault   *Vault
}

func wad(t *testing.T, s string) *big.Int {
	t.Helper()
	x, err := b.ParseWad(s)
	require.NoError(t, err)
	return x
}

func leveraged(t *testing.T, s string) position.Leverage {
	t.Helper()
	return position.Leveraged(wad(t, s))
}

// setupVault builds a vault over a sUSDe-like wrapper at a 1.1 exchange rate,
// a deep 1bp stable-swap pool and a market with an 86% liquidation threshold.
func setupVault(t *testing.T, options ...func(*Params)) *fixture {
	t.Helper()
	return setupVaultWithPool(t, 1_000_000_000, options...)
}

// setupVaultWithPool is setupVault with the given whole-token reserve on each
// side of the pool.
func setupVaultWithPool(t *testing.T, reserve int64, options ...func(*Params)) *fixture {
	t.Helper()

	f := fixture{
		now:     time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC),
		journal: journal.New(),
	}
	f.book = token.NewBook(f.journal)

	pool := gateway.NewPool(f.journal, b.Units(reserve), b.Units(reserve), 1)
	wrapper := gateway.NewWrapper(f.journal)
	wrapper.Deposit(b.Units(1_000_000))
	wrapper.SetExchangeRate(wad(t, "1.1"))

	var err error
	f.gateway, err = gateway.New(zerolog.Nop(), f.book, gatewayAddress, usdc, susde, pool, wrapper)
	require.NoError(t, err)

	f.market = market.New(zerolog.Nop(), f.journal, f.book, marketAddress, usdc, susde, f.gateway, market.Params{
		LLTV:  wad(t, "0.86"),
		Rate:  wad(t, "0.05"),
		Clock: func() time.Time { return f.now },
	})
	require.NoError(t, f.market.Fund(b.Units(100_000_000)))

	params := Params{
		Shares:       shares,
		Target:       leveraged(t, "0.75"),
		MaxRatio:     wad(t, "0.9"),
		FeeRecipient: feeRecipient,
	}
	for _, option := range options {
		option(&params)
	}

	f.vault, err = New(zerolog.Nop(), f.journal, f.book, vaultAddress, f.market, f.gateway, params)
	require.NoError(t, err)

	require.NoError(t, f.book.Mint(usdc, alice, b.Units(1_000_000)))
	require.NoError(t, f.book.Mint(usdc, bob, b.Units(1_000_000)))

	return &f
}

func withTarget(target position.Leverage) func(*Params) {
	return func(p *Params) {
		p.Target = target
	}
}

func withFee(rate *big.Int) func(*Params) {
	return func(p *Params) {
		p.PerformanceFee = rate
	}
}

// requireNear checks a wad amount against a float within a relative tolerance.
func requireNear(t *testing.T, expected float64, actual *big.Int, epsilon float64) {
	t.Helper()
	require.InEpsilon(t, expected, b.ToFloat(actual, 18), epsilon)
}

func (f *fixture) deposit(t *testing.T, who common.Address, amount int64) *big.Int {
	t.Helper()
	minted, err := f.vault.Deposit(b.Units(amount), who, who)
	require.NoError(t, err)
	return minted
}

// shareValue returns the base asset value of the holder's shares.
func (f *fixture) shareValue(holder common.Address) *big.Int {
	return b.MulDiv(f.vault.BalanceOf(holder), f.vault.NAV(), f.vault.TotalSupply())
}

func TestNew(t *testing.T) {

	j := journal.New()
	book := token.NewBook(j)

	tests := []struct {
		name   string
		params Params
		err    error
	}{
		{
			name:   "ratio ceiling above one",
			params: Params{MaxRatio: wad(t, "1"), FeeRecipient: feeRecipient},
			err:    ErrInvalidRatio,
		},
		{
			name:   "missing ratio ceiling",
			params: Params{FeeRecipient: feeRecipient},
			err:    ErrInvalidRatio,
		},
		{
			name:   "fee above maximum",
			params: Params{MaxRatio: wad(t, "0.9"), PerformanceFee: wad(t, "0.6"), FeeRecipient: feeRecipient},
			err:    ErrInvalidFeeRate,
		},
		{
			name:   "zero recipient",
			params: Params{MaxRatio: wad(t, "0.9")},
			err:    ErrZeroRecipient,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := New(zerolog.Nop(), j, book, vaultAddress, nil, nil, test.params)
			require.ErrorIs(t, err, test.err)
		})
	}
}
