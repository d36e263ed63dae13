package token

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/journal"
)

const usdc Asset = "usdc"

var (
	alice = common.HexToAddress("0xa1")
	bob   = common.HexToAddress("0xb0")
)

func TestBook(t *testing.T) {

	t.Run("mint transfer burn", func(t *testing.T) {
		k := NewBook(journal.New())
		require.NoError(t, k.Mint(usdc, alice, big.NewInt(100)))
		require.NoError(t, k.Transfer(usdc, alice, bob, big.NewInt(40)))
		require.NoError(t, k.Burn(usdc, bob, big.NewInt(10)))

		assert.Equal(t, big.NewInt(60), k.BalanceOf(usdc, alice))
		assert.Equal(t, big.NewInt(30), k.BalanceOf(usdc, bob))
		assert.Equal(t, big.NewInt(90), k.Supply(usdc))
	})

	t.Run("insufficient balance", func(t *testing.T) {
		k := NewBook(journal.New())
		require.NoError(t, k.Mint(usdc, alice, big.NewInt(5)))
		err := k.Transfer(usdc, alice, bob, big.NewInt(6))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
		err = k.Burn(usdc, alice, big.NewInt(6))
		assert.ErrorIs(t, err, ErrInsufficientBalance)
	})

	t.Run("rollback restores balances and supply", func(t *testing.T) {
		j := journal.New()
		k := NewBook(j)
		require.NoError(t, j.Atomic(func() error {
			return k.Mint(usdc, alice, big.NewInt(100))
		}))

		err := j.Atomic(func() error {
			require.NoError(t, k.Transfer(usdc, alice, bob, big.NewInt(50)))
			require.NoError(t, k.Mint(usdc, bob, big.NewInt(7)))
			return errors.New("abort")
		})
		require.Error(t, err)

		assert.Equal(t, big.NewInt(100), k.BalanceOf(usdc, alice))
		assert.Equal(t, big.NewInt(0), k.BalanceOf(usdc, bob))
		assert.Equal(t, big.NewInt(100), k.Supply(usdc))
	})
}
