package vault

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/b"
)

func TestVault_OnLoanReceived(t *testing.T) {

	encode := func(t *testing.T, op loanOp) []byte {
		t.Helper()
		payload, err := rlp.EncodeToBytes(&op)
		require.NoError(t, err)
		return payload
	}

	t.Run("unauthorized caller", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanBuild, b.Units(1))
		f.vault.pending = &op

		err := f.vault.OnLoanReceived(alice, op.Amount, encode(t, op))
		assert.ErrorIs(t, err, ErrUnauthorizedCaller)
	})

	t.Run("no loan requested", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanBuild, b.Units(1))

		err := f.vault.OnLoanReceived(marketAddress, op.Amount, encode(t, op))
		assert.ErrorIs(t, err, ErrUnexpectedLoan)
	})

	t.Run("unknown operation", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanBuild, b.Units(1))
		f.vault.pending = &op

		other := newLoanOp(loanBuild, b.Units(1))
		err := f.vault.OnLoanReceived(marketAddress, op.Amount, encode(t, other))
		assert.ErrorIs(t, err, ErrLoanMismatch)
	})

	t.Run("wrong amount", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanRepay, b.Units(1))
		f.vault.pending = &op

		err := f.vault.OnLoanReceived(marketAddress, b.Units(2), encode(t, op))
		assert.ErrorIs(t, err, ErrLoanMismatch)
	})

	t.Run("wrong kind", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanRepay, b.Units(1))
		f.vault.pending = &op

		changed := op
		changed.Kind = loanBuild
		err := f.vault.OnLoanReceived(marketAddress, op.Amount, encode(t, changed))
		assert.ErrorIs(t, err, ErrLoanMismatch)
	})

	t.Run("malformed payload", func(t *testing.T) {
		f := setupVault(t)
		op := newLoanOp(loanBuild, b.Units(1))
		f.vault.pending = &op

		err := f.vault.OnLoanReceived(marketAddress, op.Amount, []byte{0xde, 0xad})
		assert.ErrorIs(t, err, ErrLoanMismatch)
	})

	t.Run("loan forced by the market is rolled back", func(t *testing.T) {
		f := setupVault(t)
		f.deposit(t, alice, 1000)
		liquidity := f.market.Liquidity()

		op := newLoanOp(loanRepay, b.Units(10))
		err := f.market.FlashLoan(f.vault, op.Amount, encode(t, op))
		assert.ErrorIs(t, err, ErrUnexpectedLoan)

		assert.Equal(t, 0, f.market.Liquidity().Cmp(liquidity))
		assert.Equal(t, 0, f.vault.CurrentPosition().Idle.Sign())
	})
}

func TestLoanOp_Payload(t *testing.T) {
	op := newLoanOp(loanRepay, b.Units(3000))
	op.Shares = big.NewInt(12345)
	op.Collateral = b.Units(2800)

	payload, err := rlp.EncodeToBytes(&op)
	require.NoError(t, err)

	var decoded loanOp
	require.NoError(t, rlp.DecodeBytes(payload, &decoded))
	assert.Equal(t, op.ID, decoded.ID)
	assert.Equal(t, op.Kind, decoded.Kind)
	assert.Equal(t, 0, op.Amount.Cmp(decoded.Amount))
	assert.Equal(t, 0, op.Shares.Cmp(decoded.Shares))
	assert.Equal(t, 0, op.Collateral.Cmp(decoded.Collateral))
	assert.Equal(t, 0, decoded.Repay.Sign())
	assert.NotEqual(t, op.ID, newLoanOp(loanRepay, b.Units(3000)).ID)
}
