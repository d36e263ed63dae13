package market

import (
	"fmt"
	"math/big"
)

// FlashLoan advances amount of the loan asset to the receiver and calls its
// OnLoanReceived hook. The advance must be back in the receiver's balance
// when the hook returns; otherwise, or when the hook fails, every state change
// made since the advance is rolled back.
func (m *Market) FlashLoan(receiver Borrower, amount *big.Int, payload []byte) error {

	if m.lending {
		return ErrReentrantLoan
	}
	m.lending = true
	defer func() {
		m.lending = false
	}()

	return m.journal.Atomic(func() error {

		if m.Liquidity().Cmp(amount) < 0 {
			return fmt.Errorf("could not advance %s: %w", amount, ErrInsufficientLiquidity)
		}

		err := m.book.Transfer(m.loan, m.address, receiver.Address(), amount)
		if err != nil {
			return fmt.Errorf("could not advance loan: %w", err)
		}

		err = receiver.OnLoanReceived(m.address, amount, payload)
		if err != nil {
			return fmt.Errorf("loan callback failed: %w", err)
		}

		err = m.book.Transfer(m.loan, receiver.Address(), m.address, amount)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrLoanNotRepaid, err)
		}

		m.log.Debug().Str("receiver", receiver.Address().Hex()).Str("amount", amount.String()).Msg("uncollateralized loan settled")

		return nil
	})
}
