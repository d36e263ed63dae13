package token

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"

	"github.com/optakt/lever/journal"
)

// Asset names a fungible balance tracked by the book.
type Asset string

var (
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrNegativeAmount      = errors.New("negative amount")
)

// Book holds balances and total supplies per asset. Every mutation is
// recorded in the journal so that a failed operation leaves it untouched.
type Book struct {
	journal  *journal.Journal
	balances map[Asset]map[common.Address]*big.Int
	supplies map[Asset]*big.Int
}

func NewBook(j *journal.Journal) *Book {
	return &Book{
		journal:  j,
		balances: make(map[Asset]map[common.Address]*big.Int),
		supplies: make(map[Asset]*big.Int),
	}
}

func (k *Book) BalanceOf(asset Asset, holder common.Address) *big.Int {
	balance, ok := k.balances[asset][holder]
	if !ok {
		return big.NewInt(0)
	}
	return big.NewInt(0).Set(balance)
}

func (k *Book) Supply(asset Asset) *big.Int {
	supply, ok := k.supplies[asset]
	if !ok {
		return big.NewInt(0)
	}
	return big.NewInt(0).Set(supply)
}

// Transfer moves amount of asset between two holders.
func (k *Book) Transfer(asset Asset, from common.Address, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 || from == to {
		return nil
	}
	balance := k.BalanceOf(asset, from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("could not transfer %s %s from %s (balance %s): %w", amount, asset, from.Hex(), balance, ErrInsufficientBalance)
	}
	k.set(asset, from, big.NewInt(0).Sub(balance, amount))
	k.set(asset, to, big.NewInt(0).Add(k.BalanceOf(asset, to), amount))
	return nil
}

// Mint creates amount of asset for the holder and grows the supply.
func (k *Book) Mint(asset Asset, to common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	k.set(asset, to, big.NewInt(0).Add(k.BalanceOf(asset, to), amount))
	k.setSupply(asset, big.NewInt(0).Add(k.Supply(asset), amount))
	return nil
}

// Burn destroys amount of asset held by the holder and shrinks the supply.
func (k *Book) Burn(asset Asset, from common.Address, amount *big.Int) error {
	if amount.Sign() < 0 {
		return ErrNegativeAmount
	}
	if amount.Sign() == 0 {
		return nil
	}
	balance := k.BalanceOf(asset, from)
	if balance.Cmp(amount) < 0 {
		return fmt.Errorf("could not burn %s %s from %s (balance %s): %w", amount, asset, from.Hex(), balance, ErrInsufficientBalance)
	}
	k.set(asset, from, big.NewInt(0).Sub(balance, amount))
	k.setSupply(asset, big.NewInt(0).Sub(k.Supply(asset), amount))
	return nil
}

func (k *Book) set(asset Asset, holder common.Address, value *big.Int) {
	holders, ok := k.balances[asset]
	if !ok {
		holders = make(map[common.Address]*big.Int)
		k.balances[asset] = holders
	}
	previous, existed := holders[holder]
	k.journal.Record(func() {
		if !existed {
			delete(holders, holder)
			return
		}
		holders[holder] = previous
	})
	holders[holder] = value
}

func (k *Book) setSupply(asset Asset, value *big.Int) {
	previous, existed := k.supplies[asset]
	k.journal.Record(func() {
		if !existed {
			delete(k.supplies, asset)
			return
		}
		k.supplies[asset] = previous
	})
	k.supplies[asset] = value
}
