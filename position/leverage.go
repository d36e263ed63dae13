package position

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/optakt/lever/b"
)

type Kind uint8

const (
	KindIdle Kind = iota + 1
	KindUnleveraged
	KindLeveraged
)

func (k Kind) String() string {
	switch k {
	case KindIdle:
		return "idle"
	case KindUnleveraged:
		return "unleveraged"
	case KindLeveraged:
		return "leveraged"
	default:
		return "unknown"
	}
}

// Leverage is the target leverage of the vault: no position at all, a
// collateral-only position, or a borrow at a debt to collateral value ratio.
type Leverage struct {
	kind  Kind
	ratio *big.Int
}

func Idle() Leverage {
	return Leverage{kind: KindIdle, ratio: big.NewInt(0)}
}

func Unleveraged() Leverage {
	return Leverage{kind: KindUnleveraged, ratio: big.NewInt(0)}
}

// Leveraged targets the given wad ratio. A zero ratio is Unleveraged.
func Leveraged(ratio *big.Int) Leverage {
	if ratio.Sign() == 0 {
		return Unleveraged()
	}
	return Leverage{kind: KindLeveraged, ratio: big.NewInt(0).Set(ratio)}
}

// ParseLeverage reads "idle" or a decimal ratio such as "0.75".
func ParseLeverage(s string) (Leverage, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == KindIdle.String() {
		return Idle(), nil
	}
	ratio, err := b.ParseWad(s)
	if err != nil {
		return Leverage{}, fmt.Errorf("could not parse leverage: %w", err)
	}
	return Leveraged(ratio), nil
}

func (l Leverage) Kind() Kind {
	return l.kind
}

func (l Leverage) IsIdle() bool {
	return l.kind == KindIdle
}

// Ratio returns the target ratio in wad; zero unless leveraged.
func (l Leverage) Ratio() *big.Int {
	if l.ratio == nil {
		return big.NewInt(0)
	}
	return big.NewInt(0).Set(l.ratio)
}

func (l Leverage) Equal(other Leverage) bool {
	return l.kind == other.kind && l.Ratio().Cmp(other.Ratio()) == 0
}

func (l Leverage) String() string {
	if l.kind == KindLeveraged {
		return b.FormatWad(l.ratio)
	}
	return l.kind.String()
}
