package position

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/b"
)

func TestParseLeverage(t *testing.T) {

	tests := []struct {
		input string
		kind  Kind
		ratio string
	}{
		{input: "idle", kind: KindIdle, ratio: "0"},
		{input: " IDLE ", kind: KindIdle, ratio: "0"},
		{input: "0", kind: KindUnleveraged, ratio: "0"},
		{input: "0.75", kind: KindLeveraged, ratio: "750000000000000000"},
	}

	for _, test := range tests {
		t.Run(test.input, func(t *testing.T) {
			leverage, err := ParseLeverage(test.input)
			require.NoError(t, err)
			assert.Equal(t, test.kind, leverage.Kind())
			assert.Equal(t, test.ratio, leverage.Ratio().String())
		})
	}

	_, err := ParseLeverage("lots")
	assert.Error(t, err)
}

func TestLeverage(t *testing.T) {
	assert.True(t, Leveraged(big.NewInt(0)).Equal(Unleveraged()))
	assert.False(t, Idle().Equal(Unleveraged()))
	assert.Equal(t, "0.6", Leveraged(big.NewInt(600_000_000_000_000_000)).String())
	assert.Equal(t, "idle", Idle().String())
}

func TestPosition_Scale(t *testing.T) {
	p := Position{Collateral: big.NewInt(1001), DebtShares: big.NewInt(750)}
	half := p.Scale(big.NewInt(0).Div(b.WAD, b.D2), b.WAD)
	assert.Equal(t, "500", half.Collateral.String())
	assert.Equal(t, "375", half.DebtShares.String())
	assert.False(t, p.IsEmpty())
	assert.True(t, Position{Collateral: big.NewInt(0), DebtShares: big.NewInt(0)}.IsEmpty())
}
