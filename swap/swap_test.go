package swap

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetAmountOut(t *testing.T) {

	reserve := big.NewInt(1_000_000)

	tests := []struct {
		name string
		in   int64
		fee  uint64
		want int64
	}{
		{name: "uniswap fee", in: 1000, fee: 30, want: 996},
		{name: "no fee", in: 1000, fee: 0, want: 999},
		{name: "zero input", in: 0, fee: 30, want: 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			out := GetAmountOut(big.NewInt(test.in), reserve, reserve, test.fee)
			assert.Equal(t, big.NewInt(test.want), out)
		})
	}
}

func TestQuote(t *testing.T) {
	assert.Equal(t, big.NewInt(2000), Quote(big.NewInt(1000), big.NewInt(1), big.NewInt(2)))
	assert.Equal(t, big.NewInt(0), Quote(big.NewInt(1000), big.NewInt(0), big.NewInt(2)))
	assert.Equal(t, big.NewInt(997), QuoteNet(big.NewInt(1000), big.NewInt(1), big.NewInt(1), 30))
}

func TestGetAmountIn(t *testing.T) {

	reserve := big.NewInt(1_000_000)

	t.Run("covers the requested output", func(t *testing.T) {
		for _, fee := range []uint64{0, 1, 30} {
			in := GetAmountIn(big.NewInt(996), reserve, reserve, fee)
			out := GetAmountOut(in, reserve, reserve, fee)
			assert.GreaterOrEqual(t, out.Int64(), int64(996))
			assert.Less(t, GetAmountOut(big.NewInt(0).Sub(in, big.NewInt(2)), reserve, reserve, fee).Int64(), int64(996))
		}
	})

	t.Run("zero output", func(t *testing.T) {
		assert.Equal(t, 0, GetAmountIn(big.NewInt(0), reserve, reserve, 30).Sign())
	})

	t.Run("output above reserve", func(t *testing.T) {
		assert.Nil(t, GetAmountIn(reserve, reserve, reserve, 30))
	})
}
