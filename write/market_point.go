package write

import (
	"math/big"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/optakt/lever/b"
)

func MarketPoint(timestamp time.Time, exchangeRate *big.Int, borrowRate *big.Int, stablePrice *big.Int, index *big.Int, borrowed *big.Int, outbound api.WriteAPI) {
	outbound.WritePoint(NewMarketPoint(timestamp, exchangeRate, borrowRate, stablePrice, index, borrowed))
}

// NewMarketPoint records the wrapper exchange rate, the borrow rate, the
// stable oracle price, the borrow index (ray) and the total outstanding debt
// the vault faced at timestamp.
func NewMarketPoint(timestamp time.Time, exchangeRate *big.Int, borrowRate *big.Int, stablePrice *big.Int, index *big.Int, borrowed *big.Int) *write.Point {

	tags := map[string]string{
		"chain": "ethereum",
	}
	fields := map[string]interface{}{
		"exchange_rate": b.ToFloat(exchangeRate, 18),
		"borrow_rate":   b.ToFloat(borrowRate, 18),
		"stable_price":  b.ToFloat(stablePrice, 18),
		"index":         b.ToFloat(index, 27),
		"borrowed":      b.ToFloat(borrowed, 18),
	}

	return write.NewPoint("market", tags, fields, timestamp)
}
