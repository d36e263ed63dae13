package write

import (
	"math/big"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/vault"
)

func VaultPoint(timestamp time.Time, deposit *big.Int, snapshot vault.Snapshot, outbound api.WriteAPI) {
	outbound.WritePoint(NewVaultPoint(timestamp, deposit, snapshot))
}

// NewVaultPoint describes the vault state at timestamp, tagged with the
// target and the size of the initial deposit.
func NewVaultPoint(timestamp time.Time, deposit *big.Int, snapshot vault.Snapshot) *write.Point {

	number, suffix := humanize.ComputeSI(b.ToFloat(deposit, 18))
	size := humanize.Ftoa(number) + suffix

	change := big.NewInt(0).Sub(snapshot.NAV, deposit)

	tags := map[string]string{
		"strategy": "lever",
		"chain":    "ethereum",
		"size":     size,
		"target":   snapshot.Target.String(),
	}
	fields := map[string]interface{}{
		"nav":        b.ToFloat(snapshot.NAV, 18),
		"idle":       b.ToFloat(snapshot.Idle, 18),
		"collateral": b.ToFloat(snapshot.CollateralValue, 18),
		"debt":       b.ToFloat(snapshot.DebtValue, 18),
		"supply":     b.ToFloat(snapshot.Supply, 18),
		"share":      b.ToFloat(snapshot.ValuePerShare, 18),
		"hwm":        b.ToFloat(snapshot.HighWaterMark, 18),
		"ratio":      b.ToFloat(snapshot.Ratio, 18),
		"change":     b.ToFloat(change, 18),
	}

	return write.NewPoint("vault", tags, fields, timestamp)
}
