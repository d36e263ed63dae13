package write

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/b"
	"github.com/optakt/lever/position"
	"github.com/optakt/lever/vault"
)

func TestNewVaultPoint(t *testing.T) {

	ratio, err := b.ParseWad("0.75")
	require.NoError(t, err)

	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	snapshot := vault.Snapshot{
		Target:          position.Leveraged(ratio),
		Idle:            big.NewInt(0),
		CollateralValue: b.Units(4100),
		DebtValue:       b.Units(3000),
		NAV:             b.Units(1100),
		Supply:          b.Units(1000),
		HighWaterMark:   b.WAD,
		ValuePerShare:   big.NewInt(0).Add(b.WAD, big.NewInt(0).Div(b.WAD, b.D10)),
		Ratio:           ratio,
	}

	point := NewVaultPoint(now, b.Units(1000), snapshot)

	assert.Equal(t, "vault", point.Name())
	assert.Equal(t, now, point.Time())

	tags := make(map[string]string)
	for _, tag := range point.TagList() {
		tags[tag.Key] = tag.Value
	}
	assert.Equal(t, "1k", tags["size"])
	assert.Equal(t, "0.75", tags["target"])

	fields := make(map[string]interface{})
	for _, field := range point.FieldList() {
		fields[field.Key] = field.Value
	}
	assert.InDelta(t, 1100.0, fields["nav"], 1e-9)
	assert.InDelta(t, 100.0, fields["change"], 1e-9)
	assert.InDelta(t, 1.1, fields["share"], 1e-9)
	assert.InDelta(t, 0.75, fields["ratio"], 1e-9)
}

func TestNewMarketPoint(t *testing.T) {
	now := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	rate, err := b.ParseWad("0.08")
	require.NoError(t, err)

	point := NewMarketPoint(now, b.WAD, rate, b.WAD, b.RAY, b.Units(3000))

	fields := make(map[string]interface{})
	for _, field := range point.FieldList() {
		fields[field.Key] = field.Value
	}
	assert.Equal(t, "market", point.Name())
	assert.InDelta(t, 0.08, fields["borrow_rate"], 1e-12)
	assert.InDelta(t, 1.0, fields["index"], 1e-12)
	assert.InDelta(t, 1.0, fields["stable_price"], 1e-12)
	assert.InDelta(t, 3000.0, fields["borrowed"], 1e-9)
}
