package feed

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/optakt/lever/b"
)

func writeFeed(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad(t *testing.T) {

	t.Run("sorted days", func(t *testing.T) {
		path := writeFeed(t, `date,exchange_rate,borrow_apr
2024-03-02,1.1003,0.081
2024-03-01,1.1,0.08
2024-03-03,1.1006,0.079
`)
		f, err := Load(path)
		require.NoError(t, err)

		days := f.Days()
		require.Len(t, days, 3)
		assert.Equal(t, time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC), days[0])
		assert.Equal(t, time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC), days[2])

		observation, err := f.Observation(time.Date(2024, time.March, 2, 15, 30, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "1.1003", b.FormatWad(observation.ExchangeRate))
		assert.Equal(t, "0.081", b.FormatWad(observation.BorrowRate))
		assert.Nil(t, observation.StablePrice)
	})

	t.Run("stable price column", func(t *testing.T) {
		f, err := Load(writeFeed(t, "date,exchange_rate,borrow_apr,stable_price\n2024-03-01,1.1,0.08,0.9985\n"))
		require.NoError(t, err)

		observation, err := f.Observation(time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, "0.9985", b.FormatWad(observation.StablePrice))
	})

	t.Run("missing day", func(t *testing.T) {
		f, err := Load(writeFeed(t, "date,exchange_rate,borrow_apr\n2024-03-01,1.1,0.08\n"))
		require.NoError(t, err)

		_, err = f.Observation(time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC))
		assert.ErrorIs(t, err, ErrMissingDay)
	})

	tests := []struct {
		name    string
		content string
	}{
		{name: "header only", content: "date,exchange_rate,borrow_apr\n"},
		{name: "bad date", content: "date,exchange_rate,borrow_apr\n03/01/2024,1.1,0.08\n"},
		{name: "bad rate", content: "date,exchange_rate,borrow_apr\n2024-03-01,one,0.08\n"},
		{name: "zero rate", content: "date,exchange_rate,borrow_apr\n2024-03-01,0,0.08\n"},
		{name: "negative apr", content: "date,exchange_rate,borrow_apr\n2024-03-01,1.1,-0.08\n"},
		{name: "missing column", content: "date,exchange_rate,borrow_apr\n2024-03-01,1.1\n"},
		{name: "zero stable price", content: "date,exchange_rate,borrow_apr,stable_price\n2024-03-01,1.1,0.08,0\n"},
		{name: "too many columns", content: "date,exchange_rate,borrow_apr,stable_price,volume\n2024-03-01,1.1,0.08,1,5\n"},
		{name: "duplicate day", content: "date,exchange_rate,borrow_apr\n2024-03-01,1.1,0.08\n2024-03-01,1.2,0.08\n"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := Load(writeFeed(t, test.content))
			assert.Error(t, err)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.csv"))
		assert.Error(t, err)
	})
}
