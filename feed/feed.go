package feed

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"math/big"
	"os"
	"sort"
	"time"

	"github.com/optakt/lever/b"
)

var ErrMissingDay = errors.New("no observation for day")

// Observation is the market state for one day: the wrapper's exchange rate,
// the yearly borrow rate and, when present, the oracle price of the stable
// asset, all in wad.
type Observation struct {
	Date         time.Time
	ExchangeRate *big.Int
	BorrowRate   *big.Int
	StablePrice  *big.Int
}

type Feed struct {
	observations map[time.Time]Observation
	days         []time.Time
}

// Load reads a CSV file with a header row followed by rows of
// `date,exchange_rate,borrow_apr[,stable_price]`, dates formatted as
// 2006-01-02. The stable price column is optional for the whole file.
func Load(file string) (*Feed, error) {

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("could not read feed file: %w", err)
	}

	csvr := csv.NewReader(bytes.NewReader(data))
	csvr.FieldsPerRecord = 0
	csvr.TrimLeadingSpace = true
	records, err := csvr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not read feed records: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("feed file has no observations")
	}
	columns := len(records[0])
	if columns != 3 && columns != 4 {
		return nil, fmt.Errorf("feed file has %d columns", columns)
	}

	observations := make(map[time.Time]Observation, len(records)-1)
	days := make([]time.Time, 0, len(records)-1)
	for i, record := range records[1:] {

		date, err := time.Parse("2006-01-02", record[0])
		if err != nil {
			return nil, fmt.Errorf("could not parse date on row %d: %w", i+2, err)
		}

		rate, err := b.ParseWad(record[1])
		if err != nil {
			return nil, fmt.Errorf("could not parse exchange rate on row %d: %w", i+2, err)
		}
		if rate.Sign() == 0 {
			return nil, fmt.Errorf("zero exchange rate on row %d", i+2)
		}

		apr, err := b.ParseWad(record[2])
		if err != nil {
			return nil, fmt.Errorf("could not parse borrow rate on row %d: %w", i+2, err)
		}

		var price *big.Int
		if columns == 4 {
			price, err = b.ParseWad(record[3])
			if err != nil {
				return nil, fmt.Errorf("could not parse stable price on row %d: %w", i+2, err)
			}
			if price.Sign() == 0 {
				return nil, fmt.Errorf("zero stable price on row %d", i+2)
			}
		}

		_, ok := observations[date]
		if ok {
			return nil, fmt.Errorf("duplicate observation for %s", record[0])
		}

		observations[date] = Observation{
			Date:         date,
			ExchangeRate: rate,
			BorrowRate:   apr,
			StablePrice:  price,
		}
		days = append(days, date)
	}

	sort.Slice(days, func(i, j int) bool {
		return days[i].Before(days[j])
	})

	f := Feed{
		observations: observations,
		days:         days,
	}

	return &f, nil
}

// Days returns the observed days in ascending order.
func (f *Feed) Days() []time.Time {
	days := make([]time.Time, len(f.days))
	copy(days, f.days)
	return days
}

// Observation returns the observation for the day containing timestamp.
func (f *Feed) Observation(timestamp time.Time) (Observation, error) {

	year, month, day := timestamp.UTC().Date()
	date := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	observation, ok := f.observations[date]
	if !ok {
		return Observation{}, fmt.Errorf("%s: %w", date.Format("2006-01-02"), ErrMissingDay)
	}

	return observation, nil
}
