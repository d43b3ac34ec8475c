package collector

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eliezerRevach/finance-data/internal/model"
)

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Table *model.RawTable
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchDailyHistory(_ context.Context, symbol string, start, end time.Time) (*model.RawTable, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Table != nil {
		return m.Table, nil
	}
	return generateMockTable(symbol, start, end), nil
}

func generateMockTable(symbol string, start, end time.Time) *model.RawTable {
	table := &model.RawTable{
		Symbol:  symbol,
		Columns: []string{"Open", "High", "Low", "Close", "Adj Close", "Volume"},
	}
	base := 100.0
	for d, i := start, 0; !d.After(end); d, i = d.AddDate(0, 0, 1), i+1 {
		if wd := d.Weekday(); wd == time.Saturday || wd == time.Sunday {
			continue
		}
		p := base * (1 + float64(i)*0.001)
		table.Rows = append(table.Rows, model.RawRow{
			Time: d,
			Fields: map[string]decimal.Decimal{
				"Open":      decimal.NewFromFloat(p * 0.999),
				"High":      decimal.NewFromFloat(p * 1.005),
				"Low":       decimal.NewFromFloat(p * 0.995),
				"Close":     decimal.NewFromFloat(p),
				"Adj Close": decimal.NewFromFloat(p),
				"Volume":    decimal.NewFromInt(1000000),
			},
		})
	}
	return table
}
