package collector

import (
	"context"
	"time"

	"github.com/eliezerRevach/finance-data/internal/model"
)

// Fetcher defines the interface for fetching historical market data.
type Fetcher interface {
	// FetchDailyHistory returns all daily bars for symbol in [start, end].
	// The returned table's column layout is whatever the provider supplied;
	// callers must not assume the canonical schema.
	FetchDailyHistory(ctx context.Context, symbol string, start, end time.Time) (*model.RawTable, error)
	Name() string
}
