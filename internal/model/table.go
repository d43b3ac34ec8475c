package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// CanonicalHeader is the fixed column tuple of every published CSV artifact.
var CanonicalHeader = []string{"Date", "Open", "High", "Low", "Close", "Adj Close", "Volume"}

// ValueColumns are the canonical non-date columns, in output order.
var ValueColumns = []string{"Open", "High", "Low", "Close", "Adj Close", "Volume"}

// DateLayout is the textual date format of the Date column (zero-padded day/month).
const DateLayout = "02/01/2006"

// RawRow is a single timestamped record as delivered by the data provider.
// The field set is whatever the provider sent for this call; it is not
// guaranteed stable across calls.
type RawRow struct {
	Time   time.Time
	Fields map[string]decimal.Decimal
}

// RawTable is an ordered price series for one symbol with a
// provider-determined column layout.
type RawTable struct {
	Symbol  string
	Columns []string
	Rows    []RawRow
}

// Empty reports whether the table carries no rows at all.
func (t *RawTable) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// HasColumn reports whether the table declares the named column.
func (t *RawTable) HasColumn(name string) bool {
	for _, c := range t.Columns {
		if c == name {
			return true
		}
	}
	return false
}
