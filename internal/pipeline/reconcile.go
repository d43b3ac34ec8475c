package pipeline

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/eliezerRevach/finance-data/internal/model"
)

// SchemaError reports a required value column that could not be located even
// after the reconciliation fallback rules.
type SchemaError struct {
	Column string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema reconciliation: required column %q missing", e.Column)
}

// Reconcile maps a provider-shaped table onto the canonical schema and returns
// the rows ready for serialization: the canonical header followed by one
// 7-field row per input row, dates formatted dd/mm/yyyy.
//
// Rules, in order: columns outside the canonical set (such as a redundant
// "Price" label) are dropped; a missing "Adj Close" is synthesized as a copy
// of "Close"; the remaining columns are reordered to the canonical order, and
// a still-missing value column is a SchemaError.
//
// Callers are expected to skip empty tables before calling; an empty table
// reconciles to just the header.
func Reconcile(t *model.RawTable) ([][]string, error) {
	adjFromClose := !t.HasColumn("Adj Close")

	for _, col := range model.ValueColumns {
		if col == "Adj Close" && adjFromClose {
			continue
		}
		if !t.HasColumn(col) {
			return nil, &SchemaError{Column: col}
		}
	}
	if adjFromClose && !t.HasColumn("Close") {
		return nil, &SchemaError{Column: "Adj Close"}
	}

	rows := make([][]string, 0, len(t.Rows)+1)
	rows = append(rows, append([]string(nil), model.CanonicalHeader...))
	for _, r := range t.Rows {
		row := make([]string, 0, len(model.CanonicalHeader))
		row = append(row, r.Time.Format(model.DateLayout))
		for _, col := range model.ValueColumns {
			if col == "Adj Close" && adjFromClose {
				col = "Close"
			}
			row = append(row, renderValue(r.Fields[col]))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// renderValue serializes a value at its source scale. Decimal's String trims
// trailing fractional zeros, which would turn a provider-supplied 452.0 into
// 452; the artifact must carry the value byte-identically.
func renderValue(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}
