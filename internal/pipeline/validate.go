package pipeline

import (
	"bytes"
	"encoding/csv"
	"os"
	"regexp"
	"strings"

	"github.com/eliezerRevach/finance-data/internal/logger"
	"github.com/eliezerRevach/finance-data/internal/model"
)

// RejectReason classifies why a serialized artifact could not be salvaged.
type RejectReason string

const (
	ReasonHeaderNotFound      RejectReason = "header_not_found"
	ReasonNoDataAfterHeader   RejectReason = "no_data_after_header"
	ReasonNoValidRowsSurvived RejectReason = "no_valid_rows_survived"
	ReasonIOFailure           RejectReason = "io_failure"
)

// ValidationResult is the outcome of validating (and possibly repairing) a
// serialized artifact. Reason is empty when the artifact is valid.
type ValidationResult struct {
	Rows      [][]string // header + surviving data rows, when valid
	Reason    RejectReason
	Dropped   int   // malformed rows dropped individually
	Truncated int   // rows discarded from the first hard stop onward
	Err       error // underlying error, set for ReasonIOFailure
}

// Valid reports whether the artifact survived validation.
func (r ValidationResult) Valid() bool { return r.Reason == "" }

var datePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)

// Validate reads the artifact at path, repairs it, and on success rewrites it
// in place with exactly the surviving rows. Content before the canonical
// header, rows after the first structural break, and individually malformed
// rows are permanently removed from the artifact.
func Validate(path string) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		return ValidationResult{Reason: ReasonIOFailure, Err: err}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return ValidationResult{Reason: ReasonIOFailure, Err: err}
	}

	res := Repair(rows)
	if !res.Valid() {
		return res
	}

	if err := WriteArtifact(path, res.Rows); err != nil {
		return ValidationResult{Reason: ReasonIOFailure, Err: err}
	}
	return res
}

// Repair applies the corruption-tolerance policy to already-parsed rows.
//
// Fields are trimmed before any comparison, so header matching tolerates
// whitespace injected by upstream formatting. The first row equal to the
// canonical header anchors the scan; anything before it is discarded. After
// the header, a row is kept if its first field matches dd/mm/yyyy and it has
// exactly 7 fields. A row whose first field is not a date is a hard stop:
// everything from there on is discarded, even rows that would individually
// have been valid. A date row with the wrong field count is dropped on its
// own and the scan continues.
func Repair(rows [][]string) ValidationResult {
	trimmed := make([][]string, len(rows))
	for i, row := range rows {
		t := make([]string, len(row))
		for j, f := range row {
			t[j] = strings.TrimSpace(f)
		}
		trimmed[i] = t
	}

	header := -1
	for i, row := range trimmed {
		if equalFields(row, model.CanonicalHeader) {
			header = i
			break
		}
	}
	if header < 0 {
		return ValidationResult{Reason: ReasonHeaderNotFound}
	}
	if len(trimmed)-header < 2 {
		return ValidationResult{Reason: ReasonNoDataAfterHeader}
	}

	res := ValidationResult{Rows: [][]string{trimmed[header]}}
	for i := header + 1; i < len(trimmed); i++ {
		row := trimmed[i]
		if blank(row) {
			continue
		}
		if !datePattern.MatchString(row[0]) {
			// Start of corrupted or foreign content: nothing past this
			// point can be trusted, even rows that look well-formed.
			res.Truncated = len(trimmed) - i
			break
		}
		if len(row) != len(model.CanonicalHeader) {
			logger.L().Warn().Int("line", i+1).Int("fields", len(row)).Msg("dropping malformed row")
			res.Dropped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}

	if len(res.Rows) < 2 {
		return ValidationResult{Reason: ReasonNoValidRowsSurvived, Dropped: res.Dropped, Truncated: res.Truncated}
	}
	return res
}

func equalFields(row, want []string) bool {
	if len(row) != len(want) {
		return false
	}
	for i := range row {
		if row[i] != want[i] {
			return false
		}
	}
	return true
}

func blank(row []string) bool {
	for _, f := range row {
		if f != "" {
			return false
		}
	}
	return true
}
