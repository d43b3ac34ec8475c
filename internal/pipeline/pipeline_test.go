package pipeline

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/eliezerRevach/finance-data/internal/model"
	"github.com/eliezerRevach/finance-data/internal/recorder"
)

func TestArtifactName(t *testing.T) {
	cases := []struct {
		symbol string
		want   string
	}{
		{"QLD", "qld_stock_data.csv"},
		{"^NDX", "ndx_stock_data.csv"},
		{"BRK.B", "brkb_stock_data.csv"},
		{"spy", "spy_stock_data.csv"},
	}
	for _, tc := range cases {
		if got := ArtifactName(tc.symbol); got != tc.want {
			t.Errorf("ArtifactName(%q) = %q, want %q", tc.symbol, got, tc.want)
		}
	}
}

type fakeFetcher struct {
	tables map[string]*model.RawTable
	errs   map[string]error
}

func (f *fakeFetcher) Name() string { return "fake" }

func (f *fakeFetcher) FetchDailyHistory(_ context.Context, symbol string, _, _ time.Time) (*model.RawTable, error) {
	if err := f.errs[symbol]; err != nil {
		return nil, err
	}
	return f.tables[symbol], nil
}

type publishCall struct {
	path    string
	message string
	content []byte
}

type fakePublisher struct {
	calls []publishCall
	err   error
}

func (p *fakePublisher) Publish(_ context.Context, path string, content []byte, message string) error {
	p.calls = append(p.calls, publishCall{path: path, message: message, content: content})
	return p.err
}

type fakeRecorder struct {
	runs     []*recorder.ExportRun
	outcomes []model.Outcome
}

func (r *fakeRecorder) RecordRun(run *recorder.ExportRun) error { r.runs = append(r.runs, run); return nil }
func (r *fakeRecorder) RecordOutcome(_ string, o *model.Outcome) error {
	r.outcomes = append(r.outcomes, *o)
	return nil
}
func (r *fakeRecorder) Close() error { return nil }

func writeFile(path string) error {
	return os.WriteFile(path, []byte("occupied"), 0o644)
}

func goodTable(symbol string) *model.RawTable {
	table := &model.RawTable{
		Symbol:  symbol,
		Columns: []string{"Open", "High", "Low", "Close", "Volume"},
	}
	for i := 0; i < 3; i++ {
		table.Rows = append(table.Rows, model.RawRow{
			Time: time.Date(2024, 1, 2+i, 0, 0, 0, 0, time.UTC),
			Fields: map[string]decimal.Decimal{
				"Open":   decimal.NewFromInt(10),
				"High":   decimal.NewFromInt(11),
				"Low":    decimal.NewFromInt(9),
				"Close":  decimal.NewFromInt(int64(10 + i)),
				"Volume": decimal.NewFromInt(1000),
			},
		})
	}
	return table
}

func TestRunner_FailureContainedPerSymbol(t *testing.T) {
	fetcher := &fakeFetcher{
		tables: map[string]*model.RawTable{
			"EMPTY": {Symbol: "EMPTY", Columns: []string{"Open", "High", "Low", "Close", "Volume"}},
			"NOVOL": {
				Symbol:  "NOVOL",
				Columns: []string{"Open", "High", "Low", "Close"},
				Rows:    []model.RawRow{{Time: time.Now(), Fields: map[string]decimal.Decimal{}}},
			},
			"GOOD": goodTable("GOOD"),
		},
		errs: map[string]error{"DOWN": errors.New("provider unavailable")},
	}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	runner := NewRunner(fetcher, pub, rec,
		[]string{"DOWN", "EMPTY", "NOVOL", "GOOD"},
		time.Date(2006, 6, 21, 0, 0, 0, 0, time.UTC), t.TempDir())
	runner.Run(context.Background())

	if len(pub.calls) != 1 {
		t.Fatalf("expected exactly 1 publish call, got %d", len(pub.calls))
	}
	if pub.calls[0].path != "good_stock_data.csv" {
		t.Errorf("published path: %q", pub.calls[0].path)
	}
	if pub.calls[0].message != "Update GOOD stock data" {
		t.Errorf("commit message: %q", pub.calls[0].message)
	}

	if len(rec.outcomes) != 4 {
		t.Fatalf("expected 4 recorded outcomes, got %d", len(rec.outcomes))
	}
	wantStatus := map[string]model.Status{
		"DOWN":  model.StatusFetchError,
		"EMPTY": model.StatusSkippedEmpty,
		"NOVOL": model.StatusSchemaError,
		"GOOD":  model.StatusPublished,
	}
	for _, o := range rec.outcomes {
		if o.Status != wantStatus[o.Symbol] {
			t.Errorf("symbol %s: status %s, want %s", o.Symbol, o.Status, wantStatus[o.Symbol])
		}
	}

	if len(rec.runs) != 1 {
		t.Fatalf("expected 1 run record, got %d", len(rec.runs))
	}
	if rec.runs[0].Symbols != 4 || rec.runs[0].Published != 1 {
		t.Errorf("run summary: %+v", rec.runs[0])
	}
}

func TestRunner_PublishErrorDoesNotAbortRun(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[string]*model.RawTable{
		"A": goodTable("A"),
		"B": goodTable("B"),
	}}
	pub := &fakePublisher{err: errors.New("remote rejected commit")}
	rec := &fakeRecorder{}

	runner := NewRunner(fetcher, pub, rec, []string{"A", "B"},
		time.Date(2006, 6, 21, 0, 0, 0, 0, time.UTC), t.TempDir())
	runner.Run(context.Background())

	if len(pub.calls) != 2 {
		t.Fatalf("both symbols must be attempted, got %d publish calls", len(pub.calls))
	}
	for _, o := range rec.outcomes {
		if o.Status != model.StatusPublishError {
			t.Errorf("symbol %s: status %s, want %s", o.Symbol, o.Status, model.StatusPublishError)
		}
	}
}

func TestRunner_PublishedOutcomeCountsRows(t *testing.T) {
	fetcher := &fakeFetcher{tables: map[string]*model.RawTable{"QLD": goodTable("QLD")}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	runner := NewRunner(fetcher, pub, rec, []string{"QLD"},
		time.Date(2006, 6, 21, 0, 0, 0, 0, time.UTC), t.TempDir())
	runner.Run(context.Background())

	if len(rec.outcomes) != 1 {
		t.Fatalf("expected 1 outcome, got %d", len(rec.outcomes))
	}
	o := rec.outcomes[0]
	if !o.OK() {
		t.Fatalf("expected published, got %s (%s)", o.Status, o.Detail)
	}
	if o.Rows != 3 {
		t.Errorf("expected 3 data rows, got %d", o.Rows)
	}
	if o.Artifact != "qld_stock_data.csv" {
		t.Errorf("artifact: %q", o.Artifact)
	}
}

func TestRunner_RejectedArtifactNotPublished(t *testing.T) {
	// The artifact directory path collides with an existing file, so the
	// artifact write fails before validation; the publisher must never see
	// the symbol.
	dirAsFile := t.TempDir() + "/occupied"
	if err := writeFile(dirAsFile); err != nil {
		t.Fatalf("setup: %v", err)
	}
	fetcher := &fakeFetcher{tables: map[string]*model.RawTable{"QLD": goodTable("QLD")}}
	pub := &fakePublisher{}
	rec := &fakeRecorder{}

	runner := NewRunner(fetcher, pub, rec, []string{"QLD"},
		time.Date(2006, 6, 21, 0, 0, 0, 0, time.UTC), dirAsFile)
	runner.Run(context.Background())

	if len(pub.calls) != 0 {
		t.Fatalf("publisher must not be called on a failed artifact, got %d calls", len(pub.calls))
	}
	if len(rec.outcomes) != 1 || rec.outcomes[0].Status != model.StatusIOError {
		t.Errorf("expected io_error outcome, got %+v", rec.outcomes)
	}
}
