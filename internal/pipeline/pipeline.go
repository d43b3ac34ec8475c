package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eliezerRevach/finance-data/internal/collector"
	"github.com/eliezerRevach/finance-data/internal/logger"
	"github.com/eliezerRevach/finance-data/internal/model"
	"github.com/eliezerRevach/finance-data/internal/publisher"
	"github.com/eliezerRevach/finance-data/internal/recorder"
)

// ArtifactName derives the CSV artifact name for a symbol: case-folded, with
// non-alphanumeric marker characters (such as the index caret) removed.
// "^NDX" becomes "ndx_stock_data.csv".
func ArtifactName(symbol string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(symbol) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + "_stock_data.csv"
}

// Runner drives one export run: each symbol goes through
// fetch → reconcile → serialize → validate → publish, sequentially.
// A failure in one symbol's iteration never aborts the run.
type Runner struct {
	Fetcher   collector.Fetcher
	Publisher publisher.Publisher
	Recorder  recorder.Recorder
	Symbols   []string
	Start     time.Time
	Dir       string
}

// NewRunner creates a Runner exporting the given symbols over the history
// window starting at start, writing artifacts under dir.
func NewRunner(f collector.Fetcher, p publisher.Publisher, rec recorder.Recorder, symbols []string, start time.Time, dir string) *Runner {
	return &Runner{Fetcher: f, Publisher: p, Recorder: rec, Symbols: symbols, Start: start, Dir: dir}
}

// Run executes one export run over all configured symbols.
func (r *Runner) Run(ctx context.Context) {
	runID := uuid.NewString()
	startedAt := time.Now()
	log := logger.L()
	log.Info().Str("run_id", runID).Strs("symbols", r.Symbols).Msg("export run starting")

	published := 0
	for _, symbol := range r.Symbols {
		o := r.processSymbol(ctx, symbol)

		level := zerolog.InfoLevel
		if !o.OK() {
			level = zerolog.WarnLevel
		} else {
			published++
		}
		log.WithLevel(level).
			Str("run_id", runID).
			Str("symbol", o.Symbol).
			Str("status", string(o.Status)).
			Str("detail", o.Detail).
			Int("rows", o.Rows).
			Msg("symbol processed")

		if err := r.Recorder.RecordOutcome(runID, &o); err != nil {
			log.Error().Err(err).Str("symbol", symbol).Msg("record outcome")
		}
	}

	run := &recorder.ExportRun{
		ID:         runID,
		StartedAt:  startedAt,
		FinishedAt: time.Now(),
		Symbols:    len(r.Symbols),
		Published:  published,
	}
	if err := r.Recorder.RecordRun(run); err != nil {
		log.Error().Err(err).Msg("record run")
	}
	log.Info().Str("run_id", runID).Int("published", published).Int("symbols", len(r.Symbols)).Msg("export run finished")
}

// processSymbol runs the full pipeline for one symbol. Every failure mode is
// absorbed into the returned Outcome.
func (r *Runner) processSymbol(ctx context.Context, symbol string) model.Outcome {
	o := model.Outcome{Symbol: symbol}

	raw, err := r.Fetcher.FetchDailyHistory(ctx, symbol, r.Start, time.Now())
	if err != nil {
		o.Status = model.StatusFetchError
		o.Detail = err.Error()
		return o
	}
	if raw.Empty() {
		o.Status = model.StatusSkippedEmpty
		o.Detail = "provider returned no rows"
		return o
	}

	rows, err := Reconcile(raw)
	if err != nil {
		var schemaErr *SchemaError
		if errors.As(err, &schemaErr) {
			o.Status = model.StatusSchemaError
		} else {
			o.Status = model.StatusIOError
		}
		o.Detail = err.Error()
		return o
	}

	o.Artifact = ArtifactName(symbol)
	path := filepath.Join(r.Dir, o.Artifact)
	if err := WriteArtifact(path, rows); err != nil {
		o.Status = model.StatusIOError
		o.Detail = err.Error()
		return o
	}

	res := Validate(path)
	if !res.Valid() {
		if res.Reason == ReasonIOFailure {
			o.Status = model.StatusIOError
			o.Detail = fmt.Sprintf("%s: %v", res.Reason, res.Err)
		} else {
			o.Status = model.StatusRejected
			o.Detail = string(res.Reason)
		}
		return o
	}
	if res.Dropped > 0 || res.Truncated > 0 {
		logger.L().Warn().
			Str("symbol", symbol).
			Int("dropped", res.Dropped).
			Int("truncated", res.Truncated).
			Msg("artifact repaired")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		o.Status = model.StatusIOError
		o.Detail = err.Error()
		return o
	}

	message := fmt.Sprintf("Update %s stock data", symbol)
	if err := r.Publisher.Publish(ctx, o.Artifact, content, message); err != nil {
		o.Status = model.StatusPublishError
		o.Detail = err.Error()
		return o
	}

	o.Status = model.StatusPublished
	o.Rows = len(res.Rows) - 1
	return o
}
