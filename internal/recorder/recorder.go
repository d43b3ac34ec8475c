package recorder

import (
	"time"

	"github.com/eliezerRevach/finance-data/internal/model"
)

// ExportRun summarizes one full pass over the configured symbols.
type ExportRun struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	Symbols    int
	Published  int
}

// Recorder persists export history for later analysis.
type Recorder interface {
	RecordRun(run *ExportRun) error
	RecordOutcome(runID string, o *model.Outcome) error
	Close() error
}
