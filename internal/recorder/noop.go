package recorder

import "github.com/eliezerRevach/finance-data/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *ExportRun) error                   { return nil }
func (n *NoopRecorder) RecordOutcome(_ string, _ *model.Outcome) error { return nil }
func (n *NoopRecorder) Close() error                                   { return nil }
