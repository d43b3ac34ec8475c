package model

// Status classifies how one symbol's export iteration ended.
type Status string

const (
	StatusPublished    Status = "published"
	StatusSkippedEmpty Status = "skipped_empty"
	StatusSchemaError  Status = "schema_error"
	StatusRejected     Status = "rejected"
	StatusFetchError   Status = "fetch_error"
	StatusPublishError Status = "publish_error"
	StatusIOError      Status = "io_error"
)

// Outcome is the per-symbol result of an export run. Every symbol produces
// exactly one Outcome; a failed symbol never aborts the run.
type Outcome struct {
	Symbol   string
	Status   Status
	Detail   string // rejection reason or error text, empty on success
	Artifact string // artifact file name, when one was written
	Rows     int    // data rows in the published artifact (header excluded)
}

// OK reports whether the symbol was published.
func (o *Outcome) OK() bool { return o.Status == StatusPublished }
