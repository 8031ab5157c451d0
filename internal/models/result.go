package models

// ExtractionResult is the operator-facing report for one processed file.
// Downstream consumers only ever receive Text.
type ExtractionResult struct {
	File      string        `json:"file"`
	Format    LogicalFormat `json:"format"`
	Strategy  string        `json:"strategy,omitempty"`
	Text      string        `json:"text,omitempty"`
	ErrorKind string        `json:"error_kind,omitempty"`
	Error     string        `json:"error,omitempty"`
	// DurationMs is wall time spent in the pipeline.
	DurationMs int64 `json:"duration_ms"`
}

// Failed reports whether the extraction produced an error.
func (r *ExtractionResult) Failed() bool {
	return r.Error != ""
}
