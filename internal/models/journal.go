package models

import "time"

// JournalEntry records the last extraction of one inbox file.
type JournalEntry struct {
	ID          string    `json:"id"`
	Path        string    `json:"path"`
	ContentHash string    `json:"content_hash"`
	Format      string    `json:"format"`
	Strategy    string    `json:"strategy,omitempty"`
	ErrorKind   string    `json:"error_kind,omitempty"`
	Error       string    `json:"error,omitempty"`
	Chars       int       `json:"chars"`
	OutputPath  string    `json:"output_path,omitempty"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// Failed reports whether the recorded extraction produced an error.
func (e *JournalEntry) Failed() bool {
	return e.ErrorKind != "" || e.Error != ""
}
