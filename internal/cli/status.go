package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/hyperjump/cvtext/internal/models"
)

// Status summarizes watch-mode state: journal totals, output usage and recent outcomes.
type Status struct {
	JournalPath string                 `json:"journal_path"`
	OutputDir   string                 `json:"output_dir"`
	Succeeded   int64                  `json:"succeeded"`
	Failed      int64                  `json:"failed"`
	OutputFiles int                    `json:"output_files"`
	OutputBytes int64                  `json:"output_bytes"`
	Recent      []*models.JournalEntry `json:"recent"`
}

// WriteStatus writes s to w in the given format.
func WriteStatus(w io.Writer, s *Status, format OutputFormat) error {
	if format == OutputJSON {
		if s.Recent == nil {
			s.Recent = []*models.JournalEntry{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}
	fmt.Fprintf(w, "Journal:   %s\n", s.JournalPath)
	fmt.Fprintf(w, "Output:    %s (%d files, %s)\n", s.OutputDir, s.OutputFiles, FormatBytes(s.OutputBytes))
	fmt.Fprintf(w, "Extracted: %d succeeded, %d failed\n", s.Succeeded, s.Failed)
	if len(s.Recent) == 0 {
		return nil
	}
	fmt.Fprintln(w, "\nRecent:")
	for _, e := range s.Recent {
		outcome := e.Strategy
		if e.Failed() {
			outcome = e.ErrorKind
		}
		fmt.Fprintf(w, "  %s  %-6s %-14s %-22s %s\n",
			e.ExtractedAt.Local().Format(time.DateTime), status(e), e.Format, outcome, e.Path)
	}
	return nil
}

func status(e *models.JournalEntry) string {
	if e.Failed() {
		return "FAIL"
	}
	return "OK"
}

// FormatBytes renders n with a binary unit, e.g. 1536 -> "1.5 KiB".
func FormatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
