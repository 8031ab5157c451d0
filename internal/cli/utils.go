// Package cli provides output helpers for the cvtext command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/hyperjump/cvtext/internal/models"
)

// OutputFormat is the format for extraction result output.
type OutputFormat string

const (
	// OutputText prints each document's text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseOutputFormat accepts "text" or "json" (case-insensitive).
func ParseOutputFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case OutputText, OutputJSON:
		return f, nil
	case "":
		return OutputText, nil
	default:
		return "", fmt.Errorf("unknown output format %q (want text or json)", s)
	}
}

// WriteResults writes extraction results to w in the given format.
// Use OutputJSON for parseable output consumable by other apps.
func WriteResults(w io.Writer, results []*models.ExtractionResult, format OutputFormat) error {
	switch format {
	case OutputJSON:
		if results == nil {
			results = []*models.ExtractionResult{}
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	default:
		writeResultsText(w, results)
		return nil
	}
}

func writeResultsText(w io.Writer, results []*models.ExtractionResult) {
	for i, r := range results {
		if len(results) > 1 {
			if i > 0 {
				fmt.Fprintln(w)
			}
			fmt.Fprintf(w, "==> %s <==\n", r.File)
		}
		if r.Failed() {
			fmt.Fprintf(w, "error: %s\n", r.Error)
			continue
		}
		fmt.Fprintln(w, r.Text)
	}
}

// WriteSummary prints one line per file: status, format, strategy and a preview.
func WriteSummary(w io.Writer, results []*models.ExtractionResult) {
	ok := 0
	for _, r := range results {
		if r.Failed() {
			fmt.Fprintf(w, "FAIL  %-30s %s\n", r.File, r.ErrorKind)
			continue
		}
		ok++
		fmt.Fprintf(w, "OK    %-30s %-14s %-18s %s\n", r.File, r.Format, r.Strategy, TruncateWords(r.Text, 8))
	}
	fmt.Fprintf(w, "\n%d of %d files extracted\n", ok, len(results))
}

// Truncate truncates s to maxLen and appends "..." if truncated.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// TruncateWords returns up to maxWords from the space-separated string.
func TruncateWords(s string, maxWords int) string {
	words := strings.Fields(s)
	if len(words) <= maxWords {
		return s
	}
	return strings.Join(words[:maxWords], " ") + "..."
}
