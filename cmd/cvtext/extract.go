package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hyperjump/cvtext/internal/cli"
	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/models"
)

func newExtractCmd(a *app) *cobra.Command {
	var (
		asJSON    bool
		summary   bool
		mediaType string
		workers   int
	)
	cmd := &cobra.Command{
		Use:   "extract [flags] FILE...",
		Short: "Extract text from one or more files",
		Long: `Extracts each file and prints its normalized text. The declared type comes
from --type, else from the file extension. Exits with status 1 when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if workers <= 0 {
				workers = a.cfg.Extract.Workers
			}
			results := extractFiles(cmd.Context(), a.extractor, args, mediaType, workers)
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			switch {
			case summary:
				cli.WriteSummary(w, results)
			case asJSON:
				if err := cli.WriteResults(w, results, cli.OutputJSON); err != nil {
					return fmt.Errorf("write results: %w", err)
				}
			default:
				if err := cli.WriteResults(w, results, cli.OutputText); err != nil {
					return fmt.Errorf("write results: %w", err)
				}
			}
			for _, r := range results {
				if r.Failed() {
					return errFailed
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print results as a JSON array")
	cmd.Flags().BoolVar(&summary, "summary", false, "print one status line per file instead of the text")
	cmd.Flags().StringVar(&mediaType, "type", "", "declared media type for every file (default: from extension)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "files extracted in parallel (default from config)")
	return cmd
}

// extractFiles extracts paths with at most workers in flight. Results keep the
// order of paths; one failed file never stops the others.
func extractFiles(ctx context.Context, ex *extract.Extractor, paths []string, mediaType string, workers int) []*models.ExtractionResult {
	results := make([]*models.ExtractionResult, len(paths))
	var g errgroup.Group
	g.SetLimit(max(workers, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			start := time.Now()
			out := ex.ExtractFile(ctx, path, mediaType)
			results[i] = newResult(path, out, time.Since(start))
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func newResult(path string, out extract.Outcome, elapsed time.Duration) *models.ExtractionResult {
	r := &models.ExtractionResult{
		File:       path,
		Format:     out.Format,
		DurationMs: elapsed.Milliseconds(),
	}
	if out.Err != nil {
		r.ErrorKind = extract.KindOf(out.Err).String()
		r.Error = out.Err.Error()
		return r
	}
	r.Strategy = out.Strategy
	r.Text = out.Text
	return r
}
