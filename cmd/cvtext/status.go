package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hyperjump/cvtext/internal/cli"
	"github.com/hyperjump/cvtext/internal/storage"
)

func newStatusCmd(a *app) *cobra.Command {
	var (
		asJSON bool
		recent int
	)
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show watch-mode journal totals and recent extractions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			journal, err := storage.NewSQLiteJournal(a.cfg.Inbox.JournalPath)
			if err != nil {
				return fmt.Errorf("open journal: %w", err)
			}
			defer journal.Close()

			status, err := collectStatus(cmd.Context(), journal, a.cfg.Inbox.JournalPath, a.cfg.Inbox.OutputDir, recent)
			if err != nil {
				return err
			}
			format := cli.OutputText
			if asJSON {
				format = cli.OutputJSON
			}
			return cli.WriteStatus(cmd.OutOrStdout(), status, format)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print status as JSON")
	cmd.Flags().IntVarP(&recent, "recent", "n", 10, "number of recent extractions to list")
	return cmd
}

func collectStatus(ctx context.Context, journal storage.Journal, journalPath, outDir string, recent int) (*cli.Status, error) {
	succeeded, failed, err := journal.Counts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count journal entries: %w", err)
	}
	entries, err := journal.List(ctx, 0, max(recent, 0))
	if err != nil {
		return nil, fmt.Errorf("list journal entries: %w", err)
	}
	files, size, err := storage.OutputStats(outDir)
	if err != nil {
		return nil, fmt.Errorf("scan output dir: %w", err)
	}
	return &cli.Status{
		JournalPath: journalPath,
		OutputDir:   outDir,
		Succeeded:   succeeded,
		Failed:      failed,
		OutputFiles: files,
		OutputBytes: size,
		Recent:      entries,
	}, nil
}
