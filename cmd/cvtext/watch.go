package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/inbox"
	"github.com/hyperjump/cvtext/internal/storage"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		dirs      []string
		outDir    string
		noJournal bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Extract files dropped into inbox directories",
		Long: `Watches the inbox directories and writes the text of every new or changed
supported file to <out>/<path>.txt, mirroring its path below the inbox directory
(one subdirectory per inbox when several are watched). Files already present are
processed at start.
Deleting a source file deletes its text. Outcomes are kept in a SQLite journal
so files unchanged since their last extraction are skipped after a restart.
Stops on SIGINT or SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(dirs) == 0 {
				dirs = a.cfg.Inbox.Directories
			}
			if outDir == "" {
				outDir = a.cfg.Inbox.OutputDir
			}
			ctx := cmd.Context()
			logger := a.logger
			procOpts := []inbox.ProcessorOption{inbox.WithRoots(dirs...)}
			if !noJournal {
				journal, err := storage.NewSQLiteJournal(a.cfg.Inbox.JournalPath)
				if err != nil {
					return fmt.Errorf("open journal: %w", err)
				}
				defer journal.Close()
				procOpts = append(procOpts, inbox.WithJournal(journal))
			}
			proc := inbox.NewProcessor(a.extractor, outDir, logger, procOpts...)
			w := inbox.NewWatcher(
				dirs,
				extract.SupportedExtensions(),
				a.cfg.Inbox.RecursiveOrDefault(),
				func(path string) {
					// Failures are already logged with their kind by the processor.
					_ = proc.Process(ctx, path)
				},
				inbox.WithLogger(logger),
				inbox.WithIgnore(outDir),
				inbox.WithRemoveHandler(proc.Remove),
			)
			if err := w.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer w.Stop()
			w.SyncExisting()

			logger.Info("watching inbox",
				zap.Strings("directories", w.Directories()),
				zap.String("output_dir", outDir),
			)
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
	cmd.Flags().StringArrayVar(&dirs, "dir", nil, "inbox directory to watch (repeatable; default from config)")
	cmd.Flags().StringVar(&outDir, "out", "", "directory for extracted .txt files (default from config)")
	cmd.Flags().BoolVar(&noJournal, "no-journal", false, "re-extract every file at start instead of consulting the journal")
	return cmd
}
