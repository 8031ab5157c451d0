// Package main is the cvtext CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hyperjump/cvtext/internal/config"
	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/ocr"
	"github.com/hyperjump/cvtext/pkg/utils"
)

// Set at build time via -ldflags.
var (
	version = "dev"
	commit  = "none"
)

const defaultConfigPath = "/usr/local/etc/cvtext/config.yaml"

// errFailed is returned when at least one file could not be extracted. The
// per-file errors have already been reported, so main only sets the exit code.
var errFailed = errors.New("one or more files failed")

// loadConfig loads config from path. When path is the default, config.yaml in
// the current directory takes precedence (for development). A missing file
// yields defaults plus environment overrides.
// Returns the config and the path that was actually used.
func loadConfig(path string) (*config.Config, string, error) {
	if err := config.LoadDotEnv(".env"); err != nil {
		return nil, "", err
	}
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// app holds what every subcommand needs once flags are parsed.
type app struct {
	configPath string
	debug      bool

	cfg       *config.Config
	logger    *zap.Logger
	extractor *extract.Extractor
}

func (a *app) init() error {
	cfg, resolved, err := loadConfig(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	debugMode := cfg.Debug || a.debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	logger.Debug("config loaded",
		zap.String("config_path", resolved),
		zap.Bool("debug", debugMode),
	)
	a.cfg = cfg
	a.logger = logger
	a.extractor = newExtractor(cfg, logger)
	return nil
}

func newExtractor(cfg *config.Config, logger *zap.Logger) *extract.Extractor {
	return extract.NewExtractor(
		extract.WithLogger(logger),
		extract.WithMaxSize(cfg.Extract.MaxFileSize),
		extract.WithMaxTextLength(cfg.Extract.MaxTextLength),
		extract.WithOCR(ocr.NewTesseract(cfg.OCR.TessdataPrefix), cfg.OCR.Language),
	)
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "cvtext",
		Short: "Extract plain text from résumés and CVs",
		Long: `cvtext turns uploaded résumé files (PDF, Word, plain text, RTF, ODT and
scanned images) into normalized plain text for downstream screening.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" || cmd.Name() == "formats" {
				return nil
			}
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", defaultConfigPath, "config file path")
	root.PersistentFlags().BoolVar(&a.debug, "debug", false, "enable debug logging (strategy attempts, watcher events)")

	root.AddCommand(newExtractCmd(a))
	root.AddCommand(newWatchCmd(a))
	root.AddCommand(newStatusCmd(a))
	root.AddCommand(newFormatsCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newFormatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List supported media types and extensions",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printFormats(cmd.OutOrStdout())
		},
	}
}

func printFormats(w io.Writer) {
	fmt.Fprintln(w, "Media types:")
	for _, mt := range extract.SupportedMediaTypes() {
		fmt.Fprintf(w, "  %s\n", mt)
	}
	fmt.Fprintln(w, "\nExtensions:")
	fmt.Fprintf(w, "  %s\n", strings.Join(extract.SupportedExtensions(), " "))
	if !ocr.NewTesseract("").Available() {
		fmt.Fprintln(w, "\nOCR: not compiled in (build with -tags tesseract); images will fail as UnreadableImage")
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version of cvtext",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "cvtext %s\n", version)
			fmt.Fprintf(w, "  commit:     %s\n", commit)
			fmt.Fprintf(w, "  go version: %s\n", runtime.Version())
			fmt.Fprintf(w, "  os/arch:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
