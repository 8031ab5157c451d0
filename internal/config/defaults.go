package config

import (
	"github.com/hyperjump/cvtext/internal/extract"
	"github.com/hyperjump/cvtext/internal/ocr"
)

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Extract.MaxFileSize <= 0 {
		cfg.Extract.MaxFileSize = extract.MaxSize
	}
	if cfg.Extract.MaxTextLength == 0 {
		cfg.Extract.MaxTextLength = extract.DefaultMaxTextLength
	}
	if cfg.Extract.Workers <= 0 {
		cfg.Extract.Workers = 4
	}
	if cfg.OCR.Language == "" {
		cfg.OCR.Language = ocr.DefaultLanguage
	}
	if len(cfg.Inbox.Directories) == 0 {
		cfg.Inbox.Directories = []string{"./inbox"}
	}
	if cfg.Inbox.OutputDir == "" {
		cfg.Inbox.OutputDir = "./out"
	}
	if cfg.Inbox.JournalPath == "" {
		cfg.Inbox.JournalPath = "./cvtext.db"
	}
	// Recursive defaults to true when unset (nil).
	if cfg.Inbox.Recursive == nil {
		t := true
		cfg.Inbox.Recursive = &t
	}
}
