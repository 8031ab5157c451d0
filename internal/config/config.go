// Package config provides configuration loading and structs for cvtext.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug   bool          `yaml:"debug"`
	Extract ExtractConfig `yaml:"extract"`
	OCR     OCRConfig     `yaml:"ocr"`
	Inbox   InboxConfig   `yaml:"inbox"`
}

// ExtractConfig holds pipeline limits.
type ExtractConfig struct {
	MaxFileSize   int64 `yaml:"max_file_size"`
	MaxTextLength int   `yaml:"max_text_length"`
	Workers       int   `yaml:"workers"`
}

// OCRConfig holds Tesseract settings.
type OCRConfig struct {
	Language       string `yaml:"language"`
	TessdataPrefix string `yaml:"tessdata_prefix"`
}

// InboxConfig holds the watch-mode directories.
type InboxConfig struct {
	Directories []string `yaml:"directories"`
	OutputDir   string   `yaml:"output_dir"`
	JournalPath string   `yaml:"journal_path"`
	Recursive   *bool    `yaml:"recursive"`
}

// RecursiveOrDefault returns whether to watch recursively; defaults to true when unset.
func (i *InboxConfig) RecursiveOrDefault() bool {
	if i.Recursive != nil {
		return *i.Recursive
	}
	return true
}

// Load reads and parses the config file at path, applies environment overrides and
// defaults, and expands paths. Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := ApplyEnv(&cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)

	configDir := filepath.Dir(path)
	cfg.OCR.TessdataPrefix = expandPath(cfg.OCR.TessdataPrefix, configDir)
	cfg.Inbox.OutputDir = expandPath(cfg.Inbox.OutputDir, configDir)
	cfg.Inbox.JournalPath = expandPath(cfg.Inbox.JournalPath, configDir)
	for i := range cfg.Inbox.Directories {
		cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], configDir)
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load, but a missing file yields the defaults (plus
// environment overrides) with paths resolved against the working directory.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	cfg = &Config{}
	if err := ApplyEnv(cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(cfg)
	if cwd, err := os.Getwd(); err == nil {
		cfg.Inbox.OutputDir = expandPath(cfg.Inbox.OutputDir, cwd)
		cfg.Inbox.JournalPath = expandPath(cfg.Inbox.JournalPath, cwd)
		for i := range cfg.Inbox.Directories {
			cfg.Inbox.Directories[i] = expandPath(cfg.Inbox.Directories[i], cwd)
		}
	}
	return cfg, nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath converts a path to absolute. Paths starting with "./" are relative to configDir;
// other relative paths are relative to the home directory. Empty paths stay empty.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, path)
	}
	return path
}
