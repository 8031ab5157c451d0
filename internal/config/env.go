package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Environment variables that override the YAML file.
const (
	EnvDebug          = "CVTEXT_DEBUG"
	EnvWorkers        = "CVTEXT_WORKERS"
	EnvMaxFileSize    = "CVTEXT_MAX_FILE_SIZE"
	EnvOCRLanguage    = "CVTEXT_OCR_LANGUAGE"
	EnvTessdataPrefix = "TESSDATA_PREFIX"
)

// LoadDotEnv loads KEY=value pairs from path into the process environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// ApplyEnv overrides cfg with any of the CVTEXT_* variables (and TESSDATA_PREFIX) that are set.
func ApplyEnv(cfg *Config) error {
	if v, ok := os.LookupEnv(EnvDebug); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvDebug, v, err)
		}
		cfg.Debug = b
	}
	if v, ok := os.LookupEnv(EnvWorkers); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvWorkers, v, err)
		}
		cfg.Extract.Workers = n
	}
	if v, ok := os.LookupEnv(EnvMaxFileSize); ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%s=%q: %w", EnvMaxFileSize, v, err)
		}
		cfg.Extract.MaxFileSize = n
	}
	if v := getEnv(EnvOCRLanguage, ""); v != "" {
		cfg.OCR.Language = v
	}
	if v := getEnv(EnvTessdataPrefix, ""); v != "" {
		cfg.OCR.TessdataPrefix = v
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
