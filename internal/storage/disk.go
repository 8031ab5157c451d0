package storage

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"
)

// OutputStats counts the extracted .txt files under dir and their total size.
// A missing dir reports zero; other walk errors are returned.
func OutputStats(dir string) (files int, bytes int64, err error) {
	if dir == "" {
		return 0, 0, nil
	}
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == dir && errors.Is(walkErr, fs.ErrNotExist) {
				return fs.SkipAll
			}
			return walkErr
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".txt") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files++
		bytes += info.Size()
		return nil
	})
	return files, bytes, err
}
