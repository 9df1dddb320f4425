package common

import (
	"os"
	"path/filepath"

	"github.com/google/renameio/v2"
	"github.com/rs/zerolog"
)

// FileWriter writes state files so that readers never observe a partial
// file. renameio writes a synced temp file and renames it over the target.
type FileWriter struct {
	logger zerolog.Logger
}

// NewFileWriter creates a new FileWriter instance
func NewFileWriter(logger zerolog.Logger) *FileWriter {
	return &FileWriter{
		logger: logger.With().Str("component", "FileWriter").Logger(),
	}
}

// WriteFileAtomic replaces path with data, creating parent directories.
func (fw *FileWriter) WriteFileAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return WrapError(err, "failed to create directory: "+dir)
	}

	if err := renameio.WriteFile(path, data, perm); err != nil {
		fw.logger.Error().Err(err).Str("path", path).Msg("Atomic write failed")
		return WrapError(err, "failed to replace file: "+path)
	}

	fw.logger.Debug().Str("path", path).Int("bytes", len(data)).Msg("File written successfully")
	return nil
}

// FileExists checks if a file exists and is not a directory
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
