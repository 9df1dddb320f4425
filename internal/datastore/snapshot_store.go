package datastore

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/urlhandler"
	"github.com/rs/zerolog"
)

// SnapshotStore keeps the last notified content of every watched URL, one
// plain-text file per URL under a base directory.
type SnapshotStore struct {
	baseDir    string
	fileWriter *common.FileWriter
	logger     zerolog.Logger
}

// NewSnapshotStore creates a snapshot store rooted at baseDir. The directory
// is created if needed.
func NewSnapshotStore(baseDir string, logger zerolog.Logger) (*SnapshotStore, error) {
	if baseDir == "" {
		return nil, common.NewValidationError("snapshot_dir", baseDir, "cannot be empty")
	}
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, common.NewStateError("mkdir", baseDir, err)
	}

	storeLogger := logger.With().Str("component", "SnapshotStore").Logger()
	return &SnapshotStore{
		baseDir:    baseDir,
		fileWriter: common.NewFileWriter(storeLogger),
		logger:     storeLogger,
	}, nil
}

// Path returns the file that holds the snapshot of url.
func (s *SnapshotStore) Path(url string) string {
	return filepath.Join(s.baseDir, urlhandler.SnapshotKey(url))
}

// Read returns the stored content for url. A URL that was never stored
// yields ("", false, nil).
func (s *SnapshotStore) Read(url string) (string, bool, error) {
	path := s.Path(url)
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", false, nil
		}
		s.logger.Error().Err(err).Str("url", url).Str("path", path).Msg("Failed to read snapshot")
		return "", false, common.NewStateError("read snapshot", path, err)
	}
	return string(data), true, nil
}

// Write replaces the stored content for url.
func (s *SnapshotStore) Write(url, content string) error {
	path := s.Path(url)
	if err := s.fileWriter.WriteFileAtomic(path, []byte(content), 0644); err != nil {
		s.logger.Error().Err(err).Str("url", url).Str("path", path).Msg("Failed to write snapshot")
		return common.NewStateError("write snapshot", path, err)
	}
	s.logger.Debug().Str("url", url).Int("bytes", len(content)).Msg("Snapshot stored")
	return nil
}
