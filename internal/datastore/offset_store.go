package datastore

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/rs/zerolog"
)

// OffsetStore persists the command cursor as one decimal integer.
type OffsetStore struct {
	path       string
	fileWriter *common.FileWriter
	logger     zerolog.Logger
}

// NewOffsetStore creates an offset store backed by path.
func NewOffsetStore(path string, logger zerolog.Logger) (*OffsetStore, error) {
	if path == "" {
		return nil, common.NewValidationError("offset_file", path, "cannot be empty")
	}
	storeLogger := logger.With().Str("component", "OffsetStore").Logger()
	return &OffsetStore{
		path:       path,
		fileWriter: common.NewFileWriter(storeLogger),
		logger:     storeLogger,
	}, nil
}

// Get returns the stored offset. ok is false when nothing was stored yet.
func (o *OffsetStore) Get() (int, bool, error) {
	data, err := os.ReadFile(o.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, false, nil
		}
		return 0, false, common.NewStateError("read offset", o.path, err)
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return 0, false, nil
	}
	offset, err := strconv.Atoi(text)
	if err != nil {
		return 0, false, common.NewStateError("parse offset", o.path, err)
	}
	return offset, true, nil
}

// Set stores offset.
func (o *OffsetStore) Set(offset int) error {
	if err := o.fileWriter.WriteFileAtomic(o.path, []byte(strconv.Itoa(offset)), 0644); err != nil {
		o.logger.Error().Err(err).Int("offset", offset).Msg("Failed to persist offset")
		return common.NewStateError("write offset", o.path, err)
	}
	return nil
}
