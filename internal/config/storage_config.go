package config

// StorageConfig defines where durable state lives
type StorageConfig struct {
	SnapshotDir   string   `json:"snapshot_dir,omitempty" yaml:"snapshot_dir,omitempty" validate:"required"`
	WatchListFile string   `json:"watch_list_file,omitempty" yaml:"watch_list_file,omitempty" validate:"required"`
	OffsetFile    string   `json:"offset_file,omitempty" yaml:"offset_file,omitempty" validate:"required"`
	HistoryDBPath string   `json:"history_db_path" yaml:"history_db_path"` // empty disables cycle history
	InitialURLs   []string `json:"initial_urls,omitempty" yaml:"initial_urls,omitempty" validate:"omitempty,dive,url"`
}

// NewDefaultStorageConfig creates default storage configuration
func NewDefaultStorageConfig() StorageConfig {
	return StorageConfig{
		SnapshotDir:   DefaultSnapshotDir,
		WatchListFile: DefaultWatchListFile,
		OffsetFile:    DefaultOffsetFile,
		HistoryDBPath: DefaultHistoryDBPath,
		InitialURLs:   []string{},
	}
}
