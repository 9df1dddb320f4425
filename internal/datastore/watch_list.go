package datastore

import (
	"bufio"
	"errors"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/rs/zerolog"
)

// WatchList is the ordered list of watched URLs, persisted one per line.
// Duplicates are kept; Remove drops the first exact match.
type WatchList struct {
	path       string
	mutex      sync.Mutex
	fileWriter *common.FileWriter
	logger     zerolog.Logger
}

// NewWatchList opens the watch-list file at path. When the file does not
// exist and initialURLs is non-empty, the file is created from them.
func NewWatchList(path string, initialURLs []string, logger zerolog.Logger) (*WatchList, error) {
	if path == "" {
		return nil, common.NewValidationError("watch_list_file", path, "cannot be empty")
	}

	wlLogger := logger.With().Str("component", "WatchList").Logger()
	wl := &WatchList{
		path:       path,
		fileWriter: common.NewFileWriter(wlLogger),
		logger:     wlLogger,
	}

	if len(initialURLs) > 0 && !common.FileExists(path) {
		if err := wl.save(initialURLs); err != nil {
			return nil, err
		}
		wlLogger.Info().Int("count", len(initialURLs)).Str("path", path).Msg("Seeded watch list")
	}
	return wl, nil
}

// List returns the watched URLs in file order.
func (wl *WatchList) List() ([]string, error) {
	wl.mutex.Lock()
	defer wl.mutex.Unlock()
	return wl.load()
}

// Add appends url.
func (wl *WatchList) Add(url string) error {
	wl.mutex.Lock()
	defer wl.mutex.Unlock()

	urls, err := wl.load()
	if err != nil {
		return err
	}
	urls = append(urls, url)
	if err := wl.save(urls); err != nil {
		return err
	}
	wl.logger.Info().Str("url", url).Int("total", len(urls)).Msg("URL added to watch list")
	return nil
}

// AddMissing appends every url not already present and reports how many
// were added.
func (wl *WatchList) AddMissing(urls []string) (int, error) {
	wl.mutex.Lock()
	defer wl.mutex.Unlock()

	current, err := wl.load()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]struct{}, len(current))
	for _, u := range current {
		seen[u] = struct{}{}
	}

	added := 0
	for _, u := range urls {
		if _, ok := seen[u]; ok {
			continue
		}
		seen[u] = struct{}{}
		current = append(current, u)
		added++
	}
	if added == 0 {
		return 0, nil
	}
	if err := wl.save(current); err != nil {
		return 0, err
	}
	return added, nil
}

// Remove deletes the first entry equal to url. It reports false when url
// is not in the list.
func (wl *WatchList) Remove(url string) (bool, error) {
	wl.mutex.Lock()
	defer wl.mutex.Unlock()

	urls, err := wl.load()
	if err != nil {
		return false, err
	}

	index := -1
	for i, u := range urls {
		if u == url {
			index = i
			break
		}
	}
	if index == -1 {
		return false, nil
	}

	urls = append(urls[:index], urls[index+1:]...)
	if err := wl.save(urls); err != nil {
		return false, err
	}
	wl.logger.Info().Str("url", url).Int("total", len(urls)).Msg("URL removed from watch list")
	return true, nil
}

func (wl *WatchList) load() ([]string, error) {
	file, err := os.Open(wl.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []string{}, nil
		}
		return nil, common.NewStateError("read watch list", wl.path, err)
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			wl.logger.Warn().Err(closeErr).Str("path", wl.path).Msg("Failed to close watch list")
		}
	}()

	return ReadURLLines(file, wl.path)
}

func (wl *WatchList) save(urls []string) error {
	var sb strings.Builder
	for _, u := range urls {
		sb.WriteString(u)
		sb.WriteByte('\n')
	}
	if err := wl.fileWriter.WriteFileAtomic(wl.path, []byte(sb.String()), 0644); err != nil {
		return common.NewStateError("write watch list", wl.path, err)
	}
	return nil
}

// ReadURLLines reads one URL per line, skipping blank lines and lines
// starting with '#'. source names the reader in errors.
func ReadURLLines(r io.Reader, source string) ([]string, error) {
	urls := []string{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, common.NewStateError("scan", source, err)
	}
	return urls, nil
}
