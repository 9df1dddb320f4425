package monitor

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/rs/zerolog"
	"golang.org/x/net/html/charset"
)

// Fetcher downloads the current content of watched URLs.
type Fetcher struct {
	httpClient     *http.Client
	userAgent      string
	maxContentSize int
	timeout        time.Duration
	logger         zerolog.Logger
}

// NewFetcher creates a new Fetcher.
func NewFetcher(client *http.Client, cfg config.MonitorConfig, logger zerolog.Logger) *Fetcher {
	return &Fetcher{
		httpClient:     client,
		userAgent:      cfg.UserAgent,
		maxContentSize: cfg.MaxContentSize,
		timeout:        cfg.HTTPTimeout(),
		logger:         logger.With().Str("component", "Fetcher").Logger(),
	}
}

// Fetch GETs url and returns its body as text. Transport failures, non-2xx
// statuses and oversized bodies are returned as *common.TransportError.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("Failed to create new HTTP request")
		return "", common.NewTransportError("fetch", url, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("Failed to execute HTTP request")
		return "", common.NewTransportError("fetch", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		f.logger.Warn().Str("url", url).Int("status_code", resp.StatusCode).Msg("Received non-2xx HTTP status")
		return "", common.NewTransportError("fetch", url, common.NewHTTPError(resp.StatusCode, http.StatusText(resp.StatusCode)))
	}

	if f.maxContentSize > 0 && resp.ContentLength > int64(f.maxContentSize) {
		return "", common.NewTransportError("fetch", url,
			fmt.Errorf("content too large: %d bytes (max: %d bytes)", resp.ContentLength, f.maxContentSize))
	}

	var body io.Reader = resp.Body
	if f.maxContentSize > 0 {
		body = io.LimitReader(resp.Body, int64(f.maxContentSize)+1)
	}
	bodyBytes, err := io.ReadAll(body)
	if err != nil {
		f.logger.Error().Err(err).Str("url", url).Msg("Failed to read response body")
		return "", common.NewTransportError("fetch", url, fmt.Errorf("failed to read response body: %w", err))
	}
	if f.maxContentSize > 0 && len(bodyBytes) > f.maxContentSize {
		return "", common.NewTransportError("fetch", url,
			fmt.Errorf("content too large: more than %d bytes", f.maxContentSize))
	}

	content, err := decodeBody(bodyBytes, resp.Header.Get("Content-Type"))
	if err != nil {
		f.logger.Warn().Err(err).Str("url", url).Msg("Failed to decode response body")
		return "", common.NewTransportError("fetch", url, fmt.Errorf("failed to decode response body: %w", err))
	}

	f.logger.Debug().Str("url", url).Int("size", len(bodyBytes)).Msg("Content fetched successfully")
	return content, nil
}

// decodeBody converts body to UTF-8 using the charset from contentType, a
// BOM or a <meta> tag. Bytes that still are not valid UTF-8 are replaced.
func decodeBody(body []byte, contentType string) (string, error) {
	if len(body) == 0 {
		return "", nil
	}
	reader, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return "", err
	}
	decoded, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(string(decoded), "\uFFFD"), nil
}
