package monitor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/egigoka/telegram-update-checker/internal/common"
	"github.com/egigoka/telegram-update-checker/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-agent", r.Header.Get("User-Agent"))
		switch r.URL.Path {
		case "/ok":
			_, _ = w.Write([]byte("Hello"))
		case "/cp1251":
			w.Header().Set("Content-Type", "text/html; charset=windows-1251")
			_, _ = w.Write([]byte("\xcf\xf0\xe8\xe2\xe5\xf2"))
		case "/utf8":
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("Привет"))
		case "/meta":
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<meta charset=\"latin1\">caf\xe9"))
		case "/empty":
		case "/big":
			_, _ = w.Write([]byte(strings.Repeat("x", 64)))
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	cfg := config.NewDefaultMonitorConfig()
	cfg.UserAgent = "test-agent"
	cfg.MaxContentSize = 32
	fetcher := NewFetcher(server.Client(), cfg, zerolog.Nop())
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		content, err := fetcher.Fetch(ctx, server.URL+"/ok")
		require.NoError(t, err)
		assert.Equal(t, "Hello", content)
	})

	t.Run("charsets are decoded to utf-8", func(t *testing.T) {
		tests := []struct {
			path string
			want string
		}{
			{path: "/cp1251", want: "Привет"},
			{path: "/utf8", want: "Привет"},
			{path: "/meta", want: `<meta charset="latin1">café`},
			{path: "/empty", want: ""},
		}
		for _, tt := range tests {
			content, err := fetcher.Fetch(ctx, server.URL+tt.path)
			require.NoError(t, err, tt.path)
			assert.Equal(t, tt.want, content, tt.path)
			assert.True(t, utf8.ValidString(content), tt.path)
		}
	})

	t.Run("non-2xx", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/missing")
		require.Error(t, err)
		assert.True(t, common.IsTransportError(err))

		var httpErr *common.HTTPError
		require.True(t, errors.As(err, &httpErr))
		assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
	})

	t.Run("too large", func(t *testing.T) {
		_, err := fetcher.Fetch(ctx, server.URL+"/big")
		require.Error(t, err)
		assert.True(t, common.IsTransportError(err))
		assert.Contains(t, err.Error(), "content too large")
	})
}

func TestFetcher_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("late"))
	}))
	defer server.Close()

	fetcher := NewFetcher(server.Client(), config.NewDefaultMonitorConfig(), zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := fetcher.Fetch(ctx, server.URL)

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
