package config

import (
	"time"
)

// MonitorConfig defines configuration for the periodic URL checker
type MonitorConfig struct {
	CheckIntervalSeconds int    `json:"check_interval_seconds,omitempty" yaml:"check_interval_seconds,omitempty" validate:"min=1"`
	Enabled              bool   `json:"enabled" yaml:"enabled"`
	HTTPTimeoutSeconds   int    `json:"http_timeout_seconds,omitempty" yaml:"http_timeout_seconds,omitempty" validate:"min=1"`
	MaxContentSize       int    `json:"max_content_size,omitempty" yaml:"max_content_size,omitempty" validate:"min=0"` // Max content size in bytes, 0 for no limit
	NotifyOnFirstSeen    bool   `json:"notify_on_first_seen" yaml:"notify_on_first_seen"`
	UserAgent            string `json:"user_agent,omitempty" yaml:"user_agent,omitempty"`
	Proxy                string `json:"proxy,omitempty" yaml:"proxy,omitempty" validate:"omitempty,url"`
	InsecureSkipVerify   bool   `json:"insecure_skip_verify" yaml:"insecure_skip_verify"`
	EnableHTTP2          bool   `json:"enable_http2" yaml:"enable_http2"`
}

// NewDefaultMonitorConfig creates default monitor configuration
func NewDefaultMonitorConfig() MonitorConfig {
	return MonitorConfig{
		CheckIntervalSeconds: DefaultCheckIntervalSeconds,
		Enabled:              true,
		HTTPTimeoutSeconds:   DefaultHTTPTimeoutSeconds,
		MaxContentSize:       DefaultMaxContentSize,
		NotifyOnFirstSeen:    false,
		UserAgent:            DefaultUserAgent,
		EnableHTTP2:          true,
	}
}

// CheckInterval returns the base interval between check cycles
func (mc MonitorConfig) CheckInterval() time.Duration {
	return time.Duration(mc.CheckIntervalSeconds) * time.Second
}

// HTTPTimeout returns the per-fetch timeout
func (mc MonitorConfig) HTTPTimeout() time.Duration {
	return time.Duration(mc.HTTPTimeoutSeconds) * time.Second
}
