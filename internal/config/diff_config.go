package config

// DiffConfig defines configuration for diffing
type DiffConfig struct {
	MaxDiffLength   int    `json:"max_diff_length,omitempty" yaml:"max_diff_length,omitempty" validate:"min=1"`
	Normalizer      string `json:"normalizer,omitempty" yaml:"normalizer,omitempty" validate:"normalizer"`
	ContentSelector string `json:"content_selector,omitempty" yaml:"content_selector,omitempty"`
}

// NewDefaultDiffConfig creates default diff configuration
func NewDefaultDiffConfig() DiffConfig {
	return DiffConfig{
		MaxDiffLength: DefaultMaxDiffLength,
		Normalizer:    DefaultNormalizer,
	}
}
