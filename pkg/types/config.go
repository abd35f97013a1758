package types

import "time"

// DefaultModel is the model used when none is configured.
const DefaultModel = "gemini-1.5-flash"

// GenerationConfig holds the per-request settings for the document
// understanding API. It replaces the loose keyword dictionaries the API
// accepts with an explicit struct.
type GenerationConfig struct {
	// Model is the model identifier (e.g. "gemini-1.5-flash").
	Model string `json:"model" yaml:"model"`

	// Temperature is the sampling temperature, 0.0-1.0. Low values keep
	// technical extraction deterministic.
	Temperature float32 `json:"temperature" yaml:"temperature"`

	// MaxOutputTokens caps the response length. 0 leaves the server default.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens"`

	// UseSearch enables the search grounding tool for additional context.
	UseSearch bool `json:"use_search" yaml:"use_search"`
}

// ExtractionConfig holds settings for the extraction stage.
type ExtractionConfig struct {
	GenerationConfig `yaml:",inline"`

	// APIKey authenticates against the remote API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// MaxRetries is the total number of attempts per remote call
	// (default 4).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// CacheTTL is the time-to-live for the server-side content cache used
	// by the chunked pipeline (default 30m).
	CacheTTL time.Duration `json:"cache_ttl" yaml:"cache_ttl"`

	// ChunkThresholdBytes selects the chunked pipeline for inputs larger
	// than this size (default 10 MiB). The --chunked flag overrides it.
	ChunkThresholdBytes int64 `json:"chunk_threshold_bytes" yaml:"chunk_threshold_bytes"`
}

// Defaults used when a config field is zero.
const (
	DefaultMaxRetries     = 4
	DefaultTemperature    = 0.1
	DefaultCacheTTL       = 30 * time.Minute
	DefaultChunkThreshold = 10 << 20
)

// WithDefaults returns a copy of the config with zero fields replaced by
// the package defaults.
func (c ExtractionConfig) WithDefaults() ExtractionConfig {
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.Temperature == 0 {
		c.Temperature = DefaultTemperature
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = DefaultMaxRetries
	}
	if c.CacheTTL <= 0 {
		c.CacheTTL = DefaultCacheTTL
	}
	if c.ChunkThresholdBytes <= 0 {
		c.ChunkThresholdBytes = DefaultChunkThreshold
	}
	return c
}

// OutputFormat selects what the extract command writes.
type OutputFormat string

const (
	OutputMarkdown OutputFormat = "markdown"
	OutputJSON     OutputFormat = "json"
)
