package types

import "time"

// HTTPConfig holds settings for the outbound connection to the scraping backend.
type HTTPConfig struct {
	// Timeout bounds connection setup and the wait for response headers. The
	// streamed body itself has no deadline.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with backend requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// SearchConfig holds settings for the backend search client.
type SearchConfig struct {
	// Endpoint is the URL the search request is POSTed to.
	Endpoint string `json:"endpoint" yaml:"endpoint" mapstructure:"endpoint"`

	// Intents is sent verbatim as the request's intents list.
	Intents []string `json:"intents" yaml:"intents" mapstructure:"intents"`

	// DefaultDomains replaces a blank industry field.
	DefaultDomains []string `json:"default_domains" yaml:"default_domains" mapstructure:"default_domains"`

	// FlushTrailing parses an unterminated final line at end of stream
	// instead of dropping it.
	FlushTrailing bool `json:"flush_trailing" yaml:"flush_trailing" mapstructure:"flush_trailing"`

	// MaxRetries is the number of retries on HTTP 429. Zero disables retries.
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ServerConfig holds settings for the landing page server.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
	SubmitRate     float64       `json:"submit_rate" yaml:"submit_rate" mapstructure:"submit_rate"`
	SubmitBurst    int           `json:"submit_burst" yaml:"submit_burst" mapstructure:"submit_burst"`
	SessionTTL     time.Duration `json:"session_ttl" yaml:"session_ttl" mapstructure:"session_ttl"`
}

// LogConfig selects the zerolog level and output format ("console" or "json").
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all InternScout settings.
type Config struct {
	Search SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	HTTP   HTTPConfig   `json:"http" yaml:"http" mapstructure:"http"`
	Server ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Log    LogConfig    `json:"log" yaml:"log" mapstructure:"log"`

	// DataDir holds the search log database.
	DataDir string `json:"data_dir" yaml:"data_dir" mapstructure:"data_dir"`
}

// DefaultConfig returns the settings used when no config file or
// environment override is present.
func DefaultConfig() Config {
	return Config{
		Search: SearchConfig{
			Endpoint:       "https://internscout-backend.onrender.com/api/search",
			Intents:        append([]string(nil), DefaultIntents...),
			DefaultDomains: append([]string(nil), DefaultDomains...),
		},
		HTTP: HTTPConfig{
			Timeout:   30 * time.Second,
			UserAgent: "internscout/0.1",
		},
		Server: ServerConfig{
			Addr:        ":8080",
			SubmitRate:  0.5,
			SubmitBurst: 3,
			SessionTTL:  30 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		DataDir: "data",
	}
}
