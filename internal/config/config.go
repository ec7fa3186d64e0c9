package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Config represents the top-level application configuration.
type Config struct {
	GitHub    GitHubConfig    `toml:"github"`
	GitLab    GitLabConfig    `toml:"gitlab"`
	Generator GeneratorConfig `toml:"generator"`
	Selection SelectionConfig `toml:"selection"`
	Fetch     FetchConfig     `toml:"fetch"`
	Store     StoreConfig     `toml:"store"`
	Server    ServerConfig    `toml:"server"`
	Publish   PublishConfig   `toml:"publish"`
}

// GitHubConfig holds settings for the GitHub source.
type GitHubConfig struct {
	TokenSource       string  `toml:"token_source"`
	Token             string  `toml:"token"`
	APIURL            string  `toml:"api_url"`
	GraphQLURL        string  `toml:"graphql_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	MaxRetries        int     `toml:"max_retries"`
}

// GitLabConfig holds settings for the GitLab source.
type GitLabConfig struct {
	TokenSource       string  `toml:"token_source"`
	Token             string  `toml:"token"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
	MaxRetries        int     `toml:"max_retries"`
}

// GeneratorConfig selects and configures the documentation backend.
type GeneratorConfig struct {
	Default string                   `toml:"default"`
	Model   string                   `toml:"model"`
	Gemini  GeminiConfig             `toml:"gemini"`
	OpenAI  []OpenAICompatibleConfig `toml:"openai_compatible"`
}

// GeminiConfig holds Gemini-specific settings.
type GeminiConfig struct {
	APIKeySource      string  `toml:"api_key_source"`
	APIKey            string  `toml:"api_key"`
	BaseURL           string  `toml:"base_url"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// OpenAICompatibleConfig holds settings for an OpenAI-compatible backend.
type OpenAICompatibleConfig struct {
	Name         string            `toml:"name"`
	BaseURL      string            `toml:"base_url"`
	APIKeySource string            `toml:"api_key_source"`
	APIKey       string            `toml:"api_key"`
	ExtraHeaders map[string]string `toml:"extra_headers"`
}

// SelectionConfig bounds the key-file selection.
type SelectionConfig struct {
	MaxFiles         int `toml:"max_files"`
	SparseThreshold  int `toml:"sparse_threshold"`
	FallbackCeiling  int `toml:"fallback_ceiling"`
	TreeListingLimit int `toml:"tree_listing_limit"`
}

// FetchConfig controls content retrieval.
type FetchConfig struct {
	BatchSize   int `toml:"batch_size"`
	MaxChars    int `toml:"max_chars"`
	Concurrency int `toml:"concurrency"`
}

// StoreConfig selects the visit counter database.
type StoreConfig struct {
	Driver string `toml:"driver"` // sqlite, postgres, mysql
	DSN    string `toml:"dsn"`
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	TreeCacheSize int    `toml:"tree_cache_size"`
	// TreeCacheTTL is in seconds.
	TreeCacheTTL  int    `toml:"tree_cache_ttl"`
}

// PublishConfig holds optional publishing targets.
type PublishConfig struct {
	S3 S3Config `toml:"s3"`
}

// S3Config describes an S3-compatible bucket for rendered documents.
type S3Config struct {
	Endpoint        string `toml:"endpoint"`
	Region          string `toml:"region"`
	Bucket          string `toml:"bucket"`
	Prefix          string `toml:"prefix"`
	AccessKeySource string `toml:"access_key_source"`
	AccessKey       string `toml:"access_key"`
	SecretKey       string `toml:"secret_key"`
	UseSSL          bool   `toml:"use_ssl"`
}

// DefaultConfig returns a Config populated with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		GitHub: GitHubConfig{
			TokenSource:       "env",
			RequestsPerSecond: 10,
			MaxRetries:        3,
		},
		GitLab: GitLabConfig{
			TokenSource:       "env",
			RequestsPerSecond: 10,
			MaxRetries:        3,
		},
		Generator: GeneratorConfig{
			Default: "gemini",
			Model:   "gemini-2.5-flash",
			Gemini: GeminiConfig{
				APIKeySource: "env",
			},
		},
		Selection: SelectionConfig{
			MaxFiles:         40,
			SparseThreshold:  10,
			FallbackCeiling:  20,
			TreeListingLimit: 200,
		},
		Fetch: FetchConfig{
			BatchSize:   15,
			MaxChars:    3000,
			Concurrency: 1,
		},
		Store: StoreConfig{
			Driver: "sqlite",
		},
		Server: ServerConfig{
			Addr:          ":3000",
			TreeCacheSize: 128,
			TreeCacheTTL:  300,
		},
		Publish: PublishConfig{
			S3: S3Config{
				Region:          "us-east-1",
				Prefix:          "repodoc",
				AccessKeySource: "env",
				UseSSL:          true,
			},
		},
	}
}

// DefaultDir returns the per-user configuration directory.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "repodoc"), nil
}

// Load reads the TOML file at path on top of the defaults. A missing file
// is not an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if _, err := toml.Decode(string(data), cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path as TOML, creating parent directories.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("opening config for write: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return nil
}
