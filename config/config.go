package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LogLevel int `yaml:"log_level"`

	Server  ServerConfig  `yaml:"server"`
	Scraper ScraperConfig `yaml:"scraper"`
	Cache   CacheConfig   `yaml:"cache"`
	Storage StorageConfig `yaml:"storage"`
	Spotify SpotifyConfig `yaml:"spotify"`
}

type ServerConfig struct {
	Port string `yaml:"port"`

	// How often stores that support it are swept for expired entries
	CleanupInterval time.Duration `yaml:"cleanup_interval"`
}

type ScraperConfig struct {
	BaseURL   string        `yaml:"base_url"`
	Timeout   time.Duration `yaml:"timeout"`
	UserAgent string        `yaml:"user_agent"`
}

type CacheConfig struct {
	TTL        time.Duration `yaml:"ttl"`
	MaxEntries int           `yaml:"max_entries"`
}

type StorageConfig struct {
	// Type of storage: "none", "local", "sqlite" or "gcs"
	Type string `yaml:"type"`

	// Local storage options
	Dir string `yaml:"dir"`

	// SQLite storage options
	SQLitePath string `yaml:"sqlite_path"`

	// GCS storage options
	Bucket          string `yaml:"bucket"`
	ObjectPrefix    string `yaml:"object_prefix"`
	CredentialsFile string `yaml:"credentials_file"`
}

type SpotifyConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	TokenURL     string `yaml:"token_url"`
	APIBaseURL   string `yaml:"api_base_url"`
	SearchLimit  int    `yaml:"search_limit"`

	// Requests per second allowed against the API
	RateLimit float64 `yaml:"rate_limit"`
}

// Enabled reports whether client credentials are configured.
func (c SpotifyConfig) Enabled() bool {
	return c.ClientID != "" && c.ClientSecret != ""
}

const (
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// LoadDotEnv loads environment variables from the given .env files
// (".env" when none are given). Missing files are not an error.
func LoadDotEnv(filenames ...string) error {
	if err := godotenv.Load(filenames...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var config *Config

	// Unmarshal the YAML data into the struct
	err = yaml.Unmarshal(data, &config)
	if err != nil {
		return nil, err
	}
	if config == nil {
		config = &Config{}
	}

	config.applyDefaults()
	config.ApplyEnv()

	return config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = "8080"
	}
	if c.Server.CleanupInterval <= 0 {
		c.Server.CleanupInterval = 10 * time.Minute
	}

	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = "https://songbpm.com"
	}
	if c.Scraper.Timeout <= 0 {
		c.Scraper.Timeout = 10 * time.Second
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = DefaultUserAgent
	}

	if c.Cache.TTL <= 0 {
		c.Cache.TTL = 30 * time.Minute
	}
	if c.Cache.MaxEntries <= 0 {
		c.Cache.MaxEntries = 50
	}

	if c.Storage.Type == "" {
		c.Storage.Type = "local"
	}
	if c.Storage.Dir == "" {
		c.Storage.Dir = "cache"
	}
	if c.Storage.SQLitePath == "" {
		c.Storage.SQLitePath = "cache/songs.db"
	}

	if c.Spotify.TokenURL == "" {
		c.Spotify.TokenURL = "https://accounts.spotify.com/api/token"
	}
	if c.Spotify.APIBaseURL == "" {
		c.Spotify.APIBaseURL = "https://api.spotify.com/v1/"
	}
	if c.Spotify.SearchLimit <= 0 {
		c.Spotify.SearchLimit = 10
	}
	if c.Spotify.RateLimit <= 0 {
		c.Spotify.RateLimit = 5
	}
}

// ApplyEnv overrides file values with any environment variables that are set.
func (c *Config) ApplyEnv() {
	setString := func(dst *string, name string) {
		if v := os.Getenv(name); v != "" {
			*dst = v
		}
	}

	setString(&c.Server.Port, "PORT")
	setString(&c.Scraper.BaseURL, "SONGBPM_BASE_URL")
	setString(&c.Storage.Type, "STORAGE_TYPE")
	setString(&c.Storage.Dir, "STORAGE_DIR")
	setString(&c.Storage.SQLitePath, "SQLITE_PATH")
	setString(&c.Storage.Bucket, "GCS_BUCKET")
	setString(&c.Storage.ObjectPrefix, "GCS_OBJECT_PREFIX")
	setString(&c.Storage.CredentialsFile, "GOOGLE_APPLICATION_CREDENTIALS")
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		if level, err := strconv.Atoi(v); err == nil {
			c.LogLevel = level
		}
	}
}
