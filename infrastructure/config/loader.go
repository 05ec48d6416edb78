package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for the configuration file
const DefaultPath = "config/config.yaml"

// Cookie sources
const (
	CookieSourceNone  = "none"
	CookieSourceHTTP  = "http"
	CookieSourceDrive = "drive"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Audio   AudioConfig   `yaml:"audio"`
	YouTube YouTubeConfig `yaml:"youtube"`
	Cookies CookiesConfig `yaml:"cookies"`
	Google  GoogleConfig  `yaml:"google"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig contains HTTP server settings
type ServerConfig struct {
	Addr              string   `yaml:"addr"`
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   Duration `yaml:"shutdown_timeout"`
}

// AudioConfig contains transcoding settings
type AudioConfig struct {
	FFmpegPath   string   `yaml:"ffmpeg_path"`
	Bitrate      string   `yaml:"bitrate"`
	StallTimeout Duration `yaml:"stall_timeout"`
}

// YouTubeConfig contains upstream provider settings
type YouTubeConfig struct {
	RequestsPerSecond float64  `yaml:"requests_per_second"`
	Burst             int      `yaml:"burst"`
	CacheTTL          Duration `yaml:"cache_ttl"`
	CacheSize         int      `yaml:"cache_size"`
	ChunkSize         int64    `yaml:"chunk_size"`
}

// CookiesConfig contains credential provisioning settings
type CookiesConfig struct {
	Path            string   `yaml:"path"`
	Source          string   `yaml:"source"`
	BlobURL         string   `yaml:"blob_url"`
	BlobToken       string   `yaml:"blob_token"`
	DriveFileID     string   `yaml:"drive_file_id"`
	RefreshInterval Duration `yaml:"refresh_interval"`
	MaxAge          Duration `yaml:"max_age"`
	Required        bool     `yaml:"required"`
}

// GoogleConfig contains Google API settings
type GoogleConfig struct {
	CredentialsFile string `yaml:"credentials_file"`
}

// LogConfig contains logging settings
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Defaults returns a configuration with every setting at its default value
func Defaults() *Config {
	cfg := &Config{Cookies: CookiesConfig{Required: true}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills in zero values
func (c *Config) ApplyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.ReadHeaderTimeout.Duration == 0 {
		c.Server.ReadHeaderTimeout.Duration = 10 * time.Second
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = 5 * time.Second
	}
	if c.Audio.FFmpegPath == "" {
		c.Audio.FFmpegPath = "ffmpeg"
	}
	if c.Audio.Bitrate == "" {
		c.Audio.Bitrate = "192k"
	}
	if c.Audio.StallTimeout.Duration == 0 {
		c.Audio.StallTimeout.Duration = 20 * time.Second
	}
	if c.YouTube.RequestsPerSecond == 0 {
		c.YouTube.RequestsPerSecond = 2
	}
	if c.YouTube.Burst == 0 {
		c.YouTube.Burst = 4
	}
	if c.YouTube.CacheSize == 0 {
		c.YouTube.CacheSize = 256
	}
	if c.YouTube.ChunkSize == 0 {
		c.YouTube.ChunkSize = 10 * 1024 * 1024
	}
	if c.Cookies.Path == "" {
		c.Cookies.Path = "cookies.json"
	}
	if c.Cookies.RefreshInterval.Duration == 0 {
		c.Cookies.RefreshInterval.Duration = time.Hour
	}
	if c.Cookies.MaxAge.Duration == 0 {
		c.Cookies.MaxAge.Duration = 24 * time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// ResolveCookieSource picks the cookie source when none was configured:
// a blob URL alone selects http, anything else means none.
// Call it after environment overrides are applied.
func (c *Config) ResolveCookieSource() {
	if c.Cookies.Source != "" {
		return
	}
	if c.Cookies.BlobURL != "" {
		c.Cookies.Source = CookieSourceHTTP
		return
	}
	c.Cookies.Source = CookieSourceNone
}

// Validate checks settings that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Cookies.Source {
	case "", CookieSourceNone:
	case CookieSourceHTTP:
		if c.Cookies.BlobURL == "" {
			return fmt.Errorf("cookies.blob_url is required when cookies.source is %q", CookieSourceHTTP)
		}
	case CookieSourceDrive:
		if c.Cookies.DriveFileID == "" {
			return fmt.Errorf("cookies.drive_file_id is required when cookies.source is %q", CookieSourceDrive)
		}
		if c.Google.CredentialsFile == "" {
			return fmt.Errorf("google.credentials_file is required when cookies.source is %q", CookieSourceDrive)
		}
	default:
		return fmt.Errorf("unknown cookies.source %q (expected none, http or drive)", c.Cookies.Source)
	}

	if c.YouTube.RequestsPerSecond < 0 {
		return fmt.Errorf("youtube.requests_per_second must not be negative")
	}
	if c.Cookies.RefreshInterval.Duration <= 0 {
		return fmt.Errorf("cookies.refresh_interval must be positive, got %s", c.Cookies.RefreshInterval)
	}

	durations := []struct {
		key string
		d   Duration
	}{
		{"server.read_header_timeout", c.Server.ReadHeaderTimeout},
		{"server.shutdown_timeout", c.Server.ShutdownTimeout},
		{"audio.stall_timeout", c.Audio.StallTimeout},
		{"youtube.cache_ttl", c.YouTube.CacheTTL},
		{"cookies.max_age", c.Cookies.MaxAge},
	}
	for _, d := range durations {
		if d.d.Duration < 0 {
			return fmt.Errorf("%s must not be negative, got %s", d.key, d.d)
		}
	}

	counts := []struct {
		key string
		n   int64
	}{
		{"youtube.burst", int64(c.YouTube.Burst)},
		{"youtube.cache_size", int64(c.YouTube.CacheSize)},
		{"youtube.chunk_size", c.YouTube.ChunkSize},
	}
	for _, n := range counts {
		if n.n < 0 {
			return fmt.Errorf("%s must not be negative, got %d", n.key, n.n)
		}
	}
	return nil
}

// Load reads and parses the configuration from the specified YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Config{Cookies: CookiesConfig{Required: true}}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	cfg.ApplyDefaults()

	return &cfg, nil
}

// LoadOrDefault loads path, falling back to defaults when the file does not exist
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

// Save writes the configuration to the specified YAML file
func Save(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
