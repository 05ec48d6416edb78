package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. CLIPPER_SERVER_ADDR
const EnvPrefix = "CLIPPER"

// NewEnv returns a viper instance bound to the environment variables that may
// override the YAML file. BLOB_URL and BLOB_READ_WRITE_TOKEN are honoured for
// deployments that already provide them.
func NewEnv() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	_ = v.BindEnv("cookies.blob_url", EnvPrefix+"_COOKIES_BLOB_URL", "BLOB_URL")
	_ = v.BindEnv("cookies.blob_token", EnvPrefix+"_COOKIES_BLOB_TOKEN", "BLOB_READ_WRITE_TOKEN")
	return v
}

// ApplyEnv overrides cfg with every key set in v. Keys whose value cannot be
// parsed are left unchanged and reported together in the returned error.
func ApplyEnv(cfg *Config, v *viper.Viper) error {
	e := &envApplier{v: v}

	e.setString("server.addr", &cfg.Server.Addr)
	e.setDuration("server.read_header_timeout", &cfg.Server.ReadHeaderTimeout)
	e.setDuration("server.shutdown_timeout", &cfg.Server.ShutdownTimeout)
	e.setString("audio.ffmpeg_path", &cfg.Audio.FFmpegPath)
	e.setString("audio.bitrate", &cfg.Audio.Bitrate)
	e.setDuration("audio.stall_timeout", &cfg.Audio.StallTimeout)
	e.setFloat("youtube.requests_per_second", &cfg.YouTube.RequestsPerSecond)
	e.setInt("youtube.burst", &cfg.YouTube.Burst)
	e.setDuration("youtube.cache_ttl", &cfg.YouTube.CacheTTL)
	e.setInt("youtube.cache_size", &cfg.YouTube.CacheSize)
	e.setInt64("youtube.chunk_size", &cfg.YouTube.ChunkSize)
	e.setString("cookies.path", &cfg.Cookies.Path)
	e.setString("cookies.source", &cfg.Cookies.Source)
	e.setString("cookies.blob_url", &cfg.Cookies.BlobURL)
	e.setString("cookies.blob_token", &cfg.Cookies.BlobToken)
	e.setString("cookies.drive_file_id", &cfg.Cookies.DriveFileID)
	e.setDuration("cookies.refresh_interval", &cfg.Cookies.RefreshInterval)
	e.setDuration("cookies.max_age", &cfg.Cookies.MaxAge)
	e.setBool("cookies.required", &cfg.Cookies.Required)
	e.setString("google.credentials_file", &cfg.Google.CredentialsFile)
	e.setString("log.level", &cfg.Log.Level)
	e.setString("log.format", &cfg.Log.Format)

	return errors.Join(e.errs...)
}

// envApplier copies set keys from viper and collects parse failures
type envApplier struct {
	v    *viper.Viper
	errs []error
}

// raw returns the key's value and whether it is set
func (e *envApplier) raw(key string) (string, bool) {
	if !e.v.IsSet(key) {
		return "", false
	}
	return strings.TrimSpace(e.v.GetString(key)), true
}

func (e *envApplier) fail(key, value string, err error) {
	name := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
	e.errs = append(e.errs, fmt.Errorf("invalid %s %q: %w", name, value, err))
}

func (e *envApplier) setString(key string, dst *string) {
	if s, ok := e.raw(key); ok {
		*dst = s
	}
}

func (e *envApplier) setDuration(key string, dst *Duration) {
	s, ok := e.raw(key)
	if !ok {
		return
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		e.fail(key, s, err)
		return
	}
	dst.Duration = d
}

func (e *envApplier) setInt(key string, dst *int) {
	s, ok := e.raw(key)
	if !ok {
		return
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		e.fail(key, s, err)
		return
	}
	*dst = n
}

func (e *envApplier) setInt64(key string, dst *int64) {
	s, ok := e.raw(key)
	if !ok {
		return
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		e.fail(key, s, err)
		return
	}
	*dst = n
}

func (e *envApplier) setFloat(key string, dst *float64) {
	s, ok := e.raw(key)
	if !ok {
		return
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		e.fail(key, s, err)
		return
	}
	*dst = f
}

func (e *envApplier) setBool(key string, dst *bool) {
	s, ok := e.raw(key)
	if !ok {
		return
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		e.fail(key, s, err)
		return
	}
	*dst = b
}
