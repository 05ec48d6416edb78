package config

import (
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestApplyEnv(t *testing.T) {
	t.Setenv("CLIPPER_SERVER_ADDR", ":7000")
	t.Setenv("CLIPPER_AUDIO_STALL_TIMEOUT", "3s")
	t.Setenv("CLIPPER_COOKIES_SOURCE", "http")
	t.Setenv("CLIPPER_COOKIES_REQUIRED", "false")
	t.Setenv("BLOB_URL", "https://blob.example.com/cookies.json")
	t.Setenv("BLOB_READ_WRITE_TOKEN", "secret")

	cfg := Defaults()
	if err := ApplyEnv(cfg, NewEnv()); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}

	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
	}
	if cfg.Audio.StallTimeout.Duration != 3*time.Second {
		t.Errorf("Audio.StallTimeout = %v, want 3s", cfg.Audio.StallTimeout)
	}
	if cfg.Cookies.Source != CookieSourceHTTP {
		t.Errorf("Cookies.Source = %q, want http", cfg.Cookies.Source)
	}
	if cfg.Cookies.Required {
		t.Error("Cookies.Required = true, want false")
	}
	if cfg.Cookies.BlobURL != "https://blob.example.com/cookies.json" {
		t.Errorf("Cookies.BlobURL = %q", cfg.Cookies.BlobURL)
	}
	if cfg.Cookies.BlobToken != "secret" {
		t.Errorf("Cookies.BlobToken = %q", cfg.Cookies.BlobToken)
	}
	// untouched keys keep their value
	if cfg.Audio.Bitrate != "192k" {
		t.Errorf("Audio.Bitrate = %q, want 192k", cfg.Audio.Bitrate)
	}
}

func TestApplyEnv_AllTunables(t *testing.T) {
	t.Setenv("CLIPPER_SERVER_READ_HEADER_TIMEOUT", "2s")
	t.Setenv("CLIPPER_YOUTUBE_REQUESTS_PER_SECOND", "0.5")
	t.Setenv("CLIPPER_YOUTUBE_BURST", "9")
	t.Setenv("CLIPPER_YOUTUBE_CACHE_SIZE", "16")
	t.Setenv("CLIPPER_YOUTUBE_CHUNK_SIZE", "1048576")
	t.Setenv("CLIPPER_COOKIES_REFRESH_INTERVAL", "15m")
	t.Setenv("CLIPPER_COOKIES_MAX_AGE", "6h")

	cfg := Defaults()
	if err := ApplyEnv(cfg, NewEnv()); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}

	if cfg.Server.ReadHeaderTimeout.Duration != 2*time.Second {
		t.Errorf("Server.ReadHeaderTimeout = %v, want 2s", cfg.Server.ReadHeaderTimeout)
	}
	if cfg.YouTube.RequestsPerSecond != 0.5 {
		t.Errorf("YouTube.RequestsPerSecond = %v, want 0.5", cfg.YouTube.RequestsPerSecond)
	}
	if cfg.YouTube.Burst != 9 {
		t.Errorf("YouTube.Burst = %d, want 9", cfg.YouTube.Burst)
	}
	if cfg.YouTube.CacheSize != 16 {
		t.Errorf("YouTube.CacheSize = %d, want 16", cfg.YouTube.CacheSize)
	}
	if cfg.YouTube.ChunkSize != 1<<20 {
		t.Errorf("YouTube.ChunkSize = %d, want 1MiB", cfg.YouTube.ChunkSize)
	}
	if cfg.Cookies.RefreshInterval.Duration != 15*time.Minute {
		t.Errorf("Cookies.RefreshInterval = %v, want 15m", cfg.Cookies.RefreshInterval)
	}
	if cfg.Cookies.MaxAge.Duration != 6*time.Hour {
		t.Errorf("Cookies.MaxAge = %v, want 6h", cfg.Cookies.MaxAge)
	}
}

func TestApplyEnv_MalformedValues(t *testing.T) {
	t.Setenv("CLIPPER_AUDIO_STALL_TIMEOUT", "soon")
	t.Setenv("CLIPPER_YOUTUBE_BURST", "many")
	t.Setenv("CLIPPER_SERVER_ADDR", ":7000")

	cfg := Defaults()
	err := ApplyEnv(cfg, NewEnv())
	if err == nil {
		t.Fatal("ApplyEnv() expected error but got none")
	}

	for _, want := range []string{"CLIPPER_AUDIO_STALL_TIMEOUT", "CLIPPER_YOUTUBE_BURST"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %s", err.Error(), want)
		}
	}
	if cfg.Audio.StallTimeout.Duration != 20*time.Second {
		t.Errorf("Audio.StallTimeout = %v, want default kept", cfg.Audio.StallTimeout)
	}
	// well-formed keys still apply
	if cfg.Server.Addr != ":7000" {
		t.Errorf("Server.Addr = %q, want :7000", cfg.Server.Addr)
	}
}

func TestApplyEnv_BlobURLSelectsHTTPSource(t *testing.T) {
	t.Setenv("BLOB_URL", "https://blob.example.com/cookies.json")

	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() unexpected error: %v", err)
	}
	if err := ApplyEnv(cfg, NewEnv()); err != nil {
		t.Fatalf("ApplyEnv() unexpected error: %v", err)
	}
	cfg.ResolveCookieSource()

	if cfg.Cookies.Source != CookieSourceHTTP {
		t.Errorf("Cookies.Source = %q, want http", cfg.Cookies.Source)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
}
