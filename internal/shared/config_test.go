package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./nowplaying.db" {
			t.Errorf("expected database path ./nowplaying.db, got %s", config.Database.Path)
		}

		if config.Server.Port != 5000 {
			t.Errorf("expected server port 5000, got %d", config.Server.Port)
		}

		if config.Search.URL != "https://www.google.com/search" {
			t.Errorf("expected google search URL, got %s", config.Search.URL)
		}

		if config.Search.PlaceholderImage != "https://cdn.browshot.com/static/images/not-found.png" {
			t.Errorf("unexpected placeholder image %s", config.Search.PlaceholderImage)
		}

		if config.Credentials.Spotify.ClientID != "your_spotify_client_id" {
			t.Errorf("expected spotify client_id your_spotify_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if err := config.Validate(); err != nil {
			t.Errorf("default config should validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		if _, err := os.Stat(configPath); err != nil {
			t.Fatalf("config file should exist: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[server]
host = "0.0.0.0"
port = 8080

[credentials.spotify]
client_id = "test_client_id"
client_secret = "test_secret"
redirect_uri = "http://localhost:8080/callback"

[http]
timeout_seconds = 3
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Addr() != "0.0.0.0:8080" {
			t.Errorf("expected addr 0.0.0.0:8080, got %s", config.Addr())
		}

		if config.Credentials.Spotify.ClientID != "test_client_id" {
			t.Errorf("expected spotify client_id test_client_id, got %s", config.Credentials.Spotify.ClientID)
		}

		if config.Search.Concurrency != 4 {
			t.Errorf("expected search concurrency to keep default 4, got %d", config.Search.Concurrency)
		}

		if config.HTTPTimeout() != 3*time.Second {
			t.Errorf("expected timeout 3s, got %v", config.HTTPTimeout())
		}

		if err := config.Credentials.Spotify.Validate(); err != nil {
			t.Errorf("expected credentials to validate, got %v", err)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tc := []struct {
			name   string
			mutate func(*Config)
		}{
			{"bad port", func(c *Config) { c.Server.Port = 0 }},
			{"bad search url", func(c *Config) { c.Search.URL = "not a url" }},
			{"zero concurrency", func(c *Config) { c.Search.Concurrency = 0 }},
			{"unknown log level", func(c *Config) { c.Log.Level = "loud" }},
			{"missing token url", func(c *Config) { c.Spotify.TokenURL = "" }},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				config := DefaultConfig()
				tt.mutate(config)
				err := config.Validate()
				if !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})

	t.Run("Credentials Validate", func(t *testing.T) {
		tc := []struct {
			name  string
			creds SpotifyConfig
		}{
			{"empty", SpotifyConfig{}},
			{"placeholder", DefaultConfig().Credentials.Spotify},
			{"missing secret", SpotifyConfig{ClientID: "id", RedirectURI: "http://127.0.0.1:5000/callback"}},
			{"bad redirect", SpotifyConfig{ClientID: "id", ClientSecret: "secret", RedirectURI: "callback"}},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if err := tt.creds.Validate(); !errors.Is(err, ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials, got %v", err)
				}
			})
		}
	})
}
