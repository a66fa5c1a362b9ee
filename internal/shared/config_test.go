package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Cache.Path != "./muse.db" {
			t.Errorf("expected cache path ./muse.db, got %s", config.Cache.Path)
		}

		if config.Cache.MaxTracks != 50 {
			t.Errorf("expected max_tracks 50, got %d", config.Cache.MaxTracks)
		}

		if config.Cache.TTLHours != 24 {
			t.Errorf("expected ttl_hours 24, got %d", config.Cache.TTLHours)
		}

		if config.Generation.PollIntervalMS != 5000 {
			t.Errorf("expected poll_interval_ms 5000, got %d", config.Generation.PollIntervalMS)
		}

		if config.Generation.MaxPollAttempts != 60 {
			t.Errorf("expected max_poll_attempts 60, got %d", config.Generation.MaxPollAttempts)
		}

		if !config.Generation.AutoPoll {
			t.Error("expected auto_poll to default to true")
		}

		if config.Credentials.Suno.APIKey != "" {
			t.Errorf("expected empty api_key by default, got %s", config.Credentials.Suno.APIKey)
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

		defaultConfig := DefaultConfig()
		if config.Cache.Path != defaultConfig.Cache.Path {
			t.Errorf("created config cache path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		testConfig := `[credentials.suno]
api_key = "test_api_key"
base_url = "http://localhost:9090"

[cache]
path = "/custom/path.db"
max_tracks = 10
ttl_hours = 48
max_open_conns = 20
max_idle_conns = 10

[generation]
model = "chirp-v4"
poll_interval_ms = 250
max_poll_attempts = 5
auto_poll = false
request_gap_ms = 100
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.Cache.Path != "/custom/path.db" {
			t.Errorf("expected cache path /custom/path.db, got %s", config.Cache.Path)
		}

		if config.Cache.MaxTracks != 10 {
			t.Errorf("expected max_tracks 10, got %d", config.Cache.MaxTracks)
		}

		if config.Generation.Model != "chirp-v4" {
			t.Errorf("expected model chirp-v4, got %s", config.Generation.Model)
		}

		if config.Generation.AutoPoll {
			t.Error("expected auto_poll false")
		}

		if config.Credentials.Suno.APIKey != "test_api_key" {
			t.Errorf("expected api_key test_api_key, got %s", config.Credentials.Suno.APIKey)
		}
	})

	t.Run("LoadConfig missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})

	t.Run("LoadConfig malformed file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[credentials\napi_key ="), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		_, err := LoadConfig(configPath)
		if !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("LoadConfig() error = %v, want ErrInvalidConfig", err)
		}
	})
}
