package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Cache       CacheConfig       `toml:"cache"`
	Generation  GenerationConfig  `toml:"generation"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	Suno SunoConfig `toml:"suno"`
}

// SunoConfig contains credentials for the Suno generation API proxy.
type SunoConfig struct {
	APIKey  string `toml:"api_key"`
	BaseURL string `toml:"base_url"`
}

// CacheConfig contains local track cache settings.
type CacheConfig struct {
	Path         string `toml:"path"`           // SQLite database path (":memory:" allowed)
	MaxTracks    int    `toml:"max_tracks"`     // Most-recent-N retention bound
	TTLHours     int    `toml:"ttl_hours"`      // Entry expiry in hours
	MaxOpenConns int    `toml:"max_open_conns"` //
	MaxIdleConns int    `toml:"max_idle_conns"` //
}

// GenerationConfig contains lifecycle manager settings.
type GenerationConfig struct {
	Model           string `toml:"model"`             // Default generation backend variant
	PollIntervalMS  int    `toml:"poll_interval_ms"`  // Delay between poll cycles
	MaxPollAttempts int    `toml:"max_poll_attempts"` // Attempt budget before timing out
	AutoPoll        bool   `toml:"auto_poll"`         // Schedule the first poll on submit
	RequestGapMS    int    `toml:"request_gap_ms"`    // Minimum delay between outbound API calls
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	return &config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
