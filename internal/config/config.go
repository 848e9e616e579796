// Package config loads the aprsmon daemon configuration from a TOML
// file.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all daemon configuration
type Config struct {
	Station  StationConfig  `toml:"station"`
	APRSIS   APRSISConfig   `toml:"aprsis"`
	Database DatabaseConfig `toml:"database"`
}

// StationConfig holds the operator's identity
type StationConfig struct {
	Callsign string `toml:"callsign"`
	Passcode string `toml:"passcode"` // "-1" for a receive-only session
}

// APRSISConfig holds the server connection settings
type APRSISConfig struct {
	Servers []string `toml:"servers"` // host or host:port entries
	Filter  string   `toml:"filter"`  // Server-side filter expression
}

// DatabaseConfig holds the heard-station store settings
type DatabaseConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Load reads and validates the configuration at path.
func Load(path string) (Config, error) {
	conf := Config{
		Station:  StationConfig{Passcode: "-1"},
		Database: DatabaseConfig{Path: "aprsmon.db"},
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return conf, err
	}

	if err := toml.Unmarshal(data, &conf); err != nil {
		return conf, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if conf.Station.Callsign == "" {
		return conf, fmt.Errorf("%s: station.callsign is required", path)
	}
	if conf.Station.Passcode == "" {
		conf.Station.Passcode = "-1"
	}

	return conf, nil
}
