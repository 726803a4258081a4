// Package config loads server configuration from flags and environment
// variables. Environment variables provide defaults; flags override them.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/back2u/back2u/internal/model"
)

// Config holds server configuration.
type Config struct {
	Addr          string
	DBPath        string
	UploadDir     string
	LogPath       string
	AllowedOrigin string
	Environment   string

	// SecurityCodes maps a pre-shared registration code to the campus a
	// security account registered with it belongs to.
	SecurityCodes map[string]string
}

// Development reports whether error responses may carry underlying messages.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// defaultSecurityCodes is the built-in code→campus map, used when no codes
// file is configured.
var defaultSecurityCodes = map[string]string{
	"security2024SECURE": "Main",
	"security2024WATER":  "Waterloo",
	"security2024CAMB":   "Cambridge",
	"security2024DOON":   "Doon",
}

// Env returns the environment variable value, or fallback if unset.
func Env(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// LoadSecurityCodes reads a code→campus JSON object from path. An empty path
// returns a copy of the built-in defaults. Every campus must be a member of
// the known campus set.
func LoadSecurityCodes(path string) (map[string]string, error) {
	if path == "" {
		codes := make(map[string]string, len(defaultSecurityCodes))
		for code, campus := range defaultSecurityCodes {
			codes[code] = campus
		}
		return codes, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading security codes file: %w", err)
	}

	var codes map[string]string
	if err := json.Unmarshal(data, &codes); err != nil {
		return nil, fmt.Errorf("parsing security codes file: %w", err)
	}
	if len(codes) == 0 {
		return nil, fmt.Errorf("security codes file %s defines no codes", path)
	}
	for code, campus := range codes {
		if !model.ValidCampus(campus) {
			return nil, fmt.Errorf("security code %q maps to unknown campus %q", code, campus)
		}
	}

	return codes, nil
}
