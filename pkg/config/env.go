package config

import (
	"fmt"
	"time"
)

// Environment variables that override the config file.
const (
	EnvBaseURL  = "SMARTFLIGHT_BASE_URL"
	EnvUsername = "SMARTFLIGHT_USERNAME"
	EnvPassword = "SMARTFLIGHT_PASSWORD"
	EnvTimeout  = "SMARTFLIGHT_TIMEOUT"
)

// EnvMapping maps environment variables to the string settings they override.
var EnvMapping = map[string]func(*AppConfig) *string{
	EnvBaseURL:  func(c *AppConfig) *string { return &c.Assistant.BaseURL },
	EnvUsername: func(c *AppConfig) *string { return &c.Assistant.Login.Username },
	EnvPassword: func(c *AppConfig) *string { return &c.Assistant.Login.Password },
}

// ApplyEnv overlays non-empty environment values onto cfg. lookup is
// usually os.LookupEnv.
func ApplyEnv(cfg *AppConfig, lookup func(string) (string, bool)) error {
	for key, field := range EnvMapping {
		if val, ok := lookup(key); ok && val != "" {
			*field(cfg) = val
		}
	}

	if val, ok := lookup(EnvTimeout); ok && val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", EnvTimeout, val, err)
		}
		cfg.Assistant.Timeout = d
	}
	return cfg.Validate()
}
