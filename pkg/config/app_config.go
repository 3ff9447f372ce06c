package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL  = "http://localhost:8000"
	DefaultTimeout  = 60 * time.Second
	DefaultStubPort = 8000
)

// ConfigError reports a config file or environment overlay that cannot be used.
type ConfigError struct {
	Source string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %v", e.Source, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

type AppConfig struct {
	Assistant AssistantConfig `yaml:"assistant"`
	UI        UIConfig        `yaml:"ui"`
	Stub      StubConfig      `yaml:"stub"`
}

type AssistantConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
	Login   LoginConfig   `yaml:"login"`
}

// LoginConfig controls the login gate. Username and password, when set,
// pre-fill the form; both set together skip it.
type LoginConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
}

type UIConfig struct {
	OpenLinks      bool   `yaml:"open_links"`
	HumanAssistant bool   `yaml:"human_assistant"`
	DebugLog       string `yaml:"debug_log,omitempty"`
}

type StubConfig struct {
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Default returns the configuration used when no file exists.
func Default() *AppConfig {
	return &AppConfig{
		Assistant: AssistantConfig{
			BaseURL: DefaultBaseURL,
			Timeout: DefaultTimeout,
			Login:   LoginConfig{Enabled: true},
		},
		UI: UIConfig{
			OpenLinks:      true,
			HumanAssistant: true,
		},
		Stub: StubConfig{
			Port:     DefaultStubPort,
			Username: "demo",
			Password: "demo",
		},
	}
}

func GetConfigDir() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "smartflight"), nil
}

func GetConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LoadAppConfig reads the user config file and applies the environment overlay.
func LoadAppConfig() (*AppConfig, error) {
	path, err := GetConfigPath()
	if err != nil {
		return nil, err
	}
	cfg, err := LoadAppConfigFrom(path)
	if err != nil {
		return nil, err
	}
	if err := ApplyEnv(cfg, os.LookupEnv); err != nil {
		return nil, &ConfigError{Source: "environment", Err: err}
	}
	return cfg, nil
}

// LoadAppConfigFrom reads path on top of the defaults. A missing file is not an error.
func LoadAppConfigFrom(path string) (*AppConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, &ConfigError{Source: path, Err: fmt.Errorf("failed to parse: %w", err)}
	}
	if err := cfg.Validate(); err != nil {
		return nil, &ConfigError{Source: path, Err: err}
	}
	return cfg, nil
}

// Validate rejects values the client cannot run with.
func (c *AppConfig) Validate() error {
	if c.Assistant.BaseURL == "" {
		return fmt.Errorf("assistant.base_url is required")
	}
	if c.Assistant.Timeout < 0 {
		return fmt.Errorf("assistant.timeout must not be negative")
	}
	if c.Stub.Port < 0 || c.Stub.Port > 65535 {
		return fmt.Errorf("stub.port %d is out of range", c.Stub.Port)
	}
	return nil
}

func SaveAppConfig(cfg *AppConfig) error {
	path, err := GetConfigPath()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}

	// may hold a password
	return os.WriteFile(path, data, 0600)
}
