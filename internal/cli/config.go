package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Output formats
const (
	OutputText = "text"
	OutputJSON = "json"
)

// Config holds CLI configuration. Values are layered: defaults, then the
// config file, then BGTRACK_* environment variables, then flags.
type Config struct {
	ServerURL string        `yaml:"server"`
	Output    string        `yaml:"output"`
	Verbose   bool          `yaml:"verbose"`
	Timeout   time.Duration `yaml:"timeout"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: "http://localhost:5000/api",
		Output:    OutputText,
		Timeout:   30 * time.Second,
	}
}

// LoadConfig applies the config file at path and then the environment on
// top of the defaults. A missing file is not an error.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	cfg.ServerURL = getEnvOrDefault("BGTRACK_SERVER", cfg.ServerURL)
	cfg.Output = getEnvOrDefault("BGTRACK_OUTPUT", cfg.Output)
	if raw := os.Getenv("BGTRACK_TIMEOUT"); raw != "" {
		timeout, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid BGTRACK_TIMEOUT %q: %w", raw, err)
		}
		cfg.Timeout = timeout
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Fields absent from the file keep their current values
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate checks the resolved configuration
func (c *Config) Validate() error {
	switch c.Output {
	case OutputText, OutputJSON:
	default:
		return fmt.Errorf("invalid output format %q: must be text or json", c.Output)
	}
	if c.ServerURL == "" {
		return errors.New("server URL is required")
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("invalid timeout %s", c.Timeout)
	}
	return nil
}

// DefaultConfigFile is ~/.bgtrack/config.yaml
func DefaultConfigFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".bgtrack", "config.yaml")
	}
	return filepath.Join(home, ".bgtrack", "config.yaml")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
