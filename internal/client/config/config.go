package config

import (
	"strings"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/flagx"
	"github.com/dmitrijs2005/resourcehub/internal/timeouts"
)

// Config holds runtime settings for the resourcehub CLI.
type Config struct {
	ServiceURL      string        `env:"IDENTITY_SERVICE_URL"`
	ServiceKey      string        `env:"IDENTITY_SERVICE_KEY"`
	DatabasePath    string        `env:"RESOURCEHUB_DB"`
	CallTimeout     time.Duration `env:"RESOURCEHUB_CALL_TIMEOUT"`
	RefreshInterval time.Duration `env:"RESOURCEHUB_REFRESH_INTERVAL"`
	RefreshLead     time.Duration `env:"RESOURCEHUB_REFRESH_LEAD"`
}

// LoadDefaults populates c with sensible defaults. The service URL and key
// have no default.
func (c *Config) LoadDefaults() {
	c.DatabasePath = "resourcehub.db"
	c.CallTimeout = timeouts.Call
	c.RefreshInterval = timeouts.RefreshCheck
	c.RefreshLead = timeouts.RefreshLead
}

// IsConfigured reports whether both the service URL and key are present.
func (c *Config) IsConfigured() bool {
	return c.ServiceURL != "" && c.ServiceKey != ""
}

// LoadConfig builds a Config from defaults, the JSON file, the environment
// and args (without the program name), in that order.
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJSON(cfg, args); err != nil {
		return nil, err
	}
	if err := flagx.ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}

	cfg.ServiceURL = strings.TrimSpace(cfg.ServiceURL)
	cfg.ServiceKey = strings.TrimSpace(cfg.ServiceKey)
	return cfg, nil
}
