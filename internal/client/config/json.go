package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/flagx"
	"github.com/dmitrijs2005/resourcehub/internal/timex"
)

// JSONConfig is a DTO used exclusively for JSON unmarshalling. Absent fields
// leave the corresponding Config value unchanged.
type JSONConfig struct {
	ServiceURL      *string         `json:"service_url"`
	ServiceKey      *string         `json:"service_key"`
	DatabasePath    *string         `json:"database_path"`
	CallTimeout     *timex.Duration `json:"call_timeout"`
	RefreshInterval *timex.Duration `json:"refresh_interval"`
	RefreshLead     *timex.Duration `json:"refresh_lead"`
}

// parseJSON overlays cfg with the file named by -c/-config in args, if any.
func parseJSON(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var jc JSONConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&cfg.ServiceURL, jc.ServiceURL)
	setString(&cfg.ServiceKey, jc.ServiceKey)
	setString(&cfg.DatabasePath, jc.DatabasePath)
	setDuration(&cfg.CallTimeout, jc.CallTimeout)
	setDuration(&cfg.RefreshInterval, jc.RefreshInterval)
	setDuration(&cfg.RefreshLead, jc.RefreshLead)
	return nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = time.Duration(v.Duration)
	}
}
