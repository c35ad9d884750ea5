package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/resourcehub/internal/flagx"
	"github.com/dmitrijs2005/resourcehub/internal/timex"
)

// JSONConfig is a DTO used only for reading JSON configuration files.
// Durations use timex.Duration, which accepts "1s" strings and integer
// nanoseconds. Absent fields leave the Config value unchanged.
type JSONConfig struct {
	EndpointAddrGRPC                  *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP                  *string         `json:"endpoint_addr_http"`
	DatabaseDSN                       *string         `json:"database_dsn"`
	SecretKey                         *string         `json:"secret_key"`
	APIKey                            *string         `json:"api_key"`
	RedisAddr                         *string         `json:"redis_addr"`
	AccessTokenValidityDuration       *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration      *timex.Duration `json:"refresh_token_validity_duration"`
	ProvisioningTokenValidityDuration *timex.Duration `json:"provisioning_token_validity_duration"`
	LockoutMaxAttempts                *int            `json:"lockout_max_attempts"`
	LockoutWindow                     *timex.Duration `json:"lockout_window"`
	LockoutDuration                   *timex.Duration `json:"lockout_duration"`
	S3RootUser                        *string         `json:"s3_root_user"`
	S3RootPassword                    *string         `json:"s3_root_password"`
	S3Bucket                          *string         `json:"s3_bucket"`
	S3Region                          *string         `json:"s3_region"`
	S3BaseEndpoint                    *string         `json:"s3_base_endpoint"`
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

	var c JSONConfig
	if err := json.Unmarshal(data, &c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setValue(&cfg.EndpointAddrGRPC, c.EndpointAddrGRPC)
	setValue(&cfg.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setValue(&cfg.DatabaseDSN, c.DatabaseDSN)
	setValue(&cfg.SecretKey, c.SecretKey)
	setValue(&cfg.APIKey, c.APIKey)
	setValue(&cfg.RedisAddr, c.RedisAddr)
	setDuration(&cfg.AccessTokenValidityDuration, c.AccessTokenValidityDuration)
	setDuration(&cfg.RefreshTokenValidityDuration, c.RefreshTokenValidityDuration)
	setDuration(&cfg.ProvisioningTokenValidityDuration, c.ProvisioningTokenValidityDuration)
	setValue(&cfg.LockoutMaxAttempts, c.LockoutMaxAttempts)
	setDuration(&cfg.LockoutWindow, c.LockoutWindow)
	setDuration(&cfg.LockoutDuration, c.LockoutDuration)
	setValue(&cfg.S3RootUser, c.S3RootUser)
	setValue(&cfg.S3RootPassword, c.S3RootPassword)
	setValue(&cfg.S3Bucket, c.S3Bucket)
	setValue(&cfg.S3Region, c.S3Region)
	setValue(&cfg.S3BaseEndpoint, c.S3BaseEndpoint)
	return nil
}

func setValue[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *timex.Duration) {
	if v != nil {
		*dst = time.Duration(v.Duration)
	}
}
