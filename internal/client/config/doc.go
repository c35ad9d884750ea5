// Package config loads runtime configuration for the resourcehub CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected via flags: -c or -config.
//  3. Environment variables.
//  4. Command-line flags, which override earlier values.
//
// Supported flags
//
//	-u string   identity service URL
//	-k string   identity service public key
//	-d string   path of the local session database
//
// Environment
//
//	IDENTITY_SERVICE_URL   identity service URL
//	IDENTITY_SERVICE_KEY   identity service public key
//	RESOURCEHUB_DB         path of the local session database
//
// # JSON schema
//
// Durations are timex.Duration, so values can be either strings like "15s"
// or integer nanoseconds:
//
//	{
//	  "service_url": "http://127.0.0.1:50051",
//	  "service_key": "public-key",
//	  "database_path": "resourcehub.db",
//	  "call_timeout": "15s",
//	  "refresh_interval": "10s",
//	  "refresh_lead": "30s"
//	}
//
// A missing URL or key is not an error: the CLI then runs in the
// not-configured state (see (*Config).IsConfigured).
package config
