package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/resourcehub/internal/flagx"
)

// parseFlags populates selected Config fields from args.
//
//	-u string   identity service URL
//	-k string   identity service public key
//	-d string   local database path
//
// Unknown flags are filtered out with flagx.FilterArgs first.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-u", "-k", "-d"})

	fs := flag.NewFlagSet("resourcehub", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServiceURL, "u", cfg.ServiceURL, "identity service URL")
	fs.StringVar(&cfg.ServiceKey, "k", cfg.ServiceKey, "identity service public key")
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "local database path")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
