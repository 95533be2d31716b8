package config

import (
	"flag"
	"os"

	"github.com/FalconEthics/lotus-auth/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-d string   path to the durable state database (default from Config)
//
// Arguments are filtered through flagx.FilterArgs so flags owned by other
// components pass through untouched.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.DatabasePath, "d", cfg.DatabasePath, "path to the state database")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
