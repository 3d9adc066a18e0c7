package main

import (
	"fmt"
	"os"

	flags "github.com/jessevdk/go-flags"
)

const defaultMetricsPort = 9443

type config struct {
	DebugLevel  string `long:"debuglevel" description:"logging level for all subsystems {trace, debug, info, warn, error, critical}"`
	MetricsPort int    `long:"metricsport" description:"port batch-verify serves /metrics on"`
	Workers     int    `long:"workers" description:"batch-verify worker pool size; 0 picks GOMAXPROCS"`
}

func defaultConfig() config {
	return config{
		DebugLevel:  "info",
		MetricsPort: defaultMetricsPort,
	}
}

// loadConfig parses the global --debuglevel/--metricsport/--workers flags
// out of the process arguments and sets up logging, mirroring lnd.go's
// own loadConfig; it leaves the subcommand and its own arguments
// (verify/digest/batch-verify and everything after) untouched in
// remainingArgs for urfave/cli to parse afterward, since this binary
// combines a daemon-style global config with an lncli-style subcommand
// dispatcher.
func loadConfig() (cfg *config, remainingArgs []string, err error) {
	c := defaultConfig()

	parser := flags.NewParser(&c, flags.Default|flags.IgnoreUnknown)
	remaining, err := parser.Parse()
	if err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		return nil, nil, err
	}

	if err := setLogLevels(c.DebugLevel); err != nil {
		return nil, nil, fmt.Errorf("invalid debuglevel %q: %w", c.DebugLevel, err)
	}

	return &c, remaining, nil
}
