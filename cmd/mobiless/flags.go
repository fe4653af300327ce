package main

import "github.com/urfave/cli/v3"

var (
	configFile  string
	logLevel    string
	logFormat   string
	verbose     bool
	keepSources string
	dryRun      bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to config.yaml (default: user config dir)",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Aliases:     []string{"v"},
			Usage:       "report progress (shorthand for --log-level=info)",
			Destination: &verbose,
		},
	}
}

func stripFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "keep-sources",
			Usage:       "write the removed source records to this archive",
			Destination: &keepSources,
		},
		&cli.BoolFlag{
			Name:        "dry-run",
			Aliases:     []string{"n"},
			Usage:       "report what would be removed without writing anything",
			Destination: &dryRun,
		},
	}
}
