package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	if err := newApp().Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	return &cli.Command{
		Name:      "mobiless",
		Usage:     "Remove embedded source records from MOBI books",
		ArgsUsage: "source.mobi output.mobi",
		Flags:     append(globalFlags(), stripFlags()...),
		Before:    setup,
		Action:    stripAction,
		Commands: []*cli.Command{
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}
}
