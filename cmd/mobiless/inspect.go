package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mobiless/internal/mobifile"
	"github.com/samcharles93/mobiless/pkg/mobi"
)

func inspectCmd() *cli.Command {
	var asJSON bool

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show header generations and embedded source records",
		ArgsUsage: "book.mobi",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "print JSON instead of text",
				Destination: &asJSON,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return errors.New("Usage: mobiless inspect book.mobi")
			}
			path := cmd.Args().First()

			buf, err := mobifile.Load(path)
			if err != nil {
				return err
			}
			defer func() { _ = buf.Close() }()

			f, err := mobi.Open(buf.Data, len(buf.Data))
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			info, err := f.Info()
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}

			w := outWriter(cmd)
			if asJSON {
				out, err := json.MarshalIndent(info, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(w, string(out))
				return err
			}
			printInfo(w, path, info)
			return nil
		},
	}
}

func printInfo(w io.Writer, path string, info mobi.Info) {
	_, _ = fmt.Fprintf(w, "file:       %s\n", path)
	_, _ = fmt.Fprintf(w, "length:     %d\n", info.Length)
	_, _ = fmt.Fprintf(w, "sections:   %d\n", info.Sections)
	for _, g := range info.Generations {
		_, _ = fmt.Fprintf(w, "header %d:   v%d enc=%d title=%q", g.Section, g.Version, g.Encoding, g.Title)
		if g.Source.Empty() {
			_, _ = fmt.Fprintln(w, " source=none")
			continue
		}
		_, _ = fmt.Fprintf(w, " source=%d+%d\n", g.Source.Start, g.Source.Count)
	}
	_, _ = fmt.Fprintf(w, "sources:    %v (%d bytes)\n", info.SourceSections, info.SourceBytes)
}
