package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/mobiless/internal/logger"
	"github.com/samcharles93/mobiless/internal/mobifile"
)

var errUsage = errors.New("Usage: mobiless source.mobi output.mobi")

func stripAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.Args().Len() != 2 {
		return errUsage
	}
	in, out := cmd.Args().Get(0), cmd.Args().Get(1)
	log := logger.FromContext(ctx)

	rep, err := mobifile.Process(ctx, mobifile.Options{
		InputPath:   in,
		OutputPath:  out,
		SourcesPath: sourcesPath(in),
		DryRun:      dryRun,
		Logger:      log,
	})
	if err != nil {
		return err
	}

	if dryRun {
		w := outWriter(cmd)
		_, _ = fmt.Fprintf(w, "%s: %d bytes -> %d bytes (%d removed)\n",
			in, rep.InputLength, rep.OutputLength, rep.BytesRemoved)
		for _, r := range rep.Removed {
			_, _ = fmt.Fprintf(w, "  section %d: %d bytes\n", r.Index, r.Length)
		}
		return nil
	}
	log.Info("written", "path", out, "length", rep.OutputLength, "bytes_removed", rep.BytesRemoved)
	return nil
}

// sourcesPath resolves where removed records are archived: --keep-sources
// wins, then sources_dir from the config file, otherwise nowhere.
func sourcesPath(input string) string {
	if keepSources != "" {
		return keepSources
	}
	if cfg.SourcesDir == "" {
		return ""
	}
	base := filepath.Base(input)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cfg.SourcesDir, base+".src.zst")
}
