package mobifile

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/samcharles93/mobiless/internal/logger"
	"github.com/samcharles93/mobiless/internal/metrics"
	"github.com/samcharles93/mobiless/internal/srcarchive"
	"github.com/samcharles93/mobiless/pkg/mobi"
)

// Options controls Process.
type Options struct {
	InputPath  string
	OutputPath string

	// SourcesPath, when set, receives an archive of the removed records.
	SourcesPath string

	// DryRun parses and compacts in memory without writing anything.
	DryRun bool

	Logger logger.Logger
}

// Report summarises a Process run.
type Report struct {
	InputLength  int                   `json:"input_length"`
	OutputLength int                   `json:"output_length"`
	BytesRemoved int                   `json:"bytes_removed"`
	Removed      []mobi.RemovedSection `json:"removed"`
	Generations  []int                 `json:"generations"`
	SourcesPath  string                `json:"sources_path,omitempty"`
	Written      bool                  `json:"written"`
}

// Process strips source records from InputPath and writes the result to
// OutputPath. The output is only created after compaction succeeded.
func Process(ctx context.Context, opts Options) (Report, error) {
	log := opts.Logger
	if log == nil {
		log = logger.FromContext(ctx)
	}
	if opts.InputPath == "" || (opts.OutputPath == "" && !opts.DryRun) {
		return Report{}, errors.New("input and output paths are required")
	}

	buf, err := Load(opts.InputPath)
	if err != nil {
		return Report{}, err
	}
	defer func() { _ = buf.Close() }()
	log.Info("file loaded", "path", opts.InputPath, "length", len(buf.Data))

	started := time.Now()
	f, err := mobi.Open(buf.Data, len(buf.Data), mobi.WithLogger(log))
	if err != nil {
		metrics.Observe(metrics.ResultInvalid, 0, 0, time.Since(started).Seconds())
		return Report{}, fmt.Errorf("%s: %w", opts.InputPath, err)
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}

	rep := Report{
		InputLength: f.Len(),
		Generations: f.Headers(),
	}

	var (
		sources []mobi.SourceSection
		title   string
	)
	if opts.SourcesPath != "" && !opts.DryRun {
		if sources, err = f.Sources(); err != nil {
			return Report{}, fmt.Errorf("%s: %w", opts.InputPath, err)
		}
		if h, err := f.Header(0); err == nil {
			title, _ = h.Title()
		}
	}

	log.Info("removing sources")
	res, err := f.RemoveSources()
	if err != nil {
		metrics.Observe(metrics.ResultInvalid, 0, 0, time.Since(started).Seconds())
		return Report{}, fmt.Errorf("%s: %w", opts.InputPath, err)
	}
	result := metrics.ResultStripped
	if res.BytesRemoved == 0 {
		result = metrics.ResultUnchanged
	}
	metrics.Observe(result, len(res.Removed), res.BytesRemoved, time.Since(started).Seconds())

	rep.OutputLength = res.Length
	rep.BytesRemoved = res.BytesRemoved
	rep.Removed = res.Removed

	if opts.DryRun {
		return rep, nil
	}
	if err := ctx.Err(); err != nil {
		return Report{}, err
	}
	if opts.SourcesPath != "" {
		err := WriteFunc(opts.SourcesPath, 0o644, func(w io.Writer) error {
			return srcarchive.Write(w, title, sources)
		})
		if err != nil {
			return Report{}, err
		}
		rep.SourcesPath = opts.SourcesPath
		log.Info("sources archived", "path", opts.SourcesPath, "sections", len(sources))
	}
	if err := WriteFile(opts.OutputPath, f.Bytes(), 0o644); err != nil {
		return Report{}, err
	}
	rep.Written = true
	return rep, nil
}
