package mobifile

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/samcharles93/mobiless/internal/logger"
	"github.com/samcharles93/mobiless/internal/mobitest"
	"github.com/samcharles93/mobiless/internal/srcarchive"
	"github.com/samcharles93/mobiless/pkg/mobi"
)

func writeInput(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "book.mobi")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write input: %v", err)
	}
	return path
}

func TestLoadIsCopyOnWrite(t *testing.T) {
	t.Parallel()

	orig := []byte("BOOKMOBI payload that must not change on disk")
	path := writeInput(t, orig)

	buf, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	copy(buf.Data, "XXXXXXXX")
	if err := buf.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	onDisk, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if !bytes.Equal(onDisk, orig) {
		t.Fatalf("input file modified: %q", onDisk)
	}
}

func TestLoadEmptyAndMissing(t *testing.T) {
	t.Parallel()

	buf, err := Load(writeInput(t, nil))
	if err != nil {
		t.Fatalf("load empty: %v", err)
	}
	if len(buf.Data) != 0 {
		t.Fatalf("expected empty buffer, got %d bytes", len(buf.Data))
	}
	_ = buf.Close()

	if _, err := Load(filepath.Join(t.TempDir(), "missing.mobi")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestLoadReaderAt(t *testing.T) {
	t.Parallel()

	data := mobitest.Book("Reader", mobitest.Filler('s', 10))
	buf, err := LoadReaderAt(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !bytes.Equal(buf.Data, data) {
		t.Fatalf("content mismatch")
	}
	if _, err := LoadReaderAt(bytes.NewReader(data), -1); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("expected ErrTooLarge, got %v", err)
	}
}

func TestWriteFuncLeavesNothingOnError(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	out := filepath.Join(dir, "out.mobi")
	err := WriteFunc(out, 0o644, func(w io.Writer) error {
		_, _ = w.Write([]byte("partial"))
		return errors.New("boom")
	})
	if err == nil || !strings.Contains(err.Error(), "boom") {
		t.Fatalf("expected boom, got %v", err)
	}
	ents, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("readdir: %v", err)
	}
	if len(ents) != 0 {
		t.Fatalf("expected empty dir, found %d entries", len(ents))
	}
}

func TestProcess(t *testing.T) {
	t.Parallel()

	source := mobitest.Filler('s', 300)
	data := mobitest.Book("Process", source)
	in := writeInput(t, data)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mobi")
	srcs := filepath.Join(dir, "book.src.zst")

	rep, err := Process(context.Background(), Options{
		InputPath:   in,
		OutputPath:  out,
		SourcesPath: srcs,
		Logger:      logger.Discard(),
	})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if rep.BytesRemoved != 300 || rep.OutputLength != len(data)-300 || !rep.Written {
		t.Fatalf("unexpected report: %+v", rep)
	}

	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if len(got) != len(data)-300 {
		t.Fatalf("output length: got %d want %d", len(got), len(data)-300)
	}
	f, err := mobi.Open(got, len(got))
	if err != nil {
		t.Fatalf("reopen output: %v", err)
	}
	info, err := f.Info()
	if err != nil {
		t.Fatalf("info: %v", err)
	}
	if len(info.SourceSections) != 0 {
		t.Fatalf("output still names sources: %v", info.SourceSections)
	}

	af, err := os.Open(srcs)
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	defer func() { _ = af.Close() }()
	a, err := srcarchive.Read(af, 0)
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if a.Manifest.Title != "Process" || len(a.Sections) != 1 || !bytes.Equal(a.Sections[0].Data, source) {
		t.Fatalf("unexpected archive: %+v", a.Manifest)
	}
}

func TestProcessDryRun(t *testing.T) {
	t.Parallel()

	in := writeInput(t, mobitest.Book("Dry", mobitest.Filler('s', 50)))
	out := filepath.Join(t.TempDir(), "out.mobi")

	rep, err := Process(context.Background(), Options{InputPath: in, OutputPath: out, DryRun: true, Logger: logger.Discard()})
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if rep.Written || rep.BytesRemoved != 50 {
		t.Fatalf("unexpected report: %+v", rep)
	}
	if _, err := os.Stat(out); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("dry run created output: %v", err)
	}
}

func TestProcessInvalidInputWritesNothing(t *testing.T) {
	t.Parallel()

	data := mobitest.Book("Bad", mobitest.Filler('s', 50))
	copy(data[0x3C:], "TEXtREAd")
	in := writeInput(t, data)
	dir := t.TempDir()
	out := filepath.Join(dir, "out.mobi")

	_, err := Process(context.Background(), Options{
		InputPath:   in,
		OutputPath:  out,
		SourcesPath: filepath.Join(dir, "src.zst"),
		Logger:      logger.Discard(),
	})
	if !errors.Is(err, mobi.ErrInvalidMagic) {
		t.Fatalf("expected ErrInvalidMagic, got %v", err)
	}
	ents, _ := os.ReadDir(dir)
	if len(ents) != 0 {
		t.Fatalf("expected no files, found %d", len(ents))
	}
}

func TestProcessInPlace(t *testing.T) {
	t.Parallel()

	data := mobitest.Book("Same", mobitest.Filler('s', 80))
	in := writeInput(t, data)

	if _, err := Process(context.Background(), Options{InputPath: in, OutputPath: in, Logger: logger.Discard()}); err != nil {
		t.Fatalf("process: %v", err)
	}
	got, err := os.ReadFile(in)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(data)-80 {
		t.Fatalf("length: got %d want %d", len(got), len(data)-80)
	}
}

func TestProcessCancelled(t *testing.T) {
	t.Parallel()

	in := writeInput(t, mobitest.Book("Cancel", mobitest.Filler('s', 10)))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Process(ctx, Options{InputPath: in, OutputPath: in + ".out", Logger: logger.Discard()})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
