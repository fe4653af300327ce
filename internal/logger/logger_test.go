package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestDiscard(t *testing.T) {
	t.Parallel()
	log := Discard()
	if log == nil {
		t.Fatal("Discard() returned nil")
	}
	log.Error("dropped")
}

func TestJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelInfo)
	log.Info("header found", "section", 0)

	output := buf.String()
	if !strings.Contains(output, `"msg":"header found"`) {
		t.Fatalf("expected message in output, got: %s", output)
	}
	if !strings.Contains(output, `"section":0`) {
		t.Fatalf("expected section attr in JSON output, got: %s", output)
	}
}

func TestJSONLevelFiltering(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := JSON(&buf, slog.LevelWarn)
	log.Info("should not appear")

	if buf.Len() > 0 {
		t.Fatalf("expected no output for info at warn level, got: %s", buf.String())
	}
	log.Warn("should appear")
	if !strings.Contains(buf.String(), "should appear") {
		t.Fatalf("expected warn message in output, got: %s", buf.String())
	}
}

func TestPrettyNoColorForBuffers(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.Info("sources removed", "bytes", 120)

	output := buf.String()
	if output != "INFO  sources removed bytes=120\n" {
		t.Fatalf("unexpected pretty output: %q", output)
	}
}

func TestPrettyColor(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := New(NewPrettyHandler(&buf, &PrettyOptions{Level: slog.LevelInfo, Color: true}))
	log.Warn("careful")

	if !strings.Contains(buf.String(), colorYellow) {
		t.Fatalf("expected yellow warn level, got: %q", buf.String())
	}
}

func TestWithAndGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log := Pretty(&buf, slog.LevelInfo)
	log.With("file", "book.mobi").WithGroup("header").Info("found", "version", 8)

	output := buf.String()
	if !strings.Contains(output, "file=book.mobi") {
		t.Fatalf("expected handler attr, got: %s", output)
	}
	if !strings.Contains(output, "header.version=8") {
		t.Fatalf("expected grouped attr, got: %s", output)
	}
	if strings.Contains(output, "header.file") {
		t.Fatalf("attrs added before a group must not be prefixed, got: %s", output)
	}
}

func TestPrettyNestedGroups(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	h := NewPrettyHandler(&buf, nil)
	slog.New(h.WithGroup("a").WithGroup("b")).Info("nested", "key", "val")

	if !strings.Contains(buf.String(), "a.b.key=val") {
		t.Fatalf("expected 'a.b.key=val' in output, got: %s", buf.String())
	}
}

func TestPrettyEmptyGroup(t *testing.T) {
	t.Parallel()
	h := NewPrettyHandler(&bytes.Buffer{}, nil)
	if h.WithGroup("") != h {
		t.Fatal("WithGroup empty string should return same handler")
	}
}

func TestPrettyQuoting(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	slog.New(NewPrettyHandler(&buf, nil)).Info("test", "title", "War and Peace", "key", "simple")

	output := buf.String()
	if !strings.Contains(output, `title="War and Peace"`) {
		t.Fatalf("expected quoted string with spaces, got: %s", output)
	}
	if !strings.Contains(output, "key=simple") {
		t.Fatalf("expected unquoted simple string, got: %s", output)
	}
}

func TestContextRoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	ctx := WithContext(context.Background(), JSON(&buf, slog.LevelInfo))

	FromContext(ctx).Info("roundtrip test")
	if !strings.Contains(buf.String(), "roundtrip test") {
		t.Fatalf("expected message via context logger, got: %s", buf.String())
	}
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext with no logger returned nil")
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected slog.Level
		wantErr  bool
	}{
		{"debug", slog.LevelDebug, false},
		{"INFO", slog.LevelInfo, false},
		{"warning", slog.LevelWarn, false},
		{"", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{"loud", slog.LevelWarn, true},
	}

	for _, tc := range tests {
		result, err := ParseLevel(tc.input)
		if (err != nil) != tc.wantErr {
			t.Errorf("ParseLevel(%q): err=%v wantErr=%v", tc.input, err, tc.wantErr)
		}
		if result != tc.expected {
			t.Errorf("ParseLevel(%q): expected %v, got %v", tc.input, tc.expected, result)
		}
	}
}

func TestSetup(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	log, err := Setup(&buf, "info", "json")
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	log.Info("configured")
	if !strings.Contains(buf.String(), `"level":"INFO"`) {
		t.Fatalf("expected JSON record, got: %s", buf.String())
	}

	if _, err := Setup(&buf, "info", "xml"); err == nil {
		t.Fatal("expected error for unknown format")
	}
	if _, err := Setup(&buf, "chatty", "text"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
