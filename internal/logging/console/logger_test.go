package console

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/goliatone/go-annocat/internal/logging"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func TestConsoleLoggerWritesSortedFields(t *testing.T) {
	buf := &strings.Builder{}
	provider := NewProvider(Options{Writer: buf, TimeFunc: fixedClock})

	log := provider.GetLogger("catalog")
	log.Info("entry stored", "name", "@inject", "category", "di")

	line := strings.TrimSuffix(buf.String(), "\n")
	want := "2025-03-14T09:26:53Z INFO entry stored category=di logger=catalog name=@inject"
	if line != want {
		t.Fatalf("unexpected log line\n got: %s\nwant: %s", line, want)
	}
}

func TestConsoleLoggerMinLevelFiltersEntries(t *testing.T) {
	buf := &strings.Builder{}
	min := LevelWarn
	provider := NewProvider(Options{Writer: buf, TimeFunc: fixedClock, MinLevel: &min})

	log := provider.GetLogger("markdown")
	log.Debug("skipped")
	log.Info("also skipped")
	log.Warn("kept")

	out := buf.String()
	if strings.Contains(out, "skipped") {
		t.Fatalf("expected entries below WARN to be dropped, got %q", out)
	}
	if !strings.Contains(out, "kept") {
		t.Fatalf("expected WARN entry to be written, got %q", out)
	}
}

func TestConsoleLoggerMergesContextFields(t *testing.T) {
	buf := &strings.Builder{}
	provider := NewProvider(Options{Writer: buf, TimeFunc: fixedClock})

	ctx := logging.ContextWithFields(context.Background(), map[string]any{
		"note": "docs/annotations.md",
	})

	provider.GetLogger("lint").WithContext(ctx).Info("rule evaluated")

	out := buf.String()
	if !strings.Contains(out, "note=docs/annotations.md") {
		t.Fatalf("expected context fields in output, got %q", out)
	}
}

func TestConsoleLoggerQuotesValuesWithSpaces(t *testing.T) {
	buf := &strings.Builder{}
	provider := NewProvider(Options{Writer: buf, TimeFunc: fixedClock})

	provider.GetLogger("generator").Info("page rendered", "title", "Dependency Injection")

	out := buf.String()
	if !strings.Contains(out, `title="Dependency Injection"`) {
		t.Fatalf("expected quoted value, got %q", out)
	}
}

func TestConsoleLoggerDanglingArgBecomesPositionalField(t *testing.T) {
	buf := &strings.Builder{}
	provider := NewProvider(Options{Writer: buf, TimeFunc: fixedClock})

	provider.GetLogger("watch").Info("event", "orphan")

	out := buf.String()
	if !strings.Contains(out, "field_0=orphan") {
		t.Fatalf("expected positional field for dangling argument, got %q", out)
	}
}
