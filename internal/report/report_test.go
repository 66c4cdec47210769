package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wptgen/wptgen/internal/logging"
)

func sampleRecords() []logging.Record {
	return []logging.Record{
		{
			Timestamp: time.Unix(0, 0),
			RunID:     "run-1",
			Scenario:  "referrer-policy",
			TestCase:  "req.meta.no-referrer",
			Contexts: []logging.ContextRecord{
				{SourceContextType: "top", Resolved: 1},
				{SourceContextType: "worker-classic", Resolved: 1, Skipped: map[string]int{"unsupported-type": 1}},
			},
		},
		{
			Timestamp:  time.Unix(2, 0),
			RunID:      "run-2",
			Scenario:   "referrer-policy",
			TestCase:   "req.http-rh._unset",
			Overridden: true,
			Contexts: []logging.ContextRecord{
				{SourceContextType: "top", Resolved: 0, Skipped: map[string]int{"null-policy": 1}},
			},
		},
		{Timestamp: time.Unix(1, 0), RunID: "run-2", Scenario: "csp"},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleRecords())
	if summary.Total != 3 {
		t.Fatalf("expected total 3, got %d", summary.Total)
	}
	if summary.Runs != 2 || summary.Overridden != 1 {
		t.Fatalf("unexpected runs/overridden %d/%d", summary.Runs, summary.Overridden)
	}
	if summary.Resolved != 2 || summary.Skipped != 2 {
		t.Fatalf("unexpected resolved/skipped %d/%d", summary.Resolved, summary.Skipped)
	}
	if !summary.End.Equal(time.Unix(2, 0)) || !summary.Start.Equal(time.Unix(0, 0)) {
		t.Fatalf("unexpected window %v..%v", summary.Start, summary.End)
	}
	if len(summary.TopScenarios) != 2 || summary.TopScenarios[0].Key != "referrer-policy" {
		t.Fatalf("expected referrer-policy first, got %+v", summary.TopScenarios)
	}
	if len(summary.SkipReasons) != 2 || summary.SkipReasons[0].Key != "top/null-policy" {
		t.Fatalf("unexpected skip reasons %+v", summary.SkipReasons)
	}
}

func TestReaderSince(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewGenerationLogger(&buf)
	for _, rec := range sampleRecords() {
		if err := logger.Write(rec); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "generation.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	reader := Reader{Since: time.Unix(1, 0)}
	records, err := reader.Read(path)
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
}

func TestReaderFiltersScenarioAndRun(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewGenerationLogger(&buf)
	for _, rec := range sampleRecords() {
		if err := logger.Write(rec); err != nil {
			t.Fatalf("Write error: %v", err)
		}
	}
	path := filepath.Join(t.TempDir(), "generation.jsonl")
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}

	cases := []struct {
		name   string
		reader Reader
		want   int
	}{
		{"scenario", Reader{Scenario: "referrer-policy"}, 2},
		{"run", Reader{RunID: "run-2"}, 2},
		{"scenario-and-run", Reader{Scenario: "referrer-policy", RunID: "run-2"}, 1},
		{"no-match", Reader{Scenario: "mixed-content"}, 0},
	}
	for _, tt := range cases {
		records, err := tt.reader.Read(path)
		if err != nil {
			t.Fatalf("%s: Read error: %v", tt.name, err)
		}
		if len(records) != tt.want {
			t.Fatalf("%s: expected %d records, got %d", tt.name, tt.want, len(records))
		}
	}
}

func TestRenderers(t *testing.T) {
	summary := Summarize(sampleRecords())

	if text := RenderText(summary); !strings.Contains(text, "Test cases: 3") {
		t.Fatalf("unexpected text report:\n%s", text)
	}
	if md := RenderMarkdown(summary); !strings.HasPrefix(md, "# wptgen Report") {
		t.Fatalf("unexpected markdown report:\n%s", md)
	}
	if _, err := RenderJSON(summary); err != nil {
		t.Fatalf("expected json render ok: %v", err)
	}

	var out bytes.Buffer
	if err := WriteOutput(&out, "", []byte("ok")); err != nil {
		t.Fatalf("WriteOutput error: %v", err)
	}
	if out.String() != "ok" {
		t.Fatalf("expected stdout write, got %q", out.String())
	}
}
