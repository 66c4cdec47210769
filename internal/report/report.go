package report

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/wptgen/wptgen/internal/logging"
)

type Summary struct {
	Total        int         `json:"total"`
	Overridden   int         `json:"overridden"`
	Runs         int         `json:"runs"`
	Resolved     int         `json:"resolved"`
	Skipped      int         `json:"skipped"`
	Start        time.Time   `json:"start"`
	End          time.Time   `json:"end"`
	TopScenarios []CountItem `json:"top_scenarios"`
	TopContexts  []CountItem `json:"top_source_contexts"`
	SkipReasons  []CountItem `json:"skip_reasons"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type Reader struct {
	Since    time.Time
	Scenario string
	RunID    string
}

func (r *Reader) Read(path string) ([]logging.Record, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var records []logging.Record
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var rec logging.Record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return nil, err
		}
		if !r.keep(rec) {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (r *Reader) keep(rec logging.Record) bool {
	if !r.Since.IsZero() && rec.Timestamp.Before(r.Since) {
		return false
	}
	if r.Scenario != "" && rec.Scenario != r.Scenario {
		return false
	}
	return r.RunID == "" || rec.RunID == r.RunID
}

func Summarize(records []logging.Record) Summary {
	var summary Summary
	if len(records) == 0 {
		return summary
	}

	summary.Start = records[0].Timestamp
	summary.End = records[0].Timestamp

	runs := map[string]struct{}{}
	scenarioCounts := map[string]int{}
	contextCounts := map[string]int{}
	reasonCounts := map[string]int{}

	for _, rec := range records {
		summary.Total++
		if rec.Timestamp.Before(summary.Start) {
			summary.Start = rec.Timestamp
		}
		if rec.Timestamp.After(summary.End) {
			summary.End = rec.Timestamp
		}
		if rec.Overridden {
			summary.Overridden++
		}
		runs[rec.RunID] = struct{}{}
		scenarioCounts[rec.Scenario]++

		for _, c := range rec.Contexts {
			summary.Resolved += c.Resolved
			contextCounts[c.SourceContextType] += c.Resolved
			for reason, n := range c.Skipped {
				summary.Skipped += n
				reasonCounts[c.SourceContextType+"/"+reason] += n
			}
		}
	}

	summary.Runs = len(runs)
	summary.TopScenarios = topCounts(scenarioCounts, 5)
	summary.TopContexts = topCounts(contextCounts, 5)
	summary.SkipReasons = topCounts(reasonCounts, 10)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func RenderText(summary Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Test cases: %d\n", summary.Total)
	fmt.Fprintf(&b, "Overridden: %d\n", summary.Overridden)
	fmt.Fprintf(&b, "Runs: %d\n", summary.Runs)
	fmt.Fprintf(&b, "Deliveries resolved/skipped: %d/%d\n", summary.Resolved, summary.Skipped)

	writeCounts(&b, "Top scenarios", summary.TopScenarios)
	writeCounts(&b, "Top source contexts", summary.TopContexts)
	writeCounts(&b, "Skip reasons", summary.SkipReasons)

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# wptgen Report\n\n")
	b.WriteString("## Totals\n\n")
	fmt.Fprintf(&b, "- Test cases: %d\n", summary.Total)
	fmt.Fprintf(&b, "- Overridden: %d\n", summary.Overridden)
	fmt.Fprintf(&b, "- Runs: %d\n", summary.Runs)
	fmt.Fprintf(&b, "- Deliveries resolved/skipped: %d/%d\n\n", summary.Resolved, summary.Skipped)

	writeCountsMarkdown(&b, "Top scenarios", summary.TopScenarios)
	writeCountsMarkdown(&b, "Top source contexts", summary.TopContexts)
	writeCountsMarkdown(&b, "Skip reasons", summary.SkipReasons)

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeCountsMarkdown(b *strings.Builder, title string, items []CountItem) {
	b.WriteString("## ")
	b.WriteString(title)
	b.WriteString("\n\n")
	if len(items) == 0 {
		b.WriteString("- none\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
	b.WriteString("\n")
}

// WriteOutput writes content to path, or to stdout when path is empty.
func WriteOutput(stdout io.Writer, path string, content []byte) error {
	if path == "" {
		_, err := io.Copy(stdout, bytes.NewReader(content))
		return err
	}
	return os.WriteFile(path, content, 0o600)
}
