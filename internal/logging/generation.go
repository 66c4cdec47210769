package logging

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sort"
	"time"
)

// Record is written as a single JSON object per generated test case.
type Record struct {
	Timestamp         time.Time       `json:"ts"`
	RunID             string          `json:"run_id"`
	Scenario          string          `json:"scenario"`
	SourceContextList string          `json:"source_context_list"`
	TestCase          string          `json:"test_case"`
	OutputPath        string          `json:"output_path"`
	Overridden        bool            `json:"overridden"`
	Contexts          []ContextRecord `json:"contexts"`
}

type ContextRecord struct {
	SourceContextType string         `json:"source_context_type"`
	Resolved          int            `json:"resolved"`
	Skipped           map[string]int `json:"skipped,omitempty"`
}

type GenerationLogger struct {
	w io.Writer
}

func NewGenerationLogger(w io.Writer) *GenerationLogger {
	return &GenerationLogger{w: w}
}

func OpenGenerationLog(path string) (*GenerationLogger, func() error, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, nil, err
	}
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, err
	}
	return NewGenerationLogger(file), file.Close, nil
}

func (l *GenerationLogger) Write(record Record) error {
	if l == nil {
		return nil
	}
	record.Contexts = sortContexts(record.Contexts)

	data, err := json.Marshal(record)
	if err != nil {
		return err
	}
	_, err = l.w.Write(append(data, '\n'))
	return err
}

func sortContexts(contexts []ContextRecord) []ContextRecord {
	if len(contexts) == 0 {
		return nil
	}
	out := make([]ContextRecord, len(contexts))
	copy(out, contexts)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SourceContextType < out[j].SourceContextType
	})
	return out
}
