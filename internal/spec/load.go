package spec

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// SyntaxError locates a JSON syntax error inside a spec file. Line and
// Column are 1-indexed.
type SyntaxError struct {
	Path       string
	Line       int
	Column     int
	Message    string
	SourceLine string
}

func (e *SyntaxError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: line %d column %d", e.Message, e.Line, e.Column)
	}
	return fmt.Sprintf("%s: %s: line %d column %d", e.Path, e.Message, e.Line, e.Column)
}

// Diagnostic renders the error, the offending line and a caret under the
// failing column.
func (e *SyntaxError) Diagnostic() string {
	var b strings.Builder
	b.WriteString(e.Error())
	b.WriteString("\n")
	b.WriteString(e.SourceLine)
	b.WriteString("\n")
	b.WriteString(strings.Repeat(" ", max(e.Column-1, 0)))
	b.WriteString("^")
	return b.String()
}

func Load(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spec: %w", err)
	}

	s, err := Parse(data)
	if err != nil {
		var serr *SyntaxError
		if errors.As(err, &serr) {
			serr.Path = path
			return nil, serr
		}
		return nil, fmt.Errorf("parse spec %s: %w", path, err)
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve spec path: %w", err)
	}
	s.path = absPath
	return s, nil
}

func Parse(data []byte) (*Spec, error) {
	var s Spec
	if err := json.Unmarshal(data, &s); err != nil {
		var jsonErr *json.SyntaxError
		if errors.As(err, &jsonErr) {
			return nil, locate(data, jsonErr.Offset, jsonErr.Error())
		}
		return nil, err
	}
	return &s, nil
}

// locate turns a decoder byte offset into a line/column position counted
// in characters. The decoder reports the number of bytes consumed including
// the failing one; at end of input there is no failing byte and the
// position is just past the last one.
func locate(data []byte, offset int64, msg string) *SyntaxError {
	idx := int(offset) - 1
	if int(offset) >= len(data) && strings.HasPrefix(msg, "unexpected end of JSON input") {
		idx = len(data)
	}
	if idx < 0 {
		idx = 0
	}
	if idx > len(data) {
		idx = len(data)
	}

	lineStart := bytes.LastIndexByte(data[:idx], '\n') + 1
	lineEnd := bytes.IndexByte(data[lineStart:], '\n')
	if lineEnd < 0 {
		lineEnd = len(data)
	} else {
		lineEnd += lineStart
	}

	return &SyntaxError{
		Line:       bytes.Count(data[:lineStart], []byte("\n")) + 1,
		Column:     utf8.RuneCount(data[lineStart:idx]) + 1,
		Message:    msg,
		SourceLine: strings.TrimRight(string(data[lineStart:lineEnd]), " \t\r\n"),
	}
}
