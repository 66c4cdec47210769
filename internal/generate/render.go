package generate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// Renderer reads templates by basename from Dir.
type Renderer struct {
	Dir string

	cache map[string]*template.Template
}

func NewRenderer(dir string) *Renderer {
	return &Renderer{Dir: dir, cache: map[string]*template.Template{}}
}

func (r *Renderer) GetTemplate(basename string) (string, error) {
	data, err := os.ReadFile(filepath.Join(r.Dir, basename))
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type templateData struct {
	Case TestCase
	JSON string
}

func (r *Renderer) Render(basename string, tc TestCase) ([]byte, error) {
	tmpl, err := r.load(basename)
	if err != nil {
		return nil, err
	}

	data, err := MarshalCase(tc)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, templateData{Case: tc, JSON: string(data)}); err != nil {
		return nil, fmt.Errorf("execute template %s: %w", basename, err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) load(basename string) (*template.Template, error) {
	if tmpl, ok := r.cache[basename]; ok {
		return tmpl, nil
	}
	content, err := r.GetTemplate(basename)
	if err != nil {
		return nil, fmt.Errorf("read template %s: %w", basename, err)
	}
	tmpl, err := template.New(basename).Parse(content)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", basename, err)
	}
	if r.cache == nil {
		r.cache = map[string]*template.Template{}
	}
	r.cache[basename] = tmpl
	return tmpl, nil
}

func MarshalCase(tc TestCase) ([]byte, error) {
	return json.MarshalIndent(tc.ToJSON(), "", "  ")
}

func WriteFile(path string, contents []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, contents, 0o600)
}
