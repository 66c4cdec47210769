package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFixture(t *testing.T, yaml string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "template"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "template", "test.html.template"), []byte("{{.JSON}}"), 0o600); err != nil {
		t.Fatalf("write template: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "spec.src.json"), []byte("{}"), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	path := filepath.Join(dir, "wptgen.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFixture(t, `
configVersion: 1
spec: spec.src.json
templates:
  dir: template
output:
  dir: gen
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}
	if cfg.Output.Extension != ".html" {
		t.Fatalf("expected default extension, got %q", cfg.Output.Extension)
	}
	if cfg.Logging.Level != LevelInfo || cfg.Logging.Format != FormatText {
		t.Fatalf("unexpected logging defaults %+v", cfg.Logging)
	}
	if cfg.ResolvePath("gen") != filepath.Join(cfg.BaseDir(), "gen") {
		t.Fatalf("expected path relative to config dir, got %q", cfg.ResolvePath("gen"))
	}
	if err := cfg.Validate(); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			t.Fatalf("unexpected problems: %v", verr.Problems)
		}
		t.Fatalf("Validate error: %v", err)
	}
}

func TestValidateCollectsProblems(t *testing.T) {
	path := writeConfigFixture(t, `
configVersion: 2
spec: missing.json
templates:
  dir: template
  testCase: nope.template
output:
  extension: html
logging:
  level: loud
  format: xml
metrics:
  enabled: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	err = cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 8 {
		t.Fatalf("expected 8 problems, got %d: %v", len(verr.Problems), verr.Problems)
	}
	for i := 1; i < len(verr.Problems); i++ {
		if verr.Problems[i-1] > verr.Problems[i] {
			t.Fatalf("expected sorted problems, got %v", verr.Problems)
		}
	}
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := writeConfigFixture(t, "configVersion: [1\n")

	if _, err := Load(path); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestValidateRejectsJSONExtensionWithJSONOutput(t *testing.T) {
	path := writeConfigFixture(t, `
configVersion: 1
spec: spec.src.json
templates:
  dir: template
output:
  dir: gen
  extension: .json
  json: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load error: %v", err)
	}

	err = cfg.Validate()
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(verr.Problems) != 1 || verr.Problems[0] != "output.extension must not be .json when output.json is true" {
		t.Fatalf("unexpected problems %v", verr.Problems)
	}

	cfg.Output.JSON = false
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected .json extension alone to be valid, got %v", err)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Spec != "spec.src.json" || cfg.Templates.Dir != "template" || cfg.Output.Dir != "gen" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.ResolvePath("gen") != filepath.Join(".", "gen") {
		t.Fatalf("expected working-directory relative path, got %q", cfg.ResolvePath("gen"))
	}
}
