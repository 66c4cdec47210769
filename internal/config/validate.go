package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type ValidationError struct {
	Problems []string
}

func (v *ValidationError) Add(format string, args ...any) {
	v.Problems = append(v.Problems, fmt.Sprintf(format, args...))
}

func (v *ValidationError) Sort() {
	sort.Strings(v.Problems)
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%d validation error(s)", len(v.Problems))
}

func (c *Config) Validate() error {
	v := &ValidationError{}

	if c.ConfigVersion != 1 {
		v.Add("configVersion must be 1")
	}

	if c.Spec == "" {
		v.Add("spec is required")
	} else if err := requireFile(c.resolvePath(c.Spec)); err != nil {
		v.Add("spec invalid: %v", err)
	}

	if c.Templates.Dir == "" {
		v.Add("templates.dir is required")
	} else if err := requireDir(c.resolvePath(c.Templates.Dir)); err != nil {
		v.Add("templates.dir invalid: %v", err)
	} else if err := requireFile(filepath.Join(c.resolvePath(c.Templates.Dir), c.Templates.TestCase)); err != nil {
		v.Add("templates.testCase invalid: %v", err)
	}

	if c.Output.Dir == "" {
		v.Add("output.dir is required")
	}
	if c.Output.Extension != "" && !strings.HasPrefix(c.Output.Extension, ".") {
		v.Add("output.extension must start with a dot")
	}
	if c.Output.JSON && strings.EqualFold(c.Output.Extension, ".json") {
		v.Add("output.extension must not be .json when output.json is true")
	}

	switch c.Logging.Level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
	default:
		v.Add("logging.level must be debug|info|warn|error")
	}
	switch c.Logging.Format {
	case FormatText, FormatJSON:
	default:
		v.Add("logging.format must be text|json")
	}

	if c.Metrics.Enabled && c.Metrics.Textfile == "" {
		v.Add("metrics.textfile required when metrics.enabled is true")
	}

	if len(v.Problems) > 0 {
		v.Sort()
		return v
	}
	return nil
}

func requireFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	return nil
}

func requireDir(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", path)
	}
	return nil
}
