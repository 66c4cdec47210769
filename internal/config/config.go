package config

type Config struct {
	ConfigVersion int             `yaml:"configVersion"`
	Spec          string          `yaml:"spec"`
	Templates     TemplatesConfig `yaml:"templates"`
	Output        OutputConfig    `yaml:"output"`
	Logging       LoggingConfig   `yaml:"logging"`
	Metrics       MetricsConfig   `yaml:"metrics"`

	baseDir string `yaml:"-"`
}

type TemplatesConfig struct {
	Dir      string `yaml:"dir"`
	TestCase string `yaml:"testCase"`
}

type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Extension string `yaml:"extension"`
	JSON      bool   `yaml:"json"`
}

type LoggingConfig struct {
	Level         string `yaml:"level"`
	Format        string `yaml:"format"`
	GenerationLog string `yaml:"generationLog"`
}

type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Textfile string `yaml:"textfile"`
}

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

const (
	defaultSpec        = "spec.src.json"
	defaultTemplateDir = "template"
	defaultOutputDir   = "gen"
	defaultExtension   = ".html"
	defaultTestCase    = "test.html.template"
)

func (c *Config) BaseDir() string {
	return c.baseDir
}

func (c *Config) ResolvePath(path string) string {
	return c.resolvePath(path)
}

func (c *Config) applyDefaults() {
	if c.Output.Extension == "" {
		c.Output.Extension = defaultExtension
	}
	if c.Templates.TestCase == "" {
		c.Templates.TestCase = defaultTestCase
	}
	if c.Logging.Level == "" {
		c.Logging.Level = LevelInfo
	}
	if c.Logging.Format == "" {
		c.Logging.Format = FormatText
	}
}
