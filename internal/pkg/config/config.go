package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Execution modes for a collection pass.
const (
	ModeParallel   = "parallel"
	ModeSequential = "sequential"
)

const (
	MinPort = 1
	MaxPort = 65535
)

// Defaults applied to fields left empty in the config file.
const (
	DefaultBaseURL      = "https://sportsbook.draftkings.com/leagues/baseball/mlb"
	DefaultInterval     = 20 * time.Minute
	DefaultFetchTimeout = 90 * time.Second
	DefaultMaxSessions  = 4
	DefaultOutputDir    = "."
	DefaultUserAgent    = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Duration unmarshals yaml values like "90s" or "20m" (time.ParseDuration
// syntax) into a time.Duration.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("duration must be a string like \"90s\" or \"20m\": %w", err)
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Std returns the wrapped time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

type Config struct {
	Scraper ScraperConfig `yaml:"scraper"`
	Browser BrowserConfig `yaml:"browser"`
	Export  ExportConfig  `yaml:"export"`
	Health  HealthConfig  `yaml:"health"`
	Logging LoggingConfig `yaml:"logging"`
}

type ScraperConfig struct {
	BaseURL      string   `yaml:"base_url"`
	Categories   []string `yaml:"categories"`
	Mode         string   `yaml:"mode"` // parallel or sequential
	Interval     Duration `yaml:"interval"`
	FetchTimeout Duration `yaml:"fetch_timeout"`
	PassTimeout  Duration `yaml:"pass_timeout"` // 0 = unbounded
	MaxSessions  int      `yaml:"max_sessions"` // parallel browser tabs per pass
	UserAgent    string   `yaml:"user_agent"`
}

type BrowserConfig struct {
	Headless  bool `yaml:"headless"`
	NoSandbox bool `yaml:"no_sandbox"`
}

type ExportConfig struct {
	SaveCSV   bool   `yaml:"save_csv"`
	OutputDir string `yaml:"output_dir"`
}

type HealthConfig struct {
	Port              int      `yaml:"port"` // 0 disables the status server
	ReadHeaderTimeout Duration `yaml:"read_header_timeout"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console or json
	File   string `yaml:"file"`   // optional JSON log file
}

func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	config.applyDefaults()
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Scraper.BaseURL == "" {
		c.Scraper.BaseURL = DefaultBaseURL
	}
	if len(c.Scraper.Categories) == 0 {
		c.Scraper.Categories = []string{"batter-props", "pitcher-props"}
	}
	if c.Scraper.Mode == "" {
		c.Scraper.Mode = ModeParallel
	}
	if c.Scraper.Interval == 0 {
		c.Scraper.Interval = Duration(DefaultInterval)
	}
	if c.Scraper.FetchTimeout == 0 {
		c.Scraper.FetchTimeout = Duration(DefaultFetchTimeout)
	}
	if c.Scraper.MaxSessions == 0 {
		c.Scraper.MaxSessions = DefaultMaxSessions
	}
	if c.Scraper.UserAgent == "" {
		c.Scraper.UserAgent = DefaultUserAgent
	}
	if c.Export.OutputDir == "" {
		c.Export.OutputDir = DefaultOutputDir
	}
	if c.Health.Port != 0 && c.Health.ReadHeaderTimeout == 0 {
		c.Health.ReadHeaderTimeout = Duration(5 * time.Second)
	}
}

// Validate checks the config after defaults have been applied. Category
// slugs are validated against the registry by the caller.
func (c *Config) Validate() error {
	if c.Scraper.Mode != ModeParallel && c.Scraper.Mode != ModeSequential {
		return fmt.Errorf("scraper.mode must be %q or %q, got %q", ModeParallel, ModeSequential, c.Scraper.Mode)
	}
	if c.Scraper.Interval <= 0 {
		return fmt.Errorf("scraper.interval must be positive, got %s", c.Scraper.Interval)
	}
	if c.Scraper.FetchTimeout <= 0 {
		return fmt.Errorf("scraper.fetch_timeout must be positive, got %s", c.Scraper.FetchTimeout)
	}
	if c.Scraper.PassTimeout < 0 {
		return fmt.Errorf("scraper.pass_timeout must not be negative, got %s", c.Scraper.PassTimeout)
	}
	if c.Scraper.MaxSessions < 1 {
		return fmt.Errorf("scraper.max_sessions must be at least 1, got %d", c.Scraper.MaxSessions)
	}
	if len(c.Scraper.Categories) == 0 {
		return fmt.Errorf("scraper.categories must not be empty")
	}
	if c.Health.Port != 0 {
		if c.Health.Port < MinPort || c.Health.Port > MaxPort {
			return fmt.Errorf("health.port must be between %d and %d, got %d", MinPort, MaxPort, c.Health.Port)
		}
		if c.Health.ReadHeaderTimeout <= 0 {
			return fmt.Errorf("health.read_header_timeout must be positive, got %s", c.Health.ReadHeaderTimeout)
		}
	}
	return nil
}
