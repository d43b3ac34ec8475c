package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// startDateLayout is the format of export.start_date in the config file.
const startDateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	GitHub struct {
		Token  string `yaml:"token"`
		Repo   string `yaml:"repo"` // "owner/name"
		Branch string `yaml:"branch"`
	} `yaml:"github"`
	Export struct {
		Symbols     []string `yaml:"symbols"`
		StartDate   string   `yaml:"start_date"` // ISO date, inclusive window start
		ArtifactDir string   `yaml:"artifact_dir"`
	} `yaml:"export"`
	Schedule struct {
		ExportCron string `yaml:"export_cron"`
	} `yaml:"schedule"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("GITHUB_TOKEN"); v != "" {
		cfg.GitHub.Token = v
	}
	if v := os.Getenv("GITHUB_REPO"); v != "" {
		cfg.GitHub.Repo = v
	}
	if v := os.Getenv("GITHUB_BRANCH"); v != "" {
		cfg.GitHub.Branch = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		cfg.Export.Symbols = splitSymbols(v)
	}
	if v := os.Getenv("START_DATE"); v != "" {
		cfg.Export.StartDate = v
	}
	if v := os.Getenv("ARTIFACT_DIR"); v != "" {
		cfg.Export.ArtifactDir = v
	}
	if v := os.Getenv("CRON_EXPORT"); v != "" {
		cfg.Schedule.ExportCron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if len(cfg.Export.Symbols) == 0 {
		cfg.Export.Symbols = []string{"QLD", "^NDX"}
	}
	if cfg.Export.StartDate == "" {
		cfg.Export.StartDate = "2006-06-21"
	}
	if cfg.Export.ArtifactDir == "" {
		cfg.Export.ArtifactDir = "data"
	}
	if cfg.GitHub.Branch == "" {
		cfg.GitHub.Branch = "main"
	}
	if cfg.Schedule.ExportCron == "" {
		// Weekday evenings, after US market close.
		cfg.Schedule.ExportCron = "0 0 23 * * 1-5"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/export_history.db"
	}

	return cfg, nil
}

// Validate checks that all required fields are set and well-formed.
func (c *Config) Validate() error {
	if c.GitHub.Token == "" {
		return fmt.Errorf("github.token is required")
	}
	if c.GitHub.Repo == "" {
		return fmt.Errorf("github.repo is required")
	}
	if len(c.Export.Symbols) == 0 {
		return fmt.Errorf("export.symbols must list at least one symbol")
	}
	if _, err := c.WindowStart(); err != nil {
		return fmt.Errorf("export.start_date: %w", err)
	}
	return nil
}

// WindowStart parses the configured history window start date.
func (c *Config) WindowStart() (time.Time, error) {
	return time.Parse(startDateLayout, c.Export.StartDate)
}

func splitSymbols(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
