package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"server"`
	Catalog struct {
		Path         string `yaml:"path"`
		URL          string `yaml:"url"`
		SnapshotFile string `yaml:"snapshot_file"`
		RefreshCron  string `yaml:"refresh_cron"`
		AuditCron    string `yaml:"audit_cron"`
	} `yaml:"catalog"`
	Assumptions struct {
		Path string `yaml:"path"`
	} `yaml:"assumptions"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	SMTP struct {
		Host       string `yaml:"host"`
		Port       int    `yaml:"port"`
		Username   string `yaml:"username"`
		Password   string `yaml:"password"`
		From       string `yaml:"from"`
		MaxRetries int    `yaml:"max_retries"`
	} `yaml:"smtp"`
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
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		cfg.Server.ListenAddr = v
	}
	if v := os.Getenv("ROBO_DB_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
	if v := os.Getenv("CATALOG_URL"); v != "" {
		cfg.Catalog.URL = v
	}
	if v := os.Getenv("CATALOG_REFRESH_CRON"); v != "" {
		cfg.Catalog.RefreshCron = v
	}
	if v := os.Getenv("ASSUMPTIONS_PATH"); v != "" {
		cfg.Assumptions.Path = v
	}
	if v := os.Getenv("SMTP_HOST"); v != "" {
		cfg.SMTP.Host = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if v := os.Getenv("SMTP_USERNAME"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	if cfg.Catalog.Path == "" && cfg.Catalog.URL == "" {
		cfg.Catalog.Path = "data/funds.csv"
	}
	if cfg.Catalog.SnapshotFile == "" {
		cfg.Catalog.SnapshotFile = "data/catalog_snapshot.json"
	}
	if cfg.Catalog.RefreshCron == "" {
		cfg.Catalog.RefreshCron = "0 0 6 * * *"
	}
	if cfg.Catalog.AuditCron == "" {
		cfg.Catalog.AuditCron = "0 30 6 * * 1"
	}
	if cfg.Database.SQLitePath == "" {
		cfg.Database.SQLitePath = "data/robo_advisor.db"
	}
	if cfg.SMTP.Port == 0 {
		cfg.SMTP.Port = 587
	}
	if cfg.SMTP.MaxRetries == 0 {
		cfg.SMTP.MaxRetries = 3
	}

	return cfg, nil
}

// MailEnabled reports whether an SMTP relay is configured.
func (c *Config) MailEnabled() bool {
	return c.SMTP.Host != ""
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Catalog.Path != "" && c.Catalog.URL != "" {
		return fmt.Errorf("catalog.path and catalog.url are mutually exclusive")
	}
	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Catalog.RefreshCron); err != nil {
		return fmt.Errorf("catalog.refresh_cron: %w", err)
	}
	if _, err := parser.Parse(c.Catalog.AuditCron); err != nil {
		return fmt.Errorf("catalog.audit_cron: %w", err)
	}
	if c.MailEnabled() && c.SMTP.From == "" {
		return fmt.Errorf("smtp.from is required when smtp.host is set")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp.port out of range")
	}
	if c.SMTP.MaxRetries < 0 {
		return fmt.Errorf("smtp.max_retries must not be negative")
	}
	return nil
}
