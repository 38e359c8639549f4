package config

import (
	"fmt"
	"os"
	"time"

	"PriceHistorian/internal/model"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	DataSource struct {
		BaseURL string `yaml:"base_url"`
		APIKey  string `yaml:"api_key"`
		FSym    string `yaml:"fsym"`
		TSym    string `yaml:"tsym"`
	} `yaml:"data_source"`
	Store struct {
		CSVPath  string `yaml:"csv_path"`
		JSONPath string `yaml:"json_path"`
	} `yaml:"store"`
	Backfill struct {
		BaselineDate string `yaml:"baseline_date"`
	} `yaml:"backfill"`
	Schedule struct {
		DailyCron string `yaml:"daily_cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
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
	if v := os.Getenv("CRYPTOCOMPARE_API_KEY"); v != "" {
		cfg.DataSource.APIKey = v
	}
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}

	// Defaults
	if cfg.DataSource.FSym == "" {
		cfg.DataSource.FSym = "BTC"
	}
	if cfg.DataSource.TSym == "" {
		cfg.DataSource.TSym = "USD"
	}
	if cfg.Store.CSVPath == "" {
		cfg.Store.CSVPath = "data/history.csv"
	}
	if cfg.Store.JSONPath == "" {
		cfg.Store.JSONPath = "data/history.json"
	}
	if cfg.Backfill.BaselineDate == "" {
		cfg.Backfill.BaselineDate = "2010-01-01"
	}
	if cfg.Schedule.DailyCron == "" {
		cfg.Schedule.DailyCron = "0 30 0 * * *"
	}

	return cfg, nil
}

// Validate checks that all required fields are set. It runs before any I/O,
// so a missing credential halts the process before artifacts are touched.
func (c *Config) Validate() error {
	if c.DataSource.APIKey == "" {
		return fmt.Errorf("data_source.api_key is required (or set CRYPTOCOMPARE_API_KEY)")
	}
	if _, err := time.Parse(model.DateFormat, c.Backfill.BaselineDate); err != nil {
		return fmt.Errorf("backfill.baseline_date %q: %w", c.Backfill.BaselineDate, err)
	}
	return nil
}

// BaselineDay returns the parsed fallback baseline day.
func (c *Config) BaselineDay() time.Time {
	day, err := time.Parse(model.DateFormat, c.Backfill.BaselineDate)
	if err != nil {
		// Validate rejects unparseable baselines before this is reachable.
		panic(err)
	}
	return model.Midnight(day)
}
