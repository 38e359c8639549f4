package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("CRYPTOCOMPARE_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.FSym != "BTC" || cfg.DataSource.TSym != "USD" {
		t.Errorf("symbol defaults = %s/%s, want BTC/USD", cfg.DataSource.FSym, cfg.DataSource.TSym)
	}
	if cfg.Store.CSVPath != "data/history.csv" || cfg.Store.JSONPath != "data/history.json" {
		t.Errorf("store defaults = %s, %s", cfg.Store.CSVPath, cfg.Store.JSONPath)
	}
	if cfg.Backfill.BaselineDate != "2010-01-01" {
		t.Errorf("baseline default = %s", cfg.Backfill.BaselineDate)
	}
	if cfg.Schedule.DailyCron == "" {
		t.Error("expected a default cron expression")
	}
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	path := writeConfig(t, `
data_source:
  api_key: from-file
  fsym: ETH
store:
  csv_path: /tmp/x.csv
`)
	t.Setenv("CRYPTOCOMPARE_API_KEY", "from-env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.DataSource.APIKey != "from-env" {
		t.Errorf("api key = %s, env must override file", cfg.DataSource.APIKey)
	}
	if cfg.DataSource.FSym != "ETH" {
		t.Errorf("fsym = %s, want ETH", cfg.DataSource.FSym)
	}
	if cfg.Store.CSVPath != "/tmp/x.csv" {
		t.Errorf("csv path = %s", cfg.Store.CSVPath)
	}
}

func TestLoad_MalformedYAML(t *testing.T) {
	path := writeConfig(t, "data_source: [not a map\n")
	if _, err := Load(path); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	t.Setenv("CRYPTOCOMPARE_API_KEY", "")
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for missing api key")
	}
}

func TestValidate_BadBaseline(t *testing.T) {
	t.Setenv("CRYPTOCOMPARE_API_KEY", "k")
	path := writeConfig(t, "backfill:\n  baseline_date: notadate\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error for bad baseline date")
	}
}

func TestBaselineDay(t *testing.T) {
	t.Setenv("CRYPTOCOMPARE_API_KEY", "k")
	path := writeConfig(t, "backfill:\n  baseline_date: 2015-06-01\n")
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := cfg.BaselineDay().Format("2006-01-02"); got != "2015-06-01" {
		t.Errorf("baseline day = %s", got)
	}
}
