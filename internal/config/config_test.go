package config

import (
	"strings"
	"testing"
	"time"
)

func validConfig() *Config {
	return &Config{
		Port:           "8080",
		SQLiteDBPath:   "steward.db",
		ReportBackend:  "memory",
		ExportInterval: time.Minute,
		Timezone:       "UTC",
		CacheTTL:       30 * time.Second,
		CacheSize:      128,
	}
}

func TestValidateOK(t *testing.T) {
	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestValidateFailures(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"bad port", func(c *Config) { c.Port = "nope" }, "invalid port"},
		{"port out of range", func(c *Config) { c.Port = "70000" }, "invalid port"},
		{"empty db path", func(c *Config) { c.SQLiteDBPath = "" }, "database path"},
		{"bad amqp scheme", func(c *Config) { c.AMQPURL = "http://localhost" }, "AMQP URL scheme"},
		{"amqp without queue", func(c *Config) { c.AMQPURL = "amqp://localhost"; c.AMQPQueue = "" }, "queue name"},
		{"unknown backend", func(c *Config) { c.ReportBackend = "bigquery" }, "invalid report backend"},
		{"sheets without spreadsheet", func(c *Config) { c.ReportBackend = "sheets" }, "Spreadsheet ID"},
		{"bad timezone", func(c *Config) { c.Timezone = "Mars/Olympus" }, "invalid timezone"},
		{"export interval too small", func(c *Config) { c.ExportInterval = time.Millisecond }, "export interval"},
		{"zero cache size", func(c *Config) { c.CacheSize = 0 }, "cache size"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mut(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestLocation(t *testing.T) {
	cfg := validConfig()
	cfg.Timezone = "Europe/Berlin"
	if cfg.Location().String() != "Europe/Berlin" {
		t.Fatalf("expected Europe/Berlin, got %s", cfg.Location())
	}
	cfg.Timezone = "garbage"
	if cfg.Location() != time.UTC {
		t.Fatalf("bad timezone should fall back to UTC")
	}
}
