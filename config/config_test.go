package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func validConfig() Config {
	return Config{
		JWTSecret:         "secret",
		SlotStrideMinutes: 15,
		MaxRangeDays:      14,
		CatalogBackend:    "memory",
		LedgerBackend:     "memory",
		StorageTimeout:    5 * time.Second,
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"ok", func(*Config) {}, ""},
		{"zero stride", func(c *Config) { c.SlotStrideMinutes = 0 }, "SLOT_STRIDE_MINUTES"},
		{"zero range", func(c *Config) { c.MaxRangeDays = 0 }, "MAX_RANGE_DAYS"},
		{"no key source", func(c *Config) { c.JWTSecret = "" }, "JWT_SECRET"},
		{"jwks only", func(c *Config) { c.JWTSecret = ""; c.JWTJWKSURL = "https://idp/jwks.json" }, ""},
		{"bad ledger", func(c *Config) { c.LedgerBackend = "sqlite" }, "LEDGER_BACKEND"},
		{"postgres without url", func(c *Config) { c.LedgerBackend = "postgres" }, "POSTGRES_URL"},
		{"bad catalog", func(c *Config) { c.CatalogBackend = "postgres" }, "CATALOG_BACKEND"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate()=%v, want nil", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("Validate()=%v, want error mentioning %q", err, tc.wantErr)
			}
		})
	}
}

func TestLoadDefaultsAndEnv(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("LEDGER_BACKEND", "memory")
	t.Setenv("SLOT_STRIDE_MINUTES", "10")

	cfg, err := Load(viper.New())
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.JWTSecret != "from-env" {
		t.Fatalf("JWTSecret=%q, want from-env", cfg.JWTSecret)
	}
	if cfg.SlotStride() != 10*time.Minute {
		t.Fatalf("SlotStride()=%v, want 10m", cfg.SlotStride())
	}
	if cfg.MaxRangeDays != 14 || cfg.StorageTimeout != 5*time.Second {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}
