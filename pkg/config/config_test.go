package config

import "testing"

func TestDefaults(t *testing.T) {
	cfg := NewDefaultConfig()

	if cfg.Port != "3000" {
		t.Errorf("Port = %q, want 3000", cfg.Port)
	}
	if cfg.AuditLogPath != "audit_events.jsonl" {
		t.Errorf("AuditLogPath = %q", cfg.AuditLogPath)
	}
	if !cfg.AuditEnabled {
		t.Error("AuditEnabled should default to true")
	}
	if cfg.MaxInputBytes != 1<<20 {
		t.Errorf("MaxInputBytes = %d, want %d", cfg.MaxInputBytes, 1<<20)
	}
	if cfg.ScanConcurrency != 64 {
		t.Errorf("ScanConcurrency = %d, want 64", cfg.ScanConcurrency)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config invalid: %v", err)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BASTION_PORT", "8080")
	t.Setenv("BASTION_RULESET", "/etc/bastion/rules.yaml")
	t.Setenv("BASTION_AUDIT_ENABLED", "false")
	t.Setenv("BASTION_MAX_INPUT_BYTES", "4096")
	t.Setenv("BASTION_SCAN_CONCURRENCY", "8")

	cfg := NewDefaultConfig()
	if cfg.Port != "8080" {
		t.Errorf("Port = %q", cfg.Port)
	}
	if cfg.RulesetPath != "/etc/bastion/rules.yaml" {
		t.Errorf("RulesetPath = %q", cfg.RulesetPath)
	}
	if cfg.AuditEnabled {
		t.Error("AuditEnabled override not applied")
	}
	if cfg.MaxInputBytes != 4096 {
		t.Errorf("MaxInputBytes = %d", cfg.MaxInputBytes)
	}
	if cfg.ScanConcurrency != 8 {
		t.Errorf("ScanConcurrency = %d", cfg.ScanConcurrency)
	}
}

func TestEnvClamping(t *testing.T) {
	t.Setenv("BASTION_MAX_INPUT_BYTES", "0")
	t.Setenv("BASTION_SCAN_CONCURRENCY", "1000000")

	cfg := NewDefaultConfig()
	if cfg.MaxInputBytes != 1 {
		t.Errorf("MaxInputBytes = %d, want clamped to 1", cfg.MaxInputBytes)
	}
	if cfg.ScanConcurrency != 4096 {
		t.Errorf("ScanConcurrency = %d, want clamped to 4096", cfg.ScanConcurrency)
	}
}

func TestMalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("BASTION_SCAN_CONCURRENCY", "lots")
	t.Setenv("BASTION_AUDIT_ENABLED", "maybe")

	cfg := NewDefaultConfig()
	if cfg.ScanConcurrency != 64 {
		t.Errorf("ScanConcurrency = %d, want default 64", cfg.ScanConcurrency)
	}
	if !cfg.AuditEnabled {
		t.Error("AuditEnabled should keep default on parse failure")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero input limit", func(c *Config) { c.MaxInputBytes = 0 }},
		{"negative concurrency", func(c *Config) { c.ScanConcurrency = -1 }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := NewDefaultConfig()
			tc.mut(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
