package config

import (
	"fmt"
	"os"
	"strconv"
)

// Config holds global settings for the Bastion scan service.
// All settings can be configured via environment variables or programmatically.
type Config struct {
	// === Core Settings ===
	Port         string // HTTP listen port (default: "3000")
	RulesetPath  string // Path to YAML ruleset file; empty = builtin defaults
	AuditLogPath string // Path to audit log file (default: "audit_events.jsonl")
	AuditEnabled bool   // Write one audit record per scan (default: true)

	// === Request Limits ===
	MaxInputBytes   int // Reject scan payloads larger than this (default: 1 MiB)
	ScanConcurrency int // Concurrent scans admitted before shedding (default: 64)
}

// NewDefaultConfig creates a Config with sensible defaults.
// All settings can be overridden via environment variables.
func NewDefaultConfig() *Config {
	return &Config{
		Port:         GetEnv("BASTION_PORT", "3000"),
		RulesetPath:  GetEnv("BASTION_RULESET", ""),
		AuditLogPath: GetEnv("BASTION_AUDIT_LOG", "audit_events.jsonl"),
		AuditEnabled: GetEnvBool("BASTION_AUDIT_ENABLED", true),

		MaxInputBytes:   clampInt(GetEnvInt("BASTION_MAX_INPUT_BYTES", 1<<20), 1, 64<<20),
		ScanConcurrency: clampInt(GetEnvInt("BASTION_SCAN_CONCURRENCY", 64), 1, 4096),
	}
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("config: port must not be empty")
	}
	if c.MaxInputBytes <= 0 {
		return fmt.Errorf("config: max input bytes must be positive, got %d", c.MaxInputBytes)
	}
	if c.ScanConcurrency <= 0 {
		return fmt.Errorf("config: scan concurrency must be positive, got %d", c.ScanConcurrency)
	}
	return nil
}

// clampInt ensures a value is within bounds
func clampInt(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Helper functions for environment variable parsing

// GetEnv returns the value of an environment variable or a default value.
func GetEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// GetEnvBool returns the boolean value of an environment variable or a default value.
func GetEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return defaultValue
}

// GetEnvInt returns the integer value of an environment variable or a default value.
func GetEnvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return defaultValue
}
