package config

import (
	"os"
	"testing"
	"time"
)

func TestGetenv(t *testing.T) {
	tests := []struct {
		name      string
		key       string
		value     string
		def       string
		shouldSet bool
		expected  string
	}{
		{
			name:      "variable set",
			key:       "TEST_GETENV",
			value:     "custom",
			def:       "fallback",
			shouldSet: true,
			expected:  "custom",
		},
		{
			name:     "variable not set",
			key:      "TEST_GETENV_MISSING",
			def:      "fallback",
			expected: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.shouldSet {
				t.Setenv(tt.key, tt.value)
			}
			if got := getenv(tt.key, tt.def); got != tt.expected {
				t.Errorf("getenv() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustDuration(t *testing.T) {
	tests := []struct {
		name     string
		key      string
		value    string
		def      time.Duration
		expected time.Duration
	}{
		{
			name:     "valid duration",
			key:      "TEST_DURATION",
			value:    "30s",
			def:      time.Minute,
			expected: 30 * time.Second,
		},
		{
			name:     "invalid duration falls back",
			key:      "TEST_DURATION_BAD",
			value:    "not-a-duration",
			def:      time.Minute,
			expected: time.Minute,
		},
		{
			name:     "missing falls back",
			key:      "TEST_DURATION_MISSING",
			def:      time.Minute,
			expected: time.Minute,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.value != "" {
				t.Setenv(tt.key, tt.value)
			}
			if got := mustDuration(tt.key, tt.def); got != tt.expected {
				t.Errorf("mustDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestMustBool(t *testing.T) {
	t.Setenv("TEST_BOOL", "true")
	if !mustBool("TEST_BOOL", false) {
		t.Error("mustBool() = false, want true")
	}
	t.Setenv("TEST_BOOL_BAD", "maybe")
	if mustBool("TEST_BOOL_BAD", false) {
		t.Error("mustBool() with invalid value should return default")
	}
}

func TestLoadDefaults(t *testing.T) {
	os.Unsetenv("ETHEKWINI_CACHE_TTL")
	os.Unsetenv("ETHEKWINI_API_BASE")

	cfg := Load()

	if cfg.CacheTTL != 900*time.Second {
		t.Errorf("CacheTTL = %v, want 900s", cfg.CacheTTL)
	}
	if cfg.APIBase != DefaultAPIBase {
		t.Errorf("APIBase = %v, want %v", cfg.APIBase, DefaultAPIBase)
	}
	if cfg.ProbeTimeout != 10*time.Second {
		t.Errorf("ProbeTimeout = %v, want 10s", cfg.ProbeTimeout)
	}
	if cfg.QueryTimeout != 60*time.Second {
		t.Errorf("QueryTimeout = %v, want 60s", cfg.QueryTimeout)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ETHEKWINI_CACHE_TTL", "5m")
	t.Setenv("ETHEKWINI_API_BASE", "https://example.com/arcgis/rest/services")

	cfg := Load()

	if cfg.CacheTTL != 5*time.Minute {
		t.Errorf("CacheTTL = %v, want 5m", cfg.CacheTTL)
	}
	if cfg.APIBase != "https://example.com/arcgis/rest/services" {
		t.Errorf("APIBase = %v", cfg.APIBase)
	}
}
