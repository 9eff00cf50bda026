package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestParse_MinimalConfig(t *testing.T) {
	cfg, err := Parse([]byte(`title: Legado Muebles`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.MaxHistory != 10 {
		t.Errorf("MaxHistory = %d, want 10", cfg.MaxHistory)
	}
	if cfg.ProductsPerPage != 8 {
		t.Errorf("ProductsPerPage = %d, want 8", cfg.ProductsPerPage)
	}
	if cfg.Probe != nil {
		t.Errorf("Probe = %+v, want nil", cfg.Probe)
	}
}

func TestParse_EmptyConfig(t *testing.T) {
	cfg, err := Parse([]byte(""))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
}

func TestParse_FullConfig(t *testing.T) {
	yaml := `
title: Legado Outlet
port: 9090
whatsapp_number: "5491100000000"
storage_path: /tmp/legado/state.json
catalog_file: /etc/legado/catalog.yaml
products_per_page: 12
max_history: 25

probe:
  url: https://www.google.com/generate_204
  interval: 1m
  timeout: 3s
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Legado Outlet" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.WhatsAppNumber != "5491100000000" {
		t.Errorf("WhatsAppNumber = %q", cfg.WhatsAppNumber)
	}
	if cfg.StoragePath != "/tmp/legado/state.json" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.CatalogFile != "/etc/legado/catalog.yaml" {
		t.Errorf("CatalogFile = %q", cfg.CatalogFile)
	}
	if cfg.ProductsPerPage != 12 || cfg.MaxHistory != 25 {
		t.Errorf("ProductsPerPage/MaxHistory = %d/%d", cfg.ProductsPerPage, cfg.MaxHistory)
	}
	if cfg.Probe == nil {
		t.Fatal("Probe = nil")
	}
	if cfg.Probe.Interval.Duration() != time.Minute {
		t.Errorf("Probe.Interval = %v, want 1m", cfg.Probe.Interval.Duration())
	}
	if cfg.Probe.Timeout.Duration() != 3*time.Second {
		t.Errorf("Probe.Timeout = %v, want 3s", cfg.Probe.Timeout.Duration())
	}
}

func TestParse_ProbeIntervalDefault(t *testing.T) {
	cfg, err := Parse([]byte(`
probe:
  url: https://example.com/ping
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Probe.Interval.Duration() != 30*time.Second {
		t.Errorf("Probe.Interval = %v, want 30s", cfg.Probe.Interval.Duration())
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("LEGADO_WHATSAPP", "5492600000000")
	t.Setenv("LEGADO_DATA", "/data")

	cfg, err := Parse([]byte(`
whatsapp_number: ${LEGADO_WHATSAPP}
storage_path: ${LEGADO_DATA}/state.json
probe:
  url: ${PROBE_URL:-https://example.com/ping}
`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.WhatsAppNumber != "5492600000000" {
		t.Errorf("WhatsAppNumber = %q", cfg.WhatsAppNumber)
	}
	if cfg.StoragePath != "/data/state.json" {
		t.Errorf("StoragePath = %q", cfg.StoragePath)
	}
	if cfg.Probe.URL != "https://example.com/ping" {
		t.Errorf("Probe.URL = %q, want default", cfg.Probe.URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	_, err := Parse([]byte(`storage_path: ${LEGADO_MISSING_VAR}/state.json`))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "storage_path") || !strings.Contains(err.Error(), "LEGADO_MISSING_VAR") {
		t.Errorf("error = %v, want field and variable name", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "port out of range",
			yaml:    `port: 70000`,
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "negative port",
			yaml:    `port: -1`,
			wantErr: "port must be between 1 and 65535",
		},
		{
			name:    "whatsapp with symbols",
			yaml:    `whatsapp_number: "+54 9 260"`,
			wantErr: "whatsapp_number must contain digits only",
		},
		{
			name:    "negative page size",
			yaml:    `products_per_page: -2`,
			wantErr: "products_per_page must be positive",
		},
		{
			name:    "negative history",
			yaml:    `max_history: -1`,
			wantErr: "max_history must be positive",
		},
		{
			name: "probe without url",
			yaml: `
probe:
  interval: 10s
`,
			wantErr: "probe: url is required",
		},
		{
			name: "probe bad scheme",
			yaml: `
probe:
  url: ftp://example.com
`,
			wantErr: "url scheme must be http or https",
		},
		{
			name: "probe no scheme",
			yaml: `
probe:
  url: example.com/ping
`,
			wantErr: "url scheme must be http or https",
		},
		{
			name: "probe interval too short",
			yaml: `
probe:
  url: https://example.com
  interval: 500ms
`,
			wantErr: "interval must be at least 1s",
		},
		{
			name: "probe interval too long",
			yaml: `
probe:
  url: https://example.com
  interval: 2h
`,
			wantErr: "interval must not exceed 1h",
		},
		{
			name: "probe negative timeout",
			yaml: `
probe:
  url: https://example.com
  timeout: -1s
`,
			wantErr: "timeout cannot be negative",
		},
		{
			name: "probe timeout above interval",
			yaml: `
probe:
  url: https://example.com
  interval: 5s
  timeout: 10s
`,
			wantErr: "must not exceed interval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Parse() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("port: [not, a, number"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	_, err := Parse([]byte(`
probe:
  url: https://example.com
  interval: soon
`))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v, want invalid duration", err)
	}
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	tests := []struct {
		input string
		want  time.Duration
	}{
		{"1s", time.Second},
		{"500ms", 500 * time.Millisecond},
		{"1m30s", 90 * time.Second},
		{"1h", time.Hour},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cfg, err := Parse([]byte("probe:\n  url: https://example.com\n  interval: 1h\n  timeout: " + tt.input + "\n"))
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := cfg.Probe.Timeout.Duration(); got != tt.want {
				t.Errorf("Duration = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "")

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "legado.yaml")
	if err := os.WriteFile(path, []byte("port: 9191\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9191 {
		t.Errorf("Port = %d, want 9191", cfg.Port)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Load() error = %v, want read failure", err)
	}
}
