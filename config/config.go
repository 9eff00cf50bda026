// Package config provides YAML configuration parsing for the storefront.
//
// This package enables running the storefront as a standalone binary with
// a configuration file, as an alternative to configuring [legado.New] in
// code.
//
// Example configuration:
//
//	title: Legado Muebles
//	port: 8080
//	whatsapp_number: ${LEGADO_WHATSAPP:-5492604364497}
//	storage_path: /var/lib/legado/state.json
//	products_per_page: 8
//	max_history: 10
//
//	probe:
//	  url: https://www.google.com/generate_204
//	  interval: 30s
//	  timeout: 5s
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultPort          = 8080
	defaultMaxHistory    = 10
	defaultPerPage       = 8
	defaultProbeInterval = 30 * time.Second

	// minProbeInterval keeps the connectivity check from hammering its target.
	minProbeInterval = 1 * time.Second
	maxProbeInterval = 1 * time.Hour
)

// Config is the root configuration structure.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// Title is the page title. Defaults to "Legado Muebles" if not set.
	Title string `yaml:"title"`

	// Port is the HTTP server port. Defaults to 8080.
	Port int `yaml:"port"`

	// WhatsAppNumber receives inquiries and quotes, digits only.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	WhatsAppNumber string `yaml:"whatsapp_number"`

	// StoragePath is the JSON file for saved preferences. Empty keeps them
	// in memory. Supports environment variable substitution.
	StoragePath string `yaml:"storage_path"`

	// CatalogFile replaces the embedded catalog. Supports environment
	// variable substitution.
	CatalogFile string `yaml:"catalog_file"`

	// ProductsPerPage is the grid page size. Defaults to 8.
	ProductsPerPage int `yaml:"products_per_page"`

	// MaxHistory is the number of state changes retained. Defaults to 10.
	MaxHistory int `yaml:"max_history"`

	// Probe configures the connectivity check. Omit it to disable the check.
	Probe *ProbeConfig `yaml:"probe"`
}

// ProbeConfig defines the connectivity check.
type ProbeConfig struct {
	// URL is requested with HEAD on every tick; 5xx or a transport error
	// marks the site offline. Supports environment variable substitution.
	URL string `yaml:"url"`

	// Interval is the time between checks. Defaults to 30s.
	// Must be between 1s and 1h.
	Interval Duration `yaml:"interval"`

	// Timeout bounds each check. Defaults to 5s.
	Timeout Duration `yaml:"timeout"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
// Group 1: variable name
// Group 2: the ":-default" part (if present, indicates a default was specified)
// Group 3: the default value (may be empty for ${VAR:-})
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
//
// Environment variables in the file are expanded before parsing.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in the title, WhatsApp number, file
// paths and probe URL. Defaults are applied for Port (8080), MaxHistory
// (10), ProductsPerPage (8) and the probe interval (30s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}
	if cfg.MaxHistory == 0 {
		cfg.MaxHistory = defaultMaxHistory
	}
	if cfg.ProductsPerPage == 0 {
		cfg.ProductsPerPage = defaultPerPage
	}
	if cfg.Probe != nil && cfg.Probe.Interval == 0 {
		cfg.Probe.Interval = Duration(defaultProbeInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	for _, f := range []struct {
		name string
		v    *string
	}{
		{"title", &c.Title},
		{"whatsapp_number", &c.WhatsAppNumber},
		{"storage_path", &c.StoragePath},
		{"catalog_file", &c.CatalogFile},
	} {
		expanded, err := expandEnvVars(*f.v)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.v = expanded
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", c.Port)
	}

	for _, r := range c.WhatsAppNumber {
		if r < '0' || r > '9' {
			return fmt.Errorf("whatsapp_number must contain digits only, got %q", c.WhatsAppNumber)
		}
	}

	if c.ProductsPerPage < 0 {
		return fmt.Errorf("products_per_page must be positive, got %d", c.ProductsPerPage)
	}
	if c.MaxHistory < 0 {
		return fmt.Errorf("max_history must be positive, got %d", c.MaxHistory)
	}

	if c.Probe != nil {
		if err := c.Probe.expandAndValidate(); err != nil {
			return fmt.Errorf("probe: %w", err)
		}
	}

	return nil
}

func (p *ProbeConfig) expandAndValidate() error {
	if p.URL == "" {
		return errors.New("url is required")
	}
	expanded, err := expandEnvVars(p.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	p.URL = expanded

	parsedURL, err := url.Parse(p.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	if p.Interval.Duration() < minProbeInterval {
		return fmt.Errorf("interval must be at least %s, got %s", minProbeInterval, p.Interval.Duration())
	}
	if p.Interval.Duration() > maxProbeInterval {
		return fmt.Errorf("interval must not exceed %s, got %s", maxProbeInterval, p.Interval.Duration())
	}

	if p.Timeout != 0 {
		if p.Timeout.Duration() < 0 {
			return fmt.Errorf("timeout cannot be negative, got %s", p.Timeout.Duration())
		}
		if p.Timeout.Duration() > p.Interval.Duration() {
			return fmt.Errorf("timeout %s must not exceed interval %s", p.Timeout.Duration(), p.Interval.Duration())
		}
	}
	return nil
}
