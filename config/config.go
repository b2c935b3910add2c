// Package config provides YAML configuration parsing for statelet.
//
// This package enables config-driven use of statelet (the cmd/statelet
// CLI, or applications that declare their API resources in a file) as an
// alternative to the programmatic SDK approach.
//
// Example configuration:
//
//	base_url: https://api.example.com
//	timeout: 5s
//	list_key: results
//	headers:
//	  Authorization: Bearer ${API_TOKEN}
//
//	resources:
//	  - name: users
//	    path: /users
//	  - name: tasks
//	    path: /tasks
//	    list_key: data.items
//	    insert: head
//	    interval: 10s
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultListKey  = "results"
	defaultInterval = 15 * time.Second

	// minInterval keeps watch loops from hammering an API by accident.
	minInterval = 1 * time.Second
	maxInterval = 1 * time.Hour
)

// Config is the root configuration structure for statelet.
//
// It maps directly to the YAML configuration file structure.
// Use [Load] or [Parse] to create a Config from YAML.
type Config struct {
	// BaseURL is the API base all resource paths resolve against.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	BaseURL string `yaml:"base_url"`

	// Timeout is the per-request timeout. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// ListKey is the envelope field list responses wrap entities in,
	// for resources that don't override it. Defaults to "results".
	// Dot notation navigates nested objects ("data.items").
	ListKey string `yaml:"list_key"`

	// Headers are sent with every request. Values support environment
	// variable substitution.
	Headers map[string]string `yaml:"headers"`

	// Interval is the default refresh interval for watched resources.
	// Defaults to 15s.
	Interval Duration `yaml:"interval"`

	// Resources declares the API collections statelet manages.
	Resources []ResourceConfig `yaml:"resources"`
}

// ResourceConfig declares a single API collection.
type ResourceConfig struct {
	// Name identifies the resource in the CLI and in logs.
	Name string `yaml:"name"`

	// Path is the collection path, resolved against base_url.
	Path string `yaml:"path"`

	// ListKey overrides the global list_key for this resource.
	ListKey string `yaml:"list_key"`

	// Insert is where created entities land in cached lists:
	// "head" or "last". Defaults to "last".
	Insert string `yaml:"insert"`

	// Interval overrides the global refresh interval for this resource.
	// Must be between 1s and 1h.
	Interval Duration `yaml:"interval"`
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
		// already have an error, skip processing
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
// Environment variables in the file are expanded before validation.
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
// Environment variables are expanded in base_url and header values.
// Defaults are applied for Timeout (10s), ListKey ("results"), and
// Interval (15s).
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(defaultTimeout)
	}
	if cfg.ListKey == "" {
		cfg.ListKey = defaultListKey
	}
	if cfg.Interval == 0 {
		cfg.Interval = Duration(defaultInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base_url is required")
	}
	expanded, err := expandEnvVars(c.BaseURL)
	if err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	c.BaseURL = expanded

	parsed, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("invalid base_url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("base_url scheme must be http or https, got %q", parsed.Scheme)
	}

	if c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	if err := c.validateInterval(c.Interval, "interval"); err != nil {
		return err
	}

	if len(c.Resources) == 0 {
		return fmt.Errorf("at least one resource is required")
	}

	seen := make(map[string]bool, len(c.Resources))
	for i := range c.Resources {
		r := &c.Resources[i]

		if r.Name == "" {
			return fmt.Errorf("resources[%d]: name is required", i)
		}
		if seen[r.Name] {
			return fmt.Errorf("duplicate resource name: %q", r.Name)
		}
		seen[r.Name] = true

		if r.Path == "" {
			return fmt.Errorf("resources[%d] (%s): path is required", i, r.Name)
		}

		if r.Insert != "" && r.Insert != "head" && r.Insert != "last" {
			return fmt.Errorf("resources[%d] (%s): insert must be \"head\" or \"last\", got %q", i, r.Name, r.Insert)
		}

		if r.Interval != 0 {
			if err := c.validateInterval(r.Interval, fmt.Sprintf("resources[%d] (%s): interval", i, r.Name)); err != nil {
				return err
			}
		}
	}

	return nil
}

func (c *Config) validateInterval(d Duration, field string) error {
	if d.Duration() < minInterval {
		return fmt.Errorf("%s must be at least %s, got %s", field, minInterval, d.Duration())
	}
	if d.Duration() > maxInterval {
		return fmt.Errorf("%s must not exceed %s, got %s", field, maxInterval, d.Duration())
	}
	return nil
}

// Resource returns the resource config with the given name.
func (c *Config) Resource(name string) (ResourceConfig, bool) {
	for _, r := range c.Resources {
		if r.Name == name {
			return r, true
		}
	}
	return ResourceConfig{}, false
}

// ResourceInterval returns the effective refresh interval for r: its own
// interval when set, the global one otherwise.
func (c *Config) ResourceInterval(r ResourceConfig) time.Duration {
	if r.Interval != 0 {
		return r.Interval.Duration()
	}
	return c.Interval.Duration()
}
