package relay

import (
	"fmt"
	"time"
)

// DefaultServiceURL is the default crash ingestion endpoint.
const DefaultServiceURL = "https://crash-ingest.strongdm.com"

// Config holds the configuration for the spool relay agent.
type Config struct {
	// SpoolDir is the directory drained for pending crash reports.
	SpoolDir string

	// ServiceURL is the base URL of the ingestion service.
	ServiceURL string

	// AuthKey is the API authentication key.
	AuthKey string

	// AppName identifies the host application in upload headers.
	AppName string

	// PollInterval is how often the spool directory is rescanned when no
	// filesystem events arrive.
	PollInterval time.Duration

	// HTTPTimeout bounds a single upload request.
	HTTPTimeout time.Duration

	// Once drains the spool a single time and exits.
	Once bool
}

// DefaultConfig returns a Config with default values. The auth key has no
// default; it arrives via flag, environment, or config file (see
// ApplyEnvConfig for the precedence rules).
func DefaultConfig() Config {
	return Config{
		ServiceURL:   DefaultServiceURL,
		PollInterval: 30 * time.Second,
		HTTPTimeout:  30 * time.Second,
	}
}

// Validate checks the configuration for errors and sets derived defaults.
func (c *Config) Validate() error {
	if c.SpoolDir == "" {
		return fmt.Errorf("spool-dir is required")
	}

	if c.ServiceURL == "" {
		c.ServiceURL = DefaultServiceURL
	}
	// Ensure no trailing slash
	if len(c.ServiceURL) > 0 && c.ServiceURL[len(c.ServiceURL)-1] == '/' {
		c.ServiceURL = c.ServiceURL[:len(c.ServiceURL)-1]
	}

	if c.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive")
	}

	return nil
}

// configSetter helps apply configuration values while respecting flag
// precedence. It only applies values if the corresponding flag hasn't been
// explicitly set.
type configSetter struct {
	changed map[string]bool
}

// newConfigSetter creates a new setter with the given changed flags map.
func newConfigSetter(changed map[string]bool) *configSetter {
	return &configSetter{changed: changed}
}

// setString sets a string value if not empty and flag not changed.
func (s *configSetter) setString(flag, value string, dst *string) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value
}

// setDuration parses and sets a duration from string if valid and flag not changed.
func (s *configSetter) setDuration(flag, value string, dst *time.Duration) error {
	if value == "" || s.changed[flag] {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("parse %s: %w", flag, err)
	}
	*dst = d
	return nil
}

// setBool sets a bool value from a pointer if not nil and flag not changed.
func (s *configSetter) setBool(flag string, value *bool, dst *bool) {
	if value == nil || s.changed[flag] {
		return
	}
	*dst = *value
}

// setBoolFromString parses a string to bool and sets the destination.
// Accepts "true", "1" as true, anything else as false.
// Used for environment variables that come as strings.
func (s *configSetter) setBoolFromString(flag, value string, dst *bool) {
	if value == "" || s.changed[flag] {
		return
	}
	*dst = value == "true" || value == "1"
}
