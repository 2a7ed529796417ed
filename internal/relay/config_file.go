package relay

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// fileConfig mirrors the TOML configuration file layout. All fields are
// optional; zero values are treated as unset.
type fileConfig struct {
	SpoolDir     string `toml:"spool_dir"`
	ServiceURL   string `toml:"service_url"`
	AuthKey      string `toml:"auth_key"`
	AppName      string `toml:"app_name"`
	PollInterval string `toml:"poll_interval"`
	HTTPTimeout  string `toml:"http_timeout"`
	Once         *bool  `toml:"once"`
}

// DefaultConfigPath returns the default configuration file location,
// ~/.crash-relay/config.toml. Returns an empty string if the home
// directory cannot be determined.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".crash-relay", "config.toml")
}

// FileExists reports whether the given path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// LoadFileConfig reads and parses a TOML configuration file.
func LoadFileConfig(path string) (*fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &fc, nil
}

// ApplyFileConfig merges file configuration into cfg, skipping any field
// whose flag was set explicitly on the command line.
func ApplyFileConfig(cfg *Config, fc *fileConfig, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("spool-dir", fc.SpoolDir, &cfg.SpoolDir)
	s.setString("service-url", fc.ServiceURL, &cfg.ServiceURL)
	s.setString("auth-key", fc.AuthKey, &cfg.AuthKey)
	s.setString("app-name", fc.AppName, &cfg.AppName)
	if err := s.setDuration("poll-interval", fc.PollInterval, &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", fc.HTTPTimeout, &cfg.HTTPTimeout); err != nil {
		return err
	}
	s.setBool("once", fc.Once, &cfg.Once)

	return nil
}
