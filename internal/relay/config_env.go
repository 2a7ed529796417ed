package relay

import "os"

// Environment variable names recognized by the relay agent.
const (
	EnvSpoolDir     = "CRASH_RELAY_SPOOL_DIR"
	EnvServiceURL   = "CRASH_RELAY_SERVICE_URL"
	EnvAuthKey      = "CRASH_RELAY_AUTH_KEY"
	EnvAppName      = "CRASH_RELAY_APP_NAME"
	EnvPollInterval = "CRASH_RELAY_POLL_INTERVAL"
	EnvHTTPTimeout  = "CRASH_RELAY_HTTP_TIMEOUT"
	EnvOnce         = "CRASH_RELAY_ONCE"
)

// ApplyEnvConfig merges environment variables into cfg, skipping any field
// whose flag was set explicitly on the command line. Environment values take
// precedence over the configuration file but not over flags.
func ApplyEnvConfig(cfg *Config, changed map[string]bool) error {
	s := newConfigSetter(changed)

	s.setString("spool-dir", os.Getenv(EnvSpoolDir), &cfg.SpoolDir)
	s.setString("service-url", os.Getenv(EnvServiceURL), &cfg.ServiceURL)
	s.setString("auth-key", os.Getenv(EnvAuthKey), &cfg.AuthKey)
	s.setString("app-name", os.Getenv(EnvAppName), &cfg.AppName)
	if err := s.setDuration("poll-interval", os.Getenv(EnvPollInterval), &cfg.PollInterval); err != nil {
		return err
	}
	if err := s.setDuration("http-timeout", os.Getenv(EnvHTTPTimeout), &cfg.HTTPTimeout); err != nil {
		return err
	}
	s.setBoolFromString("once", os.Getenv(EnvOnce), &cfg.Once)

	return nil
}
