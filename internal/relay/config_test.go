package relay

import (
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.ServiceURL != DefaultServiceURL {
		t.Errorf("ServiceURL = %v, want %v", cfg.ServiceURL, DefaultServiceURL)
	}
	if cfg.PollInterval != 30*time.Second {
		t.Errorf("PollInterval = %v, want 30s", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %v, want 30s", cfg.HTTPTimeout)
	}
	// The auth key only comes from flag, env, or file.
	if cfg.AuthKey != "" {
		t.Errorf("AuthKey = %q, want empty default", cfg.AuthKey)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name           string
		config         Config
		wantErr        bool
		wantServiceURL string
	}{
		{
			name: "valid minimal config",
			config: Config{
				SpoolDir:     "/tmp/spool",
				ServiceURL:   "http://localhost:8080",
				PollInterval: time.Second,
				HTTPTimeout:  time.Second,
			},
			wantErr:        false,
			wantServiceURL: "http://localhost:8080",
		},
		{
			name: "missing spool dir",
			config: Config{
				ServiceURL:   "http://localhost:8080",
				PollInterval: time.Second,
				HTTPTimeout:  time.Second,
			},
			wantErr: true,
		},
		{
			name: "empty service url falls back to default",
			config: Config{
				SpoolDir:     "/tmp/spool",
				PollInterval: time.Second,
				HTTPTimeout:  time.Second,
			},
			wantErr:        false,
			wantServiceURL: DefaultServiceURL,
		},
		{
			name: "trailing slash trimmed",
			config: Config{
				SpoolDir:     "/tmp/spool",
				ServiceURL:   "http://localhost:8080/",
				PollInterval: time.Second,
				HTTPTimeout:  time.Second,
			},
			wantErr:        false,
			wantServiceURL: "http://localhost:8080",
		},
		{
			name: "zero poll interval",
			config: Config{
				SpoolDir:    "/tmp/spool",
				ServiceURL:  "http://localhost:8080",
				HTTPTimeout: time.Second,
			},
			wantErr: true,
		},
		{
			name: "zero http timeout",
			config: Config{
				SpoolDir:     "/tmp/spool",
				ServiceURL:   "http://localhost:8080",
				PollInterval: time.Second,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && tt.config.ServiceURL != tt.wantServiceURL {
				t.Errorf("ServiceURL = %v, want %v", tt.config.ServiceURL, tt.wantServiceURL)
			}
		})
	}
}

func TestConfigSetter_FlagPrecedence(t *testing.T) {
	cfg := Config{SpoolDir: "/from/flag", PollInterval: time.Second}
	s := newConfigSetter(map[string]bool{"spool-dir": true})

	s.setString("spool-dir", "/from/file", &cfg.SpoolDir)
	if cfg.SpoolDir != "/from/flag" {
		t.Errorf("SpoolDir = %v, want flag value preserved", cfg.SpoolDir)
	}

	if err := s.setDuration("poll-interval", "5s", &cfg.PollInterval); err != nil {
		t.Fatalf("setDuration: %v", err)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %v, want 5s", cfg.PollInterval)
	}

	if err := s.setDuration("poll-interval", "bogus", &cfg.PollInterval); err == nil {
		t.Error("setDuration accepted invalid duration")
	}
}
