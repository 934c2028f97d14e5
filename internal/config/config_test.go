package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Pipeline.ProbeConcurrency != 80 || cfg.Pipeline.RecheckConcurrency != 25 || cfg.Pipeline.FetchConcurrency != 60 {
		t.Fatalf("unexpected default stage bounds: %+v", cfg.Pipeline)
	}
	if got := cfg.ProbeTimeout(); got != 5*time.Second {
		t.Fatalf("expected probe timeout 5s, got %v", got)
	}
	if got := cfg.BackoffMax(); got != 5*time.Second {
		t.Fatalf("expected backoff ceiling 5s, got %v", got)
	}
	if cfg.HTTP.MaxRetries != 3 {
		t.Fatalf("expected 3 retries, got %d", cfg.HTTP.MaxRetries)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
server:
  port: 9090
auth:
  enabled: true
  api_key: secret
pipeline:
  probe_concurrency: 10
  recheck_concurrency: 5
  fetch_concurrency: 8
http:
  probe_timeout_seconds: 3
  recheck_timeout_seconds: 6
  fetch_timeout_seconds: 20
  max_retries: 5
  backoff_initial_ms: 100
  backoff_max_ms: 500
  user_agent: enricher-test
  requests_per_second: 4.5
extract:
  social_blocklist: ["facebook.com", "tiktok.com"]
db:
  dsn: postgres://localhost/enricher
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if !cfg.Auth.Enabled || cfg.Auth.APIKey != "secret" {
		t.Fatalf("expected auth enabled with secret key")
	}
	if cfg.Pipeline.ProbeConcurrency != 10 || cfg.Pipeline.FetchConcurrency != 8 {
		t.Fatalf("expected pipeline overrides to apply: %+v", cfg.Pipeline)
	}
	if cfg.HTTP.RequestsPerSecond != 4.5 {
		t.Fatalf("expected rps override, got %v", cfg.HTTP.RequestsPerSecond)
	}
	if len(cfg.Extract.SocialBlocklist) != 2 || cfg.Extract.SocialBlocklist[1] != "tiktok.com" {
		t.Fatalf("expected blocklist override: %+v", cfg.Extract.SocialBlocklist)
	}
	if got := cfg.FetchTimeout(); got != 20*time.Second {
		t.Fatalf("expected fetch timeout 20s, got %v", got)
	}
	if cfg.Logging.Development {
		t.Fatalf("expected production logging")
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Server: ServerConfig{Port: 8080},
		Pipeline: PipelineConfig{
			ProbeConcurrency:   80,
			RecheckConcurrency: 25,
			FetchConcurrency:   60,
		},
		HTTP: HTTPConfig{ProbeTimeoutSeconds: 5, FetchTimeoutSeconds: 10},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid port",
			cfg: func() Config {
				c := base
				c.Server.Port = 0
				return c
			}(),
			want: "server.port",
		},
		{
			name: "invalid probe concurrency",
			cfg: func() Config {
				c := base
				c.Pipeline.ProbeConcurrency = 0
				return c
			}(),
			want: "pipeline.probe_concurrency",
		},
		{
			name: "invalid recheck concurrency",
			cfg: func() Config {
				c := base
				c.Pipeline.RecheckConcurrency = -1
				return c
			}(),
			want: "pipeline.recheck_concurrency",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.HTTP.FetchTimeoutSeconds = 0
				return c
			}(),
			want: "http timeouts",
		},
		{
			name: "negative retries",
			cfg: func() Config {
				c := base
				c.HTTP.MaxRetries = -1
				return c
			}(),
			want: "http.max_retries",
		},
		{
			name: "auth missing api key",
			cfg: func() Config {
				c := base
				c.Auth.Enabled = true
				return c
			}(),
			want: "auth.api_key",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
