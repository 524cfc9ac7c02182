package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func clearEnv(t *testing.T) {
	t.Helper()
	t.Setenv(EnvBaseURL, "")
	t.Setenv(EnvPort, "")
	t.Setenv(EnvHistoryDSN, "")
}

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != DefaultBaseURL {
		t.Fatalf("expected default base url, got %q", cfg.BaseURL)
	}
	market, ok := cfg.Agents[AgentMarketIntelligence]
	if !ok {
		t.Fatalf("expected %s agent in defaults", AgentMarketIntelligence)
	}
	if market.PromptField != "company_information" || market.FileField != "supporting_documents" {
		t.Fatalf("unexpected market intelligence fields: %+v", market)
	}
	if cfg.History.Enabled() {
		t.Fatal("history should be disabled by default")
	}
}

func TestLoadOverlaysFileOnDefaults(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
server:
  port: 9090
base_url: http://localhost:8000
timeout: 15s
agents:
  sourcing_agent:
    description: "Sourcing: I find candidates."
aliases:
  jd_agent: jd_agenet
history:
  driver: sqlite
  dsn: history.sqlite
  retention: 48h
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 9090 {
		t.Fatalf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected base url %q", cfg.BaseURL)
	}
	if cfg.Timeout != 15*time.Second {
		t.Fatalf("expected 15s timeout, got %s", cfg.Timeout)
	}
	if _, ok := cfg.Agents[AgentInterviewReport]; !ok {
		t.Fatal("built-in agents should survive the overlay")
	}
	sourcing, ok := cfg.Agents["sourcing_agent"]
	if !ok {
		t.Fatal("expected sourcing_agent from file")
	}
	if sourcing.Remote() {
		t.Fatal("agent without endpoint should be canned")
	}
	if cfg.Aliases["jd_agent"] != AgentJobDescription {
		t.Fatalf("unexpected aliases %v", cfg.Aliases)
	}
	if cfg.History.Retention != 48*time.Hour {
		t.Fatalf("expected 48h retention, got %s", cfg.History.Retention)
	}
	if cfg.History.PruneSchedule != defaultPruneSchedule {
		t.Fatalf("prune schedule default should be kept, got %q", cfg.History.PruneSchedule)
	}
}

func TestLoadAppliesEnvironmentOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaseURL, "http://127.0.0.1:5000")
	t.Setenv(EnvPort, "7070")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BaseURL != "http://127.0.0.1:5000" {
		t.Fatalf("expected env base url, got %q", cfg.BaseURL)
	}
	if cfg.Server.Port != 7070 {
		t.Fatalf("expected env port, got %d", cfg.Server.Port)
	}
}

func TestLoadRejectsNonNumericPort(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvPort, "eighty")

	if _, err := Load(""); err == nil || !strings.Contains(err.Error(), EnvPort) {
		t.Fatalf("expected port env error, got %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestValidateRejectsBadConfigs(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{
			name:   "port",
			mutate: func(c *Config) { c.Server.Port = 70000 },
			want:   "server.port",
		},
		{
			name:   "base url scheme",
			mutate: func(c *Config) { c.BaseURL = "ftp://example.com" },
			want:   "http or https",
		},
		{
			name: "endpoint without slash",
			mutate: func(c *Config) {
				a := c.Agents[AgentJobDescription]
				a.Endpoint = "job_description"
				c.Agents[AgentJobDescription] = a
			},
			want: "must start with /",
		},
		{
			name: "missing response fields",
			mutate: func(c *Config) {
				a := c.Agents[AgentInterviewReport]
				a.ResponseFields = nil
				c.Agents[AgentInterviewReport] = a
			},
			want: "response field",
		},
		{
			name: "bad header",
			mutate: func(c *Config) {
				a := c.Agents[AgentMarketIntelligence]
				a.Headers = Headers{"X Bad": "1"}
				c.Agents[AgentMarketIntelligence] = a
			},
			want: "canonical HTTP header",
		},
		{
			name: "content type header",
			mutate: func(c *Config) {
				a := c.Agents[AgentInterviewReport]
				a.Headers = Headers{"Content-Type": "application/json"}
				c.Agents[AgentInterviewReport] = a
			},
			want: "set by the multipart form",
		},
		{
			name:   "alias to unknown agent",
			mutate: func(c *Config) { c.Aliases = map[string]string{"x": "nope"} },
			want:   "unknown agent",
		},
		{
			name:   "alias shadows agent",
			mutate: func(c *Config) { c.Aliases = map[string]string{AgentJobDescription: AgentInterviewReport} },
			want:   "conflicts",
		},
		{
			name:   "history driver",
			mutate: func(c *Config) { c.History.Driver = "mysql"; c.History.DSN = "x" },
			want:   "history.driver",
		},
		{
			name:   "history dsn",
			mutate: func(c *Config) { c.History.Driver = HistoryDriverSQLite },
			want:   "history.dsn",
		},
		{
			name: "prune schedule",
			mutate: func(c *Config) {
				c.History.Driver = HistoryDriverSQLite
				c.History.DSN = "h.sqlite"
				c.History.PruneSchedule = "every tuesday"
			},
			want: "prune_schedule",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected validation error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}
