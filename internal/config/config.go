package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Supported history drivers.
const (
	HistoryDriverSQLite   = "sqlite"
	HistoryDriverPostgres = "postgres"
)

// Environment variables that override file configuration.
const (
	EnvBaseURL    = "AGENT_DISPATCH_BASE_URL"
	EnvPort       = "AGENT_DISPATCH_PORT"
	EnvHistoryDSN = "AGENT_DISPATCH_HISTORY_DSN"
)

// Config represents the application configuration parsed from YAML.
type Config struct {
	Server  ServerConfig           `yaml:"server"`
	BaseURL string                 `yaml:"base_url"`
	Timeout time.Duration          `yaml:"timeout"`
	Agents  map[string]AgentConfig `yaml:"agents"`
	Aliases map[string]string      `yaml:"aliases"`
	History HistoryConfig          `yaml:"history"`
}

// ServerConfig defines listener configuration.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// AgentConfig describes how a single agent is reached and how its replies are read.
// An agent without an endpoint answers with canned text.
type AgentConfig struct {
	Label          string      `yaml:"label"`
	Description    string      `yaml:"description"`
	Closing        string      `yaml:"closing"`
	Endpoint       string      `yaml:"endpoint"`
	PromptField    string      `yaml:"prompt_field"`
	FileField      string      `yaml:"file_field"`
	AttachmentSlot string      `yaml:"attachment_slot"`
	ResponseFields []string    `yaml:"response_fields"`
	Guidance       string      `yaml:"guidance"`
	EmptyMessage   string      `yaml:"empty_message"`
	ParseFailure   string      `yaml:"parse_failure"`
	Rejections     []Rejection `yaml:"rejections"`
	Headers        Headers     `yaml:"headers"`
}

// Rejection turns a successful reply containing a marker into an error message.
type Rejection struct {
	Contains string `yaml:"contains"`
	Message  string `yaml:"message"`
}

// Headers contains additional HTTP headers to send with an agent request.
type Headers map[string]string

// HistoryConfig configures the optional dispatch history store.
type HistoryConfig struct {
	Driver        string        `yaml:"driver"`
	DSN           string        `yaml:"dsn"`
	Retention     time.Duration `yaml:"retention"`
	PruneSchedule string        `yaml:"prune_schedule"`
}

// Enabled reports whether dispatches should be recorded.
func (h HistoryConfig) Enabled() bool {
	return strings.TrimSpace(h.Driver) != ""
}

// Remote reports whether the agent is backed by an HTTP endpoint.
func (a AgentConfig) Remote() bool {
	return strings.TrimSpace(a.Endpoint) != ""
}

// Load builds the configuration from the built-in defaults, an optional YAML file,
// a .env file in the working directory and the process environment, then validates it.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		absPath, err := filepath.Abs(path)
		if err != nil {
			return Config{}, fmt.Errorf("resolve config path: %w", err)
		}

		data, err := os.ReadFile(absPath)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %q: %w", absPath, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %q: %w", absPath, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env file: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvBaseURL)); v != "" {
		c.BaseURL = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvPort)); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer, got %q", EnvPort, v)
		}
		c.Server.Port = port
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDSN)); v != "" {
		c.History.DSN = v
	}
	return nil
}

// Validate performs strict sanity checks on the configuration.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be a valid TCP port, got %d", c.Server.Port)
	}
	if err := validateBaseURL(c.BaseURL); err != nil {
		return err
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative, got %s", c.Timeout)
	}
	if len(c.Agents) == 0 {
		return errors.New("at least one agent must be configured")
	}

	for name, agent := range c.Agents {
		if err := validateAgent(name, agent); err != nil {
			return err
		}
	}

	for alias, target := range c.Aliases {
		if strings.TrimSpace(alias) == "" {
			return errors.New("alias name must not be empty")
		}
		if _, exists := c.Agents[alias]; exists {
			return fmt.Errorf("alias %q conflicts with a configured agent", alias)
		}
		if _, exists := c.Agents[target]; !exists {
			return fmt.Errorf("alias %q references unknown agent %q", alias, target)
		}
	}

	return validateHistory(c.History)
}

func validateBaseURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return errors.New("base_url must be provided")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("base_url %q is not a valid URL: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base_url %q must use http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("base_url %q must include a host", raw)
	}
	return nil
}

func validateAgent(name string, agent AgentConfig) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("agent name must not be empty")
	}
	if !agent.Remote() {
		return nil
	}

	if !strings.HasPrefix(agent.Endpoint, "/") {
		return fmt.Errorf("agent %s: endpoint %q must start with /", name, agent.Endpoint)
	}
	if strings.TrimSpace(agent.PromptField) == "" {
		return fmt.Errorf("agent %s: prompt_field must be provided", name)
	}
	if strings.TrimSpace(agent.FileField) == "" {
		return fmt.Errorf("agent %s: file_field must be provided", name)
	}
	if len(agent.ResponseFields) == 0 {
		return fmt.Errorf("agent %s: at least one response field must be configured", name)
	}
	for _, field := range agent.ResponseFields {
		if strings.TrimSpace(field) == "" {
			return fmt.Errorf("agent %s: response field must not be empty", name)
		}
	}
	for _, rejection := range agent.Rejections {
		if rejection.Contains == "" {
			return fmt.Errorf("agent %s: rejection marker must not be empty", name)
		}
	}
	for headerKey := range agent.Headers {
		if !isCanonicalHTTPHeader(headerKey) {
			return fmt.Errorf("agent %s: header %q is not a valid canonical HTTP header", name, headerKey)
		}
		if headerKey == "Content-Type" {
			return fmt.Errorf("agent %s: header %q is set by the multipart form and cannot be configured", name, headerKey)
		}
	}
	return nil
}

func validateHistory(h HistoryConfig) error {
	switch h.Driver {
	case "":
		return nil
	case HistoryDriverSQLite, HistoryDriverPostgres:
	default:
		return fmt.Errorf("history.driver %q must be one of %q or %q", h.Driver, HistoryDriverSQLite, HistoryDriverPostgres)
	}

	if strings.TrimSpace(h.DSN) == "" {
		return fmt.Errorf("history.dsn must be provided for driver %s", h.Driver)
	}
	if h.Retention < 0 {
		return fmt.Errorf("history.retention must not be negative, got %s", h.Retention)
	}
	if h.PruneSchedule != "" {
		if _, err := cron.ParseStandard(h.PruneSchedule); err != nil {
			return fmt.Errorf("history.prune_schedule %q: %w", h.PruneSchedule, err)
		}
	}
	return nil
}

func isCanonicalHTTPHeader(header string) bool {
	if header == "" {
		return false
	}

	for _, r := range header {
		if !(r == '-' || (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z')) {
			return false
		}
	}
	return true
}
