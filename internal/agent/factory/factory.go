package factory

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"time"

	"agent-dispatch/internal/agent"
	"agent-dispatch/internal/agent/canned"
	"agent-dispatch/internal/agent/remote"
	"agent-dispatch/internal/config"
)

const (
	defaultDialTimeout     = 10 * time.Second
	defaultKeepAlive       = 30 * time.Second
	defaultIdleConnTimeout = 90 * time.Second
)

// RegisterConfiguredAgents constructs agents from configuration and stores them in the registry.
// Agents with an endpoint share one HTTP client; the rest answer with canned text.
func RegisterConfiguredAgents(cfg config.Config, registry *agent.Registry) error {
	if registry == nil {
		return errors.New("registry must not be nil")
	}

	client := newHTTPClient(cfg.Timeout)

	names := make([]string, 0, len(cfg.Agents))
	for name := range cfg.Agents {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		agentCfg := cfg.Agents[name]

		var impl agent.Agent
		if agentCfg.Remote() {
			remoteAgent, err := remote.New(name, cfg.BaseURL, agentCfg, client)
			if err != nil {
				return fmt.Errorf("initialise agent %s: %w", name, err)
			}
			impl = remoteAgent
		} else {
			impl = canned.New(name, agentCfg.Description, agentCfg.Closing)
		}

		if err := registry.Register(impl); err != nil {
			return fmt.Errorf("register agent %s: %w", name, err)
		}
	}

	for alias, target := range cfg.Aliases {
		if err := registry.Alias(alias, target); err != nil {
			return fmt.Errorf("register alias %s: %w", alias, err)
		}
	}

	return nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: defaultDialTimeout, KeepAlive: defaultKeepAlive}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          50,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}
