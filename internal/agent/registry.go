package agent

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"agent-dispatch/internal/models"
)

// ErrUnknownAgent indicates the requested agent is not registered.
var ErrUnknownAgent = errors.New("unknown agent")

// ErrDuplicateAgent indicates an attempt to register the same agent twice.
var ErrDuplicateAgent = errors.New("agent already registered")

// Agent answers a payload with a display string.
type Agent interface {
	Name() string
	Describe() models.Agent
	Chat(ctx context.Context, payload models.Payload) (*models.Reply, error)
}

// Registry maintains a mapping of agent labels to agents.
type Registry struct {
	mu      sync.RWMutex
	agents  map[string]Agent
	aliases map[string]string
}

// NewRegistry constructs an empty agent registry.
func NewRegistry() *Registry {
	return &Registry{
		agents:  make(map[string]Agent),
		aliases: make(map[string]string),
	}
}

// Register adds the agent under its own name.
func (r *Registry) Register(a Agent) error {
	if a == nil {
		return errors.New("agent must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	name := a.Name()
	if _, exists := r.agents[name]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateAgent, name)
	}
	if _, exists := r.aliases[name]; exists {
		return fmt.Errorf("agent %q conflicts with existing alias", name)
	}
	r.agents[name] = a
	return nil
}

// Alias makes target reachable under an additional label.
func (r *Registry) Alias(alias, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.agents[alias]; exists {
		return fmt.Errorf("alias %q conflicts with existing agent", alias)
	}
	if _, exists := r.agents[target]; !exists {
		return fmt.Errorf("alias %q references unknown agent %q", alias, target)
	}
	r.aliases[alias] = target
	return nil
}

// Lookup returns the agent registered under name or one of its aliases.
func (r *Registry) Lookup(name string) (Agent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if target, ok := r.aliases[name]; ok {
		name = target
	}
	a, ok := r.agents[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAgent, name)
	}
	return a, nil
}

// List returns descriptors for every registered agent, sorted by name.
func (r *Registry) List() []models.Agent {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Agent, 0, len(r.agents))
	for _, a := range r.agents {
		out = append(out, a.Describe())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name < out[j].Name
	})
	return out
}
