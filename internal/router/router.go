package router

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"agent-dispatch/internal/agent"
	"agent-dispatch/internal/history"
	"agent-dispatch/internal/models"
)

// Recorder stores a completed dispatch.
type Recorder interface {
	Record(ctx context.Context, rec history.Record) error
}

// Router dispatches payloads to the appropriate agent.
type Router struct {
	registry *agent.Registry
	recorder Recorder
	now      func() time.Time
}

// Option customises a Router.
type Option func(*Router)

// WithRecorder records every dispatch to rec.
func WithRecorder(rec Recorder) Option {
	return func(r *Router) {
		r.recorder = rec
	}
}

// New constructs a router backed by the provided registry.
func New(registry *agent.Registry, opts ...Option) *Router {
	r := &Router{
		registry: registry,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Agents lists the registered agents.
func (r *Router) Agents() []models.Agent {
	return r.registry.List()
}

// Describe returns the descriptor of a single agent.
func (r *Router) Describe(name string) (models.Agent, error) {
	impl, err := r.registry.Lookup(name)
	if err != nil {
		return models.Agent{}, err
	}
	return impl.Describe(), nil
}

// Dispatch routes the payload to the named agent and returns its reply.
// Failures are typed; see agent.DisplayText for the user-facing rendering.
func (r *Router) Dispatch(ctx context.Context, name string, payload models.Payload) (*models.Reply, error) {
	impl, err := r.registry.Lookup(name)
	if err != nil {
		slog.Error("dispatch to unknown agent", "agent", name)
		return nil, err
	}

	started := r.now()
	reply, err := impl.Chat(ctx, payload)
	elapsed := r.now().Sub(started)

	r.record(ctx, impl.Name(), payload, reply, err, started, elapsed)

	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", impl.Name(), err)
	}
	return reply, nil
}

// Chat dispatches the payload and always returns a display string; failures are
// rendered as "Error: ..." or the network error message.
func (r *Router) Chat(ctx context.Context, name string, payload models.Payload) string {
	reply, err := r.Dispatch(ctx, name, payload)
	if err != nil {
		return agent.DisplayText(err)
	}
	return reply.Text
}

func (r *Router) record(ctx context.Context, name string, payload models.Payload, reply *models.Reply, dispatchErr error, started time.Time, elapsed time.Duration) {
	if r.recorder == nil {
		return
	}

	rec := history.Record{
		Agent:      name,
		Prompt:     payload.Prompt,
		Files:      strings.Join(attachmentNames(payload), ","),
		Outcome:    agent.Outcome(dispatchErr),
		DurationMS: elapsed.Milliseconds(),
		CreatedAt:  started,
	}
	switch {
	case dispatchErr != nil:
		rec.Text = agent.DisplayText(dispatchErr)
		rec.Status = agent.StatusCode(dispatchErr)
	case reply != nil:
		rec.Text = reply.Text
		rec.Status = reply.Status
		if reply.Simulated {
			rec.Outcome = agent.OutcomeSimulated
		}
	}

	// The caller's context may already be cancelled; the record should still land.
	recordCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := r.recorder.Record(recordCtx, rec); err != nil {
		slog.Error("failed to record dispatch", "agent", name, "err", err)
	}
}

func attachmentNames(payload models.Payload) []string {
	var names []string
	if payload.FileName != "" && payload.FileContent != "" {
		names = append(names, payload.FileName)
	}
	slots := make([]string, 0, len(payload.Attachments))
	for slot := range payload.Attachments {
		slots = append(slots, slot)
	}
	sort.Strings(slots)
	for _, slot := range slots {
		for _, f := range payload.Attachments[slot] {
			names = append(names, f.Name)
		}
	}
	return names
}
