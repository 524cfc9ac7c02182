package agent

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"agent-dispatch/internal/models"
)

type stubAgent struct {
	name string
}

func (s stubAgent) Name() string { return s.name }

func (s stubAgent) Describe() models.Agent { return models.Agent{Name: s.name} }

func (s stubAgent) Chat(ctx context.Context, payload models.Payload) (*models.Reply, error) {
	return &models.Reply{Agent: s.name, Text: payload.Prompt}, nil
}

func TestRegistryLookupAndAlias(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubAgent{name: "jd_agenet"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Alias("jd_agent", "jd_agenet"); err != nil {
		t.Fatalf("alias: %v", err)
	}

	a, err := registry.Lookup("jd_agent")
	if err != nil {
		t.Fatalf("lookup alias: %v", err)
	}
	if a.Name() != "jd_agenet" {
		t.Fatalf("alias resolved to %q", a.Name())
	}

	if _, err := registry.Lookup("nope"); !errors.Is(err, ErrUnknownAgent) {
		t.Fatalf("expected ErrUnknownAgent, got %v", err)
	}
}

func TestRegistryRejectsDuplicatesAndBadAliases(t *testing.T) {
	registry := NewRegistry()
	if err := registry.Register(stubAgent{name: "a"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := registry.Register(stubAgent{name: "a"}); !errors.Is(err, ErrDuplicateAgent) {
		t.Fatalf("expected ErrDuplicateAgent, got %v", err)
	}
	if err := registry.Alias("a", "a"); err == nil {
		t.Fatal("alias shadowing an agent should fail")
	}
	if err := registry.Alias("b", "missing"); err == nil {
		t.Fatal("alias to unknown agent should fail")
	}
	if err := registry.Register(nil); err == nil {
		t.Fatal("nil agent should fail")
	}
}

func TestRegistryListIsSorted(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(stubAgent{name: name}); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}

	list := registry.List()
	if len(list) != 3 || list[0].Name != "alpha" || list[2].Name != "zeta" {
		t.Fatalf("unexpected order: %+v", list)
	}
}

func TestDisplayText(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		want    string
		outcome string
	}{
		{
			name:    "api error",
			err:     fmt.Errorf("agent x: %w", &APIError{Agent: "x", Status: 500, Message: "boom"}),
			want:    "Error: boom",
			outcome: OutcomeAPIError,
		},
		{
			name:    "parse error",
			err:     &ParseError{Agent: "x", Message: "Could not parse the job description response"},
			want:    "Error: Could not parse the job description response",
			outcome: OutcomeParseError,
		},
		{
			name:    "rejected",
			err:     &RejectedError{Agent: "x", Message: "Enter a company name"},
			want:    "Error: Enter a company name",
			outcome: OutcomeRejected,
		},
		{
			name:    "network",
			err:     &NetworkError{Agent: "x", Err: errors.New("connection refused")},
			want:    NetworkMessage,
			outcome: OutcomeNetworkError,
		},
		{
			name:    "unknown agent",
			err:     fmt.Errorf("%w: foo", ErrUnknownAgent),
			want:    "Error: unknown agent: foo",
			outcome: OutcomeUnknownAgent,
		},
		{
			name:    "empty message",
			err:     errors.New(""),
			want:    "Error: Unknown error occurred",
			outcome: OutcomeError,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := DisplayText(tc.err); got != tc.want {
				t.Fatalf("DisplayText() = %q, want %q", got, tc.want)
			}
			if got := Outcome(tc.err); got != tc.outcome {
				t.Fatalf("Outcome() = %q, want %q", got, tc.outcome)
			}
		})
	}

	if DisplayText(nil) != "" || Outcome(nil) != OutcomeOK {
		t.Fatal("nil error should render empty and classify ok")
	}
}
