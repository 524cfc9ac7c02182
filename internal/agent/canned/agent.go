package canned

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"agent-dispatch/internal/models"
)

// Agent answers locally with a fixed description and an echo of the request.
type Agent struct {
	name        string
	description string
	closing     string
}

func New(name, description, closing string) *Agent {
	if description == "" {
		description = name
	}
	return &Agent{
		name:        name,
		description: description,
		closing:     closing,
	}
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Describe() models.Agent {
	return models.Agent{
		Name:        a.name,
		Description: a.description,
		Simulated:   true,
	}
}

func (a *Agent) Chat(ctx context.Context, payload models.Payload) (*models.Reply, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var builder strings.Builder
	builder.WriteString(a.description)
	builder.WriteString("\n\n")

	if payload.Prompt != "" {
		fmt.Fprintf(&builder, "Responding to: \"%s\"\n", payload.Prompt)
	}
	if payload.FileContent != "" {
		fmt.Fprintf(&builder, "Processed file \"%s\" with %d characters.\n",
			payload.FileName, utf8.RuneCountInString(payload.FileContent))
	}
	if a.closing != "" {
		builder.WriteString("\n")
		builder.WriteString(a.closing)
	}

	return &models.Reply{
		Agent:     a.name,
		Text:      builder.String(),
		Simulated: true,
	}, nil
}
