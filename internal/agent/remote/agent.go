package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"agent-dispatch/internal/agent"
	"agent-dispatch/internal/config"
	"agent-dispatch/internal/models"
)

const (
	userAgent        = "agent-dispatch/0.1"
	maxResponseBytes = 8 << 20
)

// Agent forwards payloads to a remote agent endpoint as multipart forms.
type Agent struct {
	name    string
	label   string
	cfg     config.AgentConfig
	client  *http.Client
	url     string
	headers map[string]string
}

// New constructs a remote agent reachable at baseURL + cfg.Endpoint.
func New(name, baseURL string, cfg config.AgentConfig, client *http.Client) (*Agent, error) {
	if client == nil {
		return nil, errors.New("http client must not be nil")
	}

	baseURL = strings.TrimRight(baseURL, "/")
	if baseURL == "" {
		return nil, errors.New("base url must not be empty")
	}
	if !cfg.Remote() {
		return nil, fmt.Errorf("agent %s has no endpoint", name)
	}
	if len(cfg.ResponseFields) == 0 {
		return nil, fmt.Errorf("agent %s has no response fields", name)
	}

	if cfg.AttachmentSlot == "" {
		cfg.AttachmentSlot = cfg.FileField
	}
	if cfg.EmptyMessage == "" {
		cfg.EmptyMessage = fmt.Sprintf("No %s available in the response", strings.Join(cfg.ResponseFields, " or "))
	}

	label := cfg.Label
	if label == "" {
		label = name
	}
	if cfg.ParseFailure == "" {
		cfg.ParseFailure = fmt.Sprintf("Could not parse the %s response", label)
	}

	return &Agent{
		name:    name,
		label:   label,
		cfg:     cfg,
		client:  client,
		url:     baseURL + cfg.Endpoint,
		headers: cfg.Headers,
	}, nil
}

func (a *Agent) Name() string {
	return a.name
}

func (a *Agent) Describe() models.Agent {
	return models.Agent{
		Name:           a.name,
		Description:    a.cfg.Description,
		Endpoint:       a.url,
		PromptField:    a.cfg.PromptField,
		FileField:      a.cfg.FileField,
		AttachmentSlot: a.cfg.AttachmentSlot,
	}
}

// Chat performs exactly one POST to the agent endpoint and extracts the reply text.
func (a *Agent) Chat(ctx context.Context, payload models.Payload) (*models.Reply, error) {
	files := payload.Files(a.cfg.AttachmentSlot)

	slog.Info("sending request to "+a.label,
		"agent", a.name,
		"endpoint", a.url,
		a.cfg.PromptField, payload.Prompt,
		a.cfg.FileField, fileNames(files),
	)

	httpReq, err := a.newRequest(ctx, payload.Prompt, files)
	if err != nil {
		return nil, err
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		slog.Error("error calling the "+a.label, "agent", a.name, "err", err)
		if errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%s request: %w", a.label, err)
		}
		return nil, &agent.NetworkError{Agent: a.name, Err: err}
	}
	defer httpResp.Body.Close()

	slog.Info("response status", "agent", a.name, "status", httpResp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBytes))
	if err != nil {
		slog.Error("failed to read agent response", "agent", a.name, "err", err)
		return nil, &agent.NetworkError{Agent: a.name, Err: fmt.Errorf("read response body: %w", err)}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		apiErr := parseAPIError(a.name, httpResp.StatusCode, body, a.cfg.Guidance)
		slog.Error("API error response", "agent", a.name, "status", apiErr.Status, "error", apiErr.Message)
		return nil, apiErr
	}

	text, err := a.extract(body)
	if err != nil {
		return nil, err
	}

	return &models.Reply{
		Agent:  a.name,
		Text:   text,
		Status: httpResp.StatusCode,
	}, nil
}

func (a *Agent) newRequest(ctx context.Context, prompt string, files []models.File) (*http.Request, error) {
	body, contentType, err := buildForm(a.cfg.PromptField, prompt, a.cfg.FileField, files)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, body)
	if err != nil {
		return nil, fmt.Errorf("construct request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}
	// The boundary lives in Content-Type, so it always wins over configured headers.
	req.Header.Set("Content-Type", contentType)

	return req, nil
}

func (a *Agent) extract(body []byte) (string, error) {
	text, err := extractReply(body, a.cfg.ResponseFields)
	if err != nil {
		slog.Error("error parsing response", "agent", a.name, "err", err, "raw", truncate(string(body), 512))
		return "", &agent.ParseError{Agent: a.name, Message: a.cfg.ParseFailure, Body: string(body)}
	}

	for _, rejection := range a.cfg.Rejections {
		if strings.Contains(text, rejection.Contains) {
			return "", &agent.RejectedError{Agent: a.name, Message: rejection.Message}
		}
	}

	if text == "" {
		return a.cfg.EmptyMessage, nil
	}
	return text, nil
}

func fileNames(files []models.File) []string {
	if len(files) == 0 {
		return nil
	}
	names := make([]string, 0, len(files))
	for _, f := range files {
		names = append(names, f.Name)
	}
	return names
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
