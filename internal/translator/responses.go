package translator

import (
	"time"

	"agent-dispatch/internal/history"
	"agent-dispatch/internal/models"
)

// ChatResponse is returned by the chat endpoint.
type ChatResponse struct {
	Agent     string `json:"agent"`
	Text      string `json:"text"`
	Status    int    `json:"status,omitempty"`
	Simulated bool   `json:"simulated,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// FromReply converts a reply into its wire form.
func FromReply(reply *models.Reply, requestID string) ChatResponse {
	return ChatResponse{
		Agent:     reply.Agent,
		Text:      reply.Text,
		Status:    reply.Status,
		Simulated: reply.Simulated,
		RequestID: requestID,
	}
}

// AgentObject describes one agent on the agents endpoint.
type AgentObject struct {
	Name           string `json:"name"`
	Description    string `json:"description,omitempty"`
	Endpoint       string `json:"endpoint,omitempty"`
	PromptField    string `json:"prompt_field,omitempty"`
	FileField      string `json:"file_field,omitempty"`
	AttachmentSlot string `json:"attachment_slot,omitempty"`
	Simulated      bool   `json:"simulated"`
}

// AgentListResponse is returned by GET /v1/agents.
type AgentListResponse struct {
	Object string        `json:"object"`
	Data   []AgentObject `json:"data"`
}

// FromAgents converts agent descriptors into their wire form.
func FromAgents(agents []models.Agent) AgentListResponse {
	data := make([]AgentObject, 0, len(agents))
	for _, a := range agents {
		data = append(data, AgentObject{
			Name:           a.Name,
			Description:    a.Description,
			Endpoint:       a.Endpoint,
			PromptField:    a.PromptField,
			FileField:      a.FileField,
			AttachmentSlot: a.AttachmentSlot,
			Simulated:      a.Simulated,
		})
	}
	return AgentListResponse{Object: "list", Data: data}
}

// HistoryEntry is a recorded dispatch on the history endpoint.
type HistoryEntry struct {
	ID         string    `json:"id"`
	Agent      string    `json:"agent"`
	Prompt     string    `json:"prompt,omitempty"`
	Files      string    `json:"files,omitempty"`
	Outcome    string    `json:"outcome"`
	Status     int       `json:"status,omitempty"`
	Text       string    `json:"text"`
	DurationMS int64     `json:"duration_ms"`
	CreatedAt  time.Time `json:"created_at"`
}

// HistoryResponse is returned by GET /v1/history.
type HistoryResponse struct {
	Object string         `json:"object"`
	Data   []HistoryEntry `json:"data"`
}

// FromRecord converts one stored record into its wire form.
func FromRecord(rec history.Record) HistoryEntry {
	return HistoryEntry{
		ID:         rec.ID,
		Agent:      rec.Agent,
		Prompt:     rec.Prompt,
		Files:      rec.Files,
		Outcome:    rec.Outcome,
		Status:     rec.Status,
		Text:       rec.Text,
		DurationMS: rec.DurationMS,
		CreatedAt:  rec.CreatedAt,
	}
}

// FromHistory converts stored records into their wire form.
func FromHistory(records []history.Record) HistoryResponse {
	data := make([]HistoryEntry, 0, len(records))
	for _, rec := range records {
		data = append(data, FromRecord(rec))
	}
	return HistoryResponse{Object: "list", Data: data}
}
