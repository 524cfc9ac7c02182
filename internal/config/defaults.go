package config

import (
	"time"

	"agent-dispatch/internal/models"
)

// Built-in agent labels. The job description label is spelled the way the
// remote service expects it.
const (
	AgentMarketIntelligence          = "market_intelligence"
	AgentJobDescription              = "jd_agenet"
	AgentClientRepresentative        = "client_representative_agent"
	AgentClientRepresentativeCreator = "client_representative_creator_agent"
	AgentInterviewReport             = "interview_report_agent"
)

const (
	// DefaultBaseURL is the hosted multi-agent service.
	DefaultBaseURL = "https://executive-multi-agent.onrender.com"
	// DefaultTimeout leaves room for cold starts on the hosted service.
	DefaultTimeout = 120 * time.Second
	DefaultPort    = 8080

	defaultRetention     = 30 * 24 * time.Hour
	defaultPruneSchedule = "@hourly"
)

const (
	marketGuidance = "Enter a company name, a ticker symbol, or a short query about the company or market you're interested in. " +
		"You can also upload supporting documents below or Upload relevant documents (PDF, TXT, JSON) like company profiles, " +
		"existing reports, or news articles to provide more context."

	jobDescriptionGuidance = "Specify the job role you want a description for (e.g., 'Software Engineer'). " +
		"You can also provide a more detailed brief, a client persona to write for, or a previous market report to use as context. " +
		"Supporting documents can be uploaded below or Upload relevant documents like company information, style guides, " +
		"existing JD templates, or market reports (PDF, TXT, JSON) to enrich the job description."

	clientFeedbackGuidance = "Paste the text or document you want feedback on. " +
		"You can also provide guidance on the client persona to adopt for the feedback (e.g., 'Act as a detail-oriented client'). " +
		"Use '---CLIENT PERSONA GUIDANCE---' and '---DOCUMENT TO REVIEW---' delimiters if providing both. " +
		"Supporting files can provide additional context for the client's persona or Upload documents (PDF, TXT, JSON) that provide " +
		"context about the client's persona, values, or past communications, which will help the agent emulate them accurately when giving feedback."

	clientCreatorGuidance = "Describe the client you want to emulate. " +
		"This can be a short phrase (like 'skeptical client') or a more detailed description of their persona, priorities, values, " +
		"and communication style. You can also upload transcripts below for tone analysis or Upload transcripts of client conversations, " +
		"emails, or other documents (PDF, TXT, JSON) that reflect the client's tone and style."

	interviewReportGuidance = "Provide instructions for the interview report, such as the candidate's name and role. " +
		"You can also paste consultant notes or use delimiters (e.g., ---JOB SPEC---, ---CANDIDATE CV---) to structure detailed information. " +
		"Upload relevant files like CVs, job specs, and interview transcripts below or Upload supporting documents: " +
		"Candidate's CV/Resume, Job Specification, Interview Transcript/Notes, Role Scorecard (PDF, TXT, JSON). " +
		"The agent will try to identify the type of document from its filename."
)

// Default returns the configuration for the hosted multi-agent service.
func Default() Config {
	return Config{
		Server:  ServerConfig{Port: DefaultPort},
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
		Agents: map[string]AgentConfig{
			AgentMarketIntelligence: {
				Label:          "Market Intelligence API",
				Description:    "Market Intelligence: I provide market insights and analysis.",
				Endpoint:       "/market_intelligence",
				PromptField:    "company_information",
				FileField:      "supporting_documents",
				AttachmentSlot: models.SlotSupportingDocuments,
				ResponseFields: []string{"market_report"},
				EmptyMessage:   "No market report available in the response",
				ParseFailure:   "Could not parse the market intelligence report",
				Rejections: []Rejection{
					{Contains: "Cannot generate report", Message: marketGuidance},
				},
			},
			AgentJobDescription: {
				Label:          "Job Description API",
				Description:    "JD Agent: I help with job description related tasks.",
				Closing:        "I can assist with job description related tasks.",
				Endpoint:       "/job_description",
				PromptField:    "manual_input",
				FileField:      "files",
				AttachmentSlot: models.SlotJDFiles,
				ResponseFields: []string{"job_description"},
				Guidance:       jobDescriptionGuidance,
				EmptyMessage:   "No job description available in the response",
				ParseFailure:   "Could not parse the job description response",
			},
			AgentClientRepresentative: {
				Label:          "Client Feedback API",
				Description:    "Client Representative: I assist with client communication.",
				Closing:        "I can help with client communication needs.",
				Endpoint:       "/client_feedback",
				PromptField:    "user_input",
				FileField:      "files",
				AttachmentSlot: models.SlotTranscriptFiles,
				ResponseFields: []string{"client_representative_feedback"},
				Guidance:       clientFeedbackGuidance,
				EmptyMessage:   "No client representative feedback available in the response",
				ParseFailure:   "Could not parse the client representative feedback response",
			},
			AgentClientRepresentativeCreator: {
				Label:          "Client Creator API",
				Description:    "Client Representative Creator: I help create client presentations.",
				Closing:        "I can help create client presentations and materials.",
				Endpoint:       "/client_creator",
				PromptField:    "client_description",
				FileField:      "transcript_files",
				AttachmentSlot: models.SlotTranscriptFiles,
				ResponseFields: []string{"generated_prompt", "response"},
				Guidance:       clientCreatorGuidance,
				EmptyMessage:   "No client characteristics available in the response",
				ParseFailure:   "Could not parse the client characteristics response",
			},
			AgentInterviewReport: {
				Label:          "Interview Report API",
				Description:    "Interview Report: I help generate interview reports.",
				Closing:        "I can help generate and analyze interview reports.",
				Endpoint:       "/interview_report",
				PromptField:    "input_text",
				FileField:      "files",
				AttachmentSlot: models.SlotInterviewFiles,
				ResponseFields: []string{"interview_report"},
				Guidance:       interviewReportGuidance,
				EmptyMessage:   "No interview report available in the response",
				ParseFailure:   "Could not parse the interview report response",
			},
		},
		History: HistoryConfig{
			Retention:     defaultRetention,
			PruneSchedule: defaultPruneSchedule,
		},
	}
}
