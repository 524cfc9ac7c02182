package models

// Attachment slot names accepted by the configured agents.
const (
	SlotTranscriptFile          = "transcript_file"
	SlotMarketReportFile        = "market_report_file"
	SlotJobDescriptionFile      = "job_description_file"
	SlotUserInputFile           = "user_input_file"
	SlotCandidateCVFile         = "candidate_cv_file"
	SlotInterviewTranscriptFile = "interview_transcript_file"
	SlotSupportingDocuments     = "supporting_documents"
	SlotTranscriptFiles         = "transcript_files"
	SlotJDFiles                 = "jd_files"
	SlotInterviewFiles          = "interview_files"
)

// File is a named attachment forwarded to an agent.
type File struct {
	Name        string
	Content     []byte
	ContentType string
}

// Payload is the user-submitted input for a single dispatch.
type Payload struct {
	Prompt      string
	FileContent string
	FileName    string
	Attachments map[string][]File
}

// Files returns the attachments stored under slot.
func (p Payload) Files(slot string) []File {
	if p.Attachments == nil {
		return nil
	}
	return p.Attachments[slot]
}

// Attach appends files to the given slot.
func (p *Payload) Attach(slot string, files ...File) {
	if len(files) == 0 {
		return
	}
	if p.Attachments == nil {
		p.Attachments = make(map[string][]File)
	}
	p.Attachments[slot] = append(p.Attachments[slot], files...)
}

// Reply is the normalized outcome of a successful dispatch.
type Reply struct {
	Agent     string
	Text      string
	Status    int
	Simulated bool
}

// Agent describes a configured agent.
type Agent struct {
	Name           string
	Description    string
	Endpoint       string
	PromptField    string
	FileField      string
	AttachmentSlot string
	Simulated      bool
}
