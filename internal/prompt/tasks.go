package prompt

import (
	"fmt"
	"strings"
)

// IssueAnalysisInput is the material for a Jira analysis prompt
type IssueAnalysisInput struct {
	IssueID     string
	Summary     string
	Description string
	Knowledge   string
}

// IssueAnalysis asks for solution approaches, risks and next steps for a ticket.
func IssueAnalysis(in IssueAnalysisInput) string {
	sections := []string{
		"You are an AI assistant helping engineers with Jira issues.",
		fmt.Sprintf("Jira Ticket:\n%s - %s", in.IssueID, in.Summary),
		"Context:\n" + orDefault(in.Description, NoContextFallback),
		"Relevant past transcripts & docs:\n" + orDefault(in.Knowledge, NoKnowledgeFallback),
		"Please propose:\n1. Code solution approaches (with tradeoffs).\n2. Possible risks or dependencies.\n3. Recommended next steps.",
	}
	return strings.Join(sections, "\n\n")
}

// MeetingContext is one transcript fed into a proposal
type MeetingContext struct {
	MeetingType string
	Transcript  string
}

// ProposalOutline asks for a JSON slide outline built from transcripts.
func ProposalOutline(meetings []MeetingContext) string {
	parts := make([]string, 0, len(meetings))
	for _, m := range meetings {
		parts = append(parts, fmt.Sprintf("## %s\n%s", orDefault(m.MeetingType, "Meeting"), m.Transcript))
	}

	return "You are generating a Discovery Proposal presentation.\n" +
		"Use the following meeting transcripts as context:\n\n" +
		strings.Join(parts, "\n\n") +
		"\n\nPlease return a structured outline for slides in JSON format like:\n" +
		"[\n  { \"title\": \"Slide title\", \"bullets\": [\"point 1\", \"point 2\"] }\n]"
}
