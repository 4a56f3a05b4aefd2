// Package prompt builds the generation prompt for a facilitated meeting.
package prompt

import (
	"fmt"
	"strings"

	"github.com/timberyard/meetingassist/internal/domain"
)

// Fallbacks substituted for empty sections.
const (
	DefaultMeetingName         = "meeting"
	NoGoalFallback             = "Refine the story and produce clear outcomes."
	NoParticipantsFallback     = "- (none provided, assume PO/Dev/QA roles)"
	NoContextFallback          = "(no additional context provided)"
	NoAttachmentsFallback      = "(no files attached)"
	NoKnowledgeFallback        = "(no relevant knowledge found)"
	DefaultGenerationDirective = "1) Transcript (~12-20 turns, concise).\n2) 5-8 Gherkin acceptance criteria.\n3) 3-5 follow-up actions."
)

// Input holds the resolved pieces of a meeting prompt. Any field may be empty.
type Input struct {
	MeetingTypeName    string
	Goal               string
	Personas           []domain.Persona
	Instructions       string
	AttachedFiles      string
	Knowledge          string
	GenerationTemplate string
}

// Assemble renders the prompt sections in a fixed order, substituting a
// fallback for every empty section.
func Assemble(in Input) string {
	sections := []string{
		fmt.Sprintf("You are facilitating a %s.", orDefault(in.MeetingTypeName, DefaultMeetingName)),
		"Goal: " + orDefault(in.Goal, NoGoalFallback),
		"Participants:\n" + orDefault(FormatPersonas(in.Personas), NoParticipantsFallback),
		"User story / context:\n" + orDefault(in.Instructions, NoContextFallback),
		"Attached files:\n" + orDefault(in.AttachedFiles, NoAttachmentsFallback),
		"Relevant knowledge base docs:\n" + orDefault(in.Knowledge, NoKnowledgeFallback),
		"Please generate:\n" + orDefault(in.GenerationTemplate, DefaultGenerationDirective),
	}
	return strings.Join(sections, "\n\n")
}

// FormatPersonas renders one "- name (role): instruction" line per persona.
func FormatPersonas(personas []domain.Persona) string {
	lines := make([]string, 0, len(personas))
	for _, p := range personas {
		lines = append(lines, fmt.Sprintf("- %s (%s): %s", p.Name, p.Role, p.SystemInstruction))
	}
	return strings.Join(lines, "\n")
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
