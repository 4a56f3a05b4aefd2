package prompt

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/timberyard/meetingassist/internal/domain"
)

func TestAssemble_AllFallbacks(t *testing.T) {
	p := Assemble(Input{})

	assert.Contains(t, p, "You are facilitating a meeting.")
	assert.Contains(t, p, NoGoalFallback)
	assert.Contains(t, p, NoParticipantsFallback)
	assert.Contains(t, p, NoContextFallback)
	assert.Contains(t, p, NoAttachmentsFallback)
	assert.Contains(t, p, NoKnowledgeFallback)
	assert.Contains(t, p, DefaultGenerationDirective)

	for _, heading := range []string{"Participants:", "User story / context:", "Attached files:", "Relevant knowledge base docs:", "Please generate:"} {
		assert.NotContains(t, p, heading+"\n\n", "empty section under %q", heading)
		assert.False(t, strings.HasSuffix(p, heading))
	}
}

func TestAssemble_SectionOrder(t *testing.T) {
	p := Assemble(Input{
		MeetingTypeName:    "Backlog Refinement",
		Goal:               "Close sprint",
		Personas:           []domain.Persona{{Name: "Ana", Role: "QA", SystemInstruction: "Focus on edge cases"}},
		Instructions:       "Story ST-12",
		AttachedFiles:      "file text",
		Knowledge:          "- Guide\nbody",
		GenerationTemplate: "Only a transcript.",
	})

	order := []string{
		"You are facilitating a Backlog Refinement.",
		"Goal: Close sprint",
		"Participants:\n- Ana (QA): Focus on edge cases",
		"User story / context:\nStory ST-12",
		"Attached files:\nfile text",
		"Relevant knowledge base docs:\n- Guide\nbody",
		"Please generate:\nOnly a transcript.",
	}
	last := -1
	for _, s := range order {
		idx := strings.Index(p, s)
		assert.Greater(t, idx, last, "section %q out of order", s)
		last = idx
	}
	assert.NotContains(t, p, NoKnowledgeFallback)
	assert.NotContains(t, p, DefaultGenerationDirective)
}

func TestAssemble_WhitespaceCountsAsEmpty(t *testing.T) {
	p := Assemble(Input{Goal: "   ", Knowledge: "\n"})
	assert.Contains(t, p, "Goal: "+NoGoalFallback)
	assert.Contains(t, p, NoKnowledgeFallback)
}

func TestFormatPersonas(t *testing.T) {
	out := FormatPersonas([]domain.Persona{
		{Name: "Ana", Role: "QA", SystemInstruction: "Focus on edge cases"},
		{Name: "Bo", Role: "Dev", SystemInstruction: "Think about APIs"},
	})
	assert.Equal(t, "- Ana (QA): Focus on edge cases\n- Bo (Dev): Think about APIs", out)
	assert.Equal(t, "", FormatPersonas(nil))
}

func TestJoinNonEmpty(t *testing.T) {
	assert.Equal(t, "a — b", JoinNonEmpty(" — ", "a", "", "b"))
	assert.Equal(t, "only", JoinNonEmpty("\n\n", "", "only"))
	assert.Equal(t, "", JoinNonEmpty(" — ", "", " "))
}
